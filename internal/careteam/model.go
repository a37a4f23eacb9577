package careteam

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel defines the base model structure with common fields for the careteam package.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;column:id;not null;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"type:timestamptz;column:created_at;not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"type:timestamptz;column:updated_at;not null" json:"updatedAt"`
}

// BeforeCreate is a GORM hook that is triggered before a new record is created.
func (base *BaseModel) BeforeCreate(tx *gorm.DB) (err error) {
	if base.ID == uuid.Nil {
		base.ID, err = uuid.NewRandom()
		if err != nil {
			return
		}
	}
	return
}

// CareTeam groups the clinicians responsible for one patient's care.
type CareTeam struct {
	BaseModel
	PatientID uuid.UUID `gorm:"type:uuid;column:patient_id;not null;index" json:"patientId"`
	Name      string    `gorm:"type:varchar(255);column:name;not null" json:"name"`

	Members []Member `gorm:"foreignKey:CareTeamID;references:ID" json:"members,omitempty"`
}

func (ct *CareTeam) TableName() string {
	return "care_teams"
}

// Member is one clinician's membership in a care team.
type Member struct {
	BaseModel
	CareTeamID uuid.UUID `gorm:"type:uuid;column:care_team_id;not null;uniqueIndex:idx_careteam_member" json:"careTeamId"`
	UserID     uuid.UUID `gorm:"type:uuid;column:user_id;not null;uniqueIndex:idx_careteam_member" json:"userId"`
	RoleInTeam string    `gorm:"type:varchar(100);column:role_in_team" json:"roleInTeam"`
	IsPrimary  bool      `gorm:"column:is_primary;not null;default:false" json:"isPrimary"`
}

func (m *Member) TableName() string {
	return "care_team_members"
}

// CreateCareTeamDTO is the data transfer object for forming a care team.
type CreateCareTeamDTO struct {
	PatientID uuid.UUID `json:"patientId" binding:"required"`
	Name      string    `json:"name" binding:"required"`
}

// AddMemberDTO is the data transfer object for adding a clinician to a team.
type AddMemberDTO struct {
	UserID     uuid.UUID `json:"userId" binding:"required"`
	RoleInTeam string    `json:"roleInTeam"`
	IsPrimary  bool      `json:"isPrimary"`
}
