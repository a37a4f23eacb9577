package notification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Type classifies what prompted a notification.
type Type string

const (
	TypePathwayStarted   Type = "pathway-started"
	TypeStepAssigned     Type = "step-assigned"
	TypeStepCompleted    Type = "step-completed"
	TypePathwayCompleted Type = "pathway-completed"
)

// Notification is an in-app message for a clinician.
type Notification struct {
	ID               uuid.UUID  `gorm:"type:uuid;column:id;not null;primaryKey" json:"id"`
	CreatedAt        time.Time  `gorm:"type:timestamptz;column:created_at;not null" json:"createdAt"`
	UpdatedAt        time.Time  `gorm:"type:timestamptz;column:updated_at;not null" json:"updatedAt"`
	UserID           uuid.UUID  `gorm:"type:uuid;column:user_id;not null;index" json:"userId"`
	Type             Type       `gorm:"type:varchar(30);column:type;not null" json:"type"`
	Title            string     `gorm:"type:varchar(255);column:title;not null" json:"title"`
	Message          string     `gorm:"type:text;column:message" json:"message"`
	RelatedPathwayID *uuid.UUID `gorm:"type:uuid;column:related_pathway_id" json:"relatedPathwayId,omitempty"`
	Read             bool       `gorm:"type:boolean;column:read;not null;default:false" json:"read"`
	ReadAt           *time.Time `gorm:"type:timestamptz;column:read_at" json:"readAt,omitempty"`
}

func (n *Notification) TableName() string {
	return "notifications"
}

// BeforeCreate is a GORM hook that is triggered before a new record is created.
func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID, err = uuid.NewRandom()
		if err != nil {
			return
		}
	}
	return
}
