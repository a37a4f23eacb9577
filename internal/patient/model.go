package patient

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel defines the base model structure with common fields for the patient package.
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

// Patient represents a person receiving care.
type Patient struct {
	BaseModel
	FirstName           string     `gorm:"type:varchar(100);column:first_name;not null" json:"firstName"`
	LastName            string     `gorm:"type:varchar(100);column:last_name;not null" json:"lastName"`
	DateOfBirth         *time.Time `gorm:"type:date;column:date_of_birth" json:"dateOfBirth,omitempty"`
	MedicalRecordNumber string     `gorm:"type:varchar(50);column:medical_record_number;not null;uniqueIndex" json:"medicalRecordNumber"`
	ContactPhone        string     `gorm:"type:varchar(30);column:contact_phone" json:"contactPhone,omitempty"`
	ContactEmail        string     `gorm:"type:varchar(255);column:contact_email" json:"contactEmail,omitempty"`
}

func (p *Patient) TableName() string {
	return "patients"
}

// CreatePatientDTO is the data transfer object for registering a patient.
type CreatePatientDTO struct {
	FirstName           string     `json:"firstName" binding:"required"`
	LastName            string     `json:"lastName" binding:"required"`
	DateOfBirth         *time.Time `json:"dateOfBirth,omitempty"`
	MedicalRecordNumber string     `json:"medicalRecordNumber" binding:"required"`
	ContactPhone        string     `json:"contactPhone"`
	ContactEmail        string     `json:"contactEmail"`
}

// UpdatePatientDTO carries the mutable fields of a patient record.
type UpdatePatientDTO struct {
	FirstName    *string    `json:"firstName,omitempty"`
	LastName     *string    `json:"lastName,omitempty"`
	DateOfBirth  *time.Time `json:"dateOfBirth,omitempty"`
	ContactPhone *string    `json:"contactPhone,omitempty"`
	ContactEmail *string    `json:"contactEmail,omitempty"`
}
