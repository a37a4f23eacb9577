package attachment

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Attachment is a clinical document tied to a patient pathway, optionally to
// one of its steps. The binary content lives in the blob store under Key.
type Attachment struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	CreatedAt    time.Time  `json:"createdAt"`
	PathwayID    uuid.UUID  `json:"pathwayId" gorm:"type:uuid;not null;index"`
	StepID       *uuid.UUID `json:"stepId,omitempty" gorm:"type:uuid;index"`
	UploadedByID *uuid.UUID `json:"uploadedById,omitempty" gorm:"type:uuid"`
	FileName     string     `json:"fileName" gorm:"type:varchar(255);not null"`
	Key          string     `json:"-" gorm:"type:varchar(255);not null;uniqueIndex"`
	URL          string     `json:"url" gorm:"type:varchar(2048)"`
	Size         int64      `json:"size"`
	ContentType  string     `json:"contentType" gorm:"type:varchar(255)"`
}

func (Attachment) TableName() string {
	return "attachments"
}

func (a *Attachment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
