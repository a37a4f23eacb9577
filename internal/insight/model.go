package insight

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InsightType classifies what an insight speaks to.
type InsightType string

const (
	TypePathwayOverview InsightType = "pathway-overview"
	TypeStepProgress    InsightType = "step-progress"
	TypeCompletion      InsightType = "completion-summary"
)

// Status tracks whether a clinician still wants to see an insight.
type Status string

const (
	StatusActive    Status = "active"
	StatusDismissed Status = "dismissed"
)

// AIInsight is a generated observation about a patient's pathway, produced
// whenever the pathway advances.
type AIInsight struct {
	ID          uuid.UUID   `json:"id" gorm:"type:uuid;primaryKey"`
	CreatedAt   time.Time   `json:"createdAt"`
	PathwayID   uuid.UUID   `json:"pathwayId" gorm:"type:uuid;not null;index"`
	PatientID   *uuid.UUID  `json:"patientId,omitempty" gorm:"type:uuid;index"`
	InsightType InsightType `json:"insightType" gorm:"type:varchar(32);not null"`
	Status      Status      `json:"status" gorm:"type:varchar(20);not null;default:active"`
	Content     string      `json:"content" gorm:"type:text;not null"`
	GeneratedAt time.Time   `json:"generatedAt" gorm:"not null"`
}

func (AIInsight) TableName() string {
	return "ai_insights"
}

func (i *AIInsight) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
