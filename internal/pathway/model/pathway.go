package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PathwayStatus represents the lifecycle status of a patient pathway.
type PathwayStatus string

const (
	PathwayStatusActive    PathwayStatus = "active"    // Pathway is running; CurrentStepID references a step of its template
	PathwayStatusCompleted PathwayStatus = "completed" // All steps done; CurrentStepID is nil
	PathwayStatusCancelled PathwayStatus = "cancelled" // Terminated early; CurrentStepID is nil, history is retained
)

// PatientPathway is a patient's live execution of a pathway template.
// CurrentStepID is nil exactly when the status is terminal.
type PatientPathway struct {
	BaseModel
	PatientID        uuid.UUID     `gorm:"type:uuid;column:patient_id;not null;index" json:"patientId"`
	TemplateID       uuid.UUID     `gorm:"type:uuid;column:template_id;not null" json:"templateId"`
	CurrentStepID    *uuid.UUID    `gorm:"type:uuid;column:current_step_id" json:"currentStepId"`
	Status           PathwayStatus `gorm:"type:varchar(20);column:status;not null;index" json:"status"`
	StartDate        time.Time     `gorm:"type:timestamptz;column:start_date;not null" json:"startDate"`
	EstimatedEndDate *time.Time    `gorm:"type:timestamptz;column:estimated_end_date" json:"estimatedEndDate,omitempty"`
	ActualEndDate    *time.Time    `gorm:"type:timestamptz;column:actual_end_date" json:"actualEndDate,omitempty"`
	CreatedByID      *uuid.UUID    `gorm:"type:uuid;column:created_by_id" json:"createdById,omitempty"`

	// Relationships
	Template       *PathwayTemplate `gorm:"foreignKey:TemplateID;references:ID" json:"template,omitempty"`
	CurrentStep    *PathwayStep     `gorm:"foreignKey:CurrentStepID;references:ID" json:"currentStep,omitempty"`
	CompletedSteps []CompletedStep  `gorm:"foreignKey:PathwayID;references:ID" json:"completedSteps,omitempty"`
}

func (pp *PatientPathway) TableName() string {
	return "patient_pathways"
}

// CompletedStep is the immutable record of a step completion. Rows are
// append-only and accumulate in completion order.
type CompletedStep struct {
	ID            uuid.UUID  `gorm:"type:uuid;column:id;not null;primaryKey" json:"id"`
	PathwayID     uuid.UUID  `gorm:"type:uuid;column:pathway_id;not null;index" json:"pathwayId"`
	StepID        uuid.UUID  `gorm:"type:uuid;column:step_id;not null" json:"stepId"`
	CompletedByID *uuid.UUID `gorm:"type:uuid;column:completed_by_id" json:"completedById,omitempty"`
	CompletedAt   time.Time  `gorm:"type:timestamptz;column:completed_at;not null" json:"completedAt"`
	Notes         string     `gorm:"type:text;column:notes" json:"notes"`
}

func (cs *CompletedStep) TableName() string {
	return "completed_steps"
}

// BeforeCreate assigns the record identity; completed steps do not carry the
// shared BaseModel because they are write-once and have no updated_at.
func (cs *CompletedStep) BeforeCreate(tx *gorm.DB) (err error) {
	if cs.ID == uuid.Nil {
		cs.ID, err = uuid.NewRandom()
		if err != nil {
			return
		}
	}
	return
}
