package model

import (
	"time"

	"github.com/google/uuid"
)

// AssignmentStatus represents the progress of a step assignment.
type AssignmentStatus string

const (
	AssignmentStatusPending    AssignmentStatus = "pending"
	AssignmentStatusInProgress AssignmentStatus = "in-progress"
	AssignmentStatusDone       AssignmentStatus = "done"
)

// StepAssignment links a pathway step to the clinician responsible for it.
// A step within a pathway carries at most one assignment.
type StepAssignment struct {
	BaseModel
	PathwayID    uuid.UUID        `gorm:"type:uuid;column:pathway_id;not null;uniqueIndex:idx_assignment_pathway_step" json:"pathwayId"`
	StepID       uuid.UUID        `gorm:"type:uuid;column:step_id;not null;uniqueIndex:idx_assignment_pathway_step" json:"stepId"`
	AssignedToID uuid.UUID        `gorm:"type:uuid;column:assigned_to_id;not null;index" json:"assignedToId"`
	AssignedByID *uuid.UUID       `gorm:"type:uuid;column:assigned_by_id" json:"assignedById,omitempty"`
	Status       AssignmentStatus `gorm:"type:varchar(20);column:status;not null" json:"status"`
	DueDate      *time.Time       `gorm:"type:timestamptz;column:due_date" json:"dueDate,omitempty"`
	Notes        string           `gorm:"type:text;column:notes" json:"notes"`

	Pathway *PatientPathway `gorm:"foreignKey:PathwayID;references:ID" json:"pathway,omitempty"`
	Step    *PathwayStep    `gorm:"foreignKey:StepID;references:ID" json:"step,omitempty"`
}

func (sa *StepAssignment) TableName() string {
	return "step_assignments"
}
