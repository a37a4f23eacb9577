package model

import (
	"time"

	"github.com/google/uuid"
)

// CreateTemplateDTO is the data transfer object for authoring a new pathway template.
type CreateTemplateDTO struct {
	Name        string                  `json:"name" binding:"required"`
	Description string                  `json:"description"`
	Specialty   string                  `json:"specialty"`
	Version     string                  `json:"version"`
	CreatedByID *uuid.UUID              `json:"createdById"`
	Steps       []CreateTemplateStepDTO `json:"steps"`
}

// CreateTemplateStepDTO describes one step within a template being authored.
type CreateTemplateStepDTO struct {
	Name                  string                  `json:"name" binding:"required"`
	Description           string                  `json:"description"`
	StepOrder             int                     `json:"stepOrder" binding:"required"`
	StepType              string                  `json:"stepType"`
	EstimatedDurationDays int                     `json:"estimatedDurationDays"`
	RequiredRoles         []string                `json:"requiredRoles"`
	DecisionPoint         *CreateDecisionPointDTO `json:"decisionPoint,omitempty"`
	DependsOnOrders       []int                   `json:"dependsOnOrders,omitempty"`
}

// CreateDecisionPointDTO describes a branch attached to a step. Targets refer
// to steps by their order within the same template.
type CreateDecisionPointDTO struct {
	ConditionExpression string `json:"conditionExpression" binding:"required"`
	TrueStepOrder       *int   `json:"trueStepOrder,omitempty"`
	FalseStepOrder      *int   `json:"falseStepOrder,omitempty"`
}

// UpdateTemplateDTO carries the mutable fields of a draft template.
type UpdateTemplateDTO struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Specialty   *string `json:"specialty,omitempty"`
}

// CreatePathwayDTO is the data transfer object for starting a patient on a template.
type CreatePathwayDTO struct {
	TemplateID  uuid.UUID  `json:"templateId" binding:"required"`
	PatientID   uuid.UUID  `json:"patientId" binding:"required"`
	CreatedByID *uuid.UUID `json:"createdById"`
}

// CompleteStepDTO carries the completion of the pathway's current step.
type CompleteStepDTO struct {
	StepID        uuid.UUID  `json:"stepId" binding:"required"`
	CompletedByID *uuid.UUID `json:"completedById"`
	Notes         string     `json:"notes"`
}

// CompleteStepResultDTO reports the outcome of a step completion.
type CompleteStepResultDTO struct {
	Pathway         *PatientPathway `json:"pathway"`
	CompletedStepID uuid.UUID       `json:"completedStepId"`
	NextStepID      *uuid.UUID      `json:"nextStepId"`
	PathwayComplete bool            `json:"pathwayComplete"`
}

// CreateAssignmentDTO is the data transfer object for assigning a step to a clinician.
type CreateAssignmentDTO struct {
	PathwayID    uuid.UUID  `json:"pathwayId" binding:"required"`
	StepID       uuid.UUID  `json:"stepId" binding:"required"`
	AssignedToID uuid.UUID  `json:"assignedToId" binding:"required"`
	AssignedByID *uuid.UUID `json:"assignedById"`
	DueDate      *time.Time `json:"dueDate,omitempty"`
	Notes        string     `json:"notes"`
}

// UpdateAssignmentDTO carries the mutable fields of an assignment.
type UpdateAssignmentDTO struct {
	Status  *AssignmentStatus `json:"status,omitempty"`
	DueDate *time.Time        `json:"dueDate,omitempty"`
	Notes   *string           `json:"notes,omitempty"`
}
