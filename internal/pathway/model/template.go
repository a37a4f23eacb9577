package model

import (
	"github.com/google/uuid"
)

// TemplateStatus represents the lifecycle status of a pathway template.
type TemplateStatus string

const (
	TemplateStatusDraft     TemplateStatus = "draft"     // Template is being authored and cannot be instantiated
	TemplateStatusPublished TemplateStatus = "published" // Template is available for new pathway instances
	TemplateStatusArchived  TemplateStatus = "archived"  // Template is retired; existing instances keep running
)

// PathwayTemplate is a reusable definition of an ordered, optionally branching
// sequence of clinical steps. Once referenced by an active pathway it is a
// read-only input to the engine.
type PathwayTemplate struct {
	BaseModel
	Name        string         `gorm:"type:varchar(255);column:name;not null" json:"name"`
	Description string         `gorm:"type:text;column:description" json:"description"`
	Specialty   string         `gorm:"type:varchar(100);column:specialty" json:"specialty"`
	Version     string         `gorm:"type:varchar(50);column:version;not null" json:"version"`
	Status      TemplateStatus `gorm:"type:varchar(20);column:status;not null" json:"status"`
	CreatedByID *uuid.UUID     `gorm:"type:uuid;column:created_by_id" json:"createdById,omitempty"`

	// Relationships
	Steps []PathwayStep `gorm:"foreignKey:TemplateID;references:ID" json:"steps,omitempty"`
}

func (pt *PathwayTemplate) TableName() string {
	return "pathway_templates"
}

// PathwayStep is one unit of work in a template. StepOrder is 1-based and
// unique within the template.
type PathwayStep struct {
	BaseModel
	TemplateID            uuid.UUID   `gorm:"type:uuid;column:template_id;not null;index" json:"templateId"`
	Name                  string      `gorm:"type:varchar(255);column:name;not null" json:"name"`
	Description           string      `gorm:"type:text;column:description" json:"description"`
	StepOrder             int         `gorm:"column:step_order;not null" json:"stepOrder"`
	StepType              string      `gorm:"type:varchar(50);column:step_type;not null" json:"stepType"`
	EstimatedDurationDays int         `gorm:"column:estimated_duration_days;not null" json:"estimatedDurationDays"` // unit: days, non-negative
	RequiredRoles         StringArray `gorm:"type:jsonb;column:required_roles;serializer:json" json:"requiredRoles"`

	// Relationships
	DecisionPoint *DecisionPoint `gorm:"foreignKey:StepID;references:ID" json:"decisionPoint,omitempty"`
}

func (ps *PathwayStep) TableName() string {
	return "pathway_steps"
}

// DecisionPoint is a conditional branch attached to a step. Either target may
// be nil, meaning the pathway ends on that branch. Both targets, when set,
// must reference steps of the same template.
type DecisionPoint struct {
	BaseModel
	StepID              uuid.UUID  `gorm:"type:uuid;column:step_id;not null;uniqueIndex" json:"stepId"`
	ConditionExpression string     `gorm:"type:text;column:condition_expression;not null" json:"conditionExpression"`
	TrueStepID          *uuid.UUID `gorm:"type:uuid;column:true_step_id" json:"trueStepId,omitempty"`
	FalseStepID         *uuid.UUID `gorm:"type:uuid;column:false_step_id" json:"falseStepId,omitempty"`
}

func (dp *DecisionPoint) TableName() string {
	return "decision_points"
}

// StepDependency is a same-template prerequisite edge. Dependencies are
// recorded for validation and reporting; the transition engine's advancement
// rule does not consult them.
type StepDependency struct {
	BaseModel
	StepID           uuid.UUID `gorm:"type:uuid;column:step_id;not null;index" json:"stepId"`
	DependencyStepID uuid.UUID `gorm:"type:uuid;column:dependency_step_id;not null" json:"dependencyStepId"`
}

func (sd *StepDependency) TableName() string {
	return "step_dependencies"
}
