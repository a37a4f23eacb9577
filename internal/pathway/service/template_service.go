package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/OpenCarePath/carepath/internal/pathway/model"
	"github.com/OpenCarePath/carepath/utils"
)

// TemplateService provides authoring and retrieval of pathway templates.
// It implements TemplateProvider for the engine.
type TemplateService struct {
	db *gorm.DB
}

func NewTemplateService(db *gorm.DB) *TemplateService {
	return &TemplateService{db: db}
}

// GetTemplateWithSteps retrieves a template with its steps and decision
// points, steps ordered by step order.
func (s *TemplateService) GetTemplateWithSteps(ctx context.Context, templateID uuid.UUID) (*model.PathwayTemplate, error) {
	var template model.PathwayTemplate
	result := s.db.WithContext(ctx).
		Preload("Steps", func(db *gorm.DB) *gorm.DB {
			return db.Order("pathway_steps.step_order ASC")
		}).
		Preload("Steps.DecisionPoint").
		First(&template, "id = ?", templateID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to retrieve template %s: %w", templateID, result.Error)
	}
	return &template, nil
}

// CreateTemplate creates a draft template together with its steps, decision
// points, and step dependencies. Decision point and dependency targets are
// given as step orders and resolved to step IDs once the steps are persisted.
func (s *TemplateService) CreateTemplate(ctx context.Context, createReq *model.CreateTemplateDTO) (*model.PathwayTemplate, error) {
	if createReq == nil {
		return nil, fmt.Errorf("create request cannot be nil")
	}
	if createReq.Name == "" {
		return nil, fmt.Errorf("template name cannot be empty")
	}
	if err := validateStepInputs(createReq.Steps); err != nil {
		return nil, err
	}

	version := createReq.Version
	if version == "" {
		version = "1.0"
	}

	template := &model.PathwayTemplate{
		Name:        createReq.Name,
		Description: createReq.Description,
		Specialty:   createReq.Specialty,
		Version:     version,
		Status:      model.TemplateStatusDraft,
		CreatedByID: createReq.CreatedByID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(template).Error; err != nil {
			return fmt.Errorf("failed to create template: %w", err)
		}

		if len(createReq.Steps) == 0 {
			return nil
		}

		steps := make([]model.PathwayStep, len(createReq.Steps))
		for i, stepReq := range createReq.Steps {
			roles := stepReq.RequiredRoles
			if roles == nil {
				roles = []string{}
			}
			steps[i] = model.PathwayStep{
				TemplateID:            template.ID,
				Name:                  stepReq.Name,
				Description:           stepReq.Description,
				StepOrder:             stepReq.StepOrder,
				StepType:              stepReq.StepType,
				EstimatedDurationDays: stepReq.EstimatedDurationDays,
				RequiredRoles:         model.StringArray(roles),
			}
		}
		if err := tx.Create(&steps).Error; err != nil {
			return fmt.Errorf("failed to create template steps: %w", err)
		}

		stepIDByOrder := make(map[int]uuid.UUID, len(steps))
		for _, step := range steps {
			stepIDByOrder[step.StepOrder] = step.ID
		}

		for i, stepReq := range createReq.Steps {
			if stepReq.DecisionPoint != nil {
				dp, err := buildDecisionPoint(steps[i].ID, stepReq.DecisionPoint, stepIDByOrder)
				if err != nil {
					return err
				}
				if err := tx.Create(dp).Error; err != nil {
					return fmt.Errorf("failed to create decision point for step %d: %w", stepReq.StepOrder, err)
				}
			}

			for _, depOrder := range stepReq.DependsOnOrders {
				depID, exists := stepIDByOrder[depOrder]
				if !exists {
					return fmt.Errorf("%w: step %d depends on unknown step order %d", ErrInvalidTemplate, stepReq.StepOrder, depOrder)
				}
				dependency := &model.StepDependency{
					StepID:           steps[i].ID,
					DependencyStepID: depID,
				}
				if err := tx.Create(dependency).Error; err != nil {
					return fmt.Errorf("failed to create step dependency for step %d: %w", stepReq.StepOrder, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetTemplateWithSteps(ctx, template.ID)
}

func validateStepInputs(steps []model.CreateTemplateStepDTO) error {
	seenOrders := make(map[int]bool, len(steps))
	for _, stepReq := range steps {
		if stepReq.Name == "" {
			return fmt.Errorf("%w: step name cannot be empty", ErrInvalidTemplate)
		}
		if stepReq.StepOrder <= 0 {
			return fmt.Errorf("%w: step order must be positive, got %d", ErrInvalidTemplate, stepReq.StepOrder)
		}
		if seenOrders[stepReq.StepOrder] {
			return fmt.Errorf("%w: duplicate step order %d", ErrInvalidTemplate, stepReq.StepOrder)
		}
		seenOrders[stepReq.StepOrder] = true

		if stepReq.DecisionPoint != nil {
			if err := ValidateConditionExpression(stepReq.DecisionPoint.ConditionExpression); err != nil {
				return fmt.Errorf("%w: step %d has an invalid condition: %v", ErrInvalidTemplate, stepReq.StepOrder, err)
			}
		}
	}
	return nil
}

func buildDecisionPoint(stepID uuid.UUID, dpReq *model.CreateDecisionPointDTO, stepIDByOrder map[int]uuid.UUID) (*model.DecisionPoint, error) {
	dp := &model.DecisionPoint{
		StepID:              stepID,
		ConditionExpression: dpReq.ConditionExpression,
	}
	if dpReq.TrueStepOrder != nil {
		trueID, exists := stepIDByOrder[*dpReq.TrueStepOrder]
		if !exists {
			return nil, fmt.Errorf("%w: decision point targets unknown step order %d", ErrInvalidTemplate, *dpReq.TrueStepOrder)
		}
		dp.TrueStepID = &trueID
	}
	if dpReq.FalseStepOrder != nil {
		falseID, exists := stepIDByOrder[*dpReq.FalseStepOrder]
		if !exists {
			return nil, fmt.Errorf("%w: decision point targets unknown step order %d", ErrInvalidTemplate, *dpReq.FalseStepOrder)
		}
		dp.FalseStepID = &falseID
	}
	return dp, nil
}

// UpdateTemplate updates a draft template's metadata. Published and archived
// templates are immutable.
func (s *TemplateService) UpdateTemplate(ctx context.Context, templateID uuid.UUID, updateReq *model.UpdateTemplateDTO) (*model.PathwayTemplate, error) {
	if updateReq == nil {
		return nil, fmt.Errorf("update request cannot be nil")
	}

	template, err := s.GetTemplateWithSteps(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if template.Status != model.TemplateStatusDraft {
		return nil, fmt.Errorf("%w: only draft templates can be updated", ErrInvalidTemplate)
	}

	if updateReq.Name != nil {
		template.Name = *updateReq.Name
	}
	if updateReq.Description != nil {
		template.Description = *updateReq.Description
	}
	if updateReq.Specialty != nil {
		template.Specialty = *updateReq.Specialty
	}

	if err := s.db.WithContext(ctx).Save(template).Error; err != nil {
		return nil, fmt.Errorf("failed to update template %s: %w", templateID, err)
	}
	return template, nil
}

// PublishTemplate validates the template's step graph and marks it published,
// making it available for instantiation.
func (s *TemplateService) PublishTemplate(ctx context.Context, templateID uuid.UUID) (*model.PathwayTemplate, error) {
	template, err := s.GetTemplateWithSteps(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if template.Status == model.TemplateStatusPublished {
		return template, nil
	}
	if template.Status == model.TemplateStatusArchived {
		return nil, fmt.Errorf("%w: archived templates cannot be published", ErrInvalidTemplate)
	}

	if _, err := BuildStepGraph(template); err != nil {
		return nil, err
	}
	for _, step := range template.Steps {
		if step.DecisionPoint != nil {
			if err := ValidateConditionExpression(step.DecisionPoint.ConditionExpression); err != nil {
				return nil, fmt.Errorf("%w: step %d has an invalid condition: %v", ErrInvalidTemplate, step.StepOrder, err)
			}
		}
	}

	template.Status = model.TemplateStatusPublished
	if err := s.db.WithContext(ctx).Model(&model.PathwayTemplate{}).
		Where("id = ?", template.ID).
		Update("status", model.TemplateStatusPublished).Error; err != nil {
		return nil, fmt.Errorf("failed to publish template %s: %w", templateID, err)
	}
	return template, nil
}

// ArchiveTemplate retires a template from instantiation. Pathways already
// running on it are unaffected.
func (s *TemplateService) ArchiveTemplate(ctx context.Context, templateID uuid.UUID) (*model.PathwayTemplate, error) {
	template, err := s.GetTemplateWithSteps(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if template.Status == model.TemplateStatusArchived {
		return template, nil
	}

	template.Status = model.TemplateStatusArchived
	if err := s.db.WithContext(ctx).Model(&model.PathwayTemplate{}).
		Where("id = ?", template.ID).
		Update("status", model.TemplateStatusArchived).Error; err != nil {
		return nil, fmt.Errorf("failed to archive template %s: %w", templateID, err)
	}
	return template, nil
}

// ListTemplates retrieves templates, optionally filtered by specialty and
// status.
func (s *TemplateService) ListTemplates(ctx context.Context, specialty string, status model.TemplateStatus, offset, limit int) ([]model.PathwayTemplate, error) {
	finalOffset, finalLimit := utils.GetPaginationParams(&offset, &limit)

	query := s.db.WithContext(ctx).Model(&model.PathwayTemplate{})
	if specialty != "" {
		query = query.Where("specialty = ?", specialty)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var templates []model.PathwayTemplate
	result := query.
		Order("created_at DESC").
		Offset(finalOffset).
		Limit(finalLimit).
		Find(&templates)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to retrieve templates: %w", result.Error)
	}
	return templates, nil
}
