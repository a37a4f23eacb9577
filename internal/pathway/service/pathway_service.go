package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/OpenCarePath/carepath/internal/pathway/model"
	"github.com/OpenCarePath/carepath/utils"
)

// PathwayService provides persistence operations for patient pathways.
// It implements PathwayRepository for the engine.
type PathwayService struct {
	db *gorm.DB
}

func NewPathwayService(db *gorm.DB) *PathwayService {
	return &PathwayService{db: db}
}

// CreatePathwayInTx persists a new pathway within an existing transaction.
func (s *PathwayService) CreatePathwayInTx(ctx context.Context, tx *gorm.DB, pathway *model.PatientPathway) error {
	if pathway == nil {
		return fmt.Errorf("pathway cannot be nil")
	}
	if err := tx.WithContext(ctx).Create(pathway).Error; err != nil {
		return fmt.Errorf("failed to create pathway: %w", err)
	}
	return nil
}

// GetPathwayForUpdateInTx retrieves a pathway with a row lock and its
// completion history within an existing transaction.
func (s *PathwayService) GetPathwayForUpdateInTx(ctx context.Context, tx *gorm.DB, pathwayID uuid.UUID) (*model.PatientPathway, error) {
	var pathway model.PatientPathway
	result := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&pathway, "id = ?", pathwayID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrPathwayNotFound
		}
		return nil, fmt.Errorf("failed to retrieve pathway %s: %w", pathwayID, result.Error)
	}

	if err := tx.WithContext(ctx).
		Where("pathway_id = ?", pathwayID).
		Order("completed_at ASC").
		Find(&pathway.CompletedSteps).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve completed steps for pathway %s: %w", pathwayID, err)
	}
	return &pathway, nil
}

// AdvancePathwayInTx persists a pathway transition within an existing
// transaction. The update is guarded on the step the caller observed, so a
// transition raced by another writer affects zero rows and surfaces as
// ErrConcurrentModification instead of silently overwriting.
func (s *PathwayService) AdvancePathwayInTx(ctx context.Context, tx *gorm.DB, pathway *model.PatientPathway, expectedStepID uuid.UUID) error {
	if pathway == nil {
		return fmt.Errorf("pathway cannot be nil")
	}

	result := tx.WithContext(ctx).Model(&model.PatientPathway{}).
		Where("id = ? AND current_step_id = ?", pathway.ID, expectedStepID).
		Updates(map[string]any{
			"current_step_id": pathway.CurrentStepID,
			"status":          pathway.Status,
			"actual_end_date": pathway.ActualEndDate,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to advance pathway %s: %w", pathway.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrConcurrentModification
	}
	return nil
}

// CreateCompletedStepInTx appends a completion record within an existing
// transaction.
func (s *PathwayService) CreateCompletedStepInTx(ctx context.Context, tx *gorm.DB, completed *model.CompletedStep) error {
	if completed == nil {
		return fmt.Errorf("completed step cannot be nil")
	}
	if err := tx.WithContext(ctx).Create(completed).Error; err != nil {
		return fmt.Errorf("failed to create completed step: %w", err)
	}
	return nil
}

// GetPathwayByID retrieves a pathway with its template, current step, and
// completion history.
func (s *PathwayService) GetPathwayByID(ctx context.Context, pathwayID uuid.UUID) (*model.PatientPathway, error) {
	var pathway model.PatientPathway
	result := s.db.WithContext(ctx).
		Preload("Template.Steps", func(db *gorm.DB) *gorm.DB {
			return db.Order("pathway_steps.step_order ASC")
		}).
		Preload("Template.Steps.DecisionPoint").
		Preload("CurrentStep").
		Preload("CompletedSteps", func(db *gorm.DB) *gorm.DB {
			return db.Order("completed_steps.completed_at ASC")
		}).
		First(&pathway, "id = ?", pathwayID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrPathwayNotFound
		}
		return nil, fmt.Errorf("failed to retrieve pathway %s: %w", pathwayID, result.Error)
	}
	return &pathway, nil
}

// GetPathwaysByPatientID retrieves a patient's pathways, newest first.
func (s *PathwayService) GetPathwaysByPatientID(ctx context.Context, patientID uuid.UUID, offset, limit int) ([]model.PatientPathway, error) {
	finalOffset, finalLimit := utils.GetPaginationParams(&offset, &limit)

	var pathways []model.PatientPathway
	result := s.db.WithContext(ctx).
		Preload("CurrentStep").
		Where("patient_id = ?", patientID).
		Order("start_date DESC").
		Offset(finalOffset).
		Limit(finalLimit).
		Find(&pathways)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to retrieve pathways for patient %s: %w", patientID, result.Error)
	}
	return pathways, nil
}

// GetActivePathways retrieves in-progress pathways across all patients.
func (s *PathwayService) GetActivePathways(ctx context.Context, offset, limit int) ([]model.PatientPathway, error) {
	finalOffset, finalLimit := utils.GetPaginationParams(&offset, &limit)

	var pathways []model.PatientPathway
	result := s.db.WithContext(ctx).
		Preload("CurrentStep").
		Where("status = ?", model.PathwayStatusActive).
		Order("start_date ASC").
		Offset(finalOffset).
		Limit(finalLimit).
		Find(&pathways)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to retrieve active pathways: %w", result.Error)
	}
	return pathways, nil
}

// GetStepByIDInTx retrieves a template step within an existing transaction.
func (s *PathwayService) GetStepByIDInTx(ctx context.Context, tx *gorm.DB, stepID uuid.UUID) (*model.PathwayStep, error) {
	var step model.PathwayStep
	result := tx.WithContext(ctx).First(&step, "id = ?", stepID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrStepNotInTemplate
		}
		return nil, fmt.Errorf("failed to retrieve step %s: %w", stepID, result.Error)
	}
	return &step, nil
}
