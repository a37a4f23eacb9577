package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/OpenCarePath/carepath/internal/event"
	"github.com/OpenCarePath/carepath/internal/pathway/model"
	"github.com/OpenCarePath/carepath/utils"
)

// AssignmentService manages clinician assignments for pathway steps.
type AssignmentService struct {
	db     *gorm.DB
	events EventPublisher
}

func NewAssignmentService(db *gorm.DB, events EventPublisher) *AssignmentService {
	return &AssignmentService{db: db, events: events}
}

// CreateAssignment assigns a pathway step to a clinician. The step must
// belong to the pathway's template and carry no existing assignment. The
// step:assigned event is appended atomically with the assignment.
func (s *AssignmentService) CreateAssignment(ctx context.Context, createReq *model.CreateAssignmentDTO) (*model.StepAssignment, error) {
	if createReq == nil {
		return nil, fmt.Errorf("create request cannot be nil")
	}
	if createReq.PathwayID == uuid.Nil {
		return nil, fmt.Errorf("pathway ID cannot be nil")
	}
	if createReq.StepID == uuid.Nil {
		return nil, fmt.Errorf("step ID cannot be nil")
	}
	if createReq.AssignedToID == uuid.Nil {
		return nil, fmt.Errorf("assignee ID cannot be nil")
	}

	assignment := &model.StepAssignment{
		PathwayID:    createReq.PathwayID,
		StepID:       createReq.StepID,
		AssignedToID: createReq.AssignedToID,
		AssignedByID: createReq.AssignedByID,
		Status:       model.AssignmentStatusPending,
		DueDate:      createReq.DueDate,
		Notes:        createReq.Notes,
	}

	var assigned *event.Event
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pathway model.PatientPathway
		if err := tx.First(&pathway, "id = ?", createReq.PathwayID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPathwayNotFound
			}
			return fmt.Errorf("failed to retrieve pathway %s: %w", createReq.PathwayID, err)
		}

		var step model.PathwayStep
		if err := tx.First(&step, "id = ?", createReq.StepID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrStepNotInTemplate
			}
			return fmt.Errorf("failed to retrieve step %s: %w", createReq.StepID, err)
		}
		if step.TemplateID != pathway.TemplateID {
			return ErrStepNotInTemplate
		}

		var existingCount int64
		if err := tx.Model(&model.StepAssignment{}).
			Where("pathway_id = ? AND step_id = ?", createReq.PathwayID, createReq.StepID).
			Count(&existingCount).Error; err != nil {
			return fmt.Errorf("failed to check existing assignments: %w", err)
		}
		if existingCount > 0 {
			return ErrAssignmentExists
		}

		if err := tx.Create(assignment).Error; err != nil {
			return fmt.Errorf("failed to create assignment: %w", err)
		}

		data := map[string]any{
			"assignmentId": assignment.ID.String(),
			"pathwayId":    assignment.PathwayID.String(),
			"stepId":       assignment.StepID.String(),
			"assignedToId": assignment.AssignedToID.String(),
		}
		if assignment.AssignedByID != nil {
			data["assignedById"] = assignment.AssignedByID.String()
		}
		var err error
		assigned, err = s.events.PublishInTx(ctx, tx, &event.Event{
			EventType:     event.TypeStepAssigned,
			AggregateType: event.AggregateAssignment,
			AggregateID:   assignment.ID.String(),
			Data:          data,
		})
		if err != nil {
			return fmt.Errorf("failed to append step assigned event: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.Dispatch(ctx, assigned)
	return assignment, nil
}

// GetAssignmentByID retrieves a single assignment.
func (s *AssignmentService) GetAssignmentByID(ctx context.Context, assignmentID uuid.UUID) (*model.StepAssignment, error) {
	var assignment model.StepAssignment
	result := s.db.WithContext(ctx).
		Preload("Step").
		First(&assignment, "id = ?", assignmentID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to retrieve assignment %s: %w", assignmentID, result.Error)
	}
	return &assignment, nil
}

// GetAssignmentsByPathwayID retrieves all assignments on a pathway.
func (s *AssignmentService) GetAssignmentsByPathwayID(ctx context.Context, pathwayID uuid.UUID) ([]model.StepAssignment, error) {
	if pathwayID == uuid.Nil {
		return nil, fmt.Errorf("pathway ID cannot be nil")
	}

	var assignments []model.StepAssignment
	result := s.db.WithContext(ctx).
		Preload("Step").
		Where("pathway_id = ?", pathwayID).
		Order("created_at ASC").
		Find(&assignments)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to retrieve assignments for pathway %s: %w", pathwayID, result.Error)
	}
	return assignments, nil
}

// GetAssignmentsForUser retrieves a clinician's assignments, soonest due first.
func (s *AssignmentService) GetAssignmentsForUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]model.StepAssignment, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user ID cannot be nil")
	}
	finalOffset, finalLimit := utils.GetPaginationParams(&offset, &limit)

	var assignments []model.StepAssignment
	result := s.db.WithContext(ctx).
		Preload("Step").
		Where("assigned_to_id = ?", userID).
		Order("due_date ASC NULLS LAST").
		Offset(finalOffset).
		Limit(finalLimit).
		Find(&assignments)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to retrieve assignments for user %s: %w", userID, result.Error)
	}
	return assignments, nil
}

// UpdateAssignment updates an assignment's status, due date, or notes.
func (s *AssignmentService) UpdateAssignment(ctx context.Context, assignmentID uuid.UUID, updateReq *model.UpdateAssignmentDTO) (*model.StepAssignment, error) {
	if updateReq == nil {
		return nil, fmt.Errorf("update request cannot be nil")
	}

	assignment, err := s.GetAssignmentByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	if updateReq.Status != nil {
		switch *updateReq.Status {
		case model.AssignmentStatusPending, model.AssignmentStatusInProgress, model.AssignmentStatusDone:
			assignment.Status = *updateReq.Status
		default:
			return nil, fmt.Errorf("invalid assignment status %q", *updateReq.Status)
		}
	}
	if updateReq.DueDate != nil {
		assignment.DueDate = updateReq.DueDate
	}
	if updateReq.Notes != nil {
		assignment.Notes = *updateReq.Notes
	}

	if err := s.db.WithContext(ctx).Save(assignment).Error; err != nil {
		return nil, fmt.Errorf("failed to update assignment %s: %w", assignmentID, err)
	}
	return assignment, nil
}

// DeleteAssignment removes an assignment.
func (s *AssignmentService) DeleteAssignment(ctx context.Context, assignmentID uuid.UUID) error {
	result := s.db.WithContext(ctx).Delete(&model.StepAssignment{}, "id = ?", assignmentID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete assignment %s: %w", assignmentID, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAssignmentNotFound
	}
	return nil
}
