package insight

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/OpenCarePath/carepath/internal/event"
	"github.com/OpenCarePath/carepath/utils"
)

// ErrInsightNotFound is returned when the referenced insight does not exist.
var ErrInsightNotFound = errors.New("insight not found")

// Service generates rule-based insights for pathways as they progress. It
// reacts to pathway lifecycle events and never sits on the write path of the
// pathway itself.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// RegisterEventHandlers subscribes the insight generators to the bus.
func (s *Service) RegisterEventHandlers(bus *event.Bus) {
	bus.Subscribe(event.TypePathwayInitialized, s.handlePathwayInitialized)
	bus.Subscribe(event.TypePathwayStepCompleted, s.handleStepCompleted)
	bus.Subscribe(event.TypePathwayCompleted, s.handlePathwayCompleted)
}

func (s *Service) handlePathwayInitialized(ctx context.Context, evt *event.Event) error {
	pathwayID, patientID, err := pathwayIdentity(evt)
	if err != nil {
		return err
	}

	summary, err := s.loadSummary(ctx, pathwayID)
	if err != nil {
		return err
	}

	content := fmt.Sprintf(
		"Pathway %q started for the patient. It has %d steps with an estimated duration of %d days. The first step is %q.",
		summary.TemplateName, summary.TotalSteps, summary.EstimatedDays, summary.CurrentStepName)
	return s.record(ctx, pathwayID, patientID, TypePathwayOverview, content)
}

func (s *Service) handleStepCompleted(ctx context.Context, evt *event.Event) error {
	pathwayID, patientID, err := pathwayIdentity(evt)
	if err != nil {
		return err
	}

	summary, err := s.loadSummary(ctx, pathwayID)
	if err != nil {
		return err
	}

	var content string
	if summary.TotalSteps > 0 {
		pct := summary.CompletedSteps * 100 / summary.TotalSteps
		content = fmt.Sprintf(
			"The patient has completed %d of %d steps (%d%%) of pathway %q.",
			summary.CompletedSteps, summary.TotalSteps, pct, summary.TemplateName)
	} else {
		content = fmt.Sprintf("The patient has completed a step of pathway %q.", summary.TemplateName)
	}
	if summary.CurrentStepName != "" {
		content += fmt.Sprintf(" The next step is %q.", summary.CurrentStepName)
	}
	return s.record(ctx, pathwayID, patientID, TypeStepProgress, content)
}

func (s *Service) handlePathwayCompleted(ctx context.Context, evt *event.Event) error {
	pathwayID, patientID, err := pathwayIdentity(evt)
	if err != nil {
		return err
	}

	summary, err := s.loadSummary(ctx, pathwayID)
	if err != nil {
		return err
	}

	content := fmt.Sprintf(
		"Pathway %q is complete. All %d completed steps are recorded in the pathway history.",
		summary.TemplateName, summary.CompletedSteps)
	return s.record(ctx, pathwayID, patientID, TypeCompletion, content)
}

// pathwaySummary carries the handful of facts the generators phrase insights
// from.
type pathwaySummary struct {
	TemplateName    string
	CurrentStepName string
	TotalSteps      int
	CompletedSteps  int
	EstimatedDays   int
}

func (s *Service) loadSummary(ctx context.Context, pathwayID uuid.UUID) (*pathwaySummary, error) {
	row := struct {
		TemplateID    uuid.UUID
		CurrentStepID *uuid.UUID
	}{}
	if err := s.db.WithContext(ctx).
		Table("patient_pathways").
		Select("template_id", "current_step_id").
		Where("id = ?", pathwayID).
		Scan(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to look up pathway %s: %w", pathwayID, err)
	}

	summary := &pathwaySummary{}

	templateRow := struct{ Name string }{}
	if err := s.db.WithContext(ctx).
		Table("pathway_templates").
		Select("name").
		Where("id = ?", row.TemplateID).
		Scan(&templateRow).Error; err != nil {
		return nil, fmt.Errorf("failed to look up template %s: %w", row.TemplateID, err)
	}
	summary.TemplateName = templateRow.Name

	steps := struct {
		Total int
		Days  int
	}{}
	if err := s.db.WithContext(ctx).
		Table("pathway_steps").
		Select("COUNT(*) AS total, COALESCE(SUM(estimated_duration_days), 0) AS days").
		Where("template_id = ?", row.TemplateID).
		Scan(&steps).Error; err != nil {
		return nil, fmt.Errorf("failed to count template steps: %w", err)
	}
	summary.TotalSteps = steps.Total
	summary.EstimatedDays = steps.Days

	var completed int64
	if err := s.db.WithContext(ctx).
		Table("completed_steps").
		Where("pathway_id = ?", pathwayID).
		Count(&completed).Error; err != nil {
		return nil, fmt.Errorf("failed to count completed steps: %w", err)
	}
	summary.CompletedSteps = int(completed)

	if row.CurrentStepID != nil {
		stepRow := struct{ Name string }{}
		if err := s.db.WithContext(ctx).
			Table("pathway_steps").
			Select("name").
			Where("id = ?", *row.CurrentStepID).
			Scan(&stepRow).Error; err != nil {
			return nil, fmt.Errorf("failed to look up step %s: %w", *row.CurrentStepID, err)
		}
		summary.CurrentStepName = stepRow.Name
	}

	return summary, nil
}

func (s *Service) record(ctx context.Context, pathwayID uuid.UUID, patientID *uuid.UUID, insightType InsightType, content string) error {
	insight := &AIInsight{
		PathwayID:   pathwayID,
		PatientID:   patientID,
		InsightType: insightType,
		Status:      StatusActive,
		Content:     content,
		GeneratedAt: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(insight).Error; err != nil {
		return fmt.Errorf("failed to store insight: %w", err)
	}
	return nil
}

// ListForPathway returns a pathway's insights, newest first.
func (s *Service) ListForPathway(ctx context.Context, pathwayID uuid.UUID, offset, limit int) ([]AIInsight, error) {
	offset, limit = utils.GetPaginationParams(&offset, &limit)

	var insights []AIInsight
	if err := s.db.WithContext(ctx).
		Where("pathway_id = ?", pathwayID).
		Order("generated_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&insights).Error; err != nil {
		return nil, fmt.Errorf("failed to list insights for pathway %s: %w", pathwayID, err)
	}
	return insights, nil
}

// ListForPatient returns a patient's insights across all pathways, newest
// first, optionally restricted to active ones.
func (s *Service) ListForPatient(ctx context.Context, patientID uuid.UUID, activeOnly bool, offset, limit int) ([]AIInsight, error) {
	offset, limit = utils.GetPaginationParams(&offset, &limit)

	query := s.db.WithContext(ctx).Where("patient_id = ?", patientID)
	if activeOnly {
		query = query.Where("status = ?", StatusActive)
	}

	var insights []AIInsight
	if err := query.
		Order("generated_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&insights).Error; err != nil {
		return nil, fmt.Errorf("failed to list insights for patient %s: %w", patientID, err)
	}
	return insights, nil
}

// Dismiss hides an insight from active listings.
func (s *Service) Dismiss(ctx context.Context, insightID uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Model(&AIInsight{}).
		Where("id = ?", insightID).
		Update("status", StatusDismissed)
	if result.Error != nil {
		return fmt.Errorf("failed to dismiss insight %s: %w", insightID, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrInsightNotFound
	}
	return nil
}

func pathwayIdentity(evt *event.Event) (uuid.UUID, *uuid.UUID, error) {
	raw, ok := evt.Data["pathwayId"].(string)
	if !ok {
		return uuid.Nil, nil, fmt.Errorf("event %s has no pathway ID", evt.ID)
	}
	pathwayID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("invalid pathway ID in event %s: %w", evt.ID, err)
	}

	var patientID *uuid.UUID
	if raw, ok := evt.Data["patientId"].(string); ok {
		if parsed, err := uuid.Parse(raw); err == nil {
			patientID = &parsed
		}
	}
	return pathwayID, patientID, nil
}
