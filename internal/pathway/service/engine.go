package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/OpenCarePath/carepath/internal/event"
	"github.com/OpenCarePath/carepath/internal/pathway/model"
)

// TemplateProvider loads templates with their steps and decision points.
type TemplateProvider interface {
	GetTemplateWithSteps(ctx context.Context, templateID uuid.UUID) (*model.PathwayTemplate, error)
}

// PathwayRepository persists patient pathways and their completion records.
type PathwayRepository interface {
	CreatePathwayInTx(ctx context.Context, tx *gorm.DB, pathway *model.PatientPathway) error
	GetPathwayForUpdateInTx(ctx context.Context, tx *gorm.DB, pathwayID uuid.UUID) (*model.PatientPathway, error)
	AdvancePathwayInTx(ctx context.Context, tx *gorm.DB, pathway *model.PatientPathway, expectedStepID uuid.UUID) error
	CreateCompletedStepInTx(ctx context.Context, tx *gorm.DB, completed *model.CompletedStep) error
	GetPathwayByID(ctx context.Context, pathwayID uuid.UUID) (*model.PatientPathway, error)
	GetPathwaysByPatientID(ctx context.Context, patientID uuid.UUID, offset, limit int) ([]model.PatientPathway, error)
	GetActivePathways(ctx context.Context, offset, limit int) ([]model.PatientPathway, error)
}

// EventPublisher appends domain events inside the engine's transaction and
// fans them out to subscribers after commit.
type EventPublisher interface {
	PublishInTx(ctx context.Context, tx *gorm.DB, evt *event.Event) (*event.Event, error)
	Dispatch(ctx context.Context, evt *event.Event)
}

// PatientProvider checks patient existence at the pathway boundary.
type PatientProvider interface {
	PatientExists(ctx context.Context, patientID uuid.UUID) (bool, error)
}

// PathwayEngine advances patient pathways through their template's steps.
// All state transitions run inside a transaction together with the domain
// events they emit; subscribers are notified only after the transaction
// commits.
type PathwayEngine struct {
	db        *gorm.DB
	templates TemplateProvider
	patients  PatientProvider
	repo      PathwayRepository
	events    EventPublisher
	evaluator ConditionEvaluator

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewPathwayEngine(
	db *gorm.DB,
	templates TemplateProvider,
	patients PatientProvider,
	repo PathwayRepository,
	events EventPublisher,
	evaluator ConditionEvaluator,
) *PathwayEngine {
	return &PathwayEngine{
		db:        db,
		templates: templates,
		patients:  patients,
		repo:      repo,
		events:    events,
		evaluator: evaluator,
		locks:     make(map[uuid.UUID]*sync.Mutex),
	}
}

// lockPathway serializes transitions on a single pathway within this process.
// The database-level guard in AdvancePathwayInTx still protects against
// concurrent writers in other processes.
func (e *PathwayEngine) lockPathway(pathwayID uuid.UUID) func() {
	e.mu.Lock()
	lock, exists := e.locks[pathwayID]
	if !exists {
		lock = &sync.Mutex{}
		e.locks[pathwayID] = lock
	}
	e.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// InitializePathway starts a patient on a published template. The pathway
// begins at the template's first step in order, and a pathway:initialized
// event is appended atomically with the creation.
func (e *PathwayEngine) InitializePathway(ctx context.Context, createReq *model.CreatePathwayDTO) (*model.PatientPathway, error) {
	if createReq == nil {
		return nil, fmt.Errorf("create request cannot be nil")
	}
	if createReq.TemplateID == uuid.Nil {
		return nil, fmt.Errorf("template ID cannot be nil")
	}
	if createReq.PatientID == uuid.Nil {
		return nil, fmt.Errorf("patient ID cannot be nil")
	}

	if e.patients != nil {
		exists, err := e.patients.PatientExists(ctx, createReq.PatientID)
		if err != nil {
			return nil, fmt.Errorf("failed to check patient %s: %w", createReq.PatientID, err)
		}
		if !exists {
			return nil, ErrPatientNotFound
		}
	}

	template, err := e.templates.GetTemplateWithSteps(ctx, createReq.TemplateID)
	if err != nil {
		return nil, err
	}
	if template.Status != model.TemplateStatusPublished {
		return nil, ErrTemplateNotPublished
	}

	graph, err := BuildStepGraph(template)
	if err != nil {
		return nil, err
	}

	firstStep := graph.FirstStep()
	now := time.Now().UTC()
	estimatedEnd := now.AddDate(0, 0, graph.TotalEstimatedDays())

	pathway := &model.PatientPathway{
		PatientID:        createReq.PatientID,
		TemplateID:       template.ID,
		CurrentStepID:    &firstStep.ID,
		Status:           model.PathwayStatusActive,
		StartDate:        now,
		EstimatedEndDate: &estimatedEnd,
		CreatedByID:      createReq.CreatedByID,
	}

	var initialized *event.Event
	err = e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := e.repo.CreatePathwayInTx(ctx, tx, pathway); err != nil {
			return fmt.Errorf("failed to create pathway: %w", err)
		}

		evt := &event.Event{
			EventType:     event.TypePathwayInitialized,
			AggregateType: event.AggregatePathway,
			AggregateID:   pathway.ID.String(),
			Data: map[string]any{
				"pathwayId":     pathway.ID.String(),
				"patientId":     pathway.PatientID.String(),
				"templateId":    pathway.TemplateID.String(),
				"currentStepId": firstStep.ID.String(),
			},
		}
		initialized, err = e.events.PublishInTx(ctx, tx, evt)
		if err != nil {
			return fmt.Errorf("failed to append pathway initialized event: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.events.Dispatch(ctx, initialized)
	pathway.CurrentStep = firstStep
	return pathway, nil
}

// CompleteStep records the completion of the pathway's current step and
// advances the pathway. The submitted step must be the current step; any
// other step is rejected with ErrStepMismatch, which also makes repeated
// submissions of an already-completed step idempotent failures rather than
// double transitions.
func (e *PathwayEngine) CompleteStep(ctx context.Context, pathwayID uuid.UUID, completeReq *model.CompleteStepDTO) (*model.CompleteStepResultDTO, error) {
	if pathwayID == uuid.Nil {
		return nil, fmt.Errorf("pathway ID cannot be nil")
	}
	if completeReq == nil {
		return nil, fmt.Errorf("complete request cannot be nil")
	}
	if completeReq.StepID == uuid.Nil {
		return nil, fmt.Errorf("step ID cannot be nil")
	}

	unlock := e.lockPathway(pathwayID)
	defer unlock()

	var (
		result *model.CompleteStepResultDTO
		toSend []*event.Event
	)
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pathway, err := e.repo.GetPathwayForUpdateInTx(ctx, tx, pathwayID)
		if err != nil {
			return err
		}
		if pathway.Status != model.PathwayStatusActive {
			return ErrPathwayNotActive
		}
		if pathway.CurrentStepID == nil || *pathway.CurrentStepID != completeReq.StepID {
			return ErrStepMismatch
		}

		template, err := e.templates.GetTemplateWithSteps(ctx, pathway.TemplateID)
		if err != nil {
			return err
		}
		graph, err := BuildStepGraph(template)
		if err != nil {
			return err
		}
		currentStep := graph.StepByID(completeReq.StepID)
		if currentStep == nil {
			return ErrStepNotInTemplate
		}

		completedAt := time.Now().UTC()
		completed := &model.CompletedStep{
			PathwayID:     pathway.ID,
			StepID:        currentStep.ID,
			CompletedByID: completeReq.CompletedByID,
			CompletedAt:   completedAt,
			Notes:         completeReq.Notes,
		}
		if err := e.repo.CreateCompletedStepInTx(ctx, tx, completed); err != nil {
			return fmt.Errorf("failed to record completed step: %w", err)
		}

		nextStep, err := e.resolveNextStep(graph, pathway, currentStep)
		if err != nil {
			return err
		}

		expectedStepID := *pathway.CurrentStepID
		if nextStep != nil {
			pathway.CurrentStepID = &nextStep.ID
		} else {
			pathway.CurrentStepID = nil
			pathway.Status = model.PathwayStatusCompleted
			pathway.ActualEndDate = &completedAt
		}
		if err := e.repo.AdvancePathwayInTx(ctx, tx, pathway, expectedStepID); err != nil {
			return err
		}

		stepData := map[string]any{
			"pathwayId": pathway.ID.String(),
			"patientId": pathway.PatientID.String(),
			"stepId":    currentStep.ID.String(),
		}
		if completeReq.CompletedByID != nil {
			stepData["actorId"] = completeReq.CompletedByID.String()
		}
		if nextStep != nil {
			stepData["nextStepId"] = nextStep.ID.String()
		} else {
			stepData["nextStepId"] = nil
		}
		stepCompleted, err := e.events.PublishInTx(ctx, tx, &event.Event{
			EventType:     event.TypePathwayStepCompleted,
			AggregateType: event.AggregatePathway,
			AggregateID:   pathway.ID.String(),
			Data:          stepData,
		})
		if err != nil {
			return fmt.Errorf("failed to append step completed event: %w", err)
		}
		toSend = append(toSend, stepCompleted)

		if nextStep == nil {
			pathwayCompleted, err := e.events.PublishInTx(ctx, tx, &event.Event{
				EventType:     event.TypePathwayCompleted,
				AggregateType: event.AggregatePathway,
				AggregateID:   pathway.ID.String(),
				Data: map[string]any{
					"pathwayId":  pathway.ID.String(),
					"patientId":  pathway.PatientID.String(),
					"templateId": pathway.TemplateID.String(),
				},
			})
			if err != nil {
				return fmt.Errorf("failed to append pathway completed event: %w", err)
			}
			toSend = append(toSend, pathwayCompleted)
		}

		result = &model.CompleteStepResultDTO{
			Pathway:         pathway,
			CompletedStepID: currentStep.ID,
			NextStepID:      pathway.CurrentStepID,
			PathwayComplete: pathway.Status == model.PathwayStatusCompleted,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Subscribers observe committed state only, in emission order.
	for _, evt := range toSend {
		e.events.Dispatch(ctx, evt)
	}
	return result, nil
}

// resolveNextStep picks the step the pathway moves to after completing the
// current step. A decision point on the current step overrides linear order;
// a branch target of nil, or running past the last step, ends the pathway.
func (e *PathwayEngine) resolveNextStep(graph *StepGraph, pathway *model.PatientPathway, currentStep *model.PathwayStep) (*model.PathwayStep, error) {
	dp := graph.DecisionPointFor(currentStep.ID)
	if dp == nil {
		return graph.NextAfter(currentStep.ID), nil
	}

	history := completedStepSet(pathway.CompletedSteps)
	history[currentStep.ID] = true

	outcome, err := e.evaluator.Evaluate(dp.ConditionExpression, history)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate decision point on step %s: %w", currentStep.ID, err)
	}

	var targetID *uuid.UUID
	if outcome {
		targetID = dp.TrueStepID
	} else {
		targetID = dp.FalseStepID
	}
	if targetID == nil {
		return nil, nil
	}

	target := graph.StepByID(*targetID)
	if target == nil {
		return nil, fmt.Errorf("%w: decision point target %s", ErrStepNotInTemplate, *targetID)
	}
	return target, nil
}

// CancelPathway marks an active pathway as cancelled. No further steps can be
// completed afterwards.
func (e *PathwayEngine) CancelPathway(ctx context.Context, pathwayID uuid.UUID) (*model.PatientPathway, error) {
	if pathwayID == uuid.Nil {
		return nil, fmt.Errorf("pathway ID cannot be nil")
	}

	unlock := e.lockPathway(pathwayID)
	defer unlock()

	var pathway *model.PatientPathway
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		pathway, err = e.repo.GetPathwayForUpdateInTx(ctx, tx, pathwayID)
		if err != nil {
			return err
		}
		if pathway.Status != model.PathwayStatusActive {
			return ErrPathwayNotActive
		}

		now := time.Now().UTC()
		var expectedStepID uuid.UUID
		if pathway.CurrentStepID != nil {
			expectedStepID = *pathway.CurrentStepID
		}
		pathway.Status = model.PathwayStatusCancelled
		pathway.CurrentStepID = nil
		pathway.ActualEndDate = &now
		return e.repo.AdvancePathwayInTx(ctx, tx, pathway, expectedStepID)
	})
	if err != nil {
		return nil, err
	}
	return pathway, nil
}

// GetPathway returns a pathway with its template, current step, and history.
func (e *PathwayEngine) GetPathway(ctx context.Context, pathwayID uuid.UUID) (*model.PatientPathway, error) {
	if pathwayID == uuid.Nil {
		return nil, fmt.Errorf("pathway ID cannot be nil")
	}
	return e.repo.GetPathwayByID(ctx, pathwayID)
}

// GetPathwaysForPatient lists a patient's pathways, newest first.
func (e *PathwayEngine) GetPathwaysForPatient(ctx context.Context, patientID uuid.UUID, offset, limit int) ([]model.PatientPathway, error) {
	if patientID == uuid.Nil {
		return nil, fmt.Errorf("patient ID cannot be nil")
	}
	return e.repo.GetPathwaysByPatientID(ctx, patientID, offset, limit)
}

// GetActivePathways lists pathways still in progress across all patients.
func (e *PathwayEngine) GetActivePathways(ctx context.Context, offset, limit int) ([]model.PatientPathway, error) {
	return e.repo.GetActivePathways(ctx, offset, limit)
}
