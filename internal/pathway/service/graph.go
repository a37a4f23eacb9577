package service

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/OpenCarePath/carepath/internal/pathway/model"
)

// StepGraph is an in-memory view of a template's steps indexed for traversal.
// Steps are held in step-order; branches are resolved through decision points.
type StepGraph struct {
	steps    []model.PathwayStep
	byID     map[uuid.UUID]*model.PathwayStep
	byOrder  map[int]*model.PathwayStep
	branches map[uuid.UUID]*model.DecisionPoint
}

// BuildStepGraph validates a template's steps and builds the traversal index.
// A template with no steps, duplicate step orders, or decision point targets
// outside the template cannot be instantiated.
func BuildStepGraph(template *model.PathwayTemplate) (*StepGraph, error) {
	if template == nil {
		return nil, ErrTemplateNotFound
	}
	if len(template.Steps) == 0 {
		return nil, ErrTemplateHasNoSteps
	}

	steps := make([]model.PathwayStep, len(template.Steps))
	copy(steps, template.Steps)
	sort.Slice(steps, func(i, j int) bool {
		return steps[i].StepOrder < steps[j].StepOrder
	})

	g := &StepGraph{
		steps:    steps,
		byID:     make(map[uuid.UUID]*model.PathwayStep, len(steps)),
		byOrder:  make(map[int]*model.PathwayStep, len(steps)),
		branches: make(map[uuid.UUID]*model.DecisionPoint, len(steps)),
	}

	for i := range g.steps {
		step := &g.steps[i]
		if _, exists := g.byOrder[step.StepOrder]; exists {
			return nil, fmt.Errorf("%w: duplicate step order %d", ErrInvalidTemplate, step.StepOrder)
		}
		g.byOrder[step.StepOrder] = step
		g.byID[step.ID] = step
	}

	for i := range g.steps {
		step := &g.steps[i]
		if step.DecisionPoint == nil {
			continue
		}
		dp := step.DecisionPoint
		if dp.TrueStepID != nil {
			if _, exists := g.byID[*dp.TrueStepID]; !exists {
				return nil, fmt.Errorf("%w: decision point on step %s targets step %s outside the template", ErrInvalidTemplate, step.ID, *dp.TrueStepID)
			}
		}
		if dp.FalseStepID != nil {
			if _, exists := g.byID[*dp.FalseStepID]; !exists {
				return nil, fmt.Errorf("%w: decision point on step %s targets step %s outside the template", ErrInvalidTemplate, step.ID, *dp.FalseStepID)
			}
		}
		g.branches[step.ID] = dp
	}

	return g, nil
}

// FirstStep returns the step with the lowest order.
func (g *StepGraph) FirstStep() *model.PathwayStep {
	return &g.steps[0]
}

// StepByID returns the step with the given ID, or nil if the template does not
// contain it.
func (g *StepGraph) StepByID(id uuid.UUID) *model.PathwayStep {
	return g.byID[id]
}

// DecisionPointFor returns the decision point attached to the given step, or
// nil when the step advances linearly.
func (g *StepGraph) DecisionPointFor(stepID uuid.UUID) *model.DecisionPoint {
	return g.branches[stepID]
}

// NextAfter returns the step that follows the given step in linear order, or
// nil when the step is the last one. Decision points take precedence over
// linear order and are resolved by the caller.
func (g *StepGraph) NextAfter(stepID uuid.UUID) *model.PathwayStep {
	current := g.byID[stepID]
	if current == nil {
		return nil
	}
	var next *model.PathwayStep
	for i := range g.steps {
		candidate := &g.steps[i]
		if candidate.StepOrder <= current.StepOrder {
			continue
		}
		if next == nil || candidate.StepOrder < next.StepOrder {
			next = candidate
		}
	}
	return next
}

// TotalEstimatedDays sums the estimated duration of every step. Branching may
// skip steps at runtime, so this is an upper-bound estimate.
func (g *StepGraph) TotalEstimatedDays() int {
	total := 0
	for i := range g.steps {
		total += g.steps[i].EstimatedDurationDays
	}
	return total
}

// Steps returns the steps in ascending step order.
func (g *StepGraph) Steps() []model.PathwayStep {
	return g.steps
}
