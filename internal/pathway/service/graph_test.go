package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenCarePath/carepath/internal/pathway/model"
)

func makeStep(order int, days int) model.PathwayStep {
	return model.PathwayStep{
		BaseModel:             model.BaseModel{ID: uuid.New()},
		Name:                  "step",
		StepOrder:             order,
		EstimatedDurationDays: days,
	}
}

func TestBuildStepGraph(t *testing.T) {
	t.Run("Nil Template", func(t *testing.T) {
		_, err := BuildStepGraph(nil)
		assert.ErrorIs(t, err, ErrTemplateNotFound)
	})

	t.Run("No Steps", func(t *testing.T) {
		template := &model.PathwayTemplate{Steps: []model.PathwayStep{}}
		_, err := BuildStepGraph(template)
		assert.ErrorIs(t, err, ErrTemplateHasNoSteps)
	})

	t.Run("Duplicate Step Orders", func(t *testing.T) {
		template := &model.PathwayTemplate{
			Steps: []model.PathwayStep{makeStep(1, 0), makeStep(1, 0)},
		}
		_, err := BuildStepGraph(template)
		assert.ErrorIs(t, err, ErrInvalidTemplate)
	})

	t.Run("Decision Target Outside Template", func(t *testing.T) {
		stray := uuid.New()
		step := makeStep(1, 0)
		step.DecisionPoint = &model.DecisionPoint{
			StepID:              step.ID,
			ConditionExpression: "true",
			TrueStepID:          &stray,
		}
		template := &model.PathwayTemplate{Steps: []model.PathwayStep{step}}
		_, err := BuildStepGraph(template)
		assert.ErrorIs(t, err, ErrInvalidTemplate)
	})

	t.Run("Valid Template", func(t *testing.T) {
		s1 := makeStep(1, 3)
		s2 := makeStep(2, 4)
		s3 := makeStep(3, 0)
		s2.DecisionPoint = &model.DecisionPoint{
			StepID:              s2.ID,
			ConditionExpression: "true",
			TrueStepID:          &s3.ID,
			FalseStepID:         &s1.ID,
		}
		// Out of order on purpose; the graph sorts by step order.
		template := &model.PathwayTemplate{Steps: []model.PathwayStep{s3, s1, s2}}

		graph, err := BuildStepGraph(template)
		require.NoError(t, err)

		assert.Equal(t, s1.ID, graph.FirstStep().ID)
		assert.Equal(t, 7, graph.TotalEstimatedDays())
		assert.NotNil(t, graph.DecisionPointFor(s2.ID))
		assert.Nil(t, graph.DecisionPointFor(s1.ID))
	})
}

func TestStepGraphNextAfter(t *testing.T) {
	s1 := makeStep(1, 0)
	s2 := makeStep(5, 0)
	s3 := makeStep(10, 0)
	template := &model.PathwayTemplate{Steps: []model.PathwayStep{s1, s2, s3}}

	graph, err := BuildStepGraph(template)
	require.NoError(t, err)

	t.Run("Skips Gaps In Step Order", func(t *testing.T) {
		next := graph.NextAfter(s1.ID)
		require.NotNil(t, next)
		assert.Equal(t, s2.ID, next.ID)
	})

	t.Run("Last Step Has No Successor", func(t *testing.T) {
		assert.Nil(t, graph.NextAfter(s3.ID))
	})

	t.Run("Unknown Step Has No Successor", func(t *testing.T) {
		assert.Nil(t, graph.NextAfter(uuid.New()))
	})
}
