package service

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpressionEvaluator(t *testing.T) {
	evaluator := NewExpressionEvaluator()
	stepA := uuid.New()
	stepB := uuid.New()
	completed := map[uuid.UUID]bool{stepA: true}

	t.Run("Literals", func(t *testing.T) {
		result, err := evaluator.Evaluate("true", nil)
		require.NoError(t, err)
		assert.True(t, result)

		result, err = evaluator.Evaluate(" false ", nil)
		require.NoError(t, err)
		assert.False(t, result)
	})

	t.Run("Leaf Condition", func(t *testing.T) {
		expr := fmt.Sprintf(`{"stepId": %q}`, stepA)
		result, err := evaluator.Evaluate(expr, completed)
		require.NoError(t, err)
		assert.True(t, result)

		expr = fmt.Sprintf(`{"stepId": %q}`, stepB)
		result, err = evaluator.Evaluate(expr, completed)
		require.NoError(t, err)
		assert.False(t, result)
	})

	t.Run("Leaf Condition With Completed False", func(t *testing.T) {
		expr := fmt.Sprintf(`{"stepId": %q, "completed": false}`, stepB)
		result, err := evaluator.Evaluate(expr, completed)
		require.NoError(t, err)
		assert.True(t, result)
	})

	t.Run("AnyOf", func(t *testing.T) {
		expr := fmt.Sprintf(`{"anyOf": [{"stepId": %q}, {"stepId": %q}]}`, stepB, stepA)
		result, err := evaluator.Evaluate(expr, completed)
		require.NoError(t, err)
		assert.True(t, result)
	})

	t.Run("AllOf", func(t *testing.T) {
		expr := fmt.Sprintf(`{"allOf": [{"stepId": %q}, {"stepId": %q}]}`, stepA, stepB)
		result, err := evaluator.Evaluate(expr, completed)
		require.NoError(t, err)
		assert.False(t, result)
	})

	t.Run("Nested Expression", func(t *testing.T) {
		expr := fmt.Sprintf(
			`{"allOf": [{"stepId": %q}, {"anyOf": [{"stepId": %q}, {"stepId": %q, "completed": false}]}]}`,
			stepA, stepB, stepB,
		)
		result, err := evaluator.Evaluate(expr, completed)
		require.NoError(t, err)
		assert.True(t, result)
	})

	t.Run("Empty Expression", func(t *testing.T) {
		_, err := evaluator.Evaluate("", completed)
		assert.Error(t, err)
	})

	t.Run("Malformed JSON", func(t *testing.T) {
		_, err := evaluator.Evaluate("{not json", completed)
		assert.Error(t, err)
	})

	t.Run("Leaf And Group Together", func(t *testing.T) {
		expr := fmt.Sprintf(`{"stepId": %q, "anyOf": [{"stepId": %q}]}`, stepA, stepB)
		_, err := evaluator.Evaluate(expr, completed)
		assert.Error(t, err)
	})

	t.Run("Empty Object", func(t *testing.T) {
		_, err := evaluator.Evaluate("{}", completed)
		assert.Error(t, err)
	})
}

func TestValidateConditionExpression(t *testing.T) {
	assert.NoError(t, ValidateConditionExpression("true"))
	assert.NoError(t, ValidateConditionExpression(fmt.Sprintf(`{"stepId": %q}`, uuid.New())))
	assert.Error(t, ValidateConditionExpression(""))
	assert.Error(t, ValidateConditionExpression(`{"stepId": "00000000-0000-0000-0000-000000000000"}`))
	assert.Error(t, ValidateConditionExpression(`{"anyOf": []}`))
}
