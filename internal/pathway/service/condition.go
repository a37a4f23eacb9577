package service

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/OpenCarePath/carepath/internal/pathway/model"
)

// ConditionEvaluator decides which branch of a decision point a pathway takes.
// The expression is the decision point's condition text; completedSteps holds
// the IDs of every step completed so far on the pathway, including the step
// whose completion triggered the evaluation.
type ConditionEvaluator interface {
	Evaluate(expression string, completedSteps map[uuid.UUID]bool) (bool, error)
}

// ConditionExpression is a recursive boolean expression over completed steps.
// Exactly one of AnyOf, AllOf, or a leaf StepID must be present. A leaf is
// true when the referenced step's completion matches Completed (defaulting to
// true when omitted).
type ConditionExpression struct {
	AnyOf []ConditionExpression `json:"anyOf,omitempty"`
	AllOf []ConditionExpression `json:"allOf,omitempty"`

	StepID    *uuid.UUID `json:"stepId,omitempty"`
	Completed *bool      `json:"completed,omitempty"`
}

// ExpressionEvaluator evaluates JSON condition expressions deterministically.
// The literals "true" and "false" are accepted as shorthand for constant
// branches.
type ExpressionEvaluator struct{}

func NewExpressionEvaluator() *ExpressionEvaluator {
	return &ExpressionEvaluator{}
}

// Evaluate parses and evaluates the expression against the completed steps.
// A malformed expression is an error rather than a silent false branch.
func (e *ExpressionEvaluator) Evaluate(expression string, completedSteps map[uuid.UUID]bool) (bool, error) {
	trimmed := strings.TrimSpace(expression)
	switch trimmed {
	case "true":
		return true, nil
	case "false":
		return false, nil
	case "":
		return false, fmt.Errorf("condition expression is empty")
	}

	var expr ConditionExpression
	if err := json.Unmarshal([]byte(trimmed), &expr); err != nil {
		return false, fmt.Errorf("failed to parse condition expression: %w", err)
	}
	if err := e.validate(expr, "expression"); err != nil {
		return false, err
	}
	return e.evaluate(expr, completedSteps), nil
}

func (e *ExpressionEvaluator) validate(expr ConditionExpression, path string) error {
	hasAny := len(expr.AnyOf) > 0
	hasAll := len(expr.AllOf) > 0
	hasLeaf := expr.StepID != nil

	definedCount := 0
	if hasAny {
		definedCount++
	}
	if hasAll {
		definedCount++
	}
	if hasLeaf {
		definedCount++
	}

	if definedCount == 0 {
		return fmt.Errorf("%s must define one of anyOf, allOf, or stepId", path)
	}
	if definedCount > 1 {
		return fmt.Errorf("%s must define exactly one of anyOf, allOf, or stepId", path)
	}

	if hasLeaf && *expr.StepID == uuid.Nil {
		return fmt.Errorf("%s has nil stepId", path)
	}

	for i, child := range expr.AnyOf {
		if err := e.validate(child, fmt.Sprintf("%s.anyOf[%d]", path, i)); err != nil {
			return err
		}
	}
	for i, child := range expr.AllOf {
		if err := e.validate(child, fmt.Sprintf("%s.allOf[%d]", path, i)); err != nil {
			return err
		}
	}
	return nil
}

func (e *ExpressionEvaluator) evaluate(expr ConditionExpression, completedSteps map[uuid.UUID]bool) bool {
	if len(expr.AnyOf) > 0 {
		for _, child := range expr.AnyOf {
			if e.evaluate(child, completedSteps) {
				return true
			}
		}
		return false
	}

	if len(expr.AllOf) > 0 {
		for _, child := range expr.AllOf {
			if !e.evaluate(child, completedSteps) {
				return false
			}
		}
		return true
	}

	expected := true
	if expr.Completed != nil {
		expected = *expr.Completed
	}
	return completedSteps[*expr.StepID] == expected
}

// ValidateConditionExpression checks an authored expression without evaluating
// it, so template authoring can reject malformed branches up front.
func ValidateConditionExpression(expression string) error {
	trimmed := strings.TrimSpace(expression)
	switch trimmed {
	case "true", "false":
		return nil
	case "":
		return fmt.Errorf("condition expression is empty")
	}

	var expr ConditionExpression
	if err := json.Unmarshal([]byte(trimmed), &expr); err != nil {
		return fmt.Errorf("failed to parse condition expression: %w", err)
	}
	return (&ExpressionEvaluator{}).validate(expr, "expression")
}

// completedStepSet builds the evaluator's view of a pathway's history.
func completedStepSet(steps []model.CompletedStep) map[uuid.UUID]bool {
	set := make(map[uuid.UUID]bool, len(steps))
	for _, cs := range steps {
		set[cs.StepID] = true
	}
	return set
}
