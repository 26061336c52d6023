package service

import (
	"testing"

	"github.com/lshigami/Hireflow/internal/apperr"
	"github.com/lshigami/Hireflow/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func steps(statuses ...model.StepStatus) []model.Step {
	out := make([]model.Step, 0, len(statuses))
	for i, status := range statuses {
		out = append(out, model.Step{OrderIndex: i, Status: status})
	}
	return out
}

func TestPlanAdvance(t *testing.T) {
	t.Run("fresh pipeline activates the first step without closing anything", func(t *testing.T) {
		plan, err := planAdvance(steps(
			model.StepStatusPending,
			model.StepStatusPending,
			model.StepStatusPending,
		))
		require.NoError(t, err)
		assert.Equal(t, -1, plan.closeIdx)
		assert.Equal(t, 0, plan.activateIdx)
		assert.False(t, plan.pipelineCompleted)
	})

	t.Run("mid-pipeline closes the active step and opens the next", func(t *testing.T) {
		plan, err := planAdvance(steps(
			model.StepStatusCompleted,
			model.StepStatusInProgress,
			model.StepStatusPending,
		))
		require.NoError(t, err)
		assert.Equal(t, 1, plan.closeIdx)
		assert.Equal(t, 2, plan.activateIdx)
		assert.False(t, plan.pipelineCompleted)
	})

	t.Run("advancing past the last step completes the pipeline", func(t *testing.T) {
		plan, err := planAdvance(steps(
			model.StepStatusCompleted,
			model.StepStatusCompleted,
			model.StepStatusInProgress,
		))
		require.NoError(t, err)
		assert.Equal(t, 2, plan.closeIdx)
		assert.Equal(t, -1, plan.activateIdx)
		assert.True(t, plan.pipelineCompleted)
	})

	t.Run("fully completed pipeline yields an invalid-state error", func(t *testing.T) {
		_, err := planAdvance(steps(
			model.StepStatusCompleted,
			model.StepStatusCompleted,
			model.StepStatusCompleted,
		))
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.CodeInvalidState))
	})

	t.Run("empty pipeline is a validation error", func(t *testing.T) {
		_, err := planAdvance(nil)
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.CodeValidation))
	})

	t.Run("multiple in-progress steps are rejected", func(t *testing.T) {
		_, err := planAdvance(steps(
			model.StepStatusInProgress,
			model.StepStatusInProgress,
			model.StepStatusPending,
		))
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.CodeValidation))
	})

	t.Run("failed steps are treated as settled", func(t *testing.T) {
		// A failed first step does not block opening the next pending one.
		plan, err := planAdvance(steps(
			model.StepStatusFailed,
			model.StepStatusPending,
		))
		require.NoError(t, err)
		assert.Equal(t, -1, plan.closeIdx)
		assert.Equal(t, 1, plan.activateIdx)
	})
}

func TestKnownStepType(t *testing.T) {
	for _, st := range []model.StepType{
		model.StepTypeResumeScreening,
		model.StepTypeMcqAssessment,
		model.StepTypeCodingAssessment,
		model.StepTypeAssignment,
		model.StepTypeInterview,
		model.StepTypeCustom,
	} {
		assert.True(t, model.KnownStepType(st), string(st))
	}
	assert.False(t, model.KnownStepType(model.StepType("BACKGROUND_CHECK")))
}
