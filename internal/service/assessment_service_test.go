package service

import (
	"context"
	"testing"

	"github.com/lshigami/Hireflow/internal/apperr"
	"github.com/lshigami/Hireflow/internal/dto"
	"github.com/lshigami/Hireflow/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAssessment(t *testing.T) {
	newService := func() (AssessmentService, *fakeAssessmentRepo) {
		repo := &fakeAssessmentRepo{}
		return NewAssessmentService(repo, &fakePermission{}, NewScoringService()), repo
	}

	t.Run("computes the obtainable score once at publish time", func(t *testing.T) {
		svc, repo := newService()
		resp, err := svc.CreateAssessment(context.Background(), 1, dto.AssessmentCreateDTO{
			Title:       "Go MCQ",
			Type:        string(model.AssessmentTypeMcq),
			GradingMode: string(model.GradingModeQuestion),
			Questions: []dto.McqQuestionCreateDTO{
				{Prompt: "q1", Grade: 5, Options: []dto.McqOptionCreateDTO{{Text: "a", IsCorrect: true}}},
				{Prompt: "q2", Grade: 5, Options: []dto.McqOptionCreateDTO{{Text: "a", IsCorrect: true}}},
				{Prompt: "q3", Grade: 10, Options: []dto.McqOptionCreateDTO{{Text: "a", IsCorrect: true}}},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, 20.0, resp.ObtainableScore)
		assert.False(t, resp.RequiresManualReview)
		require.NotNil(t, repo.assessment)
		assert.Equal(t, 20.0, repo.assessment.ObtainableScore)
		assert.True(t, repo.assessment.Published)
	})

	t.Run("flags manual review when a question kind needs it", func(t *testing.T) {
		svc, _ := newService()
		resp, err := svc.CreateAssessment(context.Background(), 1, dto.AssessmentCreateDTO{
			Title:       "Essay MCQ",
			Type:        string(model.AssessmentTypeMcq),
			GradingMode: string(model.GradingModeQuestion),
			Questions: []dto.McqQuestionCreateDTO{
				{Prompt: "pick one", Grade: 5, Options: []dto.McqOptionCreateDTO{{Text: "a", IsCorrect: true}}},
				{Prompt: "explain", Kind: string(model.QuestionKindLongAnswer), Grade: 10},
			},
		})
		require.NoError(t, err)
		assert.True(t, resp.RequiresManualReview)
	})

	t.Run("testcase grading sums difficulty weights", func(t *testing.T) {
		svc, _ := newService()
		resp, err := svc.CreateAssessment(context.Background(), 1, dto.AssessmentCreateDTO{
			Title:        "Coding Round",
			Type:         string(model.AssessmentTypeCode),
			GradingMode:  string(model.GradingModeTestcase),
			EasyWeight:   2,
			MediumWeight: 3,
			HardWeight:   5,
			Problems: []dto.ProblemCreateDTO{
				{Title: "p1", TestCases: []dto.TestCaseCreateDTO{
					{Difficulty: string(model.DifficultyEasy)},
					{Difficulty: string(model.DifficultyHard)},
				}},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, 7.0, resp.ObtainableScore)
	})

	t.Run("rejects mismatched type and grading mode", func(t *testing.T) {
		svc, _ := newService()
		_, err := svc.CreateAssessment(context.Background(), 1, dto.AssessmentCreateDTO{
			Title:       "Broken",
			Type:        string(model.AssessmentTypeMcq),
			GradingMode: string(model.GradingModeTestcase),
			Questions:   []dto.McqQuestionCreateDTO{{Prompt: "q", Options: []dto.McqOptionCreateDTO{{Text: "a"}}}},
		})
		assert.True(t, apperr.Is(err, apperr.CodeValidation))
	})

	t.Run("rejects auto-gradable questions without a correct option", func(t *testing.T) {
		svc, _ := newService()
		_, err := svc.CreateAssessment(context.Background(), 1, dto.AssessmentCreateDTO{
			Title:       "Unanswerable",
			Type:        string(model.AssessmentTypeMcq),
			GradingMode: string(model.GradingModeQuestion),
			Questions: []dto.McqQuestionCreateDTO{
				{Prompt: "q1", Grade: 5, Options: []dto.McqOptionCreateDTO{{Text: "a"}, {Text: "b"}}},
			},
		})
		assert.True(t, apperr.Is(err, apperr.CodeValidation))
	})

	t.Run("rejects code assessments without problems", func(t *testing.T) {
		svc, _ := newService()
		_, err := svc.CreateAssessment(context.Background(), 1, dto.AssessmentCreateDTO{
			Title:       "Empty",
			Type:        string(model.AssessmentTypeCode),
			GradingMode: string(model.GradingModeProblem),
		})
		assert.True(t, apperr.Is(err, apperr.CodeValidation))
	})

	t.Run("rejects actors without the manage capability", func(t *testing.T) {
		repo := &fakeAssessmentRepo{}
		svc := NewAssessmentService(repo,
			&fakePermission{err: apperr.New(apperr.CodeUnauthorized, "missing capability", nil)},
			NewScoringService())
		_, err := svc.CreateAssessment(context.Background(), 1, dto.AssessmentCreateDTO{})
		assert.True(t, apperr.Is(err, apperr.CodeUnauthorized))
		assert.Nil(t, repo.assessment)
	})
}
