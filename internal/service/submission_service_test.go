package service

import (
	"context"
	"testing"

	"github.com/lshigami/Hireflow/internal/apperr"
	"github.com/lshigami/Hireflow/internal/dto"
	"github.com/lshigami/Hireflow/internal/model"
	"github.com/lshigami/Hireflow/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeSubmissionRepo struct {
	submission *model.Submission
	created    bool

	offenseCalls []model.OffenseKind
	offenseProbs []*uint
	timerWrites  []int
	saved        []*model.Submission
	answers      []*model.McqAnswer
}

func (f *fakeSubmissionRepo) WithTx(tx *gorm.DB) repository.SubmissionRepository { return f }

func (f *fakeSubmissionRepo) FirstOrCreate(submission *model.Submission) (bool, error) {
	if f.submission != nil {
		*submission = *f.submission
		return false, nil
	}
	submission.ID = 1
	stored := *submission
	f.submission = &stored
	f.created = true
	return true, nil
}

func (f *fakeSubmissionRepo) FindByIdentity(assessmentID uint, candidateEmail string) (*model.Submission, error) {
	if f.submission == nil || f.submission.AssessmentID != assessmentID || f.submission.CandidateEmail != candidateEmail {
		return nil, gorm.ErrRecordNotFound
	}
	return f.submission, nil
}

func (f *fakeSubmissionRepo) FindByIdentityWithDetails(assessmentID uint, candidateEmail string) (*model.Submission, error) {
	return f.FindByIdentity(assessmentID, candidateEmail)
}

func (f *fakeSubmissionRepo) FindByIDWithDetails(id uint) (*model.Submission, error) {
	if f.submission == nil || f.submission.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return f.submission, nil
}

func (f *fakeSubmissionRepo) Save(submission *model.Submission) error {
	f.saved = append(f.saved, submission)
	return nil
}

func (f *fakeSubmissionRepo) IncrementOffense(submissionID uint, kind model.OffenseKind, problemID *uint) error {
	f.offenseCalls = append(f.offenseCalls, kind)
	f.offenseProbs = append(f.offenseProbs, problemID)
	return nil
}

func (f *fakeSubmissionRepo) UpdateTimer(submissionID uint, timerSeconds int) error {
	f.timerWrites = append(f.timerWrites, timerSeconds)
	return nil
}

func (f *fakeSubmissionRepo) UpsertAnswer(answer *model.McqAnswer) error {
	f.answers = append(f.answers, answer)
	return nil
}

func (f *fakeSubmissionRepo) UpsertCaseResults(results []model.CaseResult) error { return nil }
func (f *fakeSubmissionRepo) SaveItemGrade(grade *model.ItemGrade) error         { return nil }

type fakeAssessmentRepo struct {
	assessment *model.Assessment
}

func (f *fakeAssessmentRepo) Create(a *model.Assessment) error { f.assessment = a; return nil }
func (f *fakeAssessmentRepo) Save(a *model.Assessment) error   { return nil }
func (f *fakeAssessmentRepo) FindByID(id uint) (*model.Assessment, error) {
	if f.assessment == nil || f.assessment.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return f.assessment, nil
}
func (f *fakeAssessmentRepo) FindByIDWithContent(id uint) (*model.Assessment, error) {
	return f.FindByID(id)
}
func (f *fakeAssessmentRepo) FindByStepID(stepID uint) (*model.Assessment, error) {
	if f.assessment == nil || f.assessment.StepID == nil || *f.assessment.StepID != stepID {
		return nil, gorm.ErrRecordNotFound
	}
	return f.assessment, nil
}
func (f *fakeAssessmentRepo) WithTx(tx *gorm.DB) repository.AssessmentRepository { return f }

type fakePermission struct {
	err error
}

func (f *fakePermission) Require(memberID uint, capability string) error { return f.err }

func TestClassifyCheating(t *testing.T) {
	problemID := uint(7)
	cases := []struct {
		name     string
		offenses []model.OffenseCounter
		want     string
	}{
		{"no offenses", nil, model.CheatingStatusNone},
		{
			"three tab changes stay clean",
			[]model.OffenseCounter{{Kind: model.OffenseKindTabChange, Count: 3}},
			model.CheatingStatusNone,
		},
		{
			"exactly the threshold stays clean",
			[]model.OffenseCounter{{Kind: model.OffenseKindTabChange, Count: 5}},
			model.CheatingStatusNone,
		},
		{
			"six tab changes are flagged",
			[]model.OffenseCounter{{Kind: model.OffenseKindTabChange, Count: 6}},
			model.CheatingStatusHeavy,
		},
		{
			"tab changes summed across problems",
			[]model.OffenseCounter{
				{Kind: model.OffenseKindTabChange, Count: 4, ProblemID: problemID},
				{Kind: model.OffenseKindTabChange, Count: 3},
			},
			model.CheatingStatusHeavy,
		},
		{
			"copy-paste alone never flags",
			[]model.OffenseCounter{{Kind: model.OffenseKindCopyPaste, Count: 20}},
			model.CheatingStatusNone,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, classifyCheating(tc.offenses))
		})
	}
}

func newSubmissionFixture(assessment *model.Assessment, submission *model.Submission) (SubmissionService, *fakeSubmissionRepo) {
	subRepo := &fakeSubmissionRepo{submission: submission}
	assessRepo := &fakeAssessmentRepo{assessment: assessment}
	svc := NewSubmissionService(nil, subRepo, assessRepo, nil, &fakePermission{}, NewScoringService(), nil)
	return svc, subRepo
}

func TestStartSubmission(t *testing.T) {
	assessment := &model.Assessment{ID: 1, Type: model.AssessmentTypeMcq, DurationMinutes: 45}

	t.Run("creates the submission with the assessment timer", func(t *testing.T) {
		svc, repo := newSubmissionFixture(assessment, nil)

		out, err := svc.StartSubmission(context.Background(), dto.StartSubmissionDTO{
			AssessmentID: 1, CandidateEmail: "a@example.com",
		})
		require.NoError(t, err)
		assert.True(t, repo.created)
		assert.Equal(t, 45*60, out.TimerSeconds)
		assert.Equal(t, string(model.SubmissionStatusInProgress), out.Status)
	})

	t.Run("resumes an existing submission instead of duplicating", func(t *testing.T) {
		existing := &model.Submission{
			ID: 9, AssessmentID: 1, CandidateEmail: "a@example.com",
			Status: model.SubmissionStatusInProgress, TimerSeconds: 120,
		}
		svc, repo := newSubmissionFixture(assessment, existing)

		out, err := svc.StartSubmission(context.Background(), dto.StartSubmissionDTO{
			AssessmentID: 1, CandidateEmail: "a@example.com",
		})
		require.NoError(t, err)
		assert.False(t, repo.created)
		assert.Equal(t, uint(9), out.ID)
		assert.Equal(t, 120, out.TimerSeconds)
	})

	t.Run("unknown assessment is not found", func(t *testing.T) {
		svc, _ := newSubmissionFixture(assessment, nil)
		_, err := svc.StartSubmission(context.Background(), dto.StartSubmissionDTO{
			AssessmentID: 42, CandidateEmail: "a@example.com",
		})
		assert.True(t, apperr.Is(err, apperr.CodeNotFound))
	})
}

func TestRecordOffense(t *testing.T) {
	mcq := &model.Assessment{ID: 1, Type: model.AssessmentTypeMcq}
	code := &model.Assessment{ID: 2, Type: model.AssessmentTypeCode}
	problemID := uint(5)

	t.Run("rejects unknown offense kinds", func(t *testing.T) {
		svc, _ := newSubmissionFixture(mcq, nil)
		err := svc.RecordOffense(context.Background(), dto.OffenseDTO{
			AssessmentID: 1, CandidateEmail: "a@example.com", Kind: "screenshot",
		})
		assert.True(t, apperr.Is(err, apperr.CodeValidation))
	})

	t.Run("is a no-op once the submission completed", func(t *testing.T) {
		done := &model.Submission{
			ID: 1, AssessmentID: 1, CandidateEmail: "a@example.com",
			Status: model.SubmissionStatusCompleted,
		}
		svc, repo := newSubmissionFixture(mcq, done)
		err := svc.RecordOffense(context.Background(), dto.OffenseDTO{
			AssessmentID: 1, CandidateEmail: "a@example.com", Kind: string(model.OffenseKindTabChange),
		})
		require.NoError(t, err)
		assert.Empty(t, repo.offenseCalls)
	})

	t.Run("mcq counters are global even when a problem id is sent", func(t *testing.T) {
		sub := &model.Submission{ID: 1, AssessmentID: 1, CandidateEmail: "a@example.com", Status: model.SubmissionStatusInProgress}
		svc, repo := newSubmissionFixture(mcq, sub)
		err := svc.RecordOffense(context.Background(), dto.OffenseDTO{
			AssessmentID: 1, CandidateEmail: "a@example.com",
			Kind: string(model.OffenseKindTabChange), ProblemID: &problemID,
		})
		require.NoError(t, err)
		require.Len(t, repo.offenseProbs, 1)
		assert.Nil(t, repo.offenseProbs[0])
	})

	t.Run("code counters keep the problem key", func(t *testing.T) {
		sub := &model.Submission{ID: 1, AssessmentID: 2, CandidateEmail: "a@example.com", Status: model.SubmissionStatusInProgress}
		svc, repo := newSubmissionFixture(code, sub)
		err := svc.RecordOffense(context.Background(), dto.OffenseDTO{
			AssessmentID: 2, CandidateEmail: "a@example.com",
			Kind: string(model.OffenseKindCopyPaste), ProblemID: &problemID,
		})
		require.NoError(t, err)
		require.Len(t, repo.offenseProbs, 1)
		require.NotNil(t, repo.offenseProbs[0])
		assert.Equal(t, problemID, *repo.offenseProbs[0])
	})
}

func TestSyncTimer(t *testing.T) {
	mcq := &model.Assessment{ID: 1, Type: model.AssessmentTypeMcq}

	t.Run("persists the remaining seconds", func(t *testing.T) {
		sub := &model.Submission{ID: 1, AssessmentID: 1, CandidateEmail: "a@example.com", Status: model.SubmissionStatusInProgress}
		svc, repo := newSubmissionFixture(mcq, sub)
		err := svc.SyncTimer(context.Background(), dto.TimerSyncDTO{
			AssessmentID: 1, CandidateEmail: "a@example.com", TimerSeconds: 301,
		})
		require.NoError(t, err)
		assert.Equal(t, []int{301}, repo.timerWrites)
	})

	t.Run("is a no-op once the submission completed", func(t *testing.T) {
		done := &model.Submission{ID: 1, AssessmentID: 1, CandidateEmail: "a@example.com", Status: model.SubmissionStatusCompleted}
		svc, repo := newSubmissionFixture(mcq, done)
		err := svc.SyncTimer(context.Background(), dto.TimerSyncDTO{
			AssessmentID: 1, CandidateEmail: "a@example.com", TimerSeconds: 10,
		})
		require.NoError(t, err)
		assert.Empty(t, repo.timerWrites)
	})
}

func TestCompleteSubmissionGuards(t *testing.T) {
	mcq := &model.Assessment{ID: 1, Type: model.AssessmentTypeMcq}

	t.Run("a completed submission cannot complete again", func(t *testing.T) {
		done := &model.Submission{ID: 1, AssessmentID: 1, CandidateEmail: "a@example.com", Status: model.SubmissionStatusCompleted}
		svc, _ := newSubmissionFixture(mcq, done)
		_, err := svc.CompleteSubmission(context.Background(), dto.CompleteSubmissionDTO{
			AssessmentID: 1, CandidateEmail: "a@example.com",
		})
		assert.True(t, apperr.Is(err, apperr.CodeInvalidState))
	})

	t.Run("missing submission is not found", func(t *testing.T) {
		svc, _ := newSubmissionFixture(mcq, nil)
		_, err := svc.CompleteSubmission(context.Background(), dto.CompleteSubmissionDTO{
			AssessmentID: 1, CandidateEmail: "a@example.com",
		})
		assert.True(t, apperr.Is(err, apperr.CodeNotFound))
	})
}

func TestSettleCandidate(t *testing.T) {
	pipelineID := uint(3)
	assessment := &model.Assessment{
		ID: 1, PipelineID: &pipelineID, Title: "Coding Round",
		PassingPercentage: 60, ObtainableScore: 50,
	}
	newApps := func() *fakeApplicationRepo {
		return &fakeApplicationRepo{byEmail: map[string]*model.Application{
			"a@example.com": {ID: 11, PipelineID: 3, CandidateID: 21, Status: model.ApplicationStatusAssessment},
		}}
	}

	t.Run("reaching the bar exactly passes", func(t *testing.T) {
		apps := newApps()
		passed, err := settleCandidate(apps, assessment, "a@example.com", 30)
		require.NoError(t, err)
		require.NotNil(t, passed)
		assert.True(t, *passed)
		require.Len(t, apps.saved, 1)
		assert.Equal(t, model.ApplicationStatusInProgress, apps.saved[0].Status)
		assert.Nil(t, apps.saved[0].RejectedAtStage)
	})

	t.Run("falling short rejects with stage and reason", func(t *testing.T) {
		apps := newApps()
		passed, err := settleCandidate(apps, assessment, "a@example.com", 29.5)
		require.NoError(t, err)
		require.NotNil(t, passed)
		assert.False(t, *passed)
		require.Len(t, apps.saved, 1)
		app := apps.saved[0]
		assert.Equal(t, model.ApplicationStatusRejected, app.Status)
		require.NotNil(t, app.RejectedAtStage)
		assert.Equal(t, "Coding Round", *app.RejectedAtStage)
		require.NotNil(t, app.RejectionReason)
		assert.Contains(t, *app.RejectionReason, "below the 60% passing bar")
	})

	t.Run("standalone assessments settle nothing", func(t *testing.T) {
		apps := newApps()
		standalone := &model.Assessment{ID: 2, Title: "Practice", PassingPercentage: 60, ObtainableScore: 50}
		passed, err := settleCandidate(apps, standalone, "a@example.com", 0)
		require.NoError(t, err)
		assert.Nil(t, passed)
		assert.Empty(t, apps.saved)
	})

	t.Run("candidates without an application are skipped", func(t *testing.T) {
		apps := newApps()
		passed, err := settleCandidate(apps, assessment, "stranger@example.com", 40)
		require.NoError(t, err)
		assert.Nil(t, passed)
		assert.Empty(t, apps.saved)
	})
}

func TestOverrideItemGradeGuards(t *testing.T) {
	mcq := &model.Assessment{ID: 1, Type: model.AssessmentTypeMcq}

	t.Run("requires the grade-review capability", func(t *testing.T) {
		subRepo := &fakeSubmissionRepo{}
		svc := NewSubmissionService(nil, subRepo, &fakeAssessmentRepo{assessment: mcq}, nil,
			&fakePermission{err: apperr.New(apperr.CodeUnauthorized, "missing capability", nil)},
			NewScoringService(), nil)

		_, err := svc.OverrideItemGrade(context.Background(), dto.OverrideGradeDTO{
			SubmissionID: 1, ReviewerID: 2, ItemID: 3, ItemKind: string(model.ItemKindQuestion), Marks: 4,
		})
		assert.True(t, apperr.Is(err, apperr.CodeUnauthorized))
	})

	t.Run("rejects overrides on in-progress submissions", func(t *testing.T) {
		sub := &model.Submission{ID: 1, AssessmentID: 1, CandidateEmail: "a@example.com", Status: model.SubmissionStatusInProgress}
		svc, _ := newSubmissionFixture(mcq, sub)
		_, err := svc.OverrideItemGrade(context.Background(), dto.OverrideGradeDTO{
			SubmissionID: 1, ReviewerID: 2, ItemID: 3, ItemKind: string(model.ItemKindQuestion), Marks: 4,
		})
		assert.True(t, apperr.Is(err, apperr.CodeInvalidState))
	})

	t.Run("unknown grade entry is not found", func(t *testing.T) {
		sub := &model.Submission{
			ID: 1, AssessmentID: 1, CandidateEmail: "a@example.com",
			Status:     model.SubmissionStatusCompleted,
			ItemGrades: []model.ItemGrade{{ItemID: 9, ItemKind: model.ItemKindProblem, Marks: 2}},
		}
		svc, _ := newSubmissionFixture(mcq, sub)
		_, err := svc.OverrideItemGrade(context.Background(), dto.OverrideGradeDTO{
			SubmissionID: 1, ReviewerID: 2, ItemID: 3, ItemKind: string(model.ItemKindQuestion), Marks: 4,
		})
		assert.True(t, apperr.Is(err, apperr.CodeNotFound))
	})
}
