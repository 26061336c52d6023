package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jinzhu/copier"
	"github.com/lshigami/Hireflow/internal/apperr"
	"github.com/lshigami/Hireflow/internal/dto"
	"github.com/lshigami/Hireflow/internal/model"
	"github.com/lshigami/Hireflow/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// heavyCopyingThreshold: more than this many tab changes flags the
// submission. There is no intermediate classification.
const heavyCopyingThreshold = 5

// SubmissionService manages the per-candidate submission lifecycle:
// not-started -> in-progress -> completed (terminal). Offense and timer
// events are replay-safe; completion scores the submission and settles the
// candidate's application status.
type SubmissionService interface {
	StartSubmission(ctx context.Context, req dto.StartSubmissionDTO) (*dto.SubmissionDTO, error)
	RecordOffense(ctx context.Context, req dto.OffenseDTO) error
	SyncTimer(ctx context.Context, req dto.TimerSyncDTO) error
	SetSessionReplayURL(ctx context.Context, req dto.SessionReplayDTO) error
	SaveAnswer(ctx context.Context, req dto.McqAnswerDTO) error
	RunProblem(ctx context.Context, req dto.RunProblemDTO) (*dto.RunProblemResultDTO, error)
	CompleteSubmission(ctx context.Context, req dto.CompleteSubmissionDTO) (*dto.SubmissionResultDTO, error)
	OverrideItemGrade(ctx context.Context, req dto.OverrideGradeDTO) (*dto.SubmissionResultDTO, error)
	GetSubmission(ctx context.Context, assessmentID uint, candidateEmail string) (*dto.SubmissionDTO, error)
}

type submissionService struct {
	db           *gorm.DB
	submissions  repository.SubmissionRepository
	assessments  repository.AssessmentRepository
	applications repository.ApplicationRepository
	permissions  PermissionService
	scoring      ScoringService
	codeExec     CodeExecutionService
}

func NewSubmissionService(
	db *gorm.DB,
	submissions repository.SubmissionRepository,
	assessments repository.AssessmentRepository,
	applications repository.ApplicationRepository,
	permissions PermissionService,
	scoring ScoringService,
	codeExec CodeExecutionService,
) SubmissionService {
	return &submissionService{
		db:           db,
		submissions:  submissions,
		assessments:  assessments,
		applications: applications,
		permissions:  permissions,
		scoring:      scoring,
		codeExec:     codeExec,
	}
}

func (s *submissionService) StartSubmission(ctx context.Context, req dto.StartSubmissionDTO) (*dto.SubmissionDTO, error) {
	assessment, err := s.assessments.FindByID(req.AssessmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.CodeNotFound, fmt.Sprintf("assessment %d not found", req.AssessmentID), err)
		}
		return nil, err
	}

	submission := model.Submission{
		AssessmentID:   assessment.ID,
		CandidateEmail: req.CandidateEmail,
		Status:         model.SubmissionStatusInProgress,
		TimerSeconds:   assessment.DurationMinutes * 60,
	}
	// Create-if-absent: reconnects and retried start events resume the
	// existing submission instead of spawning duplicates.
	created, err := s.submissions.FirstOrCreate(&submission)
	if err != nil {
		return nil, fmt.Errorf("failed to start submission: %w", err)
	}
	if !created {
		log.Info().
			Uint("submissionID", submission.ID).
			Str("candidate", req.CandidateEmail).
			Msg("StartSubmission: resuming existing submission")
	}

	return toSubmissionDTO(&submission), nil
}

// liveSubmission loads the submission and reports whether live updates still
// apply. A completed submission makes every live event a no-op.
func (s *submissionService) liveSubmission(assessmentID uint, candidateEmail string) (*model.Submission, bool, error) {
	submission, err := s.submissions.FindByIdentity(assessmentID, candidateEmail)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, apperr.New(apperr.CodeNotFound, "submission not found", err)
		}
		return nil, false, err
	}
	return submission, submission.Status != model.SubmissionStatusCompleted, nil
}

func (s *submissionService) RecordOffense(ctx context.Context, req dto.OffenseDTO) error {
	kind := model.OffenseKind(req.Kind)
	if kind != model.OffenseKindTabChange && kind != model.OffenseKindCopyPaste {
		return apperr.New(apperr.CodeValidation, fmt.Sprintf("unknown offense kind %q", req.Kind), nil)
	}

	submission, live, err := s.liveSubmission(req.AssessmentID, req.CandidateEmail)
	if err != nil {
		return err
	}
	if !live {
		return nil
	}

	assessment, err := s.assessments.FindByID(req.AssessmentID)
	if err != nil {
		return err
	}
	problemID := req.ProblemID
	if assessment.Type == model.AssessmentTypeMcq {
		// MCQ offense counters are global to the submission.
		problemID = nil
	}
	return s.submissions.IncrementOffense(submission.ID, kind, problemID)
}

func (s *submissionService) SyncTimer(ctx context.Context, req dto.TimerSyncDTO) error {
	submission, live, err := s.liveSubmission(req.AssessmentID, req.CandidateEmail)
	if err != nil {
		return err
	}
	if !live {
		return nil
	}
	return s.submissions.UpdateTimer(submission.ID, req.TimerSeconds)
}

func (s *submissionService) SetSessionReplayURL(ctx context.Context, req dto.SessionReplayDTO) error {
	submission, live, err := s.liveSubmission(req.AssessmentID, req.CandidateEmail)
	if err != nil {
		return err
	}
	if !live {
		return nil
	}
	submission.SessionReplayURL = req.URL
	return s.submissions.Save(submission)
}

func (s *submissionService) SaveAnswer(ctx context.Context, req dto.McqAnswerDTO) error {
	submission, live, err := s.liveSubmission(req.AssessmentID, req.CandidateEmail)
	if err != nil {
		return err
	}
	if !live {
		return nil
	}
	return s.submissions.UpsertAnswer(&model.McqAnswer{
		SubmissionID: submission.ID,
		QuestionID:   req.QuestionID,
		Selected:     req.Selected,
	})
}

func (s *submissionService) RunProblem(ctx context.Context, req dto.RunProblemDTO) (*dto.RunProblemResultDTO, error) {
	submission, live, err := s.liveSubmission(req.AssessmentID, req.CandidateEmail)
	if err != nil {
		return nil, err
	}
	if !live {
		return nil, apperr.New(apperr.CodeInvalidState, "submission already completed", nil)
	}

	assessment, err := s.assessments.FindByIDWithContent(req.AssessmentID)
	if err != nil {
		return nil, err
	}
	var problem *model.Problem
	for i := range assessment.Problems {
		if assessment.Problems[i].ID == req.ProblemID {
			problem = &assessment.Problems[i]
			break
		}
	}
	if problem == nil {
		return nil, apperr.New(apperr.CodeNotFound, fmt.Sprintf("problem %d not part of assessment %d", req.ProblemID, req.AssessmentID), nil)
	}

	cases := make([]ExecutionCase, 0, len(problem.TestCases))
	for _, tc := range problem.TestCases {
		cases = append(cases, ExecutionCase{ID: tc.ID, Input: tc.Input, Expected: tc.Expected})
	}

	execResult, err := s.codeExec.Execute(ctx, req.Language, problem.DriverSpec, req.Code, cases)
	if err != nil {
		// Sandbox failures are fatal to this run, surfaced as-is.
		return nil, err
	}

	if err := s.submissions.UpsertCaseResults(execResult.ToCaseResults(submission.ID, problem.ID)); err != nil {
		return nil, fmt.Errorf("failed to persist case results: %w", err)
	}

	resp := dto.RunProblemResultDTO{
		Status:      execResult.Status,
		AvgTimeMs:   execResult.AvgTimeMs,
		AvgMemoryKB: execResult.AvgMemoryKB,
	}
	for _, cr := range execResult.CaseResults {
		resp.CaseResults = append(resp.CaseResults, dto.CaseResultDTO{TestCaseID: cr.TestCaseID, Passed: cr.Passed})
	}
	return &resp, nil
}

func (s *submissionService) CompleteSubmission(ctx context.Context, req dto.CompleteSubmissionDTO) (*dto.SubmissionResultDTO, error) {
	submission, err := s.submissions.FindByIdentityWithDetails(req.AssessmentID, req.CandidateEmail)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.CodeNotFound, "submission not found", err)
		}
		return nil, err
	}
	if submission.Status == model.SubmissionStatusCompleted {
		return nil, apperr.New(apperr.CodeInvalidState, "submission already completed", nil)
	}

	assessment, err := s.assessments.FindByIDWithContent(req.AssessmentID)
	if err != nil {
		return nil, err
	}

	var (
		grades []model.ItemGrade
		total  float64
	)
	switch assessment.Type {
	case model.AssessmentTypeMcq:
		grades, total = s.scoring.ScoreMcq(assessment, submission.Answers, submission.ItemGrades)
	case model.AssessmentTypeCode:
		grades, total = s.scoring.ScoreCode(assessment, submission.CaseResults, submission.ItemGrades)
	default:
		return nil, apperr.New(apperr.CodeValidation, fmt.Sprintf("unknown assessment type %q", assessment.Type), nil)
	}

	now := time.Now()
	submission.Status = model.SubmissionStatusCompleted
	submission.CompletedAt = &now
	submission.TotalScore = &total
	submission.CheatingStatus = classifyCheating(submission.Offenses)

	var passed *bool
	// The submission save and the application status write must land
	// together; neither may survive the other failing.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		submissions := s.submissions.WithTx(tx)
		for i := range grades {
			grades[i].SubmissionID = submission.ID
			if err := submissions.SaveItemGrade(&grades[i]); err != nil {
				return fmt.Errorf("failed to save item grade: %w", err)
			}
		}
		submission.ItemGrades = nil // children are persisted above
		if err := submissions.Save(submission); err != nil {
			return fmt.Errorf("failed to save submission: %w", err)
		}

		outcome, err := settleCandidate(s.applications.WithTx(tx), assessment, req.CandidateEmail, total)
		if err != nil {
			return err
		}
		passed = outcome
		return nil
	})
	if err != nil {
		log.Error().Err(err).Uint("submissionID", submission.ID).Msg("CompleteSubmission failed")
		return nil, err
	}

	submission.ItemGrades = grades
	return &dto.SubmissionResultDTO{
		Submission:     *toSubmissionDTO(submission),
		Passed:         passed,
		ObtainableMark: assessment.ObtainableScore,
	}, nil
}

func (s *submissionService) OverrideItemGrade(ctx context.Context, req dto.OverrideGradeDTO) (*dto.SubmissionResultDTO, error) {
	if err := s.permissions.Require(req.ReviewerID, model.CapabilityGradeReview); err != nil {
		return nil, err
	}

	submission, err := s.submissions.FindByIDWithDetails(req.SubmissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.CodeNotFound, fmt.Sprintf("submission %d not found", req.SubmissionID), err)
		}
		return nil, err
	}
	if submission.Status != model.SubmissionStatusCompleted {
		return nil, apperr.New(apperr.CodeInvalidState, "submission is not completed yet", nil)
	}

	var grade *model.ItemGrade
	for i := range submission.ItemGrades {
		g := &submission.ItemGrades[i]
		if g.ItemID == req.ItemID && g.ItemKind == model.ItemKind(req.ItemKind) {
			grade = g
			break
		}
	}
	if grade == nil {
		return nil, apperr.New(apperr.CodeNotFound, fmt.Sprintf("no grade entry for %s %d", req.ItemKind, req.ItemID), nil)
	}

	oldMarks := grade.Marks
	grade.Marks = req.Marks
	grade.ManuallyGraded = true

	currentTotal := 0.0
	if submission.TotalScore != nil {
		currentTotal = *submission.TotalScore
	}
	// Delta update only: re-summing would discard other manual overrides.
	newTotal := s.scoring.OverrideTotal(currentTotal, oldMarks, req.Marks)
	submission.TotalScore = &newTotal

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		submissions := s.submissions.WithTx(tx)
		if err := submissions.SaveItemGrade(grade); err != nil {
			return fmt.Errorf("failed to save grade override: %w", err)
		}
		grades := submission.ItemGrades
		submission.ItemGrades = nil
		defer func() { submission.ItemGrades = grades }()
		return submissions.Save(submission)
	})
	if err != nil {
		log.Error().Err(err).Uint("submissionID", submission.ID).Msg("OverrideItemGrade failed")
		return nil, err
	}

	log.Info().
		Uint("submissionID", submission.ID).
		Uint("reviewerID", req.ReviewerID).
		Float64("oldMarks", oldMarks).
		Float64("newMarks", req.Marks).
		Msg("Item grade overridden")
	return &dto.SubmissionResultDTO{Submission: *toSubmissionDTO(submission)}, nil
}

func (s *submissionService) GetSubmission(ctx context.Context, assessmentID uint, candidateEmail string) (*dto.SubmissionDTO, error) {
	submission, err := s.submissions.FindByIdentityWithDetails(assessmentID, candidateEmail)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.CodeNotFound, "submission not found", err)
		}
		return nil, err
	}
	return toSubmissionDTO(submission), nil
}

// settleApplication applies a scored outcome to the application: advance on
// pass, reject with stage and reason on fail. Reaching the bar exactly passes.
func settleApplication(app *model.Application, assessment *model.Assessment, total float64) bool {
	if total >= assessment.PassingPercentage/100.0*assessment.ObtainableScore {
		app.Status = model.ApplicationStatusInProgress
		return true
	}
	app.Status = model.ApplicationStatusRejected
	stage := assessment.Title
	reason := fmt.Sprintf("scored %.2f of %.2f, below the %.0f%% passing bar", total, assessment.ObtainableScore, assessment.PassingPercentage)
	app.RejectedAtStage = &stage
	app.RejectionReason = &reason
	return false
}

// settleCandidate finds the application behind a pipeline-bound assessment
// and persists the pass/fail outcome. Standalone assessments and candidates
// without an application settle nothing; the nil outcome marks that.
func settleCandidate(apps repository.ApplicationRepository, assessment *model.Assessment, candidateEmail string, total float64) (*bool, error) {
	if assessment.PipelineID == nil {
		return nil, nil
	}
	app, err := apps.FindByPipelineAndEmail(*assessment.PipelineID, candidateEmail)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn().
				Uint("pipelineID", *assessment.PipelineID).
				Str("candidate", candidateEmail).
				Msg("CompleteSubmission: no application for candidate, skipping status write")
			return nil, nil
		}
		return nil, err
	}
	passed := settleApplication(app, assessment, total)
	return &passed, apps.Save(app)
}

// classifyCheating derives the status from accumulated tab-change counts.
func classifyCheating(offenses []model.OffenseCounter) string {
	tabChanges := 0
	for _, o := range offenses {
		if o.Kind == model.OffenseKindTabChange {
			tabChanges += o.Count
		}
	}
	if tabChanges > heavyCopyingThreshold {
		return model.CheatingStatusHeavy
	}
	return model.CheatingStatusNone
}

func toSubmissionDTO(submission *model.Submission) *dto.SubmissionDTO {
	var out dto.SubmissionDTO
	if err := copier.Copy(&out, submission); err != nil {
		log.Error().Err(err).Msg("Failed to copy submission to DTO")
	}
	out.ItemGrades = make([]dto.ItemGradeDTO, 0, len(submission.ItemGrades))
	for _, g := range submission.ItemGrades {
		out.ItemGrades = append(out.ItemGrades, dto.ItemGradeDTO{
			ItemID:         g.ItemID,
			ItemKind:       string(g.ItemKind),
			Marks:          g.Marks,
			ManuallyGraded: g.ManuallyGraded,
		})
	}
	return &out
}
