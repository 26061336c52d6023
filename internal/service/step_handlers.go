package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/lshigami/Hireflow/internal/apperr"
	"github.com/lshigami/Hireflow/internal/model"
	"github.com/lshigami/Hireflow/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// stepOutcome is what a handler hands back to the workflow engine: the email
// fan-out to run and any jobs to fire once the transaction has committed.
// Nothing in here may touch the database.
type stepOutcome struct {
	templateID string
	recipients []NotificationRecipient
	postCommit []func(ctx context.Context)
}

// stepHandler activates one step type: resolves the eligible candidate set,
// moves their application status, and prepares the notification fan-out.
// Handlers run inside the workflow transaction; a returned error aborts it.
type stepHandler interface {
	Handle(tx *gorm.DB, pipeline *model.Pipeline, step *model.Step, actorID uint) (*stepOutcome, error)
}

// handlerDeps is shared plumbing injected into every handler.
type handlerDeps struct {
	applications repository.ApplicationRepository
	assignments  repository.AssignmentRepository
	assessments  repository.AssessmentRepository
	interviews   repository.InterviewRepository
	members      repository.MemberRepository
	resumeScorer ResumeScoringService
	baseURL      string
}

func newStepHandlers(deps handlerDeps) map[model.StepType]stepHandler {
	return map[model.StepType]stepHandler{
		model.StepTypeResumeScreening:  &resumeScreeningHandler{deps},
		model.StepTypeAssignment:       &assignmentHandler{deps},
		model.StepTypeMcqAssessment:    &assessmentStepHandler{deps},
		model.StepTypeCodingAssessment: &assessmentStepHandler{deps},
		model.StepTypeInterview:        &interviewHandler{deps},
		model.StepTypeCustom:           &customHandler{deps},
	}
}

// eligibleApplications loads candidates still in the running and bulk-moves
// them to the stage's status. Zero candidates is a warning, not an error.
func (d *handlerDeps) eligibleApplications(tx *gorm.DB, pipeline *model.Pipeline, step *model.Step, status model.ApplicationStatus) ([]model.Application, error) {
	apps := d.applications.WithTx(tx)
	eligible, err := apps.FindEligibleByPipeline(pipeline.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load eligible candidates: %w", err)
	}
	if len(eligible) == 0 {
		log.Warn().
			Uint("pipelineID", pipeline.ID).
			Str("step", step.Name).
			Msg("Step activated with zero eligible candidates")
		return nil, nil
	}
	ids := make([]uint, 0, len(eligible))
	for _, app := range eligible {
		ids = append(ids, app.ID)
	}
	if err := apps.BulkUpdateStatus(ids, status); err != nil {
		return nil, fmt.Errorf("failed to update candidate statuses: %w", err)
	}
	return eligible, nil
}

func (d *handlerDeps) recipients(pipeline *model.Pipeline, step *model.Step, eligible []model.Application, link string) []NotificationRecipient {
	recipients := make([]NotificationRecipient, 0, len(eligible))
	for _, app := range eligible {
		recipients = append(recipients, NotificationRecipient{
			Email: app.Candidate.Email,
			Vars: map[string]string{
				"CandidateName": app.Candidate.Name,
				"PipelineTitle": pipeline.Title,
				"StageName":     step.Name,
				"Link":          link,
			},
		})
	}
	return recipients
}

type resumeScreeningHandler struct {
	handlerDeps
}

func (h *resumeScreeningHandler) Handle(tx *gorm.DB, pipeline *model.Pipeline, step *model.Step, actorID uint) (*stepOutcome, error) {
	eligible, err := h.eligibleApplications(tx, pipeline, step, model.ApplicationStatusInProgress)
	if err != nil {
		return nil, err
	}

	job := ResumeScoringJob{
		PipelineID:      pipeline.ID,
		PipelineTitle:   pipeline.Title,
		PositivePrompts: pipeline.PositivePrompts,
		NegativePrompts: pipeline.NegativePrompts,
		Skills:          pipeline.Skills,
	}
	for _, app := range eligible {
		job.Resumes = append(job.Resumes, ResumeEntry{
			ApplicationID: app.ID,
			CandidateName: app.Candidate.Name,
			ResumeText:    app.Candidate.ResumeText,
		})
	}

	scorer := h.resumeScorer
	return &stepOutcome{
		templateID: TemplateStageUpdate,
		recipients: h.recipients(pipeline, step, eligible, fmt.Sprintf("%s/pipelines/%d", h.baseURL, pipeline.ID)),
		postCommit: []func(ctx context.Context){
			// Fire-and-forget: the ATS callback records results later.
			func(ctx context.Context) {
				if err := scorer.SubmitBatch(ctx, job); err != nil {
					log.Error().Err(err).Uint("pipelineID", job.PipelineID).Msg("Resume screening job submission failed")
				}
			},
		},
	}, nil
}

type assignmentHandler struct {
	handlerDeps
}

func (h *assignmentHandler) Handle(tx *gorm.DB, pipeline *model.Pipeline, step *model.Step, actorID uint) (*stepOutcome, error) {
	assignment, err := h.assignments.WithTx(tx).FindByStepID(step.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.CodeNotFound, fmt.Sprintf("no assignment configured for step %q", step.Name), err)
		}
		return nil, err
	}

	eligible, err := h.eligibleApplications(tx, pipeline, step, model.ApplicationStatusInProgress)
	if err != nil {
		return nil, err
	}

	link := fmt.Sprintf("%s/assignments/%d/submit", h.baseURL, assignment.ID)
	return &stepOutcome{
		templateID: TemplateAssignmentInvite,
		recipients: h.recipients(pipeline, step, eligible, link),
	}, nil
}

type assessmentStepHandler struct {
	handlerDeps
}

func (h *assessmentStepHandler) Handle(tx *gorm.DB, pipeline *model.Pipeline, step *model.Step, actorID uint) (*stepOutcome, error) {
	assessment, err := h.assessments.WithTx(tx).FindByStepID(step.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.CodeNotFound, fmt.Sprintf("no assessment configured for step %q", step.Name), err)
		}
		return nil, err
	}

	eligible, err := h.eligibleApplications(tx, pipeline, step, model.ApplicationStatusAssessment)
	if err != nil {
		return nil, err
	}

	link := fmt.Sprintf("%s/assessments/%d/take", h.baseURL, assessment.ID)
	return &stepOutcome{
		templateID: TemplateAssessmentInvite,
		recipients: h.recipients(pipeline, step, eligible, link),
	}, nil
}

type interviewHandler struct {
	handlerDeps
}

func (h *interviewHandler) Handle(tx *gorm.DB, pipeline *model.Pipeline, step *model.Step, actorID uint) (*stepOutcome, error) {
	interviews := h.interviews.WithTx(tx)
	interview, err := interviews.FindByStepID(step.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.CodeNotFound, fmt.Sprintf("no interview configured for step %q", step.Name), err)
		}
		return nil, err
	}

	eligible, err := h.eligibleApplications(tx, pipeline, step, model.ApplicationStatusInterview)
	if err != nil {
		return nil, err
	}

	// Append eligible candidates the meeting does not list yet.
	listed := make(map[uint]bool, len(interview.Candidates))
	for _, c := range interview.Candidates {
		listed[c.ID] = true
	}
	var missing []model.Candidate
	for _, app := range eligible {
		if !listed[app.CandidateID] {
			missing = append(missing, app.Candidate)
		}
	}
	if err := interviews.AppendCandidates(interview, missing); err != nil {
		return nil, fmt.Errorf("failed to append candidates to interview: %w", err)
	}

	if interview.InterviewerID == nil {
		if id := h.pickInterviewer(tx, actorID); id != nil {
			interview.InterviewerID = id
		} else {
			log.Warn().Uint("interviewID", interview.ID).Msg("No interviewer could be assigned")
		}
	}
	if err := interviews.Save(interview); err != nil {
		return nil, fmt.Errorf("failed to persist interview: %w", err)
	}

	link := fmt.Sprintf("%s/interviews/%d", h.baseURL, interview.ID)
	return &stepOutcome{
		templateID: TemplateInterviewInvite,
		recipients: h.recipients(pipeline, step, eligible, link),
	}, nil
}

// pickInterviewer prefers a hiring manager, then the triggering actor, then
// any admin.
func (h *interviewHandler) pickInterviewer(tx *gorm.DB, actorID uint) *uint {
	members := h.members.WithTx(tx)
	if managers, err := members.FindByRole(model.MemberRoleHiringManager); err == nil && len(managers) > 0 {
		return &managers[0].ID
	}
	if _, err := members.FindByID(actorID); err == nil {
		return &actorID
	}
	if admins, err := members.FindByRole(model.MemberRoleAdmin); err == nil && len(admins) > 0 {
		return &admins[0].ID
	}
	return nil
}

type customHandler struct {
	handlerDeps
}

func (h *customHandler) Handle(tx *gorm.DB, pipeline *model.Pipeline, step *model.Step, actorID uint) (*stepOutcome, error) {
	eligible, err := h.eligibleApplications(tx, pipeline, step, model.ApplicationStatusInProgress)
	if err != nil {
		return nil, err
	}
	return &stepOutcome{
		templateID: TemplateStageUpdate,
		recipients: h.recipients(pipeline, step, eligible, fmt.Sprintf("%s/pipelines/%d", h.baseURL, pipeline.ID)),
	}, nil
}
