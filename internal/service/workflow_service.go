package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jinzhu/copier"
	"github.com/lshigami/Hireflow/config"
	"github.com/lshigami/Hireflow/internal/apperr"
	"github.com/lshigami/Hireflow/internal/dto"
	"github.com/lshigami/Hireflow/internal/model"
	"github.com/lshigami/Hireflow/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// WorkflowService is the step state machine. AdvanceWorkflow transactionally
// closes the active step, opens the next one and dispatches to the handler
// for its type; email fan-out and ATS jobs run only after the commit.
type WorkflowService interface {
	AdvanceWorkflow(ctx context.Context, pipelineID, actorID uint) (*dto.AdvanceResultDTO, error)
	GetPipeline(ctx context.Context, pipelineID uint) (*dto.PipelineResponseDTO, error)
}

type workflowService struct {
	db           *gorm.DB
	pipelines    repository.PipelineRepository
	members      repository.MemberRepository
	audit        repository.AuditRepository
	permissions  PermissionService
	notification NotificationService
	handlers     map[model.StepType]stepHandler
}

func NewWorkflowService(
	db *gorm.DB,
	cfg *config.Config,
	pipelines repository.PipelineRepository,
	applications repository.ApplicationRepository,
	assignments repository.AssignmentRepository,
	assessments repository.AssessmentRepository,
	interviews repository.InterviewRepository,
	members repository.MemberRepository,
	audit repository.AuditRepository,
	permissions PermissionService,
	notification NotificationService,
	resumeScorer ResumeScoringService,
) WorkflowService {
	return &workflowService{
		db:           db,
		pipelines:    pipelines,
		members:      members,
		audit:        audit,
		permissions:  permissions,
		notification: notification,
		handlers: newStepHandlers(handlerDeps{
			applications: applications,
			assignments:  assignments,
			assessments:  assessments,
			interviews:   interviews,
			members:      members,
			resumeScorer: resumeScorer,
			baseURL:      cfg.App.BaseURL,
		}),
	}
}

// advancePlan is the pure decision of what one advance does to the step
// sequence. closeIdx/activateIdx are -1 when there is nothing to close/open.
type advancePlan struct {
	closeIdx          int
	activateIdx       int
	pipelineCompleted bool
}

// planAdvance inspects an ordered step sequence and decides the transition.
func planAdvance(steps []model.Step) (advancePlan, error) {
	if len(steps) == 0 {
		return advancePlan{}, apperr.New(apperr.CodeValidation, "pipeline has no steps", nil)
	}

	active := -1
	firstPending := -1
	for i, step := range steps {
		switch step.Status {
		case model.StepStatusInProgress:
			if active != -1 {
				return advancePlan{}, apperr.New(apperr.CodeValidation,
					fmt.Sprintf("pipeline has multiple in-progress steps (%d and %d)", active, i), nil)
			}
			active = i
		case model.StepStatusPending:
			if firstPending == -1 {
				firstPending = i
			}
		}
	}

	if active == -1 {
		if firstPending == -1 {
			return advancePlan{}, apperr.New(apperr.CodeInvalidState, "workflow already completed", nil)
		}
		// Initial advance: nothing to close, open the first waiting step.
		return advancePlan{closeIdx: -1, activateIdx: firstPending}, nil
	}

	if active == len(steps)-1 {
		return advancePlan{closeIdx: active, activateIdx: -1, pipelineCompleted: true}, nil
	}
	return advancePlan{closeIdx: active, activateIdx: active + 1}, nil
}

func (s *workflowService) AdvanceWorkflow(ctx context.Context, pipelineID, actorID uint) (*dto.AdvanceResultDTO, error) {
	if err := s.permissions.Require(actorID, model.CapabilityManagePipeline); err != nil {
		return nil, err
	}

	var (
		result  dto.AdvanceResultDTO
		outcome *stepOutcome
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pipelines := s.pipelines.WithTx(tx)

		// The locked read serializes concurrent advances on the same
		// pipeline: the second caller blocks here, then re-reads the steps
		// the first one already moved and plans from that state.
		pipeline, err := pipelines.FindByIDWithStepsForUpdate(pipelineID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.New(apperr.CodeNotFound, fmt.Sprintf("pipeline %d not found", pipelineID), err)
			}
			return err
		}

		plan, err := planAdvance(pipeline.Steps)
		if err != nil {
			return err
		}

		now := time.Now()
		if plan.closeIdx >= 0 {
			closed := &pipeline.Steps[plan.closeIdx]
			closed.Status = model.StepStatusCompleted
			closed.CompletedAt = &now
			if err := pipelines.SaveStep(closed); err != nil {
				return fmt.Errorf("failed to close step %q: %w", closed.Name, err)
			}
			result.ClosedStep = closed.Name
		}

		if plan.pipelineCompleted {
			pipeline.Status = model.PipelineStatusCompleted
			pipeline.CompletedAt = &now
			if err := pipelines.Save(pipeline); err != nil {
				return fmt.Errorf("failed to mark pipeline completed: %w", err)
			}
			result.PipelineStatus = string(pipeline.Status)
			return s.recordAdvance(tx, pipeline, actorID, "workflow completed")
		}

		activated := &pipeline.Steps[plan.activateIdx]
		if !model.KnownStepType(activated.Type) {
			return apperr.New(apperr.CodeValidation, fmt.Sprintf("unknown step type %q", activated.Type), nil)
		}
		activated.Status = model.StepStatusInProgress
		activated.StartTime = &now
		activated.StartedBy = &actorID
		if err := pipelines.SaveStep(activated); err != nil {
			return fmt.Errorf("failed to activate step %q: %w", activated.Name, err)
		}

		handler := s.handlers[activated.Type]
		outcome, err = handler.Handle(tx, pipeline, activated, actorID)
		if err != nil {
			// Abort so the step transition is never partially persisted.
			return fmt.Errorf("handler for step %q (%s) failed: %w", activated.Name, activated.Type, err)
		}

		result.ActivatedStep = activated.Name
		result.ActivatedStepType = string(activated.Type)
		result.PipelineStatus = string(pipeline.Status)
		return s.recordAdvance(tx, pipeline, actorID, fmt.Sprintf("step %q activated", activated.Name))
	})
	if err != nil {
		log.Error().Err(err).Uint("pipelineID", pipelineID).Uint("actorID", actorID).Msg("AdvanceWorkflow failed")
		return nil, err
	}

	// Email fan-out and job submission are irrevocable and therefore stay
	// outside the transaction; failures here are logged, never fatal.
	if outcome != nil {
		go s.runPostCommit(outcome, pipelineID)
	}

	log.Info().
		Uint("pipelineID", pipelineID).
		Str("activated", result.ActivatedStep).
		Str("closed", result.ClosedStep).
		Msg("Workflow advanced")
	return &result, nil
}

func (s *workflowService) runPostCommit(outcome *stepOutcome, pipelineID uint) {
	ctx := context.Background()
	for _, job := range outcome.postCommit {
		job(ctx)
	}
	if len(outcome.recipients) == 0 {
		return
	}
	fanout, err := s.notification.Fanout(ctx, outcome.templateID, outcome.recipients)
	if err != nil {
		log.Error().Err(err).Uint("pipelineID", pipelineID).Msg("Notification fan-out failed entirely")
		return
	}
	if fanout.Failed > 0 {
		log.Warn().
			Uint("pipelineID", pipelineID).
			Int("failed", fanout.Failed).
			Int("succeeded", fanout.Succeeded).
			Msg("Notification fan-out finished with partial failures")
	}
}

func (s *workflowService) GetPipeline(ctx context.Context, pipelineID uint) (*dto.PipelineResponseDTO, error) {
	pipeline, err := s.pipelines.FindByIDWithSteps(pipelineID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.CodeNotFound, fmt.Sprintf("pipeline %d not found", pipelineID), err)
		}
		return nil, err
	}
	var resp dto.PipelineResponseDTO
	if err := copier.Copy(&resp, pipeline); err != nil {
		log.Error().Err(err).Msg("Failed to copy pipeline to response DTO")
		return nil, fmt.Errorf("error preparing response data: %w", err)
	}
	return &resp, nil
}

// recordAdvance appends the audit entry and notifies workflow managers.
func (s *workflowService) recordAdvance(tx *gorm.DB, pipeline *model.Pipeline, actorID uint, detail string) error {
	audit := s.audit.WithTx(tx)
	if err := audit.Append(&model.AuditLog{
		PipelineID: pipeline.ID,
		ActorID:    actorID,
		Action:     "workflow.advance",
		Detail:     detail,
	}); err != nil {
		return fmt.Errorf("failed to append audit log: %w", err)
	}

	managers, err := s.members.WithTx(tx).FindWorkflowManagers()
	if err != nil {
		return fmt.Errorf("failed to resolve workflow managers: %w", err)
	}
	notifications := make([]model.InAppNotification, 0, len(managers))
	for _, m := range managers {
		notifications = append(notifications, model.InAppNotification{
			MemberID: m.ID,
			Title:    fmt.Sprintf("Pipeline %q advanced", pipeline.Title),
			Body:     detail,
		})
	}
	return audit.CreateNotifications(notifications)
}
