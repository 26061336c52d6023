package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jinzhu/copier"
	"github.com/lshigami/Hireflow/internal/apperr"
	"github.com/lshigami/Hireflow/internal/dto"
	"github.com/lshigami/Hireflow/internal/model"
	"github.com/lshigami/Hireflow/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// AssessmentService publishes assessments. The obtainable score and the
// manual-review flag are derived from the grading configuration exactly once
// here and never recomputed by the submission path.
type AssessmentService interface {
	CreateAssessment(ctx context.Context, actorID uint, req dto.AssessmentCreateDTO) (*dto.AssessmentResponseDTO, error)
	GetAssessment(ctx context.Context, id uint) (*model.Assessment, error)
}

type assessmentService struct {
	assessments repository.AssessmentRepository
	permissions PermissionService
	scoring     ScoringService
}

func NewAssessmentService(assessments repository.AssessmentRepository, permissions PermissionService, scoring ScoringService) AssessmentService {
	return &assessmentService{assessments: assessments, permissions: permissions, scoring: scoring}
}

func (s *assessmentService) CreateAssessment(ctx context.Context, actorID uint, req dto.AssessmentCreateDTO) (*dto.AssessmentResponseDTO, error) {
	if err := s.permissions.Require(actorID, model.CapabilityManagePipeline); err != nil {
		return nil, err
	}
	if err := validateAssessmentCreate(req); err != nil {
		return nil, err
	}

	assessment := model.Assessment{
		PipelineID:        req.PipelineID,
		StepID:            req.StepID,
		Title:             req.Title,
		Type:              model.AssessmentType(req.Type),
		GradingMode:       model.GradingMode(req.GradingMode),
		PassingPercentage: req.PassingPercentage,
		DurationMinutes:   req.DurationMinutes,
		Published:         true,
		EasyWeight:        req.EasyWeight,
		MediumWeight:      req.MediumWeight,
		HardWeight:        req.HardWeight,
	}

	for i, qDto := range req.Questions {
		kind := model.QuestionKind(qDto.Kind)
		if kind == "" {
			kind = model.QuestionKindSingle
		}
		orderIndex := qDto.OrderIndex
		if orderIndex == 0 {
			orderIndex = i + 1
		}
		question := model.McqQuestion{
			Prompt:     qDto.Prompt,
			Kind:       kind,
			Grade:      qDto.Grade,
			OrderIndex: orderIndex,
		}
		for _, oDto := range qDto.Options {
			question.Options = append(question.Options, model.McqOption{
				Text:      oDto.Text,
				IsCorrect: oDto.IsCorrect,
			})
		}
		assessment.Questions = append(assessment.Questions, question)
	}

	for _, pDto := range req.Problems {
		problem := model.Problem{
			Title:          pDto.Title,
			Statement:      pDto.Statement,
			DriverSpec:     pDto.DriverSpec,
			Points:         pDto.Points,
			MinPassedCases: pDto.MinPassedCases,
		}
		for _, tDto := range pDto.TestCases {
			difficulty := model.Difficulty(tDto.Difficulty)
			if difficulty == "" {
				difficulty = model.DifficultyEasy
			}
			problem.TestCases = append(problem.TestCases, model.TestCase{
				Input:      tDto.Input,
				Expected:   tDto.Expected,
				Difficulty: difficulty,
				Hidden:     tDto.Hidden,
			})
		}
		assessment.Problems = append(assessment.Problems, problem)
	}

	assessment.ObtainableScore = s.scoring.ObtainableScore(&assessment)
	assessment.RequiresManualReview = s.scoring.RequiresManualReview(&assessment)

	if err := s.assessments.Create(&assessment); err != nil {
		log.Error().Err(err).Str("title", req.Title).Msg("Failed to create assessment")
		return nil, fmt.Errorf("database error creating assessment: %w", err)
	}

	var resp dto.AssessmentResponseDTO
	if err := copier.Copy(&resp, &assessment); err != nil {
		log.Error().Err(err).Msg("Failed to copy assessment to response DTO")
		return nil, fmt.Errorf("error preparing response data: %w", err)
	}
	return &resp, nil
}

func (s *assessmentService) GetAssessment(ctx context.Context, id uint) (*model.Assessment, error) {
	assessment, err := s.assessments.FindByIDWithContent(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.CodeNotFound, fmt.Sprintf("assessment %d not found", id), err)
		}
		return nil, err
	}
	return assessment, nil
}

func validateAssessmentCreate(req dto.AssessmentCreateDTO) error {
	assessmentType := model.AssessmentType(req.Type)
	switch assessmentType {
	case model.AssessmentTypeMcq:
		if model.GradingMode(req.GradingMode) != model.GradingModeQuestion {
			return apperr.New(apperr.CodeValidation, "mcq assessments must use question grading", nil)
		}
		if len(req.Questions) == 0 {
			return apperr.New(apperr.CodeValidation, "mcq assessments need at least one question", nil)
		}
		if len(req.Problems) > 0 {
			return apperr.New(apperr.CodeValidation, "mcq assessments cannot carry problems", nil)
		}
		for _, q := range req.Questions {
			kind := model.QuestionKind(q.Kind)
			if kind == "" {
				kind = model.QuestionKindSingle
			}
			if !kind.AutoGradable() {
				continue
			}
			if len(q.Options) == 0 {
				return apperr.New(apperr.CodeValidation,
					fmt.Sprintf("question %q needs options to be auto gradable", q.Prompt), nil)
			}
			hasCorrect := false
			for _, o := range q.Options {
				if o.IsCorrect {
					hasCorrect = true
					break
				}
			}
			if !hasCorrect {
				return apperr.New(apperr.CodeValidation,
					fmt.Sprintf("question %q needs at least one correct option", q.Prompt), nil)
			}
		}
	case model.AssessmentTypeCode:
		mode := model.GradingMode(req.GradingMode)
		if mode != model.GradingModeTestcase && mode != model.GradingModeProblem {
			return apperr.New(apperr.CodeValidation, "code assessments must use testcase or problem grading", nil)
		}
		if len(req.Problems) == 0 {
			return apperr.New(apperr.CodeValidation, "code assessments need at least one problem", nil)
		}
		if len(req.Questions) > 0 {
			return apperr.New(apperr.CodeValidation, "code assessments cannot carry questions", nil)
		}
		if mode == model.GradingModeTestcase && req.EasyWeight <= 0 && req.MediumWeight <= 0 && req.HardWeight <= 0 {
			return apperr.New(apperr.CodeValidation, "testcase grading needs at least one positive difficulty weight", nil)
		}
	default:
		return apperr.New(apperr.CodeValidation, fmt.Sprintf("unknown assessment type %q", req.Type), nil)
	}

	if req.PassingPercentage < 0 || req.PassingPercentage > 100 {
		return apperr.New(apperr.CodeValidation, "passing percentage must be between 0 and 100", nil)
	}
	return nil
}
