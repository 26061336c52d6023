package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/Hireflow/internal/dto"
	"github.com/lshigami/Hireflow/internal/service"
	"github.com/rs/zerolog/log"
)

type AssessmentController struct {
	assessmentService service.AssessmentService
}

func NewAssessmentController(assessmentService service.AssessmentService) *AssessmentController {
	return &AssessmentController{assessmentService: assessmentService}
}

// CreateAssessment godoc
// @Summary Publish a new assessment
// @Description Creates an assessment with its questions or problems. The obtainable score and manual-review flag are computed here and fixed for the assessment's lifetime.
// @Tags Assessments
// @Accept json
// @Produce json
// @Param actor_id query int true "Member publishing the assessment"
// @Param assessment body dto.AssessmentCreateDTO true "Assessment definition"
// @Success 201 {object} dto.AssessmentResponseDTO "Assessment created"
// @Failure 400 {object} dto.ErrorResponse "Invalid definition"
// @Failure 403 {object} dto.ErrorResponse "Actor may not manage pipelines"
// @Router /assessments [post]
func (c *AssessmentController) CreateAssessment(ctx *gin.Context) {
	actorID, err := strconv.ParseUint(ctx.Query("actor_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid or missing actor_id"})
		return
	}

	var req dto.AssessmentCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("CreateAssessment: Failed to bind JSON")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	resp, err := c.assessmentService.CreateAssessment(ctx.Request.Context(), uint(actorID), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// GetAssessment godoc
// @Summary Get an assessment with its questions and problems
// @Description Correct-answer flags are never serialized; hidden test cases keep their inputs but are marked hidden.
// @Tags Assessments
// @Produce json
// @Param id path int true "Assessment ID"
// @Success 200 {object} model.Assessment
// @Failure 400 {object} dto.ErrorResponse "Invalid ID format"
// @Failure 404 {object} dto.ErrorResponse "Assessment not found"
// @Router /assessments/{id} [get]
func (c *AssessmentController) GetAssessment(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid assessment ID format"})
		return
	}

	assessment, err := c.assessmentService.GetAssessment(ctx.Request.Context(), uint(id))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, assessment)
}
