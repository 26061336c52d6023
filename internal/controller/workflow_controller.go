package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/Hireflow/internal/dto"
	"github.com/lshigami/Hireflow/internal/service"
	"github.com/rs/zerolog/log"
)

type WorkflowController struct {
	workflowService service.WorkflowService
}

func NewWorkflowController(workflowService service.WorkflowService) *WorkflowController {
	return &WorkflowController{workflowService: workflowService}
}

// AdvanceWorkflow godoc
// @Summary Advance a pipeline's hiring workflow by one step
// @Description Closes the active step (if any), activates the next one and runs its side effects. The whole transition is atomic.
// @Tags Workflow
// @Accept json
// @Produce json
// @Param id path int true "Pipeline ID"
// @Param advance body dto.AdvanceWorkflowDTO true "Operator triggering the advance"
// @Success 200 {object} dto.AdvanceResultDTO "Workflow advanced"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or malformed pipeline"
// @Failure 403 {object} dto.ErrorResponse "Actor may not manage pipelines"
// @Failure 404 {object} dto.ErrorResponse "Pipeline not found"
// @Failure 409 {object} dto.ErrorResponse "Workflow already completed"
// @Router /pipelines/{id}/advance [post]
func (c *WorkflowController) AdvanceWorkflow(ctx *gin.Context) {
	pipelineID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid pipeline ID format"})
		return
	}

	var req dto.AdvanceWorkflowDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("AdvanceWorkflow: Failed to bind JSON")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	result, err := c.workflowService.AdvanceWorkflow(ctx.Request.Context(), uint(pipelineID), req.ActorID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// GetPipeline godoc
// @Summary Get a pipeline with its ordered steps
// @Tags Workflow
// @Produce json
// @Param id path int true "Pipeline ID"
// @Success 200 {object} dto.PipelineResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid ID format"
// @Failure 404 {object} dto.ErrorResponse "Pipeline not found"
// @Router /pipelines/{id} [get]
func (c *WorkflowController) GetPipeline(ctx *gin.Context) {
	pipelineID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid pipeline ID format"})
		return
	}

	pipeline, err := c.workflowService.GetPipeline(ctx.Request.Context(), uint(pipelineID))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, pipeline)
}
