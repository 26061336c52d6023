package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/Hireflow/internal/dto"
	"github.com/lshigami/Hireflow/internal/service"
	"github.com/rs/zerolog/log"
)

// SubmissionController exposes the submission lifecycle over plain HTTP.
// Live connections drive the same service through the live package; these
// endpoints serve clients without a persistent channel plus the review tools.
type SubmissionController struct {
	submissionService service.SubmissionService
}

func NewSubmissionController(submissionService service.SubmissionService) *SubmissionController {
	return &SubmissionController{submissionService: submissionService}
}

// StartSubmission godoc
// @Summary Start or resume a candidate's submission
// @Description Creates the submission on first call; later calls return the existing one.
// @Tags Submissions
// @Accept json
// @Produce json
// @Param start body dto.StartSubmissionDTO true "Assessment and candidate identity"
// @Success 200 {object} dto.SubmissionDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 404 {object} dto.ErrorResponse "Assessment not found"
// @Router /submissions/start [post]
func (c *SubmissionController) StartSubmission(ctx *gin.Context) {
	var req dto.StartSubmissionDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("StartSubmission: Failed to bind JSON")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	submission, err := c.submissionService.StartSubmission(ctx.Request.Context(), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, submission)
}

// RecordOffense godoc
// @Summary Record a proctoring offense
// @Description Increments the offense counter. A no-op once the submission is completed.
// @Tags Submissions
// @Accept json
// @Produce json
// @Param offense body dto.OffenseDTO true "Offense event"
// @Success 204 "Recorded"
// @Failure 400 {object} dto.ErrorResponse "Invalid request body or offense kind"
// @Failure 404 {object} dto.ErrorResponse "Submission not found"
// @Router /submissions/offense [post]
func (c *SubmissionController) RecordOffense(ctx *gin.Context) {
	var req dto.OffenseDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	if err := c.submissionService.RecordOffense(ctx.Request.Context(), req); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// SyncTimer godoc
// @Summary Persist the remaining time of an in-progress submission
// @Tags Submissions
// @Accept json
// @Produce json
// @Param timer body dto.TimerSyncDTO true "Timer state"
// @Success 204 "Synced"
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 404 {object} dto.ErrorResponse "Submission not found"
// @Router /submissions/timer [post]
func (c *SubmissionController) SyncTimer(ctx *gin.Context) {
	var req dto.TimerSyncDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	if err := c.submissionService.SyncTimer(ctx.Request.Context(), req); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// SetSessionReplayURL godoc
// @Summary Attach the session replay recording URL to a submission
// @Tags Submissions
// @Accept json
// @Produce json
// @Param replay body dto.SessionReplayDTO true "Replay URL"
// @Success 204 "Saved"
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 404 {object} dto.ErrorResponse "Submission not found"
// @Router /submissions/session-replay [post]
func (c *SubmissionController) SetSessionReplayURL(ctx *gin.Context) {
	var req dto.SessionReplayDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	if err := c.submissionService.SetSessionReplayURL(ctx.Request.Context(), req); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// SaveAnswer godoc
// @Summary Save the selected options for one MCQ question
// @Description Upserts the answer; re-sending a question replaces the previous selection.
// @Tags Submissions
// @Accept json
// @Produce json
// @Param answer body dto.McqAnswerDTO true "Answer"
// @Success 204 "Saved"
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 404 {object} dto.ErrorResponse "Submission not found"
// @Router /submissions/answers [post]
func (c *SubmissionController) SaveAnswer(ctx *gin.Context) {
	var req dto.McqAnswerDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	if err := c.submissionService.SaveAnswer(ctx.Request.Context(), req); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// RunProblem godoc
// @Summary Run candidate code against a problem's test cases
// @Description Sends the code to the execution sandbox and stores per-case verdicts.
// @Tags Submissions
// @Accept json
// @Produce json
// @Param run body dto.RunProblemDTO true "Code run request"
// @Success 200 {object} dto.RunProblemResultDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 404 {object} dto.ErrorResponse "Submission or problem not found"
// @Failure 409 {object} dto.ErrorResponse "Submission already completed"
// @Failure 502 {object} dto.ErrorResponse "Execution sandbox unavailable"
// @Router /submissions/run [post]
func (c *SubmissionController) RunProblem(ctx *gin.Context) {
	var req dto.RunProblemDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	result, err := c.submissionService.RunProblem(ctx.Request.Context(), req)
	if err != nil {
		log.Error().Err(err).Uint("problemID", req.ProblemID).Msg("RunProblem failed")
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// CompleteSubmission godoc
// @Summary Finalize a submission
// @Description Scores the submission, derives the cheating status and settles the candidate's application. Completion is terminal.
// @Tags Submissions
// @Accept json
// @Produce json
// @Param complete body dto.CompleteSubmissionDTO true "Submission identity"
// @Success 200 {object} dto.SubmissionResultDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 404 {object} dto.ErrorResponse "Submission not found"
// @Failure 409 {object} dto.ErrorResponse "Submission already completed"
// @Router /submissions/complete [post]
func (c *SubmissionController) CompleteSubmission(ctx *gin.Context) {
	var req dto.CompleteSubmissionDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	result, err := c.submissionService.CompleteSubmission(ctx.Request.Context(), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// GetSubmission godoc
// @Summary Get a submission with its grades
// @Tags Submissions
// @Produce json
// @Param assessment_id path int true "Assessment ID"
// @Param email query string true "Candidate email"
// @Success 200 {object} dto.SubmissionDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid assessment ID or missing email"
// @Failure 404 {object} dto.ErrorResponse "Submission not found"
// @Router /assessments/{assessment_id}/submissions [get]
func (c *SubmissionController) GetSubmission(ctx *gin.Context) {
	assessmentID, err := strconv.ParseUint(ctx.Param("assessment_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid assessment ID format"})
		return
	}
	email := ctx.Query("email")
	if email == "" {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Missing email query parameter"})
		return
	}

	submission, err := c.submissionService.GetSubmission(ctx.Request.Context(), uint(assessmentID), email)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, submission)
}

// OverrideItemGrade godoc
// @Summary Override the marks of one graded item
// @Description A reviewer assigns marks to a question or problem on a completed submission. The total moves by exactly the delta.
// @Tags Grading
// @Accept json
// @Produce json
// @Param override body dto.OverrideGradeDTO true "Override"
// @Success 200 {object} dto.SubmissionResultDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 403 {object} dto.ErrorResponse "Reviewer may not grade"
// @Failure 404 {object} dto.ErrorResponse "Submission or grade entry not found"
// @Failure 409 {object} dto.ErrorResponse "Submission not completed yet"
// @Router /grading/override [post]
func (c *SubmissionController) OverrideItemGrade(ctx *gin.Context) {
	var req dto.OverrideGradeDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("OverrideItemGrade: Failed to bind JSON")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	result, err := c.submissionService.OverrideItemGrade(ctx.Request.Context(), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}
