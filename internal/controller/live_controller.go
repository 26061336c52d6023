package controller

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/Hireflow/internal/live"
	"github.com/lshigami/Hireflow/internal/service"
	"github.com/rs/zerolog/log"
)

const maxFrameBytes = 1 << 20

// LiveController bridges a streaming HTTP connection onto a live.Session.
// Each line of the request body is one event frame (NDJSON); the matching
// reply is written back on its own line as soon as the frame is handled, so
// one request carries a whole proctored sitting.
type LiveController struct {
	newSession func() *live.Session
}

func NewLiveController(submissionService service.SubmissionService) *LiveController {
	return &LiveController{
		newSession: func() *live.Session { return live.NewSession(submissionService) },
	}
}

// Connect godoc
// @Summary Open a live submission session
// @Description Streams newline-delimited JSON event frames; each frame gets a newline-delimited reply. The first frame must be a start event.
// @Tags Live
// @Accept json
// @Produce json
// @Success 200 {object} live.Reply
// @Router /live [post]
func (c *LiveController) Connect(ctx *gin.Context) {
	session := c.newSession()
	ctx.Header("Content-Type", "application/x-ndjson")
	ctx.Header("X-Session-ID", session.ID())
	ctx.Status(http.StatusOK)

	enc := json.NewEncoder(ctx.Writer)
	scanner := bufio.NewScanner(ctx.Request.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxFrameBytes)
	for scanner.Scan() {
		frame := bytes.TrimSpace(scanner.Bytes())
		if len(frame) == 0 {
			continue
		}
		reply := session.Handle(ctx.Request.Context(), frame)
		if err := enc.Encode(reply); err != nil {
			return
		}
		ctx.Writer.Flush()
	}
	if err := scanner.Err(); err != nil {
		log.Warn().Err(err).Str("sessionID", session.ID()).Msg("Live connection closed with error")
	}
}
