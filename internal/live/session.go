// Package live adapts a candidate's real-time event stream onto the
// submission lifecycle. Transport is left to the caller: anything that can
// hand over raw JSON frames (websocket, SSE poll bridge, test harness) can
// drive a Session.
package live

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/lshigami/Hireflow/internal/apperr"
	"github.com/lshigami/Hireflow/internal/dto"
	"github.com/lshigami/Hireflow/internal/service"
	"github.com/rs/zerolog/log"
)

const (
	EventStart      = "start"
	EventOffense    = "offense"
	EventTimer      = "timer"
	EventSessionURL = "session-url"
	EventAnswer     = "answer"
	EventRun        = "run"
	EventSubmit     = "submit"
)

// Envelope is the wire frame: a type tag plus the event payload.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Reply is sent back for every handled frame.
type Reply struct {
	Type      string      `json:"type"`
	SessionID string      `json:"session_id"`
	Ok        bool        `json:"ok"`
	Error     string      `json:"error,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

// Session serves one candidate connection. It is bound to a single
// (assessment, candidate) identity by the first start frame; frames arriving
// before start are rejected.
type Session struct {
	id          string
	submissions service.SubmissionService

	assessmentID   uint
	candidateEmail string
	started        bool
}

func NewSession(submissions service.SubmissionService) *Session {
	return &Session{
		id:          uuid.NewString(),
		submissions: submissions,
	}
}

func (s *Session) ID() string { return s.id }

// Handle decodes one frame and applies it. The returned Reply is always
// non-nil; protocol errors are reported in-band, not as Go errors, so a bad
// frame never tears the connection down.
func (s *Session) Handle(ctx context.Context, frame []byte) *Reply {
	var envelope Envelope
	if err := json.Unmarshal(frame, &envelope); err != nil {
		return s.fail("", fmt.Errorf("malformed frame: %w", err))
	}

	if envelope.Type != EventStart && !s.started {
		return s.fail(envelope.Type, apperr.New(apperr.CodeInvalidState, "session not started", nil))
	}

	switch envelope.Type {
	case EventStart:
		return s.handleStart(ctx, envelope.Payload)
	case EventOffense:
		return s.handleOffense(ctx, envelope.Payload)
	case EventTimer:
		return s.handleTimer(ctx, envelope.Payload)
	case EventSessionURL:
		return s.handleSessionURL(ctx, envelope.Payload)
	case EventAnswer:
		return s.handleAnswer(ctx, envelope.Payload)
	case EventRun:
		return s.handleRun(ctx, envelope.Payload)
	case EventSubmit:
		return s.handleSubmit(ctx)
	default:
		return s.fail(envelope.Type, apperr.New(apperr.CodeValidation, fmt.Sprintf("unknown event type %q", envelope.Type), nil))
	}
}

func (s *Session) handleStart(ctx context.Context, payload json.RawMessage) *Reply {
	var req dto.StartSubmissionDTO
	if err := json.Unmarshal(payload, &req); err != nil {
		return s.fail(EventStart, fmt.Errorf("malformed start payload: %w", err))
	}
	submission, err := s.submissions.StartSubmission(ctx, req)
	if err != nil {
		return s.fail(EventStart, err)
	}
	s.assessmentID = req.AssessmentID
	s.candidateEmail = req.CandidateEmail
	s.started = true
	log.Info().
		Str("sessionID", s.id).
		Uint("assessmentID", req.AssessmentID).
		Str("candidate", req.CandidateEmail).
		Msg("Live session started")
	return s.ok(EventStart, submission)
}

func (s *Session) handleOffense(ctx context.Context, payload json.RawMessage) *Reply {
	var req dto.OffenseDTO
	if err := json.Unmarshal(payload, &req); err != nil {
		return s.fail(EventOffense, fmt.Errorf("malformed offense payload: %w", err))
	}
	s.bind(&req.AssessmentID, &req.CandidateEmail)
	if err := s.submissions.RecordOffense(ctx, req); err != nil {
		return s.fail(EventOffense, err)
	}
	return s.ok(EventOffense, nil)
}

func (s *Session) handleTimer(ctx context.Context, payload json.RawMessage) *Reply {
	var req dto.TimerSyncDTO
	if err := json.Unmarshal(payload, &req); err != nil {
		return s.fail(EventTimer, fmt.Errorf("malformed timer payload: %w", err))
	}
	s.bind(&req.AssessmentID, &req.CandidateEmail)
	if err := s.submissions.SyncTimer(ctx, req); err != nil {
		return s.fail(EventTimer, err)
	}
	return s.ok(EventTimer, nil)
}

func (s *Session) handleSessionURL(ctx context.Context, payload json.RawMessage) *Reply {
	var req dto.SessionReplayDTO
	if err := json.Unmarshal(payload, &req); err != nil {
		return s.fail(EventSessionURL, fmt.Errorf("malformed session-url payload: %w", err))
	}
	s.bind(&req.AssessmentID, &req.CandidateEmail)
	if err := s.submissions.SetSessionReplayURL(ctx, req); err != nil {
		return s.fail(EventSessionURL, err)
	}
	return s.ok(EventSessionURL, nil)
}

func (s *Session) handleAnswer(ctx context.Context, payload json.RawMessage) *Reply {
	var req dto.McqAnswerDTO
	if err := json.Unmarshal(payload, &req); err != nil {
		return s.fail(EventAnswer, fmt.Errorf("malformed answer payload: %w", err))
	}
	s.bind(&req.AssessmentID, &req.CandidateEmail)
	if err := s.submissions.SaveAnswer(ctx, req); err != nil {
		return s.fail(EventAnswer, err)
	}
	return s.ok(EventAnswer, nil)
}

func (s *Session) handleRun(ctx context.Context, payload json.RawMessage) *Reply {
	var req dto.RunProblemDTO
	if err := json.Unmarshal(payload, &req); err != nil {
		return s.fail(EventRun, fmt.Errorf("malformed run payload: %w", err))
	}
	s.bind(&req.AssessmentID, &req.CandidateEmail)
	result, err := s.submissions.RunProblem(ctx, req)
	if err != nil {
		return s.fail(EventRun, err)
	}
	return s.ok(EventRun, result)
}

func (s *Session) handleSubmit(ctx context.Context) *Reply {
	result, err := s.submissions.CompleteSubmission(ctx, dto.CompleteSubmissionDTO{
		AssessmentID:   s.assessmentID,
		CandidateEmail: s.candidateEmail,
	})
	if err != nil {
		return s.fail(EventSubmit, err)
	}
	log.Info().Str("sessionID", s.id).Uint("assessmentID", s.assessmentID).Msg("Live session submitted")
	return s.ok(EventSubmit, result)
}

// bind overrides a frame's identity fields with the session's, so a client
// cannot smuggle events into another candidate's submission.
func (s *Session) bind(assessmentID *uint, candidateEmail *string) {
	*assessmentID = s.assessmentID
	*candidateEmail = s.candidateEmail
}

func (s *Session) ok(eventType string, data interface{}) *Reply {
	return &Reply{Type: eventType, SessionID: s.id, Ok: true, Data: data}
}

func (s *Session) fail(eventType string, err error) *Reply {
	log.Warn().Err(err).Str("sessionID", s.id).Str("event", eventType).Msg("Live event rejected")
	return &Reply{Type: eventType, SessionID: s.id, Ok: false, Error: err.Error()}
}
