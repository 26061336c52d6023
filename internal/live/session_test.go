package live

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/lshigami/Hireflow/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSubmissionService struct {
	started  []dto.StartSubmissionDTO
	offenses []dto.OffenseDTO
	timers   []dto.TimerSyncDTO
	answers  []dto.McqAnswerDTO
	complete []dto.CompleteSubmissionDTO
}

func (f *fakeSubmissionService) StartSubmission(ctx context.Context, req dto.StartSubmissionDTO) (*dto.SubmissionDTO, error) {
	f.started = append(f.started, req)
	return &dto.SubmissionDTO{ID: 1, AssessmentID: req.AssessmentID, CandidateEmail: req.CandidateEmail}, nil
}
func (f *fakeSubmissionService) RecordOffense(ctx context.Context, req dto.OffenseDTO) error {
	f.offenses = append(f.offenses, req)
	return nil
}
func (f *fakeSubmissionService) SyncTimer(ctx context.Context, req dto.TimerSyncDTO) error {
	f.timers = append(f.timers, req)
	return nil
}
func (f *fakeSubmissionService) SetSessionReplayURL(ctx context.Context, req dto.SessionReplayDTO) error {
	return nil
}
func (f *fakeSubmissionService) SaveAnswer(ctx context.Context, req dto.McqAnswerDTO) error {
	f.answers = append(f.answers, req)
	return nil
}
func (f *fakeSubmissionService) RunProblem(ctx context.Context, req dto.RunProblemDTO) (*dto.RunProblemResultDTO, error) {
	return &dto.RunProblemResultDTO{Status: "finished"}, nil
}
func (f *fakeSubmissionService) CompleteSubmission(ctx context.Context, req dto.CompleteSubmissionDTO) (*dto.SubmissionResultDTO, error) {
	f.complete = append(f.complete, req)
	return &dto.SubmissionResultDTO{}, nil
}
func (f *fakeSubmissionService) OverrideItemGrade(ctx context.Context, req dto.OverrideGradeDTO) (*dto.SubmissionResultDTO, error) {
	return &dto.SubmissionResultDTO{}, nil
}
func (f *fakeSubmissionService) GetSubmission(ctx context.Context, assessmentID uint, candidateEmail string) (*dto.SubmissionDTO, error) {
	return &dto.SubmissionDTO{}, nil
}

func frame(t *testing.T, eventType string, payload interface{}) []byte {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	out, err := json.Marshal(Envelope{Type: eventType, Payload: raw})
	require.NoError(t, err)
	return out
}

func startSession(t *testing.T) (*Session, *fakeSubmissionService) {
	t.Helper()
	svc := &fakeSubmissionService{}
	session := NewSession(svc)
	reply := session.Handle(context.Background(), frame(t, EventStart, dto.StartSubmissionDTO{
		AssessmentID: 1, CandidateEmail: "a@example.com",
	}))
	require.True(t, reply.Ok)
	return session, svc
}

func TestSessionLifecycle(t *testing.T) {
	t.Run("start binds the session identity", func(t *testing.T) {
		session, svc := startSession(t)
		require.Len(t, svc.started, 1)
		assert.NotEmpty(t, session.ID())
	})

	t.Run("events before start are rejected in-band", func(t *testing.T) {
		session := NewSession(&fakeSubmissionService{})
		reply := session.Handle(context.Background(), frame(t, EventTimer, dto.TimerSyncDTO{TimerSeconds: 5}))
		assert.False(t, reply.Ok)
		assert.NotEmpty(t, reply.Error)
	})

	t.Run("frames cannot target another candidate", func(t *testing.T) {
		session, svc := startSession(t)
		reply := session.Handle(context.Background(), frame(t, EventOffense, dto.OffenseDTO{
			AssessmentID: 99, CandidateEmail: "intruder@example.com", Kind: "tab-change",
		}))
		require.True(t, reply.Ok)
		require.Len(t, svc.offenses, 1)
		assert.Equal(t, uint(1), svc.offenses[0].AssessmentID)
		assert.Equal(t, "a@example.com", svc.offenses[0].CandidateEmail)
	})

	t.Run("submit completes with the bound identity", func(t *testing.T) {
		session, svc := startSession(t)
		reply := session.Handle(context.Background(), frame(t, EventSubmit, struct{}{}))
		require.True(t, reply.Ok)
		require.Len(t, svc.complete, 1)
		assert.Equal(t, uint(1), svc.complete[0].AssessmentID)
	})

	t.Run("malformed frames do not tear the session down", func(t *testing.T) {
		session, svc := startSession(t)
		reply := session.Handle(context.Background(), []byte("{not json"))
		assert.False(t, reply.Ok)

		reply = session.Handle(context.Background(), frame(t, EventTimer, dto.TimerSyncDTO{TimerSeconds: 30}))
		assert.True(t, reply.Ok)
		assert.Len(t, svc.timers, 1)
	})

	t.Run("unknown event types are rejected", func(t *testing.T) {
		session, _ := startSession(t)
		reply := session.Handle(context.Background(), frame(t, "screenshot", struct{}{}))
		assert.False(t, reply.Ok)
	})
}
