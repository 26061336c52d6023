package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/lshigami/Hireflow/config"
	"github.com/lshigami/Hireflow/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	mu      sync.Mutex
	sent    []string
	failFor map[string]bool
}

func newFakeMailer(failFor ...string) *fakeMailer {
	m := &fakeMailer{failFor: make(map[string]bool)}
	for _, email := range failFor {
		m.failFor[email] = true
	}
	return m
}

func (m *fakeMailer) SendTemplated(templateID, recipient string, vars map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFor[recipient] {
		return fmt.Errorf("smtp rejected %s", recipient)
	}
	m.sent = append(m.sent, recipient)
	return nil
}

func fanoutConfig(batchSize int, delay time.Duration) *config.Config {
	return &config.Config{Fanout: config.Fanout{BatchSize: batchSize, BatchDelay: delay}}
}

func recipientsN(n int) []NotificationRecipient {
	out := make([]NotificationRecipient, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, NotificationRecipient{Email: fmt.Sprintf("c%d@example.com", i)})
	}
	return out
}

func TestFanout(t *testing.T) {
	t.Run("delivers to every recipient across batches", func(t *testing.T) {
		mailer := newFakeMailer()
		svc := NewNotificationService(fanoutConfig(10, time.Millisecond), mailer)

		result, err := svc.Fanout(context.Background(), TemplateStageUpdate, recipientsN(25))
		require.NoError(t, err)
		assert.Equal(t, 25, result.Attempted)
		assert.Equal(t, 25, result.Succeeded)
		assert.Equal(t, 0, result.Failed)
		assert.Len(t, mailer.sent, 25)
	})

	t.Run("counts per-recipient failures without aborting", func(t *testing.T) {
		mailer := newFakeMailer("c1@example.com", "c3@example.com")
		svc := NewNotificationService(fanoutConfig(2, time.Millisecond), mailer)

		result, err := svc.Fanout(context.Background(), TemplateAssessmentInvite, recipientsN(5))
		require.NoError(t, err)
		assert.Equal(t, 5, result.Attempted)
		assert.Equal(t, 3, result.Succeeded)
		assert.Equal(t, 2, result.Failed)
	})

	t.Run("every recipient failing is a dependency error", func(t *testing.T) {
		mailer := newFakeMailer("c0@example.com", "c1@example.com", "c2@example.com")
		svc := NewNotificationService(fanoutConfig(10, time.Millisecond), mailer)

		result, err := svc.Fanout(context.Background(), TemplateStageUpdate, recipientsN(3))
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.CodeDependency))
		assert.Equal(t, 3, result.Failed)
	})

	t.Run("empty recipient list is a no-op", func(t *testing.T) {
		mailer := newFakeMailer()
		svc := NewNotificationService(fanoutConfig(10, time.Millisecond), mailer)

		result, err := svc.Fanout(context.Background(), TemplateStageUpdate, nil)
		require.NoError(t, err)
		assert.Zero(t, result.Attempted)
		assert.Empty(t, mailer.sent)
	})

	t.Run("cancellation stops between batches", func(t *testing.T) {
		mailer := newFakeMailer()
		svc := NewNotificationService(fanoutConfig(5, time.Minute), mailer)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		result, err := svc.Fanout(ctx, TemplateStageUpdate, recipientsN(12))
		require.Error(t, err)
		// The first batch ran before the cancellation was observed.
		assert.Equal(t, 5, result.Succeeded)
	})
}
