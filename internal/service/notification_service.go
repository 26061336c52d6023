package service

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/lshigami/Hireflow/config"
	"github.com/lshigami/Hireflow/internal/apperr"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// NotificationRecipient pairs a destination address with its template
// variables.
type NotificationRecipient struct {
	Email string
	Vars  map[string]string
}

type FanoutResult struct {
	Attempted int `json:"attempted"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// NotificationService batches outbound notifications to respect the mail
// provider's rate limit. Per-recipient failures are logged and counted, never
// fatal; only total inability to deliver is surfaced as an error.
type NotificationService interface {
	Fanout(ctx context.Context, templateID string, recipients []NotificationRecipient) (FanoutResult, error)
}

type notificationService struct {
	mailer     TemplatedMailer
	batchSize  int
	batchDelay time.Duration
}

func NewNotificationService(cfg *config.Config, mailer TemplatedMailer) NotificationService {
	batchSize := cfg.Fanout.BatchSize
	if batchSize <= 0 {
		batchSize = 50
	}
	return &notificationService{
		mailer:     mailer,
		batchSize:  batchSize,
		batchDelay: cfg.Fanout.BatchDelay,
	}
}

func (s *notificationService) Fanout(ctx context.Context, templateID string, recipients []NotificationRecipient) (FanoutResult, error) {
	result := FanoutResult{Attempted: len(recipients)}
	if len(recipients) == 0 {
		return result, nil
	}

	var succeeded, failed atomic.Int64
	for start := 0; start < len(recipients); start += s.batchSize {
		end := start + s.batchSize
		if end > len(recipients) {
			end = len(recipients)
		}
		batch := recipients[start:end]

		g, _ := errgroup.WithContext(ctx)
		for _, recipient := range batch {
			recipient := recipient
			g.Go(func() error {
				if err := s.mailer.SendTemplated(templateID, recipient.Email, recipient.Vars); err != nil {
					failed.Add(1)
					log.Warn().Err(err).
						Str("template", templateID).
						Str("recipient", recipient.Email).
						Msg("Fanout: failed to deliver notification")
					return nil // one bad recipient never aborts the batch
				}
				succeeded.Add(1)
				return nil
			})
		}
		_ = g.Wait()

		if end < len(recipients) {
			// Deliberate backpressure against the provider's rate limit.
			select {
			case <-ctx.Done():
				result.Succeeded = int(succeeded.Load())
				result.Failed = result.Attempted - result.Succeeded
				return result, ctx.Err()
			case <-time.After(s.batchDelay):
			}
		}
	}

	result.Succeeded = int(succeeded.Load())
	result.Failed = int(failed.Load())

	if result.Succeeded == 0 && result.Failed == result.Attempted {
		return result, apperr.New(apperr.CodeDependency, "mail delivery failed for every recipient", nil)
	}
	log.Info().
		Str("template", templateID).
		Int("attempted", result.Attempted).
		Int("succeeded", result.Succeeded).
		Int("failed", result.Failed).
		Msg("Fanout: batch delivery finished")
	return result, nil
}
