package stream

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/quillcheck/engine/internal/engine"
)

const (
	maxRetries     = 3
	initialBackoff = 500 * time.Millisecond
)

// RetryHandler retries transient failures with exponential backoff and parks
// messages that keep failing on a dead-letter stream.
type RetryHandler struct {
	client        *redis.Client
	deadLetterKey string
}

func NewRetryHandler(client *redis.Client, deadLetterKey string) *RetryHandler {
	return &RetryHandler{
		client:        client,
		deadLetterKey: deadLetterKey,
	}
}

// RetryWithBackoff runs fn up to maxRetries times. Deterministic engine
// errors are never retried: rerunning them reproduces the same failure, so
// they go straight to the dead-letter queue.
func (h *RetryHandler) RetryWithBackoff(
	ctx context.Context,
	fn func() error,
	messageID string,
	fields map[string]interface{},
) error {
	backoff := initialBackoff

	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}

		if isPermanent(err) {
			log.Warn().
				Err(err).
				Str("message_id", messageID).
				Msg("Permanent failure, not retrying")
			break
		}

		if attempt < maxRetries {
			log.Warn().
				Err(err).
				Str("message_id", messageID).
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("Transient failure, retrying")

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
	}

	if dlqErr := h.sendToDeadLetter(ctx, messageID, fields, err); dlqErr != nil {
		log.Error().Err(dlqErr).Str("message_id", messageID).Msg("Failed to park message in dead-letter queue")
	}
	return err
}

// isPermanent reports whether the error is deterministic for the input.
func isPermanent(err error) bool {
	return errors.Is(err, engine.ErrEmptyDocument) ||
		errors.Is(err, engine.ErrUnsupportedEncoding) ||
		errors.Is(err, engine.ErrDuplicateSubmission)
}

func (h *RetryHandler) sendToDeadLetter(
	ctx context.Context,
	messageID string,
	fields map[string]interface{},
	cause error,
) error {
	values := make(map[string]interface{}, len(fields)+2)
	for k, v := range fields {
		values[k] = v
	}
	values["original_message_id"] = messageID
	if cause != nil {
		values["failure"] = cause.Error()
	}

	if err := h.client.XAdd(ctx, &redis.XAddArgs{
		Stream: h.deadLetterKey,
		Values: values,
	}).Err(); err != nil {
		return err
	}

	log.Info().
		Str("message_id", messageID).
		Str("dead_letter", h.deadLetterKey).
		Msg("Message parked in dead-letter queue")
	return nil
}
