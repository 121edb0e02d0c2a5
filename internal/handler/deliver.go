package handler

import (
	"context"
	"strings"
	"time"

	"botticelli/internal/domain"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// send posts what to a chat, retrying transient failures
func (h *Handler) send(ctx context.Context, op string, to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error) {
	var sent *tele.Message
	err := h.withRetry(ctx, op, func() error {
		var err error
		sent, err = h.api.Send(to, what, opts...)
		return err
	})
	return sent, err
}

// withRetry runs fn up to sendAttempts times with a linearly growing pause.
// The final failure is returned as a DeliveryError.
func (h *Handler) withRetry(ctx context.Context, op string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= sendAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if isNotModified(err) {
			return nil
		}

		h.logger.Warn("Delivery attempt failed",
			zap.String("op", op),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if attempt == sendAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return &domain.DeliveryError{Op: op, Attempts: attempt, Err: ctx.Err()}
		case <-time.After(time.Duration(attempt) * h.retryDelay):
		}
	}
	return &domain.DeliveryError{Op: op, Attempts: sendAttempts, Err: err}
}

// isNotModified reports an edit that found the message already in the
// wanted state, usually because another callback got there first
func isNotModified(err error) bool {
	return strings.Contains(err.Error(), "message is not modified")
}
