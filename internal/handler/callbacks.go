package handler

import (
	"strings"
	"unicode"

	"botticelli/internal/domain"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// cleanCallbackData removes all non-printable characters from callback data
func cleanCallbackData(data string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) {
			return r
		}
		return -1
	}, strings.TrimSpace(data))
}

// handleCallback handles callbacks no button handler claimed
func (h *Handler) handleCallback(c tele.Context) error {
	callback := c.Callback()
	if callback == nil {
		h.logger.Warn("handleCallback: callback is nil")
		return nil
	}

	data := cleanCallbackData(callback.Data)

	// Buttons whose unique did not come through still carry the token
	if callback.Unique == "" || callback.Unique == btnAnswer.Unique {
		if _, err := domain.ParseToken(data); err == nil {
			return h.handleAnswer(c)
		}
	}

	h.logger.Warn("Unhandled callback",
		zap.String("data", data),
		zap.String("unique", callback.Unique),
	)
	return c.Respond()
}

// handleAnswer applies a Yes/No button press
func (h *Handler) handleAnswer(c tele.Context) error {
	callback := c.Callback()
	if callback == nil {
		return nil
	}

	data := cleanCallbackData(callback.Data)
	h.logger.Info("handleAnswer: Processing callback",
		zap.String("data", data),
		zap.String("id", callback.ID),
		zap.Int64("user_id", c.Sender().ID),
	)

	choice, err := domain.ParseToken(data)
	if err != nil {
		h.logger.Warn("Bad answer token", zap.Error(err), zap.String("data", data))
		return c.Respond(&tele.CallbackResponse{Text: "Unknown button", ShowAlert: true})
	}

	ctx, cancel := requestContext()
	defer cancel()

	res, err := h.games.Answer(ctx, newRequest(c.Chat(), c.Sender()), choice)
	if err != nil {
		text, ok := domain.UserMessage(err)
		if !ok {
			h.logger.Error("Failed to answer", zap.Error(err), zap.String("data", data))
			text = msgInternal
		}
		return c.Respond(&tele.CallbackResponse{Text: text, ShowAlert: true})
	}

	text := res.Text
	if callback.Message != nil && callback.Message.Text != "" {
		text = domain.Escape(callback.Message.Text) + "\n\n" + text
	}
	if res.Summary != "" {
		text += "\n" + res.Summary
	}

	// acknowledge first, the answer is committed whatever happens to the edit
	if err := c.Respond(); err != nil {
		h.logger.Warn("Failed to acknowledge callback", zap.Error(err))
	}

	if callback.Message != nil {
		err = h.withRetry(ctx, "edit prompt", func() error {
			_, err := h.api.Edit(callback.Message, text)
			return err
		})
		if err == nil {
			return nil
		}
		h.logger.Warn("Failed to edit prompt, sending new", zap.Error(err))
	}

	if _, err := h.send(ctx, "send answer", c.Chat(), text); err != nil {
		h.logger.Error("Failed to send answer", zap.Error(err))
	}
	return nil
}
