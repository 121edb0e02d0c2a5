package handler

import (
	"context"
	"strconv"

	"botticelli/internal/domain"
	"botticelli/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// command returns the handler for a slash command. An empty verb means the
// verb is the first word of the payload.
func (h *Handler) command(verb string) tele.HandlerFunc {
	return func(c tele.Context) error {
		msg := c.Message()
		if msg == nil {
			return nil
		}

		v, params := verb, msg.Payload
		if v == "" {
			v, params = service.ParseCommand(msg.Payload)
			if v == "" {
				v = "help"
			}
		}

		ctx, cancel := requestContext()
		defer cancel()

		req := newRequest(c.Chat(), c.Sender())
		res, err := h.games.Dispatch(ctx, req, v, params)
		if err != nil {
			h.replyError(ctx, c, err)
			return nil
		}

		h.respond(ctx, c.Chat(), c.Sender(), msg, res)
		return nil
	}
}

// replyError tells the requester why an action failed
func (h *Handler) replyError(ctx context.Context, c tele.Context, err error) {
	text, ok := domain.UserMessage(err)
	if !ok {
		h.logger.Error("Failed to handle command",
			zap.Error(err),
			zap.String("text", c.Text()),
		)
		text = msgInternal
	}
	h.sendPrivate(ctx, c.Chat(), c.Sender(), c.Message(), domain.Escape(text))
}

// respond delivers a result to the chat
func (h *Handler) respond(ctx context.Context, chat *tele.Chat, sender *tele.User, msg *tele.Message, res *service.Result) {
	if res.Conceal {
		if err := h.api.Delete(msg); err != nil {
			h.logger.Warn("Failed to delete command message",
				zap.Error(err),
				zap.Int64("chat_id", chat.ID),
			)
		}
	}

	if res.DeleteRef != "" {
		stale := tele.StoredMessage{MessageID: res.DeleteRef, ChatID: chat.ID}
		if err := h.api.Delete(stale); err != nil {
			h.logger.Warn("Failed to delete prompt message",
				zap.Error(err),
				zap.String("message_id", res.DeleteRef),
			)
		}
	}

	switch {
	case res.Private:
		h.sendPrivate(ctx, chat, sender, msg, res.Text)
	case res.Prompt != nil:
		h.sendPrompt(ctx, chat, res)
	default:
		if _, err := h.send(ctx, "send message", chat, res.Text); err != nil {
			h.logger.Error("Failed to send message", zap.Error(err), zap.Int64("chat_id", chat.ID))
		}
	}
}

// sendPrompt posts a prompt with Yes/No buttons and remembers the message
func (h *Handler) sendPrompt(ctx context.Context, chat *tele.Chat, res *service.Result) {
	text := res.Text
	if res.Prompt.Footer != "" {
		text += "\n\n" + res.Prompt.Footer
	}

	sent, err := h.send(ctx, "send prompt", chat, text, promptMarkup(res.Prompt))
	if err != nil {
		h.logger.Error("Failed to send prompt",
			zap.Error(err),
			zap.String("item_id", res.Prompt.ID),
		)
		return
	}

	ref := strconv.Itoa(sent.ID)
	if err := h.games.AttachMessage(ctx, res.Prompt, ref); err != nil {
		h.logger.Warn("Failed to store prompt message",
			zap.Error(err),
			zap.String("item_id", res.Prompt.ID),
			zap.String("message_id", ref),
		)
	}
}

// sendPrivate sends text to the requester's private chat, falling back to a
// reply in the chat when the bot cannot message them directly
func (h *Handler) sendPrivate(ctx context.Context, chat *tele.Chat, sender *tele.User, msg *tele.Message, text string) {
	if sender == nil || (chat != nil && chat.Type == tele.ChatPrivate) {
		if _, err := h.send(ctx, "send reply", chat, text); err != nil {
			h.logger.Error("Failed to send reply", zap.Error(err))
		}
		return
	}

	_, err := h.api.Send(sender, text)
	if err == nil {
		return
	}
	h.logger.Debug("Private message failed, replying in chat",
		zap.Error(err),
		zap.Int64("user_id", sender.ID),
	)

	if _, err := h.send(ctx, "send reply", chat, text, &tele.SendOptions{ReplyTo: msg}); err != nil {
		h.logger.Error("Failed to send reply", zap.Error(err), zap.Int64("user_id", sender.ID))
	}
}
