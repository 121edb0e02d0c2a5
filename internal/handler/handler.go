package handler

import (
	"context"
	"strconv"
	"time"

	"botticelli/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const (
	sendAttempts   = 3
	requestTimeout = 10 * time.Second

	msgInternal = "Something went wrong, try again later"
)

// verbs that get their own /command next to /botticelli <verb>
var shortcuts = []string{"status", "help", "ask", "stump", "start", "cancel"}

// Messenger is the part of the Telegram API the handler talks to
type Messenger interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
	Edit(msg tele.Editable, what interface{}, opts ...interface{}) (*tele.Message, error)
	Delete(msg tele.Editable) error
}

// Handler manages all bot interactions
type Handler struct {
	bot    *tele.Bot
	api    Messenger
	games  *service.GameService
	logger *zap.Logger

	// retryDelay grows linearly with every failed send
	retryDelay time.Duration
}

// NewHandler creates a new handler instance
func NewHandler(bot *tele.Bot, games *service.GameService, logger *zap.Logger) *Handler {
	return &Handler{
		bot:        bot,
		api:        bot,
		games:      games,
		logger:     logger,
		retryDelay: time.Second,
	}
}

// RegisterHandlers registers all bot handlers
func (h *Handler) RegisterHandlers() {
	// Commands
	h.bot.Handle("/botticelli", h.command(""))
	for _, verb := range shortcuts {
		h.bot.Handle("/"+verb, h.command(verb))
	}

	// Callback queries (inline buttons)
	h.bot.Handle(&btnAnswer, h.handleAnswer)

	// Generic callback handler for buttons that lost their unique
	h.bot.Handle(tele.OnCallback, h.handleCallback)
}

// Inline keyboard buttons
var btnAnswer = tele.Btn{Unique: "answer"}

// promptMarkup returns the Yes/No keyboard for a prompt
func promptMarkup(p *service.Prompt) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.Inline(
		markup.Row(
			markup.Data("Yes", btnAnswer.Unique, p.Token(true)),
			markup.Data("No", btnAnswer.Unique, p.Token(false)),
		),
	)
	return markup
}

// identity names a chat user, falling back to the numeric ID for users
// without a username
func identity(u *tele.User) string {
	if u == nil {
		return ""
	}
	if u.Username != "" {
		return u.Username
	}
	return strconv.FormatInt(u.ID, 10)
}

// newRequest builds the engine request for a chat and its sender
func newRequest(chat *tele.Chat, sender *tele.User) service.Request {
	var channel string
	if chat != nil {
		channel = strconv.FormatInt(chat.ID, 10)
	}
	return service.Request{Channel: channel, User: identity(sender)}
}

func requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}
