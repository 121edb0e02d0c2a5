package middleware

import (
	"errors"
	"testing"

	"botticelli/internal/testutil"

	"github.com/stretchr/testify/assert"
	tele "gopkg.in/telebot.v3"
)

func TestChatAllowList(t *testing.T) {
	allowed := &tele.Chat{ID: -100}
	other := &tele.Chat{ID: -200}
	user := &tele.User{ID: 1, Username: "alice"}

	tests := []struct {
		name      string
		allowed   []int64
		ctx       *testutil.FakeContext
		expectRun bool
		responded bool
	}{
		{
			name:      "empty list allows everything",
			ctx:       testutil.NewCommandContext(other, user, "/status", ""),
			expectRun: true,
		},
		{
			name:      "allowed chat",
			allowed:   []int64{-100},
			ctx:       testutil.NewCommandContext(allowed, user, "/status", ""),
			expectRun: true,
		},
		{
			name:    "other chat is ignored",
			allowed: []int64{-100},
			ctx:     testutil.NewCommandContext(other, user, "/status", ""),
		},
		{
			name:      "callback from other chat is acknowledged",
			allowed:   []int64{-100},
			ctx:       testutil.NewCallbackContext(&tele.Message{ID: 5, Chat: other}, user, "answer", "s:x:y"),
			responded: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ran := false
			next := func(c tele.Context) error {
				ran = true
				return nil
			}

			err := ChatAllowList(tt.allowed, testutil.NewTestLogger())(next)(tt.ctx)

			assert.NoError(t, err)
			assert.Equal(t, tt.expectRun, ran)
			assert.Equal(t, tt.responded, len(tt.ctx.Responses) > 0)
		})
	}
}

func TestLogger_PassesThrough(t *testing.T) {
	ctx := testutil.NewCommandContext(&tele.Chat{ID: -100}, &tele.User{ID: 1}, "/status", "")
	handlerErr := errors.New("boom")

	err := Logger(testutil.NewTestLogger())(func(c tele.Context) error {
		return handlerErr
	})(ctx)

	assert.ErrorIs(t, err, handlerErr)
}
