package testutil

import (
	"time"

	"botticelli/internal/domain"

	"go.uber.org/zap"
)

// NewTestLogger creates a no-op logger for tests
func NewTestLogger() *zap.Logger {
	return zap.NewNop()
}

// NewTestGame creates a test game
func NewTestGame(id, channel, creator string, phase domain.Phase) *domain.Game {
	return &domain.Game{
		ID:        id,
		Creator:   creator,
		Letter:    "T",
		Person:    "Mike Tyson",
		Channel:   channel,
		Phase:     phase,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// NewTestItem creates an unanswered test stump or question
func NewTestItem(id, gameID string, kind domain.ItemKind, asker, text string) *domain.Item {
	return &domain.Item{
		ID:        id,
		Kind:      kind,
		GameID:    gameID,
		Asker:     asker,
		Text:      text,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// Answered returns a copy of item with the given answer
func Answered(item *domain.Item, answer bool) domain.Item {
	c := *item
	c.Answer = &answer
	return c
}
