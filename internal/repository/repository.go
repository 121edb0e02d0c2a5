package repository

import (
	"context"

	"botticelli/internal/domain"
)

// GameRepository defines game data operations.
// Every call is atomic. Calls that change a game's phase take the phase the
// caller observed and fail with domain.ErrConflict if the stored game has
// moved on, so two racing requests cannot both apply.
type GameRepository interface {
	GetActive(ctx context.Context, channel string) (*domain.Game, error)
	GetGame(ctx context.Context, id string) (*domain.Game, error)
	CreateGame(ctx context.Context, game *domain.Game) error
	UpdatePhase(ctx context.Context, game *domain.Game, from, to domain.Phase) error

	GetItem(ctx context.Context, kind domain.ItemKind, id string) (*domain.Item, error)
	PendingItem(ctx context.Context, gameID string, kind domain.ItemKind) (*domain.Item, error)
	CreateItem(ctx context.Context, game *domain.Game, item *domain.Item, from, to domain.Phase) error
	AnswerItem(ctx context.Context, item *domain.Item, answer bool, from, to domain.Phase) error
	DeleteItem(ctx context.Context, item *domain.Item, from, to domain.Phase) error
	SetMessageRef(ctx context.Context, kind domain.ItemKind, id, ref string) error

	LatestStumper(ctx context.Context, gameID string) (string, error)
	ListQuestions(ctx context.Context, gameID string) ([]domain.Item, error)
	PurgeFinishedGames(ctx context.Context, olderThanDays int) (int64, error)
}
