package testutil

import (
	"context"

	"botticelli/internal/domain"

	"github.com/stretchr/testify/mock"
)

// MockGameRepository is a mock for GameRepository
type MockGameRepository struct {
	mock.Mock
}

func (m *MockGameRepository) GetActive(ctx context.Context, channel string) (*domain.Game, error) {
	args := m.Called(ctx, channel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Game), args.Error(1)
}

func (m *MockGameRepository) GetGame(ctx context.Context, id string) (*domain.Game, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Game), args.Error(1)
}

func (m *MockGameRepository) CreateGame(ctx context.Context, game *domain.Game) error {
	args := m.Called(ctx, game)
	return args.Error(0)
}

func (m *MockGameRepository) UpdatePhase(ctx context.Context, game *domain.Game, from, to domain.Phase) error {
	args := m.Called(ctx, game, from, to)
	return args.Error(0)
}

func (m *MockGameRepository) GetItem(ctx context.Context, kind domain.ItemKind, id string) (*domain.Item, error) {
	args := m.Called(ctx, kind, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Item), args.Error(1)
}

func (m *MockGameRepository) PendingItem(ctx context.Context, gameID string, kind domain.ItemKind) (*domain.Item, error) {
	args := m.Called(ctx, gameID, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Item), args.Error(1)
}

func (m *MockGameRepository) CreateItem(ctx context.Context, game *domain.Game, item *domain.Item, from, to domain.Phase) error {
	args := m.Called(ctx, game, item, from, to)
	return args.Error(0)
}

func (m *MockGameRepository) AnswerItem(ctx context.Context, item *domain.Item, answer bool, from, to domain.Phase) error {
	args := m.Called(ctx, item, answer, from, to)
	return args.Error(0)
}

func (m *MockGameRepository) DeleteItem(ctx context.Context, item *domain.Item, from, to domain.Phase) error {
	args := m.Called(ctx, item, from, to)
	return args.Error(0)
}

func (m *MockGameRepository) SetMessageRef(ctx context.Context, kind domain.ItemKind, id, ref string) error {
	args := m.Called(ctx, kind, id, ref)
	return args.Error(0)
}

func (m *MockGameRepository) LatestStumper(ctx context.Context, gameID string) (string, error) {
	args := m.Called(ctx, gameID)
	return args.String(0), args.Error(1)
}

func (m *MockGameRepository) ListQuestions(ctx context.Context, gameID string) ([]domain.Item, error) {
	args := m.Called(ctx, gameID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Item), args.Error(1)
}

func (m *MockGameRepository) PurgeFinishedGames(ctx context.Context, olderThanDays int) (int64, error) {
	args := m.Called(ctx, olderThanDays)
	return args.Get(0).(int64), args.Error(1)
}
