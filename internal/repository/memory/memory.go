package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"botticelli/internal/domain"
	"botticelli/internal/repository"

	"github.com/google/uuid"
)

var _ repository.GameRepository = (*GameRepo)(nil)

// GameRepo is an in-process repository.GameRepository. A single lock
// makes every call atomic, matching the transactional postgres store.
type GameRepo struct {
	mu    sync.RWMutex
	games map[string]*domain.Game
	items map[domain.ItemKind]map[string]*domain.Item
	seq   map[string]uint64 // item ID -> insertion order
	next  uint64
	now   func() time.Time
}

// NewGameRepo creates an empty store
func NewGameRepo() *GameRepo {
	return &GameRepo{
		games: make(map[string]*domain.Game),
		items: map[domain.ItemKind]map[string]*domain.Item{
			domain.KindStump:    make(map[string]*domain.Item),
			domain.KindQuestion: make(map[string]*domain.Item),
		},
		seq: make(map[string]uint64),
		now: time.Now,
	}
}

func copyGame(g *domain.Game) *domain.Game {
	c := *g
	return &c
}

func copyItem(it *domain.Item) *domain.Item {
	c := *it
	if it.Answer != nil {
		a := *it.Answer
		c.Answer = &a
	}
	return &c
}

func (r *GameRepo) table(kind domain.ItemKind) (map[string]*domain.Item, error) {
	t, ok := r.items[kind]
	if !ok {
		return nil, fmt.Errorf("unknown item kind %q", kind)
	}
	return t, nil
}

func (r *GameRepo) activeLocked(channel string) *domain.Game {
	for _, g := range r.games {
		if g.Channel == channel && !g.Phase.Terminal() {
			return g
		}
	}
	return nil
}

// advanceLocked is the expected-phase check shared by all phase changes
func (r *GameRepo) advanceLocked(gameID string, from, to domain.Phase) (*domain.Game, error) {
	g, ok := r.games[gameID]
	if !ok || g.Phase != from {
		return nil, domain.ErrConflict
	}
	g.Phase = to
	g.UpdatedAt = r.now()
	return g, nil
}

func (r *GameRepo) GetActive(ctx context.Context, channel string) (*domain.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if g := r.activeLocked(channel); g != nil {
		return copyGame(g), nil
	}
	return nil, nil
}

func (r *GameRepo) GetGame(ctx context.Context, id string) (*domain.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.games[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyGame(g), nil
}

func (r *GameRepo) CreateGame(ctx context.Context, game *domain.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.activeLocked(game.Channel) != nil {
		return domain.ErrConflict
	}
	if game.ID == "" {
		game.ID = uuid.NewString()
	}
	game.CreatedAt = r.now()
	game.UpdatedAt = game.CreatedAt
	r.games[game.ID] = copyGame(game)
	return nil
}

func (r *GameRepo) UpdatePhase(ctx context.Context, game *domain.Game, from, to domain.Phase) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, err := r.advanceLocked(game.ID, from, to)
	if err != nil {
		return err
	}
	game.Phase = g.Phase
	game.UpdatedAt = g.UpdatedAt
	return nil
}

func (r *GameRepo) GetItem(ctx context.Context, kind domain.ItemKind, id string) (*domain.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, err := r.table(kind)
	if err != nil {
		return nil, err
	}
	it, ok := t[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyItem(it), nil
}

func (r *GameRepo) pendingLocked(gameID string, kind domain.ItemKind) *domain.Item {
	for _, it := range r.items[kind] {
		if it.GameID == gameID && it.Answer == nil {
			return it
		}
	}
	return nil
}

func (r *GameRepo) PendingItem(ctx context.Context, gameID string, kind domain.ItemKind) (*domain.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, err := r.table(kind); err != nil {
		return nil, err
	}
	if it := r.pendingLocked(gameID, kind); it != nil {
		return copyItem(it), nil
	}
	return nil, nil
}

func (r *GameRepo) CreateItem(ctx context.Context, game *domain.Game, item *domain.Item, from, to domain.Phase) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, err := r.table(item.Kind)
	if err != nil {
		return err
	}
	if r.pendingLocked(game.ID, item.Kind) != nil {
		return domain.ErrConflict
	}
	g, err := r.advanceLocked(game.ID, from, to)
	if err != nil {
		return err
	}

	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	item.GameID = game.ID
	item.CreatedAt = r.now()
	item.UpdatedAt = item.CreatedAt
	t[item.ID] = copyItem(item)
	r.next++
	r.seq[item.ID] = r.next

	game.Phase = g.Phase
	game.UpdatedAt = g.UpdatedAt
	return nil
}

func (r *GameRepo) AnswerItem(ctx context.Context, item *domain.Item, answer bool, from, to domain.Phase) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, err := r.table(item.Kind)
	if err != nil {
		return err
	}
	stored, ok := t[item.ID]
	if !ok || stored.Answer != nil {
		return domain.ErrConflict
	}
	if _, err := r.advanceLocked(stored.GameID, from, to); err != nil {
		return err
	}

	stored.Answer = &answer
	stored.UpdatedAt = r.now()
	item.Answer = &answer
	item.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *GameRepo) DeleteItem(ctx context.Context, item *domain.Item, from, to domain.Phase) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, err := r.table(item.Kind)
	if err != nil {
		return err
	}
	stored, ok := t[item.ID]
	if !ok || stored.Answer != nil {
		return domain.ErrConflict
	}
	if _, err := r.advanceLocked(stored.GameID, from, to); err != nil {
		return err
	}

	delete(t, item.ID)
	delete(r.seq, item.ID)
	return nil
}

func (r *GameRepo) SetMessageRef(ctx context.Context, kind domain.ItemKind, id, ref string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, err := r.table(kind)
	if err != nil {
		return err
	}
	it, ok := t[id]
	if !ok {
		return domain.ErrNotFound
	}
	it.MessageRef = ref
	return nil
}

// sortedItems returns the game's items of a kind, oldest first
func (r *GameRepo) sortedItems(gameID string, kind domain.ItemKind) []*domain.Item {
	var out []*domain.Item
	for _, it := range r.items[kind] {
		if it.GameID == gameID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return r.seq[out[i].ID] < r.seq[out[j].ID]
	})
	return out
}

func (r *GameRepo) LatestStumper(ctx context.Context, gameID string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stumps := r.sortedItems(gameID, domain.KindStump)
	for i := len(stumps) - 1; i >= 0; i-- {
		if a := stumps[i].Answer; a != nil && *a {
			return stumps[i].Asker, nil
		}
	}
	return "", nil
}

func (r *GameRepo) ListQuestions(ctx context.Context, gameID string) ([]domain.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var questions []domain.Item
	for _, it := range r.sortedItems(gameID, domain.KindQuestion) {
		questions = append(questions, *copyItem(it))
	}
	return questions, nil
}

func (r *GameRepo) PurgeFinishedGames(ctx context.Context, olderThanDays int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().AddDate(0, 0, -olderThanDays)
	var purged int64
	for id, g := range r.games {
		if !g.Phase.Terminal() || !g.UpdatedAt.Before(cutoff) {
			continue
		}
		for _, t := range r.items {
			for itemID, it := range t {
				if it.GameID == id {
					delete(t, itemID)
					delete(r.seq, itemID)
				}
			}
		}
		delete(r.games, id)
		purged++
	}
	return purged, nil
}
