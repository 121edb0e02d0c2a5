package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"botticelli/internal/domain"
	"botticelli/internal/repository"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// uniqueViolation is the postgres SQLSTATE for a unique index conflict
const uniqueViolation = "23505"

var _ repository.GameRepository = (*GameRepo)(nil)

// GameRepo implements repository.GameRepository
type GameRepo struct {
	db *sql.DB
}

// NewGameRepo creates a new game repository
func NewGameRepo(db *sql.DB) *GameRepo {
	return &GameRepo{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGame(row rowScanner) (*domain.Game, error) {
	var g domain.Game
	var phase int
	err := row.Scan(&g.ID, &g.Creator, &g.Letter, &g.Person, &g.Channel, &phase, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	g.Phase = domain.Phase(phase)
	return &g, nil
}

// GetActive returns the channel's game that is neither done nor cancelled
func (r *GameRepo) GetActive(ctx context.Context, channel string) (*domain.Game, error) {
	query := `
		SELECT id, creator, letter, person, channel, phase, created_at, updated_at
		FROM games
		WHERE channel = $1 AND phase NOT IN ($2, $3)
		LIMIT 1
	`
	g, err := scanGame(r.db.QueryRowContext(ctx, query, channel, int(domain.PhaseDone), int(domain.PhaseCancelled)))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

// GetGame returns a game by ID
func (r *GameRepo) GetGame(ctx context.Context, id string) (*domain.Game, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}

	query := `
		SELECT id, creator, letter, person, channel, phase, created_at, updated_at
		FROM games
		WHERE id = $1
	`
	g, err := scanGame(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

// CreateGame inserts a new game. The partial unique index on channel
// rejects a second active game with domain.ErrConflict.
func (r *GameRepo) CreateGame(ctx context.Context, game *domain.Game) error {
	if game.ID == "" {
		game.ID = uuid.NewString()
	}

	query := `
		INSERT INTO games (id, creator, letter, person, channel, phase)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		game.ID, game.Creator, game.Letter, game.Person, game.Channel, int(game.Phase),
	).Scan(&game.CreatedAt, &game.UpdatedAt)
	if isUniqueViolation(err) {
		return domain.ErrConflict
	}
	return err
}

// UpdatePhase moves a game from one phase to another
func (r *GameRepo) UpdatePhase(ctx context.Context, game *domain.Game, from, to domain.Phase) error {
	query := `
		UPDATE games
		SET phase = $1, updated_at = NOW()
		WHERE id = $2 AND phase = $3
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(ctx, query, int(to), game.ID, int(from)).Scan(&game.UpdatedAt)
	if err == sql.ErrNoRows {
		return domain.ErrConflict
	}
	if err != nil {
		return err
	}
	game.Phase = to
	return nil
}

// PurgeFinishedGames deletes done and cancelled games untouched for the
// given number of days. Stumps and questions go with them.
func (r *GameRepo) PurgeFinishedGames(ctx context.Context, olderThanDays int) (int64, error) {
	query := `
		DELETE FROM games
		WHERE phase IN ($1, $2) AND updated_at < NOW() - INTERVAL '1 day' * $3
	`
	res, err := r.db.ExecContext(ctx, query, int(domain.PhaseDone), int(domain.PhaseCancelled), olderThanDays)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// advancePhase is the optimistic phase check shared by the item writes.
// The row lock it takes serializes concurrent writers on the same game.
func advancePhase(ctx context.Context, tx *sql.Tx, gameID string, from, to domain.Phase) error {
	query := `
		UPDATE games
		SET phase = $1, updated_at = NOW()
		WHERE id = $2 AND phase = $3
	`
	res, err := tx.ExecContext(ctx, query, int(to), gameID, int(from))
	if err != nil {
		return fmt.Errorf("failed to update game phase: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrConflict
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
