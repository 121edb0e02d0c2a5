package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"botticelli/internal/domain"

	"github.com/google/uuid"
)

func tableFor(kind domain.ItemKind) (string, error) {
	switch kind {
	case domain.KindStump:
		return "stumps", nil
	case domain.KindQuestion:
		return "questions", nil
	}
	return "", fmt.Errorf("unknown item kind %q", kind)
}

func scanItem(row rowScanner, kind domain.ItemKind) (*domain.Item, error) {
	var it domain.Item
	var answer sql.NullBool
	err := row.Scan(&it.ID, &it.GameID, &it.Asker, &it.Text, &answer, &it.MessageRef, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	it.Kind = kind
	if answer.Valid {
		it.Answer = &answer.Bool
	}
	return &it, nil
}

// GetItem returns a stump or question by ID
func (r *GameRepo) GetItem(ctx context.Context, kind domain.ItemKind, id string) (*domain.Item, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}

	query := `
		SELECT id, game_id, asker, text, answer, message_ref, created_at, updated_at
		FROM ` + table + `
		WHERE id = $1
	`
	it, err := scanItem(r.db.QueryRowContext(ctx, query, id), kind)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return it, nil
}

// PendingItem returns the game's unanswered stump or question, or nil
func (r *GameRepo) PendingItem(ctx context.Context, gameID string, kind domain.ItemKind) (*domain.Item, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, game_id, asker, text, answer, message_ref, created_at, updated_at
		FROM ` + table + `
		WHERE game_id = $1 AND answer IS NULL
		ORDER BY created_at
		LIMIT 1
	`
	it, err := scanItem(r.db.QueryRowContext(ctx, query, gameID), kind)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return it, nil
}

// CreateItem inserts a stump or question and moves the game from one
// phase to the next in the same transaction
func (r *GameRepo) CreateItem(ctx context.Context, game *domain.Game, item *domain.Item, from, to domain.Phase) error {
	table, err := tableFor(item.Kind)
	if err != nil {
		return err
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	item.GameID = game.ID

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := advancePhase(ctx, tx, game.ID, from, to); err != nil {
		return err
	}

	query := `
		INSERT INTO ` + table + ` (id, game_id, asker, text)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`
	err = tx.QueryRowContext(ctx, query, item.ID, item.GameID, item.Asker, item.Text).
		Scan(&item.CreatedAt, &item.UpdatedAt)
	if isUniqueViolation(err) {
		return domain.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("failed to insert %s: %w", item.Kind, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	game.Phase = to
	return nil
}

// AnswerItem records the creator's answer and moves the game on
func (r *GameRepo) AnswerItem(ctx context.Context, item *domain.Item, answer bool, from, to domain.Phase) error {
	table, err := tableFor(item.Kind)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE ` + table + `
		SET answer = $1, updated_at = NOW()
		WHERE id = $2 AND answer IS NULL
	`
	res, err := tx.ExecContext(ctx, query, answer, item.ID)
	if err != nil {
		return fmt.Errorf("failed to answer %s: %w", item.Kind, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return domain.ErrConflict
	}

	if err := advancePhase(ctx, tx, item.GameID, from, to); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	item.Answer = &answer
	return nil
}

// DeleteItem removes an unanswered stump or question and moves the game back
func (r *GameRepo) DeleteItem(ctx context.Context, item *domain.Item, from, to domain.Phase) error {
	table, err := tableFor(item.Kind)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `DELETE FROM ` + table + ` WHERE id = $1 AND answer IS NULL`
	res, err := tx.ExecContext(ctx, query, item.ID)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", item.Kind, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return domain.ErrConflict
	}

	if err := advancePhase(ctx, tx, item.GameID, from, to); err != nil {
		return err
	}

	return tx.Commit()
}

// SetMessageRef stores the chat message that presented the item
func (r *GameRepo) SetMessageRef(ctx context.Context, kind domain.ItemKind, id, ref string) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}

	query := `UPDATE ` + table + ` SET message_ref = $1 WHERE id = $2`
	res, err := r.db.ExecContext(ctx, query, ref, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// LatestStumper returns who asked the most recent stump answered yes
func (r *GameRepo) LatestStumper(ctx context.Context, gameID string) (string, error) {
	query := `
		SELECT asker
		FROM stumps
		WHERE game_id = $1 AND answer = TRUE
		ORDER BY created_at DESC
		LIMIT 1
	`
	var asker string
	err := r.db.QueryRowContext(ctx, query, gameID).Scan(&asker)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return asker, err
}

// ListQuestions returns the game's questions, oldest first
func (r *GameRepo) ListQuestions(ctx context.Context, gameID string) ([]domain.Item, error) {
	query := `
		SELECT id, game_id, asker, text, answer, message_ref, created_at, updated_at
		FROM questions
		WHERE game_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []domain.Item
	for rows.Next() {
		it, err := scanItem(rows, domain.KindQuestion)
		if err != nil {
			return nil, err
		}
		questions = append(questions, *it)
	}

	return questions, rows.Err()
}
