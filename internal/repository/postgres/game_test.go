package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"botticelli/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

const testGameID = "6f1c2b9e-3d4a-4e5f-8a7b-9c0d1e2f3a4b"

var gameColumns = []string{"id", "creator", "letter", "person", "channel", "phase", "created_at", "updated_at"}

func TestGameRepo_GetActive(t *testing.T) {
	tests := []struct {
		name          string
		mockRows      *sqlmock.Rows
		mockError     error
		expectedNil   bool
		expectedError bool
	}{
		{
			name: "active game",
			mockRows: sqlmock.NewRows(gameColumns).
				AddRow(testGameID, "alice", "T", "Mike Tyson", "-100", 1, time.Now(), time.Now()),
			expectedNil: false,
		},
		{
			name:        "no active game",
			mockRows:    sqlmock.NewRows(gameColumns),
			expectedNil: true,
		},
		{
			name:          "query error",
			mockError:     fmt.Errorf("connection refused"),
			expectedNil:   true,
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			assert.NoError(t, err)
			defer db.Close()

			repo := NewGameRepo(db)

			query := "SELECT id, creator, letter, person, channel, phase, created_at, updated_at FROM games WHERE channel = \\$1 AND phase NOT IN \\(\\$2, \\$3\\)"
			exp := mock.ExpectQuery(query).WithArgs("-100", int(domain.PhaseDone), int(domain.PhaseCancelled))
			if tt.mockError != nil {
				exp.WillReturnError(tt.mockError)
			} else {
				exp.WillReturnRows(tt.mockRows)
			}

			game, err := repo.GetActive(context.Background(), "-100")

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			if tt.expectedNil {
				assert.Nil(t, game)
			} else {
				assert.NotNil(t, game)
				assert.Equal(t, domain.PhasePendingStump, game.Phase)
				assert.Equal(t, "alice", game.Creator)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGameRepo_GetGame_InvalidID(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewGameRepo(db)

	game, err := repo.GetGame(context.Background(), "not-a-uuid")

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Nil(t, game)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGameRepo_GetGame_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewGameRepo(db)

	mock.ExpectQuery("SELECT (.+) FROM games WHERE id = \\$1").
		WithArgs(testGameID).
		WillReturnRows(sqlmock.NewRows(gameColumns))

	game, err := repo.GetGame(context.Background(), testGameID)

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Nil(t, game)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGameRepo_CreateGame(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewGameRepo(db)

	now := time.Now()
	mock.ExpectQuery("INSERT INTO games").
		WithArgs(sqlmock.AnyArg(), "alice", "T", "Mike Tyson", "-100", int(domain.PhaseStump)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	game := &domain.Game{Creator: "alice", Letter: "T", Person: "Mike Tyson", Channel: "-100"}
	err = repo.CreateGame(context.Background(), game)

	assert.NoError(t, err)
	assert.NotEmpty(t, game.ID)
	assert.Equal(t, now, game.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGameRepo_CreateGame_ActiveGameExists(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewGameRepo(db)

	mock.ExpectQuery("INSERT INTO games").
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err = repo.CreateGame(context.Background(), &domain.Game{Creator: "alice", Channel: "-100"})

	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGameRepo_UpdatePhase(t *testing.T) {
	tests := []struct {
		name          string
		mockRows      *sqlmock.Rows
		expectedPhase domain.Phase
		expectedError error
	}{
		{
			name:          "phase matches",
			mockRows:      sqlmock.NewRows([]string{"updated_at"}).AddRow(time.Now()),
			expectedPhase: domain.PhaseCancelled,
		},
		{
			name:          "phase moved on",
			mockRows:      sqlmock.NewRows([]string{"updated_at"}),
			expectedPhase: domain.PhaseQuestion,
			expectedError: domain.ErrConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			assert.NoError(t, err)
			defer db.Close()

			repo := NewGameRepo(db)

			mock.ExpectQuery("UPDATE games SET phase = \\$1, updated_at = NOW\\(\\) WHERE id = \\$2 AND phase = \\$3").
				WithArgs(int(domain.PhaseCancelled), testGameID, int(domain.PhaseQuestion)).
				WillReturnRows(tt.mockRows)

			game := &domain.Game{ID: testGameID, Phase: domain.PhaseQuestion}
			err = repo.UpdatePhase(context.Background(), game, domain.PhaseQuestion, domain.PhaseCancelled)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expectedPhase, game.Phase)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGameRepo_PurgeFinishedGames(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewGameRepo(db)

	mock.ExpectExec("DELETE FROM games WHERE phase IN").
		WithArgs(int(domain.PhaseDone), int(domain.PhaseCancelled), 60).
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := repo.PurgeFinishedGames(context.Background(), 60)

	assert.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
