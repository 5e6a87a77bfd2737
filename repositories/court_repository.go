package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Rackosdra/kt-ex/models"
)

var ErrCourtNotFound = errors.New("court not found")

type CourtRepository interface {
	Upsert(ctx context.Context, exec SQLExecutor, court *models.Court) error
	GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Court, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) ([]models.Court, error)
	ListActive(ctx context.Context, exec SQLExecutor, tournamentID string) ([]models.Court, error)
	ListFree(ctx context.Context, exec SQLExecutor, tournamentID string) ([]models.Court, error)
	UpdateCurrentMatch(ctx context.Context, exec SQLExecutor, courtID string, matchID *string) error
	FindByCurrentMatch(ctx context.Context, exec SQLExecutor, matchID string) (*models.Court, error)
	CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) (int, error)
}

type postgresCourtRepository struct {
	db *sql.DB
}

func NewPostgresCourtRepository(db *sql.DB) CourtRepository {
	return &postgresCourtRepository{db: db}
}

func (r *postgresCourtRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresCourtRepository) Upsert(ctx context.Context, exec SQLExecutor, c *models.Court) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO courts (id, tournament_id, number, name, current_match_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			tournament_id    = EXCLUDED.tournament_id,
			number           = EXCLUDED.number,
			name             = EXCLUDED.name,
			current_match_id = EXCLUDED.current_match_id`

	_, err := executor.ExecContext(ctx, query, c.ID, c.TournamentID, c.Number, c.Name, c.CurrentMatchID)
	if err != nil {
		return fmt.Errorf("failed to upsert court %s: %w", c.ID, err)
	}
	return nil
}

func (r *postgresCourtRepository) GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Court, error) {
	executor := r.getExecutor(exec)
	c := &models.Court{}
	err := executor.QueryRowContext(ctx, `
		SELECT id, tournament_id, number, name, current_match_id
		FROM courts
		WHERE id = $1`, id,
	).Scan(&c.ID, &c.TournamentID, &c.Number, &c.Name, &c.CurrentMatchID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCourtNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *postgresCourtRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) ([]models.Court, error) {
	executor := r.getExecutor(exec)
	return r.queryCourts(ctx, executor, `
		SELECT id, tournament_id, number, name, current_match_id
		FROM courts
		WHERE tournament_id = $1
		ORDER BY number`, tournamentID)
}

func (r *postgresCourtRepository) ListActive(ctx context.Context, exec SQLExecutor, tournamentID string) ([]models.Court, error) {
	executor := r.getExecutor(exec)
	return r.queryCourts(ctx, executor, `
		SELECT id, tournament_id, number, name, current_match_id
		FROM courts
		WHERE tournament_id = $1 AND current_match_id IS NOT NULL
		ORDER BY number`, tournamentID)
}

func (r *postgresCourtRepository) ListFree(ctx context.Context, exec SQLExecutor, tournamentID string) ([]models.Court, error) {
	executor := r.getExecutor(exec)
	return r.queryCourts(ctx, executor, `
		SELECT id, tournament_id, number, name, current_match_id
		FROM courts
		WHERE tournament_id = $1 AND current_match_id IS NULL
		ORDER BY number`, tournamentID)
}

func (r *postgresCourtRepository) UpdateCurrentMatch(ctx context.Context, exec SQLExecutor, courtID string, matchID *string) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE courts SET current_match_id = $1 WHERE id = $2`, matchID, courtID)
	if err != nil {
		return fmt.Errorf("failed to update current match for court %s: %w", courtID, err)
	}
	return checkAffectedRows(result, ErrCourtNotFound)
}

// FindByCurrentMatch is the reverse lookup used to resolve a match's court
// assignment: the court document is authoritative for the pairing, the match
// document is not.
func (r *postgresCourtRepository) FindByCurrentMatch(ctx context.Context, exec SQLExecutor, matchID string) (*models.Court, error) {
	executor := r.getExecutor(exec)
	c := &models.Court{}
	err := executor.QueryRowContext(ctx, `
		SELECT id, tournament_id, number, name, current_match_id
		FROM courts
		WHERE current_match_id = $1
		LIMIT 1`, matchID,
	).Scan(&c.ID, &c.TournamentID, &c.Number, &c.Name, &c.CurrentMatchID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCourtNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *postgresCourtRepository) CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) (int, error) {
	executor := r.getExecutor(exec)
	var count int
	err := executor.QueryRowContext(ctx, `SELECT COUNT(*) FROM courts WHERE tournament_id = $1`, tournamentID).Scan(&count)
	return count, err
}

func (r *postgresCourtRepository) queryCourts(ctx context.Context, executor SQLExecutor, query string, args ...interface{}) ([]models.Court, error) {
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	courts := make([]models.Court, 0)
	for rows.Next() {
		var c models.Court
		if scanErr := rows.Scan(&c.ID, &c.TournamentID, &c.Number, &c.Name, &c.CurrentMatchID); scanErr != nil {
			return nil, scanErr
		}
		courts = append(courts, c)
	}
	return courts, rows.Err()
}
