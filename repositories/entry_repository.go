package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Rackosdra/kt-ex/models"
)

var ErrEntryNotFound = errors.New("entry not found")

type EntryRepository interface {
	Upsert(ctx context.Context, exec SQLExecutor, entry *models.Entry) error
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) ([]models.Entry, error)
	ListByDiscipline(ctx context.Context, exec SQLExecutor, tournamentID, disciplineID string) ([]models.Entry, error)
	SearchByName(ctx context.Context, exec SQLExecutor, tournamentID, query string, limit int) ([]models.Entry, error)
	CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) (int, error)
}

type postgresEntryRepository struct {
	db *sql.DB
}

func NewPostgresEntryRepository(db *sql.DB) EntryRepository {
	return &postgresEntryRepository{db: db}
}

func (r *postgresEntryRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresEntryRepository) Upsert(ctx context.Context, exec SQLExecutor, e *models.Entry) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO entries (id, tournament_id, name, entry_type, discipline_ids)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			tournament_id  = EXCLUDED.tournament_id,
			name           = EXCLUDED.name,
			entry_type     = EXCLUDED.entry_type,
			discipline_ids = EXCLUDED.discipline_ids`

	_, err := executor.ExecContext(ctx, query, e.ID, e.TournamentID, e.Name, e.EntryType, e.DisciplineIDs)
	if err != nil {
		return fmt.Errorf("failed to upsert entry %s: %w", e.ID, err)
	}
	return nil
}

func (r *postgresEntryRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) ([]models.Entry, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, tournament_id, name, entry_type, discipline_ids
		FROM entries
		WHERE tournament_id = $1
		ORDER BY name`

	return r.queryEntries(ctx, executor, query, tournamentID)
}

// ListByDiscipline returns entries whose discipline membership set contains
// the given discipline id.
func (r *postgresEntryRepository) ListByDiscipline(ctx context.Context, exec SQLExecutor, tournamentID, disciplineID string) ([]models.Entry, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, tournament_id, name, entry_type, discipline_ids
		FROM entries
		WHERE tournament_id = $1 AND discipline_ids @> to_jsonb(ARRAY[$2::text])
		ORDER BY name`

	return r.queryEntries(ctx, executor, query, tournamentID, disciplineID)
}

func (r *postgresEntryRepository) SearchByName(ctx context.Context, exec SQLExecutor, tournamentID, searchQuery string, limit int) ([]models.Entry, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, tournament_id, name, entry_type, discipline_ids
		FROM entries
		WHERE tournament_id = $1 AND name ILIKE '%' || $2 || '%'
		ORDER BY name
		LIMIT $3`

	return r.queryEntries(ctx, executor, query, tournamentID, searchQuery, limit)
}

func (r *postgresEntryRepository) CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) (int, error) {
	executor := r.getExecutor(exec)
	var count int
	err := executor.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries WHERE tournament_id = $1`, tournamentID).Scan(&count)
	return count, err
}

func (r *postgresEntryRepository) queryEntries(ctx context.Context, executor SQLExecutor, query string, args ...interface{}) ([]models.Entry, error) {
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]models.Entry, 0)
	for rows.Next() {
		var e models.Entry
		if scanErr := rows.Scan(&e.ID, &e.TournamentID, &e.Name, &e.EntryType, &e.DisciplineIDs); scanErr != nil {
			return nil, scanErr
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
