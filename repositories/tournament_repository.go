package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Rackosdra/kt-ex/models"
)

var ErrTournamentNotFound = errors.New("tournament not found")

type ListTournamentsFilter struct {
	State  *models.TournamentState
	Limit  int
	Offset int
}

type TournamentRepository interface {
	Upsert(ctx context.Context, exec SQLExecutor, tournament *models.Tournament) error
	GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Tournament, error)
	List(ctx context.Context, exec SQLExecutor, filter ListTournamentsFilter) ([]models.Tournament, error)
	ListIDsByState(ctx context.Context, exec SQLExecutor, state models.TournamentState) ([]string, error)
	Delete(ctx context.Context, exec SQLExecutor, id string) error
	AcquireSyncLock(ctx context.Context, exec SQLExecutor, id string) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

// Upsert merges the tournament row by its externally-assigned id. Re-running
// with identical input is a no-op apart from last_synced_at.
func (r *postgresTournamentRepository) Upsert(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO tournaments (id, name, description, state, start_time, end_time, courts_count, raw_snapshot, last_synced_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			name           = EXCLUDED.name,
			description    = EXCLUDED.description,
			state          = EXCLUDED.state,
			start_time     = EXCLUDED.start_time,
			end_time       = EXCLUDED.end_time,
			courts_count   = EXCLUDED.courts_count,
			raw_snapshot   = EXCLUDED.raw_snapshot,
			last_synced_at = EXCLUDED.last_synced_at`

	_, err := executor.ExecContext(ctx, query,
		t.ID, t.Name, t.Description, t.State, t.StartTime, t.EndTime,
		t.CourtsCount, t.RawSnapshot, t.LastSyncedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert tournament %s: %w", t.ID, err)
	}
	return nil
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Tournament, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, name, description, state, start_time, end_time, courts_count, raw_snapshot, last_synced_at
		FROM tournaments
		WHERE id = $1`

	t := &models.Tournament{}
	err := executor.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.Name, &t.Description, &t.State, &t.StartTime, &t.EndTime,
		&t.CourtsCount, &t.RawSnapshot, &t.LastSyncedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context, exec SQLExecutor, filter ListTournamentsFilter) ([]models.Tournament, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, name, description, state, start_time, end_time, courts_count, raw_snapshot, last_synced_at
		FROM tournaments
		WHERE 1=1`

	args := []interface{}{}
	argID := 1

	if filter.State != nil {
		query += fmt.Sprintf(" AND state = $%d", argID)
		args = append(args, *filter.State)
		argID++
	}

	query += " ORDER BY start_time DESC NULLS LAST, last_synced_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, filter.Offset)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		var t models.Tournament
		if scanErr := rows.Scan(
			&t.ID, &t.Name, &t.Description, &t.State, &t.StartTime, &t.EndTime,
			&t.CourtsCount, &t.RawSnapshot, &t.LastSyncedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		tournaments = append(tournaments, t)
	}
	return tournaments, rows.Err()
}

// ListIDsByState feeds the fallback resync scheduler.
func (r *postgresTournamentRepository) ListIDsByState(ctx context.Context, exec SQLExecutor, state models.TournamentState) ([]string, error) {
	executor := r.getExecutor(exec)
	rows, err := executor.QueryContext(ctx, `SELECT id FROM tournaments WHERE state = $1`, state)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if scanErr := rows.Scan(&id); scanErr != nil {
			return nil, scanErr
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Delete removes the tournament and, through the schema's cascades, its whole
// aggregate: entries, disciplines, stages, groups, standings, matches and
// courts.
func (r *postgresTournamentRepository) Delete(ctx context.Context, exec SQLExecutor, id string) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `DELETE FROM tournaments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

// AcquireSyncLock takes a transaction-scoped advisory lock keyed by the
// tournament id, serializing full syncs per tournament. The lock releases on
// commit or rollback. Must be called inside a transaction.
func (r *postgresTournamentRepository) AcquireSyncLock(ctx context.Context, exec SQLExecutor, id string) error {
	executor := r.getExecutor(exec)
	if _, err := executor.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, id); err != nil {
		return fmt.Errorf("failed to acquire sync lock for tournament %s: %w", id, err)
	}
	return nil
}
