package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Rackosdra/kt-ex/models"
)

var ErrDisciplineNotFound = errors.New("discipline not found")

type DisciplineRepository interface {
	Upsert(ctx context.Context, exec SQLExecutor, discipline *models.Discipline) error
	GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Discipline, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) ([]models.Discipline, error)
}

type postgresDisciplineRepository struct {
	db *sql.DB
}

func NewPostgresDisciplineRepository(db *sql.DB) DisciplineRepository {
	return &postgresDisciplineRepository{db: db}
}

func (r *postgresDisciplineRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresDisciplineRepository) Upsert(ctx context.Context, exec SQLExecutor, d *models.Discipline) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO disciplines (id, tournament_id, name, short_name, entry_type)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			tournament_id = EXCLUDED.tournament_id,
			name          = EXCLUDED.name,
			short_name    = EXCLUDED.short_name,
			entry_type    = EXCLUDED.entry_type`

	_, err := executor.ExecContext(ctx, query, d.ID, d.TournamentID, d.Name, d.ShortName, d.EntryType)
	if err != nil {
		return fmt.Errorf("failed to upsert discipline %s: %w", d.ID, err)
	}
	return nil
}

func (r *postgresDisciplineRepository) GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Discipline, error) {
	executor := r.getExecutor(exec)
	d := &models.Discipline{}
	err := executor.QueryRowContext(ctx, `
		SELECT id, tournament_id, name, short_name, entry_type
		FROM disciplines
		WHERE id = $1`, id,
	).Scan(&d.ID, &d.TournamentID, &d.Name, &d.ShortName, &d.EntryType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDisciplineNotFound
		}
		return nil, err
	}
	return d, nil
}

func (r *postgresDisciplineRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) ([]models.Discipline, error) {
	executor := r.getExecutor(exec)
	rows, err := executor.QueryContext(ctx, `
		SELECT id, tournament_id, name, short_name, entry_type
		FROM disciplines
		WHERE tournament_id = $1
		ORDER BY name`, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	disciplines := make([]models.Discipline, 0)
	for rows.Next() {
		var d models.Discipline
		if scanErr := rows.Scan(&d.ID, &d.TournamentID, &d.Name, &d.ShortName, &d.EntryType); scanErr != nil {
			return nil, scanErr
		}
		disciplines = append(disciplines, d)
	}
	return disciplines, rows.Err()
}
