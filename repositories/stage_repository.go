package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Rackosdra/kt-ex/models"
)

var ErrStageNotFound = errors.New("stage not found")

type StageRepository interface {
	Upsert(ctx context.Context, exec SQLExecutor, stage *models.Stage) error
	ListByDiscipline(ctx context.Context, exec SQLExecutor, disciplineID string) ([]models.Stage, error)
}

type postgresStageRepository struct {
	db *sql.DB
}

func NewPostgresStageRepository(db *sql.DB) StageRepository {
	return &postgresStageRepository{db: db}
}

func (r *postgresStageRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresStageRepository) Upsert(ctx context.Context, exec SQLExecutor, s *models.Stage) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO stages (id, discipline_id, name, state)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			discipline_id = EXCLUDED.discipline_id,
			name          = EXCLUDED.name,
			state         = EXCLUDED.state`

	_, err := executor.ExecContext(ctx, query, s.ID, s.DisciplineID, s.Name, s.State)
	if err != nil {
		return fmt.Errorf("failed to upsert stage %s: %w", s.ID, err)
	}
	return nil
}

func (r *postgresStageRepository) ListByDiscipline(ctx context.Context, exec SQLExecutor, disciplineID string) ([]models.Stage, error) {
	executor := r.getExecutor(exec)
	rows, err := executor.QueryContext(ctx, `
		SELECT id, discipline_id, name, state
		FROM stages
		WHERE discipline_id = $1
		ORDER BY name NULLS LAST`, disciplineID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stages := make([]models.Stage, 0)
	for rows.Next() {
		var s models.Stage
		if scanErr := rows.Scan(&s.ID, &s.DisciplineID, &s.Name, &s.State); scanErr != nil {
			return nil, scanErr
		}
		stages = append(stages, s)
	}
	return stages, rows.Err()
}
