package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Rackosdra/kt-ex/models"
)

var ErrGroupNotFound = errors.New("group not found")

// GroupCounts carries the per-group fixture statistics served by the group
// detail endpoint.
type GroupCounts struct {
	Standings      int
	Matches        int
	MatchesPlayed  int
	MatchesRunning int
}

type GroupRepository interface {
	Upsert(ctx context.Context, exec SQLExecutor, group *models.Group) error
	GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Group, error)
	ExistsByID(ctx context.Context, exec SQLExecutor, id string) (bool, error)
	ListByStage(ctx context.Context, exec SQLExecutor, stageID string) ([]models.Group, error)
	ListByDiscipline(ctx context.Context, exec SQLExecutor, disciplineID string) ([]models.Group, error)
	Counts(ctx context.Context, exec SQLExecutor, groupID string) (*GroupCounts, error)
}

type postgresGroupRepository struct {
	db *sql.DB
}

func NewPostgresGroupRepository(db *sql.DB) GroupRepository {
	return &postgresGroupRepository{db: db}
}

func (r *postgresGroupRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresGroupRepository) Upsert(ctx context.Context, exec SQLExecutor, g *models.Group) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO groups (id, stage_id, name, tournament_mode, state, options)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			stage_id        = EXCLUDED.stage_id,
			name            = EXCLUDED.name,
			tournament_mode = EXCLUDED.tournament_mode,
			state           = EXCLUDED.state,
			options         = EXCLUDED.options`

	_, err := executor.ExecContext(ctx, query, g.ID, g.StageID, g.Name, g.TournamentMode, g.State, g.Options)
	if err != nil {
		return fmt.Errorf("failed to upsert group %s: %w", g.ID, err)
	}
	return nil
}

func (r *postgresGroupRepository) GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Group, error) {
	executor := r.getExecutor(exec)
	g := &models.Group{}
	err := executor.QueryRowContext(ctx, `
		SELECT id, stage_id, name, tournament_mode, state, options
		FROM groups
		WHERE id = $1`, id,
	).Scan(&g.ID, &g.StageID, &g.Name, &g.TournamentMode, &g.State, &g.Options)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return g, nil
}

func (r *postgresGroupRepository) ExistsByID(ctx context.Context, exec SQLExecutor, id string) (bool, error) {
	executor := r.getExecutor(exec)
	var exists bool
	err := executor.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM groups WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func (r *postgresGroupRepository) ListByStage(ctx context.Context, exec SQLExecutor, stageID string) ([]models.Group, error) {
	executor := r.getExecutor(exec)
	return r.queryGroups(ctx, executor, `
		SELECT id, stage_id, name, tournament_mode, state, options
		FROM groups
		WHERE stage_id = $1
		ORDER BY name`, stageID)
}

func (r *postgresGroupRepository) ListByDiscipline(ctx context.Context, exec SQLExecutor, disciplineID string) ([]models.Group, error) {
	executor := r.getExecutor(exec)
	return r.queryGroups(ctx, executor, `
		SELECT g.id, g.stage_id, g.name, g.tournament_mode, g.state, g.options
		FROM groups g
		JOIN stages s ON s.id = g.stage_id
		WHERE s.discipline_id = $1
		ORDER BY g.name`, disciplineID)
}

func (r *postgresGroupRepository) Counts(ctx context.Context, exec SQLExecutor, groupID string) (*GroupCounts, error) {
	executor := r.getExecutor(exec)
	counts := &GroupCounts{}
	err := executor.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM standings WHERE group_id = $1),
			(SELECT COUNT(*) FROM matches WHERE group_id = $1),
			(SELECT COUNT(*) FROM matches WHERE group_id = $1 AND state = 'played'),
			(SELECT COUNT(*) FROM matches WHERE group_id = $1 AND state = 'running')`,
		groupID,
	).Scan(&counts.Standings, &counts.Matches, &counts.MatchesPlayed, &counts.MatchesRunning)
	if err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *postgresGroupRepository) queryGroups(ctx context.Context, executor SQLExecutor, query string, args ...interface{}) ([]models.Group, error) {
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups := make([]models.Group, 0)
	for rows.Next() {
		var g models.Group
		if scanErr := rows.Scan(&g.ID, &g.StageID, &g.Name, &g.TournamentMode, &g.State, &g.Options); scanErr != nil {
			return nil, scanErr
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}
