package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Rackosdra/kt-ex/models"
)

var ErrMatchNotFound = errors.New("match not found")

type MatchRepository interface {
	Upsert(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Match, error)
	ListByGroup(ctx context.Context, exec SQLExecutor, groupID string, state *models.MatchState) ([]models.Match, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID string, state *models.MatchState) ([]models.Match, error)
	UpdateResult(ctx context.Context, exec SQLExecutor, match *models.Match) error
	CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) (int, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const matchColumns = `id, group_id, team1_name, team2_name, team1_entry_id, team2_entry_id,
	state, score1, score2, encounters, display_score,
	discipline_id, discipline_name, round_id, round_name, group_name,
	start_time, end_time, court_id, is_live_result`

func (r *postgresMatchRepository) Upsert(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO matches (` + matchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		ON CONFLICT (id) DO UPDATE SET
			group_id = EXCLUDED.group_id,
			team1_name = EXCLUDED.team1_name,
			team2_name = EXCLUDED.team2_name,
			team1_entry_id = EXCLUDED.team1_entry_id,
			team2_entry_id = EXCLUDED.team2_entry_id,
			state = EXCLUDED.state,
			score1 = EXCLUDED.score1,
			score2 = EXCLUDED.score2,
			encounters = EXCLUDED.encounters,
			display_score = EXCLUDED.display_score,
			discipline_id = EXCLUDED.discipline_id,
			discipline_name = EXCLUDED.discipline_name,
			round_id = EXCLUDED.round_id,
			round_name = EXCLUDED.round_name,
			group_name = EXCLUDED.group_name,
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			court_id = EXCLUDED.court_id,
			is_live_result = EXCLUDED.is_live_result`

	_, err := executor.ExecContext(ctx, query,
		m.ID, m.GroupID, m.Team1Name, m.Team2Name, m.Team1EntryID, m.Team2EntryID,
		m.State, m.Score1, m.Score2, m.Encounters, m.DisplayScore,
		m.DisciplineID, m.DisciplineName, m.RoundID, m.RoundName, m.GroupName,
		m.StartTime, m.EndTime, m.CourtID, m.IsLiveResult,
	)
	if err != nil {
		// Callers distinguish FK violations (expected race with full sync)
		// from real failures, so the raw pq error must survive wrapping.
		return fmt.Errorf("failed to upsert match %s: %w", m.ID, err)
	}
	return nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Match, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`

	m := &models.Match{}
	err := executor.QueryRowContext(ctx, query, id).Scan(
		&m.ID, &m.GroupID, &m.Team1Name, &m.Team2Name, &m.Team1EntryID, &m.Team2EntryID,
		&m.State, &m.Score1, &m.Score2, &m.Encounters, &m.DisplayScore,
		&m.DisciplineID, &m.DisciplineName, &m.RoundID, &m.RoundName, &m.GroupName,
		&m.StartTime, &m.EndTime, &m.CourtID, &m.IsLiveResult,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *postgresMatchRepository) ListByGroup(ctx context.Context, exec SQLExecutor, groupID string, state *models.MatchState) ([]models.Match, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + matchColumns + ` FROM matches WHERE group_id = $1`
	args := []interface{}{groupID}
	if state != nil {
		query += ` AND state = $2`
		args = append(args, *state)
	}
	query += ` ORDER BY start_time NULLS LAST, id`

	return r.queryMatches(ctx, executor, query, args...)
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID string, state *models.MatchState) ([]models.Match, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT m.id, m.group_id, m.team1_name, m.team2_name, m.team1_entry_id, m.team2_entry_id,
			m.state, m.score1, m.score2, m.encounters, m.display_score,
			m.discipline_id, m.discipline_name, m.round_id, m.round_name, m.group_name,
			m.start_time, m.end_time, m.court_id, m.is_live_result
		FROM matches m
		JOIN groups g ON g.id = m.group_id
		JOIN stages s ON s.id = g.stage_id
		JOIN disciplines d ON d.id = s.discipline_id
		WHERE d.tournament_id = $1`
	args := []interface{}{tournamentID}
	if state != nil {
		query += ` AND m.state = $2`
		args = append(args, *state)
	}
	query += ` ORDER BY m.start_time NULLS LAST, m.id`

	return r.queryMatches(ctx, executor, query, args...)
}

// UpdateResult refreshes only the result-bearing fields after a remote
// mutation. Structural fields (group, teams, denormalized names) are owned by
// the sync paths.
func (r *postgresMatchRepository) UpdateResult(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE matches SET
			state = $1,
			score1 = $2,
			score2 = $3,
			encounters = $4,
			display_score = $5,
			is_live_result = $6,
			end_time = $7
		WHERE id = $8`

	result, err := executor.ExecContext(ctx, query,
		m.State, m.Score1, m.Score2, m.Encounters, m.DisplayScore, m.IsLiveResult, m.EndTime, m.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update result for match %s: %w", m.ID, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) (int, error) {
	executor := r.getExecutor(exec)
	var count int
	err := executor.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM matches m
		JOIN groups g ON g.id = m.group_id
		JOIN stages s ON s.id = g.stage_id
		JOIN disciplines d ON d.id = s.discipline_id
		WHERE d.tournament_id = $1`, tournamentID,
	).Scan(&count)
	return count, err
}

func (r *postgresMatchRepository) queryMatches(ctx context.Context, executor SQLExecutor, query string, args ...interface{}) ([]models.Match, error) {
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]models.Match, 0)
	for rows.Next() {
		var m models.Match
		if scanErr := rows.Scan(
			&m.ID, &m.GroupID, &m.Team1Name, &m.Team2Name, &m.Team1EntryID, &m.Team2EntryID,
			&m.State, &m.Score1, &m.Score2, &m.Encounters, &m.DisplayScore,
			&m.DisciplineID, &m.DisciplineName, &m.RoundID, &m.RoundName, &m.GroupName,
			&m.StartTime, &m.EndTime, &m.CourtID, &m.IsLiveResult,
		); scanErr != nil {
			return nil, scanErr
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}
