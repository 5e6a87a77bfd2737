package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Rackosdra/kt-ex/models"
)

var ErrStandingNotFound = errors.New("standing not found")

type StandingRepository interface {
	Upsert(ctx context.Context, exec SQLExecutor, standing *models.Standing) error
	ListByGroup(ctx context.Context, exec SQLExecutor, groupID string) ([]models.Standing, error)
	SearchByTeamName(ctx context.Context, exec SQLExecutor, tournamentID, query string, limit int) ([]models.Standing, error)
	CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) (int, error)
}

type postgresStandingRepository struct {
	db *sql.DB
}

func NewPostgresStandingRepository(db *sql.DB) StandingRepository {
	return &postgresStandingRepository{db: db}
}

func (r *postgresStandingRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const standingColumns = `id, group_id, entry_id, rank, team_name,
	points, matches, points_per_match, corrected_points_per_match,
	matches_won, matches_lost, matches_draw, matches_diff,
	sets_won, sets_lost, sets_diff, goals, goals_in, goals_diff,
	bh1, bh2, sb, lives, result`

// Upsert merges by the composite standing id. Absent source fields arrive as
// nil pointers and are stored as NULL: zero is a valid score and must stay
// distinguishable from "not reported".
func (r *postgresStandingRepository) Upsert(ctx context.Context, exec SQLExecutor, s *models.Standing) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO standings (` + standingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
		ON CONFLICT (id) DO UPDATE SET
			group_id = EXCLUDED.group_id,
			entry_id = EXCLUDED.entry_id,
			rank = EXCLUDED.rank,
			team_name = EXCLUDED.team_name,
			points = EXCLUDED.points,
			matches = EXCLUDED.matches,
			points_per_match = EXCLUDED.points_per_match,
			corrected_points_per_match = EXCLUDED.corrected_points_per_match,
			matches_won = EXCLUDED.matches_won,
			matches_lost = EXCLUDED.matches_lost,
			matches_draw = EXCLUDED.matches_draw,
			matches_diff = EXCLUDED.matches_diff,
			sets_won = EXCLUDED.sets_won,
			sets_lost = EXCLUDED.sets_lost,
			sets_diff = EXCLUDED.sets_diff,
			goals = EXCLUDED.goals,
			goals_in = EXCLUDED.goals_in,
			goals_diff = EXCLUDED.goals_diff,
			bh1 = EXCLUDED.bh1,
			bh2 = EXCLUDED.bh2,
			sb = EXCLUDED.sb,
			lives = EXCLUDED.lives,
			result = EXCLUDED.result`

	_, err := executor.ExecContext(ctx, query,
		s.ID, s.GroupID, s.EntryID, s.Rank, s.TeamName,
		s.Points, s.Matches, s.PointsPerMatch, s.CorrectedPointsPerMatch,
		s.MatchesWon, s.MatchesLost, s.MatchesDraw, s.MatchesDiff,
		s.SetsWon, s.SetsLost, s.SetsDiff, s.Goals, s.GoalsIn, s.GoalsDiff,
		s.BH1, s.BH2, s.SB, s.Lives, s.Result,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert standing %s: %w", s.ID, err)
	}
	return nil
}

func (r *postgresStandingRepository) ListByGroup(ctx context.Context, exec SQLExecutor, groupID string) ([]models.Standing, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT ` + standingColumns + `
		FROM standings
		WHERE group_id = $1
		ORDER BY rank NULLS LAST, team_name`

	return r.queryStandings(ctx, executor, query, groupID)
}

func (r *postgresStandingRepository) SearchByTeamName(ctx context.Context, exec SQLExecutor, tournamentID, searchQuery string, limit int) ([]models.Standing, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT st.id, st.group_id, st.entry_id, st.rank, st.team_name,
			st.points, st.matches, st.points_per_match, st.corrected_points_per_match,
			st.matches_won, st.matches_lost, st.matches_draw, st.matches_diff,
			st.sets_won, st.sets_lost, st.sets_diff, st.goals, st.goals_in, st.goals_diff,
			st.bh1, st.bh2, st.sb, st.lives, st.result
		FROM standings st
		JOIN groups g ON g.id = st.group_id
		JOIN stages s ON s.id = g.stage_id
		JOIN disciplines d ON d.id = s.discipline_id
		WHERE d.tournament_id = $1 AND st.team_name ILIKE '%' || $2 || '%'
		ORDER BY st.team_name
		LIMIT $3`

	return r.queryStandings(ctx, executor, query, tournamentID, searchQuery, limit)
}

func (r *postgresStandingRepository) CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) (int, error) {
	executor := r.getExecutor(exec)
	var count int
	err := executor.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM standings st
		JOIN groups g ON g.id = st.group_id
		JOIN stages s ON s.id = g.stage_id
		JOIN disciplines d ON d.id = s.discipline_id
		WHERE d.tournament_id = $1`, tournamentID,
	).Scan(&count)
	return count, err
}

func (r *postgresStandingRepository) queryStandings(ctx context.Context, executor SQLExecutor, query string, args ...interface{}) ([]models.Standing, error) {
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	standings := make([]models.Standing, 0)
	for rows.Next() {
		var s models.Standing
		if scanErr := rows.Scan(
			&s.ID, &s.GroupID, &s.EntryID, &s.Rank, &s.TeamName,
			&s.Points, &s.Matches, &s.PointsPerMatch, &s.CorrectedPointsPerMatch,
			&s.MatchesWon, &s.MatchesLost, &s.MatchesDraw, &s.MatchesDiff,
			&s.SetsWon, &s.SetsLost, &s.SetsDiff, &s.Goals, &s.GoalsIn, &s.GoalsDiff,
			&s.BH1, &s.BH2, &s.SB, &s.Lives, &s.Result,
		); scanErr != nil {
			return nil, scanErr
		}
		standings = append(standings, s)
	}
	return standings, rows.Err()
}
