package db

import (
	"context"
	"database/sql"
	"fmt"
)

// Migrate creates the mirror schema if it does not exist. Every statement is
// idempotent, so running it on every startup is safe. The schema is owned by
// the sync service; end-user requests never create rows outside webhook_logs
// and match-result updates.
func Migrate(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS tournaments (
			id              TEXT PRIMARY KEY,
			name            TEXT NOT NULL,
			description     TEXT,
			state           TEXT NOT NULL,
			start_time      TIMESTAMPTZ,
			end_time        TIMESTAMPTZ,
			courts_count    INTEGER NOT NULL DEFAULT 0,
			raw_snapshot    JSONB,
			last_synced_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS ix_tournaments_state ON tournaments (state)`,

		`CREATE TABLE IF NOT EXISTS entries (
			id             TEXT PRIMARY KEY,
			tournament_id  TEXT NOT NULL REFERENCES tournaments (id) ON DELETE CASCADE,
			name           TEXT NOT NULL,
			entry_type     TEXT,
			discipline_ids JSONB
		)`,
		`CREATE INDEX IF NOT EXISTS ix_entries_tournament ON entries (tournament_id)`,

		`CREATE TABLE IF NOT EXISTS disciplines (
			id            TEXT PRIMARY KEY,
			tournament_id TEXT NOT NULL REFERENCES tournaments (id) ON DELETE CASCADE,
			name          TEXT NOT NULL,
			short_name    TEXT,
			entry_type    TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS ix_disciplines_tournament ON disciplines (tournament_id)`,

		`CREATE TABLE IF NOT EXISTS stages (
			id            TEXT PRIMARY KEY,
			discipline_id TEXT NOT NULL REFERENCES disciplines (id) ON DELETE CASCADE,
			name          TEXT,
			state         TEXT NOT NULL DEFAULT 'planned'
		)`,
		`CREATE INDEX IF NOT EXISTS ix_stages_discipline ON stages (discipline_id)`,

		`CREATE TABLE IF NOT EXISTS groups (
			id              TEXT PRIMARY KEY,
			stage_id        TEXT NOT NULL REFERENCES stages (id) ON DELETE CASCADE,
			name            TEXT NOT NULL,
			tournament_mode TEXT,
			state           TEXT NOT NULL DEFAULT 'planned',
			options         JSONB
		)`,
		`CREATE INDEX IF NOT EXISTS ix_groups_stage_state ON groups (stage_id, state)`,

		`CREATE TABLE IF NOT EXISTS courts (
			id               TEXT PRIMARY KEY,
			tournament_id    TEXT NOT NULL REFERENCES tournaments (id) ON DELETE CASCADE,
			number           INTEGER NOT NULL,
			name             TEXT NOT NULL,
			current_match_id TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS ix_courts_tournament ON courts (tournament_id, number)`,

		`CREATE TABLE IF NOT EXISTS standings (
			id        TEXT PRIMARY KEY,
			group_id  TEXT NOT NULL REFERENCES groups (id) ON DELETE CASCADE,
			entry_id  TEXT,
			rank      INTEGER,
			team_name TEXT NOT NULL,

			points                     INTEGER,
			matches                    INTEGER,
			points_per_match           DOUBLE PRECISION,
			corrected_points_per_match DOUBLE PRECISION,
			matches_won                INTEGER,
			matches_lost               INTEGER,
			matches_draw               INTEGER,
			matches_diff               INTEGER,
			sets_won                   INTEGER,
			sets_lost                  INTEGER,
			sets_diff                  INTEGER,
			goals                      INTEGER,
			goals_in                   INTEGER,
			goals_diff                 INTEGER,
			bh1                        DOUBLE PRECISION,
			bh2                        DOUBLE PRECISION,
			sb                         DOUBLE PRECISION,
			lives                      INTEGER,
			result                     INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS ix_standings_group_rank ON standings (group_id, rank)`,

		`CREATE TABLE IF NOT EXISTS matches (
			id              TEXT PRIMARY KEY,
			group_id        TEXT NOT NULL REFERENCES groups (id) ON DELETE CASCADE,
			team1_name      TEXT NOT NULL DEFAULT 'TBD',
			team2_name      TEXT NOT NULL DEFAULT 'TBD',
			team1_entry_id  TEXT,
			team2_entry_id  TEXT,
			state           TEXT NOT NULL,
			score1          INTEGER,
			score2          INTEGER,
			encounters      JSONB,
			display_score   JSONB,
			discipline_id   TEXT,
			discipline_name TEXT,
			round_id        TEXT,
			round_name      TEXT,
			group_name      TEXT,
			start_time      TIMESTAMPTZ,
			end_time        TIMESTAMPTZ,
			court_id        TEXT REFERENCES courts (id) ON DELETE SET NULL,
			is_live_result  BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE INDEX IF NOT EXISTS ix_matches_group_state ON matches (group_id, state)`,
		`CREATE INDEX IF NOT EXISTS ix_matches_court ON matches (court_id)`,

		// courts and matches reference each other, so this constraint can
		// only exist once both tables do. Drop-then-add keeps it idempotent.
		`ALTER TABLE courts DROP CONSTRAINT IF EXISTS fk_courts_current_match`,
		`ALTER TABLE courts ADD CONSTRAINT fk_courts_current_match
			FOREIGN KEY (current_match_id) REFERENCES matches (id) ON DELETE SET NULL`,

		// webhook_id is intentionally NOT unique: the always-process
		// idempotency policy logs duplicate deliveries as separate rows.
		`CREATE TABLE IF NOT EXISTS webhook_logs (
			id            BIGSERIAL PRIMARY KEY,
			webhook_id    BIGINT NOT NULL,
			tournament_id TEXT NOT NULL,
			event_types   JSONB,
			processed_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			success       BOOLEAN NOT NULL DEFAULT TRUE,
			error_message TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS ix_webhook_logs_webhook ON webhook_logs (webhook_id)`,
		`CREATE INDEX IF NOT EXISTS ix_webhook_logs_tournament ON webhook_logs (tournament_id)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration statement failed: %w", err)
		}
	}
	return nil
}
