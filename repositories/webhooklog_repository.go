package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Rackosdra/kt-ex/models"
)

type WebhookLogRepository interface {
	Append(ctx context.Context, exec SQLExecutor, log *models.WebhookLog) error
	ExistsByWebhookID(ctx context.Context, exec SQLExecutor, webhookID int64) (bool, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID string, limit int) ([]models.WebhookLog, error)
	DeleteAll(ctx context.Context, exec SQLExecutor) (int64, error)
}

type postgresWebhookLogRepository struct {
	db *sql.DB
}

func NewPostgresWebhookLogRepository(db *sql.DB) WebhookLogRepository {
	return &postgresWebhookLogRepository{db: db}
}

func (r *postgresWebhookLogRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

// Append always inserts a new row. The ledger is append-only: even under the
// reject-duplicates policy the gate happens via ExistsByWebhookID before
// processing, never by a uniqueness constraint here.
func (r *postgresWebhookLogRepository) Append(ctx context.Context, exec SQLExecutor, l *models.WebhookLog) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO webhook_logs (webhook_id, tournament_id, event_types, success, error_message)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, processed_at`

	err := executor.QueryRowContext(ctx, query,
		l.WebhookID, l.TournamentID, l.EventTypes, l.Success, l.ErrorMessage,
	).Scan(&l.ID, &l.ProcessedAt)
	if err != nil {
		return fmt.Errorf("failed to append webhook log for webhook %d: %w", l.WebhookID, err)
	}
	return nil
}

func (r *postgresWebhookLogRepository) ExistsByWebhookID(ctx context.Context, exec SQLExecutor, webhookID int64) (bool, error) {
	executor := r.getExecutor(exec)
	var exists bool
	err := executor.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM webhook_logs WHERE webhook_id = $1 AND success)`, webhookID).Scan(&exists)
	return exists, err
}

func (r *postgresWebhookLogRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID string, limit int) ([]models.WebhookLog, error) {
	executor := r.getExecutor(exec)
	if limit <= 0 {
		limit = 50
	}
	rows, err := executor.QueryContext(ctx, `
		SELECT id, webhook_id, tournament_id, event_types, processed_at, success, error_message
		FROM webhook_logs
		WHERE tournament_id = $1
		ORDER BY processed_at DESC
		LIMIT $2`, tournamentID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]models.WebhookLog, 0)
	for rows.Next() {
		var l models.WebhookLog
		if scanErr := rows.Scan(&l.ID, &l.WebhookID, &l.TournamentID, &l.EventTypes, &l.ProcessedAt, &l.Success, &l.ErrorMessage); scanErr != nil {
			return nil, scanErr
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func (r *postgresWebhookLogRepository) DeleteAll(ctx context.Context, exec SQLExecutor) (int64, error) {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `DELETE FROM webhook_logs`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete webhook logs: %w", err)
	}
	return result.RowsAffected()
}
