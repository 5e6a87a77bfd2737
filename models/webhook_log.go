package models

import "time"

// WebhookLog is one append-only audit row per processed notification.
// WebhookID is the source-assigned numeric id; it is deliberately NOT unique
// at the schema level so the always-process idempotency policy can log
// duplicate deliveries.
type WebhookLog struct {
	ID           int64      `json:"id" db:"id"`
	WebhookID    int64      `json:"webhook_id" db:"webhook_id"`
	TournamentID string     `json:"tournament_id" db:"tournament_id"`
	EventTypes   StringList `json:"event_types" db:"event_types"`
	ProcessedAt  time.Time  `json:"processed_at" db:"processed_at"`
	Success      bool       `json:"success" db:"success"`
	ErrorMessage *string    `json:"error_message,omitempty" db:"error_message"`
}
