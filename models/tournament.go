package models

import "time"

// TournamentState mirrors the lifecycle states reported by the remote
// platform. The column stores the remote value verbatim, so an unknown state
// survives a platform-side vocabulary extension.
type TournamentState string

const (
	TournamentStatePlanned         TournamentState = "planned"
	TournamentStatePreRegistration TournamentState = "pre-registration"
	TournamentStateCheckIn         TournamentState = "check-in"
	TournamentStateReady           TournamentState = "ready"
	TournamentStateRunning         TournamentState = "running"
	TournamentStateFinished        TournamentState = "finished"
	TournamentStateCancelled       TournamentState = "cancelled"
)

// Tournament is the root aggregate. All identifiers are assigned by the
// remote platform; rows are only ever written by the sync service.
type Tournament struct {
	ID           string          `json:"id" db:"id"`
	Name         string          `json:"name" db:"name"`
	Description  *string         `json:"description,omitempty" db:"description"`
	State        TournamentState `json:"state" db:"state"`
	StartTime    *time.Time      `json:"start_time,omitempty" db:"start_time"`
	EndTime      *time.Time      `json:"end_time,omitempty" db:"end_time"`
	CourtsCount  int             `json:"courts_count" db:"courts_count"`
	RawSnapshot  JSONB           `json:"-" db:"raw_snapshot"`
	LastSyncedAt time.Time       `json:"last_synced" db:"last_synced_at"`

	// Populated on demand by the query layer, not scanned from the row.
	Disciplines []Discipline `json:"disciplines,omitempty" db:"-"`
}
