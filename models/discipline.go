package models

// Discipline is a named competition category within a tournament
// (e.g. "Open Doubles").
type Discipline struct {
	ID           string     `json:"id" db:"id"`
	TournamentID string     `json:"tournament_id" db:"tournament_id"`
	Name         string     `json:"name" db:"name"`
	ShortName    *string    `json:"short_name,omitempty" db:"short_name"`
	EntryType    *EntryType `json:"entry_type,omitempty" db:"entry_type"`

	Stages []Stage `json:"stages,omitempty" db:"-"`
}
