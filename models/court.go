package models

// Court is a numbered physical station. CurrentMatchID is a weak back-link
// to the match currently assigned to it; a court outlives any one match, so
// match deletion only nulls the pointer.
type Court struct {
	ID             string  `json:"id" db:"id"`
	TournamentID   string  `json:"tournament_id" db:"tournament_id"`
	Number         int     `json:"number" db:"number"`
	Name           string  `json:"name" db:"name"`
	CurrentMatchID *string `json:"current_match_id,omitempty" db:"current_match_id"`

	CurrentMatch *Match `json:"current_match,omitempty" db:"-"`
}
