package models

// EntryType tags how a participant registered (single player, fixed team,
// draw-your-partner variants).
type EntryType string

const (
	EntryTypeSingle     EntryType = "single"
	EntryTypeTeam       EntryType = "team_name"
	EntryTypeDYP        EntryType = "dyp"
	EntryTypeBYP        EntryType = "byp"
	EntryTypeMonsterDYP EntryType = "monster_dyp"
)

// Entry is a participant or team registered in a tournament. DisciplineIDs
// holds the union of disciplines the entry was seen in during the last sync;
// an empty list means the entry only appeared in the tournament-wide list.
type Entry struct {
	ID            string     `json:"id" db:"id"`
	TournamentID  string     `json:"tournament_id" db:"tournament_id"`
	Name          string     `json:"name" db:"name"`
	EntryType     *EntryType `json:"entry_type,omitempty" db:"entry_type"`
	DisciplineIDs StringList `json:"discipline_ids,omitempty" db:"discipline_ids"`
}
