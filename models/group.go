package models

// TournamentMode is the pairing/elimination algorithm governing a group.
type TournamentMode string

const (
	ModeSwiss             TournamentMode = "swiss"
	ModeRoundRobin        TournamentMode = "round_robin"
	ModeElimination       TournamentMode = "elimination"
	ModeDoubleElimination TournamentMode = "double_elimination"
	ModeMonsterDYP        TournamentMode = "monster_dyp"
	ModeLastOneStanding   TournamentMode = "last_one_standing"
	ModeLordHaveMercy     TournamentMode = "lord_have_mercy"
	ModeRounds            TournamentMode = "rounds"
	ModeSnakeDraw         TournamentMode = "snake_draw"
	ModeDutchSystem       TournamentMode = "dutch_system"
	ModeWhist             TournamentMode = "whist"
)

// Group is a concrete bracket or pool running one tournament mode. Options
// carries the remote match-format configuration document as-is
// (matchConfigurations, eliminationThirdPlace, ...).
type Group struct {
	ID             string          `json:"id" db:"id"`
	StageID        string          `json:"stage_id" db:"stage_id"`
	Name           string          `json:"name" db:"name"`
	TournamentMode *TournamentMode `json:"tournament_mode,omitempty" db:"tournament_mode"`
	State          StageState      `json:"state" db:"state"`
	Options        JSONB           `json:"options,omitempty" db:"options"`

	StandingsCount *int `json:"standings_count,omitempty" db:"-"`
	MatchesCount   *int `json:"matches_count,omitempty" db:"-"`
	MatchesPlayed  *int `json:"matches_played,omitempty" db:"-"`
	MatchesRunning *int `json:"matches_running,omitempty" db:"-"`
}
