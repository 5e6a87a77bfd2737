package models

// Standing is one participant's ranking row within a group. The statistical
// fields vary by tournament mode; a field the remote tables do not configure
// is absent from the source document and must stay NULL in the store.
// Zero is a valid score, so absence is never coerced to zero.
type Standing struct {
	ID       string  `json:"id" db:"id"`
	GroupID  string  `json:"group_id" db:"group_id"`
	EntryID  *string `json:"entry_id,omitempty" db:"entry_id"`
	Rank     *int    `json:"rank,omitempty" db:"rank"`
	TeamName string  `json:"team_name" db:"team_name"`

	Points                  *int     `json:"points,omitempty" db:"points"`
	Matches                 *int     `json:"matches,omitempty" db:"matches"`
	PointsPerMatch          *float64 `json:"points_per_match,omitempty" db:"points_per_match"`
	CorrectedPointsPerMatch *float64 `json:"corrected_points_per_match,omitempty" db:"corrected_points_per_match"`
	MatchesWon              *int     `json:"matches_won,omitempty" db:"matches_won"`
	MatchesLost             *int     `json:"matches_lost,omitempty" db:"matches_lost"`
	MatchesDraw             *int     `json:"matches_draw,omitempty" db:"matches_draw"`
	MatchesDiff             *int     `json:"matches_diff,omitempty" db:"matches_diff"`
	SetsWon                 *int     `json:"sets_won,omitempty" db:"sets_won"`
	SetsLost                *int     `json:"sets_lost,omitempty" db:"sets_lost"`
	SetsDiff                *int     `json:"sets_diff,omitempty" db:"sets_diff"`
	Goals                   *int     `json:"goals,omitempty" db:"goals"`
	GoalsIn                 *int     `json:"goals_in,omitempty" db:"goals_in"`
	GoalsDiff               *int     `json:"goals_diff,omitempty" db:"goals_diff"`

	// Tiebreakers: Buchholz and Sonneborn-Berger.
	BH1 *float64 `json:"bh1,omitempty" db:"bh1"`
	BH2 *float64 `json:"bh2,omitempty" db:"bh2"`
	SB  *float64 `json:"sb,omitempty" db:"sb"`

	// Attrition modes (last one standing, monster DYP).
	Lives  *int `json:"lives,omitempty" db:"lives"`
	Result *int `json:"result,omitempty" db:"result"`
}
