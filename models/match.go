package models

import "time"

// MatchState mirrors the remote match lifecycle.
type MatchState string

const (
	MatchStatePlanned    MatchState = "planned"
	MatchStateIncomplete MatchState = "incomplete"
	MatchStateOpen       MatchState = "open"
	MatchStatePaused     MatchState = "paused"
	MatchStateRunning    MatchState = "running"
	MatchStatePlayed     MatchState = "played"
	MatchStateSkipped    MatchState = "skipped"
	MatchStateBye        MatchState = "bye"
)

// Match is one fixture within a group. Team names are derived at sync time
// (a side made of several players is joined with " / "). CourtID is resolved
// by reverse lookup from the courts table, never trusted from the match
// document itself.
type Match struct {
	ID           string  `json:"id" db:"id"`
	GroupID      string  `json:"group_id" db:"group_id"`
	Team1Name    string  `json:"team1_name" db:"team1_name"`
	Team2Name    string  `json:"team2_name" db:"team2_name"`
	Team1EntryID *string `json:"team1_entry_id,omitempty" db:"team1_entry_id"`
	Team2EntryID *string `json:"team2_entry_id,omitempty" db:"team2_entry_id"`

	State MatchState `json:"state" db:"state"`

	Score1       *int       `json:"score1,omitempty" db:"score1"`
	Score2       *int       `json:"score2,omitempty" db:"score2"`
	Encounters   JSONBArray `json:"encounters,omitempty" db:"encounters"`
	DisplayScore JSONBArray `json:"display_score,omitempty" db:"display_score"`

	// Denormalized read-convenience fields from the surrounding containers.
	DisciplineID   *string `json:"discipline_id,omitempty" db:"discipline_id"`
	DisciplineName *string `json:"discipline_name,omitempty" db:"discipline_name"`
	RoundID        *string `json:"round_id,omitempty" db:"round_id"`
	RoundName      *string `json:"round_name,omitempty" db:"round_name"`
	GroupName      *string `json:"group_name,omitempty" db:"group_name"`

	StartTime *time.Time `json:"start_time,omitempty" db:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty" db:"end_time"`

	CourtID      *string `json:"court_id,omitempty" db:"court_id"`
	IsLiveResult bool    `json:"is_live_result" db:"is_live_result"`
}
