package kickertool

import (
	"bytes"
	"encoding/json"
	"strings"
)

// DTOs mirror the remote tournament document verbatim (camelCase keys).
// Optional numeric fields are pointers throughout: the platform omits fields
// a tournament mode does not configure, and zero is a valid value, so the
// absent/zero distinction must survive decoding.

type TournamentSnapshot struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	State       string          `json:"state"`
	StartTime   *string         `json:"startTime"`
	EndTime     *string         `json:"endTime"`
	Disciplines []DisciplineDTO `json:"disciplines"`

	// Present only sporadically; courts are always fetched through the
	// dedicated endpoint instead (see Client.FetchCourts).
	Courts []CourtDTO `json:"courts"`

	// Raw keeps the undecoded document for the tournaments.raw_snapshot
	// audit column.
	Raw map[string]interface{} `json:"-"`
}

type DisciplineDTO struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	ShortName *string    `json:"shortName"`
	EntryType *string    `json:"entryType"`
	Stages    []StageDTO `json:"stages"`
}

type StageDTO struct {
	ID     string     `json:"id"`
	Name   *string    `json:"name"`
	State  string     `json:"state"`
	Groups []GroupDTO `json:"groups"`
}

type GroupDTO struct {
	ID             string                 `json:"id"`
	Name           string                 `json:"name"`
	TournamentMode *string                `json:"tournamentMode"`
	State          string                 `json:"state"`
	Options        map[string]interface{} `json:"options"`
	Matches        []MatchDTO             `json:"matches"`
}

type EntryDTO struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Type *string `json:"type"`
}

type StandingDTO struct {
	Entry *EntryDTO `json:"entry"`
	Rank  *int      `json:"rank"`

	Points                  *int     `json:"points"`
	Matches                 *int     `json:"matches"`
	PointsPerMatch          *float64 `json:"pointsPerMatch"`
	CorrectedPointsPerMatch *float64 `json:"correctedPointsPerMatch"`
	MatchesWon              *int     `json:"matchesWon"`
	MatchesLost             *int     `json:"matchesLost"`
	MatchesDraw             *int     `json:"matchesDraw"`
	MatchesDiff             *int     `json:"matchesDiff"`
	SetsWon                 *int     `json:"setsWon"`
	SetsLost                *int     `json:"setsLost"`
	SetsDiff                *int     `json:"setsDiff"`
	Goals                   *int     `json:"goals"`
	GoalsIn                 *int     `json:"goalsIn"`
	GoalsDiff               *int     `json:"goalsDiff"`
	BH1                     *float64 `json:"bh1"`
	BH2                     *float64 `json:"bh2"`
	SB                      *float64 `json:"sb"`
	Lives                   *int     `json:"lives"`
	Result                  *int     `json:"result"`
}

type MatchDTO struct {
	ID             string        `json:"id"`
	GroupID        *string       `json:"groupId"`
	Entries        []MatchSide   `json:"entries"`
	State          string        `json:"state"`
	DisplayScore   []*int        `json:"displayScore"`
	Encounters     []interface{} `json:"encounters"`
	DisciplineID   *string       `json:"disciplineId"`
	DisciplineName *string       `json:"disciplineName"`
	RoundID        *string       `json:"roundId"`
	RoundName      *string       `json:"roundName"`
	GroupName      *string       `json:"groupName"`
	StartTime      *string       `json:"startTime"`
	EndTime        *string       `json:"endTime"`
	IsLiveResult   bool          `json:"isLiveResult"`
}

type CourtDTO struct {
	ID             string    `json:"id"`
	Number         int       `json:"number"`
	Name           string    `json:"name"`
	CurrentMatchID *string   `json:"currentMatchId"`
	CurrentMatch   *MatchDTO `json:"currentMatch"`
}

// MatchSide is one side of a match. The platform encodes it either as a
// single entry object or, in multi-player team formats, as a list of player
// objects.
type MatchSide struct {
	Entry   *EntryDTO
	Players []*EntryDTO
}

func (s *MatchSide) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*s = MatchSide{}
		return nil
	}
	if trimmed[0] == '[' {
		return json.Unmarshal(trimmed, &s.Players)
	}
	s.Entry = &EntryDTO{}
	return json.Unmarshal(trimmed, s.Entry)
}

func (s MatchSide) MarshalJSON() ([]byte, error) {
	if s.Players != nil {
		return json.Marshal(s.Players)
	}
	if s.Entry != nil {
		return json.Marshal(s.Entry)
	}
	return []byte("null"), nil
}

// DisplayName derives the side's display name: the entry name for a single
// participant, or the " / "-joined names of all non-null members for a
// multi-player side. An unassigned side reads "TBD".
func (s MatchSide) DisplayName() string {
	if s.Entry != nil {
		if s.Entry.Name != "" {
			return s.Entry.Name
		}
		return "TBD"
	}
	if len(s.Players) > 0 {
		names := make([]string, 0, len(s.Players))
		for _, p := range s.Players {
			if p != nil {
				names = append(names, p.Name)
			}
		}
		if len(names) > 0 {
			return strings.Join(names, " / ")
		}
	}
	return "TBD"
}

// EntryID returns the entry id backing this side, when the side is a single
// registered entry. Multi-player sides carry no single entry id.
func (s MatchSide) EntryID() *string {
	if s.Entry != nil && s.Entry.ID != "" {
		id := s.Entry.ID
		return &id
	}
	return nil
}

// MatchResult is the encounters → sets → two-score-pairs structure the
// result submission endpoints expect.
type MatchResult [][][]int
