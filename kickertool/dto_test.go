package kickertool

import (
	"encoding/json"
	"testing"
)

func TestMatchSideDisplayName(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"single entry", `{"id":"e1","name":"Alice"}`, "Alice"},
		{"entry without name", `{"id":"e1","name":""}`, "TBD"},
		{"two players", `[{"id":"p1","name":"Alice"},{"id":"p2","name":"Bob"}]`, "Alice / Bob"},
		{"player list with null", `[{"id":"p1","name":"Alice"},null]`, "Alice"},
		{"all null players", `[null,null]`, "TBD"},
		{"null side", `null`, "TBD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var side MatchSide
			if err := json.Unmarshal([]byte(tt.raw), &side); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got := side.DisplayName(); got != tt.want {
				t.Fatalf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMatchSideEntryID(t *testing.T) {
	var single MatchSide
	if err := json.Unmarshal([]byte(`{"id":"e1","name":"Alice"}`), &single); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if id := single.EntryID(); id == nil || *id != "e1" {
		t.Fatalf("expected entry id e1, got %v", id)
	}

	var team MatchSide
	if err := json.Unmarshal([]byte(`[{"id":"p1","name":"Alice"},{"id":"p2","name":"Bob"}]`), &team); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if id := team.EntryID(); id != nil {
		t.Fatalf("multi-player side must carry no single entry id, got %q", *id)
	}
}

func TestStandingDTOAbsentFieldsStayNil(t *testing.T) {
	raw := `{"entry":{"id":"e1","name":"Alice"},"rank":1,"points":0}`
	var dto StandingDTO
	if err := json.Unmarshal([]byte(raw), &dto); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if dto.Points == nil || *dto.Points != 0 {
		t.Fatalf("explicit zero must decode as zero, got %v", dto.Points)
	}
	if dto.Goals != nil {
		t.Fatalf("absent field must stay nil, got %v", *dto.Goals)
	}
	if dto.BH1 != nil {
		t.Fatalf("absent tiebreaker must stay nil, got %v", *dto.BH1)
	}
}
