package services

import (
	"context"
	"testing"

	"github.com/Rackosdra/kt-ex/kickertool"
	"github.com/Rackosdra/kt-ex/models"
)

func strPtr(s string) *string { return &s }
func intPtr(v int) *int       { return &v }

// fullSyncFixture is one tournament with a single discipline, stage and
// group, two matches, two courts and mixed standings.
func fullSyncFixture() *fakeRemote {
	return &fakeRemote{
		snapshot: &kickertool.TournamentSnapshot{
			ID:    "t1",
			Name:  "Spring Open",
			State: "running",
			Disciplines: []kickertool.DisciplineDTO{
				{
					ID:   "d1",
					Name: "Open Doubles",
					Stages: []kickertool.StageDTO{
						{
							ID:    "s1",
							Name:  strPtr("Qualification"),
							State: "running",
							Groups: []kickertool.GroupDTO{
								{
									ID:             "g1",
									Name:           "Group A",
									TournamentMode: strPtr("swiss"),
									State:          "running",
									Matches: []kickertool.MatchDTO{
										{
											ID:    "m1",
											State: "running",
											Entries: []kickertool.MatchSide{
												{Entry: &kickertool.EntryDTO{ID: "e1", Name: "Alice"}},
												{Players: []*kickertool.EntryDTO{
													{ID: "p1", Name: "Carol"},
													{ID: "p2", Name: "Dave"},
												}},
											},
											DisplayScore: []*int{intPtr(3), intPtr(2)},
										},
										{
											ID:    "m2",
											State: "planned",
											Entries: []kickertool.MatchSide{
												{Entry: &kickertool.EntryDTO{ID: "e2", Name: "Bob"}},
											},
										},
									},
								},
							},
						},
					},
				},
			},
		},
		courts: []kickertool.CourtDTO{
			{ID: "c1", Number: 1, Name: "Court 1", CurrentMatchID: strPtr("m1")},
			{ID: "c2", Number: 2, Name: "Court 2"},
		},
		entries: map[string][]kickertool.EntryDTO{
			"":   {{ID: "e1", Name: "Alice"}, {ID: "e2", Name: "Bob"}},
			"d1": {{ID: "e1", Name: "Alice"}},
		},
		standings: map[string][]kickertool.StandingDTO{
			"g1": {
				{Entry: &kickertool.EntryDTO{ID: "e1", Name: "Alice"}, Rank: intPtr(1), Points: intPtr(0)},
				{Entry: &kickertool.EntryDTO{Name: "Team Rocket"}, Rank: intPtr(2)},
			},
		},
	}
}

func TestFullSyncMirrorsWholeTree(t *testing.T) {
	store := newFakeStore()
	remote := fullSyncFixture()
	svc := newTestSyncService(store, remote)

	if err := svc.FullSync(context.Background(), "t1"); err != nil {
		t.Fatalf("FullSync: %v", err)
	}

	tournament, ok := store.tournaments["t1"]
	if !ok {
		t.Fatal("tournament row missing")
	}
	if tournament.State != models.TournamentStateRunning {
		t.Errorf("tournament state = %q, want running", tournament.State)
	}
	if tournament.CourtsCount != 2 {
		t.Errorf("courts_count = %d, want 2 (from dedicated courts fetch)", tournament.CourtsCount)
	}

	if _, ok := store.disciplines["d1"]; !ok {
		t.Error("discipline row missing")
	}
	if _, ok := store.stages["s1"]; !ok {
		t.Error("stage row missing")
	}
	if _, ok := store.groups["g1"]; !ok {
		t.Error("group row missing")
	}
}

func TestFullSyncEntryDisciplineUnion(t *testing.T) {
	store := newFakeStore()
	svc := newTestSyncService(store, fullSyncFixture())

	if err := svc.FullSync(context.Background(), "t1"); err != nil {
		t.Fatalf("FullSync: %v", err)
	}

	alice, ok := store.entries["e1"]
	if !ok {
		t.Fatal("entry e1 missing")
	}
	if !alice.DisciplineIDs.Contains("d1") {
		t.Errorf("entry e1 discipline ids = %v, want d1 included", alice.DisciplineIDs)
	}

	bob, ok := store.entries["e2"]
	if !ok {
		t.Fatal("entry e2 missing")
	}
	if len(bob.DisciplineIDs) != 0 {
		t.Errorf("entry e2 discipline ids = %v, want empty", bob.DisciplineIDs)
	}
}

func TestFullSyncStandingIdentities(t *testing.T) {
	store := newFakeStore()
	svc := newTestSyncService(store, fullSyncFixture())

	if err := svc.FullSync(context.Background(), "t1"); err != nil {
		t.Fatalf("FullSync: %v", err)
	}

	byEntry, ok := store.standings["g1_e1"]
	if !ok {
		t.Fatal("standing keyed by entry id missing")
	}
	if byEntry.EntryID == nil || *byEntry.EntryID != "e1" {
		t.Errorf("standing entry id = %v, want e1", byEntry.EntryID)
	}
	if byEntry.Points == nil || *byEntry.Points != 0 {
		t.Errorf("explicit zero points must be stored as zero, got %v", byEntry.Points)
	}
	if byEntry.Goals != nil {
		t.Errorf("absent goals must stay nil, got %v", *byEntry.Goals)
	}

	byName, ok := store.standings["g1_Team_Rocket"]
	if !ok {
		t.Fatal("standing keyed by underscored team name missing")
	}
	if byName.EntryID != nil {
		t.Errorf("nameless-entry standing must carry no entry id, got %v", *byName.EntryID)
	}
	if byName.TeamName != "Team Rocket" {
		t.Errorf("team name = %q, want Team Rocket", byName.TeamName)
	}
}

func TestFullSyncSkipsUnidentifiableStanding(t *testing.T) {
	store := newFakeStore()
	remote := fullSyncFixture()
	remote.standings["g1"] = append(remote.standings["g1"], kickertool.StandingDTO{Rank: intPtr(3)})
	svc := newTestSyncService(store, remote)

	if err := svc.FullSync(context.Background(), "t1"); err != nil {
		t.Fatalf("FullSync: %v", err)
	}
	if len(store.standings) != 2 {
		t.Fatalf("expected 2 standings (unidentifiable row dropped), got %d", len(store.standings))
	}
}

func TestFullSyncMatchDerivation(t *testing.T) {
	store := newFakeStore()
	svc := newTestSyncService(store, fullSyncFixture())

	if err := svc.FullSync(context.Background(), "t1"); err != nil {
		t.Fatalf("FullSync: %v", err)
	}

	m1, ok := store.matches["m1"]
	if !ok {
		t.Fatal("match m1 missing")
	}
	if m1.Team1Name != "Alice" {
		t.Errorf("team1 = %q, want Alice", m1.Team1Name)
	}
	if m1.Team2Name != "Carol / Dave" {
		t.Errorf("team2 = %q, want joined player names", m1.Team2Name)
	}
	if m1.Team1EntryID == nil || *m1.Team1EntryID != "e1" {
		t.Errorf("team1 entry id = %v, want e1", m1.Team1EntryID)
	}
	if m1.Team2EntryID != nil {
		t.Errorf("multi-player side must have no entry id, got %v", *m1.Team2EntryID)
	}
	if m1.Score1 == nil || *m1.Score1 != 3 || m1.Score2 == nil || *m1.Score2 != 2 {
		t.Errorf("scores = %v/%v, want 3/2", m1.Score1, m1.Score2)
	}
	if m1.CourtID == nil || *m1.CourtID != "c1" {
		t.Errorf("court id = %v, want c1 from reverse lookup", m1.CourtID)
	}
	if m1.GroupName == nil || *m1.GroupName != "Group A" {
		t.Errorf("group name = %v, want Group A", m1.GroupName)
	}
	if m1.DisciplineID == nil || *m1.DisciplineID != "d1" {
		t.Errorf("discipline id = %v, want d1", m1.DisciplineID)
	}

	m2, ok := store.matches["m2"]
	if !ok {
		t.Fatal("match m2 missing")
	}
	if m2.Team2Name != "TBD" {
		t.Errorf("unassigned side = %q, want TBD", m2.Team2Name)
	}
	if m2.CourtID != nil {
		t.Errorf("m2 must have no court, got %v", *m2.CourtID)
	}
}

func TestFullSyncCourtAssignments(t *testing.T) {
	store := newFakeStore()
	svc := newTestSyncService(store, fullSyncFixture())

	if err := svc.FullSync(context.Background(), "t1"); err != nil {
		t.Fatalf("FullSync: %v", err)
	}

	c1, ok := store.courts["c1"]
	if !ok {
		t.Fatal("court c1 missing")
	}
	if c1.CurrentMatchID == nil || *c1.CurrentMatchID != "m1" {
		t.Errorf("c1 current match = %v, want m1", c1.CurrentMatchID)
	}

	c2, ok := store.courts["c2"]
	if !ok {
		t.Fatal("court c2 missing")
	}
	if c2.CurrentMatchID != nil {
		t.Errorf("c2 must be free, got %v", *c2.CurrentMatchID)
	}
}

func TestFullSyncIsIdempotent(t *testing.T) {
	store := newFakeStore()
	svc := newTestSyncService(store, fullSyncFixture())

	for i := 0; i < 2; i++ {
		if err := svc.FullSync(context.Background(), "t1"); err != nil {
			t.Fatalf("FullSync run %d: %v", i+1, err)
		}
	}

	if len(store.tournaments) != 1 || len(store.entries) != 2 ||
		len(store.standings) != 2 || len(store.matches) != 2 || len(store.courts) != 2 {
		t.Fatalf("second run changed row counts: %d tournaments, %d entries, %d standings, %d matches, %d courts",
			len(store.tournaments), len(store.entries), len(store.standings), len(store.matches), len(store.courts))
	}
}

func TestSyncMatchUnknownGroupSkipped(t *testing.T) {
	store := newFakeStore()
	remote := &fakeRemote{
		matches: map[string]*kickertool.MatchDTO{
			"m9": {ID: "m9", GroupID: strPtr("g-unknown"), State: "running"},
		},
	}
	svc := newTestSyncService(store, remote)

	synced, err := svc.SyncMatch(context.Background(), "t1", "m9")
	if err != nil {
		t.Fatalf("SyncMatch must not fail for unknown group: %v", err)
	}
	if synced {
		t.Fatal("skipped match must not report as synced")
	}
	if len(store.matches) != 0 {
		t.Fatalf("no match row may be written, got %d", len(store.matches))
	}
}

func TestSyncMatchResolvesCourtByReverseLookup(t *testing.T) {
	store := newFakeStore()
	store.groups["g1"] = &models.Group{ID: "g1", StageID: "s1", Name: "Group A"}
	store.courts["c1"] = &models.Court{ID: "c1", TournamentID: "t1", Number: 1, CurrentMatchID: strPtr("m1")}

	remote := &fakeRemote{
		matches: map[string]*kickertool.MatchDTO{
			"m1": {
				ID:      "m1",
				GroupID: strPtr("g1"),
				State:   "running",
				Entries: []kickertool.MatchSide{
					{Entry: &kickertool.EntryDTO{ID: "e1", Name: "Alice"}},
					{Entry: &kickertool.EntryDTO{ID: "e2", Name: "Bob"}},
				},
			},
		},
	}
	svc := newTestSyncService(store, remote)

	synced, err := svc.SyncMatch(context.Background(), "t1", "m1")
	if err != nil {
		t.Fatalf("SyncMatch: %v", err)
	}
	if !synced {
		t.Fatal("expected the match to be written")
	}

	m1, ok := store.matches["m1"]
	if !ok {
		t.Fatal("match row missing")
	}
	if m1.CourtID == nil || *m1.CourtID != "c1" {
		t.Errorf("court id = %v, want c1 via reverse lookup", m1.CourtID)
	}
}

func TestSyncCourtsPullsCurrentMatch(t *testing.T) {
	store := newFakeStore()
	store.groups["g1"] = &models.Group{ID: "g1", StageID: "s1", Name: "Group A"}

	remote := &fakeRemote{
		courts: []kickertool.CourtDTO{
			{
				ID: "c1", Number: 1, Name: "Court 1",
				CurrentMatch: &kickertool.MatchDTO{ID: "m1", GroupID: strPtr("g1"), State: "running"},
			},
		},
		matches: map[string]*kickertool.MatchDTO{
			"m1": {ID: "m1", GroupID: strPtr("g1"), State: "running"},
		},
	}
	svc := newTestSyncService(store, remote)

	if err := svc.SyncCourts(context.Background(), "t1"); err != nil {
		t.Fatalf("SyncCourts: %v", err)
	}

	if _, ok := store.matches["m1"]; !ok {
		t.Fatal("nested current match must be synced")
	}
	c1, ok := store.courts["c1"]
	if !ok {
		t.Fatal("court row missing")
	}
	if c1.CurrentMatchID == nil || *c1.CurrentMatchID != "m1" {
		t.Errorf("current match = %v, want m1", c1.CurrentMatchID)
	}
}

func TestSyncCourtsUnknownGroupLeavesCourtFree(t *testing.T) {
	store := newFakeStore()

	remote := &fakeRemote{
		courts: []kickertool.CourtDTO{
			{ID: "c1", Number: 1, Name: "Court 1", CurrentMatchID: strPtr("m1")},
		},
		matches: map[string]*kickertool.MatchDTO{
			"m1": {ID: "m1", GroupID: strPtr("g-unknown"), State: "running"},
		},
	}
	svc := newTestSyncService(store, remote)

	if err := svc.SyncCourts(context.Background(), "t1"); err != nil {
		t.Fatalf("SyncCourts: %v", err)
	}

	c1, ok := store.courts["c1"]
	if !ok {
		t.Fatal("court row missing")
	}
	if c1.CurrentMatchID != nil {
		t.Errorf("court must stay free when its match cannot be synced, got %v", *c1.CurrentMatchID)
	}
}

func TestEnsureSyncedOnlyRunsForUnknownTournaments(t *testing.T) {
	store := newFakeStore()
	remote := fullSyncFixture()
	svc := newTestSyncService(store, remote)

	ran, err := svc.EnsureSynced(context.Background(), "t1")
	if err != nil {
		t.Fatalf("EnsureSynced: %v", err)
	}
	if !ran {
		t.Fatal("expected initial sync for unknown tournament")
	}

	callsAfterFirst := len(remote.calls)
	ran, err = svc.EnsureSynced(context.Background(), "t1")
	if err != nil {
		t.Fatalf("EnsureSynced second run: %v", err)
	}
	if ran {
		t.Fatal("known tournament must not be resynced")
	}
	if len(remote.calls) != callsAfterFirst {
		t.Fatalf("known tournament must cause no remote calls, got %d new",
			len(remote.calls)-callsAfterFirst)
	}
}

func TestParseTime(t *testing.T) {
	if got := parseTime(nil); got != nil {
		t.Errorf("nil input must yield nil, got %v", got)
	}
	if got := parseTime(strPtr("")); got != nil {
		t.Errorf("empty input must yield nil, got %v", got)
	}
	if got := parseTime(strPtr("not a time")); got != nil {
		t.Errorf("garbage input must degrade to nil, got %v", got)
	}
	got := parseTime(strPtr("2026-03-01T15:04:05Z"))
	if got == nil || got.Year() != 2026 || got.Month() != 3 {
		t.Errorf("RFC3339 input must parse, got %v", got)
	}
}

func TestFullSyncSkipsNodesWithoutIDs(t *testing.T) {
	store := newFakeStore()
	remote := &fakeRemote{
		snapshot: &kickertool.TournamentSnapshot{
			ID:    "t1",
			Name:  "Spring Open",
			State: "running",
			Disciplines: []kickertool.DisciplineDTO{
				{
					// Placeholder node the platform emits before the
					// discipline is configured.
					Name: "Unconfigured",
					Stages: []kickertool.StageDTO{
						{ID: "s-orphan", State: "planned"},
					},
				},
				{
					ID:   "d1",
					Name: "Open Doubles",
					Stages: []kickertool.StageDTO{
						{
							State: "planned",
							Groups: []kickertool.GroupDTO{
								{ID: "g-orphan", Name: "Orphan", State: "planned"},
							},
						},
						{
							ID:    "s1",
							State: "running",
							Groups: []kickertool.GroupDTO{
								{
									Name:  "Nameless",
									State: "planned",
									Matches: []kickertool.MatchDTO{
										{ID: "m-orphan", State: "planned"},
									},
								},
								{
									ID:    "g1",
									Name:  "Group A",
									State: "running",
									Matches: []kickertool.MatchDTO{
										{ID: "m1", State: "running"},
									},
								},
							},
						},
					},
				},
			},
		},
		entries:   map[string][]kickertool.EntryDTO{},
		standings: map[string][]kickertool.StandingDTO{"g1": {}},
	}
	svc := newTestSyncService(store, remote)

	if err := svc.FullSync(context.Background(), "t1"); err != nil {
		t.Fatalf("FullSync: %v", err)
	}

	if _, ok := store.disciplines[""]; ok {
		t.Error("discipline without id must be skipped, not stored under an empty key")
	}
	if _, ok := store.stages[""]; ok {
		t.Error("stage without id must be skipped, not stored under an empty key")
	}
	if _, ok := store.groups[""]; ok {
		t.Error("group without id must be skipped, not stored under an empty key")
	}

	if len(store.disciplines) != 1 {
		t.Errorf("disciplines = %d, want only d1", len(store.disciplines))
	}
	if len(store.stages) != 1 {
		t.Errorf("stages = %d, want only s1", len(store.stages))
	}
	if _, ok := store.groups["g-orphan"]; ok {
		t.Error("a skipped stage must take its groups with it")
	}
	if len(store.groups) != 1 {
		t.Errorf("groups = %d, want only g1", len(store.groups))
	}
	if _, ok := store.matches["m-orphan"]; ok {
		t.Error("a skipped group must take its matches with it")
	}
	if _, ok := store.matches["m1"]; !ok {
		t.Error("the intact branch must still sync")
	}
}

func TestSyncCourtTargetsSingleCourt(t *testing.T) {
	store := newFakeStore()
	store.groups["g1"] = &models.Group{ID: "g1", StageID: "s1", Name: "Group A"}

	remote := &fakeRemote{
		courts: []kickertool.CourtDTO{
			{ID: "c1", Number: 1, Name: "Court 1", CurrentMatchID: strPtr("m1")},
			{ID: "c2", Number: 2, Name: "Court 2", CurrentMatchID: strPtr("m2")},
		},
		matches: map[string]*kickertool.MatchDTO{
			"m2": {ID: "m2", GroupID: strPtr("g1"), State: "running"},
		},
	}
	svc := newTestSyncService(store, remote)

	synced, err := svc.SyncCourt(context.Background(), "t1", "c2")
	if err != nil {
		t.Fatalf("SyncCourt: %v", err)
	}
	if !synced {
		t.Fatal("expected the named court to be written")
	}

	if _, ok := store.courts["c1"]; ok {
		t.Error("courts the event did not name must stay untouched")
	}
	c2, ok := store.courts["c2"]
	if !ok {
		t.Fatal("named court row missing")
	}
	if c2.CurrentMatchID == nil || *c2.CurrentMatchID != "m2" {
		t.Errorf("current match = %v, want m2", c2.CurrentMatchID)
	}

	// Only the named court's match was fetched.
	matchFetches := 0
	for _, call := range remote.calls {
		if call == "FetchMatch" {
			matchFetches++
		}
	}
	if matchFetches != 1 {
		t.Fatalf("expected one match fetch, got %d", matchFetches)
	}
}

func TestSyncCourtUnknownIDSkipped(t *testing.T) {
	store := newFakeStore()
	remote := &fakeRemote{
		courts: []kickertool.CourtDTO{
			{ID: "c1", Number: 1, Name: "Court 1"},
		},
	}
	svc := newTestSyncService(store, remote)

	synced, err := svc.SyncCourt(context.Background(), "t1", "c-gone")
	if err != nil {
		t.Fatalf("SyncCourt: %v", err)
	}
	if synced {
		t.Fatal("a court missing from the remote payload must not report as synced")
	}
	if len(store.courts) != 0 {
		t.Fatalf("no court row may be written, got %d", len(store.courts))
	}
}

func TestFullSyncArchivesStandingsInRawDocument(t *testing.T) {
	store := newFakeStore()
	remote := fullSyncFixture()
	svc := newTestSyncService(store, remote)

	if err := svc.FullSync(context.Background(), "t1"); err != nil {
		t.Fatalf("FullSync: %v", err)
	}

	if len(remote.snapshotFlags) != 3 || !remote.snapshotFlags[0] || !remote.snapshotFlags[1] {
		t.Fatalf("snapshot fetch flags = %v, want matches and standings included", remote.snapshotFlags)
	}
}
