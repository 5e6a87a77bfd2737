package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"

	"github.com/Rackosdra/kt-ex/kickertool"
	"github.com/Rackosdra/kt-ex/models"
	"github.com/Rackosdra/kt-ex/repositories"
)

// fakeStore is a shared in-memory backing for the fake repositories. The
// SQLExecutor argument is ignored throughout; transactionality is not under
// test here.
type fakeStore struct {
	tournaments map[string]*models.Tournament
	disciplines map[string]*models.Discipline
	stages      map[string]*models.Stage
	groups      map[string]*models.Group
	entries     map[string]*models.Entry
	standings   map[string]*models.Standing
	matches     map[string]*models.Match
	courts      map[string]*models.Court
	webhookLogs []*models.WebhookLog
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tournaments: map[string]*models.Tournament{},
		disciplines: map[string]*models.Discipline{},
		stages:      map[string]*models.Stage{},
		groups:      map[string]*models.Group{},
		entries:     map[string]*models.Entry{},
		standings:   map[string]*models.Standing{},
		matches:     map[string]*models.Match{},
		courts:      map[string]*models.Court{},
	}
}

type fakeTournamentRepo struct{ s *fakeStore }

func (r *fakeTournamentRepo) Upsert(_ context.Context, _ repositories.SQLExecutor, t *models.Tournament) error {
	cp := *t
	r.s.tournaments[t.ID] = &cp
	return nil
}

func (r *fakeTournamentRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id string) (*models.Tournament, error) {
	t, ok := r.s.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTournamentRepo) List(_ context.Context, _ repositories.SQLExecutor, _ repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	var out []models.Tournament
	for _, t := range r.s.tournaments {
		out = append(out, *t)
	}
	return out, nil
}

func (r *fakeTournamentRepo) ListIDsByState(_ context.Context, _ repositories.SQLExecutor, state models.TournamentState) ([]string, error) {
	var out []string
	for id, t := range r.s.tournaments {
		if t.State == state {
			out = append(out, id)
		}
	}
	return out, nil
}

func (r *fakeTournamentRepo) Delete(_ context.Context, _ repositories.SQLExecutor, id string) error {
	if _, ok := r.s.tournaments[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	delete(r.s.tournaments, id)
	return nil
}

func (r *fakeTournamentRepo) AcquireSyncLock(_ context.Context, _ repositories.SQLExecutor, _ string) error {
	return nil
}

type fakeDisciplineRepo struct{ s *fakeStore }

func (r *fakeDisciplineRepo) Upsert(_ context.Context, _ repositories.SQLExecutor, d *models.Discipline) error {
	cp := *d
	r.s.disciplines[d.ID] = &cp
	return nil
}

func (r *fakeDisciplineRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id string) (*models.Discipline, error) {
	d, ok := r.s.disciplines[id]
	if !ok {
		return nil, repositories.ErrDisciplineNotFound
	}
	cp := *d
	return &cp, nil
}

func (r *fakeDisciplineRepo) ListByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID string) ([]models.Discipline, error) {
	var out []models.Discipline
	for _, d := range r.s.disciplines {
		if d.TournamentID == tournamentID {
			out = append(out, *d)
		}
	}
	return out, nil
}

type fakeStageRepo struct{ s *fakeStore }

func (r *fakeStageRepo) Upsert(_ context.Context, _ repositories.SQLExecutor, st *models.Stage) error {
	cp := *st
	r.s.stages[st.ID] = &cp
	return nil
}

func (r *fakeStageRepo) ListByDiscipline(_ context.Context, _ repositories.SQLExecutor, disciplineID string) ([]models.Stage, error) {
	var out []models.Stage
	for _, st := range r.s.stages {
		if st.DisciplineID == disciplineID {
			out = append(out, *st)
		}
	}
	return out, nil
}

type fakeGroupRepo struct{ s *fakeStore }

func (r *fakeGroupRepo) Upsert(_ context.Context, _ repositories.SQLExecutor, g *models.Group) error {
	cp := *g
	r.s.groups[g.ID] = &cp
	return nil
}

func (r *fakeGroupRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id string) (*models.Group, error) {
	g, ok := r.s.groups[id]
	if !ok {
		return nil, repositories.ErrGroupNotFound
	}
	cp := *g
	return &cp, nil
}

func (r *fakeGroupRepo) ExistsByID(_ context.Context, _ repositories.SQLExecutor, id string) (bool, error) {
	_, ok := r.s.groups[id]
	return ok, nil
}

func (r *fakeGroupRepo) ListByStage(_ context.Context, _ repositories.SQLExecutor, stageID string) ([]models.Group, error) {
	var out []models.Group
	for _, g := range r.s.groups {
		if g.StageID == stageID {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (r *fakeGroupRepo) ListByDiscipline(_ context.Context, _ repositories.SQLExecutor, _ string) ([]models.Group, error) {
	return nil, nil
}

func (r *fakeGroupRepo) Counts(_ context.Context, _ repositories.SQLExecutor, groupID string) (*repositories.GroupCounts, error) {
	counts := &repositories.GroupCounts{}
	for _, st := range r.s.standings {
		if st.GroupID == groupID {
			counts.Standings++
		}
	}
	for _, m := range r.s.matches {
		if m.GroupID != groupID {
			continue
		}
		counts.Matches++
		switch m.State {
		case models.MatchStatePlayed:
			counts.MatchesPlayed++
		case models.MatchStateRunning:
			counts.MatchesRunning++
		}
	}
	return counts, nil
}

type fakeEntryRepo struct{ s *fakeStore }

func (r *fakeEntryRepo) Upsert(_ context.Context, _ repositories.SQLExecutor, e *models.Entry) error {
	cp := *e
	r.s.entries[e.ID] = &cp
	return nil
}

func (r *fakeEntryRepo) ListByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID string) ([]models.Entry, error) {
	var out []models.Entry
	for _, e := range r.s.entries {
		if e.TournamentID == tournamentID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *fakeEntryRepo) ListByDiscipline(_ context.Context, _ repositories.SQLExecutor, tournamentID, disciplineID string) ([]models.Entry, error) {
	var out []models.Entry
	for _, e := range r.s.entries {
		if e.TournamentID == tournamentID && e.DisciplineIDs.Contains(disciplineID) {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *fakeEntryRepo) SearchByName(_ context.Context, _ repositories.SQLExecutor, _, _ string, _ int) ([]models.Entry, error) {
	return nil, nil
}

func (r *fakeEntryRepo) CountByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID string) (int, error) {
	count := 0
	for _, e := range r.s.entries {
		if e.TournamentID == tournamentID {
			count++
		}
	}
	return count, nil
}

type fakeStandingRepo struct{ s *fakeStore }

func (r *fakeStandingRepo) Upsert(_ context.Context, _ repositories.SQLExecutor, st *models.Standing) error {
	cp := *st
	r.s.standings[st.ID] = &cp
	return nil
}

func (r *fakeStandingRepo) ListByGroup(_ context.Context, _ repositories.SQLExecutor, groupID string) ([]models.Standing, error) {
	var out []models.Standing
	for _, st := range r.s.standings {
		if st.GroupID == groupID {
			out = append(out, *st)
		}
	}
	return out, nil
}

func (r *fakeStandingRepo) SearchByTeamName(_ context.Context, _ repositories.SQLExecutor, _, _ string, _ int) ([]models.Standing, error) {
	return nil, nil
}

func (r *fakeStandingRepo) CountByTournament(_ context.Context, _ repositories.SQLExecutor, _ string) (int, error) {
	return len(r.s.standings), nil
}

type fakeMatchRepo struct {
	s         *fakeStore
	upsertErr error
}

func (r *fakeMatchRepo) Upsert(_ context.Context, _ repositories.SQLExecutor, m *models.Match) error {
	if r.upsertErr != nil {
		return r.upsertErr
	}
	cp := *m
	r.s.matches[m.ID] = &cp
	return nil
}

func (r *fakeMatchRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id string) (*models.Match, error) {
	m, ok := r.s.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *fakeMatchRepo) ListByGroup(_ context.Context, _ repositories.SQLExecutor, groupID string, _ *models.MatchState) ([]models.Match, error) {
	var out []models.Match
	for _, m := range r.s.matches {
		if m.GroupID == groupID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *fakeMatchRepo) ListByTournament(_ context.Context, _ repositories.SQLExecutor, _ string, _ *models.MatchState) ([]models.Match, error) {
	var out []models.Match
	for _, m := range r.s.matches {
		out = append(out, *m)
	}
	return out, nil
}

func (r *fakeMatchRepo) UpdateResult(_ context.Context, _ repositories.SQLExecutor, m *models.Match) error {
	existing, ok := r.s.matches[m.ID]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	existing.State = m.State
	existing.Score1 = m.Score1
	existing.Score2 = m.Score2
	existing.Encounters = m.Encounters
	existing.DisplayScore = m.DisplayScore
	existing.IsLiveResult = m.IsLiveResult
	existing.EndTime = m.EndTime
	return nil
}

func (r *fakeMatchRepo) CountByTournament(_ context.Context, _ repositories.SQLExecutor, _ string) (int, error) {
	return len(r.s.matches), nil
}

type fakeCourtRepo struct{ s *fakeStore }

func (r *fakeCourtRepo) Upsert(_ context.Context, _ repositories.SQLExecutor, c *models.Court) error {
	cp := *c
	r.s.courts[c.ID] = &cp
	return nil
}

func (r *fakeCourtRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id string) (*models.Court, error) {
	c, ok := r.s.courts[id]
	if !ok {
		return nil, repositories.ErrCourtNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCourtRepo) ListByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID string) ([]models.Court, error) {
	var out []models.Court
	for _, c := range r.s.courts {
		if c.TournamentID == tournamentID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeCourtRepo) ListActive(_ context.Context, _ repositories.SQLExecutor, tournamentID string) ([]models.Court, error) {
	var out []models.Court
	for _, c := range r.s.courts {
		if c.TournamentID == tournamentID && c.CurrentMatchID != nil {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeCourtRepo) ListFree(_ context.Context, _ repositories.SQLExecutor, tournamentID string) ([]models.Court, error) {
	var out []models.Court
	for _, c := range r.s.courts {
		if c.TournamentID == tournamentID && c.CurrentMatchID == nil {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeCourtRepo) UpdateCurrentMatch(_ context.Context, _ repositories.SQLExecutor, courtID string, matchID *string) error {
	c, ok := r.s.courts[courtID]
	if !ok {
		return repositories.ErrCourtNotFound
	}
	c.CurrentMatchID = matchID
	return nil
}

func (r *fakeCourtRepo) FindByCurrentMatch(_ context.Context, _ repositories.SQLExecutor, matchID string) (*models.Court, error) {
	for _, c := range r.s.courts {
		if c.CurrentMatchID != nil && *c.CurrentMatchID == matchID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repositories.ErrCourtNotFound
}

func (r *fakeCourtRepo) CountByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID string) (int, error) {
	count := 0
	for _, c := range r.s.courts {
		if c.TournamentID == tournamentID {
			count++
		}
	}
	return count, nil
}

type fakeWebhookLogRepo struct{ s *fakeStore }

func (r *fakeWebhookLogRepo) Append(_ context.Context, _ repositories.SQLExecutor, l *models.WebhookLog) error {
	cp := *l
	cp.ID = int64(len(r.s.webhookLogs) + 1)
	r.s.webhookLogs = append(r.s.webhookLogs, &cp)
	return nil
}

func (r *fakeWebhookLogRepo) ExistsByWebhookID(_ context.Context, _ repositories.SQLExecutor, webhookID int64) (bool, error) {
	for _, l := range r.s.webhookLogs {
		if l.WebhookID == webhookID && l.Success {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeWebhookLogRepo) ListByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID string, _ int) ([]models.WebhookLog, error) {
	var out []models.WebhookLog
	for _, l := range r.s.webhookLogs {
		if l.TournamentID == tournamentID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r *fakeWebhookLogRepo) DeleteAll(_ context.Context, _ repositories.SQLExecutor) (int64, error) {
	n := int64(len(r.s.webhookLogs))
	r.s.webhookLogs = nil
	return n, nil
}

// fakeRemote serves canned remote documents and records which calls were
// made.
type fakeRemote struct {
	snapshot  *kickertool.TournamentSnapshot
	courts    []kickertool.CourtDTO
	entries   map[string][]kickertool.EntryDTO
	standings map[string][]kickertool.StandingDTO
	matches   map[string]*kickertool.MatchDTO

	submitResponse *kickertool.MatchDTO
	submitErr      error

	calls         []string
	snapshotFlags []bool
}

func (f *fakeRemote) FetchTournament(_ context.Context, tournamentID string, includeMatches, includeStandings, includeCourts bool) (*kickertool.TournamentSnapshot, error) {
	f.calls = append(f.calls, "FetchTournament")
	f.snapshotFlags = []bool{includeMatches, includeStandings, includeCourts}
	if f.snapshot == nil {
		return nil, kickertool.ErrNotFound
	}
	return f.snapshot, nil
}

func (f *fakeRemote) FetchCourts(_ context.Context, _ string, _ bool) ([]kickertool.CourtDTO, error) {
	f.calls = append(f.calls, "FetchCourts")
	return f.courts, nil
}

func (f *fakeRemote) FetchEntries(_ context.Context, _, disciplineID string) ([]kickertool.EntryDTO, error) {
	f.calls = append(f.calls, "FetchEntries")
	return f.entries[disciplineID], nil
}

func (f *fakeRemote) FetchGroupStandings(_ context.Context, _, groupID string) ([]kickertool.StandingDTO, error) {
	f.calls = append(f.calls, "FetchGroupStandings")
	rows, ok := f.standings[groupID]
	if !ok {
		return nil, kickertool.ErrNotFound
	}
	return rows, nil
}

func (f *fakeRemote) FetchMatch(_ context.Context, _, matchID string) (*kickertool.MatchDTO, error) {
	f.calls = append(f.calls, "FetchMatch")
	m, ok := f.matches[matchID]
	if !ok {
		return nil, kickertool.ErrNotFound
	}
	return m, nil
}

func (f *fakeRemote) SubmitMatchResult(_ context.Context, _, _ string, _ kickertool.MatchResult, _ bool) (*kickertool.MatchDTO, error) {
	f.calls = append(f.calls, "SubmitMatchResult")
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return f.submitResponse, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestSyncService(store *fakeStore, remote *fakeRemote) *SyncService {
	s := NewSyncService(SyncServiceDeps{
		Client:      remote,
		Tournaments: &fakeTournamentRepo{s: store},
		Disciplines: &fakeDisciplineRepo{s: store},
		Stages:      &fakeStageRepo{s: store},
		Groups:      &fakeGroupRepo{s: store},
		Entries:     &fakeEntryRepo{s: store},
		Standings:   &fakeStandingRepo{s: store},
		Matches:     &fakeMatchRepo{s: store},
		Courts:      &fakeCourtRepo{s: store},
		Logger:      discardLogger(),
	})
	s.runTx = func(ctx context.Context, fn func(tx *sql.Tx) error) error {
		return fn(nil)
	}
	return s
}
