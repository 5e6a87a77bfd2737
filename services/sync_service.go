package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Rackosdra/kt-ex/kickertool"
	"github.com/Rackosdra/kt-ex/live"
	"github.com/Rackosdra/kt-ex/models"
	"github.com/Rackosdra/kt-ex/repositories"
	"github.com/Rackosdra/kt-ex/storage"
)

// RemoteClient is the slice of the kickertool client the sync layer needs.
type RemoteClient interface {
	FetchTournament(ctx context.Context, tournamentID string, includeMatches, includeStandings, includeCourts bool) (*kickertool.TournamentSnapshot, error)
	FetchCourts(ctx context.Context, tournamentID string, includeMatchDetails bool) ([]kickertool.CourtDTO, error)
	FetchEntries(ctx context.Context, tournamentID, disciplineID string) ([]kickertool.EntryDTO, error)
	FetchGroupStandings(ctx context.Context, tournamentID, groupID string) ([]kickertool.StandingDTO, error)
	FetchMatch(ctx context.Context, tournamentID, matchID string) (*kickertool.MatchDTO, error)
	SubmitMatchResult(ctx context.Context, tournamentID, matchID string, result kickertool.MatchResult, live bool) (*kickertool.MatchDTO, error)
}

// SyncServiceDeps wires the sync service. Hub and Uploader are optional.
type SyncServiceDeps struct {
	DB     *sql.DB
	Client RemoteClient

	Tournaments repositories.TournamentRepository
	Disciplines repositories.DisciplineRepository
	Stages      repositories.StageRepository
	Groups      repositories.GroupRepository
	Entries     repositories.EntryRepository
	Standings   repositories.StandingRepository
	Matches     repositories.MatchRepository
	Courts      repositories.CourtRepository

	Hub      *live.Hub
	Uploader storage.FileUploader
	Logger   *slog.Logger
}

// SyncService mirrors remote tournament state into the local store. A full
// sync rewrites the whole tree in one transaction; partial syncs touch a
// single match or the court assignments.
type SyncService struct {
	db     *sql.DB
	client RemoteClient

	tournaments repositories.TournamentRepository
	disciplines repositories.DisciplineRepository
	stages      repositories.StageRepository
	groups      repositories.GroupRepository
	entries     repositories.EntryRepository
	standings   repositories.StandingRepository
	matches     repositories.MatchRepository
	courts      repositories.CourtRepository

	hub      *live.Hub
	uploader storage.FileUploader
	logger   *slog.Logger

	// runTx is replaceable from tests so the reconcile logic can run
	// against fake repositories without a database.
	runTx func(ctx context.Context, fn func(tx *sql.Tx) error) error
}

func NewSyncService(deps SyncServiceDeps) *SyncService {
	s := &SyncService{
		db:          deps.DB,
		client:      deps.Client,
		tournaments: deps.Tournaments,
		disciplines: deps.Disciplines,
		stages:      deps.Stages,
		groups:      deps.Groups,
		entries:     deps.Entries,
		standings:   deps.Standings,
		matches:     deps.Matches,
		courts:      deps.Courts,
		hub:         deps.Hub,
		uploader:    deps.Uploader,
		logger:      deps.Logger,
	}
	s.runTx = func(ctx context.Context, fn func(tx *sql.Tx) error) error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		defer tx.Rollback()
		if err := fn(tx); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
		return nil
	}
	return s
}

// remoteState bundles everything fetched from the platform for one full sync.
type remoteState struct {
	snapshot  *kickertool.TournamentSnapshot
	courts    []kickertool.CourtDTO
	entries   map[string]*models.Entry
	standings map[string][]kickertool.StandingDTO
}

// FullSync mirrors the complete remote tournament tree into the local store.
// All network reads happen before the transaction opens; the write phase
// holds a per-tournament advisory lock so concurrent syncs of the same
// tournament serialize instead of deadlocking on row order.
func (s *SyncService) FullSync(ctx context.Context, tournamentID string) error {
	started := time.Now()

	state, err := s.fetchRemoteState(ctx, tournamentID)
	if err != nil {
		return err
	}

	var expected syncCounts
	err = s.runTx(ctx, func(tx *sql.Tx) error {
		if err := s.tournaments.AcquireSyncLock(ctx, tx, tournamentID); err != nil {
			return fmt.Errorf("acquire sync lock: %w", err)
		}
		expected, err = s.applySnapshot(ctx, tx, state)
		return err
	})
	if err != nil {
		return err
	}

	s.verifyCounts(ctx, tournamentID, expected)
	s.archiveSnapshot(ctx, state.snapshot)
	s.broadcast(tournamentID, live.MessageTournamentSynced, map[string]interface{}{
		"tournament_id": tournamentID,
		"synced_at":     time.Now().UTC(),
	})

	s.logger.Info("full sync completed",
		slog.String("tournament_id", tournamentID),
		slog.Int("entries", expected.entries),
		slog.Int("standings", expected.standings),
		slog.Int("matches", expected.matches),
		slog.Int("courts", expected.courts),
		slog.Duration("took", time.Since(started)))
	return nil
}

func (s *SyncService) fetchRemoteState(ctx context.Context, tournamentID string) (*remoteState, error) {
	// Standings are asked for so the archived raw document is complete;
	// the mirror itself reads them from the per-group endpoint below.
	snapshot, err := s.client.FetchTournament(ctx, tournamentID, true, true, false)
	if err != nil {
		return nil, fmt.Errorf("fetch tournament %s: %w", tournamentID, err)
	}

	state := &remoteState{
		snapshot:  snapshot,
		entries:   make(map[string]*models.Entry),
		standings: make(map[string][]kickertool.StandingDTO),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)

	g.Go(func() error {
		courts, err := s.client.FetchCourts(gctx, tournamentID, true)
		if err != nil {
			return fmt.Errorf("fetch courts: %w", err)
		}
		state.courts = courts
		return nil
	})

	tournamentEntries := make([][]kickertool.EntryDTO, 1+len(snapshot.Disciplines))
	g.Go(func() error {
		list, err := s.client.FetchEntries(gctx, tournamentID, "")
		if err != nil {
			return fmt.Errorf("fetch entries: %w", err)
		}
		tournamentEntries[0] = list
		return nil
	})
	for i, d := range snapshot.Disciplines {
		i, disciplineID := i, d.ID
		g.Go(func() error {
			list, err := s.client.FetchEntries(gctx, tournamentID, disciplineID)
			if err != nil {
				if errors.Is(err, kickertool.ErrNotFound) {
					s.logger.Warn("discipline entries not available, skipping",
						slog.String("tournament_id", tournamentID),
						slog.String("discipline_id", disciplineID))
					return nil
				}
				return fmt.Errorf("fetch entries for discipline %s: %w", disciplineID, err)
			}
			tournamentEntries[i+1] = list
			return nil
		})
	}

	type groupStandings struct {
		groupID string
		rows    []kickertool.StandingDTO
	}
	groupIDs := collectGroupIDs(snapshot)
	standingResults := make([]groupStandings, len(groupIDs))
	for i, groupID := range groupIDs {
		i, groupID := i, groupID
		g.Go(func() error {
			rows, err := s.client.FetchGroupStandings(gctx, tournamentID, groupID)
			if err != nil {
				if errors.Is(err, kickertool.ErrNotFound) {
					s.logger.Warn("group standings not available, skipping",
						slog.String("tournament_id", tournamentID),
						slog.String("group_id", groupID))
					return nil
				}
				return fmt.Errorf("fetch standings for group %s: %w", groupID, err)
			}
			standingResults[i] = groupStandings{groupID: groupID, rows: rows}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Merge entry lists into one set keyed by entry id. An entry can appear
	// in the tournament-wide list and several discipline lists; the stored
	// row carries the union of discipline ids it was seen in.
	for listIdx, list := range tournamentEntries {
		var disciplineID string
		if listIdx > 0 {
			disciplineID = snapshot.Disciplines[listIdx-1].ID
		}
		for _, dto := range list {
			if dto.ID == "" {
				s.logger.Warn("entry without id in remote payload, skipping",
					slog.String("tournament_id", tournamentID))
				continue
			}
			e, ok := state.entries[dto.ID]
			if !ok {
				e = &models.Entry{
					ID:            dto.ID,
					TournamentID:  tournamentID,
					Name:          dto.Name,
					DisciplineIDs: models.StringList{},
				}
				if dto.Type != nil {
					t := models.EntryType(*dto.Type)
					e.EntryType = &t
				}
				state.entries[dto.ID] = e
			}
			if disciplineID != "" && !e.DisciplineIDs.Contains(disciplineID) {
				e.DisciplineIDs = append(e.DisciplineIDs, disciplineID)
			}
		}
	}

	for _, res := range standingResults {
		if res.groupID != "" {
			state.standings[res.groupID] = res.rows
		}
	}

	return state, nil
}

type syncCounts struct {
	entries   int
	standings int
	matches   int
	courts    int
}

// applySnapshot writes the fetched tree inside one transaction, parents
// before children so the foreign keys hold at every step.
func (s *SyncService) applySnapshot(ctx context.Context, tx *sql.Tx, state *remoteState) (syncCounts, error) {
	var counts syncCounts
	snapshot := state.snapshot
	tournamentID := snapshot.ID

	tournament := &models.Tournament{
		ID:           tournamentID,
		Name:         snapshot.Name,
		State:        models.TournamentState(snapshot.State),
		StartTime:    parseTime(snapshot.StartTime),
		EndTime:      parseTime(snapshot.EndTime),
		CourtsCount:  len(state.courts),
		RawSnapshot:  models.JSONB(snapshot.Raw),
		LastSyncedAt: time.Now().UTC(),
	}
	if snapshot.Description != "" {
		tournament.Description = &snapshot.Description
	}
	if err := s.tournaments.Upsert(ctx, tx, tournament); err != nil {
		return counts, fmt.Errorf("upsert tournament %s: %w", tournamentID, err)
	}

	for _, d := range snapshot.Disciplines {
		if d.ID == "" {
			s.logger.Warn("discipline without id in remote payload, skipping",
				slog.String("tournament_id", tournamentID))
			continue
		}
		discipline := &models.Discipline{
			ID:           d.ID,
			TournamentID: tournamentID,
			Name:         d.Name,
			ShortName:    d.ShortName,
		}
		if d.EntryType != nil {
			t := models.EntryType(*d.EntryType)
			discipline.EntryType = &t
		}
		if err := s.disciplines.Upsert(ctx, tx, discipline); err != nil {
			return counts, fmt.Errorf("upsert discipline %s: %w", d.ID, err)
		}

		for _, st := range d.Stages {
			if st.ID == "" {
				s.logger.Warn("stage without id in remote payload, skipping",
					slog.String("tournament_id", tournamentID),
					slog.String("discipline_id", d.ID))
				continue
			}
			stage := &models.Stage{
				ID:           st.ID,
				DisciplineID: d.ID,
				Name:         st.Name,
				State:        models.StageState(st.State),
			}
			if err := s.stages.Upsert(ctx, tx, stage); err != nil {
				return counts, fmt.Errorf("upsert stage %s: %w", st.ID, err)
			}

			for _, gr := range st.Groups {
				if gr.ID == "" {
					s.logger.Warn("group without id in remote payload, skipping",
						slog.String("tournament_id", tournamentID),
						slog.String("stage_id", st.ID))
					continue
				}
				group := &models.Group{
					ID:      gr.ID,
					StageID: st.ID,
					Name:    gr.Name,
					State:   models.StageState(gr.State),
					Options: models.JSONB(gr.Options),
				}
				if gr.TournamentMode != nil {
					m := models.TournamentMode(*gr.TournamentMode)
					group.TournamentMode = &m
				}
				if err := s.groups.Upsert(ctx, tx, group); err != nil {
					return counts, fmt.Errorf("upsert group %s: %w", gr.ID, err)
				}
			}
		}
	}

	for _, entry := range state.entries {
		if err := s.entries.Upsert(ctx, tx, entry); err != nil {
			return counts, fmt.Errorf("upsert entry %s: %w", entry.ID, err)
		}
		counts.entries++
	}

	// Courts before matches: the court row is what carries the
	// authoritative match assignment, and the match rows look it up.
	courtByMatch := make(map[string]string)
	for _, c := range state.courts {
		if c.ID == "" {
			s.logger.Warn("court without id in remote payload, skipping",
				slog.String("tournament_id", tournamentID))
			continue
		}
		// current_match_id stays NULL here: the match rows it points at
		// are written further down, and the FK would reject a forward
		// reference. The assignment pass after the matches fills it in.
		court := &models.Court{
			ID:           c.ID,
			TournamentID: tournamentID,
			Number:       c.Number,
			Name:         c.Name,
		}
		currentMatchID := c.CurrentMatchID
		if currentMatchID == nil && c.CurrentMatch != nil && c.CurrentMatch.ID != "" {
			currentMatchID = &c.CurrentMatch.ID
		}
		if err := s.courts.Upsert(ctx, tx, court); err != nil {
			return counts, fmt.Errorf("upsert court %s: %w", c.ID, err)
		}
		counts.courts++
		if currentMatchID != nil {
			courtByMatch[*currentMatchID] = c.ID
		}
	}

	for groupID, rows := range state.standings {
		for _, dto := range rows {
			standing := standingFromDTO(groupID, dto)
			if standing == nil {
				s.logger.Warn("standing without entry or team name, skipping",
					slog.String("tournament_id", tournamentID),
					slog.String("group_id", groupID))
				continue
			}
			if err := s.standings.Upsert(ctx, tx, standing); err != nil {
				return counts, fmt.Errorf("upsert standing %s: %w", standing.ID, err)
			}
			counts.standings++
		}
	}

	writtenMatches := make(map[string]bool)
	for _, d := range snapshot.Disciplines {
		for _, st := range d.Stages {
			for _, gr := range st.Groups {
				// Skipped hierarchy nodes take their matches with them.
				if d.ID == "" || st.ID == "" || gr.ID == "" {
					continue
				}
				for i := range gr.Matches {
					dto := &gr.Matches[i]
					if dto.ID == "" {
						s.logger.Warn("match without id in remote payload, skipping",
							slog.String("tournament_id", tournamentID),
							slog.String("group_id", gr.ID))
						continue
					}
					match := matchFromDTO(dto, gr.ID)
					if match.DisciplineID == nil {
						id := d.ID
						match.DisciplineID = &id
					}
					if match.DisciplineName == nil && d.Name != "" {
						name := d.Name
						match.DisciplineName = &name
					}
					if match.GroupName == nil && gr.Name != "" {
						name := gr.Name
						match.GroupName = &name
					}
					if courtID, ok := courtByMatch[match.ID]; ok {
						match.CourtID = &courtID
					}
					if err := s.matches.Upsert(ctx, tx, match); err != nil {
						return counts, fmt.Errorf("upsert match %s: %w", match.ID, err)
					}
					writtenMatches[match.ID] = true
					counts.matches++
				}
			}
		}
	}

	// Re-point courts now that match rows exist; the first court pass ran
	// before the matches table was filled, so the FK to matches could not
	// be satisfied then for matches new to this sync.
	for matchID, courtID := range courtByMatch {
		if !writtenMatches[matchID] {
			s.logger.Warn("court points at a match outside the snapshot, leaving unassigned",
				slog.String("tournament_id", tournamentID),
				slog.String("court_id", courtID),
				slog.String("match_id", matchID))
			continue
		}
		id := matchID
		if err := s.courts.UpdateCurrentMatch(ctx, tx, courtID, &id); err != nil {
			return counts, fmt.Errorf("assign match %s to court %s: %w", matchID, courtID, err)
		}
	}

	return counts, nil
}

// errSkipSync marks a partial sync that was deliberately abandoned. It rolls
// the transaction back and is swallowed by the caller.
var errSkipSync = errors.New("partial sync skipped")

// SyncMatch refreshes a single match from the platform. A match whose group
// has never been synced is skipped with a warning instead of failing the
// webhook: the next full sync picks it up together with its group. Reports
// whether the match row was actually written.
func (s *SyncService) SyncMatch(ctx context.Context, tournamentID, matchID string) (bool, error) {
	return s.syncMatch(ctx, tournamentID, matchID)
}

func (s *SyncService) syncMatch(ctx context.Context, tournamentID, matchID string) (bool, error) {
	dto, err := s.client.FetchMatch(ctx, tournamentID, matchID)
	if err != nil {
		return false, fmt.Errorf("fetch match %s: %w", matchID, err)
	}
	if dto.GroupID == nil || *dto.GroupID == "" {
		s.logger.Warn("match payload carries no group id, skipping",
			slog.String("tournament_id", tournamentID),
			slog.String("match_id", matchID))
		return false, nil
	}

	var match *models.Match
	err = s.runTx(ctx, func(tx *sql.Tx) error {
		known, err := s.groups.ExistsByID(ctx, tx, *dto.GroupID)
		if err != nil {
			return fmt.Errorf("check group %s: %w", *dto.GroupID, err)
		}
		if !known {
			s.logger.Warn("match belongs to an unsynced group, skipping",
				slog.String("tournament_id", tournamentID),
				slog.String("match_id", matchID),
				slog.String("group_id", *dto.GroupID))
			return errSkipSync
		}

		match = matchFromDTO(dto, *dto.GroupID)
		if court, err := s.courts.FindByCurrentMatch(ctx, tx, matchID); err == nil {
			match.CourtID = &court.ID
		} else if !errors.Is(err, repositories.ErrCourtNotFound) {
			return fmt.Errorf("reverse court lookup for match %s: %w", matchID, err)
		}

		if err := s.matches.Upsert(ctx, tx, match); err != nil {
			if repositories.IsForeignKeyViolation(err) {
				s.logger.Warn("match references unsynced rows, skipping",
					slog.String("tournament_id", tournamentID),
					slog.String("match_id", matchID))
				return errSkipSync
			}
			return fmt.Errorf("upsert match %s: %w", matchID, err)
		}
		return nil
	})
	if errors.Is(err, errSkipSync) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	s.broadcast(tournamentID, live.MessageMatchUpdated, match)
	return true, nil
}

// SyncCourt refreshes one court from the dedicated courts endpoint, pulling
// in its current match along the way. The endpoint only serves the whole
// list, so the fetch is filtered down to the named court. Reports whether
// the court row was written; an unknown court id is skipped with a warning.
func (s *SyncService) SyncCourt(ctx context.Context, tournamentID, courtID string) (bool, error) {
	courts, err := s.client.FetchCourts(ctx, tournamentID, true)
	if err != nil {
		return false, fmt.Errorf("fetch courts: %w", err)
	}

	for _, c := range courts {
		if c.ID != courtID {
			continue
		}
		if err := s.applyCourt(ctx, tournamentID, c); err != nil {
			return false, err
		}
		s.broadcast(tournamentID, live.MessageCourtUpdated, map[string]interface{}{
			"tournament_id": tournamentID,
			"court_id":      courtID,
		})
		return true, nil
	}

	s.logger.Warn("court not present in remote payload, skipping",
		slog.String("tournament_id", tournamentID),
		slog.String("court_id", courtID))
	return false, nil
}

// SyncCourts refreshes every court and its match assignment. Fallback for
// deliveries that announce a court change without naming the court.
func (s *SyncService) SyncCourts(ctx context.Context, tournamentID string) error {
	courts, err := s.client.FetchCourts(ctx, tournamentID, true)
	if err != nil {
		return fmt.Errorf("fetch courts: %w", err)
	}

	for _, c := range courts {
		if c.ID == "" {
			continue
		}
		if err := s.applyCourt(ctx, tournamentID, c); err != nil {
			return err
		}
	}

	s.broadcast(tournamentID, live.MessageCourtUpdated, map[string]interface{}{
		"tournament_id": tournamentID,
		"courts":        len(courts),
	})
	return nil
}

func (s *SyncService) applyCourt(ctx context.Context, tournamentID string, c kickertool.CourtDTO) error {
	currentMatchID := c.CurrentMatchID
	if currentMatchID == nil && c.CurrentMatch != nil && c.CurrentMatch.ID != "" {
		currentMatchID = &c.CurrentMatch.ID
	}

	// The match row must exist before the court can point at it.
	if currentMatchID != nil {
		synced, err := s.syncMatch(ctx, tournamentID, *currentMatchID)
		if err != nil {
			s.logger.Warn("failed to sync court's current match",
				slog.String("tournament_id", tournamentID),
				slog.String("court_id", c.ID),
				slog.String("match_id", *currentMatchID),
				slog.Any("error", err))
		}
		if err != nil || !synced {
			currentMatchID = nil
		}
	}

	err := s.runTx(ctx, func(tx *sql.Tx) error {
		return s.courts.Upsert(ctx, tx, &models.Court{
			ID:             c.ID,
			TournamentID:   tournamentID,
			Number:         c.Number,
			Name:           c.Name,
			CurrentMatchID: currentMatchID,
		})
	})
	if err != nil {
		return fmt.Errorf("upsert court %s: %w", c.ID, err)
	}
	return nil
}

// EnsureSynced runs an initial full sync for tournaments the store has never
// seen. Known tournaments are left alone. Reports whether a sync ran.
func (s *SyncService) EnsureSynced(ctx context.Context, tournamentID string) (bool, error) {
	_, err := s.tournaments.GetByID(ctx, nil, tournamentID)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repositories.ErrTournamentNotFound) {
		return false, err
	}
	s.logger.Info("unknown tournament, running initial sync",
		slog.String("tournament_id", tournamentID))
	if err := s.FullSync(ctx, tournamentID); err != nil {
		return false, err
	}
	return true, nil
}

// verifyCounts compares post-commit row counts against what the sync wrote.
// Mismatches are logged, never fatal: a concurrent sync may have moved rows
// underneath us.
func (s *SyncService) verifyCounts(ctx context.Context, tournamentID string, expected syncCounts) {
	checks := []struct {
		name  string
		want  int
		count func(context.Context, repositories.SQLExecutor, string) (int, error)
	}{
		{"entries", expected.entries, s.entries.CountByTournament},
		{"standings", expected.standings, s.standings.CountByTournament},
		{"matches", expected.matches, s.matches.CountByTournament},
		{"courts", expected.courts, s.courts.CountByTournament},
	}
	for _, c := range checks {
		got, err := c.count(ctx, nil, tournamentID)
		if err != nil {
			s.logger.Warn("post-sync count check failed",
				slog.String("tournament_id", tournamentID),
				slog.String("table", c.name), slog.Any("error", err))
			continue
		}
		if got < c.want {
			s.logger.Warn("post-sync count below written rows",
				slog.String("tournament_id", tournamentID),
				slog.String("table", c.name),
				slog.Int("written", c.want), slog.Int("stored", got))
		}
	}
}

// archiveSnapshot ships the raw tournament document to object storage when
// an uploader is configured. Failures are logged and swallowed.
func (s *SyncService) archiveSnapshot(ctx context.Context, snapshot *kickertool.TournamentSnapshot) {
	if s.uploader == nil || snapshot == nil || snapshot.Raw == nil {
		return
	}
	payload, err := json.Marshal(snapshot.Raw)
	if err != nil {
		s.logger.Warn("failed to marshal snapshot for archive",
			slog.String("tournament_id", snapshot.ID), slog.Any("error", err))
		return
	}
	key := fmt.Sprintf("snapshots/%s/%s.json", snapshot.ID, time.Now().UTC().Format("20060102T150405Z"))
	if _, err := s.uploader.Upload(ctx, key, "application/json", bytes.NewReader(payload)); err != nil {
		s.logger.Warn("failed to archive snapshot",
			slog.String("tournament_id", snapshot.ID),
			slog.String("key", key), slog.Any("error", err))
	}
}

func (s *SyncService) broadcast(tournamentID, messageType string, payload interface{}) {
	if s.hub == nil {
		return
	}
	roomID := live.RoomID(tournamentID)
	s.hub.BroadcastToRoom(roomID, live.Message{
		Type:    messageType,
		Payload: payload,
		RoomID:  roomID,
	})
}

func collectGroupIDs(snapshot *kickertool.TournamentSnapshot) []string {
	var ids []string
	for _, d := range snapshot.Disciplines {
		for _, st := range d.Stages {
			for _, g := range st.Groups {
				if g.ID != "" {
					ids = append(ids, g.ID)
				}
			}
		}
	}
	return ids
}

// standingFromDTO builds the standing row. The row id is composite:
// "{group_id}_{entry_id}", falling back to the team name with spaces
// replaced by underscores when the side has no registered entry. A row with
// neither is unidentifiable and dropped by the caller.
func standingFromDTO(groupID string, dto kickertool.StandingDTO) *models.Standing {
	var entryID *string
	teamName := ""
	if dto.Entry != nil {
		if dto.Entry.ID != "" {
			id := dto.Entry.ID
			entryID = &id
		}
		teamName = dto.Entry.Name
	}

	var idSuffix string
	switch {
	case entryID != nil:
		idSuffix = *entryID
	case teamName != "":
		idSuffix = strings.ReplaceAll(teamName, " ", "_")
	default:
		return nil
	}
	if teamName == "" {
		teamName = "TBD"
	}

	return &models.Standing{
		ID:       groupID + "_" + idSuffix,
		GroupID:  groupID,
		EntryID:  entryID,
		Rank:     dto.Rank,
		TeamName: teamName,

		Points:                  dto.Points,
		Matches:                 dto.Matches,
		PointsPerMatch:          dto.PointsPerMatch,
		CorrectedPointsPerMatch: dto.CorrectedPointsPerMatch,
		MatchesWon:              dto.MatchesWon,
		MatchesLost:             dto.MatchesLost,
		MatchesDraw:             dto.MatchesDraw,
		MatchesDiff:             dto.MatchesDiff,
		SetsWon:                 dto.SetsWon,
		SetsLost:                dto.SetsLost,
		SetsDiff:                dto.SetsDiff,
		Goals:                   dto.Goals,
		GoalsIn:                 dto.GoalsIn,
		GoalsDiff:               dto.GoalsDiff,
		BH1:                     dto.BH1,
		BH2:                     dto.BH2,
		SB:                      dto.SB,
		Lives:                   dto.Lives,
		Result:                  dto.Result,
	}
}

// matchFromDTO converts a remote match document. Side names come from the
// entries (joined with " / " for multi-player sides, "TBD" when unassigned);
// the court assignment is left for the caller, which resolves it from the
// courts table rather than trusting the match document.
func matchFromDTO(dto *kickertool.MatchDTO, groupID string) *models.Match {
	match := &models.Match{
		ID:             dto.ID,
		GroupID:        groupID,
		Team1Name:      "TBD",
		Team2Name:      "TBD",
		State:          models.MatchState(dto.State),
		DisciplineID:   dto.DisciplineID,
		DisciplineName: dto.DisciplineName,
		RoundID:        dto.RoundID,
		RoundName:      dto.RoundName,
		GroupName:      dto.GroupName,
		StartTime:      parseTime(dto.StartTime),
		EndTime:        parseTime(dto.EndTime),
		IsLiveResult:   dto.IsLiveResult,
	}

	if len(dto.Entries) > 0 {
		match.Team1Name = dto.Entries[0].DisplayName()
		match.Team1EntryID = dto.Entries[0].EntryID()
	}
	if len(dto.Entries) > 1 {
		match.Team2Name = dto.Entries[1].DisplayName()
		match.Team2EntryID = dto.Entries[1].EntryID()
	}

	if len(dto.DisplayScore) > 0 {
		match.Score1 = dto.DisplayScore[0]
	}
	if len(dto.DisplayScore) > 1 {
		match.Score2 = dto.DisplayScore[1]
	}
	if dto.DisplayScore != nil {
		ds := make(models.JSONBArray, len(dto.DisplayScore))
		for i, v := range dto.DisplayScore {
			if v != nil {
				ds[i] = *v
			}
		}
		match.DisplayScore = ds
	}
	if dto.Encounters != nil {
		match.Encounters = models.JSONBArray(dto.Encounters)
	}

	return match
}

// parseTime decodes the platform's ISO timestamp strings, with and without
// zone suffix. An unparseable value degrades to NULL instead of failing the
// sync.
func parseTime(v *string) *time.Time {
	if v == nil || *v == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, *v); err == nil {
			u := t.UTC()
			return &u
		}
	}
	return nil
}
