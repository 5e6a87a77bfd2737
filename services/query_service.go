package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rackosdra/kt-ex/models"
	"github.com/Rackosdra/kt-ex/repositories"
)

// QueryService serves read projections over the mirrored state. It never
// talks to the remote platform.
type QueryService struct {
	tournaments repositories.TournamentRepository
	disciplines repositories.DisciplineRepository
	stages      repositories.StageRepository
	groups      repositories.GroupRepository
	entries     repositories.EntryRepository
	standings   repositories.StandingRepository
	matches     repositories.MatchRepository
	courts      repositories.CourtRepository
	webhookLogs repositories.WebhookLogRepository
}

func NewQueryService(
	tournaments repositories.TournamentRepository,
	disciplines repositories.DisciplineRepository,
	stages repositories.StageRepository,
	groups repositories.GroupRepository,
	entries repositories.EntryRepository,
	standings repositories.StandingRepository,
	matches repositories.MatchRepository,
	courts repositories.CourtRepository,
	webhookLogs repositories.WebhookLogRepository,
) *QueryService {
	return &QueryService{
		tournaments: tournaments,
		disciplines: disciplines,
		stages:      stages,
		groups:      groups,
		entries:     entries,
		standings:   standings,
		matches:     matches,
		courts:      courts,
		webhookLogs: webhookLogs,
	}
}

// ListTournaments returns mirrored tournaments, optionally filtered by state.
func (s *QueryService) ListTournaments(ctx context.Context, state *models.TournamentState, limit, offset int) ([]models.Tournament, error) {
	return s.tournaments.List(ctx, nil, repositories.ListTournamentsFilter{
		State:  state,
		Limit:  limit,
		Offset: offset,
	})
}

// GetTournament loads the tournament with its discipline, stage and group
// tree attached.
func (s *QueryService) GetTournament(ctx context.Context, tournamentID string) (*models.Tournament, error) {
	tournament, err := s.tournaments.GetByID(ctx, nil, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	disciplines, err := s.disciplines.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("load disciplines: %w", err)
	}
	for i := range disciplines {
		stages, err := s.stages.ListByDiscipline(ctx, nil, disciplines[i].ID)
		if err != nil {
			return nil, fmt.Errorf("load stages for discipline %s: %w", disciplines[i].ID, err)
		}
		for j := range stages {
			groups, err := s.groups.ListByStage(ctx, nil, stages[j].ID)
			if err != nil {
				return nil, fmt.Errorf("load groups for stage %s: %w", stages[j].ID, err)
			}
			stages[j].Groups = groups
		}
		disciplines[i].Stages = stages
	}
	tournament.Disciplines = disciplines
	return tournament, nil
}

// GroupDetail is the group read projection: the group row with its row
// counts, plus standings ordered by rank and the match list.
type GroupDetail struct {
	Group     *models.Group     `json:"group"`
	Standings []models.Standing `json:"standings"`
	Matches   []models.Match    `json:"matches"`
}

func (s *QueryService) GetGroupDetail(ctx context.Context, groupID string) (*GroupDetail, error) {
	group, err := s.groups.GetByID(ctx, nil, groupID)
	if err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}

	counts, err := s.groups.Counts(ctx, nil, groupID)
	if err != nil {
		return nil, fmt.Errorf("load group counts: %w", err)
	}
	group.StandingsCount = &counts.Standings
	group.MatchesCount = &counts.Matches
	group.MatchesPlayed = &counts.MatchesPlayed
	group.MatchesRunning = &counts.MatchesRunning

	standings, err := s.standings.ListByGroup(ctx, nil, groupID)
	if err != nil {
		return nil, fmt.Errorf("load standings: %w", err)
	}
	matches, err := s.matches.ListByGroup(ctx, nil, groupID, nil)
	if err != nil {
		return nil, fmt.Errorf("load matches: %w", err)
	}

	return &GroupDetail{Group: group, Standings: standings, Matches: matches}, nil
}

func (s *QueryService) GetMatch(ctx context.Context, matchID string) (*models.Match, error) {
	match, err := s.matches.GetByID(ctx, nil, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return match, nil
}

func (s *QueryService) ListMatches(ctx context.Context, tournamentID string, state *models.MatchState) ([]models.Match, error) {
	return s.matches.ListByTournament(ctx, nil, tournamentID, state)
}

func (s *QueryService) ListEntries(ctx context.Context, tournamentID, disciplineID string) ([]models.Entry, error) {
	if disciplineID != "" {
		return s.entries.ListByDiscipline(ctx, nil, tournamentID, disciplineID)
	}
	return s.entries.ListByTournament(ctx, nil, tournamentID)
}

// CourtFilter narrows the court listing.
type CourtFilter string

const (
	CourtFilterAll    CourtFilter = ""
	CourtFilterActive CourtFilter = "active"
	CourtFilterFree   CourtFilter = "free"
)

// ListCourts returns courts with their current match attached. Active courts
// are those with a match assigned, free courts those without.
func (s *QueryService) ListCourts(ctx context.Context, tournamentID string, filter CourtFilter) ([]models.Court, error) {
	var (
		courts []models.Court
		err    error
	)
	switch filter {
	case CourtFilterActive:
		courts, err = s.courts.ListActive(ctx, nil, tournamentID)
	case CourtFilterFree:
		courts, err = s.courts.ListFree(ctx, nil, tournamentID)
	default:
		courts, err = s.courts.ListByTournament(ctx, nil, tournamentID)
	}
	if err != nil {
		return nil, err
	}

	for i := range courts {
		if courts[i].CurrentMatchID == nil {
			continue
		}
		match, err := s.matches.GetByID(ctx, nil, *courts[i].CurrentMatchID)
		if err != nil {
			if errors.Is(err, repositories.ErrMatchNotFound) {
				continue
			}
			return nil, fmt.Errorf("load current match for court %s: %w", courts[i].ID, err)
		}
		courts[i].CurrentMatch = match
	}
	return courts, nil
}

// GetCourt loads one court with its current match attached when the match is
// mirrored.
func (s *QueryService) GetCourt(ctx context.Context, courtID string) (*models.Court, error) {
	court, err := s.courts.GetByID(ctx, nil, courtID)
	if err != nil {
		if errors.Is(err, repositories.ErrCourtNotFound) {
			return nil, ErrCourtNotFound
		}
		return nil, err
	}
	if court.CurrentMatchID != nil {
		match, err := s.matches.GetByID(ctx, nil, *court.CurrentMatchID)
		if err != nil && !errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, fmt.Errorf("load current match for court %s: %w", court.ID, err)
		}
		if err == nil {
			court.CurrentMatch = match
		}
	}
	return court, nil
}

// SearchResult combines the participant search over registered entries and
// standing rows matched by team name.
type SearchResult struct {
	Entries   []models.Entry    `json:"entries"`
	Standings []models.Standing `json:"standings"`
}

func (s *QueryService) Search(ctx context.Context, tournamentID, query string, limit int) (*SearchResult, error) {
	if len(query) < 2 {
		return nil, fmt.Errorf("%w: search query must be at least 2 characters", ErrValidationFailed)
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	entries, err := s.entries.SearchByName(ctx, nil, tournamentID, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search entries: %w", err)
	}
	standings, err := s.standings.SearchByTeamName(ctx, nil, tournamentID, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search standings: %w", err)
	}
	return &SearchResult{Entries: entries, Standings: standings}, nil
}

func (s *QueryService) ListWebhookLogs(ctx context.Context, tournamentID string, limit int) ([]models.WebhookLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.webhookLogs.ListByTournament(ctx, nil, tournamentID, limit)
}
