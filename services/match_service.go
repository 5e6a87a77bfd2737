package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Rackosdra/kt-ex/kickertool"
	"github.com/Rackosdra/kt-ex/live"
	"github.com/Rackosdra/kt-ex/models"
	"github.com/Rackosdra/kt-ex/repositories"
)

// MatchService submits results to the platform. The remote platform stays
// the source of truth: the local row is only refreshed from what the
// submission endpoint echoes back.
type MatchService struct {
	client  RemoteClient
	matches repositories.MatchRepository
	hub     *live.Hub
	logger  *slog.Logger
}

func NewMatchService(client RemoteClient, matches repositories.MatchRepository, hub *live.Hub, logger *slog.Logger) *MatchService {
	return &MatchService{client: client, matches: matches, hub: hub, logger: logger}
}

// SetResult submits a final result. The running-state precondition is
// checked against the local mirror first, so a stale or finished match is
// rejected without a remote call.
func (s *MatchService) SetResult(ctx context.Context, tournamentID, matchID string, result kickertool.MatchResult) (*models.Match, error) {
	return s.submit(ctx, tournamentID, matchID, result, false)
}

// SetLiveResult submits an intermediate score while the match keeps running.
func (s *MatchService) SetLiveResult(ctx context.Context, tournamentID, matchID string, result kickertool.MatchResult) (*models.Match, error) {
	return s.submit(ctx, tournamentID, matchID, result, true)
}

func (s *MatchService) submit(ctx context.Context, tournamentID, matchID string, result kickertool.MatchResult, isLive bool) (*models.Match, error) {
	if len(result) == 0 {
		return nil, fmt.Errorf("%w: result must contain at least one encounter", ErrValidationFailed)
	}

	match, err := s.matches.GetByID(ctx, nil, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("load match %s: %w", matchID, err)
	}
	if match.State != models.MatchStateRunning {
		return nil, ErrMatchNotRunning
	}

	dto, err := s.client.SubmitMatchResult(ctx, tournamentID, matchID, result, isLive)
	if err != nil {
		if errors.Is(err, kickertool.ErrMatchNotRunning) {
			return nil, ErrMatchNotRunning
		}
		if errors.Is(err, kickertool.ErrNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("submit result for match %s: %w", matchID, err)
	}

	// Refresh the result fields from the echoed document. A live result
	// keeps the match running; a final one adopts whatever state the
	// platform moved the match into.
	updated := matchFromDTO(dto, match.GroupID)
	match.Score1 = updated.Score1
	match.Score2 = updated.Score2
	match.Encounters = updated.Encounters
	match.DisplayScore = updated.DisplayScore
	match.EndTime = updated.EndTime
	if isLive {
		match.IsLiveResult = true
	} else {
		match.IsLiveResult = false
		match.State = updated.State
	}

	if err := s.matches.UpdateResult(ctx, nil, match); err != nil {
		return nil, fmt.Errorf("store result for match %s: %w", matchID, err)
	}

	s.logger.Info("match result submitted",
		slog.String("tournament_id", tournamentID),
		slog.String("match_id", matchID),
		slog.Bool("live", isLive),
		slog.String("state", string(match.State)))

	if s.hub != nil {
		roomID := live.RoomID(tournamentID)
		s.hub.BroadcastToRoom(roomID, live.Message{
			Type:    live.MessageMatchUpdated,
			Payload: match,
			RoomID:  roomID,
		})
	}
	return match, nil
}
