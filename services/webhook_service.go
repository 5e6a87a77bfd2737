package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Rackosdra/kt-ex/config"
	"github.com/Rackosdra/kt-ex/models"
	"github.com/Rackosdra/kt-ex/repositories"
)

// Webhook event vocabulary as sent by the platform.
const (
	EventTournamentAdded   = "TournamentAdded"
	EventTournamentUpdated = "TournamentUpdated"
	EventMatchUpdated      = "MatchUpdated"
	EventCourtMatchChanged = "CourtMatchChanged"
	EventEntryListUpdated  = "EntryListUpdated"
	EventStandingsUpdated  = "StandingsUpdated"
)

// WebhookEvent is one classified event out of a delivery. Unknown types are
// kept verbatim so they reach the audit log even when nothing handles them.
type WebhookEvent struct {
	Type    string `json:"type"`
	MatchID string `json:"matchId,omitempty"`
	CourtID string `json:"courtId,omitempty"`
}

// WebhookPayload is a validated delivery. WebhookID zero means the delivery
// carried no id; processing continues, only deduplication degrades.
type WebhookPayload struct {
	WebhookID    int64
	TournamentID string
	Events       []WebhookEvent
}

type rawWebhookEvent struct {
	Type    string `json:"type"`
	MatchID string `json:"matchId"`
	CourtID string `json:"courtId"`
}

type rawWebhook struct {
	ID           *int64            `json:"id"`
	TournamentID string            `json:"tournamentId"`
	Events       []json.RawMessage `json:"events"`
	Body         *rawWebhook       `json:"body"`
}

// ParseWebhookPayload validates a delivery. Some platform proxies wrap the
// real payload in a "body" envelope; fields inside the envelope win over
// top-level ones. A missing tournament id fails validation; a missing
// webhook id does not.
func ParseWebhookPayload(raw []byte) (*WebhookPayload, error) {
	var outer rawWebhook
	if err := json.Unmarshal(raw, &outer); err != nil {
		return nil, fmt.Errorf("%w: malformed JSON payload", ErrValidationFailed)
	}

	effective := &outer
	if outer.Body != nil {
		effective = outer.Body
		if effective.ID == nil {
			effective.ID = outer.ID
		}
		if effective.TournamentID == "" {
			effective.TournamentID = outer.TournamentID
		}
		if effective.Events == nil {
			effective.Events = outer.Events
		}
	}

	if effective.TournamentID == "" {
		return nil, fmt.Errorf("%w: missing tournamentId", ErrValidationFailed)
	}

	payload := &WebhookPayload{TournamentID: effective.TournamentID}
	if effective.ID != nil {
		payload.WebhookID = *effective.ID
	}

	// Malformed events are dropped individually; one broken element must
	// not suppress the rest of the delivery.
	for _, rawEvent := range effective.Events {
		var ev rawWebhookEvent
		if err := json.Unmarshal(rawEvent, &ev); err != nil || ev.Type == "" {
			continue
		}
		payload.Events = append(payload.Events, WebhookEvent(ev))
	}

	return payload, nil
}

// NeedsFullSync reports whether any event in the delivery demands a full
// resync. Tournament-level changes, entry list changes and standings changes
// all invalidate more state than a partial sync can repair.
func NeedsFullSync(events []WebhookEvent) bool {
	for _, ev := range events {
		switch ev.Type {
		case EventTournamentAdded, EventTournamentUpdated, EventEntryListUpdated, EventStandingsUpdated:
			return true
		}
	}
	return false
}

// WebhookService turns validated deliveries into sync work and keeps the
// append-only processing ledger.
type WebhookService struct {
	sync   *SyncService
	logs   repositories.WebhookLogRepository
	policy config.IdempotencyPolicy
	logger *slog.Logger
}

func NewWebhookService(sync *SyncService, logs repositories.WebhookLogRepository, policy config.IdempotencyPolicy, logger *slog.Logger) *WebhookService {
	return &WebhookService{sync: sync, logs: logs, policy: policy, logger: logger}
}

// Process executes the sync work for one delivery and appends the audit row.
// Event failures are isolated per event; the ledger row records the combined
// outcome. The returned list names every resource that was actually written,
// so the acknowledgment can report what the delivery changed. The returned
// error reflects processing, not validity: the caller acknowledges a valid
// delivery regardless.
func (s *WebhookService) Process(ctx context.Context, payload *WebhookPayload) ([]string, error) {
	if s.policy == config.PolicyRejectDuplicates && payload.WebhookID != 0 {
		seen, err := s.logs.ExistsByWebhookID(ctx, nil, payload.WebhookID)
		if err != nil {
			return nil, fmt.Errorf("check webhook ledger: %w", err)
		}
		if seen {
			s.logger.Info("duplicate webhook delivery rejected",
				slog.Int64("webhook_id", payload.WebhookID),
				slog.String("tournament_id", payload.TournamentID))
			s.appendLog(ctx, payload, ErrDuplicateWebhook)
			return nil, ErrDuplicateWebhook
		}
	}

	updated, processErr := s.process(ctx, payload)
	s.appendLog(ctx, payload, processErr)
	return updated, processErr
}

func (s *WebhookService) process(ctx context.Context, payload *WebhookPayload) ([]string, error) {
	updated := make([]string, 0, len(payload.Events))

	initialSynced, err := s.sync.EnsureSynced(ctx, payload.TournamentID)
	if err != nil {
		return updated, fmt.Errorf("initial sync: %w", err)
	}
	if initialSynced {
		// The initial full sync already covers everything the events
		// could describe.
		return append(updated, "tournament:"+payload.TournamentID), nil
	}

	if NeedsFullSync(payload.Events) {
		if err := s.sync.FullSync(ctx, payload.TournamentID); err != nil {
			return updated, err
		}
		return append(updated, "tournament:"+payload.TournamentID), nil
	}

	var errs []error
	allCourtsSynced := false
	syncedCourts := make(map[string]bool)
	for _, ev := range payload.Events {
		switch ev.Type {
		case EventMatchUpdated:
			if ev.MatchID == "" {
				s.logger.Warn("match event without matchId, skipping",
					slog.String("tournament_id", payload.TournamentID))
				continue
			}
			synced, err := s.sync.SyncMatch(ctx, payload.TournamentID, ev.MatchID)
			if err != nil {
				errs = append(errs, fmt.Errorf("event %s(%s): %w", ev.Type, ev.MatchID, err))
			} else if synced {
				updated = append(updated, "match:"+ev.MatchID)
			}
		case EventCourtMatchChanged:
			if ev.CourtID != "" {
				if syncedCourts[ev.CourtID] {
					continue
				}
				syncedCourts[ev.CourtID] = true
				synced, err := s.sync.SyncCourt(ctx, payload.TournamentID, ev.CourtID)
				if err != nil {
					errs = append(errs, fmt.Errorf("event %s(%s): %w", ev.Type, ev.CourtID, err))
				} else if synced {
					updated = append(updated, "court:"+ev.CourtID)
				}
				continue
			}
			// No court named: refresh them all, once per delivery.
			if allCourtsSynced {
				continue
			}
			allCourtsSynced = true
			if err := s.sync.SyncCourts(ctx, payload.TournamentID); err != nil {
				errs = append(errs, fmt.Errorf("event %s: %w", ev.Type, err))
			} else {
				updated = append(updated, "courts")
			}
		default:
			s.logger.Warn("unhandled webhook event type",
				slog.String("tournament_id", payload.TournamentID),
				slog.String("event_type", ev.Type))
		}
	}
	return updated, errors.Join(errs...)
}

func (s *WebhookService) appendLog(ctx context.Context, payload *WebhookPayload, processErr error) {
	types := make(models.StringList, 0, len(payload.Events))
	for _, ev := range payload.Events {
		types = append(types, ev.Type)
	}

	row := &models.WebhookLog{
		WebhookID:    payload.WebhookID,
		TournamentID: payload.TournamentID,
		EventTypes:   types,
		Success:      processErr == nil,
	}
	if processErr != nil {
		msg := processErr.Error()
		row.ErrorMessage = &msg
	}

	if err := s.logs.Append(ctx, nil, row); err != nil {
		s.logger.Error("failed to append webhook log",
			slog.Int64("webhook_id", payload.WebhookID),
			slog.String("tournament_id", payload.TournamentID),
			slog.String("event_types", strings.Join(types, ",")),
			slog.Any("error", err))
	}
}
