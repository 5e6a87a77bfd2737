package handlers

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/Rackosdra/kt-ex/services"
)

type WebhookHandler struct {
	webhookService *services.WebhookService
	logger         *slog.Logger
}

func NewWebhookHandler(webhookService *services.WebhookService, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{webhookService: webhookService, logger: logger}
}

// ReceiveHandler handles POST /webhook/kickertool.
//
// A structurally valid delivery is always acknowledged with 200, even when
// processing fails: the platform treats non-2xx as a delivery failure and
// retries, and a retry of a sync that failed on our side only repeats the
// failure. Failures land in the webhook ledger instead.
func (h *WebhookHandler) ReceiveHandler(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1_048_576))
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	payload, err := services.ParseWebhookPayload(body)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	updated, err := h.webhookService.Process(r.Context(), payload)
	if err != nil {
		h.logger.Error("webhook processing failed",
			slog.Int64("webhook_id", payload.WebhookID),
			slog.String("tournament_id", payload.TournamentID),
			slog.Any("error", err))
	}
	if updated == nil {
		updated = make([]string, 0)
	}

	resp := jsonResponse{
		"status":            "ok",
		"updated_resources": updated,
	}
	if err := writeJSON(w, http.StatusOK, resp, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// TestHandler handles POST /webhook/test: it validates and classifies a
// delivery without touching the store or the platform, so an operator can
// check what a payload would trigger.
func (h *WebhookHandler) TestHandler(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1_048_576))
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	payload, err := services.ParseWebhookPayload(body)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matchIDs := make([]string, 0)
	courtIDs := make([]string, 0)
	courtSync := false
	for _, ev := range payload.Events {
		switch ev.Type {
		case services.EventMatchUpdated:
			if ev.MatchID != "" {
				matchIDs = append(matchIDs, ev.MatchID)
			}
		case services.EventCourtMatchChanged:
			if ev.CourtID != "" {
				courtIDs = append(courtIDs, ev.CourtID)
			} else {
				courtSync = true
			}
		}
	}

	resp := jsonResponse{
		"webhook_id":    payload.WebhookID,
		"tournament_id": payload.TournamentID,
		"events":        payload.Events,
		"full_sync":     services.NeedsFullSync(payload.Events),
		"match_syncs":   matchIDs,
		"court_syncs":   courtIDs,
		"court_sync":    courtSync,
	}
	if err := writeJSON(w, http.StatusOK, resp, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
