package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Rackosdra/kt-ex/repositories"
	"github.com/Rackosdra/kt-ex/services"
)

// AdminHandler hosts the operator surface: login, manual syncs, tournament
// removal and ledger maintenance.
type AdminHandler struct {
	authService *services.AuthService
	syncService *services.SyncService
	tournaments repositories.TournamentRepository
	webhookLogs repositories.WebhookLogRepository
	logger      *slog.Logger
}

func NewAdminHandler(
	authService *services.AuthService,
	syncService *services.SyncService,
	tournaments repositories.TournamentRepository,
	webhookLogs repositories.WebhookLogRepository,
	logger *slog.Logger,
) *AdminHandler {
	return &AdminHandler{
		authService: authService,
		syncService: syncService,
		tournaments: tournaments,
		webhookLogs: webhookLogs,
		logger:      logger,
	}
}

type loginInput struct {
	Password string `json:"password"`
}

// LoginHandler handles POST /admin/login.
func (h *AdminHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var input loginInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Password == "" {
		badRequestResponse(w, r, errors.New("password must not be empty"))
		return
	}

	token, err := h.authService.Login(input.Password)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"token": token}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// TriggerSyncHandler handles POST /admin/tournaments/{tournamentID}/sync.
func (h *AdminHandler) TriggerSyncHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")

	h.logger.Info("manual full sync requested", slog.String("tournament_id", tournamentID))
	if err := h.syncService.FullSync(r.Context(), tournamentID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"status": "synced"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteTournamentHandler handles DELETE /admin/tournaments/{tournamentID}.
// The cascade removes the whole mirrored tree.
func (h *AdminHandler) DeleteTournamentHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")

	if err := h.tournaments.Delete(r.Context(), nil, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			notFoundResponse(w, r)
			return
		}
		serverErrorResponse(w, r, err)
		return
	}

	h.logger.Info("tournament deleted", slog.String("tournament_id", tournamentID))
	w.WriteHeader(http.StatusNoContent)
}

// ResetWebhookLogsHandler handles DELETE /admin/webhook-logs.
func (h *AdminHandler) ResetWebhookLogsHandler(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.webhookLogs.DeleteAll(r.Context(), nil)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	h.logger.Info("webhook ledger reset", slog.Int64("deleted", deleted))
	if err := writeJSON(w, http.StatusOK, jsonResponse{"deleted": deleted}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListWebhookLogsHandler handles GET /admin/tournaments/{tournamentID}/webhook-logs.
func (h *AdminHandler) ListWebhookLogsHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")

	logs, err := h.webhookLogs.ListByTournament(r.Context(), nil, tournamentID, 100)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"webhook_logs": logs}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
