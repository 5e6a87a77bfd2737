package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Rackosdra/kt-ex/services"
)

type CourtHandler struct {
	queries *services.QueryService
}

func NewCourtHandler(queries *services.QueryService) *CourtHandler {
	return &CourtHandler{queries: queries}
}

// GetByIDHandler handles GET /courts/{courtID}.
func (h *CourtHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	courtID := chi.URLParam(r, "courtID")

	court, err := h.queries.GetCourt(r.Context(), courtID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, court, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
