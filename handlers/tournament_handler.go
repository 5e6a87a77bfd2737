package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Rackosdra/kt-ex/models"
	"github.com/Rackosdra/kt-ex/services"
)

type TournamentHandler struct {
	queries *services.QueryService
}

func NewTournamentHandler(queries *services.QueryService) *TournamentHandler {
	return &TournamentHandler{queries: queries}
}

// ListHandler handles GET /tournaments.
func (h *TournamentHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var state *models.TournamentState
	if s := query.Get("state"); s != "" {
		st := models.TournamentState(s)
		state = &st
	}

	limit := 50
	if limitStr := query.Get("limit"); limitStr != "" {
		v, err := strconv.Atoi(limitStr)
		if err != nil || v <= 0 || v > 200 {
			badRequestResponse(w, r, errors.New("invalid limit query parameter"))
			return
		}
		limit = v
	}
	offset := 0
	if offsetStr := query.Get("offset"); offsetStr != "" {
		v, err := strconv.Atoi(offsetStr)
		if err != nil || v < 0 {
			badRequestResponse(w, r, errors.New("invalid offset query parameter"))
			return
		}
		offset = v
	}

	tournaments, err := h.queries.ListTournaments(r.Context(), state, limit, offset)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournaments": tournaments}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler handles GET /tournaments/{tournamentID}.
func (h *TournamentHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")

	tournament, err := h.queries.GetTournament(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListEntriesHandler handles GET /tournaments/{tournamentID}/entries.
func (h *TournamentHandler) ListEntriesHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")
	disciplineID := r.URL.Query().Get("discipline_id")

	entries, err := h.queries.ListEntries(r.Context(), tournamentID, disciplineID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"entries": entries}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListMatchesHandler handles GET /tournaments/{tournamentID}/matches.
func (h *TournamentHandler) ListMatchesHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")

	var state *models.MatchState
	if s := r.URL.Query().Get("state"); s != "" {
		st := models.MatchState(s)
		state = &st
	}

	matches, err := h.queries.ListMatches(r.Context(), tournamentID, state)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListCourtsHandler handles GET /tournaments/{tournamentID}/courts.
func (h *TournamentHandler) ListCourtsHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")

	filter := services.CourtFilter(r.URL.Query().Get("filter"))
	switch filter {
	case services.CourtFilterAll, services.CourtFilterActive, services.CourtFilterFree:
	default:
		badRequestResponse(w, r, errors.New("invalid filter query parameter (want active or free)"))
		return
	}

	courts, err := h.queries.ListCourts(r.Context(), tournamentID, filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"courts": courts}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SearchHandler handles GET /tournaments/{tournamentID}/search.
func (h *TournamentHandler) SearchHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")
	query := r.URL.Query()

	limit := 0
	if limitStr := query.Get("limit"); limitStr != "" {
		v, err := strconv.Atoi(limitStr)
		if err != nil || v <= 0 {
			badRequestResponse(w, r, errors.New("invalid limit query parameter"))
			return
		}
		limit = v
	}

	result, err := h.queries.Search(r.Context(), tournamentID, query.Get("q"), limit)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
