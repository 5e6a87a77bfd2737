package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Rackosdra/kt-ex/kickertool"
	"github.com/Rackosdra/kt-ex/services"
)

type MatchHandler struct {
	queries      *services.QueryService
	matchService *services.MatchService
}

func NewMatchHandler(queries *services.QueryService, matchService *services.MatchService) *MatchHandler {
	return &MatchHandler{queries: queries, matchService: matchService}
}

// GetByIDHandler handles GET /matches/{matchID}.
func (h *MatchHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")

	match, err := h.queries.GetMatch(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type submitResultInput struct {
	Result kickertool.MatchResult `json:"result"`
}

// SetResultHandler handles PUT /tournaments/{tournamentID}/matches/{matchID}/result.
func (h *MatchHandler) SetResultHandler(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, false)
}

// SetLiveResultHandler handles PUT /tournaments/{tournamentID}/matches/{matchID}/live-result.
func (h *MatchHandler) SetLiveResultHandler(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, true)
}

func (h *MatchHandler) submit(w http.ResponseWriter, r *http.Request, isLive bool) {
	tournamentID := chi.URLParam(r, "tournamentID")
	matchID := chi.URLParam(r, "matchID")

	var input submitResultInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var (
		match interface{}
		err   error
	)
	if isLive {
		match, err = h.matchService.SetLiveResult(r.Context(), tournamentID, matchID, input.Result)
	} else {
		match, err = h.matchService.SetResult(r.Context(), tournamentID, matchID, input.Result)
	}
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
