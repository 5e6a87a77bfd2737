package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Rackosdra/kt-ex/services"
)

type GroupHandler struct {
	queries *services.QueryService
}

func NewGroupHandler(queries *services.QueryService) *GroupHandler {
	return &GroupHandler{queries: queries}
}

// GetDetailHandler handles GET /groups/{groupID}.
func (h *GroupHandler) GetDetailHandler(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")

	detail, err := h.queries.GetGroupDetail(r.Context(), groupID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, detail, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
