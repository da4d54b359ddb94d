package api

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// RankingDependencies defines the interface for ranking operations.
type RankingDependencies interface {
	Ranking(ctx context.Context, id string) ([]Entry, error)
}

// RankingHandler handles ranking requests.
type RankingHandler struct {
	deps RankingDependencies
}

// NewRankingHandler creates a new ranking handler.
func NewRankingHandler(deps RankingDependencies) *RankingHandler {
	return &RankingHandler{deps: deps}
}

// HandleGetRanking handles GET /games/:id/ranking requests.
func (h *RankingHandler) HandleGetRanking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	entries, err := h.deps.Ranking(r.Context(), ps.ByName("id"))
	if err != nil {
		writeError(w, Wrap("api.ranking", err))
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
