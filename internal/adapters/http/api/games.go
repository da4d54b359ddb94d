package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/okian/oche/internal/domain/types"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 16

// GameDependencies defines the interface for game lifecycle operations.
type GameDependencies interface {
	CreateGame(ctx context.Context, req types.NewGame) (types.Game, error)
	ListGames(ctx context.Context) ([]types.Game, error)
	GetGame(ctx context.Context, id string) (types.Game, error)
	DeleteGame(ctx context.Context, id string) error
	Skip(ctx context.Context, id string) (types.Game, error)
	Restart(ctx context.Context, id string) (types.Game, error)
}

// GamesHandler handles game requests.
type GamesHandler struct {
	deps GameDependencies
}

// NewGamesHandler creates a new games handler.
func NewGamesHandler(deps GameDependencies) *GamesHandler {
	return &GamesHandler{deps: deps}
}

// HandleCreate handles POST /games requests.
func (h *GamesHandler) HandleCreate(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	const op = "api.create_game"
	var req types.NewGame
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	g, err := h.deps.CreateGame(r.Context(), req)
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	w.Header().Set("Location", "/games/"+g.ID)
	writeJSON(w, http.StatusCreated, g)
}

// HandleList handles GET /games requests.
func (h *GamesHandler) HandleList(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	games, err := h.deps.ListGames(r.Context())
	if err != nil {
		writeError(w, Wrap("api.list_games", err))
		return
	}
	if games == nil {
		games = []types.Game{}
	}
	writeJSON(w, http.StatusOK, games)
}

// HandleGet handles GET /games/:id requests.
func (h *GamesHandler) HandleGet(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	g, err := h.deps.GetGame(r.Context(), ps.ByName("id"))
	if err != nil {
		writeError(w, Wrap("api.get_game", err))
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// HandleDelete handles DELETE /games/:id requests.
func (h *GamesHandler) HandleDelete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.deps.DeleteGame(r.Context(), ps.ByName("id")); err != nil {
		writeError(w, Wrap("api.delete_game", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSkip handles POST /games/:id/skip requests.
func (h *GamesHandler) HandleSkip(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	g, err := h.deps.Skip(r.Context(), ps.ByName("id"))
	if err != nil {
		writeError(w, Wrap("api.skip", err))
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// HandleRestart handles POST /games/:id/restart requests.
func (h *GamesHandler) HandleRestart(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	g, err := h.deps.Restart(r.Context(), ps.ByName("id"))
	if err != nil {
		writeError(w, Wrap("api.restart", err))
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
