// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"

	repository "github.com/okian/oche/internal/adapters/repository"
	service "github.com/okian/oche/internal/app"
	"github.com/okian/oche/internal/domain/aiming"
	"github.com/okian/oche/internal/domain/match"
	"github.com/okian/oche/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	GameDependencies
	AimDependencies
	RankingDependencies
	StreamDependencies
	StatsProvider
}

// Server wires HTTP routes for the game API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	scoreHandler   *ScoreHandler
	gamesHandler   *GamesHandler
	aimHandler     *AimHandler
	rankingHandler *RankingHandler
	streamHandler  *StreamHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(deps),
		scoreHandler:   NewScoreHandler(),
		gamesHandler:   NewGamesHandler(deps),
		aimHandler:     NewAimHandler(deps),
		rankingHandler: NewRankingHandler(deps),
		streamHandler:  NewStreamHandler(deps),
	}
}

// Register attaches all HTTP routes to router.
func (s *Server) Register(_ context.Context, router *httprouter.Router) {
	if router == nil {
		panic("router is nil")
	}
	router.GET("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	router.GET("/metrics", MetricsMiddleware(s.healthHandler.HandleHealth, "metrics"))
	router.GET("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	router.GET("/score", MetricsMiddleware(s.scoreHandler.HandleScore, "score"))

	router.POST("/games", MetricsMiddleware(s.gamesHandler.HandleCreate, "games_create"))
	router.GET("/games", MetricsMiddleware(s.gamesHandler.HandleList, "games_list"))
	router.GET("/games/:id", MetricsMiddleware(s.gamesHandler.HandleGet, "games_get"))
	router.DELETE("/games/:id", MetricsMiddleware(s.gamesHandler.HandleDelete, "games_delete"))
	router.POST("/games/:id/skip", MetricsMiddleware(s.gamesHandler.HandleSkip, "games_skip"))
	router.POST("/games/:id/restart", MetricsMiddleware(s.gamesHandler.HandleRestart, "games_restart"))

	router.POST("/games/:id/aim/lock", MetricsMiddleware(s.aimHandler.HandleLock, "aim_lock"))
	router.POST("/games/:id/aim/pointer", MetricsMiddleware(s.aimHandler.HandlePointer, "aim_pointer"))

	router.GET("/games/:id/ranking", MetricsMiddleware(s.rankingHandler.HandleGetRanking, "ranking"))
	router.GET("/games/:id/stream", MetricsMiddleware(s.streamHandler.HandleStream, "stream"))

	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, NewKind("api.route", ErrNotFound))
	})
	router.HandleMethodNotAllowed = false
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// statusFor maps upstream sentinels to an HTTP status and error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, match.ErrInvalidPlayerCount),
		errors.Is(err, aiming.ErrUnknownVariant),
		errors.Is(err, service.ErrInvalidPointer):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, service.ErrWrongVariant):
		return http.StatusConflict, "wrong_variant"
	case errors.Is(err, match.ErrMatchOver):
		return http.StatusConflict, "match_over"
	case errors.Is(err, match.ErrTurnNotStarted):
		return http.StatusConflict, "turn_not_started"
	case errors.Is(err, service.ErrBackpressure):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, repository.ErrCapacity):
		return http.StatusTooManyRequests, "capacity"
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "unavailable"
	}
	return http.StatusInternalServerError, "internal_error"
}

// Entry mirrors the read shape returned by ranking queries.
type Entry = types.Entry
