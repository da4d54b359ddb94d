package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/oche/internal/adapters/repository"
	"github.com/okian/oche/internal/domain/aiming"
	"github.com/okian/oche/internal/domain/match"
	"github.com/okian/oche/internal/domain/model"
	"github.com/okian/oche/internal/domain/types"
	"github.com/okian/oche/pkg/logger"
	"github.com/okian/oche/pkg/metrics"
)

// CreateGame seats the players and starts the first aim session.
func (s *Service) CreateGame(ctx context.Context, req types.NewGame) (types.Game, error) {
	if err := s.running(); err != nil {
		return types.Game{}, err
	}

	variant := s.defaultVariant
	if req.Variant != "" {
		v, err := aiming.ParseVariant(req.Variant)
		if err != nil {
			return types.Game{}, err
		}
		variant = v
	}

	m, err := match.New(req.Players,
		match.WithTargetScore(s.targetScore),
		match.WithThrowsPerTurn(s.throwsPerTurn),
		match.WithNames(req.Names...),
		match.WithColors(req.Colors...),
	)
	if err != nil {
		return types.Game{}, err
	}

	g := &game{
		id:        uuid.NewString(),
		variant:   variant,
		createdAt: time.Now().UTC(),
		match:     m,
		buffer:    make(map[uint64]*model.ScoredThrow),
	}
	opts := append([]aiming.Option{
		aiming.WithObserver(func(st aiming.State) { s.publishAim(g.id, st) }),
	}, s.aimOptions...)
	ctrl, err := aiming.New(variant, func(rel aiming.Release) { s.emit(g, rel) }, opts...)
	if err != nil {
		return types.Game{}, err
	}
	g.ctrl = ctrl

	s.hub.openGame(g.id)
	if err := s.games.Put(ctx, g.id, g); err != nil {
		s.hub.closeGame(g.id)
		ctrl.Close()
		return types.Game{}, err
	}
	metrics.RecordGameStarted()
	metrics.UpdateGamesActive(s.games.Count(ctx))
	s.logger.Info(ctx, "game created",
		logger.String("game", g.id),
		logger.String("variant", variant.String()),
		logger.Int("players", req.Players),
	)
	return g.view(), nil
}

func (s *Service) game(ctx context.Context, id string) (*game, error) {
	if err := s.running(); err != nil {
		return nil, err
	}
	return s.games.Get(ctx, id)
}

// GetGame returns the current view of a game.
func (s *Service) GetGame(ctx context.Context, id string) (types.Game, error) {
	g, err := s.game(ctx, id)
	if err != nil {
		return types.Game{}, err
	}
	return g.view(), nil
}

// ListGames returns every live game.
func (s *Service) ListGames(ctx context.Context) ([]types.Game, error) {
	if err := s.running(); err != nil {
		return nil, err
	}
	games := s.games.List(ctx)
	out := make([]types.Game, len(games))
	for i, g := range games {
		out[i] = g.view()
	}
	return out, nil
}

// DeleteGame tears a game down and disconnects its streams.
func (s *Service) DeleteGame(ctx context.Context, id string) error {
	if err := s.running(); err != nil {
		return err
	}
	g, err := s.games.Delete(ctx, id)
	if err != nil {
		return err
	}
	g.ctrl.Close()
	s.hub.closeGame(id)
	metrics.RecordSessionCancelled()
	metrics.UpdateGamesActive(s.games.Count(ctx))
	s.logger.Info(ctx, "game deleted", logger.String("game", id))
	return nil
}

// Lock locks the sweeping axis of an oscillation game.
func (s *Service) Lock(ctx context.Context, id string) (types.AimResult, error) {
	g, err := s.game(ctx, id)
	if err != nil {
		return types.AimResult{}, err
	}
	l, ok := g.ctrl.(aiming.Locker)
	if !ok {
		return types.AimResult{}, fmt.Errorf("%w: lock on a %s game", ErrWrongVariant, g.variant)
	}
	accepted := l.Lock()
	if accepted {
		metrics.RecordAimAction("lock")
	}
	return types.AimResult{Accepted: accepted, Aim: l.State()}, nil
}

// Pointer feeds one pointer event to a drag game.
func (s *Service) Pointer(ctx context.Context, id string, ev types.PointerEvent) (types.AimResult, error) {
	g, err := s.game(ctx, id)
	if err != nil {
		return types.AimResult{}, err
	}
	p, ok := g.ctrl.(aiming.Pointer)
	if !ok {
		return types.AimResult{}, fmt.Errorf("%w: pointer on a %s game", ErrWrongVariant, g.variant)
	}

	var accepted bool
	switch ev.Type {
	case types.PointerDown:
		accepted = p.PointerDown(ev.X, ev.Y)
	case types.PointerMove:
		accepted = p.PointerMove(ev.X, ev.Y)
	case types.PointerUp:
		accepted = p.PointerUp()
	default:
		return types.AimResult{}, fmt.Errorf("%w: %q", ErrInvalidPointer, ev.Type)
	}
	if accepted {
		metrics.RecordAimAction(ev.Type)
	}
	return types.AimResult{Accepted: accepted, Aim: p.State()}, nil
}

// Skip passes the turn to the next player.
func (s *Service) Skip(ctx context.Context, id string) (types.Game, error) {
	g, err := s.game(ctx, id)
	if err != nil {
		return types.Game{}, err
	}
	g.mu.Lock()
	err = g.match.Skip()
	view := g.viewLocked()
	g.mu.Unlock()
	if err != nil {
		return types.Game{}, err
	}
	s.publishGame(view)
	return view, nil
}

// Restart resets scores, discards throws still in flight and starts a fresh
// aim session.
func (s *Service) Restart(ctx context.Context, id string) (types.Game, error) {
	g, err := s.game(ctx, id)
	if err != nil {
		return types.Game{}, err
	}
	g.mu.Lock()
	g.match.Restart()
	g.restartSeq = g.nextSeq
	g.lastThrow = nil
	g.ctrl.SetDisabled(true)
	g.ctrl.SetDisabled(false)
	view := g.viewLocked()
	g.mu.Unlock()

	metrics.RecordSessionCancelled()
	s.publishGame(view)
	s.logger.Info(ctx, "game restarted", logger.String("game", id))
	return view, nil
}

// Ranking orders the players of a game by remaining score.
func (s *Service) Ranking(ctx context.Context, id string) ([]types.Entry, error) {
	g, err := s.game(ctx, id)
	if err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return types.Ranking(g.match.Ranking()), nil
}

// Subscribe streams the updates of a game until cancel is called or the
// game is deleted. The first update is the current game view.
func (s *Service) Subscribe(ctx context.Context, id string) (<-chan types.Update, func(), error) {
	g, err := s.game(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	view := g.view()
	ch, cancel, ok := s.hub.subscribe(id, types.Update{Type: types.UpdateGame, GameID: id, Game: &view})
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", repository.ErrNotFound, id)
	}
	return ch, cancel, nil
}
