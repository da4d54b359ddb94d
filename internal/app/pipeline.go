package service

import (
	"context"
	"errors"

	eventqueue "github.com/okian/oche/internal/adapters/mq/queue"
	"github.com/okian/oche/internal/domain/aiming"
	"github.com/okian/oche/internal/domain/match"
	"github.com/okian/oche/internal/domain/model"
	"github.com/okian/oche/internal/domain/types"
	"github.com/okian/oche/pkg/logger"
	"github.com/okian/oche/pkg/metrics"
)

// emit is the ThrowFunc of every controller. It stamps the impact and hands
// it to the scoring queue. A release from an epoch that a restart, a win or
// a delete abandoned is dropped before it gets a sequence number. A throw
// the queue refuses is settled as lost so later throws of the game are not
// held back.
func (s *Service) emit(g *game, rel aiming.Release) {
	ctx := context.Background()
	seq, ok := g.assignSeq(rel.Epoch)
	if !ok {
		metrics.RecordSessionCancelled()
		s.logger.Debug(ctx, "stale release dropped",
			logger.String("game", g.id),
			logger.Uint64("session", rel.Session),
		)
		return
	}
	impact := rel.Impact
	t := model.NewThrow(g.id, seq, impact, g.variant)

	if s.deduper.SeenAndRecord(ctx, t.ThrowID) {
		metrics.RecordThrowDuplicate()
		s.logger.Warn(ctx, "duplicate throw id", logger.String("throw", t.ThrowID))
		s.settle(ctx, g, t.Seq, nil)
		return
	}

	if err := s.throwQueue.Enqueue(ctx, t); err != nil {
		s.deduper.Unrecord(ctx, t.ThrowID)
		metrics.RecordThrowDropped()
		if errors.Is(err, eventqueue.ErrQueueFull) {
			err = errors.Join(ErrBackpressure, err)
		}
		s.logger.Error(ctx, "throw dropped",
			logger.String("game", g.id),
			logger.Uint64("seq", t.Seq),
			logger.Error(err),
		)
		s.settle(ctx, g, t.Seq, nil)
		return
	}
	s.logger.Debug(ctx, "throw queued",
		logger.String("game", g.id),
		logger.Uint64("seq", t.Seq),
		logger.Float64("h", impact.H),
		logger.Float64("v", impact.V),
	)
}

// Apply implements worker.Updater.
func (s *Service) Apply(ctx context.Context, st model.ScoredThrow) error {
	g, err := s.games.Get(ctx, st.GameID)
	if err != nil {
		return err
	}
	s.settle(ctx, g, st.Seq, &st)
	return nil
}

// Fail implements worker.Updater.
func (s *Service) Fail(ctx context.Context, t model.Throw, err error) {
	s.logger.Error(ctx, "throw could not be scored",
		logger.String("game", t.GameID),
		logger.Uint64("seq", t.Seq),
		logger.Error(err),
	)
	g, gerr := s.games.Get(ctx, t.GameID)
	if gerr != nil {
		return
	}
	s.settle(ctx, g, t.Seq, nil)
}

// settle records the outcome of one throw, applies whatever became
// contiguous, and disables the controller once the match is won.
func (s *Service) settle(ctx context.Context, g *game, seq uint64, st *model.ScoredThrow) {
	g.mu.Lock()
	applied := g.settleLocked(seq, st)
	if g.match.Ended() {
		g.ctrl.SetDisabled(true)
	}
	view := g.viewLocked()
	g.mu.Unlock()

	for i := range applied {
		th := applied[i]
		switch th.Result.Outcome {
		case match.OutcomeBust:
			metrics.RecordBust()
		case match.OutcomeWin:
			metrics.RecordWin()
		}
		s.logger.Info(ctx, "throw applied",
			logger.String("game", g.id),
			logger.Uint64("seq", th.Seq),
			logger.Int("player", th.Result.PlayerID),
			logger.Int("points", th.Points),
			logger.String("outcome", th.Result.Outcome.String()),
			logger.Int("remaining", th.Result.Remaining),
		)
		s.hub.publish(types.Update{Type: types.UpdateThrow, GameID: g.id, Throw: &th})
	}

	if len(applied) > 0 {
		s.publishGame(view)
	}
}

func (s *Service) publishAim(gameID string, st aiming.State) {
	s.hub.publish(types.Update{Type: types.UpdateAim, GameID: gameID, Aim: &st})
}

func (s *Service) publishGame(view types.Game) {
	s.hub.publish(types.Update{Type: types.UpdateGame, GameID: view.ID, Game: &view})
}
