package service

import (
	"sync"
	"time"

	"github.com/okian/oche/internal/domain/aiming"
	"github.com/okian/oche/internal/domain/match"
	"github.com/okian/oche/internal/domain/model"
	"github.com/okian/oche/internal/domain/types"
)

// game is one live board: a match, the controller aiming at it, and the
// reorder buffer that applies scored throws in emission order.
type game struct {
	id        string
	variant   aiming.Variant
	createdAt time.Time
	ctrl      aiming.Controller

	mu    sync.Mutex
	match *match.Match
	// nextSeq is the last sequence number handed out, applied the last one
	// taken out of the buffer. Throws at or below restartSeq belong to a
	// match that was restarted and are discarded.
	nextSeq    uint64
	applied    uint64
	restartSeq uint64
	buffer     map[uint64]*model.ScoredThrow
	lastThrow  *types.Throw
}

// assignSeq hands out the next sequence number for a release of the given
// controller epoch. Restart and the win both disable the controller under
// g.mu, so a release checked here is either numbered before restartSeq is
// taken or found stale.
func (g *game) assignSeq(epoch uint64) (uint64, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.ctrl.Current(epoch) {
		return 0, false
	}
	g.nextSeq++
	return g.nextSeq, true
}

// settleLocked stores the outcome of seq (nil for a throw that was lost) and
// applies every throw that is now contiguous. It returns the applied throws.
func (g *game) settleLocked(seq uint64, st *model.ScoredThrow) []types.Throw {
	if seq <= g.applied {
		return nil
	}
	g.buffer[seq] = st

	var out []types.Throw
	for {
		next, ok := g.buffer[g.applied+1]
		if !ok {
			return out
		}
		delete(g.buffer, g.applied+1)
		g.applied++
		if next == nil || g.applied <= g.restartSeq {
			continue
		}
		res, err := g.match.Record(next.Points)
		if err != nil {
			// thrown before the win was applied
			continue
		}
		th := types.Throw{
			ThrowID:   next.ThrowID,
			Seq:       next.Seq,
			Impact:    next.Impact,
			Points:    next.Points,
			Ring:      next.Ring,
			Distance:  next.Distance,
			Result:    res,
			AppliedAt: time.Now(),
		}
		g.lastThrow = &th
		out = append(out, th)
	}
}

func (g *game) viewLocked() types.Game {
	return types.Game{
		ID:        g.id,
		Variant:   g.variant,
		CreatedAt: g.createdAt,
		Match:     g.match.Snapshot(),
		Aim:       g.ctrl.State(),
		Pending:   int(g.nextSeq - g.applied),
		LastThrow: g.lastThrow,
	}
}

func (g *game) view() types.Game {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.viewLocked()
}
