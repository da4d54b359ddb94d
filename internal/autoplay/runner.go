package autoplay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/okian/oche/internal/domain/match"
	"github.com/okian/oche/internal/domain/types"
	"github.com/okian/oche/pkg/logger"
)

// ErrThrowLost is returned when a released dart never reaches the match.
var ErrThrowLost = errors.New("throw was not recorded")

// Result summarizes a finished run.
type Result struct {
	GameID   string
	Throws   int
	Busts    int
	Winner   *match.Player
	Ranking  []types.Entry
	Duration time.Duration
}

// Run plays one drag game against the service until a player wins or the
// throw budget runs out, then prints the ranking to out.
func Run(ctx context.Context, cfg *Config, out io.Writer) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	log := logger.Get().Named("autoplay")
	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)
	gen := NewGenerator(cfg.Seed, cfg.Spread)
	start := time.Now()

	log.Info(ctx, "starting autoplay",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("players", cfg.Players),
		logger.Int("maxThrows", cfg.MaxThrows),
		logger.Any("seed", cfg.Seed),
	)

	if err := client.Health(ctx); err != nil {
		return Result{}, fmt.Errorf("service health check failed: %w", err)
	}

	g, err := client.CreateGame(ctx, cfg.Players)
	if err != nil {
		return Result{}, fmt.Errorf("create game: %w", err)
	}
	res := Result{GameID: g.ID}

	for res.Throws < cfg.MaxThrows && !g.Match.Ended {
		player := g.Match.Players[g.Match.Current]
		before := g.Match.Attempts

		if err := throwDart(ctx, client, g.ID, gen.Next()); err != nil {
			return res, err
		}
		g, err = waitForThrow(ctx, client, cfg, g.ID, before)
		if err != nil {
			return res, err
		}
		res.Throws++

		if th := g.LastThrow; th != nil {
			if th.Result.Outcome == match.OutcomeBust {
				res.Busts++
			}
			if cfg.Verbose {
				log.Info(ctx, "throw",
					logger.String("player", player.Name),
					logger.Int("points", th.Points),
					logger.String("ring", th.Ring),
					logger.String("outcome", th.Result.Outcome.String()),
					logger.Int("remaining", th.Result.Remaining),
				)
			}
		}
	}

	res.Winner = g.Match.Winner
	if res.Ranking, err = client.Ranking(ctx, g.ID); err != nil {
		return res, fmt.Errorf("ranking: %w", err)
	}
	res.Duration = time.Since(start)

	printResult(out, res)
	log.Info(ctx, "autoplay finished",
		logger.String("game", res.GameID),
		logger.Int("throws", res.Throws),
		logger.Int("busts", res.Busts),
		logger.Duration("duration", res.Duration),
	)
	return res, nil
}

func throwDart(ctx context.Context, client *HTTPClient, id string, gesture Gesture) error {
	for _, ev := range gesture.Events() {
		r, err := client.Pointer(ctx, id, ev)
		if err != nil {
			return fmt.Errorf("pointer %s: %w", ev.Type, err)
		}
		if !r.Accepted {
			return fmt.Errorf("pointer %s ignored in phase %s", ev.Type, r.Aim.Phase)
		}
	}
	return nil
}

// waitForThrow polls the game until the attempt counter moves past before.
func waitForThrow(ctx context.Context, client *HTTPClient, cfg *Config, id string, before int) (types.Game, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	ticker := time.NewTicker(cfg.PollInterval)
	defer ticker.Stop()
	for {
		g, err := client.Game(ctx, id)
		if err != nil {
			return g, fmt.Errorf("poll game: %w", err)
		}
		if g.Match.Attempts > before {
			return g, nil
		}
		select {
		case <-ctx.Done():
			return g, fmt.Errorf("%w: %w", ErrThrowLost, ctx.Err())
		case <-ticker.C:
		}
	}
}
