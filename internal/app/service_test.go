package service_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	service "github.com/okian/oche/internal/app"
	"github.com/okian/oche/internal/adapters/repository"
	"github.com/okian/oche/internal/domain/aiming"
	"github.com/okian/oche/internal/domain/match"
	"github.com/okian/oche/internal/domain/types"
	"github.com/okian/oche/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	_ = logger.SetLevelString("error")
}

func newService(opts ...service.Option) *service.Service {
	base := []service.Option{
		service.WithWorkerCount(2),
		service.WithQueueSize(64),
		service.WithAimOptions(
			aiming.WithReleaseDelay(time.Millisecond),
			aiming.WithSettleDelay(time.Millisecond),
			aiming.WithFlightDuration(time.Millisecond),
			aiming.WithTickInterval(time.Millisecond),
		),
	}
	return service.New(append(base, opts...)...)
}

func eventually(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(2 * time.Millisecond)
	}
	return cond()
}

// drag plays one full gesture on a drag game.
func drag(ctx context.Context, svc *service.Service, id string, dx, dy float64) {
	for _, ev := range []types.PointerEvent{
		{Type: types.PointerDown, X: 100, Y: 100},
		{Type: types.PointerMove, X: 100 + dx, Y: 100 + dy},
		{Type: types.PointerUp},
	} {
		res, err := svc.Pointer(ctx, id, ev)
		So(err, ShouldBeNil)
		So(res.Accepted, ShouldBeTrue)
	}
}

func TestServiceLifecycle(t *testing.T) {
	Convey("Given a service that was never started", t, func() {
		svc := newService()
		ctx := context.Background()

		Convey("Then game operations fail with ErrNotStarted", func() {
			_, err := svc.CreateGame(ctx, types.NewGame{Players: 2})
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			_, err = svc.ListGames(ctx)
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			So(svc.GetStats().Started, ShouldBeFalse)
		})

		Convey("When it is started twice and stopped twice", func() {
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.Start(ctx), ShouldBeNil)
			stats := svc.GetStats()
			svc.Stop()
			svc.Stop()

			Convey("Then stats reflect the running service", func() {
				So(stats.Started, ShouldBeTrue)
				So(stats.WorkerCount, ShouldEqual, 2)
				So(stats.QueueCapacity, ShouldEqual, 64)
				So(svc.GetStats().Started, ShouldBeFalse)
			})
		})
	})
}

func TestCreateGame(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := newService(service.WithMaxGames(2))
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When a game is created with defaults", func() {
			g, err := svc.CreateGame(ctx, types.NewGame{Players: 3, Names: []string{"Ana"}})
			So(err, ShouldBeNil)

			Convey("Then it is an oscillation game at 501", func() {
				So(g.ID, ShouldNotBeEmpty)
				So(g.Variant, ShouldEqual, aiming.VariantOscillation)
				So(g.Aim.Phase, ShouldEqual, aiming.PhaseHorizontal)
				So(g.Match.Players, ShouldHaveLength, 3)
				So(g.Match.Players[0].Name, ShouldEqual, "Ana")
				So(g.Match.TargetScore, ShouldEqual, 501)
			})

			Convey("Then it is listed and counted", func() {
				list, err := svc.ListGames(ctx)
				So(err, ShouldBeNil)
				So(list, ShouldHaveLength, 1)
				So(svc.GetStats().Games, ShouldEqual, 1)
			})

			Convey("And deleted", func() {
				So(svc.DeleteGame(ctx, g.ID), ShouldBeNil)

				Convey("Then it is gone", func() {
					_, err := svc.GetGame(ctx, g.ID)
					So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
					So(errors.Is(svc.DeleteGame(ctx, g.ID), repository.ErrNotFound), ShouldBeTrue)
				})
			})
		})

		Convey("When the request is invalid", func() {
			_, err := svc.CreateGame(ctx, types.NewGame{Players: 1})
			So(errors.Is(err, match.ErrInvalidPlayerCount), ShouldBeTrue)

			_, err = svc.CreateGame(ctx, types.NewGame{Players: 2, Variant: "laser"})
			So(errors.Is(err, aiming.ErrUnknownVariant), ShouldBeTrue)
		})

		Convey("When the registry is full", func() {
			for i := 0; i < 2; i++ {
				_, err := svc.CreateGame(ctx, types.NewGame{Players: 2})
				So(err, ShouldBeNil)
			}
			_, err := svc.CreateGame(ctx, types.NewGame{Players: 2})

			Convey("Then creation fails with ErrCapacity", func() {
				So(errors.Is(err, repository.ErrCapacity), ShouldBeTrue)
			})
		})
	})
}

func TestDragThrow(t *testing.T) {
	Convey("Given a drag game", t, func() {
		svc := newService()
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		g, err := svc.CreateGame(ctx, types.NewGame{Players: 2, Variant: "drag"})
		So(err, ShouldBeNil)

		Convey("When the player drags 30 right and 40 down", func() {
			drag(ctx, svc, g.ID, 30, 40)

			Convey("Then 15 points come off the first player", func() {
				So(eventually(func() bool {
					v, _ := svc.GetGame(ctx, g.ID)
					return v.LastThrow != nil
				}), ShouldBeTrue)
				v, err := svc.GetGame(ctx, g.ID)
				So(err, ShouldBeNil)
				So(v.LastThrow.Points, ShouldEqual, 15)
				So(v.LastThrow.Ring, ShouldEqual, "middle")
				So(v.Match.Players[0].Remaining, ShouldEqual, 486)
				So(v.Match.ThrowsInTurn, ShouldEqual, 1)
				So(v.Pending, ShouldEqual, 0)
			})
		})

		Convey("When an oscillation input is sent", func() {
			_, err := svc.Lock(ctx, g.ID)

			Convey("Then it is refused", func() {
				So(errors.Is(err, service.ErrWrongVariant), ShouldBeTrue)
			})
		})

		Convey("When an unknown pointer type is sent", func() {
			_, err := svc.Pointer(ctx, g.ID, types.PointerEvent{Type: "hover"})

			Convey("Then it is refused", func() {
				So(errors.Is(err, service.ErrInvalidPointer), ShouldBeTrue)
			})
		})

		Convey("When a move arrives without a press", func() {
			res, err := svc.Pointer(ctx, g.ID, types.PointerEvent{Type: types.PointerMove, X: 5, Y: 5})

			Convey("Then it is ignored", func() {
				So(err, ShouldBeNil)
				So(res.Accepted, ShouldBeFalse)
				So(res.Aim.Phase, ShouldEqual, aiming.PhaseIdle)
			})
		})
	})
}

func TestWinAndRestart(t *testing.T) {
	Convey("Given a drag game to 50", t, func() {
		svc := newService(service.WithTargetScore(50))
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		g, err := svc.CreateGame(ctx, types.NewGame{Players: 2, Variant: "drag"})
		So(err, ShouldBeNil)

		Convey("When the first player hits the bullseye", func() {
			drag(ctx, svc, g.ID, 0, 100)
			So(eventually(func() bool {
				v, _ := svc.GetGame(ctx, g.ID)
				return v.Match.Ended
			}), ShouldBeTrue)

			Convey("Then the player wins and aiming is disabled", func() {
				v, _ := svc.GetGame(ctx, g.ID)
				So(v.Match.Winner.ID, ShouldEqual, 1)
				So(v.Aim.Disabled, ShouldBeTrue)
				res, err := svc.Pointer(ctx, g.ID, types.PointerEvent{Type: types.PointerDown})
				So(err, ShouldBeNil)
				So(res.Accepted, ShouldBeFalse)
				_, err = svc.Skip(ctx, g.ID)
				So(errors.Is(err, match.ErrMatchOver), ShouldBeTrue)
			})

			Convey("And the game is restarted", func() {
				v, err := svc.Restart(ctx, g.ID)
				So(err, ShouldBeNil)

				Convey("Then scores reset and aiming is live again", func() {
					So(v.Match.Ended, ShouldBeFalse)
					So(v.Match.Players[0].Remaining, ShouldEqual, 50)
					So(v.Aim.Disabled, ShouldBeFalse)
					So(v.LastThrow, ShouldBeNil)
					res, err := svc.Pointer(ctx, g.ID, types.PointerEvent{Type: types.PointerDown})
					So(err, ShouldBeNil)
					So(res.Accepted, ShouldBeTrue)
				})
			})
		})
	})
}

func TestRestartDropsAbandonedRelease(t *testing.T) {
	Convey("Given a drag game restarted the moment a dart resolves", t, func() {
		ctx := context.Background()
		var (
			svc       *service.Service
			gameID    string
			fired     atomic.Bool
			restarted = make(chan struct{})
		)
		svc = newService(service.WithAimOptions(aiming.WithObserver(func(st aiming.State) {
			if st.Impact == nil || !fired.CompareAndSwap(false, true) {
				return
			}
			_, _ = svc.Restart(ctx, gameID)
			close(restarted)
		})))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		g, err := svc.CreateGame(ctx, types.NewGame{Players: 2, Variant: "drag"})
		So(err, ShouldBeNil)
		gameID = g.ID

		Convey("When the resolved dart would be emitted after the restart", func() {
			drag(ctx, svc, g.ID, 30, 40)
			select {
			case <-restarted:
			case <-time.After(2 * time.Second):
				So("restart never ran", ShouldBeEmpty)
			}
			drag(ctx, svc, g.ID, 30, 40)
			So(eventually(func() bool {
				v, _ := svc.GetGame(ctx, g.ID)
				return v.Match.Attempts >= 1 && v.Pending == 0
			}), ShouldBeTrue)
			time.Sleep(20 * time.Millisecond)

			Convey("Then only the throw of the new session is scored", func() {
				v, _ := svc.GetGame(ctx, g.ID)
				So(v.Match.Attempts, ShouldEqual, 1)
				So(v.Match.Players[0].Remaining, ShouldEqual, 486)
				So(v.Pending, ShouldEqual, 0)
			})
		})
	})
}

func TestSkipAndRanking(t *testing.T) {
	Convey("Given a fresh drag game", t, func() {
		svc := newService()
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()
		g, _ := svc.CreateGame(ctx, types.NewGame{Players: 2, Variant: "drag"})

		Convey("When the turn is skipped before a throw", func() {
			_, err := svc.Skip(ctx, g.ID)

			Convey("Then it is refused", func() {
				So(errors.Is(err, match.ErrTurnNotStarted), ShouldBeTrue)
			})
		})

		Convey("When the first player throws and skips", func() {
			drag(ctx, svc, g.ID, 0, 100)
			So(eventually(func() bool {
				v, _ := svc.GetGame(ctx, g.ID)
				return v.Match.Attempts == 1
			}), ShouldBeTrue)
			v, err := svc.Skip(ctx, g.ID)
			So(err, ShouldBeNil)

			Convey("Then the second player is up and the first leads", func() {
				So(v.Match.Current, ShouldEqual, 1)
				r, err := svc.Ranking(ctx, g.ID)
				So(err, ShouldBeNil)
				So(r[0].PlayerID, ShouldEqual, 1)
				So(r[0].Remaining, ShouldEqual, 451)
				So(r[1].Rank, ShouldEqual, 2)
			})
		})
	})
}

func TestOscillationLock(t *testing.T) {
	Convey("Given an oscillation game", t, func() {
		svc := newService()
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()
		g, _ := svc.CreateGame(ctx, types.NewGame{Players: 2, Variant: "oscillation"})

		Convey("When a pointer event is sent", func() {
			_, err := svc.Pointer(ctx, g.ID, types.PointerEvent{Type: types.PointerDown})

			Convey("Then it is refused", func() {
				So(errors.Is(err, service.ErrWrongVariant), ShouldBeTrue)
			})
		})

		Convey("When both axes are locked", func() {
			res, err := svc.Lock(ctx, g.ID)
			So(err, ShouldBeNil)
			So(res.Accepted, ShouldBeTrue)
			So(eventually(func() bool {
				v, _ := svc.GetGame(ctx, g.ID)
				return v.Aim.Phase == aiming.PhaseVertical
			}), ShouldBeTrue)
			res, err = svc.Lock(ctx, g.ID)
			So(err, ShouldBeNil)
			So(res.Accepted, ShouldBeTrue)

			Convey("Then a throw is recorded", func() {
				So(eventually(func() bool {
					v, _ := svc.GetGame(ctx, g.ID)
					return v.Match.Attempts == 1
				}), ShouldBeTrue)
			})
		})
	})
}

func TestSubscribe(t *testing.T) {
	Convey("Given a drag game with a subscriber", t, func() {
		svc := newService()
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()
		g, _ := svc.CreateGame(ctx, types.NewGame{Players: 2, Variant: "drag"})

		updates, cancel, err := svc.Subscribe(ctx, g.ID)
		So(err, ShouldBeNil)
		defer cancel()

		Convey("Then the first update is the game view", func() {
			u := <-updates
			So(u.Type, ShouldEqual, types.UpdateGame)
			So(u.Game.ID, ShouldEqual, g.ID)
			So(svc.GetStats().Subscribers, ShouldEqual, 1)
		})

		Convey("When the player presses", func() {
			<-updates
			_, err := svc.Pointer(ctx, g.ID, types.PointerEvent{Type: types.PointerDown, X: 1, Y: 1})
			So(err, ShouldBeNil)

			Convey("Then an aim update follows", func() {
				select {
				case u := <-updates:
					So(u.Type, ShouldEqual, types.UpdateAim)
					So(u.Aim.Phase, ShouldEqual, aiming.PhaseDragging)
				case <-time.After(time.Second):
					So("no aim update", ShouldBeEmpty)
				}
			})
		})

		Convey("When the game is deleted", func() {
			So(svc.DeleteGame(ctx, g.ID), ShouldBeNil)

			Convey("Then the stream ends", func() {
				for range updates {
				}
				So(svc.GetStats().Subscribers, ShouldEqual, 0)
			})
		})

		Convey("When the subscriber cancels", func() {
			cancel()
			cancel()

			Convey("Then the stream ends", func() {
				for range updates {
				}
			})
		})

		Convey("When an unknown game is subscribed", func() {
			_, _, err := svc.Subscribe(ctx, "missing")

			Convey("Then it fails with ErrNotFound", func() {
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})
	})
}
