package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/okian/oche/internal/config"
	"github.com/okian/oche/internal/domain/aiming"
	"github.com/okian/oche/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func TestNewService(t *testing.T) {
	convey.Convey("Given configuration from the environment", t, func() {
		_ = os.Setenv("OCHE_WORKER_COUNT", "2")
		_ = os.Setenv("OCHE_DEFAULT_VARIANT", "drag")
		defer func() {
			_ = os.Unsetenv("OCHE_WORKER_COUNT")
			_ = os.Unsetenv("OCHE_DEFAULT_VARIANT")
		}()

		ctx := context.Background()
		cfg, err := config.Load(ctx)
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When the service is built and started", func() {
			svc, err := newService(cfg, logger.Get())
			convey.So(err, convey.ShouldBeNil)
			convey.So(svc.Start(ctx), convey.ShouldBeNil)
			defer svc.Stop()

			convey.Convey("Then it carries the configured settings", func() {
				stats := svc.GetStats()
				convey.So(stats.WorkerCount, convey.ShouldEqual, 2)
				convey.So(stats.QueueCapacity, convey.ShouldEqual, cfg.QueueSize)
			})

			convey.Convey("Then the router serves the API and the docs", func() {
				srv := httptest.NewServer(newRouter(ctx, svc))
				defer srv.Close()

				resp, err := http.Post(srv.URL+"/games", "application/json", strings.NewReader(`{"players":2}`))
				convey.So(err, convey.ShouldBeNil)
				resp.Body.Close()
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusCreated)

				games, err := svc.ListGames(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(games, convey.ShouldHaveLength, 1)
				convey.So(games[0].Variant, convey.ShouldEqual, aiming.VariantDrag)

				for _, path := range []string{"/api-docs", "/openapi.yaml", "/healthz"} {
					resp, err := http.Get(srv.URL + path)
					convey.So(err, convey.ShouldBeNil)
					resp.Body.Close()
					convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
				}
			})
		})
	})
}

func TestRun(t *testing.T) {
	convey.Convey("Given the run entry point", t, func() {
		convey.Convey("When the configuration is invalid", func() {
			_ = os.Setenv("OCHE_LOG_FORMAT", "xml")
			defer func() { _ = os.Unsetenv("OCHE_LOG_FORMAT") }()

			err := run(context.Background())

			convey.Convey("Then it fails before serving", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the context ends", func() {
			_ = os.Setenv("OCHE_ADDR", "127.0.0.1:0")
			defer func() { _ = os.Unsetenv("OCHE_ADDR") }()

			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()

			convey.Convey("Then it shuts down cleanly", func() {
				convey.So(run(ctx), convey.ShouldBeNil)
			})
		})
	})
}

func TestStartSystemMetricsUpdater(t *testing.T) {
	convey.Convey("Given a short-lived context", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		convey.Convey("Then the updater returns when it ends", func() {
			done := make(chan struct{})
			go func() {
				startSystemMetricsUpdater(ctx)
				close(done)
			}()
			select {
			case <-done:
			case <-time.After(time.Second):
				convey.So("updater did not return", convey.ShouldBeEmpty)
			}
		})
	})
}
