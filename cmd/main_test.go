package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/wicket/internal/config"
	"github.com/okian/wicket/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("WICKET_ADDR", ":8080")
			_ = os.Setenv("WICKET_QUEUE_SIZE", "1000")
			_ = os.Setenv("WICKET_WORKER_COUNT", "4")
			defer func() {
				_ = os.Unsetenv("WICKET_ADDR")
				_ = os.Unsetenv("WICKET_QUEUE_SIZE")
				_ = os.Unsetenv("WICKET_WORKER_COUNT")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 1000)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When building the service from defaults", func() {
			ctx := context.Background()
			svc, err := newService(ctx, config.New(ctx))

			convey.Convey("Then the configured quota and table should be applied", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(svc, convey.ShouldNotBeNil)
				convey.So(svc.Quota().RosterSize, convey.ShouldEqual, 11)
				convey.So(svc.Quota().Budget, convey.ShouldEqual, 100)
				convey.So(svc.PointsTable().Version, convey.ShouldNotBeEmpty)
			})
		})

		convey.Convey("When the points table file is missing", func() {
			ctx := context.Background()
			cfg := config.New(ctx)
			cfg.PointsTablePath = filepath.Join(t.TempDir(), "missing.yaml")

			convey.Convey("Then building the service should fail", func() {
				svc, err := newService(ctx, cfg)
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(svc, convey.ShouldBeNil)
			})
		})
	})
}

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given main application components", t, func() {
		ctx := context.Background()
		svc, err := newService(ctx, config.New(ctx))
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When testing system metrics updater", func() {
			convey.Convey("Then it should return when the context ends", func() {
				ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
				defer cancel()

				convey.So(func() {
					startSystemMetricsUpdater(ctx)
				}, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When testing service metrics updater", func() {
			convey.Convey("Then it should return when the context ends", func() {
				ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
				defer cancel()

				convey.So(func() {
					startServiceMetricsUpdater(ctx, svc)
				}, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When testing system metrics update", func() {
			convey.Convey("Then it should update metrics without panicking", func() {
				convey.So(func() {
					updateSystemMetrics()
				}, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When testing service metrics update", func() {
			convey.Convey("Then it should work on a stopped service", func() {
				convey.So(func() {
					updateServiceMetrics(svc)
				}, convey.ShouldNotPanic)
			})

			convey.Convey("And on a started one", func() {
				convey.So(svc.Start(ctx), convey.ShouldBeNil)
				defer svc.Stop()

				convey.So(func() {
					updateServiceMetrics(svc)
				}, convey.ShouldNotPanic)
			})
		})
	})
}

func TestMainApplicationIntegration(t *testing.T) {
	convey.Convey("Given main application integration", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		cfg := config.New(ctx)
		cfg.WorkerCount = 2
		svc, err := newService(ctx, cfg)
		convey.So(err, convey.ShouldBeNil)
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		srv := httptest.NewServer(newHandler(ctx, svc, cfg))
		defer srv.Close()

		convey.Convey("When requesting the health endpoint", func() {
			resp, err := http.Get(srv.URL + "/healthz")
			convey.So(err, convey.ShouldBeNil)
			defer resp.Body.Close()

			convey.Convey("Then it should respond with metrics", func() {
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
			})
		})

		convey.Convey("When requesting the API documentation", func() {
			resp, err := http.Get(srv.URL + "/openapi.yaml")
			convey.So(err, convey.ShouldBeNil)
			defer resp.Body.Close()

			convey.Convey("Then the document should be served", func() {
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
			})
		})

		convey.Convey("When requesting stats", func() {
			resp, err := http.Get(srv.URL + "/stats")
			convey.So(err, convey.ShouldBeNil)
			defer resp.Body.Close()

			var body map[string]any
			convey.So(json.NewDecoder(resp.Body).Decode(&body), convey.ShouldBeNil)

			convey.Convey("Then the service should report as started", func() {
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
				convey.So(body["started"], convey.ShouldEqual, true)
				convey.So(body["workerCount"], convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When requesting an unknown roster", func() {
			resp, err := http.Get(srv.URL + "/rosters/nope")
			convey.So(err, convey.ShouldBeNil)
			defer resp.Body.Close()

			convey.Convey("Then it should be not found", func() {
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusNotFound)
			})
		})
	})
}
