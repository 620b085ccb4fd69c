// Command server runs the medication robot HTTP API and, when
// ROBOT_ENABLED is set, the in-process hourly robot.
//
// @title        Medication Robot API
// @version      1.0
// @description  Patients, medications, manual dose actions, history and the hourly consumption robot.
// @BasePath     /api/v1
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/tbourn/go-med-robot/internal/app"
	"github.com/tbourn/go-med-robot/internal/clock"
	"github.com/tbourn/go-med-robot/internal/config"
	httpapi "github.com/tbourn/go-med-robot/internal/http"
	"github.com/tbourn/go-med-robot/internal/observability"
	"github.com/tbourn/go-med-robot/internal/scheduler"
	"github.com/tbourn/go-med-robot/internal/sysutil"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const shutdownTimeout = 15 * time.Second

func main() {
	config.LoadDotEnv()
	cfg := config.MustLoad()
	sysutil.SetupLogger(cfg.LogLevel, cfg.LogPretty, nil)
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg config.Config) error {
	otelShutdown, err := observability.SetupOTel(ctx, cfg.OTEL, version, "server")
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(sctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	db, err := app.OpenDB(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = app.CloseDB(db) }()

	robot, err := app.NewRobot(ctx, cfg, db, clock.System{})
	if err != nil {
		return err
	}
	defer func() {
		if err := robot.Close(); err != nil {
			log.Warn().Err(err).Msg("robot close")
		}
	}()

	r := gin.New()
	httpapi.RegisterRoutes(r, httpapi.Deps{DB: db, Robot: robot.Runner}, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if cfg.Robot.Enabled {
		hourly := &scheduler.Hourly{
			Run:        robot.Runner.Run,
			Location:   cfg.Robot.Location,
			RunOnStart: true,
		}
		g.Go(func() error {
			log.Info().Str("tz", cfg.Robot.ReferenceTZ).Msg("hourly robot enabled")
			if err := hourly.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}
