// Command robot runs a single consumption cycle and exits, for external
// schedulers such as cron. The exit status is non-zero when the cycle
// itself fails; per-patient failures are reported in the log.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-med-robot/internal/app"
	"github.com/tbourn/go-med-robot/internal/clock"
	"github.com/tbourn/go-med-robot/internal/config"
	"github.com/tbourn/go-med-robot/internal/observability"
	"github.com/tbourn/go-med-robot/internal/services"
	"github.com/tbourn/go-med-robot/internal/sysutil"
)

var version = "dev"

func main() {
	envFile := flag.String("env", ".env", "optional .env file")
	strict := flag.Bool("strict", false, "exit non-zero when any patient or medication failed")
	flag.Parse()

	config.LoadDotEnv(*envFile)
	cfg := config.MustLoad()
	sysutil.SetupLogger(cfg.LogLevel, cfg.LogPretty, nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, cfg, *strict)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, cfg config.Config, strict bool) int {
	otelShutdown, err := observability.SetupOTel(ctx, cfg.OTEL, version, "robot")
	if err != nil {
		log.Error().Err(err).Msg("otel setup")
		return 1
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = otelShutdown(sctx)
	}()

	db, err := app.OpenDB(cfg)
	if err != nil {
		log.Error().Err(err).Msg("database")
		return 1
	}
	defer func() { _ = app.CloseDB(db) }()

	robot, err := app.NewRobot(ctx, cfg, db, clock.System{})
	if err != nil {
		log.Error().Err(err).Msg("robot wiring")
		return 1
	}
	defer func() { _ = robot.Close() }()

	rep, err := robot.Runner.Run(ctx)
	switch {
	case errors.Is(err, services.ErrCycleInProgress):
		log.Warn().Msg("another cycle holds the lease; nothing to do")
		return 0
	case err != nil:
		log.Error().Err(err).Msg("cycle failed")
		return 1
	}

	log.Info().
		Int("patients", rep.Patients).
		Int("medications", rep.Medications).
		Int("consumed", rep.Consumed).
		Int("shortages", rep.Shortages).
		Int("errors", rep.Errors).
		Int("patient_failures", rep.PatientFailures).
		Str("units", rep.UnitsConsumed.String()).
		Dur("took", rep.Duration).
		Bool("timed_out", rep.TimedOut).
		Msg("cycle finished")
	if strict && rep.Result() != observability.CycleOK {
		return 2
	}
	return 0
}
