// Package app assembles the process-level collaborators from configuration,
// so the API server, the one-shot robot and the seeder share one wiring.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-med-robot/internal/clock"
	"github.com/tbourn/go-med-robot/internal/config"
	"github.com/tbourn/go-med-robot/internal/events"
	"github.com/tbourn/go-med-robot/internal/lock"
	"github.com/tbourn/go-med-robot/internal/repo"
	"github.com/tbourn/go-med-robot/internal/services"
)

const redisPingTimeout = 3 * time.Second

// OpenDB connects to the configured store and migrates the schema.
func OpenDB(cfg config.Config) (*gorm.DB, error) {
	db, err := repo.Open(repo.Options{
		Driver:  cfg.DBDriver,
		Path:    cfg.DBPath,
		URL:     cfg.DatabaseURL,
		Tracing: cfg.OTEL.Enabled,
		Silent:  !strings.EqualFold(cfg.LogLevel, "debug"),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// CloseDB closes the pool behind db.
func CloseDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Robot is a configured cycle runner plus the connections it owns.
type Robot struct {
	Runner  *services.CycleRunner
	closers []func() error
}

// Close releases the publisher and the Redis client, if any.
func (r *Robot) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewRobot builds the cycle runner. A configured Redis address must answer
// a ping; Kafka is connected lazily by the writer.
func NewRobot(ctx context.Context, cfg config.Config, db *gorm.DB, clk clock.Clock) (*Robot, error) {
	if clk == nil {
		clk = clock.System{}
	}
	r := &Robot{}

	var locker lock.Locker
	if addr := strings.TrimSpace(cfg.Redis.Addr); addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pctx, cancel := context.WithTimeout(ctx, redisPingTimeout)
		err := client.Ping(pctx).Err()
		cancel()
		if err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("redis %s: %w", addr, err)
		}
		r.closers = append(r.closers, client.Close)
		locker = lock.NewRedisLocker(client)
		log.Info().Str("addr", addr).Msg("cycle lease: redis")
	} else {
		locker = lock.NewLocalLocker()
		log.Info().Msg("cycle lease: in-process")
	}

	var publisher services.EventPublisher = events.Noop{}
	if strings.TrimSpace(cfg.Kafka.Brokers) != "" {
		kp, err := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			_ = r.Close()
			return nil, err
		}
		r.closers = append(r.closers, kp.Close)
		publisher = kp
		log.Info().Str("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("history events: kafka")
	}

	loc := cfg.Robot.Location
	if loc == nil {
		loc = time.UTC
	}
	r.Runner = &services.CycleRunner{
		DB:    db,
		Clock: clk,
		Candidates: &services.StoreCandidates{
			DB:        db,
			Prefilter: cfg.Robot.PrefilterEnabled,
			Lookback:  cfg.Robot.PrefilterLookback,
			Location:  loc,
		},
		Reconciler: &services.ConsumptionService{
			DB:            db,
			Location:      loc,
			MaxCatchUp:    cfg.Robot.MaxCatchUp,
			Actor:         cfg.Robot.Actor,
			LowStockUnits: cfg.Robot.LowStockUnits,
		},
		Publisher:   publisher,
		Lock:        locker,
		LockTTL:     cfg.Redis.LockTTL,
		Timeout:     cfg.Robot.CycleTimeout,
		Concurrency: cfg.Robot.Concurrency,
		Actor:       cfg.Robot.Actor,
	}
	return r, nil
}
