// Package bootstrap wires the process-level runtime shared by the commands.
package bootstrap

import (
	"context"
	"fmt"

	"warbler/internal/cache"
	"warbler/internal/config"
	"warbler/internal/database"
	"warbler/internal/middleware"
	"warbler/internal/models"
	"warbler/internal/observability"
	"warbler/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Version is stamped into traces; override with -ldflags.
var Version = "dev"

// Options control runtime initialization behavior.
type Options struct {
	// SeedDemoData fills an empty development database with sample data.
	SeedDemoData bool
}

// Runtime holds the connections and shutdown hooks for one process.
type Runtime struct {
	DB            *gorm.DB
	Redis         *redis.Client
	shutdownTrace func(context.Context) error
}

// InitRuntime starts tracing, connects to the database and Redis, and
// optionally seeds demo data. A nil Redis client means caching, rate
// limiting and notifications are disabled.
func InitRuntime(cfg *config.Config, opts Options) (*Runtime, error) {
	shutdownTrace, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "warbler-api",
		ServiceVersion: Version,
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("tracing init failed: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		_ = shutdownTrace(context.Background())
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	rt := &Runtime{DB: db, Redis: cache.GetClient(), shutdownTrace: shutdownTrace}

	if opts.SeedDemoData && !cfg.IsProduction() {
		if err := seedIfEmpty(db, cfg); err != nil {
			return nil, fmt.Errorf("demo seeding failed: %w", err)
		}
	}
	return rt, nil
}

// Close flushes traces. The server owns the database and Redis handles.
func (r *Runtime) Close(ctx context.Context) error {
	if r.shutdownTrace == nil {
		return nil
	}
	return r.shutdownTrace(ctx)
}

func seedIfEmpty(db *gorm.DB, cfg *config.Config) error {
	var n int64
	if err := db.Model(&models.User{}).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	s, err := seed.NewSeeder(db, seed.Options{
		NumUsers:       20,
		NumMessages:    100,
		FollowsPerUser: 5,
		LikesPerUser:   10,
		BcryptCost:     cfg.BcryptCost,
	})
	if err != nil {
		return err
	}
	if _, err := s.Run(); err != nil {
		return err
	}
	middleware.Logger.Info("seeded demo data", "password", seed.DefaultPassword)
	return nil
}
