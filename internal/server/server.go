// Package server contains the JSON API handlers that call into the Warbler core.
package server

import (
	"context"
	"fmt"
	"time"

	"warbler/internal/cache"
	"warbler/internal/config"
	"warbler/internal/database"
	"warbler/internal/featureflags"
	"warbler/internal/middleware"
	"warbler/internal/models"
	"warbler/internal/notifications"
	"warbler/internal/policy"
	"warbler/internal/repository"
	"warbler/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	policy         policy.Policy
	flags          *featureflags.Set
	identity       IdentityCore
	follows        FollowCore
	messages       MessageCore
	likes          LikeCore
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if cfg == nil || db == nil {
		return nil, fmt.Errorf("server requires config and database")
	}
	middleware.InitMiddleware(cfg)

	store := repository.NewStore(db)
	var flags *featureflags.Set
	if cfg.FeatureFlags != "" {
		flags = featureflags.Parse(cfg.FeatureFlags)
	}
	notifier := notifications.NewNotifier(redisClient).WithFlags(flags)
	timeout := cfg.OperationTimeout()

	return &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("warbler-api"),
		policy:         policy.New(cfg.MembersOnlyReads),
		flags:          flags,
		identity:       service.NewIdentityService(store, cfg.BcryptCost, timeout),
		follows:        service.NewFollowService(store, notifier, timeout),
		messages:       service.NewMessageService(store, timeout),
		likes:          service.NewLikeService(store, notifier, timeout),
	}, nil
}

// App builds the Fiber application with middleware and routes installed.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "Warbler API",
		BodyLimit: 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "error", err)
			return RespondWithError(c, models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		MaxAge:       86400,
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health", s.ReadinessCheck)
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	api.Get("/health", s.ReadinessCheck)

	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)

	users := api.Group("/users")
	users.Get("/", middleware.AuthOptional, s.ListUsers)
	users.Post("/follow/:id", middleware.AuthRequired, s.Follow)
	users.Post("/stop-following/:id", middleware.AuthRequired, s.StopFollowing)
	users.Patch("/profile", middleware.AuthRequired, s.UpdateProfile)
	users.Post("/delete", middleware.AuthRequired, s.DeleteAccount)
	// Define specific /:id/:resource routes BEFORE generic /:id route
	users.Get("/:id/following", middleware.AuthOptional, s.GetFollowing)
	users.Get("/:id/followers", middleware.AuthOptional, s.GetFollowers)
	users.Get("/:id/likes", middleware.AuthOptional, s.GetLikes)
	users.Get("/:id/messages", middleware.AuthOptional, s.GetUserMessages)
	users.Get("/:id", middleware.AuthOptional, s.GetUserProfile)

	messages := api.Group("/messages")
	messages.Post("/", middleware.AuthRequired,
		middleware.RateLimit(s.redis, 30, time.Minute, "create_message"), s.CreateMessage)
	messages.Get("/:id", middleware.AuthOptional, s.GetMessage)
	messages.Post("/:id/delete", middleware.AuthRequired, s.DeleteMessage)
	messages.Post("/:id/like", middleware.AuthRequired, s.LikeMessage)
	messages.Post("/:id/unlike", middleware.AuthRequired, s.UnlikeMessage)

	api.Get("/feed", middleware.AuthRequired, s.GetFeed)
	api.Get("/feature-flags", middleware.AuthRequired, s.GetFeatureFlags)
}

// Start builds the app and listens on the configured port.
func (s *Server) Start() error {
	app := s.App()
	middleware.Logger.Info("server starting", "port", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", "error", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", "error", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", "error", rerr)
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}

// GetFeatureFlags returns the configured flags evaluated for the current user.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	me, _ := middleware.UserID(c)
	return c.JSON(fiber.Map{
		"raw":       s.flags.String(),
		"evaluated": s.flags.Snapshot(me),
	})
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "up", "time": time.Now()})
}

// ReadinessCheck pings the database and, when configured, Redis.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if sqlDB, err := s.db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}
	return c.Status(status).JSON(fiber.Map{
		"status":   overall,
		"database": dbStatus,
		"redis":    redisStatus,
	})
}
