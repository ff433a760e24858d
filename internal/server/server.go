// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "framez/docs" // swagger docs
	"framez/internal/cache"
	"framez/internal/config"
	"framez/internal/database"
	"framez/internal/identity"
	"framez/internal/media"
	"framez/internal/middleware"
	"framez/internal/models"
	"framez/internal/notifications"
	"framez/internal/repository"
	"framez/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
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
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc
	identity       identity.Provider
	media          *media.Store
	notifier       *notifications.Notifier
	hub            *notifications.Hub
	postService    *service.PostService
	commentService *service.CommentService
}

// NewServer connects to the database and Redis and creates a server with all dependencies.
// Redis is optional: without it the feed cache, token revocation and live events
// stay in-process.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = cache.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			if cfg.IsProduction() {
				return nil, fmt.Errorf("redis connection failed: %w", err)
			}
			middleware.Logger.Warn("Redis unavailable, continuing without it", "error", err)
			redisClient = nil
		}
	}

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if db == nil {
		return nil, errors.New("database is required")
	}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	ttl := time.Duration(cfg.JWTTTLHours) * time.Hour
	notifier := notifications.NewNotifier(redisClient)

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("framez-api"),
		identity:       identity.NewLocalProvider(userRepo, redisClient, cfg.JWTSecret, ttl),
		media: media.NewStore(media.Config{
			UploadDir:       cfg.MediaUploadDir,
			BaseURL:         cfg.MediaBaseURL,
			MaxUploadSizeMB: cfg.MediaMaxUploadMB,
			MaxEdge:         cfg.MediaMaxEdge,
		}),
		notifier: notifier,
		hub:      notifications.NewHub(),
	}
	server.postService = service.NewPostService(postRepo, likeRepo, redisClient, notifier, service.PostServiceOptions{
		DefaultPageSize: cfg.FeedPageSize,
		FeedCacheTTL:    time.Duration(cfg.FeedCacheSeconds) * time.Second,
	})
	server.commentService = service.NewCommentService(commentRepo, postRepo, notifier)

	return server, nil
}

// App builds the Fiber application on first use.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}

	bodyLimit := s.media.MaxUploadSizeBytes() + 1024*1024
	app := fiber.New(fiber.Config{
		AppName:   "framez API",
		BodyLimit: int(bodyLimit),
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				return c.Status(fiberErr.Code).JSON(models.ErrorResponse{Error: fiberErr.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "error", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	app.Use(middleware.TracingMiddleware())

	// Context Middleware to propagate Request ID and trace ID
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))

	app.Use(middleware.StructuredLogger())

	// CORS must run before the limiter so error responses keep their headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:8081,http://localhost:19006"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		MaxAge:       86400,
	}))

	// Global rate limiting (300 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || strings.HasPrefix(c.Path(), "/health")
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Error: "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Uploaded media is served from disk when the base URL is a local path.
	if strings.HasPrefix(s.config.MediaBaseURL, "/") {
		app.Static(s.config.MediaBaseURL, s.media.UploadDir(), fiber.Static{
			MaxAge: int((24 * time.Hour).Seconds()),
		})
	}

	api := app.Group("/api")
	api.Get("/swagger/*", swagger.HandlerDefault)

	authRequired := s.AuthRequired()

	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(s.redis, 5, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/logout", authRequired, s.Logout)

	users := api.Group("/users")
	users.Get("/me", authRequired, s.GetMe)
	users.Put("/me/image", authRequired,
		middleware.RateLimit(s.redis, 10, 10*time.Minute, "profile_image"), s.UploadProfileImage)
	users.Delete("/me/image", authRequired, s.ClearProfileImage)
	users.Get("/:id/posts", s.GetUserPosts)

	api.Post("/media", authRequired,
		middleware.RateLimit(s.redis, 30, 10*time.Minute, "media_upload"), s.UploadMedia)

	posts := api.Group("/posts")
	posts.Get("/", s.GetFeed)
	posts.Post("/", authRequired,
		middleware.RateLimit(s.redis, 10, 5*time.Minute, "create_post"), s.CreatePost)
	// Define specific /:id/:resource routes BEFORE generic /:id route
	posts.Post("/:id/like", authRequired,
		middleware.RateLimit(s.redis, 60, time.Minute, "toggle_like"), s.ToggleLike)
	posts.Get("/:id/likes/:userId", s.CheckUserLike)
	posts.Get("/:id/comments", s.GetComments)
	posts.Post("/:id/comments", authRequired,
		middleware.RateLimit(s.redis, 10, time.Minute, "create_comment"), s.AddComment)
	posts.Post("/:id/repost", authRequired,
		middleware.RateLimit(s.redis, 20, 5*time.Minute, "repost"), s.Repost)
	posts.Get("/:id", s.GetPost)
	posts.Delete("/:id", authRequired, s.DeletePost)

	api.Delete("/reposts/:id", authRequired, s.DeleteRepost)

	api.Get("/ws/feed", s.WebSocketAuthRequired(), requireUpgrade, s.FeedWebSocketHandler())
}

// LivenessCheck handles liveness probe requests
// @Summary Liveness probe
// @Tags health
// @Produce json
// @Success 200 {object} object{status=string,time=string}
// @Router /health/live [get]
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
// @Summary Readiness probe
// @Tags health
// @Produce json
// @Success 200 {object} object{status=string,checks=object}
// @Failure 503 {object} object{status=string,checks=object}
// @Router /health/ready [get]
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := database.Ping(ctx, s.db); err != nil {
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
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"websocket_clients": s.hub.ClientCount(),
		"time":              time.Now(),
	})
}

// StartRealtime connects the live feed hub to the event stream.
func (s *Server) StartRealtime(ctx context.Context) error {
	return s.hub.StartWiring(ctx, s.notifier)
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := s.App()

	if err := s.StartRealtime(s.shutdownCtx); err != nil {
		middleware.Logger.Error("failed to start live feed wiring", "error", err)
	}

	middleware.Logger.Info("Server starting", "port", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	// Cancel the server-scoped context to stop the subscriber goroutine
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if err := s.hub.Shutdown(ctx); err != nil {
		middleware.Logger.Error("error shutting down live feed hub", "error", err)
	}

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

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
