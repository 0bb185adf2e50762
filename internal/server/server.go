package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/unisoruyor/apiserver/config"
	"github.com/unisoruyor/apiserver/internal/cache"
	"github.com/unisoruyor/apiserver/internal/db"
	"github.com/unisoruyor/apiserver/internal/handlers"
	"github.com/unisoruyor/apiserver/internal/mq"
	"github.com/unisoruyor/apiserver/internal/observability"
	"github.com/unisoruyor/apiserver/internal/services"
	"github.com/unisoruyor/apiserver/internal/storage"
	"github.com/unisoruyor/apiserver/internal/store"
)

const (
	loginAttemptLimit  = 10
	loginAttemptWindow = 15 * time.Minute
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	redis      *redis.Client
	events     *mq.Notifications
}

// New constructs a Server with all forum routes wired.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	rdb, err := cache.Open(ctx, cfg.Redis)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	if rdb == nil {
		slog.WarnContext(ctx, "redis not configured, leaderboard cache and login limiter disabled")
	}

	var objects services.ObjectStore
	attachments, err := storage.Open(ctx, cfg)
	if err != nil {
		slog.WarnContext(ctx, "attachment storage unavailable, uploads disabled", "backend", cfg.Storage.Backend, "error", err)
	} else {
		objects = attachments
	}

	var (
		publisher services.EventPublisher
		events    *mq.Notifications
	)
	backend, err := mq.Open(ctx, cfg)
	if err != nil {
		_ = dbConn.Close()
		if rdb != nil {
			_ = rdb.Close()
		}
		return nil, fmt.Errorf("open mq: %w", err)
	}
	if backend != nil {
		events = mq.NewNotifications(backend, cfg.MQ.NotificationChannel)
		publisher = events
	}

	userRepo := store.NewUserRepository(dbConn)
	questionRepo := store.NewQuestionRepository(dbConn)
	answerRepo := store.NewAnswerRepository(dbConn)
	likeRepo := store.NewLikeRepository(dbConn)
	notificationRepo := store.NewNotificationRepository(dbConn)
	fileRepo := store.NewFileRepository(dbConn)
	leaderboardRepo := store.NewLeaderboardRepository(dbConn)

	catalog := services.DefaultCatalog()
	userService := services.NewUserService(userRepo, time.Now)
	notificationService := services.NewNotificationService(notificationRepo, publisher)
	gate := services.NewPostGate(userRepo, cfg.Forum.PostCooldown, time.Now)
	questionService := services.NewQuestionService(questionRepo, answerRepo, likeRepo, fileRepo, catalog, gate, notificationService)
	answerService := services.NewAnswerService(questionRepo, answerRepo, userRepo, fileRepo, gate, notificationService)
	leaderboardService := services.NewLeaderboardService(
		leaderboardRepo,
		cache.NewLeaderboardCache(rdb, cfg.Forum.LeaderboardTTL),
		cfg.Forum.LeaderboardWindow,
		cfg.Forum.LeaderboardSize,
		time.Now,
	)
	moderationService := services.NewModerationService(userRepo, questionRepo, answerRepo, notificationService, time.Now)
	uploadService := services.NewUploadService(fileRepo, objects, cfg.Storage.MaxUploadBytes, time.Now)
	profileService := services.NewProfileService(userRepo, questionRepo, answerRepo)

	if cfg.Admin.Password != "" {
		admin, created, err := userService.EnsureAdmin(ctx, services.AdminSeed{
			Username: cfg.Admin.Username,
			Email:    cfg.Admin.Email,
			Password: cfg.Admin.Password,
		})
		if err != nil {
			slog.WarnContext(ctx, "failed to seed default admin", "username", cfg.Admin.Username, "error", err)
		} else if created {
			slog.InfoContext(ctx, "default admin created", "user_id", admin.ID, "username", admin.Username)
		}
	}

	limiter := cache.NewAttemptLimiter(rdb, "login", loginAttemptLimit, loginAttemptWindow)
	authHandler := handlers.NewAuthHandler(userService, limiter, cfg.JWTSecret, cfg.TokenTTL)
	authMiddleware := authHandler.RequireAuth

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		observability.Metrics,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Get("/health", handlers.Health(dbConn))
	router.Handle("/metrics", promhttp.Handler())

	router.Route("/auth", func(r chi.Router) {
		handlers.AuthRouter(r, authHandler)
	})
	router.Route("/questions", func(r chi.Router) {
		handlers.QuestionRouter(r, questionService, answerService, authMiddleware)
	})
	router.Route("/answers", func(r chi.Router) {
		handlers.AnswerRouter(r, answerService, authMiddleware)
	})
	router.Route("/notifications", func(r chi.Router) {
		handlers.NotificationRouter(r, notificationService, authMiddleware)
	})
	router.Route("/admin", func(r chi.Router) {
		handlers.AdminRouter(r, moderationService, authMiddleware)
	})
	handlers.CatalogRouter(router, catalog, leaderboardService, profileService)
	handlers.UploadRouter(router, uploadService, authMiddleware)

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		redis:      rdb,
		events:     events,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Addr is the listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start runs the HTTP server. It returns nil after a graceful shutdown.
func (s *Server) Start() error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and then releases the database,
// Redis and broker connections.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	if s.events != nil {
		if cerr := s.events.Close(); cerr != nil {
			slog.WarnContext(ctx, "failed to close event publisher", "error", cerr)
		}
	}
	if s.redis != nil {
		_ = s.redis.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return err
}
