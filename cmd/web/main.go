package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/casamarela/innkeeper/internal/http/handlers"
	mw "github.com/casamarela/innkeeper/internal/http/middleware"
	"github.com/casamarela/innkeeper/internal/repo/postgres"
	"github.com/casamarela/innkeeper/internal/service"
	"github.com/casamarela/innkeeper/internal/session"
	"github.com/casamarela/innkeeper/internal/web"
	"github.com/casamarela/innkeeper/pkg/config"
	"github.com/casamarela/innkeeper/pkg/database"
	"github.com/casamarela/innkeeper/pkg/events"
	"github.com/casamarela/innkeeper/pkg/logger"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	sessions, err := session.NewStore(cfg.Redis, cfg.Auth.SessionTTL)
	if err != nil {
		logger.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer sessions.Close()
	if err := sessions.Ping(ctx); err != nil {
		logger.Error("Redis ping failed", "error", err)
		os.Exit(1)
	}

	eventBus, err := events.NewNATSEventBus(cfg.NATS.URL)
	if err != nil {
		logger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer eventBus.Close()

	// Repositories
	roomRepo := postgres.NewRoomRepository(pool)
	guestRepo := postgres.NewGuestRepository(pool)
	reservationRepo := postgres.NewReservationRepository(pool)
	userRepo := postgres.NewUserRepository(pool)

	// Services
	reservationSvc := service.NewReservationService(roomRepo, guestRepo, reservationRepo, eventBus)
	authSvc := service.NewAuthService(userRepo, eventBus, cfg)

	renderer, err := web.NewRenderer()
	if err != nil {
		logger.Error("Failed to parse templates", "error", err)
		os.Exit(1)
	}

	// Handlers
	roomHandler := handlers.NewRoomHandler(roomRepo, renderer, cfg)
	reservationHandler := handlers.NewReservationHandler(reservationSvc, renderer, cfg)
	authHandler := handlers.NewAuthHandler(authSvc, sessions, renderer, cfg)
	adminHandler := handlers.NewAdminHandler(authSvc, reservationSvc, roomRepo, eventBus, cfg)

	loginLimiter := mw.NewRateLimiter(sessions.Client(), mw.RateLimitConfig{
		Requests: 10,
		Window:   time.Minute,
		Name:     "login",
	})

	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.Logging)
	r.Use(mw.Health)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.App.BaseURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(mw.SessionLoader(sessions, cfg.Auth.SessionCookie))

	r.Get("/", roomHandler.Home)
	r.Mount("/rooms", roomHandler.Routes())
	r.Mount("/reservations", reservationHandler.Routes())
	r.Mount("/auth", authHandler.Routes(loginLimiter.Middleware()))
	r.Mount("/admin/api", adminHandler.Routes())
	r.Handle("/static/*", web.StaticHandler())

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down web server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Web server shutdown error", "error", err)
		}
	}()

	logger.Info("Starting web server", "port", cfg.Server.Port, "app", cfg.App.Name)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Web server error", "error", err)
		os.Exit(1)
	}
}
