package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/gridwar/internal/auth"
	"github.com/freeeve/gridwar/internal/config"
	"github.com/freeeve/gridwar/internal/handler"
	"github.com/freeeve/gridwar/internal/logger"
	"github.com/freeeve/gridwar/internal/middleware"
	"github.com/freeeve/gridwar/internal/repository/postgres"
	redisrepo "github.com/freeeve/gridwar/internal/repository/redis"
	"github.com/freeeve/gridwar/internal/service"
)

func main() {
	logger.Init()
	cfg := config.Load()
	log.Info().Str("databaseURL", cfg.DatabaseURL).Msg("Config loaded")

	// Database
	db, err := postgres.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Database connection failed")
	}
	defer db.Close()
	store := postgres.NewStore(db)

	// Redis
	redisClient, err := redisrepo.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Redis connection failed")
	}
	defer redisClient.Close()

	// Auth
	jwtMgr := auth.NewJWTManager(cfg.JWTSecret)
	googleOAuth := auth.NewGoogleOAuth(
		os.Getenv("GOOGLE_CLIENT_ID"),
		os.Getenv("GOOGLE_CLIENT_SECRET"),
		os.Getenv("GOOGLE_REDIRECT_URL"),
	)

	// WebSocket hub
	wsHub := handler.NewHub()

	// Services
	repos := store.Repos()
	matchSvc := service.NewMatchService(store, repos, redisClient, wsHub)
	actionSvc := service.NewActionService(store, redisClient, wsHub)

	// Handlers
	authHandler := handler.NewAuthHandler(googleOAuth, jwtMgr, repos.Users)
	userHandler := handler.NewUserHandler(repos.Users)
	templateHandler := handler.NewTemplateHandler(repos.Templates)
	matchHandler := handler.NewMatchHandler(matchSvc, actionSvc)
	wsHandler := handler.NewWSHandler(wsHub, jwtMgr)

	// Router
	mux := http.NewServeMux()
	authMw := auth.Middleware(jwtMgr)

	// Health
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Auth (public)
	mux.HandleFunc("GET /auth/google/login", authHandler.GoogleLogin)
	mux.HandleFunc("GET /auth/google/callback", authHandler.GoogleCallback)
	mux.HandleFunc("POST /auth/refresh", authHandler.RefreshToken)
	mux.HandleFunc("GET /auth/dev", authHandler.DevLogin)

	// Protected API routes
	api := http.NewServeMux()
	api.HandleFunc("GET /users/me", userHandler.GetMe)
	api.HandleFunc("PATCH /users/me", userHandler.UpdateMe)
	api.HandleFunc("GET /users/{id}", userHandler.GetUser)
	api.HandleFunc("GET /templates", templateHandler.ListTemplates)
	api.HandleFunc("GET /templates/{id}", templateHandler.GetTemplate)
	api.HandleFunc("POST /matches", matchHandler.CreateMatch)
	api.HandleFunc("GET /matches", matchHandler.ListMatches)
	api.HandleFunc("GET /matches/{id}", matchHandler.GetMatch)
	api.HandleFunc("DELETE /matches/{id}", matchHandler.DeclineMatch)
	api.HandleFunc("POST /matches/{id}/accept", matchHandler.AcceptMatch)
	api.HandleFunc("POST /matches/{id}/move", matchHandler.Move)
	api.HandleFunc("POST /matches/{id}/attack", matchHandler.Attack)
	api.HandleFunc("POST /matches/{id}/skip", matchHandler.Skip)
	api.HandleFunc("POST /matches/{id}/surrender", matchHandler.Surrender)
	api.HandleFunc("GET /matches/{id}/actions", matchHandler.Actions)
	api.HandleFunc("GET /matches/{id}/board", matchHandler.Board)
	api.HandleFunc("GET /matches/{id}/log", matchHandler.Log)

	mux.Handle("/api/v1/", http.StripPrefix("/api/v1", authMw(api)))

	// WebSocket (auth via query param, not middleware)
	mux.HandleFunc("GET /api/v1/ws", wsHandler.ServeWS)

	// Apply global middleware
	root := middleware.Chain(mux, middleware.Logger, middleware.CORS("*"), middleware.JSON)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Rebuild board snapshots in Redis from Postgres after restart
	if err := matchSvc.RecoverSnapshots(context.Background()); err != nil {
		log.Error().Err(err).Msg("Failed to recover match snapshots (non-fatal)")
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server shutdown error")
	}
	log.Info().Msg("Server stopped")
}
