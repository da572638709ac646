// This is the main entry point of the CineLens API.
// It loads configuration, reads the movie catalog into memory, opens the
// credential store, wires services and handlers into a chi router, and runs
// the HTTP server until SIGINT or SIGTERM asks it to shut down gracefully.
// @title CineLens API
// @version 1.0
// @description Authenticated read-only API over the MovieLens catalog.
// @contact.name API Support
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type 'Bearer YOUR_JWT_TOKEN' to authorize
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/user/cinelens-go/apperror"
	"github.com/user/cinelens-go/auth"
	"github.com/user/cinelens-go/catalog"
	"github.com/user/cinelens-go/config"
	_ "github.com/user/cinelens-go/docs" // Generated Swagger docs
	"github.com/user/cinelens-go/logging"
	"github.com/user/cinelens-go/metrics"
	"github.com/user/cinelens-go/users"
)

func main() {
	// A .env file is optional; in production the variables are set directly.
	envErr := godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		// The logger is not configured yet, so fall back to the zerolog default.
		log.Fatal().Err(err).Msg("failed to load config")
	}

	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if envErr != nil {
		log.Debug().Err(envErr).Msg(".env file not loaded")
	}

	// ctx is cancelled by the first SIGINT/SIGTERM. It bounds the startup work
	// (catalog load, database connect) as well as the serving phase.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The catalog is loaded exactly once and shared read-only by every request.
	start := time.Now()
	movieCatalog, err := catalog.Load(ctx, cfg.Catalog.DataDir)
	if err != nil {
		log.Fatal().Err(err).Msg("catalog load interrupted")
	}
	log.Info().Str("dir", cfg.Catalog.DataDir).Dur("took", time.Since(start)).Msg("catalog loaded")

	tokens, err := auth.NewTokenManager(*cfg.Auth)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid auth configuration")
	}

	store, closeStore, err := users.Open(ctx, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open credential store")
	}
	defer closeStore()

	// Services are constructed here and their dependencies injected by hand.
	authService := auth.NewAuthService(store, tokens)
	authHandlers := auth.NewHandlers(authService)
	catalogHandlers := catalog.NewHandlers(movieCatalog)

	r := newRouter(cfg, authService, authHandlers, catalogHandlers)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			log.Error().Err(err).Msg("server failed")
			closeStore()
			os.Exit(1)
		}
	case <-ctx.Done():
	}

	log.Info().Msg("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown lets in-flight requests finish before returning.
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
		return
	}
	log.Info().Msg("server stopped gracefully")
}

// newRouter builds the HTTP routing tree.
//
// Public: /token, /users, /healthz, /metrics, /swagger/*.
// Behind the bearer-token gate: /users/me and every catalog endpoint.
func newRouter(cfg *config.AppConfig, authService *auth.AuthService, authHandlers *auth.Handlers, catalogHandlers *catalog.Handlers) chi.Router {
	r := chi.NewRouter()

	// Chi requires all middleware to be registered before any routes.
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger)
	r.Use(metrics.Middleware)
	r.Use(recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", catalogHandlers.HandleHealth())

	r.Post("/token", authHandlers.HandleLogin())
	// Registration answers with and without the trailing slash.
	r.Post("/users", authHandlers.HandleRegister())
	r.Post("/users/", authHandlers.HandleRegister())

	r.Group(func(r chi.Router) {
		r.Use(auth.JWTMiddleware(authService))

		r.Get("/users/me", authHandlers.HandleMe())
		catalogHandlers.RegisterRoutes(r)
	})

	return r
}

// recoverer turns a panic in a handler into a logged 500 with the usual JSON
// error body.
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}
			if rvr == http.ErrAbortHandler {
				panic(rvr)
			}
			log.Error().
				Interface("panic", rvr).
				Str("request_id", middleware.GetReqID(r.Context())).
				Bytes("stack", debug.Stack()).
				Msg("handler panicked")
			apperror.WriteError(w, r, apperror.NewInternalError("internal server error", nil))
		}()
		next.ServeHTTP(w, r)
	})
}
