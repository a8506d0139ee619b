package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	v1 "github.com/parleylabs/parley/internal/api/v1"
	"github.com/parleylabs/parley/internal/api/ws"
	"github.com/parleylabs/parley/internal/auth"
	"github.com/parleylabs/parley/internal/config"
	"github.com/parleylabs/parley/internal/domain"
	"github.com/parleylabs/parley/internal/metrics"
	"github.com/parleylabs/parley/internal/server/middleware"
	"github.com/parleylabs/parley/internal/store/postgres"
	redisstore "github.com/parleylabs/parley/internal/store/redis"
)

// Server is the HTTP server that wires all application routes and middleware.
type Server struct {
	router     chi.Router
	httpServer *http.Server
	store      *postgres.Store
	auth       *auth.Service
	pubsub     *redisstore.PubSub
	wsHub      *ws.Hub
	metrics    *metrics.Metrics
	cfg        *config.Config
}

// New creates a Server with all routes wired. ctx bounds the background
// cleanup goroutines started by the rate limiters.
func New(ctx context.Context, cfg *config.Config, store *postgres.Store, pubsub *redisstore.PubSub, authSvc *auth.Service, hub *ws.Hub, m *metrics.Metrics) *Server {
	router := chi.NewRouter()

	// Global middleware stack.
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(chimw.Logger)
	router.Use(chimw.Recoverer)
	router.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler)

	s := &Server{
		router:  router,
		store:   store,
		auth:    authSvc,
		pubsub:  pubsub,
		wsHub:   hub,
		metrics: m,
		cfg:     cfg,
		httpServer: &http.Server{
			Addr:         cfg.Server.Addr,
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}

	providers := buildOAuthProviders(&cfg.OAuth)

	// Mount API routes on /api/v1 with two sub-groups:
	// 1. Unauthenticated group for auth endpoints, rate limited per IP.
	// 2. Authenticated group for all other endpoints.
	router.Route("/api/v1", func(r chi.Router) {
		// Unauthenticated auth routes (register, login, refresh, OAuth).
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimitByIP(ctx, 10, 20))

			authConfig := huma.DefaultConfig("Parley Auth API", "1.0.0")
			authConfig.Servers = []*huma.Server{
				{URL: "/api/v1"},
			}
			authAPI := humachi.New(r, authConfig)
			registerAuthRoutes(authAPI, authSvc, providers)
		})

		// Authenticated routes (everything else).
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT.Secret))
			r.Use(middleware.RequireRole(domain.RoleAdmin, domain.RoleMember))
			r.Use(middleware.RateLimit(ctx, 100, 200))

			apiConfig := huma.DefaultConfig("Parley API", "1.0.0")
			apiConfig.Servers = []*huma.Server{
				{URL: "/api/v1"},
			}
			api := humachi.New(r, apiConfig)
			registerAPIRoutes(api, store)
		})
	})

	// WebSocket routes. The Auth middleware also accepts the token as an
	// access_token query parameter for browser WebSocket handshakes.
	router.Route("/ws", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT.Secret))
		registerWSRoutes(r, hub)
	})

	// Prometheus scrape endpoint (unauthenticated).
	router.Method(http.MethodGet, "/metrics", m.Handler())

	// Health check (unauthenticated).
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	return s
}

// buildOAuthProviders creates the OAuth provider set from configuration.
// A provider is registered only when both its client id and secret are set,
// so unconfigured providers 404 at the API layer.
func buildOAuthProviders(cfg *config.OAuthConfig) map[string]v1.OAuthExchanger {
	providers := make(map[string]v1.OAuthExchanger)

	if cfg.GoogleClientID != "" && cfg.GoogleClientSecret != "" {
		providers["google"] = auth.NewGoogleProvider(
			cfg.GoogleClientID,
			cfg.GoogleClientSecret,
			cfg.RedirectBase+"/oauth/callback/google",
		)
		log.Info().Msg("google OAuth sign-in enabled")
	}

	if cfg.GitHubClientID != "" && cfg.GitHubClientSecret != "" {
		providers["github"] = auth.NewGitHubProvider(
			cfg.GitHubClientID,
			cfg.GitHubClientSecret,
			cfg.RedirectBase+"/oauth/callback/github",
		)
		log.Info().Msg("github OAuth sign-in enabled")
	}

	return providers
}

// Start begins listening for HTTP requests.
func (s *Server) Start(_ context.Context) error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.Start: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}
