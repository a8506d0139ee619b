package server

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	v1 "github.com/parleylabs/parley/internal/api/v1"
	"github.com/parleylabs/parley/internal/api/ws"
	"github.com/parleylabs/parley/internal/auth"
	"github.com/parleylabs/parley/internal/store/postgres"
)

func registerAuthRoutes(api huma.API, authSvc *auth.Service, providers map[string]v1.OAuthExchanger) {
	v1.RegisterAuthRoutes(api, authSvc, providers)
}

func registerAPIRoutes(api huma.API, store *postgres.Store) {
	v1.RegisterAgentRoutes(api, store)
	v1.RegisterSessionRoutes(api, store)
}

func registerWSRoutes(r chi.Router, hub *ws.Hub) {
	r.Get("/sessions/{sessionID}", hub.ServeLive)
	r.Get("/sessions/{sessionID}/events", hub.ServeEvents)
	r.Get("/feed", hub.ServeFeed)
}
