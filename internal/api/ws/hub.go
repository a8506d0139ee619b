package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/parleylabs/parley/internal/domain"
	"github.com/parleylabs/parley/internal/live"
	"github.com/parleylabs/parley/internal/metrics"
	"github.com/parleylabs/parley/internal/server/middleware"
	redisstore "github.com/parleylabs/parley/internal/store/redis"
)

// Hub terminates WebSocket connections for live interviews and their
// observers. Interview frames are handed to the live router one at a time;
// observer connections only read from Redis pub/sub.
type Hub struct {
	registry *live.Registry
	router   *live.Router
	sessions domain.SessionRepository
	agents   domain.AgentRepository
	pubsub   *redisstore.PubSub
	metrics  *metrics.Metrics
}

// NewHub creates a new WebSocket hub.
func NewHub(
	registry *live.Registry,
	router *live.Router,
	sessions domain.SessionRepository,
	agents domain.AgentRepository,
	pubsub *redisstore.PubSub,
	m *metrics.Metrics,
) *Hub {
	return &Hub{
		registry: registry,
		router:   router,
		sessions: sessions,
		agents:   agents,
		pubsub:   pubsub,
		metrics:  m,
	}
}

// ServeLive handles the candidate's interview connection. The session must
// exist, belong to the caller, and not be completed. The first connect moves
// it to live; reconnects reuse the registered state. A dropped connection
// does not finalize anything, the idle monitor reclaims abandoned sessions.
func (h *Hub) ServeLive(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing user", http.StatusUnauthorized)
		return
	}

	sessionIDStr := chi.URLParam(r, "sessionID")
	sessionID, err := uuid.Parse(sessionIDStr)
	if err != nil {
		http.Error(w, "invalid session id", http.StatusBadRequest)
		return
	}

	sess, err := h.sessions.GetByID(r.Context(), sessionID)
	if err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	// Ownership failures look identical to missing sessions.
	if sess.UserID != userID {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	if sess.Status.IsTerminal() {
		http.Error(w, "session already completed", http.StatusConflict)
		return
	}

	agent, err := h.agents.GetByID(r.Context(), sess.AgentID)
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID.String()).Msg("websocket agent lookup")
		http.Error(w, "interviewer unavailable", http.StatusInternalServerError)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket accept")
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()

	// The gauge tracks registry entries, not the pending transition: after a
	// restart a client reconnecting to a DB-live session still creates fresh
	// in-process state, and finalize decrements for every entry removed.
	if _, created := h.registry.Register(sessionID, userID, *agent); created {
		h.metrics.RecordSessionStart()
	}

	if sess.Status == domain.SessionStatusPending {
		if markErr := h.sessions.MarkLive(ctx, sessionID, time.Now()); markErr != nil {
			log.Error().Err(markErr).Str("session_id", sessionID.String()).Msg("websocket mark live")
		}
		live.PublishSessionStarted(h.pubsub, sessionID)
	}

	log.Info().
		Str("session_id", sessionID.String()).
		Str("user_id", userID.String()).
		Str("agent", agent.Name).
		Msg("live interview connected")

	for {
		_, data, readErr := conn.Read(ctx)
		if readErr != nil {
			log.Debug().Err(readErr).Str("session_id", sessionID.String()).Msg("websocket read")
			return
		}

		var msg live.Inbound
		if unmarshalErr := json.Unmarshal(data, &msg); unmarshalErr != nil {
			if writeErr := h.writeOutbound(ctx, conn, live.Outbound{Type: live.MessageError, Error: "malformed frame"}); writeErr != nil {
				return
			}
			continue
		}

		for _, out := range h.router.Handle(ctx, sessionID, msg) {
			if writeErr := h.writeOutbound(ctx, conn, out); writeErr != nil {
				log.Debug().Err(writeErr).Str("session_id", sessionID.String()).Msg("websocket write")
				return
			}

			if out.Type == live.MessageEndSession {
				_ = conn.Close(websocket.StatusNormalClosure, "session ended")
				return
			}
		}
	}
}

// ServeEvents handles WebSocket connections for observers of one interview.
// Subscribes to Redis channel "session:<sessionID>" and streams turn and
// lifecycle events to connected clients.
func (h *Hub) ServeEvents(w http.ResponseWriter, r *http.Request) {
	sessionIDStr := chi.URLParam(r, "sessionID")
	sessionID, err := uuid.Parse(sessionIDStr)
	if err != nil {
		http.Error(w, "invalid session id", http.StatusBadRequest)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket accept")
		return
	}
	defer conn.CloseNow()

	h.stream(r.Context(), conn, redisstore.SessionChannel(sessionID))
}

// ServeFeed handles WebSocket connections for the cross-session lifecycle
// feed. Subscribes to Redis channel "sessions" and streams started and
// finalized events for every interview.
func (h *Hub) ServeFeed(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket accept")
		return
	}
	defer conn.CloseNow()

	h.stream(r.Context(), conn, redisstore.SessionsChannel())
}

// stream forwards every message on a Redis channel to the connection until
// either side goes away.
func (h *Hub) stream(ctx context.Context, conn *websocket.Conn, channel string) {
	messages, cleanup, err := h.pubsub.Subscribe(ctx, channel)
	if err != nil {
		log.Error().Err(err).Str("channel", channel).Msg("websocket subscribe")
		_ = conn.Close(websocket.StatusInternalError, "subscribe failed")
		return
	}
	defer cleanup()

	for {
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusNormalClosure, "connection closed")
			return
		case msg, msgOK := <-messages:
			if !msgOK {
				_ = conn.Close(websocket.StatusNormalClosure, "channel closed")
				return
			}
			if writeErr := conn.Write(ctx, websocket.MessageText, msg); writeErr != nil {
				log.Debug().Err(writeErr).Msg("websocket write")
				return
			}
		}
	}
}

func (h *Hub) writeOutbound(ctx context.Context, conn *websocket.Conn, out live.Outbound) error {
	payload, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("ws.Hub.writeOutbound: %w", err)
	}

	return conn.Write(ctx, websocket.MessageText, payload)
}
