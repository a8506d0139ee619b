package live

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/parleylabs/parley/internal/store/redis"
)

// Publisher abstracts the Redis pub/sub publish operation.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

const (
	EventSessionStarted   = "session_started"
	EventTurn             = "turn"
	EventSessionFinalized = "session_finalized"
)

// Event is the payload observers receive on the session and lifecycle
// channels.
type Event struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
	Speaker   string `json:"speaker,omitempty"`
	Seq       int    `json:"seq,omitempty"`
	Text      string `json:"text,omitempty"`
	Reason    string `json:"reason,omitempty"`
	Score     int    `json:"score,omitempty"`
}

// PublishSessionStarted announces a session going live on its own channel and
// the lifecycle feed. The transport calls this on the first connect.
func PublishSessionStarted(pub Publisher, sessionID uuid.UUID) {
	publishEvent(pub, sessionID, Event{
		Type:      EventSessionStarted,
		SessionID: sessionID.String(),
	})
}

// publishEvent sends best-effort: event delivery never blocks or fails the
// interview path. Lifecycle events additionally fan out to the global feed.
func publishEvent(pub Publisher, sessionID uuid.UUID, evt Event) {
	if pub == nil {
		return
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	channel := redis.SessionChannel(sessionID)
	if err := pub.Publish(ctx, channel, payload); err != nil {
		log.Error().Err(err).Str("channel", channel).Msg("live.publishEvent: failed to publish")
	}

	if evt.Type == EventSessionStarted || evt.Type == EventSessionFinalized {
		if err := pub.Publish(ctx, redis.SessionsChannel(), payload); err != nil {
			log.Error().Err(err).Str("channel", redis.SessionsChannel()).Msg("live.publishEvent: failed to publish lifecycle")
		}
	}
}
