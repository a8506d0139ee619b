package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Speaker string

const (
	SpeakerUser  Speaker = "user"
	SpeakerAgent Speaker = "agent"
)

// Turn is one utterance in an interview transcript. Seq is assigned by the
// live registry and is gapless per session, starting at 1.
type Turn struct {
	ID        uuid.UUID
	SessionID uuid.UUID
	Speaker   Speaker
	Content   string
	Seq       int
	CreatedAt time.Time
}

type TurnRepository interface {
	Create(ctx context.Context, t *Turn) error
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*Turn, error)
	CountBySession(ctx context.Context, sessionID uuid.UUID) (int, error)
}
