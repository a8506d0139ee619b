package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type SessionStatus string

const (
	SessionStatusPending   SessionStatus = "pending"
	SessionStatusLive      SessionStatus = "live"
	SessionStatusCompleted SessionStatus = "completed"
)

// IsTerminal reports whether no further state changes are allowed.
func (s SessionStatus) IsTerminal() bool {
	return s == SessionStatusCompleted
}

// ValidTransition checks if a session state transition is allowed.
// Allowed: pending->live, live->completed, pending->completed (abandoned
// before the first connect).
func (s SessionStatus) ValidTransition(to SessionStatus) bool {
	switch s {
	case SessionStatusPending:
		return to == SessionStatusLive || to == SessionStatusCompleted
	case SessionStatusLive:
		return to == SessionStatusCompleted
	default:
		return false
	}
}

// InterviewSession is the durable record of one interview. The in-memory
// live state (counters, buffers) lives in internal/live and is keyed by ID.
type InterviewSession struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	AgentID         uuid.UUID
	Status          SessionStatus
	StartedAt       time.Time
	EndedAt         *time.Time // nil until finalized
	DurationSeconds int
	CreatedAt       time.Time
}

type SessionRepository interface {
	Create(ctx context.Context, s *InterviewSession) error
	GetByID(ctx context.Context, id uuid.UUID) (*InterviewSession, error)
	MarkLive(ctx context.Context, id uuid.UUID, startedAt time.Time) error
	MarkCompleted(ctx context.Context, id uuid.UUID, endedAt time.Time, durationSeconds int) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*InterviewSession, error)
}
