package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// InterviewAgent is a configured interviewer persona. Sessions capture the
// agent by ID at creation time; the fields below are read-only for the
// lifetime of any session that references them.
type InterviewAgent struct {
	ID          uuid.UUID
	Name        string
	Personality string // free-text persona description fed to the LLM
	Industry    string // e.g. "fintech", "healthcare"
	Level       string // e.g. "junior", "senior", "staff"
	Voice       string // TTS voice identifier
	SystemNotes string // extra instructions appended to the system prompt
	CreatedAt   time.Time
}

type AgentRepository interface {
	Create(ctx context.Context, a *InterviewAgent) error
	GetByID(ctx context.Context, id uuid.UUID) (*InterviewAgent, error)
	List(ctx context.Context) ([]*InterviewAgent, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
