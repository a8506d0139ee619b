package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Summary is the post-interview evaluation. At most one exists per session;
// its presence is the durable marker that finalization ran to completion.
type Summary struct {
	ID              uuid.UUID
	SessionID       uuid.UUID
	Narrative       string
	Strengths       []string
	Weaknesses      []string
	Recommendations []string
	OverallScore    int // 0..100
	CreatedAt       time.Time
}

type SummaryRepository interface {
	Create(ctx context.Context, s *Summary) error
	GetBySession(ctx context.Context, sessionID uuid.UUID) (*Summary, error)
	ExistsForSession(ctx context.Context, sessionID uuid.UUID) (bool, error)
}

// Score is one weighted evaluation metric contributing to a summary's
// overall score.
type Score struct {
	ID        uuid.UUID
	SessionID uuid.UUID
	Metric    string
	Value     int // 0..100
	Weight    float64
	CreatedAt time.Time
}

type ScoreRepository interface {
	Create(ctx context.Context, s *Score) error
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*Score, error)
}
