package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/parleylabs/parley/internal/domain"
)

type SummaryRepo struct {
	pool *pgxpool.Pool
}

func NewSummaryRepo(pool *pgxpool.Pool) *SummaryRepo {
	return &SummaryRepo{pool: pool}
}

func (r *SummaryRepo) Create(ctx context.Context, s *domain.Summary) error {
	strengths, err := json.Marshal(s.Strengths)
	if err != nil {
		return fmt.Errorf("summaryRepo.Create: marshal strengths: %w", err)
	}

	weaknesses, err := json.Marshal(s.Weaknesses)
	if err != nil {
		return fmt.Errorf("summaryRepo.Create: marshal weaknesses: %w", err)
	}

	recommendations, err := json.Marshal(s.Recommendations)
	if err != nil {
		return fmt.Errorf("summaryRepo.Create: marshal recommendations: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO summaries (id, session_id, narrative, strengths, weaknesses, recommendations, overall_score, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		s.ID, s.SessionID, s.Narrative, strengths, weaknesses, recommendations, s.OverallScore, s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("summaryRepo.Create: %w", err)
	}

	return nil
}

func (r *SummaryRepo) GetBySession(ctx context.Context, sessionID uuid.UUID) (*domain.Summary, error) {
	var s domain.Summary
	var strengths, weaknesses, recommendations []byte

	err := r.pool.QueryRow(ctx,
		`SELECT id, session_id, narrative, strengths, weaknesses, recommendations, overall_score, created_at
		 FROM summaries WHERE session_id = $1`,
		sessionID,
	).Scan(&s.ID, &s.SessionID, &s.Narrative, &strengths, &weaknesses, &recommendations, &s.OverallScore, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("summaryRepo.GetBySession: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("summaryRepo.GetBySession: %w", err)
	}

	if err := json.Unmarshal(strengths, &s.Strengths); err != nil {
		return nil, fmt.Errorf("summaryRepo.GetBySession: unmarshal strengths: %w", err)
	}
	if err := json.Unmarshal(weaknesses, &s.Weaknesses); err != nil {
		return nil, fmt.Errorf("summaryRepo.GetBySession: unmarshal weaknesses: %w", err)
	}
	if err := json.Unmarshal(recommendations, &s.Recommendations); err != nil {
		return nil, fmt.Errorf("summaryRepo.GetBySession: unmarshal recommendations: %w", err)
	}

	return &s, nil
}

func (r *SummaryRepo) ExistsForSession(ctx context.Context, sessionID uuid.UUID) (bool, error) {
	var exists bool

	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM summaries WHERE session_id = $1)`,
		sessionID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("summaryRepo.ExistsForSession: %w", err)
	}

	return exists, nil
}
