package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/parleylabs/parley/internal/domain"
)

type ScoreRepo struct {
	pool *pgxpool.Pool
}

func NewScoreRepo(pool *pgxpool.Pool) *ScoreRepo {
	return &ScoreRepo{pool: pool}
}

func (r *ScoreRepo) Create(ctx context.Context, s *domain.Score) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO scores (id, session_id, metric, value, weight, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		s.ID, s.SessionID, s.Metric, s.Value, s.Weight, s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("scoreRepo.Create: %w", err)
	}

	return nil
}

func (r *ScoreRepo) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*domain.Score, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, session_id, metric, value, weight, created_at
		 FROM scores WHERE session_id = $1
		 ORDER BY metric ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("scoreRepo.ListBySession: %w", err)
	}
	defer rows.Close()

	var scores []*domain.Score
	for rows.Next() {
		var s domain.Score

		err = rows.Scan(&s.ID, &s.SessionID, &s.Metric, &s.Value, &s.Weight, &s.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scoreRepo.ListBySession: scan: %w", err)
		}
		scores = append(scores, &s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("scoreRepo.ListBySession: rows: %w", err)
	}

	return scores, nil
}
