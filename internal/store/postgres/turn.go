package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/parleylabs/parley/internal/domain"
)

type TurnRepo struct {
	pool *pgxpool.Pool
}

func NewTurnRepo(pool *pgxpool.Pool) *TurnRepo {
	return &TurnRepo{pool: pool}
}

func (r *TurnRepo) Create(ctx context.Context, t *domain.Turn) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO turns (id, session_id, speaker, content, seq, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		t.ID, t.SessionID, t.Speaker, t.Content, t.Seq, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("turnRepo.Create: %w", err)
	}

	return nil
}

func (r *TurnRepo) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*domain.Turn, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, session_id, speaker, content, seq, created_at
		 FROM turns WHERE session_id = $1
		 ORDER BY seq ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("turnRepo.ListBySession: %w", err)
	}
	defer rows.Close()

	var turns []*domain.Turn
	for rows.Next() {
		var t domain.Turn

		err = rows.Scan(&t.ID, &t.SessionID, &t.Speaker, &t.Content, &t.Seq, &t.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("turnRepo.ListBySession: scan: %w", err)
		}
		turns = append(turns, &t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("turnRepo.ListBySession: rows: %w", err)
	}

	return turns, nil
}

func (r *TurnRepo) CountBySession(ctx context.Context, sessionID uuid.UUID) (int, error) {
	var count int

	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM turns WHERE session_id = $1`,
		sessionID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("turnRepo.CountBySession: %w", err)
	}

	return count, nil
}
