package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/parleylabs/parley/internal/domain"
)

type SessionRepo struct {
	pool *pgxpool.Pool
}

func NewSessionRepo(pool *pgxpool.Pool) *SessionRepo {
	return &SessionRepo{pool: pool}
}

func (r *SessionRepo) Create(ctx context.Context, s *domain.InterviewSession) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO interview_sessions (id, user_id, agent_id, status, started_at, ended_at, duration_seconds, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		s.ID, s.UserID, s.AgentID, s.Status, s.StartedAt, s.EndedAt, s.DurationSeconds, s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sessionRepo.Create: %w", err)
	}

	return nil
}

func (r *SessionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.InterviewSession, error) {
	var s domain.InterviewSession

	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, agent_id, status, started_at, ended_at, duration_seconds, created_at
		 FROM interview_sessions WHERE id = $1`,
		id,
	).Scan(&s.ID, &s.UserID, &s.AgentID, &s.Status, &s.StartedAt, &s.EndedAt, &s.DurationSeconds, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("sessionRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("sessionRepo.GetByID: %w", err)
	}

	return &s, nil
}

// MarkLive transitions a pending session to live. Returns ErrConflict when
// the session is missing or already past pending.
func (r *SessionRepo) MarkLive(ctx context.Context, id uuid.UUID, startedAt time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE interview_sessions SET status = $1, started_at = $2 WHERE id = $3 AND status = $4`,
		domain.SessionStatusLive, startedAt, id, domain.SessionStatusPending,
	)
	if err != nil {
		return fmt.Errorf("sessionRepo.MarkLive: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("sessionRepo.MarkLive: %w", domain.ErrConflict)
	}

	return nil
}

// MarkCompleted is idempotent: re-completing an already completed session
// rewrites the same terminal state.
func (r *SessionRepo) MarkCompleted(ctx context.Context, id uuid.UUID, endedAt time.Time, durationSeconds int) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE interview_sessions SET status = $1, ended_at = $2, duration_seconds = $3 WHERE id = $4`,
		domain.SessionStatusCompleted, endedAt, durationSeconds, id,
	)
	if err != nil {
		return fmt.Errorf("sessionRepo.MarkCompleted: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("sessionRepo.MarkCompleted: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *SessionRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.InterviewSession, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, agent_id, status, started_at, ended_at, duration_seconds, created_at
		 FROM interview_sessions WHERE user_id = $1
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sessionRepo.ListByUser: %w", err)
	}
	defer rows.Close()

	var sessions []*domain.InterviewSession
	for rows.Next() {
		var s domain.InterviewSession

		err = rows.Scan(&s.ID, &s.UserID, &s.AgentID, &s.Status, &s.StartedAt, &s.EndedAt, &s.DurationSeconds, &s.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("sessionRepo.ListByUser: scan: %w", err)
		}
		sessions = append(sessions, &s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("sessionRepo.ListByUser: rows: %w", err)
	}

	return sessions, nil
}
