package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/parleylabs/parley/internal/domain"
)

type AgentRepo struct {
	pool *pgxpool.Pool
}

func NewAgentRepo(pool *pgxpool.Pool) *AgentRepo {
	return &AgentRepo{pool: pool}
}

func (r *AgentRepo) Create(ctx context.Context, a *domain.InterviewAgent) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO interview_agents (id, name, personality, industry, level, voice, system_notes, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.Name, a.Personality, a.Industry, a.Level, a.Voice, a.SystemNotes, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("agentRepo.Create: %w", err)
	}

	return nil
}

func (r *AgentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.InterviewAgent, error) {
	var a domain.InterviewAgent

	err := r.pool.QueryRow(ctx,
		`SELECT id, name, personality, industry, level, voice, system_notes, created_at
		 FROM interview_agents WHERE id = $1`,
		id,
	).Scan(&a.ID, &a.Name, &a.Personality, &a.Industry, &a.Level, &a.Voice, &a.SystemNotes, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("agentRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("agentRepo.GetByID: %w", err)
	}

	return &a, nil
}

func (r *AgentRepo) List(ctx context.Context) ([]*domain.InterviewAgent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, personality, industry, level, voice, system_notes, created_at
		 FROM interview_agents ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("agentRepo.List: %w", err)
	}
	defer rows.Close()

	var agents []*domain.InterviewAgent
	for rows.Next() {
		var a domain.InterviewAgent

		err = rows.Scan(&a.ID, &a.Name, &a.Personality, &a.Industry, &a.Level, &a.Voice, &a.SystemNotes, &a.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("agentRepo.List: scan: %w", err)
		}
		agents = append(agents, &a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("agentRepo.List: rows: %w", err)
	}

	return agents, nil
}

func (r *AgentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM interview_agents WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("agentRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("agentRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}
