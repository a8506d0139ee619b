package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/parleylabs/parley/internal/domain"
)

type Store struct {
	pool      *pgxpool.Pool
	users     *UserRepo
	agents    *AgentRepo
	sessions  *SessionRepo
	turns     *TurnRepo
	summaries *SummaryRepo
	scores    *ScoreRepo
}

func New(ctx context.Context, dsn string, maxConns int32) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: parse config: %w", err)
	}

	cfg.MaxConns = maxConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: connect: %w", err)
	}

	err = pool.Ping(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: ping: %w", err)
	}

	return &Store{
		pool:      pool,
		users:     NewUserRepo(pool),
		agents:    NewAgentRepo(pool),
		sessions:  NewSessionRepo(pool),
		turns:     NewTurnRepo(pool),
		summaries: NewSummaryRepo(pool),
		scores:    NewScoreRepo(pool),
	}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Users() domain.UserRepository         { return s.users }
func (s *Store) Agents() domain.AgentRepository       { return s.agents }
func (s *Store) Sessions() domain.SessionRepository   { return s.sessions }
func (s *Store) Turns() domain.TurnRepository         { return s.turns }
func (s *Store) Summaries() domain.SummaryRepository  { return s.summaries }
func (s *Store) Scores() domain.ScoreRepository       { return s.scores }
