package v1_test

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/parleylabs/parley/internal/auth"
	"github.com/parleylabs/parley/internal/domain"
	"github.com/parleylabs/parley/internal/server/middleware"
)

// ---------------------------------------------------------------------------
// Context helpers — inject user/role into context for DoCtx
// ---------------------------------------------------------------------------

func userCtx(userID uuid.UUID) context.Context {
	ctx := context.Background()
	ctx = context.WithValue(ctx, middleware.ContextKeyUserID, userID)
	ctx = context.WithValue(ctx, middleware.ContextKeyUserRole, domain.RoleMember)
	return ctx
}

func adminCtx(userID uuid.UUID) context.Context {
	ctx := context.Background()
	ctx = context.WithValue(ctx, middleware.ContextKeyUserID, userID)
	ctx = context.WithValue(ctx, middleware.ContextKeyUserRole, domain.RoleAdmin)
	return ctx
}

// ---------------------------------------------------------------------------
// Mock DataStore
// ---------------------------------------------------------------------------

type mockDataStore struct {
	users     *mockUserRepo
	agents    *mockAgentRepo
	sessions  *mockSessionRepo
	turns     *mockTurnRepo
	summaries *mockSummaryRepo
	scores    *mockScoreRepo
}

func (m *mockDataStore) Users() domain.UserRepository        { return m.users }
func (m *mockDataStore) Agents() domain.AgentRepository      { return m.agents }
func (m *mockDataStore) Sessions() domain.SessionRepository  { return m.sessions }
func (m *mockDataStore) Turns() domain.TurnRepository        { return m.turns }
func (m *mockDataStore) Summaries() domain.SummaryRepository { return m.summaries }
func (m *mockDataStore) Scores() domain.ScoreRepository      { return m.scores }

// ---------------------------------------------------------------------------
// Mock UserRepository
// ---------------------------------------------------------------------------

type mockUserRepo struct {
	createFunc     func(ctx context.Context, u *domain.User) error
	getByIDFunc    func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	getByEmailFunc func(ctx context.Context, email string) (*domain.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) error {
	return m.createFunc(ctx, u)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return m.getByEmailFunc(ctx, email)
}

// ---------------------------------------------------------------------------
// Mock AgentRepository
// ---------------------------------------------------------------------------

type mockAgentRepo struct {
	createFunc  func(ctx context.Context, a *domain.InterviewAgent) error
	getByIDFunc func(ctx context.Context, id uuid.UUID) (*domain.InterviewAgent, error)
	listFunc    func(ctx context.Context) ([]*domain.InterviewAgent, error)
	deleteFunc  func(ctx context.Context, id uuid.UUID) error
}

func (m *mockAgentRepo) Create(ctx context.Context, a *domain.InterviewAgent) error {
	return m.createFunc(ctx, a)
}

func (m *mockAgentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.InterviewAgent, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockAgentRepo) List(ctx context.Context) ([]*domain.InterviewAgent, error) {
	return m.listFunc(ctx)
}

func (m *mockAgentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFunc(ctx, id)
}

// ---------------------------------------------------------------------------
// Mock SessionRepository
// ---------------------------------------------------------------------------

type mockSessionRepo struct {
	createFunc        func(ctx context.Context, s *domain.InterviewSession) error
	getByIDFunc       func(ctx context.Context, id uuid.UUID) (*domain.InterviewSession, error)
	markLiveFunc      func(ctx context.Context, id uuid.UUID, startedAt time.Time) error
	markCompletedFunc func(ctx context.Context, id uuid.UUID, endedAt time.Time, durationSeconds int) error
	listByUserFunc    func(ctx context.Context, userID uuid.UUID) ([]*domain.InterviewSession, error)
}

func (m *mockSessionRepo) Create(ctx context.Context, s *domain.InterviewSession) error {
	return m.createFunc(ctx, s)
}

func (m *mockSessionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.InterviewSession, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockSessionRepo) MarkLive(ctx context.Context, id uuid.UUID, startedAt time.Time) error {
	return m.markLiveFunc(ctx, id, startedAt)
}

func (m *mockSessionRepo) MarkCompleted(ctx context.Context, id uuid.UUID, endedAt time.Time, durationSeconds int) error {
	return m.markCompletedFunc(ctx, id, endedAt, durationSeconds)
}

func (m *mockSessionRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.InterviewSession, error) {
	return m.listByUserFunc(ctx, userID)
}

// ---------------------------------------------------------------------------
// Mock TurnRepository
// ---------------------------------------------------------------------------

type mockTurnRepo struct {
	createFunc         func(ctx context.Context, t *domain.Turn) error
	listBySessionFunc  func(ctx context.Context, sessionID uuid.UUID) ([]*domain.Turn, error)
	countBySessionFunc func(ctx context.Context, sessionID uuid.UUID) (int, error)
}

func (m *mockTurnRepo) Create(ctx context.Context, t *domain.Turn) error {
	return m.createFunc(ctx, t)
}

func (m *mockTurnRepo) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*domain.Turn, error) {
	return m.listBySessionFunc(ctx, sessionID)
}

func (m *mockTurnRepo) CountBySession(ctx context.Context, sessionID uuid.UUID) (int, error) {
	return m.countBySessionFunc(ctx, sessionID)
}

// ---------------------------------------------------------------------------
// Mock SummaryRepository
// ---------------------------------------------------------------------------

type mockSummaryRepo struct {
	createFunc           func(ctx context.Context, s *domain.Summary) error
	getBySessionFunc     func(ctx context.Context, sessionID uuid.UUID) (*domain.Summary, error)
	existsForSessionFunc func(ctx context.Context, sessionID uuid.UUID) (bool, error)
}

func (m *mockSummaryRepo) Create(ctx context.Context, s *domain.Summary) error {
	return m.createFunc(ctx, s)
}

func (m *mockSummaryRepo) GetBySession(ctx context.Context, sessionID uuid.UUID) (*domain.Summary, error) {
	return m.getBySessionFunc(ctx, sessionID)
}

func (m *mockSummaryRepo) ExistsForSession(ctx context.Context, sessionID uuid.UUID) (bool, error) {
	return m.existsForSessionFunc(ctx, sessionID)
}

// ---------------------------------------------------------------------------
// Mock ScoreRepository
// ---------------------------------------------------------------------------

type mockScoreRepo struct {
	createFunc        func(ctx context.Context, s *domain.Score) error
	listBySessionFunc func(ctx context.Context, sessionID uuid.UUID) ([]*domain.Score, error)
}

func (m *mockScoreRepo) Create(ctx context.Context, s *domain.Score) error {
	return m.createFunc(ctx, s)
}

func (m *mockScoreRepo) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*domain.Score, error) {
	return m.listBySessionFunc(ctx, sessionID)
}

// ---------------------------------------------------------------------------
// Mock AuthService
// ---------------------------------------------------------------------------

type mockAuthService struct {
	registerFunc       func(ctx context.Context, email, password, name string) (*domain.User, error)
	loginFunc          func(ctx context.Context, email, password string) (string, string, error)
	loginWithOAuthFunc func(ctx context.Context, identity *auth.OAuthUser) (string, string, error)
	refreshTokenFunc   func(ctx context.Context, refreshToken string) (string, error)
}

func (m *mockAuthService) Register(ctx context.Context, email, password, name string) (*domain.User, error) {
	return m.registerFunc(ctx, email, password, name)
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (accessToken, refreshToken string, err error) {
	return m.loginFunc(ctx, email, password)
}

func (m *mockAuthService) LoginWithOAuth(ctx context.Context, identity *auth.OAuthUser) (accessToken, refreshToken string, err error) {
	return m.loginWithOAuthFunc(ctx, identity)
}

func (m *mockAuthService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	return m.refreshTokenFunc(ctx, refreshToken)
}

// ---------------------------------------------------------------------------
// Mock OAuthExchanger
// ---------------------------------------------------------------------------

type mockOAuthExchanger struct {
	authorizationURLFunc func(state string) string
	exchangeCodeFunc     func(ctx context.Context, code string) (*auth.OAuthUser, error)
}

func (m *mockOAuthExchanger) AuthorizationURL(state string) string {
	return m.authorizationURLFunc(state)
}

func (m *mockOAuthExchanger) ExchangeCode(ctx context.Context, code string) (*auth.OAuthUser, error) {
	return m.exchangeCodeFunc(ctx, code)
}
