package v1

import (
	"context"

	"github.com/parleylabs/parley/internal/auth"
	"github.com/parleylabs/parley/internal/domain"
)

// DataStore abstracts the repository accessor pattern for handler testing.
// *postgres.Store satisfies this interface.
type DataStore interface {
	Users() domain.UserRepository
	Agents() domain.AgentRepository
	Sessions() domain.SessionRepository
	Turns() domain.TurnRepository
	Summaries() domain.SummaryRepository
	Scores() domain.ScoreRepository
}

// AuthService abstracts authentication operations for handler testing.
// *auth.Service satisfies this interface.
type AuthService interface {
	Register(ctx context.Context, email, password, name string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (accessToken, refreshToken string, err error)
	LoginWithOAuth(ctx context.Context, identity *auth.OAuthUser) (accessToken, refreshToken string, err error)
	RefreshToken(ctx context.Context, refreshToken string) (string, error)
}

// OAuthExchanger abstracts one configured identity provider for handler
// testing. *auth.OAuthProvider satisfies this interface.
type OAuthExchanger interface {
	AuthorizationURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*auth.OAuthUser, error)
}
