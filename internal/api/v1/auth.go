package v1

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/parleylabs/parley/internal/auth"
	"github.com/parleylabs/parley/internal/domain"
)

type RegisterInput struct {
	Body struct {
		Email    string `json:"email" minLength:"3" maxLength:"255" doc:"User email"`
		Password string `json:"password" minLength:"8" maxLength:"128" doc:"Password"` //nolint:gosec // G117: login credential DTO
		Name     string `json:"name" minLength:"1" maxLength:"255" doc:"Display name"`
	}
}

type RegisterOutput struct {
	Body struct {
		User         *domain.User `json:"user"`
		AccessToken  string       `json:"access_token"`  //nolint:gosec // G117: auth response DTO
		RefreshToken string       `json:"refresh_token"` //nolint:gosec // G117: auth response DTO
	}
}

type LoginInput struct {
	Body struct {
		Email    string `json:"email" minLength:"3" maxLength:"255" doc:"User email"`
		Password string `json:"password" minLength:"1" maxLength:"128" doc:"Password"` //nolint:gosec // G117: login credential DTO
	}
}

type LoginOutput struct {
	Body struct {
		AccessToken  string `json:"access_token"`  //nolint:gosec // G117: auth response DTO
		RefreshToken string `json:"refresh_token"` //nolint:gosec // G117: auth response DTO
	}
}

type RefreshInput struct {
	Body struct {
		RefreshToken string `json:"refresh_token" minLength:"1" doc:"Refresh token"` //nolint:gosec // G117: token refresh DTO
	}
}

type RefreshOutput struct {
	Body struct {
		AccessToken string `json:"access_token"` //nolint:gosec // G117: auth response DTO
	}
}

type OAuthStartInput struct {
	Provider string `path:"provider" doc:"Identity provider (google, github)"`
}

type OAuthStartOutput struct {
	Body struct {
		AuthURL string `json:"auth_url" doc:"Provider authorization URL to redirect the user to"`
		State   string `json:"state" doc:"Opaque state the client must send back on callback"`
	}
}

type OAuthCallbackInput struct {
	Provider string `path:"provider" doc:"Identity provider (google, github)"`
	Body     struct {
		Code string `json:"code" minLength:"1" doc:"Authorization code from the provider redirect"`
	}
}

type OAuthCallbackOutput struct {
	Body struct {
		AccessToken  string `json:"access_token"`  //nolint:gosec // G117: auth response DTO
		RefreshToken string `json:"refresh_token"` //nolint:gosec // G117: auth response DTO
	}
}

func RegisterAuthRoutes(api huma.API, authSvc AuthService, providers map[string]OAuthExchanger) {
	huma.Register(api, huma.Operation{
		OperationID: "register",
		Method:      http.MethodPost,
		Path:        "/auth/register",
		Summary:     "Register a new user",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *RegisterInput) (*RegisterOutput, error) {
		user, err := authSvc.Register(ctx, input.Body.Email, input.Body.Password, input.Body.Name)
		if err != nil {
			if errors.Is(err, auth.ErrUserAlreadyExists) {
				return nil, huma.Error409Conflict("user already exists")
			}
			return nil, huma.Error500InternalServerError("failed to register user", err)
		}

		accessToken, refreshToken, err := authSvc.Login(ctx, input.Body.Email, input.Body.Password)
		if err != nil {
			return nil, huma.Error500InternalServerError("registered but failed to issue tokens", err)
		}

		user.PasswordHash = ""

		out := &RegisterOutput{}
		out.Body.User = user
		out.Body.AccessToken = accessToken
		out.Body.RefreshToken = refreshToken
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/auth/login",
		Summary:     "Login with email and password",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
		accessToken, refreshToken, err := authSvc.Login(ctx, input.Body.Email, input.Body.Password)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				return nil, huma.Error401Unauthorized("invalid email or password")
			}
			return nil, huma.Error500InternalServerError("login failed", err)
		}

		out := &LoginOutput{}
		out.Body.AccessToken = accessToken
		out.Body.RefreshToken = refreshToken
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "refresh-token",
		Method:      http.MethodPost,
		Path:        "/auth/refresh",
		Summary:     "Refresh access token",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *RefreshInput) (*RefreshOutput, error) {
		accessToken, err := authSvc.RefreshToken(ctx, input.Body.RefreshToken)
		if err != nil {
			return nil, huma.Error401Unauthorized("invalid or expired refresh token")
		}

		out := &RefreshOutput{}
		out.Body.AccessToken = accessToken
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "oauth-start",
		Method:      http.MethodGet,
		Path:        "/auth/oauth/{provider}",
		Summary:     "Begin an OAuth sign-in",
		Tags:        []string{"Auth"},
	}, func(_ context.Context, input *OAuthStartInput) (*OAuthStartOutput, error) {
		provider, ok := providers[input.Provider]
		if !ok {
			return nil, huma.Error404NotFound("unknown or unconfigured provider: " + input.Provider)
		}

		state, err := randomState()
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to generate state", err)
		}

		out := &OAuthStartOutput{}
		out.Body.AuthURL = provider.AuthorizationURL(state)
		out.Body.State = state
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "oauth-callback",
		Method:      http.MethodPost,
		Path:        "/auth/oauth/{provider}/callback",
		Summary:     "Complete an OAuth sign-in with an authorization code",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *OAuthCallbackInput) (*OAuthCallbackOutput, error) {
		provider, ok := providers[input.Provider]
		if !ok {
			return nil, huma.Error404NotFound("unknown or unconfigured provider: " + input.Provider)
		}

		identity, err := provider.ExchangeCode(ctx, input.Body.Code)
		if err != nil {
			return nil, huma.Error401Unauthorized("authorization code rejected")
		}

		accessToken, refreshToken, err := authSvc.LoginWithOAuth(ctx, identity)
		if err != nil {
			if errors.Is(err, auth.ErrEmailRequired) {
				return nil, huma.Error400BadRequest("identity provider returned no email")
			}
			return nil, huma.Error500InternalServerError("sign-in failed", err)
		}

		out := &OAuthCallbackOutput{}
		out.Body.AccessToken = accessToken
		out.Body.RefreshToken = refreshToken
		return out, nil
	})
}

// randomState mints the opaque anti-forgery value the client round-trips
// through the provider redirect.
func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
