package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"
)

// HTTPClient is the subset of http.Client used to fetch provider user info.
// This allows testing without real HTTP calls.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// OAuthUser is the identity a provider vouches for after a code exchange.
type OAuthUser struct {
	Provider   string
	ProviderID string
	Email      string
	Name       string
}

// OAuthProvider holds the configuration for an OAuth2 identity provider.
type OAuthProvider struct {
	Name        string
	UserInfoURL string

	// HTTPClient overrides the token-bound client for user info fetches.
	// Nil means the oauth2 client built from the exchanged token.
	HTTPClient HTTPClient

	oauthConfig *oauth2.Config
}

// NewGoogleProvider returns an OAuth2 configuration for Google.
func NewGoogleProvider(clientID, clientSecret, redirectURL string) *OAuthProvider {
	return &OAuthProvider{
		Name:        "google",
		UserInfoURL: "https://www.googleapis.com/oauth2/v2/userinfo",
		oauthConfig: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{"openid", "email", "profile"},
			RedirectURL:  redirectURL,
		},
	}
}

// NewGitHubProvider returns an OAuth2 configuration for GitHub.
func NewGitHubProvider(clientID, clientSecret, redirectURL string) *OAuthProvider {
	return &OAuthProvider{
		Name:        "github",
		UserInfoURL: "https://api.github.com/user",
		oauthConfig: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     github.Endpoint,
			Scopes:       []string{"read:user", "user:email"},
			RedirectURL:  redirectURL,
		},
	}
}

// AuthorizationURL returns the OAuth2 authorization URL with the given state parameter.
func (p *OAuthProvider) AuthorizationURL(state string) string {
	return p.oauthConfig.AuthCodeURL(state)
}

// ExchangeCode exchanges an authorization code for tokens and fetches the
// provider's view of the user.
func (p *OAuthProvider) ExchangeCode(ctx context.Context, code string) (*OAuthUser, error) {
	token, err := p.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("auth.ExchangeCode: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.UserInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("auth.ExchangeCode: %w", err)
	}

	client := p.HTTPClient
	if client == nil {
		client = p.oauthConfig.Client(ctx, token)
	} else {
		token.SetAuthHeader(req)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth.ExchangeCode: fetching user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth.ExchangeCode: user info returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("auth.ExchangeCode: reading user info: %w", err)
	}

	switch p.Name {
	case "google":
		return parseGoogleUserInfo(body)
	case "github":
		return parseGitHubUserInfo(body)
	default:
		return nil, fmt.Errorf("auth.ExchangeCode: unsupported provider %q", p.Name)
	}
}

type googleUserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func parseGoogleUserInfo(data []byte) (*OAuthUser, error) {
	var info googleUserInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("auth.parseGoogleUserInfo: %w", err)
	}

	return &OAuthUser{
		Provider:   "google",
		ProviderID: info.ID,
		Email:      info.Email,
		Name:       info.Name,
	}, nil
}

type gitHubUserInfo struct {
	ID    int    `json:"id"`
	Login string `json:"login"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func parseGitHubUserInfo(data []byte) (*OAuthUser, error) {
	var info gitHubUserInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("auth.parseGitHubUserInfo: %w", err)
	}

	name := info.Name
	if name == "" {
		name = info.Login
	}

	return &OAuthUser{
		Provider:   "github",
		ProviderID: fmt.Sprintf("%d", info.ID),
		Email:      info.Email,
		Name:       name,
	}, nil
}
