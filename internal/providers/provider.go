// Package providers adapts upstream identity providers to one flow shape.
//
// Architecture:
//   - Provider: what the broker needs from an upstream (authorize URL, code
//     exchange, profile fetch).
//   - Descriptor: per-provider data (endpoints, scopes, exchange style, profile
//     mapping). One generic adapter (oauthProvider) runs every descriptor.
//   - Registry: builds each configured provider once and hands it out by name.
//   - One sub-package per provider supplies its Descriptor and Factory.
package providers

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// DefaultHTTPTimeout bounds every upstream call.
const DefaultHTTPTimeout = 10 * time.Second

// Provider is one upstream identity provider.
type Provider interface {
	Name() string

	// AuthorizeURL builds the upstream authorize URL carrying state unchanged.
	AuthorizeURL(state string) string
	Exchange(ctx context.Context, code string) (*TokenSet, error)
	UserInfo(ctx context.Context, tok *TokenSet) (*UserProfile, error)

	// CachesIdentity: the callback must cache the profile for YIKONG sign-on
	// and append it to the relying app redirect.
	CachesIdentity() bool

	Validate() error
}

// Config is the per-provider configuration.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	// BaseURL of the upstream (authorize/token endpoints hang from it).
	BaseURL string
	// APIURL for providers with a separate API host (GitHub).
	APIURL string
	Scopes []string

	HTTPTimeout time.Duration
	// HTTPClient overrides the default client (tests).
	HTTPClient *http.Client
}

// TokenSet contains tokens received from the provider.
type TokenSet struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresIn    int
}

// UserProfile is the normalized profile handed to the broker.
type UserProfile struct {
	ProviderID string
	Name       string
	Email      string

	Raw map[string]any
}

var (
	ErrNotConfigured   = errors.New("providers: client id or client secret is not configured")
	ErrUnknownProvider = errors.New("providers: unknown provider")
	ErrUpstream        = errors.New("providers: upstream error")
	ErrNoAccessToken   = errors.New("providers: no access_token in response")
	ErrIncomplete      = errors.New("providers: profile is missing name or email")
)
