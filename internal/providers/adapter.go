package providers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// ExchangeFunc replaces the standard form-encoded code exchange.
type ExchangeFunc func(ctx context.Context, c *Client, code string) (*TokenSet, error)

// ProfileFunc fetches and normalizes the profile for an access token.
type ProfileFunc func(ctx context.Context, c *Client, tok *TokenSet) (*UserProfile, error)

// Descriptor is everything provider-specific.
type Descriptor struct {
	Name     string
	AuthURL  string
	TokenURL string
	Scopes   []string
	// AuthStyle for the standard exchange (client credentials in body or header).
	AuthStyle oauth2.AuthStyle
	// AuthParams are appended to the authorize URL.
	AuthParams map[string]string

	Exchange ExchangeFunc // nil: standard oauth2 exchange
	Profile  ProfileFunc

	CachesIdentity bool
}

// oauthProvider runs any Descriptor.
type oauthProvider struct {
	desc   Descriptor
	oauth  *oauth2.Config
	client *Client
}

// New builds the generic adapter for a descriptor.
func New(desc Descriptor, cfg Config) (Provider, error) {
	if desc.Profile == nil {
		return nil, errors.New("providers: descriptor " + desc.Name + " has no profile func")
	}
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.HTTPTimeout
		if timeout <= 0 {
			timeout = DefaultHTTPTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	scopes := desc.Scopes
	if len(cfg.Scopes) > 0 {
		scopes = cfg.Scopes
	}
	return &oauthProvider{
		desc: desc,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   desc.AuthURL,
				TokenURL:  desc.TokenURL,
				AuthStyle: desc.AuthStyle,
			},
		},
		client: &Client{Name: desc.Name, Cfg: cfg, HTTP: hc},
	}, nil
}

func (p *oauthProvider) Name() string { return p.desc.Name }

func (p *oauthProvider) CachesIdentity() bool { return p.desc.CachesIdentity }

func (p *oauthProvider) Validate() error {
	if strings.TrimSpace(p.oauth.ClientID) == "" || strings.TrimSpace(p.oauth.ClientSecret) == "" {
		return ErrNotConfigured
	}
	if p.desc.AuthURL == "" || p.desc.TokenURL == "" {
		return errors.New("providers: " + p.desc.Name + " endpoints are not configured")
	}
	return nil
}

func (p *oauthProvider) AuthorizeURL(state string) string {
	opts := make([]oauth2.AuthCodeOption, 0, len(p.desc.AuthParams))
	for k, v := range p.desc.AuthParams {
		opts = append(opts, oauth2.SetAuthURLParam(k, v))
	}
	return p.oauth.AuthCodeURL(state, opts...)
}

func (p *oauthProvider) Exchange(ctx context.Context, code string) (*TokenSet, error) {
	if p.desc.Exchange != nil {
		return p.desc.Exchange(ctx, p.client, code)
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.client.HTTP)
	tok, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, &UpstreamError{Provider: p.desc.Name, Op: "token", Err: err}
	}
	ts := &TokenSet{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
	}
	if !tok.Expiry.IsZero() {
		ts.ExpiresIn = int(time.Until(tok.Expiry).Seconds())
	}
	return ts, nil
}

func (p *oauthProvider) UserInfo(ctx context.Context, tok *TokenSet) (*UserProfile, error) {
	prof, err := p.desc.Profile(ctx, p.client, tok)
	if err != nil {
		return nil, err
	}
	if prof.Name == "" || prof.Email == "" {
		return nil, &UpstreamError{Provider: p.desc.Name, Op: "profile", Err: ErrIncomplete}
	}
	return prof, nil
}
