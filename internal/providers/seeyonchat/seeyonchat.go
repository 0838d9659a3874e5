// Package seeyonchat implements the Seeyon Chat SSO provider.
package seeyonchat

import (
	"context"
	"net/http"
	"strings"

	"github.com/dropDatabas3/authbridge/internal/providers"
)

const (
	Name = "seeyon-chat"

	DefaultBaseURL = "http://localhost:3001/api/oauth2"
)

func Descriptor(cfg providers.Config) providers.Descriptor {
	base := baseURL(cfg)
	return providers.Descriptor{
		Name:     Name,
		AuthURL:  base + "/authorize",
		TokenURL: base + "/token",
		Scopes:   []string{"name", "email"},
		Exchange: exchange,
		Profile:  profile,
	}
}

func Factory(cfg providers.Config) (providers.Provider, error) {
	return providers.New(Descriptor(cfg), cfg)
}

func baseURL(cfg providers.Config) string {
	if b := strings.TrimRight(cfg.BaseURL, "/"); b != "" {
		return b
	}
	return DefaultBaseURL
}

func exchange(ctx context.Context, c *providers.Client, code string) (*providers.TokenSet, error) {
	return c.PostJSONToken(ctx, baseURL(c.Cfg)+"/token", map[string]string{
		"client_id":     c.Cfg.ClientID,
		"client_secret": c.Cfg.ClientSecret,
		"code":          code,
		"redirect_uri":  c.Cfg.RedirectURI,
	})
}

func profile(ctx context.Context, c *providers.Client, tok *providers.TokenSet) (*providers.UserProfile, error) {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+tok.AccessToken)

	var body struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := c.GetJSON(ctx, "resource", baseURL(c.Cfg)+"/resource", h, &body); err != nil {
		return nil, err
	}
	return &providers.UserProfile{ProviderID: body.Email, Name: body.Name, Email: body.Email}, nil
}
