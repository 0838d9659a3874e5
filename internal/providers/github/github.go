// Package github implements the GitHub OAuth 2.0 provider.
// GitHub has no ID token, so the profile comes from two API calls:
// /user for the login and /user/emails for a verified address.
package github

import (
	"context"
	"net/http"
	"strings"

	"github.com/dropDatabas3/authbridge/internal/providers"
	"golang.org/x/oauth2"
)

const (
	Name = "github"

	defaultBaseURL = "https://github.com"
	defaultAPIURL  = "https://api.github.com"
)

// Descriptor describes github.com (or a GitHub Enterprise host via BaseURL/APIURL).
func Descriptor(cfg providers.Config) providers.Descriptor {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	return providers.Descriptor{
		Name:      Name,
		AuthURL:   base + "/login/oauth/authorize",
		TokenURL:  base + "/login/oauth/access_token",
		Scopes:    []string{"user:email"},
		AuthStyle: oauth2.AuthStyleInParams,
		Profile:   profile,
	}
}

func Factory(cfg providers.Config) (providers.Provider, error) {
	return providers.New(Descriptor(cfg), cfg)
}

type userInfo struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type emailInfo struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

func profile(ctx context.Context, c *providers.Client, tok *providers.TokenSet) (*providers.UserProfile, error) {
	api := strings.TrimRight(c.Cfg.APIURL, "/")
	if api == "" {
		api = defaultAPIURL
	}
	h := http.Header{}
	h.Set("Authorization", "Bearer "+tok.AccessToken)
	h.Set("Accept", "application/vnd.github+json")

	var u userInfo
	if err := c.GetJSON(ctx, "user", api+"/user", h, &u); err != nil {
		return nil, err
	}
	var emails []emailInfo
	if err := c.GetJSON(ctx, "emails", api+"/user/emails", h, &emails); err != nil {
		return nil, err
	}

	return &providers.UserProfile{
		ProviderID: u.Login,
		Name:       u.Login,
		Email:      pickEmail(emails, u.Email),
		Raw:        map[string]any{"id": u.ID, "name": u.Name},
	}, nil
}

// pickEmail prefers primary+verified, then any verified, then the public profile email.
func pickEmail(emails []emailInfo, public string) string {
	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email
		}
	}
	for _, e := range emails {
		if e.Verified {
			return e.Email
		}
	}
	return public
}
