// Package yikong implements the Yikong enterprise SSO (CAS-style OAuth 2.0).
//
// Yikong identities are cached after the callback so a non-redirect client can
// later claim them through the YIKONG sign-on method.
package yikong

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/dropDatabas3/authbridge/internal/providers"
)

const (
	Name = "yikong"

	emailDomain = "example.com"
)

func Descriptor(cfg providers.Config) providers.Descriptor {
	base := strings.TrimRight(cfg.BaseURL, "/")
	return providers.Descriptor{
		Name:           Name,
		AuthURL:        endpoint(base, "authorize"),
		TokenURL:       endpoint(base, "accessToken"),
		Exchange:       exchange,
		Profile:        profile,
		CachesIdentity: true,
	}
}

func Factory(cfg providers.Config) (providers.Provider, error) {
	return providers.New(Descriptor(cfg), cfg)
}

// endpoint is empty without a base URL so Validate fails closed.
func endpoint(base, name string) string {
	if base == "" {
		return ""
	}
	return base + "/esc-sso/oauth2.0/" + name
}

// exchange sends every parameter in the query string with an empty JSON body,
// which is what the Yikong server accepts.
func exchange(ctx context.Context, c *providers.Client, code string) (*providers.TokenSet, error) {
	q := url.Values{}
	q.Set("grant_type", "authorization_code")
	q.Set("client_id", c.Cfg.ClientID)
	q.Set("client_secret", c.Cfg.ClientSecret)
	q.Set("code", code)
	q.Set("redirect_uri", c.Cfg.RedirectURI)

	base := strings.TrimRight(c.Cfg.BaseURL, "/")
	return c.PostJSONToken(ctx, endpoint(base, "accessToken")+"?"+q.Encode(), nil)
}

type profileResponse struct {
	ID         string `json:"id"`
	Attributes struct {
		UserName  string `json:"user_name"`
		AccountNo string `json:"account_no"`
		Email     string `json:"email"`
		Mobile    string `json:"mobile"`
	} `json:"attributes"`
}

func profile(ctx context.Context, c *providers.Client, tok *providers.TokenSet) (*providers.UserProfile, error) {
	q := url.Values{}
	q.Set("access_token", tok.AccessToken)
	base := strings.TrimRight(c.Cfg.BaseURL, "/")

	var p profileResponse
	if err := c.GetJSON(ctx, "profile", endpoint(base, "profile")+"?"+q.Encode(), http.Header{}, &p); err != nil {
		return nil, err
	}
	out := &providers.UserProfile{
		ProviderID: p.ID,
		Name:       p.Attributes.UserName,
		Raw: map[string]any{
			"account_no": p.Attributes.AccountNo,
		},
	}
	// The upstream email is not trusted as an identifier; the id-derived one is.
	if p.ID != "" {
		out.Email = p.ID + "@" + emailDomain
	}
	return out, nil
}
