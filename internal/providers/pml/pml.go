// Package pml implements the internal PML SSO (OAuth 2.0 with a JSON token endpoint).
package pml

import (
	"context"
	"net/url"
	"strings"

	"github.com/dropDatabas3/authbridge/internal/providers"
)

const (
	Name = "pml"

	DefaultBaseURL = "http://localhost:3001/api/oauth2"
	emailDomain    = "pml.com"
)

func Descriptor(cfg providers.Config) providers.Descriptor {
	base := baseURL(cfg)
	return providers.Descriptor{
		Name:     Name,
		AuthURL:  base + "/idp/oauth2/authorize",
		TokenURL: base + "/idp/oauth2/getToken",
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
	return c.PostJSONToken(ctx, baseURL(c.Cfg)+"/idp/oauth2/getToken", map[string]string{
		"client_id":     c.Cfg.ClientID,
		"client_secret": c.Cfg.ClientSecret,
		"grant_type":    "authorization_code",
		"code":          code,
	})
}

type userInfo struct {
	LoginName string `json:"loginName"`
}

func profile(ctx context.Context, c *providers.Client, tok *providers.TokenSet) (*providers.UserProfile, error) {
	q := url.Values{}
	q.Set("access_token", tok.AccessToken)
	q.Set("client_id", c.Cfg.ClientID)

	var u userInfo
	if err := c.GetJSON(ctx, "userinfo", baseURL(c.Cfg)+"/idp/oauth2/getUserInfo?"+q.Encode(), nil, &u); err != nil {
		return nil, err
	}
	p := &providers.UserProfile{ProviderID: u.LoginName, Name: u.LoginName}
	if u.LoginName != "" {
		p.Email = u.LoginName + "@" + emailDomain
	}
	return p, nil
}
