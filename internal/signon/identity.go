package signon

import (
	"context"
	"time"

	"github.com/dropDatabas3/authbridge/internal/cache"
)

// CachedIdentity is written by a redirect-flow callback and later claimed
// through the YIKONG method.
type CachedIdentity struct {
	SubjectID string
	Name      string
	Email     string
	Provider  string
	CachedAt  time.Time
}

// IdentityCache is the view of the store the verifier needs.
type IdentityCache interface {
	Get(ctx context.Context, key string) (CachedIdentity, error)
}

// Yikong cross-checks userId/name/email against the identity cache.
// Entries are not consumed: a user may sign on again until the entry expires.
type Yikong struct {
	cache IdentityCache
}

func NewYikong(c IdentityCache) *Yikong { return &Yikong{cache: c} }

func (y *Yikong) Method() Method { return MethodYikong }

func (y *Yikong) Verify(ctx context.Context, p Payload) (*Identity, error) {
	if y.cache == nil {
		return nil, ErrMethodNotConfigured
	}
	if p.UserID == "" || p.Name == "" || p.Email == "" {
		return nil, ErrMissingIdentity
	}
	got, err := y.cache.Get(ctx, p.UserID)
	if err != nil {
		if cache.IsNotFound(err) {
			return nil, ErrIdentityNotFound
		}
		return nil, err
	}
	if got.Name != p.Name || got.Email != p.Email {
		return nil, ErrIdentityMismatch
	}
	return &Identity{UserID: p.UserID, Name: p.Name, Role: "user", Email: p.Email}, nil
}

