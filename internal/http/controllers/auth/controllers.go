// Package auth contiene los controllers de /auth: verify, token y custom sign-on.
package auth

import (
	"context"

	"github.com/dropDatabas3/authbridge/internal/broker"
	"github.com/dropDatabas3/authbridge/internal/jwt"
	"github.com/dropDatabas3/authbridge/internal/signon"
)

// Service es la parte del broker que usan estos controllers.
type Service interface {
	VerifyToken(ctx context.Context, token string) (*jwt.Verified, error)
	IssueToken(ctx context.Context, payload, headers map[string]any) (*jwt.Issued, error)
	CustomSignOn(ctx context.Context, method string, payload *signon.Payload) (*broker.SignOnResult, error)
}

// Controllers agrupa los controllers de /auth.
type Controllers struct {
	Verify *VerifyController
	Token  *TokenController
	SignOn *SignOnController
}

func NewControllers(svc Service) *Controllers {
	return &Controllers{
		Verify: NewVerifyController(svc),
		Token:  NewTokenController(svc),
		SignOn: NewSignOnController(svc),
	}
}
