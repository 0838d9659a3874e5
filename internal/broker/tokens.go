package broker

import (
	"context"
	"strings"

	"github.com/dropDatabas3/authbridge/internal/audit"
	"github.com/dropDatabas3/authbridge/internal/jwt"
	"github.com/dropDatabas3/authbridge/internal/metrics"
	"github.com/dropDatabas3/authbridge/internal/observability/logger"
)

// VerifyToken checks an identity token. Failures carry KindAuthentication
// and the jwt error message.
func (b *Broker) VerifyToken(ctx context.Context, token string) (*jwt.Verified, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrTokenRequired
	}
	v, err := b.tokens.Verify(token)
	if err != nil {
		logger.From(ctx).Debug("token rejected", logger.Layer("service"), logger.Err(err))
		return nil, withKind(KindAuthentication, err)
	}
	return v, nil
}

// IssueToken signs an arbitrary payload (the /auth/token endpoint).
func (b *Broker) IssueToken(ctx context.Context, payload, headers map[string]any) (*jwt.Issued, error) {
	if payload == nil {
		return nil, ErrPayloadRequired
	}
	iss, err := b.tokens.Sign(payload, headers)
	if err != nil {
		return nil, withKind(KindValidation, err)
	}
	metrics.TokensIssued.WithLabelValues("api").Inc()
	audit.Log(ctx, audit.EventTokenIssued, logger.String("source", "api"), logger.KeyID(iss.KID))
	return iss, nil
}
