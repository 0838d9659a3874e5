package broker

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dropDatabas3/authbridge/internal/audit"
	"github.com/dropDatabas3/authbridge/internal/jwt"
	"github.com/dropDatabas3/authbridge/internal/metrics"
	"github.com/dropDatabas3/authbridge/internal/observability/logger"
	"github.com/dropDatabas3/authbridge/internal/signon"
)

// SignOnResult is a successful custom sign-on.
type SignOnResult struct {
	Token     string
	ExpiresAt time.Time
	Subject   jwt.Subject
}

// CustomSignOn verifies payload with the named method and issues an identity
// token recording the method in its header.
func (b *Broker) CustomSignOn(ctx context.Context, method string, payload *signon.Payload) (*SignOnResult, error) {
	method = strings.TrimSpace(method)
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("broker.signon"),
		logger.AuthMethod(method),
	)

	if method == "" || payload == nil {
		return nil, ErrSignOnRequest
	}

	id, err := b.verifiers.Verify(ctx, method, *payload)
	if err != nil {
		switch {
		case errors.Is(err, signon.ErrUnsupportedMethod):
			metrics.SignOns.WithLabelValues("unsupported", "rejected").Inc()
			return nil, withKind(KindValidation, err)
		case errors.Is(err, signon.ErrMethodNotConfigured):
			metrics.SignOns.WithLabelValues(method, "error").Inc()
			log.Error("sign-on method not configured")
			return nil, withKind(KindConfiguration, err)
		case signon.IsAuthFailure(err):
			metrics.SignOns.WithLabelValues(method, "rejected").Inc()
			audit.Log(ctx, audit.EventSignOnRejected, logger.AuthMethod(method), logger.Err(err))
			return nil, withKind(KindAuthentication, err)
		default:
			metrics.SignOns.WithLabelValues(method, "error").Inc()
			log.Error("sign-on verification error", logger.Err(err))
			return nil, err
		}
	}

	sub := jwt.Subject{ID: id.UserID, Name: id.Name, Email: id.Email, Role: id.Role}
	iss, err := b.tokens.Issue(sub, jwt.IssueOptions{Method: method, Extra: payload.Extra})
	if err != nil {
		metrics.SignOns.WithLabelValues(method, "error").Inc()
		log.Error("token issue failed", logger.Err(err))
		return nil, err
	}

	metrics.SignOns.WithLabelValues(method, "ok").Inc()
	metrics.TokensIssued.WithLabelValues("signon").Inc()
	audit.Log(ctx, audit.EventSignOnSucceeded,
		logger.AuthMethod(method),
		logger.UserID(sub.ID),
		logger.KeyID(iss.KID),
	)
	return &SignOnResult{Token: iss.Token, ExpiresAt: iss.ExpiresAt, Subject: sub}, nil
}
