package broker

import (
	"context"
	"errors"
	"strings"

	"github.com/dropDatabas3/authbridge/internal/audit"
	"github.com/dropDatabas3/authbridge/internal/cache"
	"github.com/dropDatabas3/authbridge/internal/metrics"
	"github.com/dropDatabas3/authbridge/internal/observability/logger"
	"github.com/dropDatabas3/authbridge/internal/util"
)

// Resource is the identity a resource code redeems to.
type Resource struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Redeem consumes a resource code. Found, expired or not, the code is gone
// afterwards; concurrent redemptions of one code succeed exactly once.
func (b *Broker) Redeem(ctx context.Context, provider, code string) (*Resource, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("broker.redeem"),
		logger.Provider(provider),
	)

	ch, err := b.channel(provider)
	if err != nil {
		return nil, err
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrCodeRequired
	}

	rec, err := ch.Resources.Take(ctx, code)
	switch {
	case err == nil:
	case errors.Is(err, cache.ErrExpired):
		metrics.Redemptions.WithLabelValues(provider, "expired").Inc()
		log.Info("resource code expired", logger.Code("code", code))
		return nil, ErrResourceExpired
	case errors.Is(err, cache.ErrNotFound):
		metrics.Redemptions.WithLabelValues(provider, "not_found").Inc()
		log.Debug("resource code not found", logger.Code("code", code))
		return nil, ErrResourceNotFound
	default:
		return nil, err
	}

	metrics.Redemptions.WithLabelValues(provider, "ok").Inc()
	audit.Log(ctx, audit.EventResourceRedeemed,
		logger.Provider(provider),
		logger.Email(util.MaskEmail(rec.Email)),
	)
	return &Resource{Name: rec.SubjectName, Email: rec.Email}, nil
}
