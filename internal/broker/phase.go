package broker

import (
	"context"

	"github.com/dropDatabas3/authbridge/internal/metrics"
	"github.com/dropDatabas3/authbridge/internal/observability/logger"
	"go.uber.org/zap"
)

// Phase is where an authorization attempt stands.
//
//	PENDING_REDIRECT -> CODE_RECEIVED -> TOKEN_EXCHANGED -> PROFILE_FETCHED -> RESOURCE_ISSUED
//
// Any step may end in FAILED.
type Phase string

const (
	PhasePendingRedirect Phase = "PENDING_REDIRECT"
	PhaseCodeReceived    Phase = "CODE_RECEIVED"
	PhaseTokenExchanged  Phase = "TOKEN_EXCHANGED"
	PhaseProfileFetched  Phase = "PROFILE_FETCHED"
	PhaseResourceIssued  Phase = "RESOURCE_ISSUED"
	PhaseFailed          Phase = "FAILED"
)

func (b *Broker) transition(ctx context.Context, provider string, p Phase, fields ...zap.Field) {
	metrics.FlowTransitions.WithLabelValues(provider, string(p)).Inc()
	log := logger.From(ctx).With(logger.Layer("service"), logger.Provider(provider), logger.Phase(string(p)))
	if p == PhaseFailed {
		log.Warn("authorization flow failed", fields...)
		return
	}
	log.Debug("authorization flow transition", fields...)
}
