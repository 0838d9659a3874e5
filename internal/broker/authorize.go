package broker

import (
	"context"
	"errors"
	"strings"

	"github.com/dropDatabas3/authbridge/internal/cache"
	"github.com/dropDatabas3/authbridge/internal/observability/logger"
	"github.com/dropDatabas3/authbridge/internal/util"
	"github.com/dropDatabas3/authbridge/internal/validation"
)

// BeginAuthorization records state -> callback for provider and returns the
// upstream authorize URL. state is forwarded to the provider unchanged.
func (b *Broker) BeginAuthorization(ctx context.Context, provider, state, callback string) (string, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("broker.authorize"),
		logger.Provider(provider),
	)

	ch, err := b.channel(provider)
	if err != nil {
		return "", err
	}
	p, err := b.provider(ctx, provider)
	if err != nil {
		log.Error("provider unavailable", logger.Err(err))
		return "", err
	}

	state = strings.TrimSpace(state)
	if state == "" {
		return "", ErrStateRequired
	}
	if !validation.ValidState(state) {
		return "", ErrStateInvalid
	}

	cb, err := validation.ValidateCallbackURL(callback, ch.AllowedCallbackHosts)
	if err != nil {
		log.Info("callback rejected", logger.String("callback", util.MaskURL(callback)), logger.Err(err))
		if errors.Is(err, validation.ErrCallbackHost) {
			return "", ErrCallbackNotAllowed
		}
		return "", ErrCallbackInvalid
	}

	rec := AuthorizationState{
		Token:       state,
		CallbackURL: cb.String(),
		Provider:    provider,
		CreatedAt:   b.now(),
	}
	if err := ch.States.Put(ctx, state, rec); err != nil {
		if errors.Is(err, cache.ErrKeyExists) {
			log.Info("duplicate state", logger.Code("state", state))
			return "", ErrStateDuplicate
		}
		return "", err
	}

	b.transition(ctx, provider, PhasePendingRedirect, logger.Code("state", state))
	return p.AuthorizeURL(state), nil
}
