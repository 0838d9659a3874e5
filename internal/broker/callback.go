package broker

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/dropDatabas3/authbridge/internal/audit"
	"github.com/dropDatabas3/authbridge/internal/cache"
	"github.com/dropDatabas3/authbridge/internal/metrics"
	"github.com/dropDatabas3/authbridge/internal/observability/logger"
	"github.com/dropDatabas3/authbridge/internal/providers"
	tokens "github.com/dropDatabas3/authbridge/internal/security/token"
	"github.com/dropDatabas3/authbridge/internal/signon"
	"github.com/dropDatabas3/authbridge/internal/util"
)

// CallbackParams is what the provider sent back to the broker.
type CallbackParams struct {
	Code             string
	State            string
	Error            string
	ErrorDescription string
}

// Completion is a successful callback.
type Completion struct {
	RedirectURL  string
	ResourceCode string
	Profile      *providers.UserProfile
}

// CompleteAuthorization consumes the state, exchanges the code upstream and
// issues a one-time resource code. The returned URL sends the user back to
// the caller's callback with code, state and provider appended.
//
// An unknown or already consumed state is rejected before any upstream call.
func (b *Broker) CompleteAuthorization(ctx context.Context, provider string, in CallbackParams) (*Completion, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("broker.callback"),
		logger.Provider(provider),
	)

	ch, err := b.channel(provider)
	if err != nil {
		return nil, err
	}
	p, err := b.provider(ctx, provider)
	if err != nil {
		log.Error("provider unavailable", logger.Err(err))
		return nil, err
	}

	state := strings.TrimSpace(in.State)
	if state == "" {
		return nil, ErrStateUnknown
	}
	st, err := ch.States.Take(ctx, state)
	if err != nil {
		if cache.IsNotFound(err) {
			audit.Log(ctx, audit.EventStateRejected, logger.Provider(provider), logger.Code("state", state))
			return nil, ErrStateUnknown
		}
		return nil, err
	}

	if in.Error != "" {
		b.transition(ctx, provider, PhaseFailed,
			logger.String("idp_error", in.Error),
			logger.String("idp_error_description", in.ErrorDescription),
		)
		return nil, ErrProviderDenied
	}
	code := strings.TrimSpace(in.Code)
	if code == "" {
		b.transition(ctx, provider, PhaseFailed, logger.String("reason", "missing code"))
		return nil, ErrCodeRequired
	}
	b.transition(ctx, provider, PhaseCodeReceived)

	prof, err := b.fetchProfile(ctx, p, code)
	if err != nil {
		b.transition(ctx, provider, PhaseFailed, logger.Err(err))
		return nil, upstream(err)
	}

	rc, err := b.issueResource(ctx, ch, prof)
	if err != nil {
		b.transition(ctx, provider, PhaseFailed, logger.Err(err))
		return nil, err
	}

	if p.CachesIdentity() && b.identities != nil {
		b.cacheIdentity(ctx, provider, prof)
	}

	redirect, err := buildRedirect(st.CallbackURL, rc, state, provider, p.CachesIdentity(), prof)
	if err != nil {
		b.transition(ctx, provider, PhaseFailed, logger.Err(err))
		return nil, err
	}

	b.transition(ctx, provider, PhaseResourceIssued, logger.Code("resource_code", rc))
	audit.Log(ctx, audit.EventResourceIssued,
		logger.Provider(provider),
		logger.Email(util.MaskEmail(prof.Email)),
		logger.String("callback", util.MaskURL(st.CallbackURL)),
	)
	return &Completion{RedirectURL: redirect, ResourceCode: rc, Profile: prof}, nil
}

// fetchProfile runs exchange + profile under one deadline.
func (b *Broker) fetchProfile(ctx context.Context, p providers.Provider, code string) (*providers.UserProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	start := time.Now()
	result := "error"
	defer func() {
		metrics.UpstreamLatency.WithLabelValues(p.Name(), result).Observe(time.Since(start).Seconds())
	}()

	tok, err := p.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}
	b.transition(ctx, p.Name(), PhaseTokenExchanged)

	prof, err := p.UserInfo(ctx, tok)
	if err != nil {
		return nil, err
	}
	b.transition(ctx, p.Name(), PhaseProfileFetched)
	result = "ok"
	return prof, nil
}

// issueResource stores the profile under a fresh random code. A collision
// (practically impossible at 256 bits) is retried with a new code.
func (b *Broker) issueResource(ctx context.Context, ch *Channel, prof *providers.UserProfile) (string, error) {
	for i := 0; i < putAttempts; i++ {
		rc, err := tokens.NewPrefixed(ch.Provider, resourceCodeBytes)
		if err != nil {
			return "", err
		}
		err = ch.Resources.Put(ctx, rc, ResourceRecord{
			Code:        rc,
			Provider:    ch.Provider,
			SubjectName: prof.Name,
			Email:       prof.Email,
			IssuedAt:    b.now(),
		})
		if err == nil {
			return rc, nil
		}
		if !errors.Is(err, cache.ErrKeyExists) {
			return "", err
		}
	}
	return "", errors.New("broker: could not allocate a unique resource code")
}

// cacheIdentity replaces any previous entry for the subject; failures only log.
func (b *Broker) cacheIdentity(ctx context.Context, provider string, prof *providers.UserProfile) {
	id := signon.CachedIdentity{
		SubjectID: prof.ProviderID,
		Name:      prof.Name,
		Email:     prof.Email,
		Provider:  provider,
		CachedAt:  b.now(),
	}
	if err := b.identities.Set(ctx, id.SubjectID, id); err != nil {
		logger.From(ctx).Warn("identity cache write failed", logger.Provider(provider), logger.Err(err))
	}
}

// buildRedirect appends code, state and provider to the caller's callback,
// keeping whatever query it already had. Identity-caching providers also
// pass userId, name and email so the caller can claim them via sign-on.
func buildRedirect(callback, code, state, provider string, withIdentity bool, prof *providers.UserProfile) (string, error) {
	u, err := url.Parse(callback)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("code", code)
	q.Set("state", state)
	q.Set("provider", provider)
	if withIdentity {
		q.Set("userId", prof.ProviderID)
		q.Set("name", prof.Name)
		q.Set("email", prof.Email)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
