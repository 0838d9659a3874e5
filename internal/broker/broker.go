// Package broker drives the OAuth2 flows and credential issuance.
//
// One Channel per provider owns that provider's pending states and issued
// resource codes. Stores are injected so tests can swap clocks and TTLs.
// The broker itself holds no locks: atomicity lives in the stores, and no
// store operation spans an upstream call.
package broker

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dropDatabas3/authbridge/internal/cache"
	"github.com/dropDatabas3/authbridge/internal/jwt"
	"github.com/dropDatabas3/authbridge/internal/providers"
	"github.com/dropDatabas3/authbridge/internal/signon"
)

// Defaults.
const (
	DefaultStateTTL        = 10 * time.Minute
	DefaultResourceTTL     = 24 * time.Hour
	DefaultUpstreamTimeout = 15 * time.Second

	resourceCodeBytes = 32
	putAttempts       = 3
)

// AuthorizationState ties a caller's state token to its callback URL.
type AuthorizationState struct {
	Token       string
	CallbackURL string
	Provider    string
	CreatedAt   time.Time
}

// ResourceRecord is what a resource code redeems to.
type ResourceRecord struct {
	Code        string
	Provider    string
	SubjectName string
	Email       string
	IssuedAt    time.Time
}

// Channel holds one provider's tables.
type Channel struct {
	Provider  string
	States    cache.Store[AuthorizationState]
	Resources cache.Store[ResourceRecord]
	// AllowedCallbackHosts restricts callback URLs; empty allows any http(s) host.
	AllowedCallbackHosts []string
}

// ChannelConfig configures NewChannel.
type ChannelConfig struct {
	StateTTL        time.Duration
	ResourceTTL     time.Duration
	CleanupInterval time.Duration
	Now             func() time.Time
	OnEvict         func(store, key string)
	AllowedHosts    []string
}

// NewChannel builds in-memory tables for provider.
func NewChannel(provider string, cfg ChannelConfig) (*Channel, error) {
	if cfg.StateTTL <= 0 {
		cfg.StateTTL = DefaultStateTTL
	}
	if cfg.ResourceTTL <= 0 {
		cfg.ResourceTTL = DefaultResourceTTL
	}
	states, err := cache.New[AuthorizationState](cache.Config{
		Name:            provider + ":state",
		TTL:             cfg.StateTTL,
		CleanupInterval: cfg.CleanupInterval,
		Now:             cfg.Now,
		OnEvict:         cfg.OnEvict,
	})
	if err != nil {
		return nil, fmt.Errorf("broker: %s state store: %w", provider, err)
	}
	resources, err := cache.New[ResourceRecord](cache.Config{
		Name:            provider + ":resource",
		TTL:             cfg.ResourceTTL,
		CleanupInterval: cfg.CleanupInterval,
		Now:             cfg.Now,
		OnEvict:         cfg.OnEvict,
	})
	if err != nil {
		return nil, fmt.Errorf("broker: %s resource store: %w", provider, err)
	}
	return &Channel{
		Provider:             provider,
		States:               states,
		Resources:            resources,
		AllowedCallbackHosts: cfg.AllowedHosts,
	}, nil
}

// ProviderSource resolves providers by name (providers.Registry).
type ProviderSource interface {
	Get(ctx context.Context, name string) (providers.Provider, error)
}

// Deps holds the broker's collaborators.
type Deps struct {
	Providers ProviderSource
	Channels  []*Channel
	// Identities is shared by identity-caching providers and the YIKONG verifier.
	Identities      cache.Store[signon.CachedIdentity]
	Tokens          *jwt.Service
	Verifiers       *signon.Registry
	UpstreamTimeout time.Duration
	Now             func() time.Time
}

// Broker is the orchestrator behind every HTTP endpoint.
type Broker struct {
	providers  ProviderSource
	channels   map[string]*Channel
	identities cache.Store[signon.CachedIdentity]
	tokens     *jwt.Service
	verifiers  *signon.Registry
	timeout    time.Duration
	now        func() time.Time
}

func New(d Deps) (*Broker, error) {
	if d.Providers == nil {
		return nil, fmt.Errorf("broker: providers are required")
	}
	if d.Tokens == nil {
		return nil, fmt.Errorf("broker: token service is required")
	}
	b := &Broker{
		providers:  d.Providers,
		channels:   make(map[string]*Channel, len(d.Channels)),
		identities: d.Identities,
		tokens:     d.Tokens,
		verifiers:  d.Verifiers,
		timeout:    d.UpstreamTimeout,
		now:        d.Now,
	}
	if b.verifiers == nil {
		b.verifiers = signon.NewRegistry()
	}
	if b.timeout <= 0 {
		b.timeout = DefaultUpstreamTimeout
	}
	if b.now == nil {
		b.now = time.Now
	}
	for _, c := range d.Channels {
		if c == nil || c.States == nil || c.Resources == nil {
			return nil, fmt.Errorf("broker: incomplete channel")
		}
		if _, dup := b.channels[c.Provider]; dup {
			return nil, fmt.Errorf("broker: duplicate channel %q", c.Provider)
		}
		b.channels[c.Provider] = c
	}
	return b, nil
}

// Providers lists the channel names, sorted.
func (b *Broker) Providers() []string {
	out := make([]string, 0, len(b.channels))
	for n := range b.channels {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Stats returns the store statistics of every channel.
func (b *Broker) Stats() []cache.Stats {
	out := make([]cache.Stats, 0, 2*len(b.channels)+1)
	for _, n := range b.Providers() {
		c := b.channels[n]
		out = append(out, c.States.Stats(), c.Resources.Stats())
	}
	if b.identities != nil {
		out = append(out, b.identities.Stats())
	}
	return out
}

func (b *Broker) channel(name string) (*Channel, error) {
	c, ok := b.channels[name]
	if !ok {
		return nil, ErrUnknownProvider
	}
	return c, nil
}

// provider resolves a configured provider, mapping registry errors to broker ones.
func (b *Broker) provider(ctx context.Context, name string) (providers.Provider, error) {
	p, err := b.providers.Get(ctx, name)
	if err == nil {
		return p, nil
	}
	switch {
	case errors.Is(err, providers.ErrUnknownProvider):
		return nil, ErrUnknownProvider
	case errors.Is(err, providers.ErrNotConfigured):
		return nil, fmt.Errorf("%w: %s", ErrProviderNotConfigured, name)
	default:
		return nil, fmt.Errorf("%w: %v", ErrProviderNotConfigured, err)
	}
}
