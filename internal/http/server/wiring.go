// Package server arma el broker completo a partir de la config y lo sirve.
package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/dropDatabas3/authbridge/internal/broker"
	"github.com/dropDatabas3/authbridge/internal/cache"
	"github.com/dropDatabas3/authbridge/internal/config"
	authctrl "github.com/dropDatabas3/authbridge/internal/http/controllers/auth"
	healthctrl "github.com/dropDatabas3/authbridge/internal/http/controllers/health"
	oauthctrl "github.com/dropDatabas3/authbridge/internal/http/controllers/oauth"
	"github.com/dropDatabas3/authbridge/internal/http/router"
	"github.com/dropDatabas3/authbridge/internal/jwt"
	"github.com/dropDatabas3/authbridge/internal/metrics"
	"github.com/dropDatabas3/authbridge/internal/observability/logger"
	"github.com/dropDatabas3/authbridge/internal/providers"
	"github.com/dropDatabas3/authbridge/internal/providers/github"
	"github.com/dropDatabas3/authbridge/internal/providers/pml"
	"github.com/dropDatabas3/authbridge/internal/providers/seeyonchat"
	"github.com/dropDatabas3/authbridge/internal/providers/yikong"
	"github.com/dropDatabas3/authbridge/internal/signon"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// factories por nombre de provider.
var factories = map[string]providers.Factory{
	config.ProviderGitHub:     github.Factory,
	config.ProviderPML:        pml.Factory,
	config.ProviderSeeyonChat: seeyonchat.Factory,
	config.ProviderYikong:     yikong.Factory,
}

// Options ajusta el armado (tests).
type Options struct {
	Version string
	// Now reemplaza el reloj de stores, tokens y sign-on.
	Now func() time.Time
	// HTTPClient para las llamadas upstream.
	HTTPClient *http.Client
}

// App es el broker armado.
type App struct {
	Handler  http.Handler
	Broker   *broker.Broker
	Tokens   *jwt.Service
	Registry *prometheus.Registry

	closers []func() error
}

// Close libera los stores.
func (a *App) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Build arma stores, providers, verificadores, broker y router.
func Build(cfg *config.Config, opts Options) (*App, error) {
	log := logger.L().With(logger.Layer("wiring"))
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	tokens, err := NewTokenService(cfg, now)
	if err != nil {
		return nil, err
	}

	app := &App{Tokens: tokens}
	onEvict := func(store, _ string) { metrics.StoreEvictions.WithLabelValues(store).Inc() }

	identities, err := cache.New[signon.CachedIdentity](cache.Config{
		Driver:          cfg.Cache.Kind,
		Name:            "identity",
		TTL:             cfg.Cache.IdentityTTL,
		CleanupInterval: cfg.Cache.CleanupInterval,
		Now:             now,
		OnEvict:         onEvict,
	})
	if err != nil {
		return nil, fmt.Errorf("identity cache: %w", err)
	}
	app.closers = append(app.closers, identities.Close)

	reg := providers.NewRegistry()
	channels := make([]*broker.Channel, 0, len(config.ProviderNames))
	for _, name := range config.ProviderNames {
		pc := cfg.Provider(name)
		reg.Register(name, factories[name], providers.Config{
			ClientID:     pc.ClientID,
			ClientSecret: pc.ClientSecret,
			RedirectURI:  pc.RedirectURI,
			BaseURL:      pc.BaseURL,
			APIURL:       pc.APIURL,
			Scopes:       pc.Scopes,
			HTTPTimeout:  cfg.Providers.HTTPTimeout,
			HTTPClient:   opts.HTTPClient,
		})

		ch, err := broker.NewChannel(name, broker.ChannelConfig{
			StateTTL:        cfg.Cache.StateTTL,
			ResourceTTL:     cfg.Cache.ResourceTTL,
			CleanupInterval: cfg.Cache.CleanupInterval,
			Now:             now,
			OnEvict:         onEvict,
			AllowedHosts:    pc.AllowedCallbackHosts,
		})
		if err != nil {
			_ = app.Close()
			return nil, err
		}
		app.closers = append(app.closers, ch.States.Close, ch.Resources.Close)
		channels = append(channels, ch)

		if !pc.Configured() {
			log.Warn("provider not configured, its routes will answer 500", logger.Provider(name))
		}
	}

	verifiers := signon.NewRegistry(
		signon.NewV5MD5(signon.V5MD5Config{
			Secret:      cfg.SignOn.V5MD5PresharedKey,
			Window:      cfg.SignOn.FreshnessWindow,
			EmailDomain: cfg.SignOn.EmailDomain,
			Now:         now,
		}),
		signon.NewYikong(identities),
	)
	if cfg.SignOn.V5MD5PresharedKey == "" {
		log.Warn("V5_MD5_PRESHARED_KEY not set, V5_MD5 sign-on will answer 500")
	}

	b, err := broker.New(broker.Deps{
		Providers:       reg,
		Channels:        channels,
		Identities:      identities,
		Tokens:          tokens,
		Verifiers:       verifiers,
		UpstreamTimeout: cfg.Providers.UpstreamTimeout,
		Now:             now,
	})
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	app.Broker = b

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	for _, r := range []func(prometheus.Registerer) error{
		metrics.RegisterHTTP,
		metrics.RegisterBroker,
		func(r prometheus.Registerer) error { return metrics.RegisterStores(r, b.Stats) },
	} {
		if err := r(promReg); err != nil {
			_ = app.Close()
			return nil, fmt.Errorf("metrics: %w", err)
		}
	}
	app.Registry = promReg

	app.Handler = router.New(router.Deps{
		Prefix:             cfg.APIPrefix(),
		OAuth:              oauthctrl.NewControllers(b),
		Auth:               authctrl.NewControllers(b),
		Health:             healthctrl.NewHealthController(b, opts.Version),
		Metrics:            promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
	})

	log.Info("broker ready",
		logger.Count(len(channels)),
		logger.String("api_prefix", cfg.APIPrefix()),
		logger.Any("signon_methods", verifiers.Methods()),
	)
	return app, nil
}

// NewTokenService arma el keyring desde JWT_SECRET (+ anteriores). Lo usan
// serve y los subcomandos token.
func NewTokenService(cfg *config.Config, now func() time.Time) (*jwt.Service, error) {
	prev := make([][]byte, 0, len(cfg.JWT.PreviousSecrets))
	for _, s := range cfg.JWT.PreviousSecrets {
		prev = append(prev, []byte(s))
	}
	kr, err := jwt.NewKeyring([]byte(cfg.JWT.Secret), prev...)
	if err != nil {
		return nil, fmt.Errorf("jwt keyring: %w", err)
	}
	return jwt.NewService(kr, jwt.Options{TTL: cfg.JWT.TTL, Now: now}), nil
}
