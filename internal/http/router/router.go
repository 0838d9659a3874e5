// Package router arma el árbol de rutas chi del broker.
package router

import (
	"net/http"

	authctrl "github.com/dropDatabas3/authbridge/internal/http/controllers/auth"
	healthctrl "github.com/dropDatabas3/authbridge/internal/http/controllers/health"
	oauthctrl "github.com/dropDatabas3/authbridge/internal/http/controllers/oauth"
	httperrors "github.com/dropDatabas3/authbridge/internal/http/errors"
	mw "github.com/dropDatabas3/authbridge/internal/http/middlewares"
	"github.com/go-chi/chi/v5"
)

// Deps contiene las dependencias del router.
type Deps struct {
	// Prefix de las rutas de API ("/api"; "" = raíz).
	Prefix string

	OAuth  *oauthctrl.Controllers
	Auth   *authctrl.Controllers
	Health *healthctrl.HealthController

	// Metrics sirve /metrics (nil = no se expone).
	Metrics http.Handler

	CORSAllowedOrigins []string
}

// New construye el handler raíz.
//
//	GET  {prefix}/oauth/{provider}
//	GET  {prefix}/oauth/{provider}/callback
//	GET  {prefix}/oauth/{provider}/resource
//	POST {prefix}/auth/verify
//	POST {prefix}/auth/token
//	POST {prefix}/auth/custom-sign-on
//	GET  /  /healthz  /metrics
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.Std(
		mw.WithRecover(),
		mw.WithRequestID(),
		mw.WithLogging(),
		mw.WithMetrics(),
		mw.WithSecurityHeaders(),
		mw.WithCORS(d.CORSAllowedOrigins),
	)...)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrRouteNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	if d.Health != nil {
		r.Get("/", d.Health.Root)
		r.Get("/healthz", d.Health.Healthz)
	}
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}

	api := func(r chi.Router) {
		r.Use(mw.WithNoStore())

		if d.OAuth != nil {
			r.Route("/oauth/{provider}", func(r chi.Router) {
				r.Get("/", d.OAuth.Authorize.Authorize)
				r.Get("/callback", d.OAuth.Callback.Callback)
				r.Get("/resource", d.OAuth.Resource.Resource)
			})
		}
		if d.Auth != nil {
			r.Route("/auth", func(r chi.Router) {
				r.Post("/verify", d.Auth.Verify.Verify)
				r.Post("/token", d.Auth.Token.Create)
				r.Post("/custom-sign-on", d.Auth.SignOn.SignOn)
			})
		}
	}

	if d.Prefix == "" || d.Prefix == "/" {
		r.Group(api)
	} else {
		r.Route(d.Prefix, api)
	}
	return r
}
