package oauth

import (
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/dropDatabas3/authbridge/internal/broker"
	dto "github.com/dropDatabas3/authbridge/internal/http/dto/oauth"
	httperrors "github.com/dropDatabas3/authbridge/internal/http/errors"
	"github.com/dropDatabas3/authbridge/internal/http/helpers"
	"github.com/dropDatabas3/authbridge/internal/observability/logger"
	"github.com/go-chi/chi/v5"
)

// CallbackController maneja GET /oauth/{provider}/callback.
type CallbackController struct {
	service Service
}

func NewCallbackController(service Service) *CallbackController {
	return &CallbackController{service: service}
}

// failurePage se muestra al usuario final (está en el browser, no en un
// cliente API). Nunca incluye el detalle upstream.
var failurePage = template.Must(template.New("failure").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Sign-in failed</title></head>
<body style="font-family:sans-serif;max-width:32rem;margin:4rem auto">
<h1>Sign-in failed</h1>
<p>{{.Message}}</p>
<p>Please go back to the application and try again.</p>
</body>
</html>
`))

// Callback consume el state, canjea el code y redirige al callback del caller.
func (c *CallbackController) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	provider := chi.URLParam(r, "provider")
	log := logger.From(ctx).With(
		logger.Layer("controller"),
		logger.Op("CallbackController.Callback"),
		logger.Provider(provider),
	)

	q := r.URL.Query()
	req := dto.CallbackRequest{
		Code:             strings.TrimSpace(q.Get("code")),
		State:            strings.TrimSpace(q.Get("state")),
		Error:            strings.TrimSpace(q.Get("error")),
		ErrorDescription: strings.TrimSpace(q.Get("error_description")),
	}

	res, err := c.service.CompleteAuthorization(ctx, provider, broker.CallbackParams{
		Code:             req.Code,
		State:            req.State,
		Error:            req.Error,
		ErrorDescription: req.ErrorDescription,
	})
	if err != nil {
		switch {
		case errors.Is(err, broker.ErrProviderDenied):
			log.Warn("provider denied authorization", logger.String("idp_error", req.Error))
			renderFailure(w, http.StatusBadRequest, broker.ErrProviderDenied.Error())
		case broker.KindOf(err) == broker.KindUpstream:
			log.Error("upstream exchange failed", logger.Err(err))
			renderFailure(w, http.StatusBadGateway, broker.ErrUpstream.Error())
		default:
			appErr := helpers.BrokerError(err)
			if appErr.HTTPStatus >= 500 {
				log.Error("callback failed", logger.Err(err))
			} else {
				log.Info("callback rejected", logger.Err(err))
			}
			httperrors.WriteError(w, appErr)
		}
		return
	}

	http.Redirect(w, r, res.RedirectURL, http.StatusFound)
}

func renderFailure(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = failurePage.Execute(w, struct{ Message string }{msg})
}
