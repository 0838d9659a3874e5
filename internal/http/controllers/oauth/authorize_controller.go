package oauth

import (
	"net/http"
	"strings"

	dto "github.com/dropDatabas3/authbridge/internal/http/dto/oauth"
	httperrors "github.com/dropDatabas3/authbridge/internal/http/errors"
	"github.com/dropDatabas3/authbridge/internal/http/helpers"
	"github.com/dropDatabas3/authbridge/internal/observability/logger"
	"github.com/go-chi/chi/v5"
)

// AuthorizeController maneja GET /oauth/{provider}.
type AuthorizeController struct {
	service Service
}

func NewAuthorizeController(service Service) *AuthorizeController {
	return &AuthorizeController{service: service}
}

// Authorize registra state -> callback y redirige al provider (302).
func (c *AuthorizeController) Authorize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	provider := chi.URLParam(r, "provider")
	log := logger.From(ctx).With(
		logger.Layer("controller"),
		logger.Op("AuthorizeController.Authorize"),
		logger.Provider(provider),
	)

	q := r.URL.Query()
	req := dto.AuthorizeRequest{
		State:    strings.TrimSpace(q.Get("state")),
		Callback: strings.TrimSpace(q.Get("callback")),
	}

	target, err := c.service.BeginAuthorization(ctx, provider, req.State, req.Callback)
	if err != nil {
		appErr := helpers.BrokerError(err)
		if appErr.HTTPStatus >= 500 {
			log.Error("authorize failed", logger.Err(err))
		} else {
			log.Info("authorize rejected", logger.Err(err))
		}
		httperrors.WriteError(w, appErr)
		return
	}

	http.Redirect(w, r, target, http.StatusFound)
}
