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

// ResourceController maneja GET /oauth/{provider}/resource.
type ResourceController struct {
	service Service
}

func NewResourceController(service Service) *ResourceController {
	return &ResourceController{service: service}
}

// Resource canjea un resource code por {name, email}. Una sola vez.
func (c *ResourceController) Resource(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	provider := chi.URLParam(r, "provider")
	log := logger.From(ctx).With(
		logger.Layer("controller"),
		logger.Op("ResourceController.Resource"),
		logger.Provider(provider),
	)

	code := strings.TrimSpace(r.URL.Query().Get("code"))
	res, err := c.service.Redeem(ctx, provider, code)
	if err != nil {
		appErr := helpers.BrokerError(err)
		if appErr.HTTPStatus >= 500 {
			log.Error("redeem failed", logger.Err(err))
		}
		httperrors.WriteError(w, appErr)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, dto.ResourceResponse{Name: res.Name, Email: res.Email})
}
