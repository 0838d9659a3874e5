package auth

import (
	"net/http"

	dto "github.com/dropDatabas3/authbridge/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/authbridge/internal/http/errors"
	"github.com/dropDatabas3/authbridge/internal/http/helpers"
	"github.com/dropDatabas3/authbridge/internal/observability/logger"
)

// TokenController maneja POST /auth/token.
type TokenController struct {
	service Service
}

func NewTokenController(service Service) *TokenController {
	return &TokenController{service: service}
}

// Create firma el payload recibido. alg/typ/kid no se pueden pisar desde headers.
func (c *TokenController) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("TokenController.Create"))

	var req dto.TokenRequest
	if appErr := helpers.ReadJSON(w, r, &req); appErr != nil {
		httperrors.WriteError(w, appErr)
		return
	}

	iss, err := c.service.IssueToken(ctx, req.Payload, req.Headers)
	if err != nil {
		appErr := helpers.BrokerError(err)
		if appErr.HTTPStatus >= 500 {
			log.Error("token creation failed", logger.Err(err))
		}
		httperrors.WriteError(w, appErr)
		return
	}

	helpers.WriteJSON(w, http.StatusCreated, dto.TokenResponse{Token: iss.Token, ExpiresAt: iss.ExpiresAt.Unix()})
}
