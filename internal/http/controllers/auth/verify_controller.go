package auth

import (
	"net/http"

	dto "github.com/dropDatabas3/authbridge/internal/http/dto/auth"
	"github.com/dropDatabas3/authbridge/internal/http/helpers"
	"github.com/dropDatabas3/authbridge/internal/observability/logger"
)

// VerifyController maneja POST /auth/verify.
type VerifyController struct {
	service Service
}

func NewVerifyController(service Service) *VerifyController {
	return &VerifyController{service: service}
}

// Verify responde {valid:true, payload} o {valid:false, error}.
func (c *VerifyController) Verify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("VerifyController.Verify"))

	var req dto.VerifyRequest
	if appErr := helpers.ReadJSON(w, r, &req); appErr != nil {
		helpers.WriteJSON(w, appErr.HTTPStatus, dto.VerifyResponse{Error: appErr.Message})
		return
	}

	v, err := c.service.VerifyToken(ctx, req.Token)
	if err != nil {
		appErr := helpers.BrokerError(err)
		log.Debug("token verification failed", logger.Err(err))
		helpers.WriteJSON(w, appErr.HTTPStatus, dto.VerifyResponse{Error: appErr.Message})
		return
	}

	helpers.WriteJSON(w, http.StatusOK, dto.VerifyResponse{Valid: true, Payload: v.Payload})
}
