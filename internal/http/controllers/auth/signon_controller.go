package auth

import (
	"net/http"

	dto "github.com/dropDatabas3/authbridge/internal/http/dto/auth"
	"github.com/dropDatabas3/authbridge/internal/http/helpers"
	"github.com/dropDatabas3/authbridge/internal/observability/logger"
)

// SignOnController maneja POST /auth/custom-sign-on.
type SignOnController struct {
	service Service
}

func NewSignOnController(service Service) *SignOnController {
	return &SignOnController{service: service}
}

// SignOn verifica {method, payload} y emite un identity token.
//
//	200 {valid:true, token, expiresAt}
//	400 request inválido o método no soportado
//	401 credenciales rechazadas
//	500 método sin configurar
func (c *SignOnController) SignOn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("SignOnController.SignOn"))

	var req dto.SignOnRequest
	if appErr := helpers.ReadJSON(w, r, &req); appErr != nil {
		helpers.WriteJSON(w, appErr.HTTPStatus, dto.SignOnResponse{Error: appErr.Message})
		return
	}

	res, err := c.service.CustomSignOn(ctx, req.Method, req.Payload)
	if err != nil {
		appErr := helpers.BrokerError(err)
		if appErr.HTTPStatus >= 500 {
			log.Error("custom sign-on failed", logger.AuthMethod(req.Method), logger.Err(err))
		}
		helpers.WriteJSON(w, appErr.HTTPStatus, dto.SignOnResponse{Error: appErr.Message})
		return
	}

	helpers.WriteJSON(w, http.StatusOK, dto.SignOnResponse{
		Valid:     true,
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt.Unix(),
	})
}
