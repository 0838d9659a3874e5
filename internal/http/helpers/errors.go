package helpers

import (
	"errors"

	"github.com/dropDatabas3/authbridge/internal/broker"
	httperrors "github.com/dropDatabas3/authbridge/internal/http/errors"
	"github.com/dropDatabas3/authbridge/internal/jwt"
)

// BrokerError traduce un error del broker a AppError. El mensaje visible es
// el del sentinel (seguro para el caller); la causa queda para logs.
func BrokerError(err error) *httperrors.AppError {
	var appErr *httperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch broker.KindOf(err) {
	case broker.KindValidation:
		// Parámetro presente pero inaceptable vs. faltante/mal armado.
		if errors.Is(err, broker.ErrStateInvalid) || errors.Is(err, broker.ErrCallbackInvalid) || errors.Is(err, broker.ErrCallbackNotAllowed) {
			return httperrors.ErrInvalidParameter.WithMessage(rootMessage(err)).WithCause(err)
		}
		return httperrors.ErrBadRequest.WithMessage(rootMessage(err)).WithCause(err)
	case broker.KindNotFound:
		if errors.Is(err, broker.ErrUnknownProvider) {
			return httperrors.ErrProviderNotFound.WithCause(err)
		}
		return httperrors.ErrNotFound.WithMessage(rootMessage(err)).WithCause(err)
	case broker.KindAuthentication:
		switch {
		case errors.Is(err, jwt.ErrExpired):
			return httperrors.ErrTokenExpired.WithMessage(err.Error()).WithCause(err)
		case errors.Is(err, jwt.ErrMalformed), errors.Is(err, jwt.ErrBadSignature):
			return httperrors.ErrTokenInvalid.WithMessage(err.Error()).WithCause(err)
		}
		return httperrors.ErrUnauthorized.WithMessage(err.Error()).WithCause(err)
	case broker.KindUpstream:
		return httperrors.ErrBadGateway.WithCause(err)
	case broker.KindConfiguration:
		return httperrors.ErrNotConfigured.WithCause(err)
	default:
		return httperrors.ErrInternalServerError.WithCause(err)
	}
}

// rootMessage devuelve el mensaje del sentinel del broker, sin el contexto
// agregado al envolver.
func rootMessage(err error) string {
	for _, s := range []error{
		broker.ErrStateRequired, broker.ErrStateInvalid, broker.ErrStateDuplicate,
		broker.ErrCallbackInvalid, broker.ErrCallbackNotAllowed, broker.ErrStateUnknown,
		broker.ErrCodeRequired, broker.ErrResourceNotFound, broker.ErrResourceExpired,
		broker.ErrSignOnRequest, broker.ErrTokenRequired, broker.ErrPayloadRequired,
	} {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return err.Error()
}
