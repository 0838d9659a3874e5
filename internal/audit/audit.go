// Package audit registra los eventos de emisión de credenciales.
// Van por un logger zap dedicado ("audit") para poder enrutarlos aparte.
package audit

import (
	"context"

	"github.com/dropDatabas3/authbridge/internal/observability/logger"
	"go.uber.org/zap"
)

// Eventos.
const (
	EventResourceIssued   = "resource.issued"
	EventResourceRedeemed = "resource.redeemed"
	EventSignOnSucceeded  = "signon.succeeded"
	EventSignOnRejected   = "signon.rejected"
	EventTokenIssued      = "token.issued"
	EventStateRejected    = "state.rejected"
)

// Log escribe un evento de auditoría. Los campos del request (request_id) se
// heredan del logger del contexto.
func Log(ctx context.Context, event string, fields ...zap.Field) {
	l := logger.From(ctx).Named("audit")
	l.Info(event, append([]zap.Field{zap.String("event", event)}, fields...)...)
}
