// Package oauth contiene los controllers del flujo authorize/callback/resource.
package oauth

import (
	"context"

	"github.com/dropDatabas3/authbridge/internal/broker"
)

// Service es la parte del broker que usan estos controllers.
type Service interface {
	BeginAuthorization(ctx context.Context, provider, state, callback string) (string, error)
	CompleteAuthorization(ctx context.Context, provider string, in broker.CallbackParams) (*broker.Completion, error)
	Redeem(ctx context.Context, provider, code string) (*broker.Resource, error)
}

// Controllers agrupa los controllers OAuth.
type Controllers struct {
	Authorize *AuthorizeController
	Callback  *CallbackController
	Resource  *ResourceController
}

// NewControllers crea el grupo de controllers sobre svc.
func NewControllers(svc Service) *Controllers {
	return &Controllers{
		Authorize: NewAuthorizeController(svc),
		Callback:  NewCallbackController(svc),
		Resource:  NewResourceController(svc),
	}
}
