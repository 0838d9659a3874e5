// Package oauth contiene los DTOs de las rutas /oauth/{provider}.
package oauth

// AuthorizeRequest son los query params de GET /oauth/{provider}.
type AuthorizeRequest struct {
	State    string
	Callback string
}

// CallbackRequest son los query params que manda el provider.
type CallbackRequest struct {
	Code             string
	State            string
	Error            string
	ErrorDescription string
}

// ResourceResponse es lo que canjea un resource code.
type ResourceResponse struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}
