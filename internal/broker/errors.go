package broker

import (
	"errors"
	"fmt"
)

// Kind groups broker errors by how the transport should answer.
type Kind int

const (
	KindInternal       Kind = iota
	KindValidation          // 400
	KindNotFound            // 404
	KindAuthentication      // 401
	KindUpstream            // generic failure page, detail only in logs
	KindConfiguration       // 500, fail closed
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindAuthentication:
		return "authentication"
	case KindUpstream:
		return "upstream"
	case KindConfiguration:
		return "configuration"
	default:
		return "internal"
	}
}

// Service errors. Messages are safe to show to callers.
var (
	ErrUnknownProvider       = errors.New("Unknown provider")
	ErrProviderNotConfigured = errors.New("Provider client ID or client secret is not configured")
	ErrStateRequired         = errors.New("State parameter is required")
	ErrStateInvalid          = errors.New("State parameter is invalid")
	ErrStateDuplicate        = errors.New("State parameter must be unique")
	ErrCallbackInvalid       = errors.New("Callback parameter must be an absolute http(s) URL")
	ErrCallbackNotAllowed    = errors.New("Callback host is not allowed")
	ErrStateUnknown          = errors.New("Invalid state parameter")
	ErrCodeRequired          = errors.New("Code parameter is required")
	ErrProviderDenied        = errors.New("Authorization was denied by the provider")
	ErrUpstream              = errors.New("Authentication failed")
	ErrResourceNotFound      = errors.New("Resource not found or expired")
	ErrResourceExpired       = errors.New("Resource expired")
	ErrSignOnRequest         = errors.New("Method and payload are required")
	ErrTokenRequired         = errors.New("Token is required")
	ErrPayloadRequired       = errors.New("Payload is required")
)

var kinds = []struct {
	err  error
	kind Kind
}{
	{ErrUnknownProvider, KindNotFound},
	{ErrProviderNotConfigured, KindConfiguration},
	{ErrStateRequired, KindValidation},
	{ErrStateInvalid, KindValidation},
	{ErrStateDuplicate, KindValidation},
	{ErrCallbackInvalid, KindValidation},
	{ErrCallbackNotAllowed, KindValidation},
	{ErrStateUnknown, KindValidation},
	{ErrCodeRequired, KindValidation},
	{ErrProviderDenied, KindUpstream},
	{ErrUpstream, KindUpstream},
	{ErrResourceNotFound, KindNotFound},
	{ErrResourceExpired, KindNotFound},
	{ErrSignOnRequest, KindValidation},
	{ErrTokenRequired, KindValidation},
	{ErrPayloadRequired, KindValidation},
}

// KindOf classifies err. Unknown errors are KindInternal.
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}
	var ae *authError
	if errors.As(err, &ae) {
		return ae.kind
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInternal
}

// authError carries a verifier/token failure with its kind.
type authError struct {
	kind Kind
	err  error
}

func (e *authError) Error() string { return e.err.Error() }
func (e *authError) Unwrap() error { return e.err }

func withKind(k Kind, err error) error { return &authError{kind: k, err: err} }

// upstream wraps a provider failure; callers see ErrUpstream, logs see cause.
func upstream(cause error) error {
	return fmt.Errorf("%w: %w", ErrUpstream, cause)
}

// AuthFailure marks err as an authentication failure (401 at the transport).
func AuthFailure(err error) error { return withKind(KindAuthentication, err) }
