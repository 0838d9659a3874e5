// Package auth contiene los DTOs de /auth/*. Conservan el sobre {valid, error}
// que los relying apps ya consumen.
package auth

import "github.com/dropDatabas3/authbridge/internal/signon"

// VerifyRequest body de POST /auth/verify.
type VerifyRequest struct {
	Token string `json:"token"`
}

// VerifyResponse respuesta de POST /auth/verify.
type VerifyResponse struct {
	Valid   bool           `json:"valid"`
	Payload map[string]any `json:"payload,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// TokenRequest body de POST /auth/token.
type TokenRequest struct {
	Payload map[string]any `json:"payload"`
	Headers map[string]any `json:"headers,omitempty"`
}

// TokenResponse respuesta de POST /auth/token (expiresAt en unix seconds).
type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
}

// SignOnRequest body de POST /auth/custom-sign-on.
type SignOnRequest struct {
	Method  string          `json:"method"`
	Payload *signon.Payload `json:"payload"`
}

// SignOnResponse respuesta de POST /auth/custom-sign-on.
type SignOnResponse struct {
	Valid     bool   `json:"valid"`
	Token     string `json:"token,omitempty"`
	ExpiresAt int64  `json:"expiresAt,omitempty"`
	Error     string `json:"error,omitempty"`
}
