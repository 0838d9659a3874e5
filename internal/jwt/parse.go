package jwt

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// Errores de verificación. Los mensajes son los que ve el cliente en /auth/verify.
var (
	ErrMalformed    = errors.New("token is malformed")
	ErrBadSignature = errors.New("invalid signature")
	ErrExpired      = errors.New("token expired")
)

// Verified es un token válido ya decodificado.
type Verified struct {
	Payload   map[string]any
	Header    map[string]any
	Subject   *Subject
	ExpiresAt time.Time
}

// Verify valida firma HS256, exp obligatorio y vencimiento.
// Tokens con alg distinto de HS256 (incluido "none") se rechazan como firma inválida.
func (s *Service) Verify(token string) (*Verified, error) {
	keyfunc := func(t *jwtv5.Token) (any, error) {
		if kid, _ := t.Header["kid"].(string); kid != "" {
			return s.keys.ByKID(kid)
		}
		// Tokens sin kid (emitidos antes del keyring) se validan con la activa.
		_, secret := s.keys.Active()
		return secret, nil
	}

	tok, err := jwtv5.Parse(token, keyfunc,
		jwtv5.WithValidMethods([]string{jwtv5.SigningMethodHS256.Alg()}),
		jwtv5.WithExpirationRequired(),
		jwtv5.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, classify(err)
	}
	if !tok.Valid {
		return nil, ErrBadSignature
	}

	claims, ok := tok.Claims.(jwtv5.MapClaims)
	if !ok {
		return nil, ErrMalformed
	}
	out := make(map[string]any, len(claims))
	for k, v := range claims {
		out[k] = v
	}
	v := &Verified{Payload: out, Header: tok.Header, Subject: subjectFromClaims(out)}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		v.ExpiresAt = exp.Time
	}
	return v, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwtv5.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwtv5.ErrTokenMalformed),
		errors.Is(err, jwtv5.ErrTokenRequiredClaimMissing),
		errors.Is(err, jwtv5.ErrTokenInvalidClaims):
		return ErrMalformed
	default:
		// ErrTokenSignatureInvalid, ErrTokenUnverifiable (kid desconocido, alg no permitido)
		return ErrBadSignature
	}
}
