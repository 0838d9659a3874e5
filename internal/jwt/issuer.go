// Package jwt emite y verifica los identity tokens del broker (HS256).
package jwt

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTTL es la vida de un token cuando el caller no fija exp (30 días).
const DefaultTTL = 30 * 24 * time.Hour

var ErrBadExpiry = errors.New("jwt: exp must be a unix timestamp")

// Options configura el Service.
type Options struct {
	TTL time.Duration
	Now func() time.Time
}

// Service firma y verifica tokens. Es el único que conoce los secretos.
type Service struct {
	keys *Keyring
	ttl  time.Duration
	now  func() time.Time
}

func NewService(keys *Keyring, opts Options) *Service {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{keys: keys, ttl: opts.TTL, now: opts.Now}
}

// TTL devuelve la vida por defecto de los tokens.
func (s *Service) TTL() time.Duration { return s.ttl }

// Issued es el resultado de una firma.
type Issued struct {
	Token     string
	ExpiresAt time.Time
	KID       string
}

// IssueOptions ajusta un Issue.
type IssueOptions struct {
	// Method se copia al header auth_method.
	Method string
	// ExpiresAt explícito; zero = now + TTL.
	ExpiresAt time.Time
	// Extra viaja en el claim "extra" (campos passthrough del sign-on).
	Extra map[string]any
}

// Issue emite un token para un subject: {user, iat, exp, jti}.
func (s *Service) Issue(sub Subject, o IssueOptions) (*Issued, error) {
	now := s.now().UTC()
	exp := o.ExpiresAt
	if exp.IsZero() {
		exp = now.Add(s.ttl)
	}
	claims := jwtv5.MapClaims{
		"user": sub.claim(),
		"iat":  now.Unix(),
		"exp":  exp.Unix(),
		"jti":  uuid.NewString(),
	}
	if len(o.Extra) > 0 {
		claims["extra"] = o.Extra
	}
	var headers map[string]any
	if o.Method != "" {
		headers = map[string]any{HeaderAuthMethod: o.Method}
	}
	return s.sign(claims, headers)
}

// Sign firma un payload arbitrario. iat y exp se completan si faltan; los headers
// extra se copian salvo alg, typ y kid.
func (s *Service) Sign(payload map[string]any, headers map[string]any) (*Issued, error) {
	now := s.now().UTC()
	claims := make(jwtv5.MapClaims, len(payload)+2)
	for k, v := range payload {
		claims[k] = v
	}
	if !positiveNumber(claims["iat"]) {
		claims["iat"] = now.Unix()
	}
	if _, ok := claims["exp"]; !ok || claims["exp"] == nil {
		claims["exp"] = now.Add(s.ttl).Unix()
	} else if !positiveNumber(claims["exp"]) {
		return nil, ErrBadExpiry
	}
	return s.sign(claims, headers)
}

func (s *Service) sign(claims jwtv5.MapClaims, headers map[string]any) (*Issued, error) {
	kid, secret := s.keys.Active()

	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	for k, v := range headers {
		if _, reserved := reservedHeaders[k]; reserved {
			continue
		}
		tk.Header[k] = v
	}
	tk.Header["kid"] = kid
	tk.Header["typ"] = "JWT"

	signed, err := tk.SignedString(secret)
	if err != nil {
		return nil, fmt.Errorf("jwt: sign: %w", err)
	}
	exp, ok := unixTime(claims["exp"])
	if !ok {
		return nil, ErrBadExpiry
	}
	return &Issued{Token: signed, ExpiresAt: exp, KID: kid}, nil
}

func positiveNumber(v any) bool {
	_, ok := unixTime(v)
	return ok
}

// maxUnix es 9999-12-31T23:59:59Z; arriba de eso int64(sec) desborda o el
// token queda inutilizable.
const maxUnix = 253402300799

// unixTime acepta los tipos numéricos que llegan por código (int64) o por JSON (float64).
func unixTime(v any) (time.Time, bool) {
	var sec float64
	switch n := v.(type) {
	case int:
		sec = float64(n)
	case int64:
		sec = float64(n)
	case float64:
		sec = n
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return time.Time{}, false
		}
		sec = f
	default:
		return time.Time{}, false
	}
	if sec <= 0 || sec > maxUnix || math.IsInf(sec, 0) || math.IsNaN(sec) {
		return time.Time{}, false
	}
	return time.Unix(int64(sec), 0).UTC(), true
}
