package signon

import (
	"context"
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/dropDatabas3/authbridge/internal/observability/logger"
)

// DefaultWindow bounds how far t_time may drift from server time, either way.
const DefaultWindow = 10 * time.Minute

// V5MD5Config configures the keyed-hash verifier.
type V5MD5Config struct {
	Secret      string
	Window      time.Duration
	EmailDomain string
	Now         func() time.Time
}

// V5MD5 accepts token == hex(MD5(empno + secret + t_time)).
type V5MD5 struct {
	secret      []byte
	window      time.Duration
	emailDomain string
	now         func() time.Time
}

func NewV5MD5(cfg V5MD5Config) *V5MD5 {
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.EmailDomain == "" {
		cfg.EmailDomain = "example.com"
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &V5MD5{
		secret:      []byte(cfg.Secret),
		window:      cfg.Window,
		emailDomain: cfg.EmailDomain,
		now:         cfg.Now,
	}
}

func (v *V5MD5) Method() Method { return MethodV5MD5 }

func (v *V5MD5) Verify(ctx context.Context, p Payload) (*Identity, error) {
	if len(v.secret) == 0 {
		return nil, ErrMethodNotConfigured
	}
	if p.Empno == "" || p.TTime == "" || p.Token == "" {
		return nil, ErrMissingFields
	}

	ts, err := strconv.ParseInt(strings.TrimSpace(p.TTime), 10, 64)
	if err != nil {
		return nil, ErrBadTimestamp
	}
	if !v.fresh(ts) {
		if !relaxedFreshness {
			return nil, ErrStaleTimestamp
		}
		logger.From(ctx).Warn("accepting stale sign-on timestamp (devbuild)",
			logger.AuthMethod(string(MethodV5MD5)),
			logger.UserID(p.Empno),
			logger.Any("t_time", ts),
		)
	}

	expected := Hash(p.Empno, v.secret, p.TTime)
	supplied := strings.ToLower(strings.TrimSpace(p.Token))
	if subtle.ConstantTimeCompare([]byte(expected), []byte(supplied)) != 1 {
		return nil, ErrInvalidToken
	}

	return &Identity{
		UserID: p.Empno,
		Name:   p.Empno,
		Role:   "user",
		Email:  p.Empno + "@" + v.emailDomain,
	}, nil
}

// fresh compares whole seconds so timestamps centuries away cannot overflow
// a time.Duration.
func (v *V5MD5) fresh(ts int64) bool {
	now := v.now().Unix()
	w := int64(v.window / time.Second)
	return ts >= now-w && ts <= now+w
}

// Hash computes the lowercase hex keyed hash clients must send.
func Hash(empno string, secret []byte, tTime string) string {
	h := md5.New()
	h.Write([]byte(empno))
	h.Write(secret)
	h.Write([]byte(tTime))
	return hex.EncodeToString(h.Sum(nil))
}
