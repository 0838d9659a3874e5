package jwt

import (
	"strings"
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testSecret = []byte("0123456789abcdef0123456789abcdef")
	oldSecret  = []byte("fedcba9876543210fedcba9876543210")
)

func newTestService(t *testing.T, now func() time.Time) *Service {
	t.Helper()
	kr, err := NewKeyring(testSecret)
	require.NoError(t, err)
	return NewService(kr, Options{Now: now})
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(t, func() time.Time { return now })

	sub := Subject{ID: "12345", Name: "12345", Email: "12345@example.com", Role: "user"}
	iss, err := svc.Issue(sub, IssueOptions{Method: "V5_MD5"})
	require.NoError(t, err)
	assert.Equal(t, now.Add(DefaultTTL), iss.ExpiresAt)

	v, err := svc.Verify(iss.Token)
	require.NoError(t, err)
	require.NotNil(t, v.Subject)
	assert.Equal(t, sub, *v.Subject)
	assert.Equal(t, "V5_MD5", v.Header[HeaderAuthMethod])
	assert.Equal(t, "HS256", v.Header["alg"])
	assert.Equal(t, iss.KID, v.Header["kid"])
	assert.Equal(t, iss.ExpiresAt, v.ExpiresAt.UTC())
	assert.NotEmpty(t, v.Payload["jti"])
}

func TestVerifyRejectsFlippedSignature(t *testing.T) {
	svc := newTestService(t, nil)
	iss, err := svc.Issue(Subject{ID: "u1"}, IssueOptions{})
	require.NoError(t, err)

	parts := strings.Split(iss.Token, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[5] == 'A' {
		sig[5] = 'B'
	} else {
		sig[5] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = svc.Verify(tampered)
	require.ErrorIs(t, err, ErrBadSignature)
}

func TestVerifyRejectsAlgNone(t *testing.T) {
	svc := newTestService(t, nil)
	claims := jwtv5.MapClaims{
		"user": map[string]any{"id": "admin"},
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	tok, err := jwtv5.NewWithClaims(jwtv5.SigningMethodNone, claims).SignedString(jwtv5.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.Verify(tok)
	require.ErrorIs(t, err, ErrBadSignature)
}

func TestVerifyRejectsOtherHMAC(t *testing.T) {
	svc := newTestService(t, nil)
	claims := jwtv5.MapClaims{"exp": time.Now().Add(time.Hour).Unix()}
	tok, err := jwtv5.NewWithClaims(jwtv5.SigningMethodHS512, claims).SignedString(testSecret)
	require.NoError(t, err)

	_, err = svc.Verify(tok)
	require.ErrorIs(t, err, ErrBadSignature)
}

func TestVerifyRequiresExp(t *testing.T) {
	svc := newTestService(t, nil)
	tok, err := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, jwtv5.MapClaims{"sub": "x"}).SignedString(testSecret)
	require.NoError(t, err)

	_, err = svc.Verify(tok)
	require.ErrorIs(t, err, ErrMalformed)
}

func TestVerifyExpired(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	svc := newTestService(t, clock)

	iss, err := svc.Issue(Subject{ID: "u1"}, IssueOptions{ExpiresAt: now.Add(time.Minute)})
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = svc.Verify(iss.Token)
	require.ErrorIs(t, err, ErrExpired)
}

func TestVerifyMalformed(t *testing.T) {
	svc := newTestService(t, nil)
	_, err := svc.Verify("not-a-jwt")
	require.ErrorIs(t, err, ErrMalformed)
}

func TestSignDefaultsAndReservedHeaders(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	svc := newTestService(t, func() time.Time { return now })

	iss, err := svc.Sign(
		map[string]any{"user": map[string]any{"id": "7"}},
		map[string]any{"alg": "none", "kid": "evil", "typ": "x", "source": "cli"},
	)
	require.NoError(t, err)
	assert.Equal(t, now.Add(DefaultTTL), iss.ExpiresAt)

	v, err := svc.Verify(iss.Token)
	require.NoError(t, err)
	assert.Equal(t, "HS256", v.Header["alg"])
	assert.Equal(t, "JWT", v.Header["typ"])
	assert.Equal(t, iss.KID, v.Header["kid"])
	assert.Equal(t, "cli", v.Header["source"])
	assert.EqualValues(t, now.Unix(), v.Payload["iat"])
}

func TestSignHonoursExplicitExp(t *testing.T) {
	now := time.Now()
	svc := newTestService(t, func() time.Time { return now })
	exp := float64(now.Add(time.Hour).Unix())

	iss, err := svc.Sign(map[string]any{"exp": exp}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(exp), iss.ExpiresAt.Unix())

	_, err = svc.Sign(map[string]any{"exp": "tomorrow"}, nil)
	require.ErrorIs(t, err, ErrBadExpiry)
}

func TestSignRejectsUnrepresentableExp(t *testing.T) {
	svc := newTestService(t, time.Now)

	for _, exp := range []any{1e300, float64(maxUnix + 1), int64(1) << 62} {
		_, err := svc.Sign(map[string]any{"exp": exp}, nil)
		require.ErrorIs(t, err, ErrBadExpiry, "exp=%v", exp)
	}

	iss, err := svc.Sign(map[string]any{"exp": float64(maxUnix)}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(maxUnix), iss.ExpiresAt.Unix())
	_, err = svc.Verify(iss.Token)
	require.NoError(t, err)
}

func TestKeyringRotation(t *testing.T) {
	oldRing, err := NewKeyring(oldSecret)
	require.NoError(t, err)
	oldSvc := NewService(oldRing, Options{})
	iss, err := oldSvc.Issue(Subject{ID: "u1"}, IssueOptions{})
	require.NoError(t, err)

	rotated, err := NewKeyring(testSecret, oldSecret)
	require.NoError(t, err)
	svc := NewService(rotated, Options{})

	_, err = svc.Verify(iss.Token)
	require.NoError(t, err)

	// Sin la clave anterior el kid ya no se resuelve.
	_, err = newTestService(t, nil).Verify(iss.Token)
	require.ErrorIs(t, err, ErrBadSignature)
}

func TestNewKeyringRejectsWeakSecrets(t *testing.T) {
	_, err := NewKeyring([]byte("short"))
	require.ErrorIs(t, err, ErrWeakKey)

	_, err = NewKeyring(testSecret, []byte("short"))
	require.ErrorIs(t, err, ErrWeakKey)

	kr, err := NewKeyring(testSecret, nil, oldSecret)
	require.NoError(t, err)
	assert.Len(t, kr.KIDs(), 2)
}
