package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidState(t *testing.T) {
	assert.True(t, ValidState("abc123"))
	assert.True(t, ValidState("a-b_c.d~e%2F"))
	assert.False(t, ValidState(""))
	assert.False(t, ValidState("has space"))
	assert.False(t, ValidState("tab\there"))
	assert.False(t, ValidState(strings.Repeat("x", MaxStateLen+1)))
}

func TestValidateCallbackURL(t *testing.T) {
	u, err := ValidateCallbackURL("https://app.example.com/cb?x=1", nil)
	require.NoError(t, err)
	assert.Equal(t, "app.example.com", u.Host)

	cases := map[string]error{
		"":                             ErrCallbackMissing,
		"/relative/path":               ErrCallbackNotAbsolute,
		"javascript:alert(1)":          ErrCallbackNotAbsolute,
		"ftp://files.example.com/":     ErrCallbackScheme,
		"https://user:pw@example.com/": ErrCallbackNotAbsolute,
		"https://example.com/#frag":    ErrCallbackNotAbsolute,
	}
	for in, want := range cases {
		_, err := ValidateCallbackURL(in, nil)
		require.ErrorIs(t, err, want, in)
	}
}

func TestValidateCallbackURLAllowlist(t *testing.T) {
	allowed := []string{"app.example.com", "*.corp.example.com", "localhost:3000"}

	for _, ok := range []string{
		"https://app.example.com/cb",
		"https://APP.example.com:8443/cb",
		"https://a.b.corp.example.com/cb",
		"http://localhost:3000/callback",
	} {
		_, err := ValidateCallbackURL(ok, allowed)
		require.NoError(t, err, ok)
	}

	for _, bad := range []string{
		"https://evil.com/cb",
		"https://corp.example.com.evil.com/cb",
		"http://localhost:4000/callback",
	} {
		_, err := ValidateCallbackURL(bad, allowed)
		require.ErrorIs(t, err, ErrCallbackHost, bad)
	}
}
