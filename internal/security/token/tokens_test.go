package tokens

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOpaqueToken(t *testing.T) {
	tok, err := GenerateOpaqueToken(DefaultBytes)
	require.NoError(t, err)

	raw, err := base64.RawURLEncoding.DecodeString(tok)
	require.NoError(t, err)
	assert.Len(t, raw, DefaultBytes)

	other, err := GenerateOpaqueToken(DefaultBytes)
	require.NoError(t, err)
	assert.NotEqual(t, tok, other)
}

func TestGenerateOpaqueTokenRejectsShort(t *testing.T) {
	_, err := GenerateOpaqueToken(8)
	require.Error(t, err)
}

func TestNewPrefixed(t *testing.T) {
	tok, err := NewPrefixed("github", MinBytes)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(tok, "github."))

	tok, err = NewPrefixed("", MinBytes)
	require.NoError(t, err)
	assert.NotContains(t, tok, ".")
}

func TestFingerprintStable(t *testing.T) {
	a := Fingerprint([]byte("secret"))
	assert.Len(t, a, 16)
	assert.Equal(t, a, Fingerprint([]byte("secret")))
	assert.NotEqual(t, a, Fingerprint([]byte("secret2")))
}
