// Package tokens genera los valores opacos que entrega el broker: resource codes,
// keys de los stores y fingerprints de claves de firma.
package tokens

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// MinBytes es la entropía mínima (128 bits) de cualquier código de un solo uso.
const MinBytes = 16

// DefaultBytes es la entropía usada para resource codes (256 bits).
const DefaultBytes = 32

// GenerateOpaqueToken genera un token opaco aleatorio (base64url sin padding).
// Rechaza longitudes por debajo de MinBytes.
func GenerateOpaqueToken(nBytes int) (string, error) {
	if nBytes < MinBytes {
		return "", fmt.Errorf("tokens: %d bytes is below the %d byte minimum", nBytes, MinBytes)
	}
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// NewPrefixed genera un token opaco con un prefijo legible ("github.xxxx").
// El prefijo no aporta secreto, solo permite saber a qué canal pertenece un código.
func NewPrefixed(prefix string, nBytes int) (string, error) {
	tok, err := GenerateOpaqueToken(nBytes)
	if err != nil {
		return "", err
	}
	if prefix == "" {
		return tok, nil
	}
	return prefix + "." + tok, nil
}

// Fingerprint devuelve los primeros 8 bytes de sha256(b) en hex.
// Se usa como kid de las claves HMAC.
func Fingerprint(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:8])
}
