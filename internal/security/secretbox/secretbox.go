// Package secretbox sella secretos de config con AES-256-GCM para que puedan
// vivir en YAML o .env como "enc:<nonce>|<ciphertext>".
package secretbox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	// EnvMasterKey es la variable que trae la clave maestra.
	EnvMasterKey = "SECRETBOX_MASTER_KEY"
	// Prefix marca un valor sellado.
	Prefix = "enc:"

	keyLen   = 32  // AES-256
	nonceLen = 12  // GCM estándar
	sep      = "|" // nonce|ciphertext (ambos en base64)
)

var (
	ErrKeyLength = fmt.Errorf("secretbox: key must decode to %d bytes", keyLen)
	ErrFormat    = errors.New("secretbox: expected base64(nonce)|base64(ciphertext)")
	ErrNoKey     = fmt.Errorf("secretbox: %s is not set; generate one with `authbridge secret keygen`", EnvMasterKey)
)

// Box sella y abre secretos con una clave fija.
type Box struct {
	aead cipher.AEAD
}

// ParseKey acepta la clave en base64 (con o sin padding), hex o 32 bytes crudos.
func ParseKey(key string) ([]byte, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, ErrNoKey
	}
	if b, err := base64.StdEncoding.DecodeString(key); err == nil && len(b) == keyLen {
		return b, nil
	}
	if b, err := base64.RawStdEncoding.DecodeString(key); err == nil && len(b) == keyLen {
		return b, nil
	}
	if len(key) == 2*keyLen {
		if b, err := hex.DecodeString(key); err == nil {
			return b, nil
		}
	}
	if len(key) == keyLen {
		return []byte(key), nil
	}
	return nil, ErrKeyLength
}

// New arma un Box desde la clave en cualquiera de los formatos de ParseKey.
func New(key string) (*Box, error) {
	k, err := ParseKey(key)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(k)
	if err != nil {
		return nil, fmt.Errorf("secretbox: aes: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("secretbox: gcm: %w", err)
	}
	return &Box{aead: aead}, nil
}

// GenerateKey devuelve una clave nueva en base64.
func GenerateKey() (string, error) {
	k := make([]byte, keyLen)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(k), nil
}

// Seal cifra plain y devuelve el valor con Prefix, listo para la config.
func (b *Box) Seal(plain string) (string, error) {
	nonce := make([]byte, nonceLen)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("secretbox: nonce: %w", err)
	}
	ct := b.aead.Seal(nil, nonce, []byte(plain), nil)
	return Prefix + base64.StdEncoding.EncodeToString(nonce) + sep + base64.StdEncoding.EncodeToString(ct), nil
}

// Open descifra un valor sellado (con o sin Prefix).
func (b *Box) Open(sealed string) (string, error) {
	nonceB64, ctB64, ok := strings.Cut(strings.TrimPrefix(strings.TrimSpace(sealed), Prefix), sep)
	if !ok {
		return "", ErrFormat
	}
	nonce, err := base64.StdEncoding.DecodeString(nonceB64)
	if err != nil || len(nonce) != nonceLen {
		return "", ErrFormat
	}
	ct, err := base64.StdEncoding.DecodeString(ctB64)
	if err != nil {
		return "", ErrFormat
	}
	pt, err := b.aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return "", fmt.Errorf("secretbox: open: %w", err)
	}
	return string(pt), nil
}

// IsSealed indica si v lleva Prefix.
func IsSealed(v string) bool {
	return strings.HasPrefix(strings.TrimSpace(v), Prefix)
}

// Reveal devuelve v tal cual si no está sellado; si lo está, lo abre.
// Un Box nil con un valor sellado es ErrNoKey.
func (b *Box) Reveal(v string) (string, error) {
	if !IsSealed(v) {
		return v, nil
	}
	if b == nil {
		return "", ErrNoKey
	}
	return b.Open(v)
}
