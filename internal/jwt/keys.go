package jwt

import (
	"errors"
	"fmt"

	tokens "github.com/dropDatabas3/authbridge/internal/security/token"
)

// MinKeyBytes es el largo mínimo de un secreto HMAC (256 bits para HS256).
const MinKeyBytes = 32

var (
	ErrWeakKey    = fmt.Errorf("jwt: signing secret must be at least %d bytes", MinKeyBytes)
	ErrUnknownKID = errors.New("jwt: unknown kid")
)

// Keyring guarda la clave activa (firma) y las anteriores (solo verificación).
// Rotar = mover el secreto actual a previous y configurar uno nuevo, sin tocar código.
type Keyring struct {
	activeKID string
	keys      map[string][]byte
}

// NewKeyring valida y registra los secretos. El kid de cada uno es su fingerprint.
func NewKeyring(active []byte, previous ...[]byte) (*Keyring, error) {
	if len(active) < MinKeyBytes {
		return nil, ErrWeakKey
	}
	kr := &Keyring{keys: make(map[string][]byte, 1+len(previous))}
	kr.activeKID = kr.add(active)
	for _, p := range previous {
		if len(p) == 0 {
			continue
		}
		if len(p) < MinKeyBytes {
			return nil, ErrWeakKey
		}
		kr.add(p)
	}
	return kr, nil
}

func (k *Keyring) add(secret []byte) string {
	cp := make([]byte, len(secret))
	copy(cp, secret)
	kid := tokens.Fingerprint(cp)
	k.keys[kid] = cp
	return kid
}

// Active devuelve el kid y el secreto de firma.
func (k *Keyring) Active() (string, []byte) {
	return k.activeKID, k.keys[k.activeKID]
}

// ByKID devuelve el secreto para un kid (activo o anterior).
func (k *Keyring) ByKID(kid string) ([]byte, error) {
	if b, ok := k.keys[kid]; ok {
		return b, nil
	}
	return nil, ErrUnknownKID
}

// KIDs lista los kids conocidos, activo primero.
func (k *Keyring) KIDs() []string {
	out := []string{k.activeKID}
	for kid := range k.keys {
		if kid != k.activeKID {
			out = append(out, kid)
		}
	}
	return out
}
