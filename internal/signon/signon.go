// Package signon authenticates callers that cannot run a redirect flow.
//
// Each Verifier turns a Payload into an Identity; the broker then issues an
// identity token for it. Two methods exist: V5_MD5 (preshared-key keyed hash)
// and YIKONG (identity previously established by the yikong redirect flow).
package signon

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Method names a sign-on scheme as sent by clients.
type Method string

const (
	MethodV5MD5  Method = "V5_MD5"
	MethodYikong Method = "YIKONG"
)

// Identity is what a verifier vouches for.
type Identity struct {
	UserID string
	Name   string
	Role   string
	Email  string
}

// Verifier checks one sign-on method.
type Verifier interface {
	Method() Method
	Verify(ctx context.Context, p Payload) (*Identity, error)
}

// Authentication failures. Messages are returned to the caller as-is.
var (
	ErrMissingFields       = errors.New("Employee number, timestamp, and token are required")
	ErrBadTimestamp        = errors.New("Invalid timestamp format")
	ErrStaleTimestamp      = errors.New("Token timestamp is too old or in the future")
	ErrInvalidToken        = errors.New("Invalid token")
	ErrMissingIdentity     = errors.New("User ID, name, and email are required")
	ErrIdentityNotFound    = errors.New("User not found")
	ErrIdentityMismatch    = errors.New("User info mismatch")
	ErrUnsupportedMethod   = errors.New("Unsupported authentication method")
	ErrMethodNotConfigured = errors.New("authentication method is not configured")
)

// IsAuthFailure reports whether err means "credentials rejected" (401) rather
// than a bad request or a server problem.
func IsAuthFailure(err error) bool {
	for _, e := range []error{
		ErrMissingFields, ErrBadTimestamp, ErrStaleTimestamp, ErrInvalidToken,
		ErrMissingIdentity, ErrIdentityNotFound, ErrIdentityMismatch,
	} {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

// Registry maps method names to verifiers.
type Registry struct {
	mu        sync.RWMutex
	verifiers map[Method]Verifier
}

func NewRegistry(vs ...Verifier) *Registry {
	r := &Registry{verifiers: make(map[Method]Verifier, len(vs))}
	for _, v := range vs {
		r.Register(v)
	}
	return r
}

func (r *Registry) Register(v Verifier) {
	r.mu.Lock()
	r.verifiers[v.Method()] = v
	r.mu.Unlock()
}

// Lookup is case-sensitive, matching what clients have always sent.
func (r *Registry) Lookup(m string) (Verifier, error) {
	r.mu.RLock()
	v, ok := r.verifiers[Method(m)]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMethod, m)
	}
	return v, nil
}

func (r *Registry) Methods() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.verifiers))
	for m := range r.verifiers {
		out = append(out, string(m))
	}
	sort.Strings(out)
	return out
}

// Verify resolves the method and runs its verifier. The identity is exactly
// what the verifier vouched for; unauthenticated payload fields never replace it.
func (r *Registry) Verify(ctx context.Context, method string, p Payload) (*Identity, error) {
	v, err := r.Lookup(method)
	if err != nil {
		return nil, err
	}
	return v.Verify(ctx, p)
}
