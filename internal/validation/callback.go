package validation

import (
	"errors"
	"net/url"
	"strings"
	"unicode"
)

// MaxStateLen bounds the caller-supplied state token.
const MaxStateLen = 512

var (
	ErrCallbackMissing     = errors.New("callback is required")
	ErrCallbackNotAbsolute = errors.New("callback must be an absolute URL")
	ErrCallbackScheme      = errors.New("callback must use http or https")
	ErrCallbackHost        = errors.New("callback host is not allowed")
)

// ValidState: 1..MaxStateLen chars, no whitespace or control characters.
func ValidState(s string) bool {
	if s == "" || len(s) > MaxStateLen {
		return false
	}
	for _, r := range s {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return false
		}
	}
	return true
}

// ValidateCallbackURL checks that raw is an absolute http(s) URL without
// userinfo or fragment and, when allowed is non-empty, that its host matches.
//
// Allowed entries: "app.example.com", "app.example.com:8443", "*.example.com".
func ValidateCallbackURL(raw string, allowed []string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrCallbackMissing
	}
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" || u.Opaque != "" {
		return nil, ErrCallbackNotAbsolute
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return nil, ErrCallbackScheme
	}
	if u.User != nil || u.Fragment != "" {
		return nil, ErrCallbackNotAbsolute
	}
	if len(allowed) > 0 && !hostAllowed(u, allowed) {
		return nil, ErrCallbackHost
	}
	return u, nil
}

func hostAllowed(u *url.URL, allowed []string) bool {
	host := strings.ToLower(u.Host)
	name := strings.ToLower(u.Hostname())
	for _, a := range allowed {
		a = strings.ToLower(strings.TrimSpace(a))
		switch {
		case a == "":
			continue
		case a == "*":
			return true
		case strings.HasPrefix(a, "*."):
			if strings.HasSuffix(name, a[1:]) {
				return true
			}
		case strings.Contains(a, ":"):
			if host == a {
				return true
			}
		default:
			if name == a {
				return true
			}
		}
	}
	return false
}
