package validation

import (
	"fmt"
	"regexp"
)

// Scope name rules (provider scopes from config):
// - Lowercase only.
// - Start and end with [a-z0-9].
// - Middle chars may include [a-z0-9:_.-].
// - Length 1..64.
//
// Valid: user:email, read:user, name, email, a_b-c.d:scope2
// Invalid: ;hack, BAD, bad space, :leader, trailer:, "", 65+ chars.
var scopeNameRe = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9:_\.-]{0,62}[a-z0-9])?$`)

// ValidScopeName returns true if the provided scope name matches the allowed pattern.
func ValidScopeName(name string) bool {
	return scopeNameRe.MatchString(name)
}

// ValidateScopes reports the first invalid scope in the list.
func ValidateScopes(scopes []string) error {
	for _, s := range scopes {
		if !ValidScopeName(s) {
			return fmt.Errorf("invalid scope %q", s)
		}
	}
	return nil
}
