//go:build !devbuild

package signon

// relaxedFreshness is only true in binaries built with -tags devbuild.
const relaxedFreshness = false
