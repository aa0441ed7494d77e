package algorithms

import "errors"

// Sentinel errors for errors.Is() checks
var (
	// ErrAuthenticationFailed is returned when a recomputed MAC does not match
	// the received one. Decryption never proceeds past this check.
	ErrAuthenticationFailed = errors.New("secret box authentication failed")

	// ErrInvalidPadding is returned when block-cipher unpadding finds invalid
	// padding. Distinct from ErrAuthenticationFailed so callers can tell
	// "tampered" from "malformed".
	ErrInvalidPadding = errors.New("secret box has invalid padding")

	// ErrUnsupportedOperation is returned when a synchronous form is invoked on
	// a delegation-only implementation whose backend may suspend.
	ErrUnsupportedOperation = errors.New("operation not supported by this implementation")

	// ErrUnsupportedPlatform is returned when a delegated call targets a backend
	// lacking the algorithm and no fallback is configured.
	ErrUnsupportedPlatform = errors.New("algorithm not supported on this platform")

	// ErrSinkClosed is returned when bytes are added to a closed sink or stream.
	ErrSinkClosed = errors.New("sink is closed")

	// ErrInternalConsistency is returned when a native result's shape does not
	// match the contract's computed expectations. It indicates a broken native
	// binding and is never silently tolerated.
	ErrInternalConsistency = errors.New("internal consistency failure in native result")
)
