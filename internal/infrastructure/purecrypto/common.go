package purecrypto

import (
	"context"
	"fmt"

	"github.com/dint-dev/cryptography-sub004/internal/domain/material"
)

// extractKey extracts the raw key bytes and validates the length eagerly, so
// failures surface before any further work.
func extractKey(ctx context.Context, key *material.SecretKey, want int) ([]byte, error) {
	if key == nil {
		return nil, fmt.Errorf("secret key cannot be nil")
	}
	raw, err := key.Extract(ctx)
	if err != nil {
		return nil, err
	}
	if len(raw) != want {
		return nil, fmt.Errorf("invalid secret key length: got %d, want %d", len(raw), want)
	}
	return raw, nil
}

// resolveNonce validates a caller-supplied nonce or generates a fresh random
// one when nonce is nil.
func resolveNonce(nonce material.Nonce, length int) (material.Nonce, error) {
	if nonce == nil {
		return material.NewRandomNonce(length)
	}
	if err := material.CheckNonceLength(nonce, length); err != nil {
		return nil, err
	}
	return nonce, nil
}

// newRandomSecretKey generates a fresh key of the given length.
func newRandomSecretKey(length int) (*material.SecretKey, error) {
	raw, err := material.NewRandomNonce(length)
	if err != nil {
		return nil, fmt.Errorf("failed to generate secret key: %w", err)
	}
	return material.NewSecretKey(raw), nil
}

// checkAESKeyLength validates an AES key length choice.
func checkAESKeyLength(length int) error {
	switch length {
	case 16, 24, 32:
		return nil
	default:
		return fmt.Errorf("invalid AES key length: got %d, want 16, 24 or 32", length)
	}
}
