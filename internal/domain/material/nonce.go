package material

import (
	"crypto/rand"
	"fmt"
)

// Nonce is a public per-operation value with a fixed length per algorithm.
// Reuse under the same key is a caller error; the library does not and cannot
// validate freshness.
type Nonce []byte

// NewRandomNonce returns a fresh random nonce of the given length.
func NewRandomNonce(length int) (Nonce, error) {
	if length < 0 {
		return nil, fmt.Errorf("nonce length cannot be negative: %d", length)
	}
	n := make(Nonce, length)
	if _, err := rand.Read(n); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return n, nil
}

// CheckNonceLength validates that a nonce matches the algorithm's declared
// length. The check is eager so failures surface before any suspension point.
func CheckNonceLength(nonce Nonce, want int) error {
	if len(nonce) != want {
		return fmt.Errorf("invalid nonce length: got %d, want %d", len(nonce), want)
	}
	return nil
}
