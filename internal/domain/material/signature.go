package material

import (
	"crypto/subtle"
	"fmt"
)

// Signature bundles signature bytes with the public key that verifies them,
// so verification never needs an external key lookup.
type Signature struct {
	Bytes     []byte
	PublicKey *PublicKey
}

// NewSignature creates a self-describing signature. The bytes are copied.
func NewSignature(sig []byte, publicKey *PublicKey) (*Signature, error) {
	if len(sig) == 0 {
		return nil, fmt.Errorf("signature bytes cannot be empty")
	}
	if publicKey == nil {
		return nil, fmt.Errorf("public key cannot be nil")
	}
	return &Signature{Bytes: clone(sig), PublicKey: publicKey}, nil
}

// Equal compares two signatures in constant time, including the public key.
func (s *Signature) Equal(other *Signature) bool {
	if s == other {
		return true
	}
	if s == nil || other == nil {
		return false
	}
	if len(s.Bytes) != len(other.Bytes) {
		return false
	}
	return subtle.ConstantTimeCompare(s.Bytes, other.Bytes) == 1 &&
		s.PublicKey.Equal(other.PublicKey)
}
