package material

import "crypto/subtle"

// Mac is a fixed-length message authentication tag.
type Mac []byte

// Equal compares two MACs in constant time.
func (m Mac) Equal(other Mac) bool {
	if len(m) != len(other) {
		return false
	}
	return subtle.ConstantTimeCompare(m, other) == 1
}

// Hash is a fixed-length message digest.
type Hash []byte

// Equal compares two digests in constant time.
func (h Hash) Equal(other Hash) bool {
	if len(h) != len(other) {
		return false
	}
	return subtle.ConstantTimeCompare(h, other) == 1
}
