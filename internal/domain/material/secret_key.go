package material

import (
	"context"
	"crypto/subtle"
	"fmt"
	"sync"
)

// KeyDeriver produces raw key bytes on demand, e.g. from a seed or a password.
// It may block on randomness or an external derivation and must honor ctx.
type KeyDeriver func(ctx context.Context) ([]byte, error)

// SecretKey owns raw symmetric key bytes. The bytes may be present up front or
// derived lazily on first extraction, so Extract is fallible and may suspend.
//
// Equality of SecretKey values outside constant-time paths must only rely on
// identity or length; Equal performs a constant-time byte comparison.
type SecretKey struct {
	mu      sync.Mutex
	bytes   []byte
	deriver KeyDeriver

	// handles caches opaque native key handles per algorithm identity token.
	// Recomputation is idempotent and last-write-wins, so no lock is needed
	// beyond what sync.Map provides.
	handles sync.Map
}

// NewSecretKey creates a SecretKey from raw bytes.
func NewSecretKey(raw []byte) *SecretKey {
	b := make([]byte, len(raw))
	copy(b, raw)
	return &SecretKey{bytes: b}
}

// NewLazySecretKey creates a SecretKey whose bytes are computed by deriver on
// first extraction and cached afterwards.
func NewLazySecretKey(deriver KeyDeriver) (*SecretKey, error) {
	if deriver == nil {
		return nil, fmt.Errorf("deriver cannot be nil")
	}
	return &SecretKey{deriver: deriver}, nil
}

// Extract returns the raw key bytes, deriving them first if the key is lazy.
// The returned slice is the key's internal buffer; callers must not mutate it.
func (k *SecretKey) Extract(ctx context.Context) ([]byte, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.bytes != nil {
		return k.bytes, nil
	}
	if k.deriver == nil {
		return nil, fmt.Errorf("secret key has no bytes and no deriver")
	}

	b, err := k.deriver(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to derive secret key: %w", err)
	}
	k.bytes = b
	return k.bytes, nil
}

// Length returns the key length in bytes, or -1 if the key is lazy and has not
// been extracted yet. Length is safe to use for non-secret comparisons.
func (k *SecretKey) Length() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.bytes == nil {
		return -1
	}
	return len(k.bytes)
}

// Equal compares two extracted keys in constant time. Lazy keys that have not
// been extracted compare unequal to everything except themselves.
func (k *SecretKey) Equal(other *SecretKey) bool {
	if k == other {
		return true
	}
	if other == nil {
		return false
	}
	k.mu.Lock()
	a := k.bytes
	k.mu.Unlock()
	other.mu.Lock()
	b := other.bytes
	other.mu.Unlock()
	if a == nil || b == nil || len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}

// Zero wipes the extracted key bytes. The key is unusable afterwards.
func (k *SecretKey) Zero() {
	k.mu.Lock()
	defer k.mu.Unlock()
	for i := range k.bytes {
		k.bytes[i] = 0
	}
	k.bytes = nil
	k.deriver = nil
}

// Handle returns the cached native key handle for the given algorithm identity
// token, if one was stored.
func (k *SecretKey) Handle(token string) (interface{}, bool) {
	return k.handles.Load(token)
}

// StoreHandle caches a native key handle under the given algorithm identity
// token. Concurrent stores are harmless; the last writer wins.
func (k *SecretKey) StoreHandle(token string, handle interface{}) {
	k.handles.Store(token, handle)
}
