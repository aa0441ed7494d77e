package purecrypto

import (
	"context"
	"crypto/hmac"
	"fmt"
	"hash"

	"github.com/dint-dev/cryptography-sub004/internal/domain/algorithms"
	"github.com/dint-dev/cryptography-sub004/internal/domain/material"
)

// hmacAlgorithm implements MacAlgorithm as HMAC over a configurable hash.
// HMAC keys may have any length; no eager key length check applies.
type hmacAlgorithm struct {
	hashName string
	length   int
	newHash  func() hash.Hash
}

// NewHmac creates an HMAC MacAlgorithm over the given hash algorithm's
// underlying function. The tag length equals the hash length.
func NewHmac(inner algorithms.HashAlgorithm) (algorithms.MacAlgorithm, error) {
	ha, ok := inner.(*hashAlgorithm)
	if !ok {
		return nil, fmt.Errorf("unsupported hash algorithm for HMAC: %s", inner.Name())
	}
	return &hmacAlgorithm{hashName: ha.name, length: ha.length, newHash: ha.newHash}, nil
}

func (a *hmacAlgorithm) Name() string {
	return fmt.Sprintf("%s(%s)", algorithms.NameHmac, a.hashName)
}

func (a *hmacAlgorithm) MacLength() int    { return a.length }
func (a *hmacAlgorithm) SupportsAAD() bool { return false }

func (a *hmacAlgorithm) Compute(ctx context.Context, key *material.SecretKey, data []byte, aad []byte) (material.Mac, error) {
	sink, err := a.NewSink(ctx, key, aad)
	if err != nil {
		return nil, err
	}
	if err := sink.Add(data); err != nil {
		return nil, err
	}
	return sink.Close()
}

func (a *hmacAlgorithm) NewSink(ctx context.Context, key *material.SecretKey, aad []byte) (algorithms.MacSink, error) {
	if len(aad) > 0 {
		return nil, fmt.Errorf("%s does not support associated data", a.Name())
	}
	if key == nil {
		return nil, fmt.Errorf("secret key cannot be nil")
	}
	raw, err := key.Extract(ctx)
	if err != nil {
		return nil, err
	}
	return newMacSink(hmac.New(a.newHash, raw)), nil
}
