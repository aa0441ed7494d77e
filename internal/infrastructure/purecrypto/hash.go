package purecrypto

import (
	"context"
	"crypto/sha256"
	"crypto/sha512"
	"hash"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/blake2s"

	"github.com/dint-dev/cryptography-sub004/internal/domain/algorithms"
	"github.com/dint-dev/cryptography-sub004/internal/domain/material"
)

// hashAlgorithm implements HashAlgorithm over any stdlib-shaped hash.Hash
// constructor.
type hashAlgorithm struct {
	name    string
	length  int
	newHash func() hash.Hash
}

// NewSha256 creates the SHA-256 hash algorithm.
func NewSha256() algorithms.HashAlgorithm {
	return &hashAlgorithm{name: algorithms.NameSha256, length: sha256.Size, newHash: sha256.New}
}

// NewSha384 creates the SHA-384 hash algorithm.
func NewSha384() algorithms.HashAlgorithm {
	return &hashAlgorithm{name: algorithms.NameSha384, length: sha512.Size384, newHash: sha512.New384}
}

// NewSha512 creates the SHA-512 hash algorithm.
func NewSha512() algorithms.HashAlgorithm {
	return &hashAlgorithm{name: algorithms.NameSha512, length: sha512.Size, newHash: sha512.New}
}

// NewBlake2b creates the unkeyed BLAKE2b-512 hash algorithm.
func NewBlake2b() algorithms.HashAlgorithm {
	return &hashAlgorithm{
		name:   algorithms.NameBlake2b,
		length: blake2b.Size,
		newHash: func() hash.Hash {
			// New512 with a nil key never fails
			h, _ := blake2b.New512(nil)
			return h
		},
	}
}

// NewBlake2s creates the unkeyed BLAKE2s-256 hash algorithm.
func NewBlake2s() algorithms.HashAlgorithm {
	return &hashAlgorithm{
		name:   algorithms.NameBlake2s,
		length: blake2s.Size,
		newHash: func() hash.Hash {
			h, _ := blake2s.New256(nil)
			return h
		},
	}
}

func (a *hashAlgorithm) Name() string    { return a.name }
func (a *hashAlgorithm) HashLength() int { return a.length }

func (a *hashAlgorithm) Digest(_ context.Context, data []byte) (material.Hash, error) {
	h := a.newHash()
	_, _ = h.Write(data)
	return h.Sum(nil), nil
}

func (a *hashAlgorithm) NewSink() algorithms.HashSink {
	return newDigestSink(a.newHash())
}
