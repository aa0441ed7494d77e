package purecrypto

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/pbkdf2"

	"github.com/dint-dev/cryptography-sub004/internal/domain/algorithms"
	"github.com/dint-dev/cryptography-sub004/internal/domain/material"
)

// hkdfAlgorithm implements KdfAlgorithm as HKDF-SHA256.
type hkdfAlgorithm struct{}

// NewHkdf creates the HKDF-SHA256 key derivation algorithm.
func NewHkdf() algorithms.KdfAlgorithm {
	return &hkdfAlgorithm{}
}

func (a *hkdfAlgorithm) Name() string { return algorithms.NameHkdf }

func (a *hkdfAlgorithm) DeriveKey(ctx context.Context, secret *material.SecretKey, salt, info []byte, length int) (*material.SecretKey, error) {
	if length <= 0 {
		return nil, fmt.Errorf("derived key length must be positive: %d", length)
	}
	if secret == nil {
		return nil, fmt.Errorf("secret key cannot be nil")
	}
	raw, err := secret.Extract(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]byte, length)
	if _, err := io.ReadFull(hkdf.New(sha256.New, raw, salt, info), out); err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	return material.NewSecretKey(out), nil
}

// pbkdf2Algorithm implements KdfAlgorithm as PBKDF2-HMAC-SHA256. The info
// parameter is not part of PBKDF2 and must be empty.
type pbkdf2Algorithm struct {
	iterations int
}

// NewPbkdf2 creates the PBKDF2-HMAC-SHA256 key derivation algorithm with the
// given iteration count.
func NewPbkdf2(iterations int) (algorithms.KdfAlgorithm, error) {
	if iterations < 1 {
		return nil, fmt.Errorf("iteration count must be positive: %d", iterations)
	}
	return &pbkdf2Algorithm{iterations: iterations}, nil
}

func (a *pbkdf2Algorithm) Name() string { return algorithms.NamePbkdf2 }

func (a *pbkdf2Algorithm) DeriveKey(ctx context.Context, secret *material.SecretKey, salt, info []byte, length int) (*material.SecretKey, error) {
	if length <= 0 {
		return nil, fmt.Errorf("derived key length must be positive: %d", length)
	}
	if len(info) > 0 {
		return nil, fmt.Errorf("%s does not support an info parameter", a.Name())
	}
	if secret == nil {
		return nil, fmt.Errorf("secret key cannot be nil")
	}
	raw, err := secret.Extract(ctx)
	if err != nil {
		return nil, err
	}

	out := pbkdf2.Key(raw, salt, a.iterations, length, sha256.New)
	return material.NewSecretKey(out), nil
}
