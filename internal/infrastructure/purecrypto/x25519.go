package purecrypto

import (
	"context"
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/curve25519"

	"github.com/dint-dev/cryptography-sub004/internal/domain/algorithms"
	"github.com/dint-dev/cryptography-sub004/internal/domain/material"
	"github.com/dint-dev/cryptography-sub004/internal/pkg/logger"
)

// x25519Exchange implements KeyExchangeAlgorithm over Curve25519. Key pairs
// are OKP material: the scalar in D, the point in X. The public point is
// derived lazily from the scalar.
type x25519Exchange struct {
	logger logger.Logger
}

// NewX25519 creates the X25519 key exchange.
func NewX25519(logger logger.Logger) (algorithms.KeyExchangeAlgorithm, error) {
	return &x25519Exchange{logger: logger}, nil
}

func (e *x25519Exchange) Name() string { return algorithms.NameX25519 }

func (e *x25519Exchange) NewKeyPair(_ context.Context) (*material.KeyPair, error) {
	scalar := make([]byte, curve25519.ScalarSize)
	if _, err := rand.Read(scalar); err != nil {
		return nil, fmt.Errorf("failed to generate X25519 scalar: %w", err)
	}
	private := &material.PrivateKey{D: scalar}
	return material.NewLazyKeyPair(material.KeyPairKindOkp, material.CurveX25519, private,
		func() (*material.PublicKey, error) {
			point, err := curve25519.X25519(scalar, curve25519.Basepoint)
			if err != nil {
				return nil, fmt.Errorf("failed to derive X25519 public key: %w", err)
			}
			return &material.PublicKey{
				Kind:  material.KeyPairKindOkp,
				Curve: material.CurveX25519,
				X:     point,
			}, nil
		})
}

func (e *x25519Exchange) SharedSecretKey(_ context.Context, keyPair *material.KeyPair, remotePublicKey *material.PublicKey) (*material.SecretKey, error) {
	if keyPair == nil {
		return nil, fmt.Errorf("key pair cannot be nil")
	}
	if keyPair.Kind() != material.KeyPairKindOkp || keyPair.Curve() != material.CurveX25519 {
		return nil, fmt.Errorf("invalid key pair: got %s/%s, want %s/%s",
			keyPair.Kind(), keyPair.Curve(), material.KeyPairKindOkp, material.CurveX25519)
	}
	if err := material.CheckKind(remotePublicKey, material.KeyPairKindOkp, material.CurveX25519); err != nil {
		return nil, err
	}
	if len(remotePublicKey.X) != curve25519.PointSize {
		return nil, fmt.Errorf("invalid X25519 public key length: got %d, want %d",
			len(remotePublicKey.X), curve25519.PointSize)
	}

	shared, err := curve25519.X25519(keyPair.Private().D, remotePublicKey.X)
	if err != nil {
		return nil, fmt.Errorf("failed to compute shared secret: %w", err)
	}
	return material.NewSecretKey(shared), nil
}
