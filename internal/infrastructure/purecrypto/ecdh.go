package purecrypto

import (
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"fmt"

	"github.com/dint-dev/cryptography-sub004/internal/domain/algorithms"
	"github.com/dint-dev/cryptography-sub004/internal/domain/material"
	"github.com/dint-dev/cryptography-sub004/internal/pkg/logger"
)

// ecdhExchange implements KeyExchangeAlgorithm over the NIST curves. Public
// keys are stored as EC material with the coordinates split out of the
// uncompressed point encoding.
type ecdhExchange struct {
	curve     ecdh.Curve
	curveName string
	logger    logger.Logger
}

// NewEcdh creates an ECDH key exchange for P-256, P-384 or P-521.
func NewEcdh(curveName string, logger logger.Logger) (algorithms.KeyExchangeAlgorithm, error) {
	switch curveName {
	case material.CurveP256:
		return &ecdhExchange{curve: ecdh.P256(), curveName: curveName, logger: logger}, nil
	case material.CurveP384:
		return &ecdhExchange{curve: ecdh.P384(), curveName: curveName, logger: logger}, nil
	case material.CurveP521:
		return &ecdhExchange{curve: ecdh.P521(), curveName: curveName, logger: logger}, nil
	default:
		return nil, fmt.Errorf("unsupported ECDH curve: %s", curveName)
	}
}

func (e *ecdhExchange) Name() string {
	return fmt.Sprintf("%s(%s)", algorithms.NameEcdh, e.curveName)
}

func (e *ecdhExchange) NewKeyPair(_ context.Context) (*material.KeyPair, error) {
	priv, err := e.curve.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ECDH key pair: %w", err)
	}

	public, err := e.publicToMaterial(priv.PublicKey())
	if err != nil {
		return nil, err
	}
	private := &material.PrivateKey{D: priv.Bytes()}
	return material.NewKeyPair(material.KeyPairKindEC, e.curveName, private, public)
}

func (e *ecdhExchange) SharedSecretKey(_ context.Context, keyPair *material.KeyPair, remotePublicKey *material.PublicKey) (*material.SecretKey, error) {
	if keyPair == nil {
		return nil, fmt.Errorf("key pair cannot be nil")
	}
	if keyPair.Kind() != material.KeyPairKindEC || keyPair.Curve() != e.curveName {
		return nil, fmt.Errorf("invalid key pair: got %s/%s, want %s/%s",
			keyPair.Kind(), keyPair.Curve(), material.KeyPairKindEC, e.curveName)
	}
	if err := material.CheckKind(remotePublicKey, material.KeyPairKindEC, e.curveName); err != nil {
		return nil, err
	}

	priv, err := e.curve.NewPrivateKey(keyPair.Private().D)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	remote, err := e.publicFromMaterial(remotePublicKey)
	if err != nil {
		return nil, err
	}

	shared, err := priv.ECDH(remote)
	if err != nil {
		return nil, fmt.Errorf("failed to compute shared secret: %w", err)
	}
	return material.NewSecretKey(shared), nil
}

// publicToMaterial splits the uncompressed point encoding 0x04 || X || Y.
func (e *ecdhExchange) publicToMaterial(pub *ecdh.PublicKey) (*material.PublicKey, error) {
	raw := pub.Bytes()
	if len(raw) < 1 || raw[0] != 0x04 || (len(raw)-1)%2 != 0 {
		return nil, fmt.Errorf("unexpected public key point encoding")
	}
	n := (len(raw) - 1) / 2
	return &material.PublicKey{
		Kind:  material.KeyPairKindEC,
		Curve: e.curveName,
		X:     raw[1 : 1+n],
		Y:     raw[1+n:],
	}, nil
}

func (e *ecdhExchange) publicFromMaterial(pub *material.PublicKey) (*ecdh.PublicKey, error) {
	if len(pub.X) == 0 || len(pub.X) != len(pub.Y) {
		return nil, fmt.Errorf("invalid public key coordinates: %d/%d bytes", len(pub.X), len(pub.Y))
	}
	raw := make([]byte, 0, 1+len(pub.X)+len(pub.Y))
	raw = append(raw, 0x04)
	raw = append(raw, pub.X...)
	raw = append(raw, pub.Y...)
	key, err := e.curve.NewPublicKey(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid public key: %w", err)
	}
	return key, nil
}
