package purecrypto

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"math/big"

	"github.com/dint-dev/cryptography-sub004/internal/domain/algorithms"
	"github.com/dint-dev/cryptography-sub004/internal/domain/material"
	"github.com/dint-dev/cryptography-sub004/internal/pkg/logger"
)

// ecdsaSigner implements SignatureAlgorithm over NIST curves. Signatures are
// fixed-width r || s with each component left-padded to the curve byte length,
// paired with the conventional hash per curve.
type ecdsaSigner struct {
	curve     elliptic.Curve
	curveName string
	hash      func([]byte) []byte
	logger    logger.Logger
}

// NewEcdsa creates an ECDSA signature algorithm for P-256, P-384 or P-521.
func NewEcdsa(curveName string, logger logger.Logger) (algorithms.SignatureAlgorithm, error) {
	switch curveName {
	case material.CurveP256:
		return &ecdsaSigner{
			curve: elliptic.P256(), curveName: curveName, logger: logger,
			hash: func(m []byte) []byte { d := sha256.Sum256(m); return d[:] },
		}, nil
	case material.CurveP384:
		return &ecdsaSigner{
			curve: elliptic.P384(), curveName: curveName, logger: logger,
			hash: func(m []byte) []byte { d := sha512.Sum384(m); return d[:] },
		}, nil
	case material.CurveP521:
		return &ecdsaSigner{
			curve: elliptic.P521(), curveName: curveName, logger: logger,
			hash: func(m []byte) []byte { d := sha512.Sum512(m); return d[:] },
		}, nil
	default:
		return nil, fmt.Errorf("unsupported ECDSA curve: %s", curveName)
	}
}

// coordinateBytes is the byte length of a curve scalar or coordinate.
func (s *ecdsaSigner) coordinateBytes() int {
	return (s.curve.Params().BitSize + 7) / 8
}

func (s *ecdsaSigner) Name() string {
	return fmt.Sprintf("%s(%s)", algorithms.NameEcdsa, s.curveName)
}

func (s *ecdsaSigner) SignatureLength() int { return 2 * s.coordinateBytes() }

func (s *ecdsaSigner) NewKeyPair(_ context.Context) (*material.KeyPair, error) {
	priv, err := ecdsa.GenerateKey(s.curve, rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ECDSA key pair: %w", err)
	}
	n := s.coordinateBytes()
	private := &material.PrivateKey{D: priv.D.FillBytes(make([]byte, n))}
	public := &material.PublicKey{
		Kind:  material.KeyPairKindEC,
		Curve: s.curveName,
		X:     priv.X.FillBytes(make([]byte, n)),
		Y:     priv.Y.FillBytes(make([]byte, n)),
	}
	s.logger.Info("Generated ECDSA key pair on ", s.curveName)
	return material.NewKeyPair(material.KeyPairKindEC, s.curveName, private, public)
}

func (s *ecdsaSigner) Sign(_ context.Context, keyPair *material.KeyPair, message []byte) (*material.Signature, error) {
	if keyPair == nil {
		return nil, fmt.Errorf("key pair cannot be nil")
	}
	if keyPair.Kind() != material.KeyPairKindEC || keyPair.Curve() != s.curveName {
		return nil, fmt.Errorf("invalid key pair: got %s/%s, want %s/%s",
			keyPair.Kind(), keyPair.Curve(), material.KeyPairKindEC, s.curveName)
	}
	public, err := keyPair.Public()
	if err != nil {
		return nil, err
	}

	priv := &ecdsa.PrivateKey{
		PublicKey: ecdsa.PublicKey{
			Curve: s.curve,
			X:     new(big.Int).SetBytes(public.X),
			Y:     new(big.Int).SetBytes(public.Y),
		},
		D: new(big.Int).SetBytes(keyPair.Private().D),
	}
	if priv.D.Sign() == 0 {
		return nil, fmt.Errorf("invalid private key: D cannot be zero")
	}

	r, sv, err := ecdsa.Sign(rand.Reader, priv, s.hash(message))
	if err != nil {
		return nil, fmt.Errorf("failed to sign message: %w", err)
	}

	n := s.coordinateBytes()
	sig := make([]byte, 2*n)
	r.FillBytes(sig[:n])
	sv.FillBytes(sig[n:])
	return material.NewSignature(sig, public)
}

func (s *ecdsaSigner) Verify(_ context.Context, signature *material.Signature, message []byte) (bool, error) {
	if signature == nil {
		return false, fmt.Errorf("signature cannot be nil")
	}
	if err := material.CheckKind(signature.PublicKey, material.KeyPairKindEC, s.curveName); err != nil {
		return false, err
	}
	n := s.coordinateBytes()
	if len(signature.Bytes) != 2*n {
		return false, nil
	}

	pub := &ecdsa.PublicKey{
		Curve: s.curve,
		X:     new(big.Int).SetBytes(signature.PublicKey.X),
		Y:     new(big.Int).SetBytes(signature.PublicKey.Y),
	}
	r := new(big.Int).SetBytes(signature.Bytes[:n])
	sv := new(big.Int).SetBytes(signature.Bytes[n:])
	return ecdsa.Verify(pub, s.hash(message), r, sv), nil
}
