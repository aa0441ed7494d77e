package purecrypto

import (
	"context"
	"crypto/rand"
	"fmt"

	"github.com/cloudflare/circl/sign/ed25519"

	"github.com/dint-dev/cryptography-sub004/internal/domain/algorithms"
	"github.com/dint-dev/cryptography-sub004/internal/domain/material"
	"github.com/dint-dev/cryptography-sub004/internal/pkg/logger"
)

// ed25519Signer implements SignatureAlgorithm over Ed25519. Key pairs are
// stored as OKP material: the seed in D, the public point in X.
type ed25519Signer struct {
	logger logger.Logger
}

// NewEd25519 creates the Ed25519 signature algorithm.
func NewEd25519(logger logger.Logger) (algorithms.SignatureAlgorithm, error) {
	return &ed25519Signer{logger: logger}, nil
}

func (s *ed25519Signer) Name() string         { return algorithms.NameEd25519 }
func (s *ed25519Signer) SignatureLength() int { return ed25519.SignatureSize }

func (s *ed25519Signer) NewKeyPair(_ context.Context) (*material.KeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Ed25519 key pair: %w", err)
	}
	private := &material.PrivateKey{D: priv.Seed()}
	public := &material.PublicKey{
		Kind:  material.KeyPairKindOkp,
		Curve: material.CurveEd25519,
		X:     []byte(pub),
	}
	return material.NewKeyPair(material.KeyPairKindOkp, material.CurveEd25519, private, public)
}

func (s *ed25519Signer) privateFromKeyPair(keyPair *material.KeyPair) (ed25519.PrivateKey, error) {
	if keyPair == nil {
		return nil, fmt.Errorf("key pair cannot be nil")
	}
	if keyPair.Kind() != material.KeyPairKindOkp || keyPair.Curve() != material.CurveEd25519 {
		return nil, fmt.Errorf("invalid key pair: got %s/%s, want %s/%s",
			keyPair.Kind(), keyPair.Curve(), material.KeyPairKindOkp, material.CurveEd25519)
	}
	seed := keyPair.Private().D
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("invalid Ed25519 seed length: got %d, want %d", len(seed), ed25519.SeedSize)
	}
	return ed25519.NewKeyFromSeed(seed), nil
}

func (s *ed25519Signer) Sign(_ context.Context, keyPair *material.KeyPair, message []byte) (*material.Signature, error) {
	priv, err := s.privateFromKeyPair(keyPair)
	if err != nil {
		return nil, err
	}
	public, err := keyPair.Public()
	if err != nil {
		return nil, err
	}
	sig := ed25519.Sign(priv, message)
	return material.NewSignature(sig, public)
}

func (s *ed25519Signer) Verify(_ context.Context, signature *material.Signature, message []byte) (bool, error) {
	if signature == nil {
		return false, fmt.Errorf("signature cannot be nil")
	}
	if err := material.CheckKind(signature.PublicKey, material.KeyPairKindOkp, material.CurveEd25519); err != nil {
		return false, err
	}
	pub := signature.PublicKey.X
	if len(pub) != ed25519.PublicKeySize {
		return false, fmt.Errorf("invalid Ed25519 public key length: got %d, want %d",
			len(pub), ed25519.PublicKeySize)
	}
	if len(signature.Bytes) != ed25519.SignatureSize {
		return false, nil
	}
	return ed25519.Verify(ed25519.PublicKey(pub), message, signature.Bytes), nil
}
