package purecrypto

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"fmt"
	"math/big"

	"github.com/dint-dev/cryptography-sub004/internal/domain/algorithms"
	"github.com/dint-dev/cryptography-sub004/internal/domain/material"
	"github.com/dint-dev/cryptography-sub004/internal/pkg/logger"
)

// rsaSigner implements SignatureAlgorithm as RSA-PSS over SHA-256.
// Key pairs carry the full CRT parameter set as material.
type rsaSigner struct {
	modulusBits int
	logger      logger.Logger
}

// NewRsaPss creates the RSA-PSS signature algorithm. modulusBits applies to
// NewKeyPair; 2048 is the minimum accepted.
func NewRsaPss(modulusBits int, logger logger.Logger) (algorithms.SignatureAlgorithm, error) {
	if modulusBits < 2048 {
		return nil, fmt.Errorf("invalid RSA modulus size: got %d bits, want at least 2048", modulusBits)
	}
	return &rsaSigner{modulusBits: modulusBits, logger: logger}, nil
}

func (s *rsaSigner) Name() string         { return algorithms.NameRsaPss }
func (s *rsaSigner) SignatureLength() int { return s.modulusBits / 8 }

func (s *rsaSigner) NewKeyPair(_ context.Context) (*material.KeyPair, error) {
	priv, err := rsa.GenerateKey(rand.Reader, s.modulusBits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate RSA key pair: %w", err)
	}
	priv.Precompute()

	public := &material.PublicKey{
		Kind: material.KeyPairKindRSA,
		N:    priv.N.Bytes(),
		E:    big.NewInt(int64(priv.E)).Bytes(),
	}
	private := &material.PrivateKey{
		D:  priv.D.Bytes(),
		P:  priv.Primes[0].Bytes(),
		Q:  priv.Primes[1].Bytes(),
		DP: priv.Precomputed.Dp.Bytes(),
		DQ: priv.Precomputed.Dq.Bytes(),
		QI: priv.Precomputed.Qinv.Bytes(),
	}
	s.logger.Info("Generated RSA key pair with ", s.modulusBits, " bit modulus")
	return material.NewKeyPair(material.KeyPairKindRSA, "", private, public)
}

// privateFromMaterial rebuilds an rsa.PrivateKey from the stored parameters.
func privateFromMaterial(keyPair *material.KeyPair) (*rsa.PrivateKey, error) {
	if keyPair == nil {
		return nil, fmt.Errorf("key pair cannot be nil")
	}
	if keyPair.Kind() != material.KeyPairKindRSA {
		return nil, fmt.Errorf("invalid key pair kind: got %s, want %s",
			keyPair.Kind(), material.KeyPairKindRSA)
	}
	public, err := keyPair.Public()
	if err != nil {
		return nil, err
	}
	pm := keyPair.Private()
	priv := &rsa.PrivateKey{
		PublicKey: rsa.PublicKey{
			N: new(big.Int).SetBytes(public.N),
			E: int(new(big.Int).SetBytes(public.E).Int64()),
		},
		D: new(big.Int).SetBytes(pm.D),
		Primes: []*big.Int{
			new(big.Int).SetBytes(pm.P),
			new(big.Int).SetBytes(pm.Q),
		},
	}
	if err := priv.Validate(); err != nil {
		return nil, fmt.Errorf("invalid RSA private key: %w", err)
	}
	priv.Precompute()
	return priv, nil
}

func (s *rsaSigner) Sign(_ context.Context, keyPair *material.KeyPair, message []byte) (*material.Signature, error) {
	priv, err := privateFromMaterial(keyPair)
	if err != nil {
		return nil, err
	}
	public, err := keyPair.Public()
	if err != nil {
		return nil, err
	}

	digest := sha256.Sum256(message)
	sig, err := rsa.SignPSS(rand.Reader, priv, crypto.SHA256, digest[:], nil)
	if err != nil {
		return nil, fmt.Errorf("failed to sign message: %w", err)
	}
	return material.NewSignature(sig, public)
}

func (s *rsaSigner) Verify(_ context.Context, signature *material.Signature, message []byte) (bool, error) {
	if signature == nil {
		return false, fmt.Errorf("signature cannot be nil")
	}
	if signature.PublicKey == nil || signature.PublicKey.Kind != material.KeyPairKindRSA {
		return false, fmt.Errorf("invalid public key for %s", s.Name())
	}
	pub := &rsa.PublicKey{
		N: new(big.Int).SetBytes(signature.PublicKey.N),
		E: int(new(big.Int).SetBytes(signature.PublicKey.E).Int64()),
	}
	digest := sha256.Sum256(message)
	if err := rsa.VerifyPSS(pub, crypto.SHA256, digest[:], signature.Bytes, nil); err != nil {
		return false, nil
	}
	return true, nil
}
