package purecrypto

import (
	"context"
	"crypto/cipher"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/dint-dev/cryptography-sub004/internal/domain/algorithms"
	"github.com/dint-dev/cryptography-sub004/internal/domain/material"
	"github.com/dint-dev/cryptography-sub004/internal/pkg/logger"
)

// chachaAead implements the ChaCha20-Poly1305 and XChaCha20-Poly1305 AEADs.
// The 16-byte tag is carried in SecretBox.Mac.
type chachaAead struct {
	name       string
	nonceBytes int
	logger     logger.Logger
}

// NewChacha20Poly1305 creates the RFC 8439 AEAD with a 12-byte nonce.
func NewChacha20Poly1305(logger logger.Logger) (algorithms.Cipher, error) {
	return &chachaAead{
		name:       algorithms.NameChacha20Poly1305,
		nonceBytes: chacha20poly1305.NonceSize,
		logger:     logger,
	}, nil
}

// NewXchacha20Poly1305 creates the XChaCha20 variant with a 24-byte nonce,
// safe for random nonces.
func NewXchacha20Poly1305(logger logger.Logger) (algorithms.Cipher, error) {
	return &chachaAead{
		name:       algorithms.NameXchacha20Poly1305,
		nonceBytes: chacha20poly1305.NonceSizeX,
		logger:     logger,
	}, nil
}

func (c *chachaAead) Name() string                             { return c.name }
func (c *chachaAead) SecretKeyLength() int                     { return chacha20poly1305.KeySize }
func (c *chachaAead) NonceLength() int                         { return c.nonceBytes }
func (c *chachaAead) MacLength() int                           { return chacha20poly1305.Overhead }
func (c *chachaAead) SupportsAAD() bool                        { return true }
func (c *chachaAead) IsAuthenticated() bool                    { return true }
func (c *chachaAead) CipherTextLength(clearTextLength int) int { return clearTextLength }

func (c *chachaAead) NewSecretKey(_ context.Context) (*material.SecretKey, error) {
	return newRandomSecretKey(chacha20poly1305.KeySize)
}

func (c *chachaAead) aead(ctx context.Context, key *material.SecretKey) (cipher.AEAD, error) {
	raw, err := extractKey(ctx, key, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	if c.nonceBytes == chacha20poly1305.NonceSizeX {
		aead, err := chacha20poly1305.NewX(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to create XChaCha20-Poly1305: %w", err)
		}
		return aead, nil
	}
	aead, err := chacha20poly1305.New(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to create ChaCha20-Poly1305: %w", err)
	}
	return aead, nil
}

func (c *chachaAead) Encrypt(ctx context.Context, key *material.SecretKey, clearText []byte, nonce material.Nonce, aad []byte) (*material.SecretBox, error) {
	aead, err := c.aead(ctx, key)
	if err != nil {
		return nil, err
	}
	nonce, err = resolveNonce(nonce, c.nonceBytes)
	if err != nil {
		return nil, err
	}
	sealed := aead.Seal(nil, nonce, clearText, aad)
	cipherText := sealed[:len(clearText)]
	mac := material.Mac(sealed[len(clearText):])
	return material.NewSecretBox(nonce, cipherText, mac), nil
}

func (c *chachaAead) Decrypt(ctx context.Context, key *material.SecretKey, box *material.SecretBox, aad []byte) ([]byte, error) {
	if box == nil {
		return nil, fmt.Errorf("secret box cannot be nil")
	}
	if err := box.CheckLengths(c.nonceBytes, chacha20poly1305.Overhead, -1); err != nil {
		return nil, err
	}
	aead, err := c.aead(ctx, key)
	if err != nil {
		return nil, err
	}
	sealed := make([]byte, 0, len(box.CipherText)+len(box.Mac))
	sealed = append(sealed, box.CipherText...)
	sealed = append(sealed, box.Mac...)
	clearText, err := aead.Open(nil, box.Nonce, sealed, aad)
	if err != nil {
		return nil, algorithms.ErrAuthenticationFailed
	}
	return clearText, nil
}

func (c *chachaAead) EncryptSync(key *material.SecretKey, clearText []byte, nonce material.Nonce, aad []byte) (*material.SecretBox, error) {
	return c.Encrypt(context.Background(), key, clearText, nonce, aad)
}

func (c *chachaAead) DecryptSync(key *material.SecretKey, box *material.SecretBox, aad []byte) ([]byte, error) {
	return c.Decrypt(context.Background(), key, box, aad)
}
