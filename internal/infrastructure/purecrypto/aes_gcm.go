package purecrypto

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	"github.com/dint-dev/cryptography-sub004/internal/domain/algorithms"
	"github.com/dint-dev/cryptography-sub004/internal/domain/material"
	"github.com/dint-dev/cryptography-sub004/internal/pkg/logger"
)

const (
	gcmNonceBytes = 12
	gcmTagBytes   = 16
)

// aesGcm implements the AES-GCM AEAD. The 16-byte tag is carried in
// SecretBox.Mac, so CipherTextLength is the identity.
type aesGcm struct {
	keyLength int
	logger    logger.Logger
}

// NewAesGcm creates an AES-GCM cipher with a 16, 24 or 32 byte key.
func NewAesGcm(keyLength int, logger logger.Logger) (algorithms.Cipher, error) {
	if err := checkAESKeyLength(keyLength); err != nil {
		return nil, err
	}
	return &aesGcm{keyLength: keyLength, logger: logger}, nil
}

func (c *aesGcm) Name() string                             { return algorithms.NameAesGcm }
func (c *aesGcm) SecretKeyLength() int                     { return c.keyLength }
func (c *aesGcm) NonceLength() int                         { return gcmNonceBytes }
func (c *aesGcm) MacLength() int                           { return gcmTagBytes }
func (c *aesGcm) SupportsAAD() bool                        { return true }
func (c *aesGcm) IsAuthenticated() bool                    { return true }
func (c *aesGcm) CipherTextLength(clearTextLength int) int { return clearTextLength }

func (c *aesGcm) NewSecretKey(_ context.Context) (*material.SecretKey, error) {
	return newRandomSecretKey(c.keyLength)
}

func (c *aesGcm) aead(ctx context.Context, key *material.SecretKey) (cipher.AEAD, error) {
	raw, err := extractKey(ctx, key, c.keyLength)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return aead, nil
}

func (c *aesGcm) Encrypt(ctx context.Context, key *material.SecretKey, clearText []byte, nonce material.Nonce, aad []byte) (*material.SecretBox, error) {
	aead, err := c.aead(ctx, key)
	if err != nil {
		return nil, err
	}
	nonce, err = resolveNonce(nonce, gcmNonceBytes)
	if err != nil {
		return nil, err
	}
	sealed := aead.Seal(nil, nonce, clearText, aad)
	cipherText := sealed[:len(clearText)]
	mac := material.Mac(sealed[len(clearText):])
	return material.NewSecretBox(nonce, cipherText, mac), nil
}

func (c *aesGcm) Decrypt(ctx context.Context, key *material.SecretKey, box *material.SecretBox, aad []byte) ([]byte, error) {
	if box == nil {
		return nil, fmt.Errorf("secret box cannot be nil")
	}
	if err := box.CheckLengths(gcmNonceBytes, gcmTagBytes, -1); err != nil {
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

func (c *aesGcm) EncryptSync(key *material.SecretKey, clearText []byte, nonce material.Nonce, aad []byte) (*material.SecretBox, error) {
	return c.Encrypt(context.Background(), key, clearText, nonce, aad)
}

func (c *aesGcm) DecryptSync(key *material.SecretKey, box *material.SecretBox, aad []byte) ([]byte, error) {
	return c.Decrypt(context.Background(), key, box, aad)
}
