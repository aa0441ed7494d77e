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

// aesCbc implements AES in CBC mode with PKCS#7 padding. Unauthenticated;
// compose it with a MAC algorithm for integrity.
type aesCbc struct {
	keyLength int
	logger    logger.Logger
}

// NewAesCbc creates an AES-CBC cipher with a 16, 24 or 32 byte key.
func NewAesCbc(keyLength int, logger logger.Logger) (algorithms.Cipher, error) {
	if err := checkAESKeyLength(keyLength); err != nil {
		return nil, err
	}
	return &aesCbc{keyLength: keyLength, logger: logger}, nil
}

func (c *aesCbc) Name() string          { return algorithms.NameAesCbc }
func (c *aesCbc) SecretKeyLength() int  { return c.keyLength }
func (c *aesCbc) NonceLength() int      { return aesBlockSize }
func (c *aesCbc) MacLength() int        { return 0 }
func (c *aesCbc) SupportsAAD() bool     { return false }
func (c *aesCbc) IsAuthenticated() bool { return false }

// CipherTextLength rounds up to the block size; a full padding block is added
// when the clear text is already block-aligned.
func (c *aesCbc) CipherTextLength(clearTextLength int) int {
	return (clearTextLength/aesBlockSize + 1) * aesBlockSize
}

func (c *aesCbc) NewSecretKey(_ context.Context) (*material.SecretKey, error) {
	return newRandomSecretKey(c.keyLength)
}

func (c *aesCbc) Encrypt(ctx context.Context, key *material.SecretKey, clearText []byte, nonce material.Nonce, aad []byte) (*material.SecretBox, error) {
	if len(aad) > 0 {
		return nil, fmt.Errorf("%s does not support associated data", c.Name())
	}
	raw, err := extractKey(ctx, key, c.keyLength)
	if err != nil {
		return nil, err
	}
	nonce, err = resolveNonce(nonce, aesBlockSize)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	padded := padPKCS7(clearText, aesBlockSize)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, nonce).CryptBlocks(out, padded)
	return material.NewSecretBox(nonce, out, nil), nil
}

func (c *aesCbc) Decrypt(ctx context.Context, key *material.SecretKey, box *material.SecretBox, aad []byte) ([]byte, error) {
	if len(aad) > 0 {
		return nil, fmt.Errorf("%s does not support associated data", c.Name())
	}
	if box == nil {
		return nil, fmt.Errorf("secret box cannot be nil")
	}
	if err := box.CheckLengths(aesBlockSize, 0, -1); err != nil {
		return nil, err
	}
	if len(box.CipherText) == 0 || len(box.CipherText)%aesBlockSize != 0 {
		return nil, fmt.Errorf("invalid cipher text length for block mode: %d", len(box.CipherText))
	}
	raw, err := extractKey(ctx, key, c.keyLength)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	padded := make([]byte, len(box.CipherText))
	cipher.NewCBCDecrypter(block, box.Nonce).CryptBlocks(padded, box.CipherText)
	return unpadPKCS7(padded, aesBlockSize)
}

func (c *aesCbc) EncryptSync(key *material.SecretKey, clearText []byte, nonce material.Nonce, aad []byte) (*material.SecretBox, error) {
	return c.Encrypt(context.Background(), key, clearText, nonce, aad)
}

func (c *aesCbc) DecryptSync(key *material.SecretKey, box *material.SecretBox, aad []byte) ([]byte, error) {
	return c.Decrypt(context.Background(), key, box, aad)
}

// padPKCS7 appends PKCS#7 padding up to the block size.
func padPKCS7(data []byte, blockSize int) []byte {
	pad := blockSize - len(data)%blockSize
	out := make([]byte, len(data)+pad)
	copy(out, data)
	for i := len(data); i < len(out); i++ {
		out[i] = byte(pad)
	}
	return out
}

// unpadPKCS7 strips PKCS#7 padding, failing with ErrInvalidPadding on any
// malformed suffix.
func unpadPKCS7(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, algorithms.ErrInvalidPadding
	}
	pad := int(data[len(data)-1])
	if pad == 0 || pad > blockSize || pad > len(data) {
		return nil, algorithms.ErrInvalidPadding
	}
	for _, b := range data[len(data)-pad:] {
		if int(b) != pad {
			return nil, algorithms.ErrInvalidPadding
		}
	}
	return data[:len(data)-pad], nil
}
