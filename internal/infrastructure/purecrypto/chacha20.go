package purecrypto

import (
	"context"
	"fmt"

	"golang.org/x/crypto/chacha20"

	"github.com/dint-dev/cryptography-sub004/internal/domain/algorithms"
	"github.com/dint-dev/cryptography-sub004/internal/domain/material"
	"github.com/dint-dev/cryptography-sub004/internal/pkg/logger"
)

const chacha20BlockSize = 64

// chacha20Cipher implements the unauthenticated ChaCha20 stream cipher with a
// 12-byte nonce. The 64-byte-block counter makes the key stream seekable.
type chacha20Cipher struct {
	logger logger.Logger
}

// NewChacha20 creates a ChaCha20 stream cipher.
func NewChacha20(logger logger.Logger) (algorithms.KeyStreamCipher, error) {
	return &chacha20Cipher{logger: logger}, nil
}

func (c *chacha20Cipher) Name() string                             { return algorithms.NameChacha20 }
func (c *chacha20Cipher) SecretKeyLength() int                     { return chacha20.KeySize }
func (c *chacha20Cipher) NonceLength() int                         { return chacha20.NonceSize }
func (c *chacha20Cipher) MacLength() int                           { return 0 }
func (c *chacha20Cipher) SupportsAAD() bool                        { return false }
func (c *chacha20Cipher) IsAuthenticated() bool                    { return false }
func (c *chacha20Cipher) CipherTextLength(clearTextLength int) int { return clearTextLength }

func (c *chacha20Cipher) NewSecretKey(_ context.Context) (*material.SecretKey, error) {
	return newRandomSecretKey(chacha20.KeySize)
}

func (c *chacha20Cipher) keyStream(raw []byte, nonce material.Nonce, keyStreamIndex uint64) (*chacha20.Cipher, error) {
	stream, err := chacha20.NewUnauthenticatedCipher(raw, nonce)
	if err != nil {
		return nil, fmt.Errorf("failed to create ChaCha20 cipher: %w", err)
	}

	blockIndex := keyStreamIndex / chacha20BlockSize
	if blockIndex > 0xffffffff {
		return nil, fmt.Errorf("key stream index out of range: %d", keyStreamIndex)
	}
	stream.SetCounter(uint32(blockIndex))

	if skip := keyStreamIndex % chacha20BlockSize; skip > 0 {
		discard := make([]byte, skip)
		stream.XORKeyStream(discard, discard)
	}
	return stream, nil
}

func (c *chacha20Cipher) xorAt(ctx context.Context, key *material.SecretKey, in []byte, nonce material.Nonce, keyStreamIndex uint64) (*material.SecretBox, error) {
	raw, err := extractKey(ctx, key, chacha20.KeySize)
	if err != nil {
		return nil, err
	}
	nonce, err = resolveNonce(nonce, chacha20.NonceSize)
	if err != nil {
		return nil, err
	}
	stream, err := c.keyStream(raw, nonce, keyStreamIndex)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(in))
	stream.XORKeyStream(out, in)
	return material.NewSecretBox(nonce, out, nil), nil
}

func (c *chacha20Cipher) Encrypt(ctx context.Context, key *material.SecretKey, clearText []byte, nonce material.Nonce, aad []byte) (*material.SecretBox, error) {
	if len(aad) > 0 {
		return nil, fmt.Errorf("%s does not support associated data", c.Name())
	}
	return c.xorAt(ctx, key, clearText, nonce, 0)
}

func (c *chacha20Cipher) EncryptAt(ctx context.Context, key *material.SecretKey, clearText []byte, nonce material.Nonce, keyStreamIndex uint64) (*material.SecretBox, error) {
	return c.xorAt(ctx, key, clearText, nonce, keyStreamIndex)
}

func (c *chacha20Cipher) Decrypt(ctx context.Context, key *material.SecretKey, box *material.SecretBox, aad []byte) ([]byte, error) {
	if len(aad) > 0 {
		return nil, fmt.Errorf("%s does not support associated data", c.Name())
	}
	if box == nil {
		return nil, fmt.Errorf("secret box cannot be nil")
	}
	if err := box.CheckLengths(chacha20.NonceSize, 0, -1); err != nil {
		return nil, err
	}
	out, err := c.xorAt(ctx, key, box.CipherText, box.Nonce, 0)
	if err != nil {
		return nil, err
	}
	return out.CipherText, nil
}

func (c *chacha20Cipher) EncryptSync(key *material.SecretKey, clearText []byte, nonce material.Nonce, aad []byte) (*material.SecretBox, error) {
	return c.Encrypt(context.Background(), key, clearText, nonce, aad)
}

func (c *chacha20Cipher) DecryptSync(key *material.SecretKey, box *material.SecretBox, aad []byte) ([]byte, error) {
	return c.Decrypt(context.Background(), key, box, aad)
}

// NewEncryptStream starts an incremental encryption over the key stream.
func (c *chacha20Cipher) NewEncryptStream(ctx context.Context, key *material.SecretKey, nonce material.Nonce, aad []byte) (algorithms.CipherStream, material.Nonce, error) {
	if len(aad) > 0 {
		return nil, nil, fmt.Errorf("%s does not support associated data", c.Name())
	}
	raw, err := extractKey(ctx, key, chacha20.KeySize)
	if err != nil {
		return nil, nil, err
	}
	nonce, err = resolveNonce(nonce, chacha20.NonceSize)
	if err != nil {
		return nil, nil, err
	}
	stream, err := c.keyStream(raw, nonce, 0)
	if err != nil {
		return nil, nil, err
	}
	return &keyStreamCipherStream{stream: stream}, nonce, nil
}

// NewDecryptStream starts an incremental decryption; expectedMac must be empty
// for this unauthenticated mode.
func (c *chacha20Cipher) NewDecryptStream(ctx context.Context, key *material.SecretKey, nonce material.Nonce, expectedMac material.Mac, aad []byte) (algorithms.CipherStream, error) {
	if len(expectedMac) != 0 {
		return nil, fmt.Errorf("invalid mac length: got %d, want 0", len(expectedMac))
	}
	stream, _, err := c.NewEncryptStream(ctx, key, nonce, aad)
	return stream, err
}
