package purecrypto

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
	"fmt"

	"github.com/dint-dev/cryptography-sub004/internal/domain/algorithms"
	"github.com/dint-dev/cryptography-sub004/internal/domain/material"
	"github.com/dint-dev/cryptography-sub004/internal/pkg/logger"
)

const (
	aesBlockSize     = 16
	aesCtrNonceBytes = 12
)

// aesCtr implements AES in counter mode with a 12-byte nonce. The nonce is
// zero-extended to the 16-byte counter block and the trailing 32 bits count
// blocks starting at zero, so the key stream is seekable.
type aesCtr struct {
	keyLength int
	logger    logger.Logger
}

// NewAesCtr creates an AES-CTR cipher with a 16, 24 or 32 byte key.
func NewAesCtr(keyLength int, logger logger.Logger) (algorithms.KeyStreamCipher, error) {
	if err := checkAESKeyLength(keyLength); err != nil {
		return nil, err
	}
	return &aesCtr{keyLength: keyLength, logger: logger}, nil
}

func (c *aesCtr) Name() string          { return algorithms.NameAesCtr }
func (c *aesCtr) SecretKeyLength() int  { return c.keyLength }
func (c *aesCtr) NonceLength() int      { return aesCtrNonceBytes }
func (c *aesCtr) MacLength() int        { return 0 }
func (c *aesCtr) SupportsAAD() bool     { return false }
func (c *aesCtr) IsAuthenticated() bool { return false }

// CipherTextLength is the identity for a stream mode.
func (c *aesCtr) CipherTextLength(clearTextLength int) int { return clearTextLength }

func (c *aesCtr) NewSecretKey(_ context.Context) (*material.SecretKey, error) {
	return newRandomSecretKey(c.keyLength)
}

// keyStream builds the CTR stream positioned at the given key stream byte
// index. The block counter must fit in the 32 trailing bits of the counter
// block.
func (c *aesCtr) keyStream(raw []byte, nonce material.Nonce, keyStreamIndex uint64) (cipher.Stream, error) {
	block, err := aes.NewCipher(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	blockIndex := keyStreamIndex / aesBlockSize
	if blockIndex > 0xffffffff {
		return nil, fmt.Errorf("key stream index out of range: %d", keyStreamIndex)
	}

	iv := make([]byte, aesBlockSize)
	copy(iv, nonce)
	binary.BigEndian.PutUint32(iv[aesCtrNonceBytes:], uint32(blockIndex))

	stream := cipher.NewCTR(block, iv)

	// Discard the partial block ahead of the requested index.
	if skip := keyStreamIndex % aesBlockSize; skip > 0 {
		discard := make([]byte, skip)
		stream.XORKeyStream(discard, discard)
	}
	return stream, nil
}

func (c *aesCtr) xorAt(ctx context.Context, key *material.SecretKey, in []byte, nonce material.Nonce, keyStreamIndex uint64) (*material.SecretBox, error) {
	raw, err := extractKey(ctx, key, c.keyLength)
	if err != nil {
		return nil, err
	}
	nonce, err = resolveNonce(nonce, aesCtrNonceBytes)
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

func (c *aesCtr) Encrypt(ctx context.Context, key *material.SecretKey, clearText []byte, nonce material.Nonce, aad []byte) (*material.SecretBox, error) {
	if len(aad) > 0 {
		return nil, fmt.Errorf("%s does not support associated data", c.Name())
	}
	return c.xorAt(ctx, key, clearText, nonce, 0)
}

func (c *aesCtr) EncryptAt(ctx context.Context, key *material.SecretKey, clearText []byte, nonce material.Nonce, keyStreamIndex uint64) (*material.SecretBox, error) {
	return c.xorAt(ctx, key, clearText, nonce, keyStreamIndex)
}

func (c *aesCtr) Decrypt(ctx context.Context, key *material.SecretKey, box *material.SecretBox, aad []byte) ([]byte, error) {
	if len(aad) > 0 {
		return nil, fmt.Errorf("%s does not support associated data", c.Name())
	}
	if box == nil {
		return nil, fmt.Errorf("secret box cannot be nil")
	}
	if err := box.CheckLengths(aesCtrNonceBytes, 0, -1); err != nil {
		return nil, err
	}
	out, err := c.xorAt(ctx, key, box.CipherText, box.Nonce, 0)
	if err != nil {
		return nil, err
	}
	return out.CipherText, nil
}

func (c *aesCtr) EncryptSync(key *material.SecretKey, clearText []byte, nonce material.Nonce, aad []byte) (*material.SecretBox, error) {
	return c.Encrypt(context.Background(), key, clearText, nonce, aad)
}

func (c *aesCtr) DecryptSync(key *material.SecretKey, box *material.SecretBox, aad []byte) ([]byte, error) {
	return c.Decrypt(context.Background(), key, box, aad)
}

// NewEncryptStream starts an incremental encryption over the key stream.
func (c *aesCtr) NewEncryptStream(ctx context.Context, key *material.SecretKey, nonce material.Nonce, aad []byte) (algorithms.CipherStream, material.Nonce, error) {
	if len(aad) > 0 {
		return nil, nil, fmt.Errorf("%s does not support associated data", c.Name())
	}
	raw, err := extractKey(ctx, key, c.keyLength)
	if err != nil {
		return nil, nil, err
	}
	nonce, err = resolveNonce(nonce, aesCtrNonceBytes)
	if err != nil {
		return nil, nil, err
	}
	stream, err := c.keyStream(raw, nonce, 0)
	if err != nil {
		return nil, nil, err
	}
	return &keyStreamCipherStream{stream: stream}, nonce, nil
}

// NewDecryptStream starts an incremental decryption. The mode is
// unauthenticated, so expectedMac must be empty.
func (c *aesCtr) NewDecryptStream(ctx context.Context, key *material.SecretKey, nonce material.Nonce, expectedMac material.Mac, aad []byte) (algorithms.CipherStream, error) {
	if len(expectedMac) != 0 {
		return nil, fmt.Errorf("invalid mac length: got %d, want 0", len(expectedMac))
	}
	stream, _, err := c.NewEncryptStream(ctx, key, nonce, aad)
	return stream, err
}

// keyStreamCipherStream transforms chunks by XOR with a seekless key stream.
// Shared by the unauthenticated stream modes.
type keyStreamCipherStream struct {
	stream cipher.Stream
	closed bool
}

func (s *keyStreamCipherStream) Add(chunk []byte) ([]byte, error) {
	if s.closed {
		return nil, algorithms.ErrSinkClosed
	}
	out := make([]byte, len(chunk))
	s.stream.XORKeyStream(out, chunk)
	return out, nil
}

func (s *keyStreamCipherStream) Close() (material.Mac, error) {
	s.closed = true
	return nil, nil
}
