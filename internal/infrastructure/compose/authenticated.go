package compose

import (
	"context"
	"fmt"

	"github.com/dint-dev/cryptography-sub004/internal/domain/algorithms"
	"github.com/dint-dev/cryptography-sub004/internal/domain/material"
)

// authenticatedCipher composes an unauthenticated cipher with a MAC algorithm,
// producing a structured {cipherText, mac} pair. The MAC is computed over the
// cipher text, never the clear text, and verified in constant time before any
// decryption runs.
type authenticatedCipher struct {
	cipher algorithms.Cipher
	mac    algorithms.MacAlgorithm
}

// NewAuthenticatedCipher composes cipher and mac. The inner cipher must be
// unauthenticated; associated data is forbidden unless the MAC algorithm
// declares support.
func NewAuthenticatedCipher(cipher algorithms.Cipher, mac algorithms.MacAlgorithm) (algorithms.Cipher, error) {
	if cipher == nil || mac == nil {
		return nil, fmt.Errorf("cipher and mac algorithm cannot be nil")
	}
	if cipher.IsAuthenticated() {
		return nil, fmt.Errorf("inner cipher %s is already authenticated", cipher.Name())
	}
	return &authenticatedCipher{cipher: cipher, mac: mac}, nil
}

func (c *authenticatedCipher) Name() string {
	return fmt.Sprintf("%s+%s", c.cipher.Name(), c.mac.Name())
}

func (c *authenticatedCipher) SecretKeyLength() int  { return c.cipher.SecretKeyLength() }
func (c *authenticatedCipher) NonceLength() int      { return c.cipher.NonceLength() }
func (c *authenticatedCipher) MacLength() int        { return c.mac.MacLength() }
func (c *authenticatedCipher) SupportsAAD() bool     { return c.mac.SupportsAAD() }
func (c *authenticatedCipher) IsAuthenticated() bool { return true }

// CipherTextLength equals the inner cipher's; the tag travels out-of-band in
// the envelope.
func (c *authenticatedCipher) CipherTextLength(clearTextLength int) int {
	return c.cipher.CipherTextLength(clearTextLength)
}

func (c *authenticatedCipher) NewSecretKey(ctx context.Context) (*material.SecretKey, error) {
	return c.cipher.NewSecretKey(ctx)
}

func (c *authenticatedCipher) checkAAD(aad []byte) error {
	if len(aad) > 0 && !c.mac.SupportsAAD() {
		return fmt.Errorf("%s does not support associated data", c.Name())
	}
	return nil
}

func (c *authenticatedCipher) Encrypt(ctx context.Context, key *material.SecretKey, clearText []byte, nonce material.Nonce, aad []byte) (*material.SecretBox, error) {
	if err := c.checkAAD(aad); err != nil {
		return nil, err
	}
	box, err := c.cipher.Encrypt(ctx, key, clearText, nonce, nil)
	if err != nil {
		return nil, err
	}
	mac, err := c.mac.Compute(ctx, key, box.CipherText, aad)
	if err != nil {
		return nil, err
	}
	return material.NewSecretBox(box.Nonce, box.CipherText, mac), nil
}

func (c *authenticatedCipher) Decrypt(ctx context.Context, key *material.SecretKey, box *material.SecretBox, aad []byte) ([]byte, error) {
	if err := c.checkAAD(aad); err != nil {
		return nil, err
	}
	if box == nil {
		return nil, fmt.Errorf("secret box cannot be nil")
	}
	if err := box.CheckLengths(c.NonceLength(), c.MacLength(), -1); err != nil {
		return nil, err
	}

	computed, err := c.mac.Compute(ctx, key, box.CipherText, aad)
	if err != nil {
		return nil, err
	}
	if !computed.Equal(box.Mac) {
		return nil, algorithms.ErrAuthenticationFailed
	}

	inner := material.NewSecretBox(box.Nonce, box.CipherText, nil)
	return c.cipher.Decrypt(ctx, key, inner, nil)
}

func (c *authenticatedCipher) EncryptSync(key *material.SecretKey, clearText []byte, nonce material.Nonce, aad []byte) (*material.SecretBox, error) {
	if err := c.checkAAD(aad); err != nil {
		return nil, err
	}
	box, err := c.cipher.EncryptSync(key, clearText, nonce, nil)
	if err != nil {
		return nil, err
	}
	mac, err := c.mac.Compute(context.Background(), key, box.CipherText, aad)
	if err != nil {
		return nil, err
	}
	return material.NewSecretBox(box.Nonce, box.CipherText, mac), nil
}

func (c *authenticatedCipher) DecryptSync(key *material.SecretKey, box *material.SecretBox, aad []byte) ([]byte, error) {
	if err := c.checkAAD(aad); err != nil {
		return nil, err
	}
	if box == nil {
		return nil, fmt.Errorf("secret box cannot be nil")
	}
	if err := box.CheckLengths(c.NonceLength(), c.MacLength(), -1); err != nil {
		return nil, err
	}

	computed, err := c.mac.Compute(context.Background(), key, box.CipherText, aad)
	if err != nil {
		return nil, err
	}
	if !computed.Equal(box.Mac) {
		return nil, algorithms.ErrAuthenticationFailed
	}

	inner := material.NewSecretBox(box.Nonce, box.CipherText, nil)
	return c.cipher.DecryptSync(key, inner, nil)
}
