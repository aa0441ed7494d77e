package compose

import (
	"context"
	"fmt"

	"github.com/dint-dev/cryptography-sub004/internal/domain/algorithms"
	"github.com/dint-dev/cryptography-sub004/internal/domain/material"
)

// cipherWithAppendedMac composes an unauthenticated cipher with a MAC
// algorithm, concatenating the tag onto the cipher text: cipherText || mac.
// Use NewAuthenticatedCipher instead when the envelope should carry the tag
// as a structured field.
type cipherWithAppendedMac struct {
	inner algorithms.Cipher // an authenticatedCipher doing the real work
	mac   algorithms.MacAlgorithm
}

// NewCipherWithAppendedMac composes cipher and mac with the tag appended to
// the cipher text. The inner cipher must be unauthenticated.
func NewCipherWithAppendedMac(cipher algorithms.Cipher, mac algorithms.MacAlgorithm) (algorithms.Cipher, error) {
	inner, err := NewAuthenticatedCipher(cipher, mac)
	if err != nil {
		return nil, err
	}
	return &cipherWithAppendedMac{inner: inner, mac: mac}, nil
}

func (c *cipherWithAppendedMac) Name() string {
	return fmt.Sprintf("%s.appendedMac", c.inner.Name())
}

func (c *cipherWithAppendedMac) SecretKeyLength() int  { return c.inner.SecretKeyLength() }
func (c *cipherWithAppendedMac) NonceLength() int      { return c.inner.NonceLength() }
func (c *cipherWithAppendedMac) SupportsAAD() bool     { return c.inner.SupportsAAD() }
func (c *cipherWithAppendedMac) IsAuthenticated() bool { return true }

// MacLength is zero: the tag is folded into the cipher text, not carried as a
// separate envelope field.
func (c *cipherWithAppendedMac) MacLength() int { return 0 }

// CipherTextLength includes the appended tag.
func (c *cipherWithAppendedMac) CipherTextLength(clearTextLength int) int {
	return c.inner.CipherTextLength(clearTextLength) + c.mac.MacLength()
}

func (c *cipherWithAppendedMac) NewSecretKey(ctx context.Context) (*material.SecretKey, error) {
	return c.inner.NewSecretKey(ctx)
}

func (c *cipherWithAppendedMac) join(box *material.SecretBox) *material.SecretBox {
	joined := make([]byte, 0, len(box.CipherText)+len(box.Mac))
	joined = append(joined, box.CipherText...)
	joined = append(joined, box.Mac...)
	return material.NewSecretBox(box.Nonce, joined, nil)
}

func (c *cipherWithAppendedMac) split(box *material.SecretBox) (*material.SecretBox, error) {
	macLen := c.mac.MacLength()
	if len(box.CipherText) < macLen {
		return nil, fmt.Errorf("cipher text too short to carry appended mac: got %d, want at least %d",
			len(box.CipherText), macLen)
	}
	cut := len(box.CipherText) - macLen
	return material.NewSecretBox(box.Nonce, box.CipherText[:cut], material.Mac(box.CipherText[cut:])), nil
}

func (c *cipherWithAppendedMac) Encrypt(ctx context.Context, key *material.SecretKey, clearText []byte, nonce material.Nonce, aad []byte) (*material.SecretBox, error) {
	box, err := c.inner.Encrypt(ctx, key, clearText, nonce, aad)
	if err != nil {
		return nil, err
	}
	return c.join(box), nil
}

func (c *cipherWithAppendedMac) Decrypt(ctx context.Context, key *material.SecretKey, box *material.SecretBox, aad []byte) ([]byte, error) {
	if box == nil {
		return nil, fmt.Errorf("secret box cannot be nil")
	}
	structured, err := c.split(box)
	if err != nil {
		return nil, err
	}
	return c.inner.Decrypt(ctx, key, structured, aad)
}

func (c *cipherWithAppendedMac) EncryptSync(key *material.SecretKey, clearText []byte, nonce material.Nonce, aad []byte) (*material.SecretBox, error) {
	box, err := c.inner.EncryptSync(key, clearText, nonce, aad)
	if err != nil {
		return nil, err
	}
	return c.join(box), nil
}

func (c *cipherWithAppendedMac) DecryptSync(key *material.SecretKey, box *material.SecretBox, aad []byte) ([]byte, error) {
	if box == nil {
		return nil, fmt.Errorf("secret box cannot be nil")
	}
	structured, err := c.split(box)
	if err != nil {
		return nil, err
	}
	return c.inner.DecryptSync(key, structured, aad)
}
