package delegation

import (
	"context"
	"fmt"

	"github.com/dint-dev/cryptography-sub004/internal/domain/algorithms"
	"github.com/dint-dev/cryptography-sub004/internal/domain/channel"
	"github.com/dint-dev/cryptography-sub004/internal/domain/material"
)

// delegatingCipher answers in-window calls over the native channel and
// everything else through the pure implementation. The pure cipher is always
// present as the metadata source; allowFallback controls whether it may also
// serve calls the backend rejects as unsupported.
type delegatingCipher struct {
	delegator     *Delegator
	pure          algorithms.Cipher
	allowFallback bool
}

// NewDelegatingCipher wraps a pure cipher with native channel delegation.
// When allowFallback is false, backend algorithm rejections surface as
// ErrUnsupportedPlatform instead of being answered locally.
func NewDelegatingCipher(delegator *Delegator, pure algorithms.Cipher, allowFallback bool) (algorithms.Cipher, error) {
	if pure == nil {
		return nil, fmt.Errorf("pure cipher cannot be nil")
	}
	return &delegatingCipher{
		delegator:     delegator,
		pure:          pure,
		allowFallback: allowFallback,
	}, nil
}

func (c *delegatingCipher) Name() string          { return c.pure.Name() }
func (c *delegatingCipher) SecretKeyLength() int  { return c.pure.SecretKeyLength() }
func (c *delegatingCipher) NonceLength() int      { return c.pure.NonceLength() }
func (c *delegatingCipher) MacLength() int        { return c.pure.MacLength() }
func (c *delegatingCipher) SupportsAAD() bool     { return c.pure.SupportsAAD() }
func (c *delegatingCipher) IsAuthenticated() bool { return c.pure.IsAuthenticated() }

func (c *delegatingCipher) CipherTextLength(clearTextLength int) int {
	return c.pure.CipherTextLength(clearTextLength)
}

func (c *delegatingCipher) NewSecretKey(ctx context.Context) (*material.SecretKey, error) {
	return c.pure.NewSecretKey(ctx)
}

func (c *delegatingCipher) Encrypt(ctx context.Context, key *material.SecretKey, clearText []byte, nonce material.Nonce, aad []byte) (*material.SecretBox, error) {
	if !c.delegator.Admits(len(clearText)) {
		return c.pure.Encrypt(ctx, key, clearText, nonce, aad)
	}
	box, err := c.delegateEncrypt(ctx, key, clearText, nonce, aad)
	if err == nil {
		return box, nil
	}
	if channel.IsCode(err, channel.CodeUnsupportedAlgorithm) {
		return c.fallbackEncrypt(ctx, key, clearText, nonce, aad, err)
	}
	return nil, mapBackendError(err)
}

func (c *delegatingCipher) Decrypt(ctx context.Context, key *material.SecretKey, box *material.SecretBox, aad []byte) ([]byte, error) {
	if box == nil {
		return nil, fmt.Errorf("secret box cannot be nil")
	}
	if !c.delegator.Admits(len(box.CipherText)) {
		return c.pure.Decrypt(ctx, key, box, aad)
	}
	clearText, err := c.delegateDecrypt(ctx, key, box, aad)
	if err == nil {
		return clearText, nil
	}
	if channel.IsCode(err, channel.CodeUnsupportedAlgorithm) {
		return c.fallbackDecrypt(ctx, key, box, aad, err)
	}
	return nil, mapBackendError(err)
}

// EncryptSync answers immediately or not at all: a call the policy would
// delegate fails with ErrUnsupportedOperation rather than block on the
// channel round trip.
func (c *delegatingCipher) EncryptSync(key *material.SecretKey, clearText []byte, nonce material.Nonce, aad []byte) (*material.SecretBox, error) {
	if c.delegator.Admits(len(clearText)) {
		return nil, fmt.Errorf("%s: synchronous encrypt would delegate: %w", c.Name(), algorithms.ErrUnsupportedOperation)
	}
	return c.pure.EncryptSync(key, clearText, nonce, aad)
}

func (c *delegatingCipher) DecryptSync(key *material.SecretKey, box *material.SecretBox, aad []byte) ([]byte, error) {
	if box == nil {
		return nil, fmt.Errorf("secret box cannot be nil")
	}
	if c.delegator.Admits(len(box.CipherText)) {
		return nil, fmt.Errorf("%s: synchronous decrypt would delegate: %w", c.Name(), algorithms.ErrUnsupportedOperation)
	}
	return c.pure.DecryptSync(key, box, aad)
}

func (c *delegatingCipher) fallbackEncrypt(ctx context.Context, key *material.SecretKey, clearText []byte, nonce material.Nonce, aad []byte, cause error) (*material.SecretBox, error) {
	if !c.allowFallback {
		return nil, fmt.Errorf("%s: %w", c.Name(), algorithms.ErrUnsupportedPlatform)
	}
	c.delegator.logger.Warn("native backend does not support ", c.Name(), ", using pure implementation: ", cause)
	return c.pure.Encrypt(ctx, key, clearText, nonce, aad)
}

func (c *delegatingCipher) fallbackDecrypt(ctx context.Context, key *material.SecretKey, box *material.SecretBox, aad []byte, cause error) ([]byte, error) {
	if !c.allowFallback {
		return nil, fmt.Errorf("%s: %w", c.Name(), algorithms.ErrUnsupportedPlatform)
	}
	c.delegator.logger.Warn("native backend does not support ", c.Name(), ", using pure implementation: ", cause)
	return c.pure.Decrypt(ctx, key, box, aad)
}

func (c *delegatingCipher) delegateEncrypt(ctx context.Context, key *material.SecretKey, clearText []byte, nonce material.Nonce, aad []byte) (*material.SecretBox, error) {
	keyBytes, err := key.Extract(ctx)
	if err != nil {
		return nil, err
	}
	if nonce == nil {
		nonce, err = material.NewRandomNonce(c.NonceLength())
		if err != nil {
			return nil, err
		}
	}
	if err := material.CheckNonceLength(nonce, c.NonceLength()); err != nil {
		return nil, err
	}
	ref := c.delegator.importKey(ctx, key, c.Name(), map[string][]byte{channel.ArgKey: keyBytes})
	req := &channel.Request{
		Operation: "encrypt",
		Args: map[string][]byte{
			channel.ArgNonce: nonce,
			channel.ArgData:  clearText,
		},
		Params: map[string]string{channel.ParamAlgorithm: c.Name()},
	}
	ref.applyTo(req.Args)
	if len(aad) > 0 {
		req.Args[channel.ArgAad] = aad
	}
	resp, err := c.delegator.call(ctx, req)
	if err != nil {
		return nil, err
	}
	box := material.NewSecretBox(nonce, resp.Result[channel.ResultCipherText], resp.Result[channel.ResultMac])
	if err := box.CheckLengths(c.NonceLength(), c.MacLength(), c.CipherTextLength(len(clearText))); err != nil {
		c.delegator.logger.Error("native encrypt result violates length contract for ", c.Name(), ": ", err)
		return nil, fmt.Errorf("%s: %v: %w", c.Name(), err, algorithms.ErrInternalConsistency)
	}
	return box, nil
}

func (c *delegatingCipher) delegateDecrypt(ctx context.Context, key *material.SecretKey, box *material.SecretBox, aad []byte) ([]byte, error) {
	keyBytes, err := key.Extract(ctx)
	if err != nil {
		return nil, err
	}
	ref := c.delegator.importKey(ctx, key, c.Name(), map[string][]byte{channel.ArgKey: keyBytes})
	req := &channel.Request{
		Operation: "decrypt",
		Args: map[string][]byte{
			channel.ArgNonce: box.Nonce,
			channel.ArgData:  box.CipherText,
			channel.ArgMac:   box.Mac,
		},
		Params: map[string]string{channel.ParamAlgorithm: c.Name()},
	}
	ref.applyTo(req.Args)
	if len(aad) > 0 {
		req.Args[channel.ArgAad] = aad
	}
	resp, err := c.delegator.call(ctx, req)
	if err != nil {
		return nil, err
	}
	clearText := resp.Result[channel.ResultClearText]
	// The clear-text length must reproduce the cipher-text length under the
	// cipher's own length contract (identity for stream ciphers, padded up
	// for block ciphers).
	if c.CipherTextLength(len(clearText)) != len(box.CipherText) {
		c.delegator.logger.Error("native decrypt result violates length contract for ", c.Name(),
			": ", len(box.CipherText), " byte(s) of cipher text decrypted to ", len(clearText), " byte(s)")
		return nil, fmt.Errorf("%s: clear text length %d does not match cipher text length %d: %w",
			c.Name(), len(clearText), len(box.CipherText), algorithms.ErrInternalConsistency)
	}
	return clearText, nil
}
