//go:build unit
// +build unit

package delegation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dint-dev/cryptography-sub004/internal/domain/algorithms"
	"github.com/dint-dev/cryptography-sub004/internal/domain/channel"
	"github.com/dint-dev/cryptography-sub004/internal/domain/material"
	"github.com/dint-dev/cryptography-sub004/internal/infrastructure/channelimpl"
	"github.com/dint-dev/cryptography-sub004/internal/infrastructure/purecrypto"
	"github.com/dint-dev/cryptography-sub004/internal/pkg/config"
	"github.com/dint-dev/cryptography-sub004/internal/pkg/testutil"
)

// stubInvoker scripts backend behavior for failure-path tests.
type stubInvoker struct {
	invoke func(ctx context.Context, req *channel.Request) (*channel.Response, error)
}

func (s *stubInvoker) Invoke(ctx context.Context, req *channel.Request) (*channel.Response, error) {
	return s.invoke(ctx, req)
}

func (s *stubInvoker) Close() error { return nil }

func newTestDelegator(t *testing.T, invoker channel.Invoker, minLength, maxLength int) *Delegator {
	t.Helper()
	log := testutil.SetupTestLogger(t)

	settings := config.NewDefaultChannelSettings("loopback")
	settings.MinLength = minLength
	settings.MaxLength = maxLength

	delegator, err := NewDelegator(settings, invoker, log)
	require.NoError(t, err)
	return delegator
}

func newLoopbackDelegator(t *testing.T) *Delegator {
	t.Helper()
	log := testutil.SetupTestLogger(t)
	invoker, err := channelimpl.NewLoopbackInvoker(log)
	require.NoError(t, err)
	return newTestDelegator(t, invoker, 0, 1<<30)
}

func TestChannelPolicy(t *testing.T) {
	policy := ChannelPolicy{MinLength: 128, MaxLength: 4096}

	assert.False(t, policy.Admits(0))
	assert.False(t, policy.Admits(127))
	assert.True(t, policy.Admits(128))
	assert.True(t, policy.Admits(4096))
	assert.False(t, policy.Admits(4097))
}

func TestNilDelegatorAnswersLocally(t *testing.T) {
	var delegator *Delegator
	assert.False(t, delegator.Admits(1000))

	log := testutil.SetupTestLogger(t)
	pure, err := purecrypto.NewAesGcm(32, log)
	require.NoError(t, err)
	cipher, err := NewDelegatingCipher(delegator, pure, true)
	require.NoError(t, err)

	key, err := cipher.NewSecretKey(context.Background())
	require.NoError(t, err)
	clearText := []byte("no platform, no channel, still works")

	box, err := cipher.Encrypt(context.Background(), key, clearText, nil, nil)
	require.NoError(t, err)
	decrypted, err := cipher.Decrypt(context.Background(), key, box, nil)
	require.NoError(t, err)
	assert.Equal(t, clearText, decrypted)
}

func TestDelegatingCipherMatchesPure(t *testing.T) {
	log := testutil.SetupTestLogger(t)
	delegator := newLoopbackDelegator(t)

	names := []string{
		algorithms.NameAesCtr,
		algorithms.NameAesGcm,
		algorithms.NameChacha20Poly1305,
	}
	for _, name := range names {
		name := name
		t.Run(name, func(t *testing.T) {
			var pure algorithms.Cipher
			var err error
			switch name {
			case algorithms.NameAesCtr:
				pure, err = purecrypto.NewAesCtr(32, log)
			case algorithms.NameAesGcm:
				pure, err = purecrypto.NewAesGcm(32, log)
			default:
				pure, err = purecrypto.NewChacha20Poly1305(log)
			}
			require.NoError(t, err)

			delegating, err := NewDelegatingCipher(delegator, pure, true)
			require.NoError(t, err)

			key, err := pure.NewSecretKey(context.Background())
			require.NoError(t, err)
			nonce, err := material.NewRandomNonce(pure.NonceLength())
			require.NoError(t, err)
			clearText := []byte("delegated and pure results are byte-identical")

			pureBox, err := pure.Encrypt(context.Background(), key, clearText, nonce, nil)
			require.NoError(t, err)
			delegatedBox, err := delegating.Encrypt(context.Background(), key, clearText, nonce, nil)
			require.NoError(t, err)

			assert.Equal(t, pureBox.CipherText, delegatedBox.CipherText)
			assert.Equal(t, pureBox.Mac, delegatedBox.Mac)

			decrypted, err := delegating.Decrypt(context.Background(), key, delegatedBox, nil)
			require.NoError(t, err)
			assert.Equal(t, clearText, decrypted)
		})
	}
}

func TestDelegatingCipherWindow(t *testing.T) {
	log := testutil.SetupTestLogger(t)
	invoker, err := channelimpl.NewLoopbackInvoker(log)
	require.NoError(t, err)
	// Window admits only payloads of exactly 64 bytes.
	delegator := newTestDelegator(t, invoker, 64, 64)

	pure, err := purecrypto.NewAesGcm(32, log)
	require.NoError(t, err)
	delegating, err := NewDelegatingCipher(delegator, pure, true)
	require.NoError(t, err)

	key, err := pure.NewSecretKey(context.Background())
	require.NoError(t, err)

	// Out-of-window payloads run locally and still round trip.
	for _, size := range []int{0, 63, 65, 1000} {
		clearText := make([]byte, size)
		box, err := delegating.Encrypt(context.Background(), key, clearText, nil, nil)
		require.NoError(t, err)
		decrypted, err := delegating.Decrypt(context.Background(), key, box, nil)
		require.NoError(t, err)
		assert.Len(t, decrypted, size)
	}
}

func TestDelegatingCipherSyncForms(t *testing.T) {
	log := testutil.SetupTestLogger(t)
	invoker, err := channelimpl.NewLoopbackInvoker(log)
	require.NoError(t, err)
	delegator := newTestDelegator(t, invoker, 16, 1<<20)

	pure, err := purecrypto.NewAesGcm(32, log)
	require.NoError(t, err)
	delegating, err := NewDelegatingCipher(delegator, pure, true)
	require.NoError(t, err)

	key, err := pure.NewSecretKey(context.Background())
	require.NoError(t, err)

	t.Run("in-window sync is refused", func(t *testing.T) {
		_, err := delegating.EncryptSync(key, make([]byte, 100), nil, nil)
		assert.ErrorIs(t, err, algorithms.ErrUnsupportedOperation)

		nonce, err := material.NewRandomNonce(delegating.NonceLength())
		require.NoError(t, err)
		box := material.NewSecretBox(nonce, make([]byte, 100), make(material.Mac, 16))
		_, err = delegating.DecryptSync(key, box, nil)
		assert.ErrorIs(t, err, algorithms.ErrUnsupportedOperation)
	})

	t.Run("out-of-window sync runs locally", func(t *testing.T) {
		clearText := []byte("short")
		box, err := delegating.EncryptSync(key, clearText, nil, nil)
		require.NoError(t, err)
		decrypted, err := delegating.DecryptSync(key, box, nil)
		require.NoError(t, err)
		assert.Equal(t, clearText, decrypted)
	})
}

func TestDelegatingCipherFallback(t *testing.T) {
	log := testutil.SetupTestLogger(t)
	unsupported := &stubInvoker{invoke: func(_ context.Context, req *channel.Request) (*channel.Response, error) {
		return nil, &channel.BackendError{Code: channel.CodeUnsupportedAlgorithm, Message: "not built in"}
	}}
	delegator := newTestDelegator(t, unsupported, 0, 1<<30)

	pure, err := purecrypto.NewAesGcm(32, log)
	require.NoError(t, err)
	key, err := pure.NewSecretKey(context.Background())
	require.NoError(t, err)
	clearText := []byte("backend lacks the algorithm")

	t.Run("silent fallback when allowed", func(t *testing.T) {
		delegating, err := NewDelegatingCipher(delegator, pure, true)
		require.NoError(t, err)

		box, err := delegating.Encrypt(context.Background(), key, clearText, nil, nil)
		require.NoError(t, err)
		decrypted, err := delegating.Decrypt(context.Background(), key, box, nil)
		require.NoError(t, err)
		assert.Equal(t, clearText, decrypted)
	})

	t.Run("unsupported platform without fallback", func(t *testing.T) {
		delegating, err := NewDelegatingCipher(delegator, pure, false)
		require.NoError(t, err)

		_, err = delegating.Encrypt(context.Background(), key, clearText, nil, nil)
		assert.ErrorIs(t, err, algorithms.ErrUnsupportedPlatform)
	})
}

func TestDelegatingCipherMapsBackendErrors(t *testing.T) {
	log := testutil.SetupTestLogger(t)
	rejecting := &stubInvoker{invoke: func(_ context.Context, req *channel.Request) (*channel.Response, error) {
		return nil, &channel.BackendError{Code: channel.CodeIncorrectMac, Message: "bad tag"}
	}}
	delegator := newTestDelegator(t, rejecting, 0, 1<<30)

	pure, err := purecrypto.NewAesGcm(32, log)
	require.NoError(t, err)
	delegating, err := NewDelegatingCipher(delegator, pure, true)
	require.NoError(t, err)

	key, err := pure.NewSecretKey(context.Background())
	require.NoError(t, err)
	nonce, err := material.NewRandomNonce(12)
	require.NoError(t, err)
	box := material.NewSecretBox(nonce, make([]byte, 24), make(material.Mac, 16))

	_, err = delegating.Decrypt(context.Background(), key, box, nil)
	assert.ErrorIs(t, err, algorithms.ErrAuthenticationFailed)
}

func TestDelegatingCipherInternalConsistency(t *testing.T) {
	log := testutil.SetupTestLogger(t)

	t.Run("truncated cipher text", func(t *testing.T) {
		lying := &stubInvoker{invoke: func(_ context.Context, req *channel.Request) (*channel.Response, error) {
			return &channel.Response{
				ID: req.ID,
				Result: map[string][]byte{
					channel.ResultCipherText: []byte{1, 2},
					channel.ResultMac:        make([]byte, 16),
				},
			}, nil
		}}
		delegator := newTestDelegator(t, lying, 0, 1<<30)

		pure, err := purecrypto.NewAesGcm(32, log)
		require.NoError(t, err)
		delegating, err := NewDelegatingCipher(delegator, pure, true)
		require.NoError(t, err)

		key, err := pure.NewSecretKey(context.Background())
		require.NoError(t, err)

		_, err = delegating.Encrypt(context.Background(), key, []byte("longer than two bytes"), nil, nil)
		assert.ErrorIs(t, err, algorithms.ErrInternalConsistency)
	})

	t.Run("truncated clear text", func(t *testing.T) {
		lying := &stubInvoker{invoke: func(_ context.Context, req *channel.Request) (*channel.Response, error) {
			return &channel.Response{
				ID: req.ID,
				Result: map[string][]byte{
					channel.ResultClearText: []byte{1},
				},
			}, nil
		}}
		delegator := newTestDelegator(t, lying, 0, 1<<30)

		pure, err := purecrypto.NewAesCtr(32, log)
		require.NoError(t, err)
		delegating, err := NewDelegatingCipher(delegator, pure, true)
		require.NoError(t, err)

		key, err := pure.NewSecretKey(context.Background())
		require.NoError(t, err)
		nonce, err := material.NewRandomNonce(pure.NonceLength())
		require.NoError(t, err)
		box := material.NewSecretBox(nonce, make([]byte, 32), nil)

		_, err = delegating.Decrypt(context.Background(), key, box, nil)
		assert.ErrorIs(t, err, algorithms.ErrInternalConsistency)
	})
}

func TestDelegatingHash(t *testing.T) {
	delegator := newLoopbackDelegator(t)
	pure := purecrypto.NewSha256()
	delegating, err := NewDelegatingHash(delegator, pure)
	require.NoError(t, err)

	data := []byte("hash across the channel")

	want, err := pure.Digest(context.Background(), data)
	require.NoError(t, err)
	got, err := delegating.Digest(context.Background(), data)
	require.NoError(t, err)
	assert.True(t, want.Equal(got))

	t.Run("sink stays local", func(t *testing.T) {
		sink := delegating.NewSink()
		require.NoError(t, sink.Add(data))
		digest, err := sink.Close()
		require.NoError(t, err)
		assert.True(t, want.Equal(digest))
	})
}

func TestDelegatingMac(t *testing.T) {
	delegator := newLoopbackDelegator(t)
	pure, err := purecrypto.NewHmac(purecrypto.NewSha256())
	require.NoError(t, err)
	delegating, err := NewDelegatingMac(delegator, pure, algorithms.NameSha256)
	require.NoError(t, err)

	key := material.NewSecretKey([]byte("mac key"))
	data := []byte("authenticate across the channel")

	want, err := pure.Compute(context.Background(), key, data, nil)
	require.NoError(t, err)
	got, err := delegating.Compute(context.Background(), key, data, nil)
	require.NoError(t, err)
	assert.True(t, want.Equal(got))
}

func TestDelegatingSignature(t *testing.T) {
	log := testutil.SetupTestLogger(t)
	delegator := newLoopbackDelegator(t)
	pure, err := purecrypto.NewEd25519(log)
	require.NoError(t, err)
	delegating, err := NewDelegatingSignature(delegator, pure, "Ed25519",
		material.KeyPairKindOkp, material.CurveEd25519)
	require.NoError(t, err)

	keyPair, err := delegating.NewKeyPair(context.Background())
	require.NoError(t, err)
	message := []byte("signed over the channel")

	signature, err := delegating.Sign(context.Background(), keyPair, message)
	require.NoError(t, err)

	// Ed25519 is deterministic, so the delegated signature matches pure.
	pureSignature, err := pure.Sign(context.Background(), keyPair, message)
	require.NoError(t, err)
	assert.Equal(t, pureSignature.Bytes, signature.Bytes)

	valid, err := delegating.Verify(context.Background(), signature, message)
	require.NoError(t, err)
	assert.True(t, valid)

	valid, err = delegating.Verify(context.Background(), signature, []byte("other"))
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestDelegatingKeyExchange(t *testing.T) {
	log := testutil.SetupTestLogger(t)
	delegator := newLoopbackDelegator(t)
	pure, err := purecrypto.NewX25519(log)
	require.NoError(t, err)
	delegating, err := NewDelegatingKeyExchange(delegator, pure, "X25519",
		material.KeyPairKindOkp, material.CurveX25519)
	require.NoError(t, err)

	alice, err := delegating.NewKeyPair(context.Background())
	require.NoError(t, err)
	bob, err := delegating.NewKeyPair(context.Background())
	require.NoError(t, err)

	alicePub, err := alice.Public()
	require.NoError(t, err)
	bobPub, err := bob.Public()
	require.NoError(t, err)

	delegated, err := delegating.SharedSecretKey(context.Background(), alice, bobPub)
	require.NoError(t, err)
	local, err := pure.SharedSecretKey(context.Background(), bob, alicePub)
	require.NoError(t, err)

	assert.True(t, delegated.Equal(local))
}

func TestNewDelegatorValidation(t *testing.T) {
	log := testutil.SetupTestLogger(t)
	invoker, err := channelimpl.NewLoopbackInvoker(log)
	require.NoError(t, err)

	t.Run("rejects nil invoker", func(t *testing.T) {
		_, err := NewDelegator(config.NewDefaultChannelSettings("loopback"), nil, log)
		assert.Error(t, err)
	})

	t.Run("rejects invalid settings", func(t *testing.T) {
		settings := config.NewDefaultChannelSettings("loopback")
		settings.MaxConcurrentSize = 0
		_, err := NewDelegator(settings, invoker, log)
		assert.Error(t, err)
	})
}

// recordingInvoker wraps another invoker and keeps every request it carried.
type recordingInvoker struct {
	inner    channel.Invoker
	requests []*channel.Request
}

func (r *recordingInvoker) Invoke(ctx context.Context, req *channel.Request) (*channel.Response, error) {
	r.requests = append(r.requests, req)
	return r.inner.Invoke(ctx, req)
}

func (r *recordingInvoker) Close() error { return r.inner.Close() }

func (r *recordingInvoker) operations() []string {
	ops := make([]string, 0, len(r.requests))
	for _, req := range r.requests {
		ops = append(ops, req.Operation)
	}
	return ops
}

func TestDelegatingCipherUsesKeyHandles(t *testing.T) {
	log := testutil.SetupTestLogger(t)
	loopback, err := channelimpl.NewLoopbackInvoker(log)
	require.NoError(t, err)
	recorder := &recordingInvoker{inner: loopback}
	delegator := newTestDelegator(t, recorder, 0, 1<<30)

	pure, err := purecrypto.NewAesGcm(32, log)
	require.NoError(t, err)
	delegating, err := NewDelegatingCipher(delegator, pure, true)
	require.NoError(t, err)

	key, err := pure.NewSecretKey(context.Background())
	require.NoError(t, err)
	clearText := []byte("key bytes cross the channel once")

	box, err := delegating.Encrypt(context.Background(), key, clearText, nil, nil)
	require.NoError(t, err)
	decrypted, err := delegating.Decrypt(context.Background(), key, box, nil)
	require.NoError(t, err)
	assert.Equal(t, clearText, decrypted)

	_, err = delegating.Encrypt(context.Background(), key, clearText, nil, nil)
	require.NoError(t, err)

	// One import handshake on first delegated use, then handles only.
	assert.Equal(t, []string{"importKey", "encrypt", "decrypt", "encrypt"}, recorder.operations())
	for _, req := range recorder.requests[1:] {
		assert.NotContains(t, req.Args, channel.ArgKey, req.Operation)
		assert.Contains(t, req.Args, channel.ArgKeyHandle, req.Operation)
	}

	t.Run("fresh key triggers a fresh import", func(t *testing.T) {
		other, err := pure.NewSecretKey(context.Background())
		require.NoError(t, err)
		_, err = delegating.Encrypt(context.Background(), other, clearText, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, "importKey", recorder.requests[len(recorder.requests)-2].Operation)
	})
}

func TestDelegatingCipherWithoutKeyImport(t *testing.T) {
	log := testutil.SetupTestLogger(t)
	loopback, err := channelimpl.NewLoopbackInvoker(log)
	require.NoError(t, err)
	// A backend without key import: the handshake is refused, raw key bytes
	// keep flowing, and the refusal is cached after the first attempt.
	refusing := &stubInvoker{invoke: func(ctx context.Context, req *channel.Request) (*channel.Response, error) {
		if req.Operation == "importKey" {
			return nil, &channel.BackendError{Code: channel.CodeUnsupportedAlgorithm, Message: "no key store"}
		}
		return loopback.Invoke(ctx, req)
	}}
	recorder := &recordingInvoker{inner: refusing}
	delegator := newTestDelegator(t, recorder, 0, 1<<30)

	pure, err := purecrypto.NewAesGcm(32, log)
	require.NoError(t, err)
	delegating, err := NewDelegatingCipher(delegator, pure, true)
	require.NoError(t, err)

	key, err := pure.NewSecretKey(context.Background())
	require.NoError(t, err)
	clearText := []byte("raw key fallback")

	box, err := delegating.Encrypt(context.Background(), key, clearText, nil, nil)
	require.NoError(t, err)
	decrypted, err := delegating.Decrypt(context.Background(), key, box, nil)
	require.NoError(t, err)
	assert.Equal(t, clearText, decrypted)

	assert.Equal(t, []string{"importKey", "encrypt", "decrypt"}, recorder.operations())
	for _, req := range recorder.requests[1:] {
		assert.Contains(t, req.Args, channel.ArgKey, req.Operation)
		assert.NotContains(t, req.Args, channel.ArgKeyHandle, req.Operation)
	}
}

func TestDelegatingSignatureUsesKeyHandles(t *testing.T) {
	log := testutil.SetupTestLogger(t)
	loopback, err := channelimpl.NewLoopbackInvoker(log)
	require.NoError(t, err)
	recorder := &recordingInvoker{inner: loopback}
	delegator := newTestDelegator(t, recorder, 0, 1<<30)

	pure, err := purecrypto.NewEd25519(log)
	require.NoError(t, err)
	delegating, err := NewDelegatingSignature(delegator, pure, "Ed25519",
		material.KeyPairKindOkp, material.CurveEd25519)
	require.NoError(t, err)

	keyPair, err := delegating.NewKeyPair(context.Background())
	require.NoError(t, err)
	message := []byte("signed twice over one imported key")

	first, err := delegating.Sign(context.Background(), keyPair, message)
	require.NoError(t, err)
	second, err := delegating.Sign(context.Background(), keyPair, message)
	require.NoError(t, err)
	assert.Equal(t, first.Bytes, second.Bytes)

	assert.Equal(t, []string{"importKey", "Ed25519.sign", "Ed25519.sign"}, recorder.operations())
	for _, req := range recorder.requests[1:] {
		assert.NotContains(t, req.Args, channel.ArgPrivateKey, req.Operation)
		assert.Contains(t, req.Args, channel.ArgKeyHandle, req.Operation)
	}
}
