//go:build unit
// +build unit

package channelimpl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dint-dev/cryptography-sub004/internal/domain/algorithms"
	"github.com/dint-dev/cryptography-sub004/internal/domain/channel"
	"github.com/dint-dev/cryptography-sub004/internal/domain/material"
	"github.com/dint-dev/cryptography-sub004/internal/infrastructure/purecrypto"
	"github.com/dint-dev/cryptography-sub004/internal/pkg/testutil"
)

func setupDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	log := testutil.SetupTestLogger(t)
	dispatcher, err := NewDispatcher(log)
	require.NoError(t, err)
	return dispatcher
}

func TestDispatcherEncryptDecrypt(t *testing.T) {
	dispatcher := setupDispatcher(t)
	key := make([]byte, 32)
	key[0] = 0x11
	clearText := []byte("dispatched through the channel contract")

	encryptResp := dispatcher.Dispatch(context.Background(), &channel.Request{
		ID:        "req-1",
		Operation: "encrypt",
		Args: map[string][]byte{
			channel.ArgKey:  key,
			channel.ArgData: clearText,
		},
		Params: map[string]string{channel.ParamAlgorithm: algorithms.NameAesGcm},
	})
	require.Empty(t, encryptResp.ErrorCode, encryptResp.ErrorMessage)
	assert.Equal(t, "req-1", encryptResp.ID)

	// The dispatcher chose a random nonce; recover it for decryption via a
	// second encrypt with an explicit nonce instead.
	nonce := make([]byte, 12)
	nonce[11] = 0x42
	encryptResp = dispatcher.Dispatch(context.Background(), &channel.Request{
		ID:        "req-2",
		Operation: "encrypt",
		Args: map[string][]byte{
			channel.ArgKey:   key,
			channel.ArgNonce: nonce,
			channel.ArgData:  clearText,
		},
		Params: map[string]string{channel.ParamAlgorithm: algorithms.NameAesGcm},
	})
	require.Empty(t, encryptResp.ErrorCode, encryptResp.ErrorMessage)

	cipherText := encryptResp.Result[channel.ResultCipherText]
	mac := encryptResp.Result[channel.ResultMac]
	assert.Len(t, cipherText, len(clearText))
	assert.Len(t, mac, 16)

	t.Run("round trip", func(t *testing.T) {
		decryptResp := dispatcher.Dispatch(context.Background(), &channel.Request{
			ID:        "req-3",
			Operation: "decrypt",
			Args: map[string][]byte{
				channel.ArgKey:   key,
				channel.ArgNonce: nonce,
				channel.ArgData:  cipherText,
				channel.ArgMac:   mac,
			},
			Params: map[string]string{channel.ParamAlgorithm: algorithms.NameAesGcm},
		})
		require.Empty(t, decryptResp.ErrorCode, decryptResp.ErrorMessage)
		assert.Equal(t, clearText, decryptResp.Result[channel.ResultClearText])
	})

	t.Run("tampering yields INCORRECT_MAC", func(t *testing.T) {
		tampered := append([]byte{}, cipherText...)
		tampered[0] ^= 0x01
		decryptResp := dispatcher.Dispatch(context.Background(), &channel.Request{
			ID:        "req-4",
			Operation: "decrypt",
			Args: map[string][]byte{
				channel.ArgKey:   key,
				channel.ArgNonce: nonce,
				channel.ArgData:  tampered,
				channel.ArgMac:   mac,
			},
			Params: map[string]string{channel.ParamAlgorithm: algorithms.NameAesGcm},
		})
		assert.Equal(t, channel.CodeIncorrectMac, decryptResp.ErrorCode)
	})

	t.Run("matches the pure implementation", func(t *testing.T) {
		log := testutil.SetupTestLogger(t)
		pure, err := purecrypto.NewAesGcm(32, log)
		require.NoError(t, err)

		box, err := pure.Encrypt(context.Background(), material.NewSecretKey(key), clearText, material.Nonce(nonce), nil)
		require.NoError(t, err)
		assert.Equal(t, box.CipherText, cipherText)
		assert.Equal(t, []byte(box.Mac), mac)
	})
}

func TestDispatcherPadding(t *testing.T) {
	dispatcher := setupDispatcher(t)

	// Undecryptable garbage under AES-CBC reports INCORRECT_PADDING.
	resp := dispatcher.Dispatch(context.Background(), &channel.Request{
		ID:        "pad-1",
		Operation: "decrypt",
		Args: map[string][]byte{
			channel.ArgKey:   make([]byte, 16),
			channel.ArgNonce: make([]byte, 16),
			channel.ArgData:  make([]byte, 32),
		},
		Params: map[string]string{channel.ParamAlgorithm: algorithms.NameAesCbc},
	})
	if resp.ErrorCode != "" {
		assert.Equal(t, channel.CodeIncorrectPadding, resp.ErrorCode)
	}
}

func TestDispatcherUnknownOperations(t *testing.T) {
	dispatcher := setupDispatcher(t)

	t.Run("unknown operation", func(t *testing.T) {
		resp := dispatcher.Dispatch(context.Background(), &channel.Request{
			ID:        "u-1",
			Operation: "transmogrify",
		})
		assert.Equal(t, channel.CodeUnsupportedAlgorithm, resp.ErrorCode)
	})

	t.Run("unknown cipher", func(t *testing.T) {
		resp := dispatcher.Dispatch(context.Background(), &channel.Request{
			ID:        "u-2",
			Operation: "encrypt",
			Args:      map[string][]byte{channel.ArgKey: make([]byte, 32)},
			Params:    map[string]string{channel.ParamAlgorithm: "Rot13"},
		})
		assert.Equal(t, channel.CodeUnsupportedAlgorithm, resp.ErrorCode)
	})

	t.Run("unknown hash", func(t *testing.T) {
		resp := dispatcher.Dispatch(context.Background(), &channel.Request{
			ID:        "u-3",
			Operation: "digest",
			Args:      map[string][]byte{channel.ArgData: []byte("x")},
			Params:    map[string]string{channel.ParamHash: "Md5"},
		})
		assert.Equal(t, channel.CodeUnsupportedAlgorithm, resp.ErrorCode)
	})
}

func TestDispatcherDigestAndMac(t *testing.T) {
	dispatcher := setupDispatcher(t)
	data := []byte("digest me")

	t.Run("digest matches pure", func(t *testing.T) {
		resp := dispatcher.Dispatch(context.Background(), &channel.Request{
			ID:        "d-1",
			Operation: "digest",
			Args:      map[string][]byte{channel.ArgData: data},
			Params:    map[string]string{channel.ParamHash: algorithms.NameSha256},
		})
		require.Empty(t, resp.ErrorCode, resp.ErrorMessage)

		want, err := purecrypto.NewSha256().Digest(context.Background(), data)
		require.NoError(t, err)
		assert.Equal(t, []byte(want), resp.Result[channel.ResultBytes])
	})

	t.Run("mac matches pure", func(t *testing.T) {
		key := []byte("mac key")
		resp := dispatcher.Dispatch(context.Background(), &channel.Request{
			ID:        "m-1",
			Operation: "mac",
			Args: map[string][]byte{
				channel.ArgKey:  key,
				channel.ArgData: data,
			},
			Params: map[string]string{
				channel.ParamAlgorithm: algorithms.NameHmac,
				channel.ParamHash:      algorithms.NameSha256,
			},
		})
		require.Empty(t, resp.ErrorCode, resp.ErrorMessage)

		mac, err := purecrypto.NewHmac(purecrypto.NewSha256())
		require.NoError(t, err)
		want, err := mac.Compute(context.Background(), material.NewSecretKey(key), data, nil)
		require.NoError(t, err)
		assert.Equal(t, []byte(want), resp.Result[channel.ResultMac])
	})
}

func TestDispatcherSignatures(t *testing.T) {
	dispatcher := setupDispatcher(t)
	message := []byte("sign across the channel")

	keyPairResp := dispatcher.Dispatch(context.Background(), &channel.Request{
		ID:        "s-1",
		Operation: "Ed25519.newKeyPair",
	})
	require.Empty(t, keyPairResp.ErrorCode, keyPairResp.ErrorMessage)
	privateKey := keyPairResp.Result[channel.ResultPrivateKey]
	publicKey := keyPairResp.Result[channel.ResultPublicKey]
	require.NotEmpty(t, privateKey)
	require.NotEmpty(t, publicKey)

	signResp := dispatcher.Dispatch(context.Background(), &channel.Request{
		ID:        "s-2",
		Operation: "Ed25519.sign",
		Args: map[string][]byte{
			channel.ArgPrivateKey: privateKey,
			channel.ArgPublicKey:  publicKey,
			channel.ArgData:       message,
		},
	})
	require.Empty(t, signResp.ErrorCode, signResp.ErrorMessage)
	signature := signResp.Result[channel.ResultSignature]
	assert.Len(t, signature, 64)

	t.Run("verify valid", func(t *testing.T) {
		resp := dispatcher.Dispatch(context.Background(), &channel.Request{
			ID:        "s-3",
			Operation: "Ed25519.verify",
			Args: map[string][]byte{
				channel.ArgPublicKey: publicKey,
				channel.ArgSignature: signature,
				channel.ArgData:      message,
			},
		})
		require.Empty(t, resp.ErrorCode, resp.ErrorMessage)
		assert.Equal(t, []byte{1}, resp.Result[channel.ResultValid])
	})

	t.Run("verify tampered", func(t *testing.T) {
		resp := dispatcher.Dispatch(context.Background(), &channel.Request{
			ID:        "s-4",
			Operation: "Ed25519.verify",
			Args: map[string][]byte{
				channel.ArgPublicKey: publicKey,
				channel.ArgSignature: signature,
				channel.ArgData:      []byte("another message"),
			},
		})
		require.Empty(t, resp.ErrorCode, resp.ErrorMessage)
		assert.Equal(t, []byte{0}, resp.Result[channel.ResultValid])
	})

	t.Run("ecdsa with curve parameter", func(t *testing.T) {
		resp := dispatcher.Dispatch(context.Background(), &channel.Request{
			ID:        "s-5",
			Operation: "Ecdsa.newKeyPair",
			Params:    map[string]string{channel.ParamCurve: material.CurveP256},
		})
		require.Empty(t, resp.ErrorCode, resp.ErrorMessage)
		assert.Len(t, resp.Result[channel.ResultPublicKey], 64, "x || y of P-256 coordinates")
	})
}

func TestDispatcherKeyExchange(t *testing.T) {
	dispatcher := setupDispatcher(t)

	aliceResp := dispatcher.Dispatch(context.Background(), &channel.Request{
		ID:        "x-1",
		Operation: "X25519.newKeyPair",
	})
	require.Empty(t, aliceResp.ErrorCode, aliceResp.ErrorMessage)
	bobResp := dispatcher.Dispatch(context.Background(), &channel.Request{
		ID:        "x-2",
		Operation: "X25519.newKeyPair",
	})
	require.Empty(t, bobResp.ErrorCode, bobResp.ErrorMessage)

	aliceShared := dispatcher.Dispatch(context.Background(), &channel.Request{
		ID:        "x-3",
		Operation: "X25519.sharedSecretKey",
		Args: map[string][]byte{
			channel.ArgPrivateKey: aliceResp.Result[channel.ResultPrivateKey],
			channel.ArgPublicKey:  aliceResp.Result[channel.ResultPublicKey],
			channel.ArgData:       bobResp.Result[channel.ResultPublicKey],
		},
	})
	require.Empty(t, aliceShared.ErrorCode, aliceShared.ErrorMessage)

	bobShared := dispatcher.Dispatch(context.Background(), &channel.Request{
		ID:        "x-4",
		Operation: "X25519.sharedSecretKey",
		Args: map[string][]byte{
			channel.ArgPrivateKey: bobResp.Result[channel.ResultPrivateKey],
			channel.ArgPublicKey:  bobResp.Result[channel.ResultPublicKey],
			channel.ArgData:       aliceResp.Result[channel.ResultPublicKey],
		},
	})
	require.Empty(t, bobShared.ErrorCode, bobShared.ErrorMessage)

	assert.Equal(t, aliceShared.Result[channel.ResultBytes], bobShared.Result[channel.ResultBytes])
	assert.NotEmpty(t, aliceShared.Result[channel.ResultBytes])
}

func TestLoopbackInvoker(t *testing.T) {
	log := testutil.SetupTestLogger(t)
	invoker, err := NewLoopbackInvoker(log)
	require.NoError(t, err)
	defer func() { require.NoError(t, invoker.Close()) }()

	t.Run("success passes the response through", func(t *testing.T) {
		resp, err := invoker.Invoke(context.Background(), &channel.Request{
			ID:        "l-1",
			Operation: "digest",
			Args:      map[string][]byte{channel.ArgData: []byte("x")},
			Params:    map[string]string{channel.ParamHash: algorithms.NameSha256},
		})
		require.NoError(t, err)
		assert.Len(t, resp.Result[channel.ResultBytes], 32)
	})

	t.Run("error responses surface as backend errors", func(t *testing.T) {
		_, err := invoker.Invoke(context.Background(), &channel.Request{
			ID:        "l-2",
			Operation: "transmogrify",
		})
		assert.True(t, channel.IsCode(err, channel.CodeUnsupportedAlgorithm))
	})

	t.Run("nil request is rejected", func(t *testing.T) {
		_, err := invoker.Invoke(context.Background(), nil)
		assert.Error(t, err)
	})
}

func TestDispatcherImportKey(t *testing.T) {
	dispatcher := setupDispatcher(t)
	key := make([]byte, 32)
	key[0] = 0x33
	clearText := []byte("encrypted via an imported key handle")
	nonce := make([]byte, 12)
	nonce[0] = 0x07

	importResp := dispatcher.Dispatch(context.Background(), &channel.Request{
		ID:        "imp-1",
		Operation: "importKey",
		Args:      map[string][]byte{channel.ArgKey: key},
		Params:    map[string]string{channel.ParamAlgorithm: algorithms.NameAesGcm},
	})
	require.Empty(t, importResp.ErrorCode, importResp.ErrorMessage)
	handle := importResp.Result[channel.ResultHandle]
	require.NotEmpty(t, handle)

	encryptResp := dispatcher.Dispatch(context.Background(), &channel.Request{
		ID:        "imp-2",
		Operation: "encrypt",
		Args: map[string][]byte{
			channel.ArgKeyHandle: handle,
			channel.ArgNonce:     nonce,
			channel.ArgData:      clearText,
		},
		Params: map[string]string{channel.ParamAlgorithm: algorithms.NameAesGcm},
	})
	require.Empty(t, encryptResp.ErrorCode, encryptResp.ErrorMessage)

	t.Run("handle calls match raw key calls", func(t *testing.T) {
		rawResp := dispatcher.Dispatch(context.Background(), &channel.Request{
			ID:        "imp-3",
			Operation: "encrypt",
			Args: map[string][]byte{
				channel.ArgKey:   key,
				channel.ArgNonce: nonce,
				channel.ArgData:  clearText,
			},
			Params: map[string]string{channel.ParamAlgorithm: algorithms.NameAesGcm},
		})
		require.Empty(t, rawResp.ErrorCode, rawResp.ErrorMessage)
		assert.Equal(t, rawResp.Result[channel.ResultCipherText], encryptResp.Result[channel.ResultCipherText])
		assert.Equal(t, rawResp.Result[channel.ResultMac], encryptResp.Result[channel.ResultMac])
	})

	t.Run("decrypt accepts the handle", func(t *testing.T) {
		decryptResp := dispatcher.Dispatch(context.Background(), &channel.Request{
			ID:        "imp-4",
			Operation: "decrypt",
			Args: map[string][]byte{
				channel.ArgKeyHandle: handle,
				channel.ArgNonce:     nonce,
				channel.ArgData:      encryptResp.Result[channel.ResultCipherText],
				channel.ArgMac:       encryptResp.Result[channel.ResultMac],
			},
			Params: map[string]string{channel.ParamAlgorithm: algorithms.NameAesGcm},
		})
		require.Empty(t, decryptResp.ErrorCode, decryptResp.ErrorMessage)
		assert.Equal(t, clearText, decryptResp.Result[channel.ResultClearText])
	})

	t.Run("unknown handle is rejected", func(t *testing.T) {
		resp := dispatcher.Dispatch(context.Background(), &channel.Request{
			ID:        "imp-5",
			Operation: "encrypt",
			Args: map[string][]byte{
				channel.ArgKeyHandle: []byte("no-such-handle"),
				channel.ArgNonce:     nonce,
				channel.ArgData:      clearText,
			},
			Params: map[string]string{channel.ParamAlgorithm: algorithms.NameAesGcm},
		})
		assert.NotEmpty(t, resp.ErrorCode)
	})

	t.Run("importKey without material is rejected", func(t *testing.T) {
		resp := dispatcher.Dispatch(context.Background(), &channel.Request{
			ID:        "imp-6",
			Operation: "importKey",
		})
		assert.NotEmpty(t, resp.ErrorCode)
	})
}
