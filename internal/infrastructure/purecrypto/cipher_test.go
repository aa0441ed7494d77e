//go:build unit
// +build unit

package purecrypto

import (
	"bytes"
	"context"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dint-dev/cryptography-sub004/internal/domain/algorithms"
	"github.com/dint-dev/cryptography-sub004/internal/domain/material"
	"github.com/dint-dev/cryptography-sub004/internal/pkg/testutil"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func repeated(b byte, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = b
	}
	return out
}

// setupCiphers builds one instance of every cipher for contract-level tests.
func setupCiphers(t *testing.T) []algorithms.Cipher {
	t.Helper()
	log := testutil.SetupTestLogger(t)

	aesCtr, err := NewAesCtr(32, log)
	require.NoError(t, err)
	aesCbc, err := NewAesCbc(32, log)
	require.NoError(t, err)
	aesGcm, err := NewAesGcm(32, log)
	require.NoError(t, err)
	chacha, err := NewChacha20(log)
	require.NoError(t, err)
	chachaPoly, err := NewChacha20Poly1305(log)
	require.NoError(t, err)
	xchachaPoly, err := NewXchacha20Poly1305(log)
	require.NoError(t, err)

	return []algorithms.Cipher{aesCtr, aesCbc, aesGcm, chacha, chachaPoly, xchachaPoly}
}

func TestAesCtrKnownAnswer(t *testing.T) {
	log := testutil.SetupTestLogger(t)
	cipher, err := NewAesCtr(16, log)
	require.NoError(t, err)

	key := material.NewSecretKey(repeated(0x02, 16))
	nonce := material.Nonce(repeated(0x01, 12))

	box, err := cipher.Encrypt(context.Background(), key, []byte{1, 2, 3}, nonce, nil)
	require.NoError(t, err)

	assert.Equal(t, []byte{0x38, 0x1f, 0x47}, box.CipherText)
	assert.Equal(t, nonce, box.Nonce)
	assert.Empty(t, box.Mac)
}

// RFC 8439 section 2.8.2.
func TestChacha20Poly1305KnownAnswer(t *testing.T) {
	log := testutil.SetupTestLogger(t)
	cipher, err := NewChacha20Poly1305(log)
	require.NoError(t, err)

	key := material.NewSecretKey(mustHex(t,
		"808182838485868788898a8b8c8d8e8f909192939495969798999a9b9c9d9e9f"))
	nonce := material.Nonce(mustHex(t, "070000004041424344454647"))
	aad := mustHex(t, "50515253c0c1c2c3c4c5c6c7")
	clearText := []byte("Ladies and Gentlemen of the class of '99: If I could offer you " +
		"only one tip for the future, sunscreen would be it.")

	box, err := cipher.Encrypt(context.Background(), key, clearText, nonce, aad)
	require.NoError(t, err)

	wantCipherText := mustHex(t,
		"d31a8d34648e60db7b86afbc53ef7ec2a4aded51296e08fea9e2b5a736ee62d6"+
			"3dbea45e8ca9671282fafb69da92728b1a71de0a9e060b2905d6a5b67ecd3b36"+
			"92ddbd7f2d778b8c9803aee328091b58fab324e4fad675945585808b4831d7bc"+
			"3ff4def08e4b7a9de576d26586cec64b6116")
	wantMac := mustHex(t, "1ae10b594f09e26a7e902ecbd0600691")

	assert.Equal(t, wantCipherText, box.CipherText)
	assert.Equal(t, material.Mac(wantMac), box.Mac)

	decrypted, err := cipher.Decrypt(context.Background(), key, box, aad)
	require.NoError(t, err)
	assert.Equal(t, clearText, decrypted)
}

func TestCipherRoundTrip(t *testing.T) {
	sizes := []int{0, 1, 15, 16, 17, 63, 64, 65, 1000}

	for _, cipher := range setupCiphers(t) {
		cipher := cipher
		t.Run(cipher.Name(), func(t *testing.T) {
			key, err := cipher.NewSecretKey(context.Background())
			require.NoError(t, err)

			for _, size := range sizes {
				clearText := bytes.Repeat([]byte{0xa5}, size)

				box, err := cipher.Encrypt(context.Background(), key, clearText, nil, nil)
				require.NoError(t, err)

				assert.Len(t, box.Nonce, cipher.NonceLength())
				assert.Len(t, box.CipherText, cipher.CipherTextLength(size))
				assert.Len(t, box.Mac, cipher.MacLength())

				decrypted, err := cipher.Decrypt(context.Background(), key, box, nil)
				require.NoError(t, err)
				if size == 0 {
					assert.Empty(t, decrypted)
				} else {
					assert.Equal(t, clearText, decrypted)
				}
			}
		})
	}
}

func TestCipherSyncMatchesAsync(t *testing.T) {
	for _, cipher := range setupCiphers(t) {
		cipher := cipher
		t.Run(cipher.Name(), func(t *testing.T) {
			key, err := cipher.NewSecretKey(context.Background())
			require.NoError(t, err)
			nonce, err := material.NewRandomNonce(cipher.NonceLength())
			require.NoError(t, err)
			clearText := []byte("immediate and suspending forms agree")

			boxSync, err := cipher.EncryptSync(key, clearText, nonce, nil)
			require.NoError(t, err)
			boxAsync, err := cipher.Encrypt(context.Background(), key, clearText, nonce, nil)
			require.NoError(t, err)

			assert.Equal(t, boxAsync.CipherText, boxSync.CipherText)
			assert.Equal(t, boxAsync.Mac, boxSync.Mac)

			decrypted, err := cipher.DecryptSync(key, boxSync, nil)
			require.NoError(t, err)
			assert.Equal(t, clearText, decrypted)
		})
	}
}

func TestAuthenticatedCipherRejectsTampering(t *testing.T) {
	for _, cipher := range setupCiphers(t) {
		if !cipher.IsAuthenticated() {
			continue
		}
		cipher := cipher
		t.Run(cipher.Name(), func(t *testing.T) {
			key, err := cipher.NewSecretKey(context.Background())
			require.NoError(t, err)
			clearText := []byte("tamper with any bit and decryption must fail")

			box, err := cipher.Encrypt(context.Background(), key, clearText, nil, nil)
			require.NoError(t, err)

			t.Run("cipher text bit flip", func(t *testing.T) {
				tampered := material.NewSecretBox(box.Nonce, append([]byte{}, box.CipherText...), box.Mac)
				tampered.CipherText[0] ^= 0x01
				_, err := cipher.Decrypt(context.Background(), key, tampered, nil)
				assert.ErrorIs(t, err, algorithms.ErrAuthenticationFailed)
			})

			t.Run("mac bit flip", func(t *testing.T) {
				tampered := material.NewSecretBox(box.Nonce, box.CipherText, append(material.Mac{}, box.Mac...))
				tampered.Mac[0] ^= 0x01
				_, err := cipher.Decrypt(context.Background(), key, tampered, nil)
				assert.ErrorIs(t, err, algorithms.ErrAuthenticationFailed)
			})

			if cipher.SupportsAAD() {
				t.Run("wrong aad", func(t *testing.T) {
					withAad, err := cipher.Encrypt(context.Background(), key, clearText, nil, []byte("header-a"))
					require.NoError(t, err)
					_, err = cipher.Decrypt(context.Background(), key, withAad, []byte("header-b"))
					assert.ErrorIs(t, err, algorithms.ErrAuthenticationFailed)
				})
			}
		})
	}
}

func TestCipherRejectsWrongLengths(t *testing.T) {
	for _, cipher := range setupCiphers(t) {
		cipher := cipher
		t.Run(cipher.Name(), func(t *testing.T) {
			key, err := cipher.NewSecretKey(context.Background())
			require.NoError(t, err)

			t.Run("wrong nonce length", func(t *testing.T) {
				badNonce := make(material.Nonce, cipher.NonceLength()+1)
				_, err := cipher.Encrypt(context.Background(), key, []byte{1}, badNonce, nil)
				assert.Error(t, err)
			})

			t.Run("wrong key length", func(t *testing.T) {
				badKey := material.NewSecretKey(make([]byte, cipher.SecretKeyLength()+1))
				_, err := cipher.Encrypt(context.Background(), key, nil, nil, nil)
				require.NoError(t, err)
				_, err = cipher.Encrypt(context.Background(), badKey, []byte{1}, nil, nil)
				assert.Error(t, err)
			})

			t.Run("wrong mac length", func(t *testing.T) {
				box, err := cipher.Encrypt(context.Background(), key, []byte{1, 2, 3}, nil, nil)
				require.NoError(t, err)
				bad := material.NewSecretBox(box.Nonce, box.CipherText, append(box.Mac, 0))
				_, err = cipher.Decrypt(context.Background(), key, bad, nil)
				assert.Error(t, err)
			})
		})
	}
}

func TestAesCbcPadding(t *testing.T) {
	log := testutil.SetupTestLogger(t)
	cipher, err := NewAesCbc(16, log)
	require.NoError(t, err)
	key, err := cipher.NewSecretKey(context.Background())
	require.NoError(t, err)

	t.Run("cipher text rounds up to the next block", func(t *testing.T) {
		assert.Equal(t, 16, cipher.CipherTextLength(0))
		assert.Equal(t, 16, cipher.CipherTextLength(15))
		assert.Equal(t, 32, cipher.CipherTextLength(16))
		assert.Equal(t, 32, cipher.CipherTextLength(17))
	})

	t.Run("garbage decrypts to a padding error", func(t *testing.T) {
		nonce, err := material.NewRandomNonce(cipher.NonceLength())
		require.NoError(t, err)
		box := material.NewSecretBox(nonce, repeated(0x5c, 32), nil)
		_, err = cipher.Decrypt(context.Background(), key, box, nil)
		// Random blocks may rarely unpad by chance, but a fixed pattern
		// under a random key deterministically fails for a given run.
		if err != nil {
			assert.ErrorIs(t, err, algorithms.ErrInvalidPadding)
		}
	})

	t.Run("non-block-multiple cipher text is rejected", func(t *testing.T) {
		nonce, err := material.NewRandomNonce(cipher.NonceLength())
		require.NoError(t, err)
		box := material.NewSecretBox(nonce, make([]byte, 17), nil)
		_, err = cipher.Decrypt(context.Background(), key, box, nil)
		assert.Error(t, err)
	})
}

func TestKeyStreamSeek(t *testing.T) {
	log := testutil.SetupTestLogger(t)

	aesCtr, err := NewAesCtr(32, log)
	require.NoError(t, err)
	chacha, err := NewChacha20(log)
	require.NoError(t, err)

	for _, cipher := range []algorithms.KeyStreamCipher{aesCtr, chacha} {
		cipher := cipher
		t.Run(cipher.Name(), func(t *testing.T) {
			key, err := cipher.NewSecretKey(context.Background())
			require.NoError(t, err)
			nonce, err := material.NewRandomNonce(cipher.NonceLength())
			require.NoError(t, err)

			clearText := bytes.Repeat([]byte{0x42}, 300)
			full, err := cipher.Encrypt(context.Background(), key, clearText, nonce, nil)
			require.NoError(t, err)

			// Encrypting from offset k must equal slicing the full cipher text.
			for _, offset := range []uint64{1, 15, 16, 17, 64, 100, 255} {
				part, err := cipher.EncryptAt(context.Background(), key, clearText[offset:], nonce, offset)
				require.NoError(t, err)
				assert.Equal(t, full.CipherText[offset:], part.CipherText, "offset %d", offset)
			}
		})
	}
}

func TestStreamingCipher(t *testing.T) {
	log := testutil.SetupTestLogger(t)

	aesCtr, err := NewAesCtr(32, log)
	require.NoError(t, err)
	chacha, err := NewChacha20(log)
	require.NoError(t, err)

	aesCtrStream, ok := aesCtr.(algorithms.StreamingCipher)
	require.True(t, ok)
	chachaStream, ok := chacha.(algorithms.StreamingCipher)
	require.True(t, ok)

	for _, cipher := range []algorithms.StreamingCipher{aesCtrStream, chachaStream} {
		cipher := cipher
		t.Run(cipher.Name(), func(t *testing.T) {
			key, err := cipher.NewSecretKey(context.Background())
			require.NoError(t, err)
			clearText := bytes.Repeat([]byte{0x17}, 200)

			stream, nonce, err := cipher.NewEncryptStream(context.Background(), key, nil, nil)
			require.NoError(t, err)

			// Uneven chunking must not change the output.
			var streamed []byte
			for _, bounds := range [][2]int{{0, 1}, {1, 17}, {17, 64}, {64, 200}} {
				out, err := stream.Add(clearText[bounds[0]:bounds[1]])
				require.NoError(t, err)
				streamed = append(streamed, out...)
			}
			mac, err := stream.Close()
			require.NoError(t, err)
			assert.Empty(t, mac)

			oneShot, err := cipher.Encrypt(context.Background(), key, clearText, nonce, nil)
			require.NoError(t, err)
			assert.Equal(t, oneShot.CipherText, streamed)

			t.Run("add after close fails", func(t *testing.T) {
				_, err := stream.Add([]byte{1})
				assert.ErrorIs(t, err, algorithms.ErrSinkClosed)
			})

			t.Run("decrypt stream restores the clear text", func(t *testing.T) {
				decStream, err := cipher.NewDecryptStream(context.Background(), key, nonce, nil, nil)
				require.NoError(t, err)
				decrypted, err := decStream.Add(streamed)
				require.NoError(t, err)
				_, err = decStream.Close()
				require.NoError(t, err)
				assert.Equal(t, clearText, decrypted)
			})
		})
	}
}

func TestNewAesCtrRejectsBadKeyLength(t *testing.T) {
	log := testutil.SetupTestLogger(t)
	for _, keyLength := range []int{0, 8, 15, 33} {
		_, err := NewAesCtr(keyLength, log)
		assert.Error(t, err, "key length %d", keyLength)
	}
	for _, keyLength := range []int{16, 24, 32} {
		_, err := NewAesCtr(keyLength, log)
		assert.NoError(t, err, "key length %d", keyLength)
	}
}
