//go:build unit
// +build unit

package purecrypto

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dint-dev/cryptography-sub004/internal/domain/material"
)

// RFC 5869 test case 1.
func TestHkdfKnownAnswer(t *testing.T) {
	kdf := NewHkdf()

	secret := material.NewSecretKey(repeated(0x0b, 22))
	salt := mustHex(t, "000102030405060708090a0b0c")
	info := mustHex(t, "f0f1f2f3f4f5f6f7f8f9")

	derived, err := kdf.DeriveKey(context.Background(), secret, salt, info, 42)
	require.NoError(t, err)

	want := mustHex(t,
		"3cb25f25faacd57a90434f64d0362f2a2d2d0a90cf1a5a4c5db02d56ecc4c5bf"+
			"34007208d5b887185865")
	assert.True(t, derived.Equal(material.NewSecretKey(want)))
}

func TestHkdfProperties(t *testing.T) {
	kdf := NewHkdf()
	secret := material.NewSecretKey([]byte("input keying material"))

	t.Run("nil salt and info are allowed", func(t *testing.T) {
		derived, err := kdf.DeriveKey(context.Background(), secret, nil, nil, 32)
		require.NoError(t, err)
		assert.Equal(t, 32, derived.Length())
	})

	t.Run("different info derives different keys", func(t *testing.T) {
		a, err := kdf.DeriveKey(context.Background(), secret, nil, []byte("a"), 32)
		require.NoError(t, err)
		b, err := kdf.DeriveKey(context.Background(), secret, nil, []byte("b"), 32)
		require.NoError(t, err)
		assert.False(t, a.Equal(b))
	})

	t.Run("rejects non-positive length", func(t *testing.T) {
		_, err := kdf.DeriveKey(context.Background(), secret, nil, nil, 0)
		assert.Error(t, err)
	})
}

// PBKDF2-HMAC-SHA256 vectors with password "password" and salt "salt".
func TestPbkdf2KnownAnswers(t *testing.T) {
	secret := material.NewSecretKey([]byte("password"))
	salt := []byte("salt")

	tests := []struct {
		iterations int
		want       string
	}{
		{1, "120fb6cffcf8b32c43e7225256c4f837a86548c92ccc35480805987cb70be17b"},
		{2, "ae4d0c95af6b46d32d0adff928f06dd02a303f8ef3c251dfd6e2d85a95474c43"},
	}

	for _, tc := range tests {
		kdf, err := NewPbkdf2(tc.iterations)
		require.NoError(t, err)

		derived, err := kdf.DeriveKey(context.Background(), secret, salt, nil, 32)
		require.NoError(t, err)
		assert.True(t, derived.Equal(material.NewSecretKey(mustHex(t, tc.want))),
			"iterations %d", tc.iterations)
	}
}

func TestPbkdf2Properties(t *testing.T) {
	t.Run("rejects info parameter", func(t *testing.T) {
		kdf, err := NewPbkdf2(1)
		require.NoError(t, err)
		_, err = kdf.DeriveKey(context.Background(), material.NewSecretKey([]byte("p")), []byte("s"), []byte("info"), 32)
		assert.Error(t, err)
	})

	t.Run("rejects non-positive iterations", func(t *testing.T) {
		_, err := NewPbkdf2(0)
		assert.Error(t, err)
	})
}
