package algorithms

import (
	"context"

	"github.com/dint-dev/cryptography-sub004/internal/domain/material"
)

// Cipher is the contract every symmetric cipher satisfies, whether pure or
// delegating. Key, nonce and mac lengths are validated eagerly against the
// declared lengths before any native or pure call is attempted.
type Cipher interface {
	// Name returns the algorithm name.
	Name() string

	// SecretKeyLength returns the key length in bytes.
	SecretKeyLength() int

	// NonceLength returns the nonce length in bytes.
	NonceLength() int

	// MacLength returns the authentication tag length in bytes, 0 for
	// unauthenticated ciphers.
	MacLength() int

	// SupportsAAD reports whether associated data is authenticated.
	SupportsAAD() bool

	// IsAuthenticated reports whether the cipher produces an authentication tag.
	IsAuthenticated() bool

	// CipherTextLength returns the cipher text length for a clear text length:
	// identity for stream ciphers, rounded up to the block size plus padding
	// for block ciphers. The tag is carried in the SecretBox, not counted here.
	CipherTextLength(clearTextLength int) int

	// NewSecretKey generates a fresh random secret key of the declared length.
	NewSecretKey(ctx context.Context) (*material.SecretKey, error)

	// Encrypt encrypts clearText. A nil nonce requests a fresh random one.
	// The call may suspend on admission, the native round trip or lazy key
	// extraction.
	Encrypt(ctx context.Context, key *material.SecretKey, clearText []byte, nonce material.Nonce, aad []byte) (*material.SecretBox, error)

	// Decrypt authenticates (when applicable) and decrypts a SecretBox.
	Decrypt(ctx context.Context, key *material.SecretKey, box *material.SecretBox, aad []byte) ([]byte, error)

	// EncryptSync is the immediate form of Encrypt. Implementations whose
	// backend may suspend return ErrUnsupportedOperation instead of blocking.
	EncryptSync(key *material.SecretKey, clearText []byte, nonce material.Nonce, aad []byte) (*material.SecretBox, error)

	// DecryptSync is the immediate form of Decrypt, with the same restriction.
	DecryptSync(key *material.SecretKey, box *material.SecretBox, aad []byte) ([]byte, error)
}

// KeyStreamCipher is a cipher whose key stream is seekable: encrypting from
// byte offset k must be byte-identical to encrypting the full message from
// offset 0 and slicing out [k, k+n). This is a hard correctness property.
type KeyStreamCipher interface {
	Cipher

	// EncryptAt encrypts clearText starting at the given key stream byte index.
	EncryptAt(ctx context.Context, key *material.SecretKey, clearText []byte, nonce material.Nonce, keyStreamIndex uint64) (*material.SecretBox, error)
}

// CipherStream transforms a lazy, single-pass sequence of byte chunks. Add
// returns the transformed chunk. Close is idempotent and returns the
// authentication tag, which is necessarily available only after the last
// chunk; decrypting streams verify the expected tag on Close. Adding after
// Close returns ErrSinkClosed.
type CipherStream interface {
	Add(chunk []byte) ([]byte, error)
	Close() (material.Mac, error)
}

// StreamingCipher extends Cipher with chunked, incremental encryption and
// decryption. Streams are not restartable.
type StreamingCipher interface {
	Cipher

	// NewEncryptStream starts an incremental encryption. A nil nonce requests
	// a fresh random one; read it back from the stream before transport.
	NewEncryptStream(ctx context.Context, key *material.SecretKey, nonce material.Nonce, aad []byte) (CipherStream, material.Nonce, error)

	// NewDecryptStream starts an incremental decryption that verifies
	// expectedMac on Close and fails with ErrAuthenticationFailed on mismatch.
	NewDecryptStream(ctx context.Context, key *material.SecretKey, nonce material.Nonce, expectedMac material.Mac, aad []byte) (CipherStream, error)
}

// HashSink accepts successive byte chunks and produces a digest on Close.
// Closing twice is idempotent and returns the same digest; adding after close
// fails with ErrSinkClosed.
type HashSink interface {
	// Add absorbs a whole chunk.
	Add(chunk []byte) error

	// AddSlice absorbs chunk[start:end]. When isLast is set the sink closes
	// after absorbing the slice.
	AddSlice(chunk []byte, start, end int, isLast bool) error

	// Close finalizes and returns the digest.
	Close() (material.Hash, error)
}

// HashAlgorithm is the incremental hashing contract.
type HashAlgorithm interface {
	// Name returns the algorithm name.
	Name() string

	// HashLength returns the digest length in bytes.
	HashLength() int

	// Digest hashes data in one call.
	Digest(ctx context.Context, data []byte) (material.Hash, error)

	// NewSink starts an incremental hash.
	NewSink() HashSink
}

// MacSink is the keyed counterpart of HashSink.
type MacSink interface {
	Add(chunk []byte) error
	AddSlice(chunk []byte, start, end int, isLast bool) error
	Close() (material.Mac, error)
}

// MacAlgorithm computes keyed authentication tags. The sink shape mirrors
// HashAlgorithm but is keyed by a SecretKey.
type MacAlgorithm interface {
	// Name returns the algorithm name.
	Name() string

	// MacLength returns the tag length in bytes.
	MacLength() int

	// SupportsAAD reports whether associated data is folded into the tag.
	SupportsAAD() bool

	// Compute produces the tag over data (and aad when supported) in one call.
	Compute(ctx context.Context, key *material.SecretKey, data []byte, aad []byte) (material.Mac, error)

	// NewSink starts an incremental tag computation. AAD, when supported, is
	// absorbed before any data chunks.
	NewSink(ctx context.Context, key *material.SecretKey, aad []byte) (MacSink, error)
}

// SignatureAlgorithm signs and verifies messages. Key generation may be
// randomness- or hardware-bound, so NewKeyPair may suspend.
type SignatureAlgorithm interface {
	// Name returns the algorithm name.
	Name() string

	// SignatureLength returns the signature length in bytes.
	SignatureLength() int

	// NewKeyPair generates a signing key pair.
	NewKeyPair(ctx context.Context) (*material.KeyPair, error)

	// Sign signs the message with the key pair's private half. The returned
	// Signature embeds the public key.
	Sign(ctx context.Context, keyPair *material.KeyPair, message []byte) (*material.Signature, error)

	// Verify checks the signature against the message using the signature's
	// embedded public key.
	Verify(ctx context.Context, signature *material.Signature, message []byte) (bool, error)
}

// KeyExchangeAlgorithm derives shared secrets from key pairs.
type KeyExchangeAlgorithm interface {
	// Name returns the algorithm name.
	Name() string

	// NewKeyPair generates a key agreement key pair.
	NewKeyPair(ctx context.Context) (*material.KeyPair, error)

	// SharedSecretKey computes the shared secret between the local key pair
	// and a remote public key.
	SharedSecretKey(ctx context.Context, keyPair *material.KeyPair, remotePublicKey *material.PublicKey) (*material.SecretKey, error)
}

// KdfAlgorithm derives secret keys from existing secret material.
type KdfAlgorithm interface {
	// Name returns the algorithm name.
	Name() string

	// DeriveKey derives a key of the requested length. The salt and info
	// parameters follow the semantics of the concrete KDF; either may be nil
	// where the KDF allows it.
	DeriveKey(ctx context.Context, secret *material.SecretKey, salt, info []byte, length int) (*material.SecretKey, error)
}
