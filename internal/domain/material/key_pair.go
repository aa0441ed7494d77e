package material

import (
	"bytes"
	"crypto/subtle"
	"fmt"
	"sync"
)

// KeyPairKind tags the variant of an asymmetric key.
type KeyPairKind string

// Key pair variants
const (
	// KeyPairKindEC is a curve-tagged elliptic curve key (x/y/d big-endian bytes).
	KeyPairKindEC KeyPairKind = "EC"
	// KeyPairKindOkp is an octet key pair: raw scalar + point (X25519, Ed25519).
	KeyPairKindOkp KeyPairKind = "OKP"
	// KeyPairKindRSA is an RSA key (n,e,d,p,q,dp,dq,qi big-endian bytes).
	KeyPairKindRSA KeyPairKind = "RSA"
)

// Curve names used by the EC and OKP variants.
const (
	CurveP256    = "P-256"
	CurveP384    = "P-384"
	CurveP521    = "P-521"
	CurveX25519  = "X25519"
	CurveEd25519 = "Ed25519"
)

// PublicKey is the public half of an asymmetric key. All byte fields are
// big-endian for EC/RSA and raw little-endian points for OKP, matching the
// conventions of the underlying primitives.
type PublicKey struct {
	Kind  KeyPairKind
	Curve string // EC and OKP variants only

	// EC coordinates; for OKP the point lives in X and Y is empty.
	X []byte
	Y []byte

	// RSA modulus and exponent.
	N []byte
	E []byte
}

// Equal reports whether two public keys are identical. Public keys are not
// secret, so a non-constant-time comparison would be acceptable; constant time
// is used anyway to keep call sites uniform.
func (p *PublicKey) Equal(other *PublicKey) bool {
	if p == other {
		return true
	}
	if p == nil || other == nil {
		return false
	}
	if p.Kind != other.Kind || p.Curve != other.Curve {
		return false
	}
	eq := func(a, b []byte) bool {
		return len(a) == len(b) && subtle.ConstantTimeCompare(a, b) == 1
	}
	return eq(p.X, other.X) && eq(p.Y, other.Y) && eq(p.N, other.N) && eq(p.E, other.E)
}

// PrivateKey is the private half of an asymmetric key. For EC and OKP keys only
// D is set. RSA keys additionally carry the CRT parameters.
type PrivateKey struct {
	D []byte

	// RSA CRT parameters.
	P  []byte
	Q  []byte
	DP []byte
	DQ []byte
	QI []byte
}

// Zero wipes the private key bytes.
func (p *PrivateKey) Zero() {
	for _, b := range [][]byte{p.D, p.P, p.Q, p.DP, p.DQ, p.QI} {
		for i := range b {
			b[i] = 0
		}
	}
}

// PublicKeyDeriver computes the public half from the private material.
type PublicKeyDeriver func() (*PublicKey, error)

// KeyPair exclusively owns its private material. The public half may be
// supplied up front or computed lazily and cached on first access.
type KeyPair struct {
	kind  KeyPairKind
	curve string

	private *PrivateKey

	publicOnce sync.Once
	public     *PublicKey
	publicErr  error
	derive     PublicKeyDeriver

	// handles caches opaque native key handles per algorithm identity token,
	// mirroring SecretKey. Idempotent, last-write-wins.
	handles sync.Map
}

// NewKeyPair creates a key pair from explicit private and public halves.
func NewKeyPair(kind KeyPairKind, curve string, private *PrivateKey, public *PublicKey) (*KeyPair, error) {
	if private == nil {
		return nil, fmt.Errorf("private key cannot be nil")
	}
	if public == nil {
		return nil, fmt.Errorf("public key cannot be nil")
	}
	kp := &KeyPair{kind: kind, curve: curve, private: private}
	kp.publicOnce.Do(func() { kp.public = public })
	return kp, nil
}

// NewLazyKeyPair creates a key pair whose public half is derived on first use.
func NewLazyKeyPair(kind KeyPairKind, curve string, private *PrivateKey, derive PublicKeyDeriver) (*KeyPair, error) {
	if private == nil {
		return nil, fmt.Errorf("private key cannot be nil")
	}
	if derive == nil {
		return nil, fmt.Errorf("public key deriver cannot be nil")
	}
	return &KeyPair{kind: kind, curve: curve, private: private, derive: derive}, nil
}

// Kind returns the key pair variant.
func (kp *KeyPair) Kind() KeyPairKind { return kp.kind }

// Curve returns the curve name for EC and OKP key pairs.
func (kp *KeyPair) Curve() string { return kp.curve }

// Private returns the private material. The key pair retains ownership.
func (kp *KeyPair) Private() *PrivateKey { return kp.private }

// Public returns the public half, deriving and caching it on first call.
func (kp *KeyPair) Public() (*PublicKey, error) {
	kp.publicOnce.Do(func() {
		kp.public, kp.publicErr = kp.derive()
	})
	if kp.publicErr != nil {
		return nil, fmt.Errorf("failed to derive public key: %w", kp.publicErr)
	}
	return kp.public, nil
}

// Handle returns the cached native key handle for the given algorithm identity token.
func (kp *KeyPair) Handle(token string) (interface{}, bool) {
	return kp.handles.Load(token)
}

// StoreHandle caches a native key handle under the given algorithm identity token.
func (kp *KeyPair) StoreHandle(token string, handle interface{}) {
	kp.handles.Store(token, handle)
}

// CheckKind validates that a public key has the expected variant and curve.
func CheckKind(public *PublicKey, kind KeyPairKind, curve string) error {
	if public == nil {
		return fmt.Errorf("public key cannot be nil")
	}
	if public.Kind != kind || public.Curve != curve {
		return fmt.Errorf("invalid public key: got %s/%s, want %s/%s",
			public.Kind, public.Curve, kind, curve)
	}
	return nil
}

// clone copies a byte slice; helper for constructors that take caller buffers.
func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	return bytes.Clone(b)
}
