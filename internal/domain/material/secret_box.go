package material

import "fmt"

// SecretBox is the canonical authenticated-encryption envelope: the nonce used,
// the cipher text and the authentication tag. Unauthenticated ciphers produce a
// SecretBox with an empty Mac.
type SecretBox struct {
	Nonce      Nonce
	CipherText []byte
	Mac        Mac
}

// NewSecretBox creates a SecretBox from its parts. The slices are not copied;
// the box takes ownership.
func NewSecretBox(nonce Nonce, cipherText []byte, mac Mac) *SecretBox {
	return &SecretBox{Nonce: nonce, CipherText: cipherText, Mac: mac}
}

// CheckLengths validates the envelope against the algorithm's declared nonce
// and mac lengths and the expected cipher text length. Violation of the cipher
// text length contract by a box this library produced is an internal
// consistency failure; for inbound boxes it is an invalid argument.
func (b *SecretBox) CheckLengths(nonceLength, macLength, cipherTextLength int) error {
	if err := CheckNonceLength(b.Nonce, nonceLength); err != nil {
		return err
	}
	if len(b.Mac) != macLength {
		return fmt.Errorf("invalid mac length: got %d, want %d", len(b.Mac), macLength)
	}
	if cipherTextLength >= 0 && len(b.CipherText) != cipherTextLength {
		return fmt.Errorf("invalid cipher text length: got %d, want %d", len(b.CipherText), cipherTextLength)
	}
	return nil
}

// Concat encodes the envelope as the flat wire form nonce || cipherText || mac.
func (b *SecretBox) Concat() []byte {
	out := make([]byte, 0, len(b.Nonce)+len(b.CipherText)+len(b.Mac))
	out = append(out, b.Nonce...)
	out = append(out, b.CipherText...)
	out = append(out, b.Mac...)
	return out
}

// SecretBoxFromConcat decodes the flat wire form nonce || cipherText || mac,
// given the algorithm-fixed nonce and mac lengths.
func SecretBoxFromConcat(data []byte, nonceLength, macLength int) (*SecretBox, error) {
	if nonceLength < 0 || macLength < 0 {
		return nil, fmt.Errorf("nonce and mac lengths cannot be negative")
	}
	if len(data) < nonceLength+macLength {
		return nil, fmt.Errorf("concatenated secret box too short: got %d, want at least %d",
			len(data), nonceLength+macLength)
	}
	nonce := clone(data[:nonceLength])
	cipherText := clone(data[nonceLength : len(data)-macLength])
	mac := clone(data[len(data)-macLength:])
	return &SecretBox{Nonce: nonce, CipherText: cipherText, Mac: mac}, nil
}
