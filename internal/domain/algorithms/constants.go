package algorithms

// Algorithm names. Delegating implementations use these as native operation
// prefixes and as native-handle cache tokens.
const (
	NameAesCtr            = "AesCtr"
	NameAesCbc            = "AesCbc"
	NameAesGcm            = "AesGcm"
	NameChacha20          = "Chacha20"
	NameChacha20Poly1305  = "Chacha20.poly1305Aead"
	NameXchacha20Poly1305 = "Xchacha20.poly1305Aead"
	NameHmac              = "Hmac"
	NameSha256            = "Sha256"
	NameSha384            = "Sha384"
	NameSha512            = "Sha512"
	NameBlake2b           = "Blake2b"
	NameBlake2s           = "Blake2s"
	NameEd25519           = "Ed25519"
	NameEcdsa             = "Ecdsa"
	NameEcdh              = "Ecdh"
	NameX25519            = "X25519"
	NameRsaPss            = "RsaPss"
	NameHkdf              = "Hkdf"
	NamePbkdf2            = "Pbkdf2"
)
