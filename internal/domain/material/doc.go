// Package material defines the value types for cryptographic material: secret keys,
// key pairs, nonces, MACs, hashes, signatures and the SecretBox encryption envelope.
// These types carry validation and constant-time comparison only; algorithm behavior
// lives behind the contracts in the algorithms package.

package material
