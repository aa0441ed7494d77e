// Package algorithms defines the core interfaces for ciphers, MACs, hashes,
// signatures, key exchange and key derivation. Implementations are either pure
// (portable, run-to-completion) or delegating (routed to a platform-accelerated
// native channel); both satisfy the same contracts and compose transparently.

package algorithms
