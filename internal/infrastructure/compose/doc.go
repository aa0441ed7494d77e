// Package compose builds authenticated encryption from an unauthenticated
// cipher and a MAC algorithm. The resulting ciphers satisfy the same Cipher
// contract and wrap pure or delegating inner ciphers transparently.

package compose
