// Package purecrypto provides the pure, portable implementations of the
// algorithm contracts. They run to completion without suspending (aside from
// lazy key extraction) and serve as the fallbacks behind the delegation layer.
// Primitive math comes from the standard library, golang.org/x/crypto and
// cloudflare/circl; every implementation is test-vector verified.

package purecrypto
