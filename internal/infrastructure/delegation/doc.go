// Package delegation routes cryptographic calls to a native execution channel
// when the platform has one and the payload size makes the round trip
// worthwhile, falling back to the pure implementations otherwise. Delegation
// is an optimization: delegated and pure results are byte-identical.
package delegation
