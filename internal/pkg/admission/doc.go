// Package admission implements the size-weighted concurrency gate in front of
// the native execution channel. Callers acquire a lock sized to the payload
// they will marshal across the boundary and suspend, in FIFO order, until the
// admitted total fits under the configured capacity. This is the library's
// backpressure mechanism against native-channel overload.

package admission
