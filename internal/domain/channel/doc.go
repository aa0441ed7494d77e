// Package channel defines the call contract for the native execution channel:
// requests identified by an operation name with named byte-array and primitive
// arguments, responses carrying result bytes under documented keys, and the
// closed set of machine-readable error codes a backend may return.

package channel
