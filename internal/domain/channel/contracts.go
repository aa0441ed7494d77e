package channel

import (
	"context"
	"errors"
	"fmt"
)

// Argument keys used in requests. ArgKeyHandle replaces the raw key
// arguments after a successful "importKey" handshake: the backend merges
// the imported material back in before executing the operation.
const (
	ArgKey        = "key"
	ArgKeyHandle  = "keyHandle"
	ArgNonce      = "nonce"
	ArgData       = "data"
	ArgMac        = "mac"
	ArgAad        = "aad"
	ArgPublicKey  = "publicKey"
	ArgPrivateKey = "privateKey"
	ArgSignature  = "signature"
)

// Parameter keys used in requests.
const (
	ParamAlgorithm = "algorithm"
	ParamCurve     = "curve"
	ParamHash      = "hash"
)

// Result keys a successful response may carry.
const (
	ResultCipherText = "cipherText"
	ResultClearText  = "clearText"
	ResultMac        = "mac"
	ResultSignature  = "signature"
	ResultBytes      = "bytes"
	ResultPublicKey  = "publicKey"
	ResultPrivateKey = "privateKey"
	ResultValid      = "valid"
	ResultHandle     = "handle"
)

// Machine-readable error codes a backend may return. The set is closed.
const (
	CodeUnsupportedAlgorithm = "UNSUPPORTED_ALGORITHM"
	CodeIncorrectMac         = "INCORRECT_MAC"
	CodeIncorrectPadding     = "INCORRECT_PADDING"
)

// Request identifies a native operation ("encrypt", "Ecdh.newKeyPair",
// "Ecdsa.sign", ...) with named byte-array arguments and string parameters.
type Request struct {
	ID        string            `json:"id"`
	Operation string            `json:"op"`
	Args      map[string][]byte `json:"args,omitempty"`
	Params    map[string]string `json:"params,omitempty"`
}

// Size returns the request's payload weight: the sum of the byte lengths
// marshalled across the channel boundary. Used for admission control.
func (r *Request) Size() int64 {
	var total int64
	for _, b := range r.Args {
		total += int64(len(b))
	}
	return total
}

// Response is the backend's reply: either Result bytes under documented keys,
// or an error code from the closed set plus an implementation-defined message.
type Response struct {
	ID           string            `json:"id"`
	Result       map[string][]byte `json:"result,omitempty"`
	ErrorCode    string            `json:"errorCode,omitempty"`
	ErrorMessage string            `json:"errorMessage,omitempty"`
}

// Err converts an error response to a BackendError, or nil for success.
func (r *Response) Err() error {
	if r.ErrorCode == "" {
		return nil
	}
	return &BackendError{Code: r.ErrorCode, Message: r.ErrorMessage}
}

// BackendError is a failure reported by the native backend.
type BackendError struct {
	Code    string
	Message string
}

func (e *BackendError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("native backend error: %s", e.Code)
	}
	return fmt.Sprintf("native backend error: %s: %s", e.Code, e.Message)
}

// IsCode reports whether err is a BackendError with the given code.
func IsCode(err error, code string) bool {
	var be *BackendError
	return errors.As(err, &be) && be.Code == code
}

// Invoker performs a round trip over the native execution channel. Once a call
// is dispatched it runs to completion; ctx cancellation only abandons the
// suspended computation and discards the result.
type Invoker interface {
	// Invoke sends the request and waits for the matching response.
	Invoke(ctx context.Context, req *Request) (*Response, error)

	// Close releases the channel transport.
	Close() error
}
