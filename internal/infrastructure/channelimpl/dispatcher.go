package channelimpl

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/dint-dev/cryptography-sub004/internal/domain/algorithms"
	"github.com/dint-dev/cryptography-sub004/internal/domain/channel"
	"github.com/dint-dev/cryptography-sub004/internal/domain/material"
	"github.com/dint-dev/cryptography-sub004/internal/infrastructure/purecrypto"
	"github.com/dint-dev/cryptography-sub004/internal/pkg/logger"
)

// Dispatcher routes channel operations onto the pure implementations. It backs
// the channel daemon and the loopback invoker; a real native backend replaces
// it with platform calls but answers the same contract.
type Dispatcher struct {
	logger logger.Logger

	// importedKeys holds key material imported via "importKey", keyed by the
	// opaque handle returned to the caller. Handles live as long as the
	// backend process; a real native backend would hold hardware references.
	importedKeys sync.Map
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(logger logger.Logger) (*Dispatcher, error) {
	return &Dispatcher{logger: logger}, nil
}

// Dispatch executes a request and never returns a Go error: failures are
// encoded as channel error codes so the wire behavior matches a remote
// backend exactly.
func (d *Dispatcher) Dispatch(ctx context.Context, req *channel.Request) *channel.Response {
	resp, err := d.dispatch(ctx, req)
	if err != nil {
		return errorResponse(req.ID, err)
	}
	resp.ID = req.ID
	return resp
}

func (d *Dispatcher) dispatch(ctx context.Context, req *channel.Request) (*channel.Response, error) {
	if req.Operation == "importKey" {
		return d.importKey(req)
	}
	req, err := d.resolveKeyHandle(req)
	if err != nil {
		return nil, err
	}
	switch req.Operation {
	case "encrypt":
		return d.encrypt(ctx, req)
	case "decrypt":
		return d.decrypt(ctx, req)
	case "digest":
		return d.digest(ctx, req)
	case "mac":
		return d.mac(ctx, req)
	case "Ed25519.newKeyPair", "Ecdsa.newKeyPair":
		return d.signerNewKeyPair(ctx, req)
	case "Ed25519.sign", "Ecdsa.sign":
		return d.sign(ctx, req)
	case "Ed25519.verify", "Ecdsa.verify":
		return d.verify(ctx, req)
	case "Ecdh.newKeyPair", "X25519.newKeyPair":
		return d.exchangeNewKeyPair(ctx, req)
	case "Ecdh.sharedSecretKey", "X25519.sharedSecretKey":
		return d.sharedSecretKey(ctx, req)
	default:
		return nil, &channel.BackendError{
			Code:    channel.CodeUnsupportedAlgorithm,
			Message: fmt.Sprintf("unknown operation %q", req.Operation),
		}
	}
}

// importKey stores the request's key material and returns an opaque handle.
// Later requests may carry the handle instead of raw key bytes.
func (d *Dispatcher) importKey(req *channel.Request) (*channel.Response, error) {
	if len(req.Args) == 0 {
		return nil, fmt.Errorf("importKey requires key material arguments")
	}
	imported := make(map[string][]byte, len(req.Args))
	for name, b := range req.Args {
		imported[name] = append([]byte(nil), b...)
	}
	handle := uuid.NewString()
	d.importedKeys.Store(handle, imported)
	return &channel.Response{Result: map[string][]byte{
		channel.ResultHandle: []byte(handle),
	}}, nil
}

// resolveKeyHandle substitutes imported key material for a keyHandle argument.
// The request is copied, never mutated: the loopback invoker shares the
// caller's request memory.
func (d *Dispatcher) resolveKeyHandle(req *channel.Request) (*channel.Request, error) {
	handle, ok := req.Args[channel.ArgKeyHandle]
	if !ok {
		return req, nil
	}
	stored, ok := d.importedKeys.Load(string(handle))
	if !ok {
		return nil, fmt.Errorf("unknown key handle %q", string(handle))
	}
	resolved := &channel.Request{
		ID:        req.ID,
		Operation: req.Operation,
		Args:      make(map[string][]byte, len(req.Args)),
		Params:    req.Params,
	}
	for name, b := range req.Args {
		if name != channel.ArgKeyHandle {
			resolved.Args[name] = b
		}
	}
	for name, b := range stored.(map[string][]byte) {
		if _, taken := resolved.Args[name]; !taken {
			resolved.Args[name] = b
		}
	}
	return resolved, nil
}

// cipherFor builds the pure cipher matching the request's algorithm parameter,
// sized by the key argument where the algorithm has a key length choice.
func (d *Dispatcher) cipherFor(req *channel.Request) (algorithms.Cipher, error) {
	name := req.Params[channel.ParamAlgorithm]
	keyLength := len(req.Args[channel.ArgKey])
	switch name {
	case algorithms.NameAesCtr:
		return purecrypto.NewAesCtr(keyLength, d.logger)
	case algorithms.NameAesCbc:
		return purecrypto.NewAesCbc(keyLength, d.logger)
	case algorithms.NameAesGcm:
		return purecrypto.NewAesGcm(keyLength, d.logger)
	case algorithms.NameChacha20:
		c, err := purecrypto.NewChacha20(d.logger)
		return c, err
	case algorithms.NameChacha20Poly1305:
		return purecrypto.NewChacha20Poly1305(d.logger)
	case algorithms.NameXchacha20Poly1305:
		return purecrypto.NewXchacha20Poly1305(d.logger)
	default:
		return nil, &channel.BackendError{
			Code:    channel.CodeUnsupportedAlgorithm,
			Message: fmt.Sprintf("unknown cipher %q", name),
		}
	}
}

func (d *Dispatcher) encrypt(ctx context.Context, req *channel.Request) (*channel.Response, error) {
	cipher, err := d.cipherFor(req)
	if err != nil {
		return nil, err
	}
	key := material.NewSecretKey(req.Args[channel.ArgKey])
	box, err := cipher.Encrypt(ctx, key, req.Args[channel.ArgData], req.Args[channel.ArgNonce], req.Args[channel.ArgAad])
	if err != nil {
		return nil, err
	}
	return &channel.Response{Result: map[string][]byte{
		channel.ResultCipherText: box.CipherText,
		channel.ResultMac:        box.Mac,
	}}, nil
}

func (d *Dispatcher) decrypt(ctx context.Context, req *channel.Request) (*channel.Response, error) {
	cipher, err := d.cipherFor(req)
	if err != nil {
		return nil, err
	}
	key := material.NewSecretKey(req.Args[channel.ArgKey])
	box := material.NewSecretBox(
		req.Args[channel.ArgNonce],
		req.Args[channel.ArgData],
		req.Args[channel.ArgMac],
	)
	clearText, err := cipher.Decrypt(ctx, key, box, req.Args[channel.ArgAad])
	switch {
	case errors.Is(err, algorithms.ErrAuthenticationFailed):
		return nil, &channel.BackendError{Code: channel.CodeIncorrectMac, Message: err.Error()}
	case errors.Is(err, algorithms.ErrInvalidPadding):
		return nil, &channel.BackendError{Code: channel.CodeIncorrectPadding, Message: err.Error()}
	case err != nil:
		return nil, err
	}
	return &channel.Response{Result: map[string][]byte{
		channel.ResultClearText: clearText,
	}}, nil
}

func (d *Dispatcher) hashFor(req *channel.Request) (algorithms.HashAlgorithm, error) {
	switch req.Params[channel.ParamHash] {
	case algorithms.NameSha256:
		return purecrypto.NewSha256(), nil
	case algorithms.NameSha384:
		return purecrypto.NewSha384(), nil
	case algorithms.NameSha512:
		return purecrypto.NewSha512(), nil
	case algorithms.NameBlake2b:
		return purecrypto.NewBlake2b(), nil
	case algorithms.NameBlake2s:
		return purecrypto.NewBlake2s(), nil
	default:
		return nil, &channel.BackendError{
			Code:    channel.CodeUnsupportedAlgorithm,
			Message: fmt.Sprintf("unknown hash %q", req.Params[channel.ParamHash]),
		}
	}
}

func (d *Dispatcher) digest(ctx context.Context, req *channel.Request) (*channel.Response, error) {
	hash, err := d.hashFor(req)
	if err != nil {
		return nil, err
	}
	digest, err := hash.Digest(ctx, req.Args[channel.ArgData])
	if err != nil {
		return nil, err
	}
	return &channel.Response{Result: map[string][]byte{
		channel.ResultBytes: digest,
	}}, nil
}

func (d *Dispatcher) mac(ctx context.Context, req *channel.Request) (*channel.Response, error) {
	if req.Params[channel.ParamAlgorithm] != algorithms.NameHmac {
		return nil, &channel.BackendError{
			Code:    channel.CodeUnsupportedAlgorithm,
			Message: fmt.Sprintf("unknown mac %q", req.Params[channel.ParamAlgorithm]),
		}
	}
	hash, err := d.hashFor(req)
	if err != nil {
		return nil, err
	}
	mac, err := purecrypto.NewHmac(hash)
	if err != nil {
		return nil, err
	}
	key := material.NewSecretKey(req.Args[channel.ArgKey])
	tag, err := mac.Compute(ctx, key, req.Args[channel.ArgData], req.Args[channel.ArgAad])
	if err != nil {
		return nil, err
	}
	return &channel.Response{Result: map[string][]byte{
		channel.ResultMac: tag,
	}}, nil
}

func errorResponse(id string, err error) *channel.Response {
	var be *channel.BackendError
	if errors.As(err, &be) {
		return &channel.Response{ID: id, ErrorCode: be.Code, ErrorMessage: be.Message}
	}
	// Argument and key errors have no dedicated code; report them as
	// unsupported so the caller falls back rather than crashing.
	return &channel.Response{
		ID:           id,
		ErrorCode:    channel.CodeUnsupportedAlgorithm,
		ErrorMessage: err.Error(),
	}
}
