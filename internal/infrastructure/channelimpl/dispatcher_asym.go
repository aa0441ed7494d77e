package channelimpl

import (
	"context"
	"fmt"
	"strings"

	"github.com/dint-dev/cryptography-sub004/internal/domain/algorithms"
	"github.com/dint-dev/cryptography-sub004/internal/domain/channel"
	"github.com/dint-dev/cryptography-sub004/internal/domain/material"
	"github.com/dint-dev/cryptography-sub004/internal/infrastructure/purecrypto"
)

// Asymmetric key material crosses the channel in fixed-width raw encodings:
// OKP keys as their raw scalar/point, EC keys as d and x || y.

func (d *Dispatcher) signerFor(req *channel.Request) (algorithms.SignatureAlgorithm, error) {
	switch {
	case strings.HasPrefix(req.Operation, "Ed25519."):
		return purecrypto.NewEd25519(d.logger)
	case strings.HasPrefix(req.Operation, "Ecdsa."):
		signer, err := purecrypto.NewEcdsa(req.Params[channel.ParamCurve], d.logger)
		if err != nil {
			return nil, &channel.BackendError{Code: channel.CodeUnsupportedAlgorithm, Message: err.Error()}
		}
		return signer, nil
	default:
		return nil, &channel.BackendError{
			Code:    channel.CodeUnsupportedAlgorithm,
			Message: fmt.Sprintf("unknown signature operation %q", req.Operation),
		}
	}
}

func (d *Dispatcher) exchangeFor(req *channel.Request) (algorithms.KeyExchangeAlgorithm, error) {
	switch {
	case strings.HasPrefix(req.Operation, "X25519."):
		return purecrypto.NewX25519(d.logger)
	case strings.HasPrefix(req.Operation, "Ecdh."):
		exchange, err := purecrypto.NewEcdh(req.Params[channel.ParamCurve], d.logger)
		if err != nil {
			return nil, &channel.BackendError{Code: channel.CodeUnsupportedAlgorithm, Message: err.Error()}
		}
		return exchange, nil
	default:
		return nil, &channel.BackendError{
			Code:    channel.CodeUnsupportedAlgorithm,
			Message: fmt.Sprintf("unknown key exchange operation %q", req.Operation),
		}
	}
}

// encodePublic flattens a public key to its wire form.
func encodePublic(pub *material.PublicKey) []byte {
	if pub.Kind == material.KeyPairKindOkp {
		return pub.X
	}
	out := make([]byte, 0, len(pub.X)+len(pub.Y))
	out = append(out, pub.X...)
	out = append(out, pub.Y...)
	return out
}

// decodePublic rebuilds a public key from its wire form.
func decodePublic(kind material.KeyPairKind, curve string, raw []byte) (*material.PublicKey, error) {
	if kind == material.KeyPairKindOkp {
		return &material.PublicKey{Kind: kind, Curve: curve, X: raw}, nil
	}
	if len(raw)%2 != 0 {
		return nil, fmt.Errorf("invalid EC public key encoding: %d bytes", len(raw))
	}
	half := len(raw) / 2
	return &material.PublicKey{Kind: kind, Curve: curve, X: raw[:half], Y: raw[half:]}, nil
}

// keyPairFromArgs rebuilds a key pair from privateKey/publicKey arguments.
func keyPairFromArgs(req *channel.Request, kind material.KeyPairKind, curve string) (*material.KeyPair, error) {
	pub, err := decodePublic(kind, curve, req.Args[channel.ArgPublicKey])
	if err != nil {
		return nil, err
	}
	private := &material.PrivateKey{D: req.Args[channel.ArgPrivateKey]}
	return material.NewKeyPair(kind, curve, private, pub)
}

// kindAndCurve resolves the material variant for an asymmetric operation.
func kindAndCurve(req *channel.Request) (material.KeyPairKind, string) {
	switch {
	case strings.HasPrefix(req.Operation, "Ed25519."):
		return material.KeyPairKindOkp, material.CurveEd25519
	case strings.HasPrefix(req.Operation, "X25519."):
		return material.KeyPairKindOkp, material.CurveX25519
	default:
		return material.KeyPairKindEC, req.Params[channel.ParamCurve]
	}
}

func keyPairResult(keyPair *material.KeyPair) (*channel.Response, error) {
	pub, err := keyPair.Public()
	if err != nil {
		return nil, err
	}
	return &channel.Response{Result: map[string][]byte{
		channel.ResultPrivateKey: keyPair.Private().D,
		channel.ResultPublicKey:  encodePublic(pub),
	}}, nil
}

func (d *Dispatcher) signerNewKeyPair(ctx context.Context, req *channel.Request) (*channel.Response, error) {
	signer, err := d.signerFor(req)
	if err != nil {
		return nil, err
	}
	keyPair, err := signer.NewKeyPair(ctx)
	if err != nil {
		return nil, err
	}
	return keyPairResult(keyPair)
}

func (d *Dispatcher) sign(ctx context.Context, req *channel.Request) (*channel.Response, error) {
	signer, err := d.signerFor(req)
	if err != nil {
		return nil, err
	}
	kind, curve := kindAndCurve(req)
	keyPair, err := keyPairFromArgs(req, kind, curve)
	if err != nil {
		return nil, err
	}
	signature, err := signer.Sign(ctx, keyPair, req.Args[channel.ArgData])
	if err != nil {
		return nil, err
	}
	return &channel.Response{Result: map[string][]byte{
		channel.ResultSignature: signature.Bytes,
		channel.ResultPublicKey: encodePublic(signature.PublicKey),
	}}, nil
}

func (d *Dispatcher) verify(ctx context.Context, req *channel.Request) (*channel.Response, error) {
	signer, err := d.signerFor(req)
	if err != nil {
		return nil, err
	}
	kind, curve := kindAndCurve(req)
	pub, err := decodePublic(kind, curve, req.Args[channel.ArgPublicKey])
	if err != nil {
		return nil, err
	}
	signature, err := material.NewSignature(req.Args[channel.ArgSignature], pub)
	if err != nil {
		return nil, err
	}
	valid, err := signer.Verify(ctx, signature, req.Args[channel.ArgData])
	if err != nil {
		return nil, err
	}
	result := []byte{0}
	if valid {
		result[0] = 1
	}
	return &channel.Response{Result: map[string][]byte{
		channel.ResultValid: result,
	}}, nil
}

func (d *Dispatcher) exchangeNewKeyPair(ctx context.Context, req *channel.Request) (*channel.Response, error) {
	exchange, err := d.exchangeFor(req)
	if err != nil {
		return nil, err
	}
	keyPair, err := exchange.NewKeyPair(ctx)
	if err != nil {
		return nil, err
	}
	return keyPairResult(keyPair)
}

func (d *Dispatcher) sharedSecretKey(ctx context.Context, req *channel.Request) (*channel.Response, error) {
	exchange, err := d.exchangeFor(req)
	if err != nil {
		return nil, err
	}
	kind, curve := kindAndCurve(req)
	keyPair, err := keyPairFromArgs(req, kind, curve)
	if err != nil {
		return nil, err
	}
	remote, err := decodePublic(kind, curve, req.Args[channel.ArgData])
	if err != nil {
		return nil, err
	}
	shared, err := exchange.SharedSecretKey(ctx, keyPair, remote)
	if err != nil {
		return nil, err
	}
	raw, err := shared.Extract(ctx)
	if err != nil {
		return nil, err
	}
	return &channel.Response{Result: map[string][]byte{
		channel.ResultBytes: raw,
	}}, nil
}
