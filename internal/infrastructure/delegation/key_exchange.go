package delegation

import (
	"context"
	"fmt"

	"github.com/dint-dev/cryptography-sub004/internal/domain/algorithms"
	"github.com/dint-dev/cryptography-sub004/internal/domain/channel"
	"github.com/dint-dev/cryptography-sub004/internal/domain/material"
)

// delegatingKeyExchange delegates shared secret derivation. The payload
// weighed against the delegation window is the encoded remote public key,
// which for every supported curve falls below any sensible MinLength, so in
// practice key agreement delegates only when MinLength is tuned down. That
// is deliberate: scalar multiplication is cheap relative to a round trip.
type delegatingKeyExchange struct {
	delegator *Delegator
	pure      algorithms.KeyExchangeAlgorithm
	opPrefix  string
	kind      material.KeyPairKind
	curve     string
}

// NewDelegatingKeyExchange wraps a pure key exchange algorithm with native
// channel delegation. opPrefix is the channel operation family ("Ecdh",
// "X25519"); kind and curve identify the key material variant.
func NewDelegatingKeyExchange(delegator *Delegator, pure algorithms.KeyExchangeAlgorithm, opPrefix string, kind material.KeyPairKind, curve string) (algorithms.KeyExchangeAlgorithm, error) {
	if pure == nil {
		return nil, fmt.Errorf("pure key exchange algorithm cannot be nil")
	}
	if opPrefix == "" {
		return nil, fmt.Errorf("operation prefix cannot be empty")
	}
	return &delegatingKeyExchange{
		delegator: delegator,
		pure:      pure,
		opPrefix:  opPrefix,
		kind:      kind,
		curve:     curve,
	}, nil
}

func (x *delegatingKeyExchange) Name() string { return x.pure.Name() }

func (x *delegatingKeyExchange) NewKeyPair(ctx context.Context) (*material.KeyPair, error) {
	return x.pure.NewKeyPair(ctx)
}

func (x *delegatingKeyExchange) SharedSecretKey(ctx context.Context, keyPair *material.KeyPair, remotePublicKey *material.PublicKey) (*material.SecretKey, error) {
	encodedRemote := encodePublicKey(remotePublicKey)
	if !x.delegator.Admits(len(encodedRemote)) {
		return x.pure.SharedSecretKey(ctx, keyPair, remotePublicKey)
	}
	pub, err := keyPair.Public()
	if err != nil {
		return nil, err
	}
	if err := material.CheckKind(pub, x.kind, x.curve); err != nil {
		return nil, err
	}
	if err := material.CheckKind(remotePublicKey, x.kind, x.curve); err != nil {
		return nil, err
	}
	ref := x.delegator.importKey(ctx, keyPair, x.Name(), map[string][]byte{
		channel.ArgPrivateKey: keyPair.Private().D,
		channel.ArgPublicKey:  encodePublicKey(pub),
	})
	req := &channel.Request{
		Operation: x.opPrefix + ".sharedSecretKey",
		Args: map[string][]byte{
			channel.ArgData: encodedRemote,
		},
	}
	ref.applyTo(req.Args)
	if x.kind == material.KeyPairKindEC {
		req.Params = map[string]string{channel.ParamCurve: x.curve}
	}
	resp, err := x.delegator.call(ctx, req)
	if err != nil {
		if channel.IsCode(err, channel.CodeUnsupportedAlgorithm) {
			x.delegator.logger.Warn("native backend does not support ", x.Name(), ", using pure implementation: ", err)
			return x.pure.SharedSecretKey(ctx, keyPair, remotePublicKey)
		}
		return nil, err
	}
	shared := resp.Result[channel.ResultBytes]
	if len(shared) == 0 {
		x.delegator.logger.Error("native shared secret result is empty for ", x.Name())
		return nil, fmt.Errorf("%s: empty shared secret: %w", x.Name(), algorithms.ErrInternalConsistency)
	}
	return material.NewSecretKey(shared), nil
}
