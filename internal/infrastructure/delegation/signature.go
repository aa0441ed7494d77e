package delegation

import (
	"context"
	"fmt"

	"github.com/dint-dev/cryptography-sub004/internal/domain/algorithms"
	"github.com/dint-dev/cryptography-sub004/internal/domain/channel"
	"github.com/dint-dev/cryptography-sub004/internal/domain/material"
)

// delegatingSignature delegates in-window sign and verify calls. Key pair
// generation stays local: it has no payload to weigh and local randomness is
// as good as the backend's.
type delegatingSignature struct {
	delegator *Delegator
	pure      algorithms.SignatureAlgorithm
	opPrefix  string
	kind      material.KeyPairKind
	curve     string
}

// NewDelegatingSignature wraps a pure signature algorithm with native channel
// delegation. opPrefix is the channel operation family ("Ed25519", "Ecdsa");
// kind and curve identify the key material variant the algorithm accepts.
func NewDelegatingSignature(delegator *Delegator, pure algorithms.SignatureAlgorithm, opPrefix string, kind material.KeyPairKind, curve string) (algorithms.SignatureAlgorithm, error) {
	if pure == nil {
		return nil, fmt.Errorf("pure signature algorithm cannot be nil")
	}
	if opPrefix == "" {
		return nil, fmt.Errorf("operation prefix cannot be empty")
	}
	return &delegatingSignature{
		delegator: delegator,
		pure:      pure,
		opPrefix:  opPrefix,
		kind:      kind,
		curve:     curve,
	}, nil
}

func (s *delegatingSignature) Name() string         { return s.pure.Name() }
func (s *delegatingSignature) SignatureLength() int { return s.pure.SignatureLength() }

func (s *delegatingSignature) NewKeyPair(ctx context.Context) (*material.KeyPair, error) {
	return s.pure.NewKeyPair(ctx)
}

// params returns the request parameters: EC operations carry the curve name,
// OKP operations fix the curve in the operation family itself.
func (s *delegatingSignature) params() map[string]string {
	if s.kind != material.KeyPairKindEC {
		return nil
	}
	return map[string]string{channel.ParamCurve: s.curve}
}

func (s *delegatingSignature) Sign(ctx context.Context, keyPair *material.KeyPair, message []byte) (*material.Signature, error) {
	if !s.delegator.Admits(len(message)) {
		return s.pure.Sign(ctx, keyPair, message)
	}
	pub, err := keyPair.Public()
	if err != nil {
		return nil, err
	}
	if err := material.CheckKind(pub, s.kind, s.curve); err != nil {
		return nil, err
	}
	ref := s.delegator.importKey(ctx, keyPair, s.Name(), map[string][]byte{
		channel.ArgPrivateKey: keyPair.Private().D,
		channel.ArgPublicKey:  encodePublicKey(pub),
	})
	req := &channel.Request{
		Operation: s.opPrefix + ".sign",
		Args: map[string][]byte{
			channel.ArgData: message,
		},
		Params: s.params(),
	}
	ref.applyTo(req.Args)
	resp, err := s.delegator.call(ctx, req)
	if err != nil {
		if channel.IsCode(err, channel.CodeUnsupportedAlgorithm) {
			s.delegator.logger.Warn("native backend does not support ", s.Name(), ", using pure implementation: ", err)
			return s.pure.Sign(ctx, keyPair, message)
		}
		return nil, err
	}
	raw := resp.Result[channel.ResultSignature]
	if len(raw) != s.SignatureLength() {
		s.delegator.logger.Error("native sign result violates length contract for ", s.Name(),
			": got ", len(raw), ", want ", s.SignatureLength())
		return nil, fmt.Errorf("%s: signature length %d, want %d: %w",
			s.Name(), len(raw), s.SignatureLength(), algorithms.ErrInternalConsistency)
	}
	return material.NewSignature(raw, pub)
}

func (s *delegatingSignature) Verify(ctx context.Context, signature *material.Signature, message []byte) (bool, error) {
	if !s.delegator.Admits(len(message)) {
		return s.pure.Verify(ctx, signature, message)
	}
	req := &channel.Request{
		Operation: s.opPrefix + ".verify",
		Args: map[string][]byte{
			channel.ArgPublicKey: encodePublicKey(signature.PublicKey),
			channel.ArgSignature: signature.Bytes,
			channel.ArgData:      message,
		},
		Params: s.params(),
	}
	resp, err := s.delegator.call(ctx, req)
	if err != nil {
		if channel.IsCode(err, channel.CodeUnsupportedAlgorithm) {
			s.delegator.logger.Warn("native backend does not support ", s.Name(), ", using pure implementation: ", err)
			return s.pure.Verify(ctx, signature, message)
		}
		return false, err
	}
	valid := resp.Result[channel.ResultValid]
	if len(valid) != 1 || valid[0] > 1 {
		s.delegator.logger.Error("native verify result is malformed for ", s.Name())
		return false, fmt.Errorf("%s: malformed verify result: %w", s.Name(), algorithms.ErrInternalConsistency)
	}
	return valid[0] == 1, nil
}

// encodePublicKey flattens a public key to the channel wire form: the raw
// point for OKP keys, x || y for EC keys.
func encodePublicKey(pub *material.PublicKey) []byte {
	if pub.Kind == material.KeyPairKindOkp {
		return pub.X
	}
	out := make([]byte, 0, len(pub.X)+len(pub.Y))
	out = append(out, pub.X...)
	out = append(out, pub.Y...)
	return out
}
