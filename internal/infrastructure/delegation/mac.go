package delegation

import (
	"context"
	"fmt"

	"github.com/dint-dev/cryptography-sub004/internal/domain/algorithms"
	"github.com/dint-dev/cryptography-sub004/internal/domain/channel"
	"github.com/dint-dev/cryptography-sub004/internal/domain/material"
)

// delegatingMac delegates in-window one-shot tag computations. Sinks stay
// local for the same reason hash sinks do.
type delegatingMac struct {
	delegator *Delegator
	pure      algorithms.MacAlgorithm
	hashName  string
}

// NewDelegatingMac wraps a pure HMAC with native channel delegation.
// hashName identifies the underlying hash on the wire ("Sha256", ...).
func NewDelegatingMac(delegator *Delegator, pure algorithms.MacAlgorithm, hashName string) (algorithms.MacAlgorithm, error) {
	if pure == nil {
		return nil, fmt.Errorf("pure mac algorithm cannot be nil")
	}
	if hashName == "" {
		return nil, fmt.Errorf("hash name cannot be empty")
	}
	return &delegatingMac{delegator: delegator, pure: pure, hashName: hashName}, nil
}

func (m *delegatingMac) Name() string      { return m.pure.Name() }
func (m *delegatingMac) MacLength() int    { return m.pure.MacLength() }
func (m *delegatingMac) SupportsAAD() bool { return m.pure.SupportsAAD() }

func (m *delegatingMac) NewSink(ctx context.Context, key *material.SecretKey, aad []byte) (algorithms.MacSink, error) {
	return m.pure.NewSink(ctx, key, aad)
}

func (m *delegatingMac) Compute(ctx context.Context, key *material.SecretKey, data []byte, aad []byte) (material.Mac, error) {
	if !m.delegator.Admits(len(data)) {
		return m.pure.Compute(ctx, key, data, aad)
	}
	keyBytes, err := key.Extract(ctx)
	if err != nil {
		return nil, err
	}
	ref := m.delegator.importKey(ctx, key, m.Name(), map[string][]byte{channel.ArgKey: keyBytes})
	req := &channel.Request{
		Operation: "mac",
		Args: map[string][]byte{
			channel.ArgData: data,
		},
		Params: map[string]string{
			channel.ParamAlgorithm: algorithms.NameHmac,
			channel.ParamHash:      m.hashName,
		},
	}
	ref.applyTo(req.Args)
	if len(aad) > 0 {
		req.Args[channel.ArgAad] = aad
	}
	resp, err := m.delegator.call(ctx, req)
	if err != nil {
		if channel.IsCode(err, channel.CodeUnsupportedAlgorithm) {
			m.delegator.logger.Warn("native backend does not support ", m.Name(), ", using pure implementation: ", err)
			return m.pure.Compute(ctx, key, data, aad)
		}
		return nil, err
	}
	tag := material.Mac(resp.Result[channel.ResultMac])
	if len(tag) != m.MacLength() {
		m.delegator.logger.Error("native mac result violates length contract for ", m.Name(),
			": got ", len(tag), ", want ", m.MacLength())
		return nil, fmt.Errorf("%s: mac length %d, want %d: %w",
			m.Name(), len(tag), m.MacLength(), algorithms.ErrInternalConsistency)
	}
	return tag, nil
}
