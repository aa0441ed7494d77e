package delegation

import (
	"context"
	"fmt"

	"github.com/dint-dev/cryptography-sub004/internal/domain/algorithms"
	"github.com/dint-dev/cryptography-sub004/internal/domain/channel"
	"github.com/dint-dev/cryptography-sub004/internal/domain/material"
)

// delegatingHash delegates in-window one-shot digests. Sinks are always
// local: chunked input has no single payload to weigh against the window and
// would hold an admission slot across an unbounded number of round trips.
type delegatingHash struct {
	delegator *Delegator
	pure      algorithms.HashAlgorithm
}

// NewDelegatingHash wraps a pure hash algorithm with native channel
// delegation of one-shot digests.
func NewDelegatingHash(delegator *Delegator, pure algorithms.HashAlgorithm) (algorithms.HashAlgorithm, error) {
	if pure == nil {
		return nil, fmt.Errorf("pure hash algorithm cannot be nil")
	}
	return &delegatingHash{delegator: delegator, pure: pure}, nil
}

func (h *delegatingHash) Name() string    { return h.pure.Name() }
func (h *delegatingHash) HashLength() int { return h.pure.HashLength() }

func (h *delegatingHash) NewSink() algorithms.HashSink { return h.pure.NewSink() }

func (h *delegatingHash) Digest(ctx context.Context, data []byte) (material.Hash, error) {
	if !h.delegator.Admits(len(data)) {
		return h.pure.Digest(ctx, data)
	}
	req := &channel.Request{
		Operation: "digest",
		Args:      map[string][]byte{channel.ArgData: data},
		Params:    map[string]string{channel.ParamHash: h.Name()},
	}
	resp, err := h.delegator.call(ctx, req)
	if err != nil {
		if channel.IsCode(err, channel.CodeUnsupportedAlgorithm) {
			h.delegator.logger.Warn("native backend does not support ", h.Name(), ", using pure implementation: ", err)
			return h.pure.Digest(ctx, data)
		}
		return nil, err
	}
	digest := material.Hash(resp.Result[channel.ResultBytes])
	if len(digest) != h.HashLength() {
		h.delegator.logger.Error("native digest result violates length contract for ", h.Name(),
			": got ", len(digest), ", want ", h.HashLength())
		return nil, fmt.Errorf("%s: digest length %d, want %d: %w",
			h.Name(), len(digest), h.HashLength(), algorithms.ErrInternalConsistency)
	}
	return digest, nil
}
