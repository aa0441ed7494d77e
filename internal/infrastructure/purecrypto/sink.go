package purecrypto

import (
	"fmt"
	"hash"

	"github.com/dint-dev/cryptography-sub004/internal/domain/algorithms"
	"github.com/dint-dev/cryptography-sub004/internal/domain/material"
)

// digestSink adapts a hash.Hash to the incremental sink contract. Close is
// idempotent and returns the same digest; adding after close fails.
type digestSink struct {
	h      hash.Hash
	closed bool
	digest material.Hash
}

func newDigestSink(h hash.Hash) *digestSink {
	return &digestSink{h: h}
}

// Add absorbs a whole chunk.
func (s *digestSink) Add(chunk []byte) error {
	if s.closed {
		return algorithms.ErrSinkClosed
	}
	// hash.Hash.Write never returns an error
	_, _ = s.h.Write(chunk)
	return nil
}

// AddSlice absorbs chunk[start:end] and closes the sink when isLast is set.
func (s *digestSink) AddSlice(chunk []byte, start, end int, isLast bool) error {
	if s.closed {
		return algorithms.ErrSinkClosed
	}
	if start < 0 || end < start || end > len(chunk) {
		return fmt.Errorf("invalid slice bounds [%d:%d] for chunk of length %d", start, end, len(chunk))
	}
	_, _ = s.h.Write(chunk[start:end])
	if isLast {
		_, err := s.Close()
		return err
	}
	return nil
}

// Close finalizes and returns the digest.
func (s *digestSink) Close() (material.Hash, error) {
	if !s.closed {
		s.digest = s.h.Sum(nil)
		s.closed = true
	}
	return s.digest, nil
}

// macSink is digestSink with a Mac result type.
type macSink struct {
	inner *digestSink
}

func newMacSink(h hash.Hash) *macSink {
	return &macSink{inner: newDigestSink(h)}
}

func (s *macSink) Add(chunk []byte) error {
	return s.inner.Add(chunk)
}

func (s *macSink) AddSlice(chunk []byte, start, end int, isLast bool) error {
	if s.inner.closed {
		return algorithms.ErrSinkClosed
	}
	if start < 0 || end < start || end > len(chunk) {
		return fmt.Errorf("invalid slice bounds [%d:%d] for chunk of length %d", start, end, len(chunk))
	}
	_, _ = s.inner.h.Write(chunk[start:end])
	if isLast {
		_, err := s.Close()
		return err
	}
	return nil
}

func (s *macSink) Close() (material.Mac, error) {
	digest, err := s.inner.Close()
	if err != nil {
		return nil, err
	}
	return material.Mac(digest), nil
}
