package compose

import (
	"context"
	"fmt"

	"github.com/dint-dev/cryptography-sub004/internal/domain/algorithms"
	"github.com/dint-dev/cryptography-sub004/internal/domain/material"
)

// authenticatedCipher implements StreamingCipher when its inner cipher does:
// chunks flow through the inner stream while the MAC sink absorbs the cipher
// text, so the tag exists exactly once, at Close. Decrypting streams emit
// clear text before verification completes; callers must not act on it until
// Close succeeds.

func (c *authenticatedCipher) streamingInner() (algorithms.StreamingCipher, error) {
	inner, ok := c.cipher.(algorithms.StreamingCipher)
	if !ok {
		return nil, fmt.Errorf("%s: inner cipher %s does not stream: %w",
			c.Name(), c.cipher.Name(), algorithms.ErrUnsupportedOperation)
	}
	return inner, nil
}

func (c *authenticatedCipher) NewEncryptStream(ctx context.Context, key *material.SecretKey, nonce material.Nonce, aad []byte) (algorithms.CipherStream, material.Nonce, error) {
	if err := c.checkAAD(aad); err != nil {
		return nil, nil, err
	}
	inner, err := c.streamingInner()
	if err != nil {
		return nil, nil, err
	}
	stream, nonce, err := inner.NewEncryptStream(ctx, key, nonce, nil)
	if err != nil {
		return nil, nil, err
	}
	sink, err := c.mac.NewSink(ctx, key, aad)
	if err != nil {
		return nil, nil, err
	}
	return &authenticatedEncryptStream{stream: stream, sink: sink}, nonce, nil
}

func (c *authenticatedCipher) NewDecryptStream(ctx context.Context, key *material.SecretKey, nonce material.Nonce, expectedMac material.Mac, aad []byte) (algorithms.CipherStream, error) {
	if err := c.checkAAD(aad); err != nil {
		return nil, err
	}
	inner, err := c.streamingInner()
	if err != nil {
		return nil, err
	}
	if len(expectedMac) != c.MacLength() {
		return nil, fmt.Errorf("%s: expected mac length %d, want %d",
			c.Name(), len(expectedMac), c.MacLength())
	}
	stream, err := inner.NewDecryptStream(ctx, key, nonce, nil, nil)
	if err != nil {
		return nil, err
	}
	sink, err := c.mac.NewSink(ctx, key, aad)
	if err != nil {
		return nil, err
	}
	return &authenticatedDecryptStream{stream: stream, sink: sink, expected: expectedMac}, nil
}

type authenticatedEncryptStream struct {
	stream algorithms.CipherStream
	sink   algorithms.MacSink
	tag    material.Mac
	closed bool
}

func (s *authenticatedEncryptStream) Add(chunk []byte) ([]byte, error) {
	if s.closed {
		return nil, algorithms.ErrSinkClosed
	}
	out, err := s.stream.Add(chunk)
	if err != nil {
		return nil, err
	}
	if err := s.sink.Add(out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *authenticatedEncryptStream) Close() (material.Mac, error) {
	if s.closed {
		return s.tag, nil
	}
	if _, err := s.stream.Close(); err != nil {
		return nil, err
	}
	tag, err := s.sink.Close()
	if err != nil {
		return nil, err
	}
	s.tag = tag
	s.closed = true
	return tag, nil
}

type authenticatedDecryptStream struct {
	stream   algorithms.CipherStream
	sink     algorithms.MacSink
	expected material.Mac
	tag      material.Mac
	closeErr error
	closed   bool
}

func (s *authenticatedDecryptStream) Add(chunk []byte) ([]byte, error) {
	if s.closed {
		return nil, algorithms.ErrSinkClosed
	}
	// The MAC covers the cipher text, which on the decrypting side is the
	// input chunk.
	if err := s.sink.Add(chunk); err != nil {
		return nil, err
	}
	return s.stream.Add(chunk)
}

func (s *authenticatedDecryptStream) Close() (material.Mac, error) {
	if s.closed {
		return s.tag, s.closeErr
	}
	s.closed = true
	if _, err := s.stream.Close(); err != nil {
		s.closeErr = err
		return nil, err
	}
	computed, err := s.sink.Close()
	if err != nil {
		s.closeErr = err
		return nil, err
	}
	if !computed.Equal(s.expected) {
		s.closeErr = fmt.Errorf("stream tag mismatch: %w", algorithms.ErrAuthenticationFailed)
		return nil, s.closeErr
	}
	s.tag = computed
	return computed, nil
}
