package purecrypto

import (
	"context"
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/poly1305"

	"github.com/dint-dev/cryptography-sub004/internal/domain/algorithms"
	"github.com/dint-dev/cryptography-sub004/internal/domain/material"
)

// poly1305Mac implements MacAlgorithm with the RFC 8439 message layout:
// aad || pad16 || data || pad16 || le64(len(aad)) || le64(len(data)).
// The 32-byte key is a one-time key; reusing it across messages breaks the
// MAC's security. AEAD compositions derive it per nonce from the cipher's
// key stream.
type poly1305Mac struct{}

// NewPoly1305 creates the Poly1305 one-time MAC algorithm.
func NewPoly1305() algorithms.MacAlgorithm {
	return &poly1305Mac{}
}

func (a *poly1305Mac) Name() string      { return "Poly1305" }
func (a *poly1305Mac) MacLength() int    { return poly1305.TagSize }
func (a *poly1305Mac) SupportsAAD() bool { return true }

func (a *poly1305Mac) Compute(ctx context.Context, key *material.SecretKey, data []byte, aad []byte) (material.Mac, error) {
	sink, err := a.NewSink(ctx, key, aad)
	if err != nil {
		return nil, err
	}
	if err := sink.Add(data); err != nil {
		return nil, err
	}
	return sink.Close()
}

func (a *poly1305Mac) NewSink(ctx context.Context, key *material.SecretKey, aad []byte) (algorithms.MacSink, error) {
	raw, err := extractKey(ctx, key, 32)
	if err != nil {
		return nil, err
	}
	var k [32]byte
	copy(k[:], raw)
	mac := poly1305.New(&k)

	_, _ = mac.Write(aad)
	writePad16(mac, len(aad))
	return &poly1305Sink{mac: mac, aadLen: uint64(len(aad))}, nil
}

// poly1305Sink absorbs data chunks and appends the RFC 8439 length trailer on
// Close.
type poly1305Sink struct {
	mac     *poly1305.MAC
	aadLen  uint64
	dataLen uint64
	closed  bool
	tag     material.Mac
}

func (s *poly1305Sink) Add(chunk []byte) error {
	if s.closed {
		return algorithms.ErrSinkClosed
	}
	_, _ = s.mac.Write(chunk)
	s.dataLen += uint64(len(chunk))
	return nil
}

func (s *poly1305Sink) AddSlice(chunk []byte, start, end int, isLast bool) error {
	if s.closed {
		return algorithms.ErrSinkClosed
	}
	if start < 0 || end < start || end > len(chunk) {
		return fmt.Errorf("invalid slice bounds [%d:%d] for chunk of length %d", start, end, len(chunk))
	}
	_, _ = s.mac.Write(chunk[start:end])
	s.dataLen += uint64(end - start)
	if isLast {
		_, err := s.Close()
		return err
	}
	return nil
}

func (s *poly1305Sink) Close() (material.Mac, error) {
	if !s.closed {
		writePad16(s.mac, int(s.dataLen%16))
		var trailer [16]byte
		binary.LittleEndian.PutUint64(trailer[0:8], s.aadLen)
		binary.LittleEndian.PutUint64(trailer[8:16], s.dataLen)
		_, _ = s.mac.Write(trailer[:])
		s.tag = s.mac.Sum(nil)
		s.closed = true
	}
	return s.tag, nil
}

// writePad16 writes the zero padding that aligns n bytes to a 16-byte boundary.
func writePad16(w interface{ Write([]byte) (int, error) }, n int) {
	if rem := n % 16; rem != 0 {
		var zero [16]byte
		_, _ = w.Write(zero[:16-rem])
	}
}
