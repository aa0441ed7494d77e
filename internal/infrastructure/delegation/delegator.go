package delegation

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/dint-dev/cryptography-sub004/internal/domain/algorithms"
	"github.com/dint-dev/cryptography-sub004/internal/domain/channel"
	"github.com/dint-dev/cryptography-sub004/internal/pkg/admission"
	"github.com/dint-dev/cryptography-sub004/internal/pkg/config"
	"github.com/dint-dev/cryptography-sub004/internal/pkg/logger"
)

// EndpointEnv names the environment variable announcing the native channel
// endpoint. An empty value means the platform has no channel.
const EndpointEnv = "CRYPTO_BRIDGE_ENDPOINT"

var (
	platformOnce     sync.Once
	platformEndpoint string
)

// PlatformEndpoint returns the native channel endpoint this process was
// started with, or the empty string when the platform has none. The
// environment is consulted once; the answer is fixed for the process
// lifetime.
func PlatformEndpoint() string {
	platformOnce.Do(func() {
		platformEndpoint = os.Getenv(EndpointEnv)
	})
	return platformEndpoint
}

// Delegator owns the shared machinery of every delegating algorithm: the
// channel transport, the process-wide admission queue and the size window
// policy. A nil *Delegator is valid and means "platform unsupported";
// wrappers built on it answer every call locally.
type Delegator struct {
	invoker channel.Invoker
	queue   *admission.Queue
	policy  ChannelPolicy
	logger  logger.Logger
}

// NewDelegator creates a Delegator over the given channel transport.
func NewDelegator(settings *config.ChannelSettings, invoker channel.Invoker, logger logger.Logger) (*Delegator, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid channel settings: %w", err)
	}
	if invoker == nil {
		return nil, fmt.Errorf("channel invoker cannot be nil")
	}
	queue, err := admission.NewQueue(settings.MaxConcurrentSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create admission queue: %w", err)
	}
	return &Delegator{
		invoker: invoker,
		queue:   queue,
		policy:  ChannelPolicy{MinLength: settings.MinLength, MaxLength: settings.MaxLength},
		logger:  logger,
	}, nil
}

// Admits reports whether a call with the given payload length should be
// delegated rather than answered locally.
func (d *Delegator) Admits(payloadLength int) bool {
	return d != nil && d.policy.Admits(payloadLength)
}

// Close releases the channel transport.
func (d *Delegator) Close() error {
	if d == nil {
		return nil
	}
	return d.invoker.Close()
}

// call performs one admission-gated round trip. The admitted weight is the
// request's payload size; it is held for the full round trip so the aggregate
// in-flight weight stays under the configured bound.
func (d *Delegator) call(ctx context.Context, req *channel.Request) (*channel.Response, error) {
	release, err := d.queue.Acquire(ctx, req.Size())
	if err != nil {
		return nil, err
	}
	defer release()
	return d.invoker.Invoke(ctx, req)
}

// handleCache is the native-handle surface shared by SecretKey and KeyPair.
type handleCache interface {
	Handle(token string) (interface{}, bool)
	StoreHandle(token string, handle interface{})
}

// keyRef is the wire form of a key argument: an opaque backend handle after a
// successful import, the raw key material otherwise.
type keyRef struct {
	handle []byte
	raw    map[string][]byte
}

// applyTo adds the key reference to a request's arguments.
func (r keyRef) applyTo(args map[string][]byte) {
	if len(r.handle) > 0 {
		args[channel.ArgKeyHandle] = r.handle
		return
	}
	for name, b := range r.raw {
		args[name] = b
	}
}

// importKey obtains a backend handle for the given key material on first
// delegated use and caches it on the key under the algorithm identity token.
// Raw material keeps being shipped when the backend does not support key
// import; that outcome is cached too so the handshake runs at most once.
func (d *Delegator) importKey(ctx context.Context, cache handleCache, token string, raw map[string][]byte) keyRef {
	if v, ok := cache.Handle(token); ok {
		if handle, ok := v.([]byte); ok && len(handle) > 0 {
			return keyRef{handle: handle}
		}
		return keyRef{raw: raw}
	}
	req := &channel.Request{
		Operation: "importKey",
		Args:      raw,
		Params:    map[string]string{channel.ParamAlgorithm: token},
	}
	resp, err := d.call(ctx, req)
	if err != nil {
		if channel.IsCode(err, channel.CodeUnsupportedAlgorithm) {
			cache.StoreHandle(token, []byte(nil))
		} else {
			d.logger.Warn("native key import failed for ", token, ": ", err)
		}
		return keyRef{raw: raw}
	}
	handle := resp.Result[channel.ResultHandle]
	if len(handle) == 0 {
		cache.StoreHandle(token, []byte(nil))
		return keyRef{raw: raw}
	}
	cache.StoreHandle(token, handle)
	return keyRef{handle: handle}
}

// mapBackendError translates the backend's data-dependent failure codes to
// the library's sentinel errors. Algorithm availability codes pass through so
// the caller can decide between fallback and ErrUnsupportedPlatform.
func mapBackendError(err error) error {
	switch {
	case channel.IsCode(err, channel.CodeIncorrectMac):
		return fmt.Errorf("native backend rejected mac: %w", algorithms.ErrAuthenticationFailed)
	case channel.IsCode(err, channel.CodeIncorrectPadding):
		return fmt.Errorf("native backend rejected padding: %w", algorithms.ErrInvalidPadding)
	default:
		return err
	}
}
