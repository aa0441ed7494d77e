package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Default channel tunables. These were chosen empirically and are
// configuration, not part of the algorithmic contract. Re-tune per target.
const (
	// DefaultChannelMinLength is the payload size below which per-call
	// dispatch overhead outweighs any native acceleration benefit.
	DefaultChannelMinLength = 128

	// DefaultChannelMaxLength is the payload size above which some native
	// backends become unreliable under load.
	DefaultChannelMaxLength = 4 * 1024 * 1024

	// DefaultMaxConcurrentSize bounds the aggregate payload weight that may
	// be in flight to the native channel at once.
	DefaultMaxConcurrentSize = 8 * 1024 * 1024
)

// ChannelSettings holds configuration for the native execution channel:
// the endpoint of the channel transport, the delegation size window and
// the admission-control capacity.
type ChannelSettings struct {
	Endpoint          string `mapstructure:"endpoint" validate:"required"`
	MinLength         int    `mapstructure:"min_length" validate:"gte=0"`
	MaxLength         int    `mapstructure:"max_length" validate:"gtefield=MinLength"`
	MaxConcurrentSize int64  `mapstructure:"max_concurrent_size" validate:"gt=0"`
}

// NewDefaultChannelSettings returns ChannelSettings with the default tunables
// applied for the given endpoint.
func NewDefaultChannelSettings(endpoint string) *ChannelSettings {
	return &ChannelSettings{
		Endpoint:          endpoint,
		MinLength:         DefaultChannelMinLength,
		MaxLength:         DefaultChannelMaxLength,
		MaxConcurrentSize: DefaultMaxConcurrentSize,
	}
}

// Validate checks that all fields in ChannelSettings are valid
func (s *ChannelSettings) Validate() error {
	validate := validator.New()

	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("validation failed for ChannelSettings: %w", err)
	}

	return nil
}
