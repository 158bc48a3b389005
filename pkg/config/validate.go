package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks the configuration against the struct-level validation
// tags plus the cross-field rules the tags cannot express.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// An acceptor group larger than a few loops is almost always a
	// misconfiguration, but not an error. The hard rule is frame size:
	// the framed codec carries a 4-byte length, so anything above 4GiB
	// can never arrive.
	if uint64(cfg.Server.MaxFrameSize) > 1<<32 {
		return fmt.Errorf("invalid configuration: server.max_frame_size %s exceeds the framed codec's 4GiB limit", cfg.Server.MaxFrameSize)
	}

	return nil
}
