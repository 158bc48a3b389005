package config

import (
	"strings"
	"time"

	"github.com/tcpkit/tcpkit/internal/bytesize"
	"github.com/tcpkit/tcpkit/pkg/pipeline"
)

// GetDefaultConfig returns a fully populated default configuration.
//
// The transport preference is set here rather than in ApplyDefaults: a
// bool field cannot distinguish "unset" from an explicit false, so a
// loaded config keeps whatever the file says.
func GetDefaultConfig() *Config {
	cfg := &Config{
		Transport: TransportConfig{PreferNative: true},
	}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills any unspecified configuration fields. Zero values
// are replaced; explicit values are preserved.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyServerDefaults(&cfg.Server)
	applyMetricsDefaults(&cfg.Metrics)

	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
}

// applyLoggingDefaults sets logging defaults and normalizes the level.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

// applyServerDefaults sets listening and reactor sizing defaults. The
// transport preference defaults to native in GetDefaultConfig; loaded
// configs keep whatever the file says.
func applyServerDefaults(cfg *ServerConfig) {
	if cfg.Port == 0 {
		cfg.Port = 3000
	}
	if cfg.BossThreads == 0 {
		cfg.BossThreads = 1
	}
	// WorkerThreads 0 means sizing proportional to the available cores
	if cfg.IORate == 0 {
		cfg.IORate = 70
	}
	if cfg.MaxFrameSize == 0 {
		cfg.MaxFrameSize = bytesize.Size(pipeline.DefaultMaxFrameSize)
	}
}

// applyMetricsDefaults sets metrics defaults. Collection is opt-in.
func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Enabled && cfg.Port == 0 {
		cfg.Port = 9090
	}
}
