package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tcpkit/tcpkit/internal/bytesize"
	"github.com/tcpkit/tcpkit/pkg/pipeline"
)

func TestApplyDefaultsFillsZeroValues(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "stdout", cfg.Logging.Output)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, 1, cfg.Server.BossThreads)
	assert.Equal(t, 0, cfg.Server.WorkerThreads)
	assert.Equal(t, 70, cfg.Server.IORate)
	assert.Equal(t, bytesize.Size(pipeline.DefaultMaxFrameSize), cfg.Server.MaxFrameSize)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
}

func TestApplyDefaultsPreservesExplicitValues(t *testing.T) {
	cfg := &Config{
		Logging: LoggingConfig{Level: "warn", Format: "json", Output: "stderr"},
		Server: ServerConfig{
			Port:          4010,
			BossThreads:   2,
			WorkerThreads: 16,
			IORate:        40,
			MaxFrameSize:  bytesize.MiB,
		},
		ShutdownTimeout: 5 * time.Second,
	}
	ApplyDefaults(cfg)

	assert.Equal(t, "WARN", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 4010, cfg.Server.Port)
	assert.Equal(t, 2, cfg.Server.BossThreads)
	assert.Equal(t, 16, cfg.Server.WorkerThreads)
	assert.Equal(t, 40, cfg.Server.IORate)
	assert.Equal(t, bytesize.MiB, cfg.Server.MaxFrameSize)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
}

func TestMetricsPortOnlyWhenEnabled(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	assert.Equal(t, 0, cfg.Metrics.Port)

	cfg = &Config{Metrics: MetricsConfig{Enabled: true}}
	ApplyDefaults(cfg)
	assert.Equal(t, 9090, cfg.Metrics.Port)
}
