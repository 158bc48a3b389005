// Package config loads, validates, and persists tcpkit configuration.
//
// Configuration sources, in order of precedence:
//  1. Environment variables (TCPKIT_*)
//  2. Configuration file (YAML)
//  3. Default values
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/tcpkit/tcpkit/internal/bytesize"
	"github.com/tcpkit/tcpkit/pkg/server"
)

// Config is the static tcpkit configuration: the listening endpoint,
// reactor sizing, transport preference, logging, and metrics.
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Server configures the listening endpoint and reactor groups
	Server ServerConfig `mapstructure:"server" yaml:"server"`

	// Transport selects the I/O backend
	Transport TransportConfig `mapstructure:"transport" yaml:"transport"`

	// Metrics contains Prometheus metrics server configuration
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// ShutdownTimeout is the grace period for draining connections
	// during shutdown before they are force-closed
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0" yaml:"shutdown_timeout"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive)
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format specifies the log output format
	// Valid values: text, json
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output specifies where logs are written
	// Valid values: stdout, stderr, or a file path
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// ServerConfig configures the listening endpoint and reactor groups.
type ServerConfig struct {
	// BindAddress is the IP to bind to. Empty binds all interfaces.
	BindAddress string `mapstructure:"bind_address" yaml:"bind_address"`

	// Port is the TCP port to listen on
	// Default: 3000
	Port int `mapstructure:"port" validate:"min=0,max=65535" yaml:"port"`

	// BossThreads is the acceptor group size
	// Default: 1
	BossThreads int `mapstructure:"boss_threads" validate:"omitempty,min=1" yaml:"boss_threads"`

	// WorkerThreads is the worker group size
	// Default: 0 (twice the available cores)
	WorkerThreads int `mapstructure:"worker_threads" validate:"omitempty,min=1" yaml:"worker_threads,omitempty"`

	// IORate is the worker loops' io-to-task scheduling rate (1-100)
	// Default: 70
	IORate int `mapstructure:"io_rate" validate:"omitempty,min=1,max=100" yaml:"io_rate"`

	// MaxFrameSize bounds inbound frames of the default framed codec
	// Supports human-readable formats: "16MB", "4Mi", "1048576"
	// Default: 16Mi
	MaxFrameSize bytesize.Size `mapstructure:"max_frame_size" yaml:"max_frame_size"`
}

// TransportConfig selects the I/O backend.
type TransportConfig struct {
	// PreferNative asks for the Linux-native backend, subject to a
	// runtime capability probe. A failed probe falls back to the
	// portable backend with a warning.
	// Default: true
	PreferNative bool `mapstructure:"prefer_native" yaml:"prefer_native"`
}

// MetricsConfig configures the Prometheus metrics HTTP server.
// When Enabled is false, no metrics are collected (zero overhead).
type MetricsConfig struct {
	// Enabled controls whether metrics collection and the HTTP server
	// are enabled
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Port is the HTTP port for the metrics endpoint
	// Default: 9090
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`
}

// ToServer converts the server and shutdown sections into the server
// package's configuration struct.
func (c *Config) ToServer() server.Config {
	return server.Config{
		BindAddress:     c.Server.BindAddress,
		Port:            c.Server.Port,
		BossThreads:     c.Server.BossThreads,
		WorkerThreads:   c.Server.WorkerThreads,
		IORate:          c.Server.IORate,
		PreferNative:    c.Transport.PreferNative,
		ShutdownTimeout: c.ShutdownTimeout,
		MaxFrameSize:    c.Server.MaxFrameSize.Int(),
	}
}

// Load loads configuration from file, environment, and defaults.
//
// An empty configPath uses the default location. A missing file is not
// an error; defaults apply.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	found, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}
	if !found {
		return GetDefaultConfig(), nil
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration, turning a missing explicit config file
// into a user-friendly error with instructions.
func MustLoad(configPath string) (*Config, error) {
	if configPath != "" {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("configuration file not found: %s\n\n"+
				"Please create the configuration file:\n"+
				"  tcpkit config init --config %s",
				configPath, configPath)
		}
	}

	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// SaveConfig saves the configuration to the specified path in YAML.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// setupViper configures environment variable and config file handling.
// Environment variables use the TCPKIT_ prefix with underscores, e.g.
// TCPKIT_SERVER_PORT=4000, TCPKIT_LOGGING_LEVEL=DEBUG.
func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("TCPKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// readConfigFile reads the configuration file if it exists. A missing
// file is reported as found=false, not as an error.
func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

// configDecodeHooks combines the decode hooks for custom config types.
func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		sizeDecodeHook(),
		durationDecodeHook(),
	)
}

// sizeDecodeHook converts strings and numbers to bytesize.Size so
// config files can use human-readable sizes like "16Mi" or "1MB".
func sizeDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(bytesize.Size(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return bytesize.Parse(v)
		case int:
			return bytesize.Size(v), nil
		case int64:
			return bytesize.Size(v), nil
		case uint64:
			return bytesize.Size(v), nil
		case float64:
			// YAML often deserializes numbers as float64
			return bytesize.Size(v), nil
		default:
			return data, nil
		}
	}
}

// durationDecodeHook converts strings to time.Duration so config files
// can use human-readable durations like "30s" or "5m".
func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

// getConfigDir returns the configuration directory: XDG_CONFIG_HOME if
// set, otherwise ~/.config, falling back to the current directory.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "tcpkit")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "tcpkit")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}
