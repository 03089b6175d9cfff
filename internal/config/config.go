// Package config loads and validates service configuration via Viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Job       JobConfig       `mapstructure:"job"`
	Stream    StreamConfig    `mapstructure:"stream"`
	Progress  ProgressConfig  `mapstructure:"progress"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port                     int `mapstructure:"port"`
	ReadHeaderTimeoutSeconds int `mapstructure:"read_header_timeout_seconds"`
	ShutdownTimeoutSeconds   int `mapstructure:"shutdown_timeout_seconds"`
	PageTimeoutSeconds       int `mapstructure:"page_timeout_seconds"`
}

// JobConfig shapes the simulated job.
type JobConfig struct {
	StepIntervalMs int `mapstructure:"step_interval_ms"`
	MaxIncrement   int `mapstructure:"max_increment"`
	MaxSteps       int `mapstructure:"max_steps"`
}

// StreamConfig tunes each open SSE connection.
type StreamConfig struct {
	BufferSize       int `mapstructure:"buffer_size"`
	HeartbeatSeconds int `mapstructure:"heartbeat_seconds"`
}

// ProgressConfig sizes the observability hub.
type ProgressConfig struct {
	BufferSize     int `mapstructure:"buffer_size"`
	MaxBatchEvents int `mapstructure:"max_batch_events"`
	MaxBatchWaitMs int `mapstructure:"max_batch_wait_ms"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// TelemetryConfig controls tracing setup.
type TelemetryConfig struct {
	ServiceName    string `mapstructure:"service_name"`
	TracingEnabled bool   `mapstructure:"tracing_enabled"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	OTLPInsecure   bool   `mapstructure:"otlp_insecure"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PROGRESS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("server.port", "PROGRESS_SERVER_PORT", "PORT"); err != nil {
		return Config{}, fmt.Errorf("bind port env: %w", err)
	}

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_header_timeout_seconds", 5)
	v.SetDefault("server.shutdown_timeout_seconds", 10)
	v.SetDefault("server.page_timeout_seconds", 120)
	v.SetDefault("job.step_interval_ms", 500)
	v.SetDefault("job.max_increment", 10)
	v.SetDefault("job.max_steps", 1000)
	v.SetDefault("stream.buffer_size", 64)
	v.SetDefault("stream.heartbeat_seconds", 15)
	v.SetDefault("progress.buffer_size", 1024)
	v.SetDefault("progress.max_batch_events", 100)
	v.SetDefault("progress.max_batch_wait_ms", 500)
	v.SetDefault("logging.development", true)
	v.SetDefault("telemetry.service_name", "realtime-progress")
	v.SetDefault("telemetry.tracing_enabled", false)
	v.SetDefault("telemetry.otlp_endpoint", "localhost:4318")
	v.SetDefault("telemetry.otlp_insecure", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return errors.New("server.port must be > 0")
	}
	if c.Server.PageTimeoutSeconds <= 0 {
		return errors.New("server.page_timeout_seconds must be > 0")
	}
	if c.Job.StepIntervalMs < 0 {
		return errors.New("job.step_interval_ms must be >= 0")
	}
	if c.Job.MaxIncrement <= 0 {
		return errors.New("job.max_increment must be > 0")
	}
	if c.Job.MaxSteps <= 0 {
		return errors.New("job.max_steps must be > 0")
	}
	if c.Stream.BufferSize <= 0 {
		return errors.New("stream.buffer_size must be > 0")
	}
	if c.Stream.HeartbeatSeconds < 0 {
		return errors.New("stream.heartbeat_seconds must be >= 0")
	}
	if c.Telemetry.TracingEnabled && c.Telemetry.ServiceName == "" {
		return errors.New("telemetry.service_name must be set when tracing is enabled")
	}
	if c.Telemetry.TracingEnabled && c.Telemetry.OTLPEndpoint == "" {
		return errors.New("telemetry.otlp_endpoint must be set when tracing is enabled")
	}
	return nil
}

// StepInterval is the pause between job progress steps.
func (c Config) StepInterval() time.Duration {
	return time.Duration(c.Job.StepIntervalMs) * time.Millisecond
}

// Heartbeat is the SSE keep-alive interval; zero disables heartbeats.
func (c Config) Heartbeat() time.Duration {
	return time.Duration(c.Stream.HeartbeatSeconds) * time.Second
}

// PageTimeout bounds rendering of the initial page.
func (c Config) PageTimeout() time.Duration {
	return time.Duration(c.Server.PageTimeoutSeconds) * time.Second
}

// ShutdownTimeout bounds graceful shutdown.
func (c Config) ShutdownTimeout() time.Duration {
	if c.Server.ShutdownTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Server.ShutdownTimeoutSeconds) * time.Second
}

// ReadHeaderTimeout bounds request header reads.
func (c Config) ReadHeaderTimeout() time.Duration {
	if c.Server.ReadHeaderTimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.Server.ReadHeaderTimeoutSeconds) * time.Second
}
