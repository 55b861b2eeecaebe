package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Workspace WorkspaceConfig
	Exec      ExecConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	Metrics   MetricsConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port               string        `envconfig:"PORT" default:"8000"`
	Host               string        `envconfig:"HOST" default:"0.0.0.0"`
	ShutdownTimeout    time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	CompressionEnabled bool          `envconfig:"COMPRESSION_ENABLED" default:"true"`
	// AllowOrigins applies to CORS and to websocket upgrades.
	AllowOrigins []string `envconfig:"CORS_ALLOW_ORIGINS" default:"*"`
}

// WorkspaceConfig holds the working directory all resource URIs resolve
// beneath.
type WorkspaceConfig struct {
	Dir       string `envconfig:"WORKING_DIR" default:"."`
	ChunkSize int    `envconfig:"READ_CHUNK_SIZE" default:"32768"`
}

// ExecConfig holds command execution configuration.
type ExecConfig struct {
	Shell    string        `envconfig:"EXEC_SHELL"`
	Timeout  time.Duration `envconfig:"EXEC_TIMEOUT" default:"10m"`
	JoinWait time.Duration `envconfig:"EXEC_JOIN_WAIT" default:"3s"`
	PTY      bool          `envconfig:"EXEC_PTY" default:"false"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
	// Global shares one limiter across all clients instead of one per IP.
	Global bool `envconfig:"RATE_LIMIT_GLOBAL" default:"false"`
}

// MetricsConfig holds prometheus exposition configuration.
type MetricsConfig struct {
	Enabled bool `envconfig:"METRICS_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadWithEnvFile reads variables from a dotenv file, then loads
// configuration from the environment. Variables already set in the process
// environment win over the file. A missing file is not an error.
func LoadWithEnvFile(path string) (*Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read env file %s: %w", path, err)
		}
	}
	return Load()
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:               "8000",
			Host:               "0.0.0.0",
			ShutdownTimeout:    10 * time.Second,
			CompressionEnabled: true,
			AllowOrigins:       []string{"*"},
		},
		Workspace: WorkspaceConfig{
			Dir:       ".",
			ChunkSize: 32 * 1024,
		},
		Exec: ExecConfig{
			Timeout:  10 * time.Minute,
			JoinWait: 3 * time.Second,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate rejects values the server cannot run with.
func (c *Config) Validate() error {
	if c.Workspace.Dir == "" {
		return fmt.Errorf("WORKING_DIR must not be empty")
	}
	if len(c.Server.AllowOrigins) == 0 {
		return fmt.Errorf("CORS_ALLOW_ORIGINS must not be empty")
	}
	if c.Workspace.ChunkSize <= 0 {
		return fmt.Errorf("READ_CHUNK_SIZE must be positive, got %d", c.Workspace.ChunkSize)
	}
	if c.Exec.Timeout < 0 {
		return fmt.Errorf("EXEC_TIMEOUT must not be negative")
	}
	if c.Exec.JoinWait <= 0 {
		return fmt.Errorf("EXEC_JOIN_WAIT must be positive")
	}
	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}
