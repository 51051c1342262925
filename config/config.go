package config

import (
	"errors"
	"fmt"

	"github.com/docker/go-units"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/isdmx/runbot/sandbox"
)

// Setting keys. Each key can be set in config.yaml or through the
// environment variable listed in envBindings.
const (
	KeyServerTransport = "server.transport"
	KeyServerHTTPPort  = "server.http_port"

	KeyLoggingMode  = "logging.mode"
	KeyLoggingLevel = "logging.level"

	KeySandboxImage         = "sandbox.image"
	KeySandboxCPU           = "sandbox.cpu"
	KeySandboxMemory        = "sandbox.memory"
	KeySandboxSwap          = "sandbox.swap"
	KeySandboxMaxRuntime    = "sandbox.max_runtime_ms"
	KeySandboxInContainer   = "sandbox.in_container"
	KeySandboxNetwork       = "sandbox.network"
	KeySandboxPIDs          = "sandbox.pids"
	KeySandboxRuntime       = "sandbox.runtime"
	KeySandboxRemoteRuntime = "sandbox.remote_runtime"
)

var envBindings = map[string]string{
	KeyServerTransport:      "SERVER_TRANSPORT",
	KeyServerHTTPPort:       "SERVER_HTTP_PORT",
	KeyLoggingMode:          "LOG_MODE",
	KeyLoggingLevel:         "LOG_LEVEL",
	KeySandboxImage:         "CONTAINER_IMAGE",
	KeySandboxCPU:           "CONTAINER_CPU",
	KeySandboxMemory:        "CONTAINER_MEMORY",
	KeySandboxSwap:          "CONTAINER_SWAP",
	KeySandboxMaxRuntime:    "CONTAINER_MAX_RUNTIME",
	KeySandboxInContainer:   "IS_RUNNING_IN_CONTAINER",
	KeySandboxNetwork:       "CONTAINER_NETWORK",
	KeySandboxPIDs:          "MAX_PIDS",
	KeySandboxRuntime:       "CONTAINER_RUNTIME",
	KeySandboxRemoteRuntime: "CONTAINER_REMOTE_RUNTIME",
}

// Defaults
const (
	DefaultTransport     = "stdio"
	DefaultHTTPPort      = 8080
	DefaultLoggingMode   = "production"
	DefaultLoggingLevel  = "info"
	DefaultImage         = "ghcr.io/theconner/rustbot-runner:latest"
	DefaultCPU           = "0.5"
	DefaultMemory        = "100m"
	DefaultSwap          = "5m"
	DefaultMaxRuntimeMS  = 5000
	DefaultNetwork       = "none"
	DefaultPIDs          = 64
	DefaultRuntime       = sandbox.DefaultLocalBinary
	DefaultRemoteRuntime = sandbox.DefaultRemoteBinary
)

// Config represents the application configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
	Sandbox SandboxConfig `yaml:"sandbox"`

	// Fallbacks lists the keys whose override was rejected in favour of the default
	Fallbacks []string `yaml:"-"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Transport string `yaml:"transport"`
	HTTPPort  int    `yaml:"http_port"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Mode  string `yaml:"mode"`
	Level string `yaml:"level"`
}

// SandboxConfig holds the resolved sandbox settings
type SandboxConfig struct {
	Image         string `yaml:"image"`
	CPU           string `yaml:"cpu"`
	Memory        string `yaml:"memory"`
	Swap          string `yaml:"swap"`
	MaxRuntimeMS  uint64 `yaml:"max_runtime_ms"`
	InContainer   bool   `yaml:"in_container"`
	Network       string `yaml:"network"`
	PIDs          uint64 `yaml:"pids"`
	Runtime       string `yaml:"runtime"`
	RemoteRuntime string `yaml:"remote_runtime"`
}

// New loads and validates the application configuration
func New() (*Config, error) {
	return Load(viper.New())
}

// Load resolves the configuration from v, an optional config.yaml and the environment
func Load(v *viper.Viper) (*Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// If config file not found, continue with the environment and defaults
	}

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("error binding %s: %w", env, err)
		}
	}

	r := NewResolver(v)
	port, err := r.IntE(KeyServerHTTPPort, DefaultHTTPPort)
	if err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	config := &Config{
		Server: ServerConfig{
			Transport: r.String(KeyServerTransport, DefaultTransport),
			HTTPPort:  port,
		},
		Logging: LoggingConfig{
			Mode:  r.String(KeyLoggingMode, DefaultLoggingMode),
			Level: r.String(KeyLoggingLevel, DefaultLoggingLevel),
		},
		Sandbox: SandboxConfig{
			Image:         r.StringFunc(KeySandboxImage, DefaultImage, sandbox.IsShellSafe),
			CPU:           r.StringFunc(KeySandboxCPU, DefaultCPU, sandbox.ValidCPU),
			Memory:        r.StringFunc(KeySandboxMemory, DefaultMemory, validSize),
			Swap:          r.StringFunc(KeySandboxSwap, DefaultSwap, validSize),
			MaxRuntimeMS:  r.PositiveUint(KeySandboxMaxRuntime, DefaultMaxRuntimeMS),
			InContainer:   r.Bool(KeySandboxInContainer, false),
			Network:       r.StringFunc(KeySandboxNetwork, DefaultNetwork, sandbox.IsShellSafe),
			PIDs:          r.PositiveUint(KeySandboxPIDs, DefaultPIDs),
			Runtime:       r.StringFunc(KeySandboxRuntime, DefaultRuntime, sandbox.IsShellSafe),
			RemoteRuntime: r.StringFunc(KeySandboxRemoteRuntime, DefaultRemoteRuntime, sandbox.IsShellSafe),
		},
	}
	config.Fallbacks = r.Fallbacks()

	// Validate configuration
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return config, nil
}

// validate ensures the configuration is valid. Sandbox settings are already
// coerced by the resolver, so only a broken default can fail there.
func (c *Config) validate() error {
	if c.Server.Transport != "stdio" && c.Server.Transport != "http" {
		return fmt.Errorf("invalid server.transport: %s, must be 'stdio' or 'http'", c.Server.Transport)
	}

	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid server.http_port: %d", c.Server.HTTPPort)
	}

	if c.Logging.Mode != "production" && c.Logging.Mode != "development" {
		return fmt.Errorf("invalid logging.mode: %s, must be 'production' or 'development'", c.Logging.Mode)
	}

	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid logging.level: %s", c.Logging.Level)
	}

	if err := c.Profile().Validate(); err != nil {
		return fmt.Errorf("invalid sandbox settings: %w", err)
	}

	return nil
}

// Profile builds the sandbox profile from the resolved settings
func (c *Config) Profile() sandbox.Profile {
	return sandbox.Profile{
		CPU:          c.Sandbox.CPU,
		Memory:       c.Sandbox.Memory,
		Swap:         c.Sandbox.Swap,
		Network:      c.Sandbox.Network,
		PIDs:         c.Sandbox.PIDs,
		Image:        c.Sandbox.Image,
		MaxRuntimeMS: c.Sandbox.MaxRuntimeMS,
		InContainer:  c.Sandbox.InContainer,
		LocalBinary:  c.Sandbox.Runtime,
		RemoteBinary: c.Sandbox.RemoteRuntime,
	}
}

// NewProfile exposes Config.Profile as a constructor for dependency injection
func NewProfile(c *Config) sandbox.Profile {
	return c.Profile()
}

func validSize(s string) bool {
	n, err := units.RAMInBytes(s)
	return err == nil && n > 0 && sandbox.IsShellSafe(s)
}
