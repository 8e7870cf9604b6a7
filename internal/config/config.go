package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
)

// Environment variables read by the relay
const (
	APIKeyEnv     = "ELEVENLABS_API_KEY"
	APIBaseURLEnv = "ELEVENLABS_API_BASE_URL"
	TimeoutEnv    = "ELEVENLABS_TIMEOUT"
	PortEnv       = "PORT"
	LogLevelEnv   = "LOG_LEVEL"
	LogFileEnv    = "LOG_FILE"
)

const (
	defaultPort     = "8080"
	defaultLogLevel = "info"
	defaultTimeout  = 60 * time.Second
)

// Config holds process configuration. The upstream API key is deliberately
// absent: it is resolved on every request through a CredentialFunc.
type Config struct {
	Port              string
	LogLevel          string
	LogFile           string
	ElevenLabsBaseURL string
	ElevenLabsTimeout time.Duration
}

// CredentialFunc returns the upstream API key, or an empty string when none is configured
type CredentialFunc func() string

// EnvCredential reads the named environment variable on every call
func EnvCredential(key string) CredentialFunc {
	return func() string {
		return os.Getenv(key)
	}
}

// StaticCredential always returns apiKey
func StaticCredential(apiKey string) CredentialFunc {
	return func() string {
		return apiKey
	}
}

// Load reads a .env file when present and then builds the Config from the environment
func Load() (Config, error) {
	// A missing .env is normal outside local development
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds the Config from environment variables, applying defaults to
// unset values. A value that is set but unusable is reported as an error.
func FromEnv() (Config, error) {
	config := Config{
		Port:              os.Getenv(PortEnv),
		LogLevel:          os.Getenv(LogLevelEnv),
		LogFile:           os.Getenv(LogFileEnv),
		ElevenLabsBaseURL: os.Getenv(APIBaseURLEnv),
		ElevenLabsTimeout: defaultTimeout,
	}

	if config.Port == "" {
		config.Port = defaultPort
	}

	if config.LogLevel == "" {
		config.LogLevel = defaultLogLevel
	}
	if _, err := zapcore.ParseLevel(config.LogLevel); err != nil {
		return Config{}, fmt.Errorf("invalid %s %q: %w", LogLevelEnv, config.LogLevel, err)
	}

	if timeoutStr := os.Getenv(TimeoutEnv); timeoutStr != "" {
		timeout, err := time.ParseDuration(timeoutStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s %q: %w", TimeoutEnv, timeoutStr, err)
		}
		if timeout <= 0 {
			return Config{}, fmt.Errorf("invalid %s %q: must be positive", TimeoutEnv, timeoutStr)
		}
		config.ElevenLabsTimeout = timeout
	}

	return config, nil
}
