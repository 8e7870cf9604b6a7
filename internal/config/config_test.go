package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{PortEnv, LogLevelEnv, LogFileEnv, APIBaseURLEnv, TimeoutEnv} {
		t.Setenv(key, "")
	}

	config, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8080", config.Port)
	assert.Equal(t, "info", config.LogLevel)
	assert.Empty(t, config.LogFile)
	assert.Empty(t, config.ElevenLabsBaseURL)
	assert.Equal(t, 60*time.Second, config.ElevenLabsTimeout)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv(PortEnv, "3000")
	t.Setenv(LogLevelEnv, "debug")
	t.Setenv(LogFileEnv, "/var/log/tts-relay.log")
	t.Setenv(APIBaseURLEnv, "http://localhost:9999/v1")
	t.Setenv(TimeoutEnv, "15s")

	config, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "3000", config.Port)
	assert.Equal(t, "debug", config.LogLevel)
	assert.Equal(t, "/var/log/tts-relay.log", config.LogFile)
	assert.Equal(t, "http://localhost:9999/v1", config.ElevenLabsBaseURL)
	assert.Equal(t, 15*time.Second, config.ElevenLabsTimeout)
}

func TestFromEnv_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "unparsable timeout", key: TimeoutEnv, value: "soon"},
		{name: "negative timeout", key: TimeoutEnv, value: "-5s"},
		{name: "zero timeout", key: TimeoutEnv, value: "0s"},
		{name: "unknown log level", key: LogLevelEnv, value: "loud"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(TimeoutEnv, "")
			t.Setenv(LogLevelEnv, "")
			t.Setenv(tt.key, tt.value)

			_, err := FromEnv()

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestEnvCredential_ReadsOnEveryCall(t *testing.T) {
	credential := EnvCredential(APIKeyEnv)

	t.Setenv(APIKeyEnv, "")
	assert.Empty(t, credential())

	t.Setenv(APIKeyEnv, "rotated-key")
	assert.Equal(t, "rotated-key", credential())
}

func TestStaticCredential(t *testing.T) {
	assert.Equal(t, "test-api-key", StaticCredential("test-api-key")())
	assert.Empty(t, StaticCredential("")())
}

func TestLoad_ReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, ".env"), []byte("PORT=4321\n"), 0o600)
	assert.NoError(t, err)

	wd, err := os.Getwd()
	assert.NoError(t, err)
	assert.NoError(t, os.Chdir(dir))
	defer os.Chdir(wd)

	// godotenv never overrides a variable that is already set, even to empty
	os.Unsetenv(PortEnv)
	defer os.Unsetenv(PortEnv)

	config, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "4321", config.Port)
}
