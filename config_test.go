package voicelive

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/r4hulp/call-center-voice-agent-accelerator/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigFromEnv(t *testing.T) {
	t.Setenv(envKeyEndpoint, "https://example.cognitiveservices.azure.com")
	t.Setenv(envKeyModel, "gpt-4o")
	t.Setenv(envKeyAPIKey, "secret")
	t.Setenv(envKeyMaxConnections, "25")

	cfg, err := ConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "https://example.cognitiveservices.azure.com", cfg.Endpoint)
	assert.Equal(t, "gpt-4o", cfg.Model)
	assert.Equal(t, "secret", cfg.APIKey)
	assert.Empty(t, cfg.IdentityClientID)
	assert.Equal(t, 25, cfg.MaxConnections)
}

func TestConfigFromEnvDefaults(t *testing.T) {
	t.Setenv(envKeyEndpoint, "https://example.cognitiveservices.azure.com")
	t.Setenv(envKeyModel, "gpt-4o")
	t.Setenv(envKeyIdentityClientID, "client-123")
	os.Unsetenv(envKeyAPIKey)
	os.Unsetenv(envKeyMaxConnections)

	cfg, err := ConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "client-123", cfg.IdentityClientID)
	assert.Equal(t, defaultMaxConnections, cfg.MaxConnections)
}

func TestConfigFromEnvMissingEndpoint(t *testing.T) {
	os.Unsetenv(envKeyEndpoint)
	t.Setenv(envKeyModel, "gpt-4o")
	t.Setenv(envKeyAPIKey, "secret")

	_, err := ConfigFromEnv()
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{
			name: "api key auth",
			cfg:  Config{Endpoint: "https://e", Model: "m", APIKey: "k"},
		},
		{
			name: "managed identity auth",
			cfg:  Config{Endpoint: "https://e", Model: "m", IdentityClientID: "c"},
		},
		{
			name:    "no endpoint",
			cfg:     Config{Model: "m", APIKey: "k"},
			wantErr: shared.ErrNoEndpoint,
		},
		{
			name:    "no credential",
			cfg:     Config{Endpoint: "https://e", Model: "m"},
			wantErr: shared.ErrNoCredential,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"endpoint: https://example.cognitiveservices.azure.com\n"+
			"model: gpt-4o\n"+
			"api_key: from-file\n",
	), 0o600))

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.APIKey)
	assert.Equal(t, defaultMaxConnections, cfg.MaxConnections, "zero max connections falls back to the default")
}

func TestLoadConfigFileInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("endpoint: https://e\n"), 0o600))

	_, err := LoadConfigFile(path)
	assert.Error(t, err)

	_, err = LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
