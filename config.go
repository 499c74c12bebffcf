package voicelive

import (
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/r4hulp/call-center-voice-agent-accelerator/shared"
)

// Environment variable keys
const (
	envKeyEndpoint         string = "AZURE_VOICE_LIVE_ENDPOINT"
	envKeyModel            string = "VOICE_LIVE_MODEL"
	envKeyAPIKey           string = "AZURE_VOICE_LIVE_API_KEY"
	envKeyIdentityClientID string = "AZURE_USER_ASSIGNED_IDENTITY_CLIENT_ID"
	envKeyMaxConnections   string = "MAX_CONNECTIONS"
)

const defaultMaxConnections = 100

// Config carries the upstream Voice Live connection settings shared by every
// relay in the process.
type Config struct {
	// Endpoint is the Azure AI resource endpoint, e.g.
	// https://my-resource.cognitiveservices.azure.com. The https scheme is
	// rewritten to wss when dialing.
	Endpoint string `json:"endpoint" yaml:"endpoint"`
	Model    string `json:"model" yaml:"model"`
	APIKey   string `json:"api_key" yaml:"api_key"`
	// IdentityClientID selects bearer authentication through the managed
	// identity endpoint instead of the static API key when set.
	IdentityClientID string `json:"identity_client_id" yaml:"identity_client_id"`
	MaxConnections   int    `json:"max_connections" yaml:"max_connections"`
}

// ConfigFromEnv builds a Config from the environment.
func ConfigFromEnv() (*Config, error) {
	cfg := new(Config)
	var err error
	if cfg.Endpoint, err = shared.Getenv(shared.GetenvString, envKeyEndpoint, true, ""); err != nil {
		return nil, err
	}
	if cfg.Model, err = shared.Getenv(shared.GetenvString, envKeyModel, true, ""); err != nil {
		return nil, err
	}
	if cfg.APIKey, err = shared.Getenv(shared.GetenvString, envKeyAPIKey, false, ""); err != nil {
		return nil, err
	}
	if cfg.IdentityClientID, err = shared.Getenv(shared.GetenvString, envKeyIdentityClientID, false, ""); err != nil {
		return nil, err
	}
	if cfg.MaxConnections, err = shared.Getenv(shared.GetenvInt, envKeyMaxConnections, false, defaultMaxConnections); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigFile reads a YAML config file.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	cfg := new(Config)
	if err := yaml.UnmarshalWithOptions(data, cfg, yaml.UseJSONUnmarshaler()); err != nil {
		return nil, fmt.Errorf("unmarshaling config file: %w", err)
	}
	if cfg.MaxConnections == 0 {
		cfg.MaxConnections = defaultMaxConnections
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return shared.ErrNoEndpoint
	}
	if c.Model == "" {
		return errors.New("no model provided")
	}
	if c.APIKey == "" && c.IdentityClientID == "" {
		return shared.ErrNoCredential
	}
	return nil
}
