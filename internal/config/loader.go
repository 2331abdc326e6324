package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/clarois/node-banana-kie/pkg/logging"

	"gopkg.in/yaml.v3"
)

const (
	// EnvClientID overrides oauth.clientID when set.
	EnvClientID = "OPENAI_OAUTH_CLIENT_ID"

	// EnvRedirectURI overrides oauth.redirectURI when set.
	EnvRedirectURI = "OPENAI_OAUTH_REDIRECT_URI"
)

// LoadConfig loads configuration from the given file path, layered over
// the defaults. A missing file is not an error; the defaults are used.
// Environment overrides are applied last.
func LoadConfig(configFilePath string) (Config, error) {
	config := GetDefaultConfig()

	data, err := os.ReadFile(configFilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Info("ConfigLoader", "No config file found at %s, using defaults", configFilePath)
			applyEnvOverrides(&config)
			return config, nil
		}
		return Config{}, fmt.Errorf("error reading config from %s: %w", configFilePath, err)
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		// config malformed
		return Config{}, fmt.Errorf("error loading config from %s: %w", configFilePath, err)
	}

	applyEnvOverrides(&config)
	logging.Info("ConfigLoader", "Loaded configuration from %s", configFilePath)
	return config, nil
}

// applyEnvOverrides applies environment variable overrides. These take
// precedence over both defaults and file values so that deployments can
// rotate the client without editing files.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv(EnvClientID); v != "" {
		config.OAuth.ClientID = v
	}
	if v := os.Getenv(EnvRedirectURI); v != "" {
		config.OAuth.RedirectURI = v
	}
}
