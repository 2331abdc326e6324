package config

import (
	"os"
	"path/filepath"
)

const (
	// DefaultAuthorizationEndpoint is the provider's authorize URL.
	DefaultAuthorizationEndpoint = "https://auth.openai.com/oauth/authorize"

	// DefaultTokenEndpoint is the provider's token URL.
	DefaultTokenEndpoint = "https://auth.openai.com/oauth/token"

	// DefaultClientID is the built-in OAuth client identifier used when
	// no clientID is configured.
	DefaultClientID = "app_EMoamEEZ73f0CkXaXp7hrann"

	// DefaultScope is the scope set requested at authorization. The
	// offline_access scope is what yields a refresh token.
	DefaultScope = "openid profile email offline_access"

	// DefaultStorePath is the store file location, relative to the
	// working directory of the hosting application.
	DefaultStorePath = "data/openai-auth.json"
)

// GetDefaultConfig returns the default configuration.
func GetDefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 8090,
		},
		OAuth: OAuthConfig{
			AuthorizationEndpoint: DefaultAuthorizationEndpoint,
			TokenEndpoint:         DefaultTokenEndpoint,
			ClientID:              DefaultClientID,
			Scope:                 DefaultScope,
		},
		Store: StoreConfig{
			Path: DefaultStorePath,
		},
	}
}

// DefaultExternalPaths returns the well-known credential file locations
// written by the codex CLI tooling, probed in order. The last entry is
// a legacy location kept for stores written by earlier releases.
func DefaultExternalPaths() []string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir, _ = os.Getwd()
	}
	return []string{
		filepath.Join(homeDir, ".local", "share", "opencode", "auth.json"),
		filepath.Join(homeDir, ".opencode", "auth", "openai.json"),
		filepath.Join("data", "auth.json"),
	}
}
