package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8090, cfg.Server.Port)
	assert.Equal(t, DefaultAuthorizationEndpoint, cfg.OAuth.AuthorizationEndpoint)
	assert.Equal(t, DefaultTokenEndpoint, cfg.OAuth.TokenEndpoint)
	assert.Equal(t, DefaultClientID, cfg.OAuth.ClientID)
	assert.Equal(t, DefaultScope, cfg.OAuth.Scope)
	assert.Equal(t, DefaultStorePath, cfg.Store.Path)
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	configYAML := `
server:
  host: 0.0.0.0
  port: 9000
  debug: true
oauth:
  clientID: app_custom
  redirectURI: https://editor.example.com/api/auth/openai/callback
store:
  path: /var/lib/editor/openai-auth.json
  externalPaths:
    - /home/user/.opencode/auth/openai.json
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(configYAML), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.True(t, cfg.Server.Debug)
	assert.Equal(t, "app_custom", cfg.OAuth.ClientID)
	assert.Equal(t, "https://editor.example.com/api/auth/openai/callback", cfg.OAuth.RedirectURI)
	assert.Equal(t, "/var/lib/editor/openai-auth.json", cfg.Store.Path)
	assert.Equal(t, []string{"/home/user/.opencode/auth/openai.json"}, cfg.Store.ExternalPaths)

	// Fields the file omits keep their defaults.
	assert.Equal(t, DefaultTokenEndpoint, cfg.OAuth.TokenEndpoint)
	assert.Equal(t, DefaultScope, cfg.OAuth.Scope)
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "error loading config")
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv(EnvClientID, "app_from_env")
	t.Setenv(EnvRedirectURI, "https://env.example.com/cb")

	configYAML := `
oauth:
  clientID: app_from_file
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(configYAML), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	// Environment wins over both file and defaults.
	assert.Equal(t, "app_from_env", cfg.OAuth.ClientID)
	assert.Equal(t, "https://env.example.com/cb", cfg.OAuth.RedirectURI)
}

func TestDefaultExternalPaths(t *testing.T) {
	paths := DefaultExternalPaths()
	require.Len(t, paths, 3)

	assert.Contains(t, paths[0], filepath.Join("opencode", "auth.json"))
	assert.Contains(t, paths[1], filepath.Join(".opencode", "auth", "openai.json"))
	assert.Equal(t, filepath.Join("data", "auth.json"), paths[2])
}
