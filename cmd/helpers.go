package cmd

import (
	"os"

	"github.com/clarois/node-banana-kie/internal/config"
	"github.com/clarois/node-banana-kie/internal/oauth"
	"github.com/clarois/node-banana-kie/pkg/logging"
)

// defaultConfigFile is looked up relative to the working directory when
// --config is not given.
const defaultConfigFile = "config.yaml"

// loadConfig initializes logging and loads the configuration shared by
// all commands.
func loadConfig(configFile string, debug bool) (config.Config, error) {
	level := logging.LevelInfo
	if debug {
		level = logging.LevelDebug
	}
	logging.Init(level, os.Stderr)

	if configFile == "" {
		configFile = defaultConfigFile
	}
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return config.Config{}, err
	}

	if cfg.Server.Debug && !debug {
		logging.Init(logging.LevelDebug, os.Stderr)
	}
	return cfg, nil
}

// buildComponents wires the credential subsystem from configuration.
func buildComponents(cfg config.Config) (*oauth.Manager, *oauth.Locator) {
	store := oauth.NewStore(cfg.Store.Path)

	paths := cfg.Store.ExternalPaths
	if len(paths) == 0 {
		paths = config.DefaultExternalPaths()
	}
	locator := oauth.NewLocator(paths)

	client := oauth.NewClient(
		cfg.OAuth.AuthorizationEndpoint,
		cfg.OAuth.TokenEndpoint,
		cfg.OAuth.ClientID,
		cfg.OAuth.Scope,
	)

	return oauth.NewManager(store, locator, client), locator
}
