package config

// Config is the top-level configuration structure for the credential
// service.
type Config struct {
	Server ServerConfig `yaml:"server"`
	OAuth  OAuthConfig  `yaml:"oauth"`
	Store  StoreConfig  `yaml:"store"`
}

// ServerConfig defines the HTTP listener for the auth endpoints.
type ServerConfig struct {
	Host  string `yaml:"host,omitempty"`  // Host to bind to (default: localhost)
	Port  int    `yaml:"port,omitempty"`  // Port for the auth HTTP endpoints (default: 8090)
	Debug bool   `yaml:"debug,omitempty"` // Enable debug logging
}

// OAuthConfig defines the provider endpoints and client identity used
// for the authorization-code and refresh-token exchanges.
type OAuthConfig struct {
	// AuthorizationEndpoint is the provider's authorize URL.
	AuthorizationEndpoint string `yaml:"authorizationEndpoint,omitempty"`

	// TokenEndpoint is the provider's token URL used for both the
	// authorization-code and refresh-token exchanges.
	TokenEndpoint string `yaml:"tokenEndpoint,omitempty"`

	// ClientID identifies this application to the provider. Overridable
	// via the OPENAI_OAUTH_CLIENT_ID environment variable.
	ClientID string `yaml:"clientID,omitempty"`

	// RedirectURI, when set, is used verbatim for the OAuth redirect.
	// When empty, it is derived per request from the inbound origin plus
	// the callback path. Overridable via OPENAI_OAUTH_REDIRECT_URI.
	RedirectURI string `yaml:"redirectURI,omitempty"`

	// Scope is the space-separated scope set requested at authorization.
	Scope string `yaml:"scope,omitempty"`
}

// StoreConfig defines where credentials live on disk.
type StoreConfig struct {
	// Path is the location of the JSON store file owned by this process.
	Path string `yaml:"path,omitempty"`

	// ExternalPaths overrides the well-known codex CLI credential file
	// locations probed by the external credential locator. When empty,
	// the built-in home-relative candidates are used.
	ExternalPaths []string `yaml:"externalPaths,omitempty"`
}
