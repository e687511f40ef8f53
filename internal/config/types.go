package config

// Config is the root configuration for the fgp-github daemon.
type Config struct {
	Service ServiceConfig `yaml:"service,omitempty"`
	GitHub  GitHubConfig  `yaml:"github,omitempty"`
	Gateway GatewayConfig `yaml:"gateway,omitempty"`
	Logging LoggingConfig `yaml:"logging,omitempty"`
}

// ServiceConfig controls the dispatch core.
type ServiceConfig struct {
	Name      string `yaml:"name,omitempty"`      // service name, used for method aliases ("github")
	Workers   int    `yaml:"workers,omitempty"`   // worker pool size for provider calls
	QueueSize int    `yaml:"queueSize,omitempty"` // pending call queue capacity
}

// GitHubConfig controls the GitHub API client.
type GitHubConfig struct {
	Token          string `yaml:"token,omitempty"` // personal access token; supports ${ENV_VAR} references
	APIBase        string `yaml:"apiBase,omitempty"`
	GraphQLURL     string `yaml:"graphqlUrl,omitempty"`
	TimeoutSeconds int    `yaml:"timeoutSeconds,omitempty"`
}

// GatewayConfig controls the daemon's listeners.
type GatewayConfig struct {
	Socket         string   `yaml:"socket,omitempty"` // unix socket path; empty uses the standard service path
	Listen         string   `yaml:"listen,omitempty"` // optional TCP address for the HTTP/WebSocket listener
	AllowedOrigins []string `yaml:"allowedOrigins,omitempty"`
	MaxLineBytes   int      `yaml:"maxLineBytes,omitempty"` // max size of a single request line
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"` // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
	Style string `yaml:"style,omitempty"` // "pretty" | "json"
}
