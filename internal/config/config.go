package config

import "fmt"

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

// Defaults returns a Config with sensible defaults applied.
func Defaults() Config {
	return Config{
		Service: ServiceConfig{
			Name:      "github",
			Workers:   4,
			QueueSize: 64,
		},
		GitHub: GitHubConfig{
			APIBase:        "https://api.github.com",
			GraphQLURL:     "https://api.github.com/graphql",
			TimeoutSeconds: 30,
		},
		Gateway: GatewayConfig{
			MaxLineBytes: 1024 * 1024,
		},
		Logging: LoggingConfig{
			Level: "info",
			Style: "pretty",
		},
	}
}
