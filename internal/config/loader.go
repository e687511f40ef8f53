package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR_NAME} patterns in strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars replaces ${VAR} patterns with environment variable values.
// Unset variables are left unchanged.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return match
	})
}

// expandSensitiveFields processes environment variable references in
// credential fields so the token can be stored as ${ENV_VAR}.
func expandSensitiveFields(cfg *Config) {
	cfg.GitHub.Token = expandEnvVars(cfg.GitHub.Token)
}

// Load reads the config file, applies environment overrides, and returns
// a merged Config. Missing files produce defaults only.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(&cfg)
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, &ConfigError{Message: "failed to parse config: " + err.Error()}
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	expandSensitiveFields(&cfg)
	return cfg, nil
}

// applyDefaults fills zero-value fields with sensible defaults.
func applyDefaults(cfg *Config) {
	if cfg.Service.Name == "" {
		cfg.Service.Name = "github"
	}
	if cfg.Service.Workers == 0 {
		cfg.Service.Workers = 4
	}
	if cfg.Service.QueueSize == 0 {
		cfg.Service.QueueSize = 64
	}
	if cfg.GitHub.APIBase == "" {
		cfg.GitHub.APIBase = "https://api.github.com"
	}
	if cfg.GitHub.GraphQLURL == "" {
		cfg.GitHub.GraphQLURL = "https://api.github.com/graphql"
	}
	if cfg.GitHub.TimeoutSeconds == 0 {
		cfg.GitHub.TimeoutSeconds = 30
	}
	if cfg.Gateway.MaxLineBytes == 0 {
		cfg.Gateway.MaxLineBytes = 1024 * 1024
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Style == "" {
		cfg.Logging.Style = "pretty"
	}
}

// applyEnvOverrides reads FGP_GITHUB_* environment variables and overrides config values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FGP_GITHUB_TOKEN"); v != "" {
		cfg.GitHub.Token = v
	}
	if v := os.Getenv("FGP_GITHUB_API_BASE"); v != "" {
		cfg.GitHub.APIBase = v
	}
	if v := os.Getenv("FGP_GITHUB_SOCKET"); v != "" {
		cfg.Gateway.Socket = v
	}
	if v := os.Getenv("FGP_GITHUB_LISTEN"); v != "" {
		cfg.Gateway.Listen = v
	}
	if v := os.Getenv("FGP_GITHUB_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("FGP_GITHUB_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Service.Workers = n
		}
	}
}
