package config

import (
	"fmt"
	"net"
	"slices"
)

// ValidationIssue describes a problem with a config value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks a Config for issues. Returns nil if valid.
func Validate(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue

	// Service validation
	if cfg.Service.Name == "" {
		issues = append(issues, ValidationIssue{
			Path:    "service.name",
			Message: "name is required",
		})
	}
	if cfg.Service.Workers < 1 {
		issues = append(issues, ValidationIssue{
			Path:    "service.workers",
			Message: fmt.Sprintf("workers must be at least 1, got %d", cfg.Service.Workers),
		})
	}
	if cfg.Service.QueueSize < 1 {
		issues = append(issues, ValidationIssue{
			Path:    "service.queueSize",
			Message: fmt.Sprintf("queueSize must be at least 1, got %d", cfg.Service.QueueSize),
		})
	}

	// GitHub validation
	if cfg.GitHub.TimeoutSeconds < 1 {
		issues = append(issues, ValidationIssue{
			Path:    "github.timeoutSeconds",
			Message: fmt.Sprintf("timeout must be at least 1 second, got %d", cfg.GitHub.TimeoutSeconds),
		})
	}

	// Gateway validation
	if cfg.Gateway.Listen != "" {
		if _, _, err := net.SplitHostPort(cfg.Gateway.Listen); err != nil {
			issues = append(issues, ValidationIssue{
				Path:    "gateway.listen",
				Message: fmt.Sprintf("must be a host:port address, got %q", cfg.Gateway.Listen),
			})
		}
	}
	if cfg.Gateway.MaxLineBytes < 1024 {
		issues = append(issues, ValidationIssue{
			Path:    "gateway.maxLineBytes",
			Message: fmt.Sprintf("must be at least 1024, got %d", cfg.Gateway.MaxLineBytes),
		})
	}

	// Logging validation
	validLogLevels := []string{"silent", "fatal", "error", "warn", "info", "debug", "trace"}
	if cfg.Logging.Level != "" && !slices.Contains(validLogLevels, cfg.Logging.Level) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.level",
			Message: fmt.Sprintf("must be one of %v, got %q", validLogLevels, cfg.Logging.Level),
		})
	}

	validStyles := []string{"pretty", "json"}
	if cfg.Logging.Style != "" && !slices.Contains(validStyles, cfg.Logging.Style) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.style",
			Message: fmt.Sprintf("must be one of %v, got %q", validStyles, cfg.Logging.Style),
		})
	}

	return issues
}
