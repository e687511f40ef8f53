package service

import (
	"context"
	"time"
)

// HealthStatus describes one probed dependency.
type HealthStatus struct {
	Healthy   bool   `json:"healthy"`
	LatencyMS int64  `json:"latency_ms,omitempty"`
	Error     string `json:"error,omitempty"`
}

const healthProbeTimeout = 5 * time.Second

// HealthCheck probes the GitHub API through the bridge so the probe competes
// for the same workers real calls use.
func (s *Service) HealthCheck() map[string]HealthStatus {
	start := time.Now()
	_, err := s.bridge.Do(func(ctx context.Context) (any, error) {
		ctx, cancel := context.WithTimeout(ctx, healthProbeTimeout)
		defer cancel()
		return s.api.Ping(ctx)
	})
	elapsed := time.Since(start).Milliseconds()

	// A reachable API with an empty viewer login is still healthy; only a
	// failed round trip degrades the status.
	status := HealthStatus{Healthy: true, LatencyMS: elapsed}
	if err != nil {
		status = HealthStatus{Healthy: false, LatencyMS: elapsed, Error: err.Error()}
	}
	return map[string]HealthStatus{"github_api": status}
}
