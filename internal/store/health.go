package store

import (
	"context"

	"github.com/spigell/cv-ranker/internal/utils"
	"go.uber.org/zap"
)

const (
	StatusHealthy = "healthy"
	StatusError   = "error"
)

// HealthStatus is the answer of a probe endpoint.
type HealthStatus struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Version string `json:"version,omitempty"`
}

// OK reports whether the probe succeeded.
func (h HealthStatus) OK() bool {
	return h.Status == StatusHealthy || h.Status == "success" || h.Status == "ok" || h.Status == "connected"
}

// Health probes the API. Failures are reported in the status, never as an error.
func (c *Client) Health(ctx context.Context) HealthStatus {
	return c.probe(ctx, "/health")
}

// ProviderHealth probes the scoring provider through the API.
func (c *Client) ProviderHealth(ctx context.Context) HealthStatus {
	return c.probe(ctx, evaluationsPath+"/test-gemini")
}

func (c *Client) probe(ctx context.Context, path string) HealthStatus {
	var status HealthStatus
	if err := c.getJSON(ctx, path, nil, &status); err != nil {
		c.logger.Warn("probe failed", zap.String("path", path), zap.Error(err))
		return HealthStatus{
			Status:  StatusError,
			Message: utils.TruncateForLog(err.Error(), maxDetailLength),
		}
	}

	if status.Status == "" {
		status.Status = StatusError
		status.Message = "empty status in probe answer"
	}

	return status
}
