package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/gtd_shop/internal/utils"
)

var startTime = time.Now()

// HealthCheck probes one dependency.
type HealthCheck func(ctx context.Context) error

// HealthHandler provides health endpoint.
type HealthHandler struct {
	checks map[string]HealthCheck
}

// NewHealthHandler creates a new HealthHandler. A nil check is reported as disabled.
func NewHealthHandler(checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// GetHealth responds with service and dependency status.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := "healthy"
	deps := gin.H{}
	for name, check := range h.checks {
		switch {
		case check == nil:
			deps[name] = "disabled"
		case check(ctx) != nil:
			deps[name] = "disconnected"
			status = "degraded"
		default:
			deps[name] = "connected"
		}
	}

	code := 200
	if status != "healthy" {
		code = 503
	}
	utils.Success(c, code, "Service is "+status, gin.H{
		"status":       status,
		"version":      "1.0.0",
		"uptime":       int(time.Since(startTime).Seconds()),
		"dependencies": deps,
	})
}
