package controllers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/unilink/internal/app/models/dto"
)

// HealthCheck probes one dependency
type HealthCheck func(ctx context.Context) error

// HealthController reports liveness and dependency health
type HealthController struct {
	checks  map[string]HealthCheck
	timeout time.Duration
	logger  zerolog.Logger
}

// NewHealthController creates a new HealthController
func NewHealthController(checks map[string]HealthCheck, logger zerolog.Logger) *HealthController {
	return &HealthController{
		checks:  checks,
		timeout: 2 * time.Second,
		logger:  logger,
	}
}

// HealthStatus is the body of the health endpoint
type HealthStatus struct {
	Status       string            `json:"status" example:"ok"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// Health runs every dependency check
// @Summary Health check
// @Description Reports ok when every dependency answers, degraded with 503 otherwise
// @Tags health
// @Produce json
// @Success 200 {object} dto.APIResponse{data=HealthStatus}
// @Failure 503 {object} dto.APIResponse{data=HealthStatus}
// @Router /health [get]
func (c *HealthController) Health(ctx *gin.Context) {
	checkCtx, cancel := context.WithTimeout(ctx.Request.Context(), c.timeout)
	defer cancel()

	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := HealthStatus{Status: "ok", Dependencies: make(map[string]string, len(names))}
	code := http.StatusOK
	for _, name := range names {
		if err := c.checks[name](checkCtx); err != nil {
			c.logger.Warn().Err(err).Str("dependency", name).Msg("Health check failed")
			status.Dependencies[name] = "down"
			status.Status = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		status.Dependencies[name] = "up"
	}

	ctx.JSON(code, dto.APIResponse{Data: status})
}

// Ping answers liveness probes
func (c *HealthController) Ping(ctx *gin.Context) {
	ctx.String(http.StatusOK, "pong")
}
