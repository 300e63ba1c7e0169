package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prefeitura-rio/app-login/internal/observability"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// HealthResponse reports the status of the service and its dependencies.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

// HealthCheck pings one dependency.
type HealthCheck func(ctx context.Context) error

// HealthHandlers serves the health endpoint.
type HealthHandlers struct {
	checks  map[string]HealthCheck
	timeout time.Duration
}

// NewHealthHandlers creates health handlers running checks with timeout each.
func NewHealthHandlers(checks map[string]HealthCheck, timeout time.Duration) *HealthHandlers {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &HealthHandlers{checks: checks, timeout: timeout}
}

// HealthCheck godoc
// @Summary Health check
// @Description Checks the service and its storage dependencies
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandlers) HealthCheck(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(c.Request.Context(), "HealthCheck")
	defer span.End()
	span.SetAttributes(attribute.String("operation", "health_check"))

	health := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Services:  make(map[string]string, len(h.checks)),
	}

	for name, check := range h.checks {
		checkCtx, cancel := context.WithTimeout(ctx, h.timeout)
		err := check(checkCtx)
		cancel()

		if err != nil {
			observability.Logger().Error("health check failed", zap.String("service", name), zap.Error(err))
			health.Status = "unhealthy"
			health.Services[name] = "unhealthy"
			continue
		}
		health.Services[name] = "healthy"
	}

	span.SetAttributes(attribute.String("health.status", health.Status))
	if health.Status != "healthy" {
		c.JSON(http.StatusServiceUnavailable, health)
		return
	}
	c.JSON(http.StatusOK, health)
}
