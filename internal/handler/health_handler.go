package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nexus-club/admin-api/internal/service"
)

type dbPinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler exposes liveness, readiness and Prometheus endpoints.
type HealthHandler struct {
	db        dbPinger
	cachePing func(ctx context.Context) error
	metrics   *service.MetricsService
	timeout   time.Duration
}

// NewHealthHandler constructs a health handler. cachePing may be nil when the
// cache is disabled.
func NewHealthHandler(db dbPinger, cachePing func(ctx context.Context) error, metrics *service.MetricsService) *HealthHandler {
	return &HealthHandler{db: db, cachePing: cachePing, metrics: metrics, timeout: 2 * time.Second}
}

// Health godoc
// @Summary Liveness probe
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready godoc
// @Summary Readiness probe
// @Description Pings PostgreSQL and, when enabled, Redis
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	checks := gin.H{}
	healthy := true

	start := time.Now()
	err := h.db.PingContext(ctx)
	h.metrics.ObserveDBQuery("ping", time.Since(start))
	checks["database"] = statusOf(err)
	if err != nil {
		healthy = false
		_ = c.Error(err)
	}

	if h.cachePing != nil {
		err := h.cachePing(ctx)
		checks["cache"] = statusOf(err)
		if err != nil {
			healthy = false
			_ = c.Error(err)
		}
	}

	status := http.StatusOK
	checks["status"] = "ok"
	if !healthy {
		status = http.StatusServiceUnavailable
		checks["status"] = "degraded"
	}
	c.JSON(status, checks)
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *HealthHandler) Prometheus(c *gin.Context) {
	if h.metrics == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

func statusOf(err error) string {
	if err != nil {
		return "down"
	}
	return "up"
}
