package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-planner-api/internal/dto"
	"github.com/noah-isme/course-planner-api/internal/service"
)

type catalogStatusReader interface {
	Status() dto.CatalogStatus
}

// MetricsHandler exposes observability endpoints.
type MetricsHandler struct {
	metrics *service.MetricsService
	catalog catalogStatusReader
}

// NewMetricsHandler constructs a metrics handler.
func NewMetricsHandler(metrics *service.MetricsService, catalog *service.CatalogService) *MetricsHandler {
	h := &MetricsHandler{metrics: metrics}
	if catalog != nil {
		h.catalog = catalog
	}
	return h
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	if h.metrics == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Health responds with a generic OK payload for liveness probes.
func (h *MetricsHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports 503 until a catalog snapshot is installed.
func (h *MetricsHandler) Ready(c *gin.Context) {
	var status dto.CatalogStatus
	if h.catalog != nil {
		status = h.catalog.Status()
	}
	body := gin.H{"status": "ready", "catalog": status}
	if h.metrics != nil {
		body["metrics"] = h.metrics.Snapshot()
	}
	if !status.Ready {
		body["status"] = "loading"
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}
	c.JSON(http.StatusOK, body)
}
