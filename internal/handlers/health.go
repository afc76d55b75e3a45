package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sitecms/sitecms/internal/monitoring"
	apperrors "github.com/sitecms/sitecms/pkg/errors"
	"github.com/sitecms/sitecms/pkg/response"
)

var errServiceUnavailable = apperrors.New("SERVICE_UNAVAILABLE", "Service unavailable", http.StatusServiceUnavailable)

// HealthHandler exposes liveness and readiness probes.
type HealthHandler struct {
	health *monitoring.Health
}

func NewHealthHandler(health *monitoring.Health) *HealthHandler {
	if health == nil {
		health = monitoring.NewHealth(0)
	}
	return &HealthHandler{health: health}
}

// GET /health
func (h *HealthHandler) Summary(c *gin.Context) {
	report := h.health.Readiness(requestContext(c))
	if !report.Success {
		response.Error(c, errServiceUnavailable.WithInternal(fmt.Errorf("readiness %s", report.Status)))
		return
	}
	response.Success(c, http.StatusOK, "OK", gin.H{
		"status":     report.Status,
		"checked_at": time.Now().UTC(),
	})
}

// GET /health/live
func (h *HealthHandler) Live(c *gin.Context) {
	writeHealthReport(c, h.health.Liveness(requestContext(c)))
}

// GET /health/ready
func (h *HealthHandler) Ready(c *gin.Context) {
	writeHealthReport(c, h.health.Readiness(requestContext(c)))
}

func writeHealthReport(c *gin.Context, report monitoring.Report) {
	status := http.StatusOK
	if !report.Success {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{
		"success":    report.Success,
		"status":     report.Status,
		"checks":     report.Checks,
		"checked_at": time.Now().UTC(),
	})
}
