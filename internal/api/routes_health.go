package api

import (
	"github.com/gin-gonic/gin"

	"github.com/sitecms/sitecms/internal/handlers"
	"github.com/sitecms/sitecms/internal/monitoring"
)

func registerHealthRoutes(r *gin.Engine, health *monitoring.Health) {
	h := handlers.NewHealthHandler(health)
	r.GET("/", h.Summary)
	r.GET("/health", h.Summary)
	r.GET("/health/live", h.Live)
	r.GET("/health/ready", h.Ready)
}
