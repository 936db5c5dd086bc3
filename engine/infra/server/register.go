package server

import (
	"github.com/gin-gonic/gin"

	"github.com/rexcellence/jarvis/pkg/config"
)

// RegisterRoutes mounts every HTTP route on r.
func RegisterRoutes(r *gin.Engine, cfg *config.Config, deps *Dependencies) {
	registerHealthRoutes(r, deps.Readiness)
	registerWebhookRoutes(r, cfg, deps)
	registerMetricsRoutes(r, deps)
}
