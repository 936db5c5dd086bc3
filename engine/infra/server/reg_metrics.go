package server

import (
	"github.com/gin-gonic/gin"
)

func registerMetricsRoutes(r *gin.Engine, deps *Dependencies) {
	if deps.Monitoring == nil || !deps.Monitoring.IsInitialized() {
		return
	}
	r.GET(deps.Monitoring.Path(), gin.WrapH(deps.Monitoring.ExporterHandler()))
}
