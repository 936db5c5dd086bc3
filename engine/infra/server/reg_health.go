package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rexcellence/jarvis/pkg/version"
)

const (
	rootBanner     = "Jarvis backend opérationnel ✔️"
	statusOK       = "ok"
	statusDegraded = "degraded"
)

func registerHealthRoutes(r *gin.Engine, readiness Readiness) {
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, rootBanner)
	})
	r.GET("/healthz", CreateHealthHandler(readiness, version.Get().Version))
}

// CreateHealthHandler reports which dependencies are configured. A missing
// dependency degrades the pipeline without stopping it, so the status code
// stays 200.
func CreateHealthHandler(readiness Readiness, ver string) gin.HandlerFunc {
	status := statusOK
	if !readiness.Ready() {
		status = statusDegraded
	}
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     status,
			"version":    ver,
			"classifier": readiness.Classifier,
			"telegram":   readiness.Telegram,
			"sink":       readiness.Sink,
		})
	}
}
