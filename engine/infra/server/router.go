package server

import (
	"context"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rexcellence/jarvis/pkg/config"
	"github.com/rexcellence/jarvis/pkg/logger"
	"github.com/rexcellence/jarvis/pkg/version"
)

func buildRouter(ctx context.Context, cfg *config.Config, deps *Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if deps.Monitoring != nil && deps.Monitoring.IsInitialized() {
		r.Use(deps.Monitoring.GinMiddleware(ctx))
	}
	r.Use(LoggerMiddleware(logger.FromContext(ctx)))
	RegisterRoutes(r, cfg, deps)
	return r
}

func (s *Server) logStartupBanner() {
	log := logger.FromContext(s.ctx)
	httpURL := fmt.Sprintf("http://%s:%d", friendlyHost(s.cfg.Server.Host), s.cfg.Server.Port)
	lines := []string{
		fmt.Sprintf("Jarvis %s", version.Get().Version),
		fmt.Sprintf("  Webhook  > %s%s", httpURL, s.cfg.Webhook.Path),
		fmt.Sprintf("  Healthz  > %s/healthz", httpURL),
	}
	if s.deps != nil && s.deps.Monitoring.IsInitialized() {
		lines = append(lines, fmt.Sprintf("  Metrics  > %s%s", httpURL, s.deps.Monitoring.Path()))
	}
	log.Info("\n" + strings.Join(lines, "\n"))
}

func friendlyHost(h string) string {
	if h == hostAny || h == "::" || h == "" {
		return hostLoopback
	}
	return h
}
