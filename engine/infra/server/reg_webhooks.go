package server

import (
	"github.com/gin-gonic/gin"

	sizemw "github.com/rexcellence/jarvis/engine/infra/server/middleware/size"
	"github.com/rexcellence/jarvis/engine/webhook"
	"github.com/rexcellence/jarvis/pkg/config"
)

func registerWebhookRoutes(r *gin.Engine, cfg *config.Config, deps *Dependencies) {
	hooks := r.Group("/")
	hooks.Use(sizemw.BodySizeLimiter(cfg.Webhook.MaxBody))
	webhook.Register(hooks, cfg.Webhook.Path, deps.Receiver)
}
