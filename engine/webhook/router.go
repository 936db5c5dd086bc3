package webhook

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rexcellence/jarvis/pkg/logger"
)

// Processor defines the minimal interface required by the HTTP router.
// It is implemented by Receiver.
type Processor interface {
	Process(ctx context.Context, r *http.Request) (Result, error)
}

// Register mounts the chat webhook at path.
func Register(r gin.IRoutes, path string, p Processor) {
	r.POST(path, func(c *gin.Context) {
		res, err := p.Process(c.Request.Context(), c.Request)
		if err != nil && !errors.Is(err, ErrBadRequest) && !errors.Is(err, ErrDraining) {
			logger.FromContext(c.Request.Context()).Error("webhook processing failed", "error", err)
		}
		if res.Status == 0 {
			res.Status = http.StatusOK
		}
		if res.Payload == nil {
			res.Payload = ack(err == nil)
		}
		c.JSON(res.Status, res.Payload)
	})
}
