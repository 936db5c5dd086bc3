package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/rexcellence/jarvis/engine/orchestrator"
	"github.com/rexcellence/jarvis/pkg/logger"
)

// Error taxonomy (router maps to HTTP later)
var (
	ErrBadRequest = errors.New("bad request")
	ErrDraining   = errors.New("receiver is draining")
)

// Result is transport-agnostic processing outcome; router will translate to HTTP
type Result struct {
	Status  int
	Payload any
}

func ack(ok bool) map[string]any {
	return map[string]any{"ok": ok}
}

// Handler runs one message to completion.
type Handler interface {
	Handle(ctx context.Context, msg orchestrator.InboundMessage) *orchestrator.Outcome
}

// Receiver acknowledges chat updates and runs each accepted message in its own
// goroutine. Drain waits for those goroutines on shutdown.
type Receiver struct {
	handler Handler
	metrics *Metrics
	maxBody int64
	now     func() time.Time

	mu       sync.Mutex
	draining bool
	wg       sync.WaitGroup
}

type Option func(*Receiver)

func WithMetrics(m *Metrics) Option {
	return func(r *Receiver) {
		r.metrics = m
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Receiver) {
		r.now = now
	}
}

// NewReceiver creates a receiver that hands messages to h.
func NewReceiver(h Handler, maxBody int64, opts ...Option) *Receiver {
	r := &Receiver{handler: h, maxBody: maxBody, now: time.Now}
	if r.maxBody <= 0 {
		r.maxBody = 1 << 20
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Process reads one update from req. Once the body has been read the answer is
// 200 so the chat platform does not redeliver; the pipeline runs after the
// acknowledgement.
func (r *Receiver) Process(ctx context.Context, req *http.Request) (Result, error) {
	log := logger.FromContext(ctx)
	body, err := ReadRawJSON(req.Body, r.maxBody)
	if err != nil {
		if errors.Is(err, ErrPayloadTooLarge) {
			r.metrics.OnInvalid(ctx, reasonTooLarge)
			log.Warn("Webhook body too large", "error", err)
			return Result{Status: http.StatusRequestEntityTooLarge, Payload: ack(false)}, ErrBadRequest
		}
		r.metrics.OnInvalid(ctx, reasonInvalid)
		log.Warn("Invalid webhook body", "error", err)
		return Result{Status: http.StatusOK, Payload: ack(false)}, ErrBadRequest
	}
	r.metrics.OnReceived(ctx, len(body))
	var update Update
	if err := json.Unmarshal(body, &update); err != nil {
		r.metrics.OnInvalid(ctx, reasonInvalid)
		log.Warn("Failed to decode update", "error", err)
		return Result{Status: http.StatusOK, Payload: ack(false)}, ErrBadRequest
	}
	msg, reason, ok := update.Inbound(r.now())
	if !ok {
		r.metrics.OnIgnored(ctx, reason)
		log.Debug("Update ignored", "update_id", update.UpdateID, "reason", reason)
		return Result{Status: http.StatusOK, Payload: ack(true)}, nil
	}
	if !r.spawn(ctx, msg) {
		r.metrics.OnIgnored(ctx, reasonDraining)
		log.Warn("Update refused during shutdown", "update_id", update.UpdateID)
		return Result{Status: http.StatusServiceUnavailable, Payload: ack(false)}, ErrDraining
	}
	r.metrics.OnAccepted(ctx)
	return Result{Status: http.StatusOK, Payload: ack(true)}, nil
}

func (r *Receiver) spawn(ctx context.Context, msg orchestrator.InboundMessage) bool {
	r.mu.Lock()
	if r.draining {
		r.mu.Unlock()
		return false
	}
	r.wg.Add(1)
	r.mu.Unlock()
	ctx = context.WithoutCancel(ctx)
	r.metrics.IncrementPending(ctx)
	go func() {
		defer r.wg.Done()
		defer r.metrics.DecrementPending(ctx)
		start := r.now()
		out := r.handler.Handle(ctx, msg)
		r.metrics.ObservePipeline(ctx, string(out.State), r.now().Sub(start))
	}()
	return true
}

// Drain stops accepting messages and waits for the running pipelines or for
// ctx to end, whichever comes first.
func (r *Receiver) Drain(ctx context.Context) error {
	r.mu.Lock()
	r.draining = true
	r.mu.Unlock()
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
