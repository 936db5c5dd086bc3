package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/looplab/fsm"
	"golang.org/x/sync/errgroup"

	"github.com/rexcellence/jarvis/engine/classifier"
	"github.com/rexcellence/jarvis/engine/delivery"
	"github.com/rexcellence/jarvis/engine/taskplan"
	"github.com/rexcellence/jarvis/pkg/logger"
)

// FallbackReply is sent to the sender when no classification is available.
const FallbackReply = "Je n'arrive pas à analyser ta demande pour le moment, je reviens vers toi vite."

// DefaultSource identifies this service in sink envelopes.
const DefaultSource = "orchestrator"

// InboundMessage is one chat message accepted for processing.
type InboundMessage struct {
	UpdateID   int64
	ChatID     int64
	SenderName string
	Username   string
	RawText    string
	ReceivedAt time.Time
}

// Classifier turns text into a plan candidate.
type Classifier interface {
	Classify(ctx context.Context, rawText string) (*taskplan.Candidate, error)
}

// Deliverer performs the two outbound deliveries.
type Deliverer interface {
	ReplyToSender(ctx context.Context, chatID int64, text string) error
	ForwardToSink(ctx context.Context, env delivery.Envelope) error
}

// Outcome records how one message went through the pipeline.
type Outcome struct {
	CorrelationID string
	State         State
	Path          []State
	Plan          taskplan.TaskPlan
	Reply         string
	ClassifyErr   error
	ReplyErr      error
	SinkErr       error
	Coercions     []taskplan.FieldReport
}

// Degraded reports whether the message took the degraded path.
func (o *Outcome) Degraded() bool {
	return o.State == StateDegraded
}

// Coordinator runs the classify, normalize and dispatch pipeline for one
// message at a time. It holds no per-message state and may be shared.
type Coordinator struct {
	classifier Classifier
	deliverer  Deliverer
	metrics    *Metrics
	source     string
	now        func() time.Time
}

type Option func(*Coordinator)

func WithMetrics(m *Metrics) Option {
	return func(c *Coordinator) {
		c.metrics = m
	}
}

// WithSource sets the source field of sink envelopes.
func WithSource(source string) Option {
	return func(c *Coordinator) {
		if source != "" {
			c.source = source
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		c.now = now
	}
}

func NewCoordinator(cl Classifier, d Deliverer, opts ...Option) *Coordinator {
	c := &Coordinator{
		classifier: cl,
		deliverer:  d,
		source:     DefaultSource,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Handle processes msg to a terminal state. Cancellation of ctx does not stop
// the pipeline; every external call is bounded by its own timeout instead.
func (c *Coordinator) Handle(ctx context.Context, msg InboundMessage) *Outcome {
	ctx = context.WithoutCancel(ctx)
	out := &Outcome{CorrelationID: uuid.NewString(), State: StateReceived, Path: []State{StateReceived}}
	log := logger.FromContext(ctx).With("correlation_id", out.CorrelationID, "chat_id", msg.ChatID)
	ctx = logger.ContextWithLogger(ctx, log)
	c.metrics.addInFlight(ctx, 1)
	defer c.metrics.addInFlight(ctx, -1)
	machine := newPipelineFSM(ctx, func(s State) {
		out.State = s
		out.Path = append(out.Path, s)
	})

	start := c.now()
	candidate, err := c.classifier.Classify(ctx, msg.RawText)
	out.ClassifyErr = err
	switch {
	case err == nil:
		c.metrics.recordClassify(ctx, classifyResultOK, c.now().Sub(start))
	case errors.Is(err, classifier.ErrMalformedOutput):
		c.metrics.recordClassify(ctx, classifyResultMalformed, c.now().Sub(start))
		log.Warn("Classifier output malformed, continuing with defaults", "error", err)
	default:
		c.metrics.recordClassify(ctx, classifyResultUnavailable, c.now().Sub(start))
		log.Error("Classifier unavailable, taking degraded path", "error", err)
	}

	if err != nil && !errors.Is(err, classifier.ErrMalformedOutput) {
		c.fire(ctx, machine, EventClassifyUnavailable)
		out.Plan = taskplan.DiagnosticPlan(FallbackReply)
		out.Reply = FallbackReply
	} else {
		if candidate == nil {
			candidate = taskplan.EmptyCandidate()
		}
		c.fire(ctx, machine, EventClassified)
		out.Plan, out.Coercions = c.normalize(ctx, candidate)
		out.Reply = out.Plan.NaturalReply
		c.fire(ctx, machine, EventNormalized)
	}

	c.dispatch(ctx, msg, out)
	if !out.State.Terminal() {
		c.fire(ctx, machine, EventDispatched)
	}
	c.metrics.recordOutcome(ctx, out.State)
	log.Info("Message processed",
		"state", out.State,
		"intent", out.Plan.Intent,
		"tasks", len(out.Plan.Tasks),
		"coercions", len(out.Coercions),
		"reply_ok", out.ReplyErr == nil,
		"sink_ok", out.SinkErr == nil,
	)
	return out
}

// normalize validates and repairs the candidate. A plan that still breaks an
// invariant is replaced by the diagnostic plan.
func (c *Coordinator) normalize(ctx context.Context, candidate *taskplan.Candidate) (taskplan.TaskPlan, []taskplan.FieldReport) {
	report := taskplan.Validate(candidate)
	coercions := report.Coercions()
	c.metrics.recordCoercions(ctx, coercions)
	if len(coercions) > 0 {
		logger.FromContext(ctx).Debug("Classifier output coerced", "fields", len(coercions), "schema_conforms", report.Conforms)
	}
	plan := taskplan.Normalize(candidate, report)
	if err := taskplan.Check(ctx, &plan); err != nil {
		logger.FromContext(ctx).Error("Normalized plan rejected, using diagnostic plan", "error", err)
		plan = taskplan.DiagnosticPlan(plan.NaturalReply)
	}
	return plan, coercions
}

// dispatch attempts both deliveries concurrently. Their failures are recorded
// on out and never change the pipeline state.
func (c *Coordinator) dispatch(ctx context.Context, msg InboundMessage, out *Outcome) {
	env := delivery.NewEnvelope(c.source, msg.ChatID, msg.SenderName, msg.RawText, out.Plan, c.now())
	var g errgroup.Group
	g.Go(func() error {
		out.ReplyErr = c.deliverer.ReplyToSender(ctx, msg.ChatID, out.Reply)
		return nil
	})
	g.Go(func() error {
		out.SinkErr = c.deliverer.ForwardToSink(ctx, env)
		return nil
	})
	_ = g.Wait()
}

func (c *Coordinator) fire(ctx context.Context, machine *fsm.FSM, event string) {
	if err := machine.Event(ctx, event); err != nil {
		logger.FromContext(ctx).Error("Invalid pipeline transition", "event", event, "state", machine.Current(), "error", err)
	}
}
