package orchestrator

import (
	"context"
	"slices"
	"time"

	"github.com/looplab/fsm"

	"github.com/rexcellence/jarvis/pkg/logger"
)

// State is a step of the per-message pipeline.
type State string

const (
	StateReceived   State = "received"
	StateClassified State = "classified"
	StateNormalized State = "normalized"
	StateDispatched State = "dispatched"
	StateDegraded   State = "degraded"
)

const (
	EventClassified          = "classified"
	EventClassifyUnavailable = "classify_unavailable"
	EventNormalized          = "normalized"
	EventDispatched          = "dispatched"
)

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return s == StateDispatched || s == StateDegraded
}

func pipelineEvents() fsm.Events {
	return fsm.Events{
		{Name: EventClassified, Src: []string{string(StateReceived)}, Dst: string(StateClassified)},
		{Name: EventClassifyUnavailable, Src: []string{string(StateReceived)}, Dst: string(StateDegraded)},
		{Name: EventNormalized, Src: []string{string(StateClassified)}, Dst: string(StateNormalized)},
		{Name: EventDispatched, Src: []string{string(StateNormalized)}, Dst: string(StateDispatched)},
	}
}

// isValidTransition reports whether the event table allows from -> to.
func isValidTransition(from, to State) bool {
	for _, e := range pipelineEvents() {
		if e.Dst == string(to) && slices.Contains(e.Src, string(from)) {
			return true
		}
	}
	return false
}

// newPipelineFSM builds the state machine of one message. onEnter is called
// with every state entered after the initial one.
func newPipelineFSM(ctx context.Context, onEnter func(State)) *fsm.FSM {
	observer := newTransitionObserver(ctx)
	return fsm.NewFSM(
		string(StateReceived),
		pipelineEvents(),
		fsm.Callbacks{
			"before_event": func(cbCtx context.Context, e *fsm.Event) { observer.BeforeEvent(cbCtx, e) },
			"after_event":  func(cbCtx context.Context, e *fsm.Event) { observer.AfterEvent(cbCtx, e) },
			"enter_state": func(_ context.Context, e *fsm.Event) {
				if onEnter != nil {
					onEnter(State(e.Dst))
				}
			},
		},
	)
}

type transitionObserver struct {
	now     func() time.Time
	baseCtx context.Context
	entered time.Time
}

func newTransitionObserver(ctx context.Context) *transitionObserver {
	o := &transitionObserver{now: time.Now, baseCtx: ctx}
	o.entered = o.now()
	return o
}

func (o *transitionObserver) resolveContext(cbCtx context.Context) context.Context {
	if cbCtx != nil {
		return cbCtx
	}
	if o.baseCtx != nil {
		return o.baseCtx
	}
	return context.TODO()
}

func (o *transitionObserver) BeforeEvent(cbCtx context.Context, e *fsm.Event) {
	logger.FromContext(o.resolveContext(cbCtx)).Debug(
		"Pipeline transition start",
		"event", e.Event,
		"from_state", e.Src,
		"to_state", e.Dst,
	)
}

// AfterEvent logs the transition with the time spent in the source state.
func (o *transitionObserver) AfterEvent(cbCtx context.Context, e *fsm.Event) {
	now := o.now()
	logger.FromContext(o.resolveContext(cbCtx)).Debug(
		"Pipeline transition complete",
		"event", e.Event,
		"from_state", e.Src,
		"to_state", e.Dst,
		"duration_ms", now.Sub(o.entered).Milliseconds(),
	)
	o.entered = now
}
