package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tillerhq/tiller/internal/logging"
	"github.com/tillerhq/tiller/pkg/domain"
	"github.com/tillerhq/tiller/pkg/ports"
)

// maxStepsPerPass bounds a single drive pass. The router's transition table
// already terminates (4 distinct steps, retries capped at
// MaxResearchAttempts), so hitting this limit means an internal bug.
const maxStepsPerPass = 2 + 2*(domain.MaxResearchAttempts+1)

// Orchestrator drives the step loop for one session at a time: invoke step,
// apply delta, append trace, consult the router, repeat or suspend or
// terminate. It holds no per-session state of its own, so one Orchestrator
// can serve many concurrent sessions.
type Orchestrator struct {
	steps  map[domain.StepName]ports.Step
	logger *slog.Logger
	hooks  domain.LifecycleHooks
}

// Option configures the Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets a structured logger for drive-loop events.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(o *Orchestrator) {
		o.hooks = hooks
	}
}

// New creates an Orchestrator over the four reasoning steps.
func New(steps []ports.Step, opts ...Option) (*Orchestrator, error) {
	o := &Orchestrator{
		steps:  make(map[domain.StepName]ports.Step, len(steps)),
		logger: logging.NewNop(),
	}
	for _, s := range steps {
		o.steps[s.Name()] = s
	}
	for _, opt := range opts {
		opt(o)
	}
	for _, name := range []domain.StepName{
		domain.StepClarifier,
		domain.StepResearcher,
		domain.StepValidator,
		domain.StepSynthesizer,
	} {
		if _, ok := o.steps[name]; !ok {
			return nil, fmt.Errorf("missing step: %s", name)
		}
	}
	return o, nil
}

// Start begins a new session (prior == nil) or the next turn of a finished
// one (prior.Status == StatusCompleted). It appends the user message to the
// history and enters the drive loop at the Clarifier.
func (o *Orchestrator) Start(ctx context.Context, prior *domain.State, sessionID, message string) (*domain.Outcome, error) {
	state := prior
	if state == nil {
		state = domain.NewState(sessionID)
	} else if state.Status == domain.StatusSuspended {
		return nil, fmt.Errorf("start on suspended session %s: %w", state.SessionID, domain.ErrNotSuspended)
	}
	state.Status = domain.StatusActive
	state.History = append(state.History, domain.Turn{Role: domain.RoleUser, Text: message})
	return o.drive(ctx, state)
}

// Resume continues a suspended session with the human's answer. The answer
// re-enters the Clarifier, not the Researcher: clarification answers must
// pass through the same clarity and entity-resolution logic as any other
// turn, so state updates stay consistent regardless of entry point.
func (o *Orchestrator) Resume(ctx context.Context, suspended *domain.State, answer string) (*domain.Outcome, error) {
	if suspended == nil {
		return nil, domain.ErrNotSuspended
	}
	if suspended.Status != domain.StatusSuspended || suspended.PendingQuestion == "" {
		return nil, fmt.Errorf("resume of session %q: %w", suspended.SessionID, domain.ErrNotSuspended)
	}
	state := suspended
	state.Status = domain.StatusActive
	state.PendingQuestion = ""
	state.History = append(state.History, domain.Turn{Role: domain.RoleUser, Text: answer})
	return o.drive(ctx, state)
}

// drive runs the loop until the router suspends or terminates. Any step or
// router error aborts the pass immediately; no partial delta survives a
// failed step because deltas are applied only after a successful Run.
func (o *Orchestrator) drive(ctx context.Context, state *domain.State) (*domain.Outcome, error) {
	current := domain.StepClarifier
	var passTrace []domain.StepName

	for i := 0; i < maxStepsPerPass; i++ {
		step, ok := o.steps[current]
		if !ok {
			return nil, fmt.Errorf("no step registered for %q", current)
		}

		o.emit(ctx, o.hooks.OnStepStart, domain.EventStepStart, state, current, 0)
		started := time.Now()

		result, err := step.Run(ctx, state)
		if err != nil {
			o.logger.Error("step failed", "session_id", state.SessionID, "step", current, "err", err)
			return nil, fmt.Errorf("session %s: %w", state.SessionID, err)
		}

		state.Apply(result.Delta)
		state.Trace = append(state.Trace, current)
		passTrace = append(passTrace, current)
		o.emit(ctx, o.hooks.OnStepEnd, domain.EventStepEnd, state, current, time.Since(started))

		action, err := Decide(current, state)
		if err != nil {
			o.logger.Error("routing failed", "session_id", state.SessionID, "after", current, "err", err)
			return nil, fmt.Errorf("session %s: %w", state.SessionID, err)
		}

		o.logger.Debug("routed",
			"session_id", state.SessionID,
			"after", current,
			"action", action.Kind,
			"next", action.Next,
			"attempts", state.Attempts,
		)

		switch action.Kind {
		case domain.ActionGoTo:
			// The Validator -> Researcher edge is the only retry in the
			// system; count it here so the attempts invariant is enforced by
			// the loop structure, not by the steps.
			if current == domain.StepValidator && action.Next == domain.StepResearcher {
				state.Attempts++
				o.emit(ctx, o.hooks.OnRetry, domain.EventRetry, state, action.Next, 0)
			}
			current = action.Next

		case domain.ActionSuspend:
			state.Status = domain.StatusSuspended
			state.PendingQuestion = action.Question
			o.emit(ctx, o.hooks.OnSuspend, domain.EventSuspend, state, current, 0)
			o.logger.Info("session suspended", "session_id", state.SessionID, "question", action.Question)
			return domain.Suspended(state, passTrace), nil

		case domain.ActionTerminate:
			state.Status = domain.StatusCompleted
			o.emit(ctx, o.hooks.OnComplete, domain.EventComplete, state, current, 0)
			o.logger.Info("session completed", "session_id", state.SessionID, "steps", len(passTrace))
			return domain.Completed(state, passTrace), nil

		default:
			return nil, fmt.Errorf("%w: unknown action %q after %s", domain.ErrNoRoute, action.Kind, current)
		}
	}

	return nil, fmt.Errorf("session %s exceeded %d steps in one pass", state.SessionID, maxStepsPerPass)
}

func (o *Orchestrator) emit(ctx context.Context, hook func(context.Context, *domain.StepEvent), typ domain.EventType, state *domain.State, step domain.StepName, dur time.Duration) {
	if hook == nil {
		return
	}
	hook(ctx, &domain.StepEvent{
		Timestamp: time.Now(),
		Type:      typ,
		SessionID: state.SessionID,
		Step:      step,
		Attempts:  state.Attempts,
		Duration:  dur,
	})
}
