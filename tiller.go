package tiller

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/tillerhq/tiller/internal/runtime"
	"github.com/tillerhq/tiller/pkg/domain"
	"github.com/tillerhq/tiller/pkg/ports"
)

// Engine is the high-level entry point for the tiller library.
// It wraps the internal orchestrator and provides a simplified API for
// consumers: Start a turn, Resume a suspended one, Continue a finished
// session with the next message.
type Engine struct {
	orch   *runtime.Orchestrator
	logger *slog.Logger
	hooks  domain.LifecycleHooks
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks for the drive loop.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// New initializes an Engine over the four reasoning steps (clarifier,
// researcher, validator, synthesizer). All four must be present.
func New(steps []ports.Step, opts ...Option) (*Engine, error) {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}

	var runtimeOpts []runtime.Option
	if e.logger != nil {
		runtimeOpts = append(runtimeOpts, runtime.WithLogger(e.logger))
	}
	runtimeOpts = append(runtimeOpts, runtime.WithLifecycleHooks(e.hooks))

	orch, err := runtime.New(steps, runtimeOpts...)
	if err != nil {
		return nil, err
	}
	e.orch = orch
	return e, nil
}

// Start begins a new session with the user's first message. The outcome is
// either a completed answer or a suspension carrying a clarification question
// and the opaque handle needed to Resume.
func (e *Engine) Start(ctx context.Context, message string) (*domain.Outcome, error) {
	return e.orch.Start(ctx, nil, uuid.NewString(), message)
}

// Continue runs the next turn of a previously completed session, preserving
// the conversation history and the last discussed entity for reference
// resolution. Suspended sessions must go through Resume instead.
func (e *Engine) Continue(ctx context.Context, state *domain.State, message string) (*domain.Outcome, error) {
	return e.orch.Start(ctx, state, "", message)
}

// Resume hands the human's answer back to a suspended session. The handle
// must be the state snapshot from the suspended outcome, unmodified; a handle
// that is not suspended (or was already consumed) is rejected with
// domain.ErrNotSuspended.
func (e *Engine) Resume(ctx context.Context, handle *domain.State, answer string) (*domain.Outcome, error) {
	return e.orch.Resume(ctx, handle, answer)
}
