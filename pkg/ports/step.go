package ports

import (
	"context"

	"github.com/tillerhq/tiller/pkg/domain"
)

// Step is one reasoning stage (Clarifier, Researcher, Validator, or
// Synthesizer). Implementations are collaborators: they may call an LLM or a
// retrieval backend, both blocking and fallible. On failure they return a
// *domain.StepError and no partial result; the orchestrator never applies a
// delta from a failed run and never retries the call itself.
type Step interface {
	// Name reports which routing contract this step fulfills.
	Name() domain.StepName

	// Run consumes the current state and returns the changes it wants
	// applied. Steps must not mutate the state they receive.
	Run(ctx context.Context, state *domain.State) (*StepResult, error)
}

// StepResult carries a step's requested state changes.
type StepResult struct {
	Delta domain.Delta
}
