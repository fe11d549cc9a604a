package runtime

import (
	"errors"
	"fmt"

	"github.com/tillerhq/tiller/pkg/domain"
)

// Decide is the pure routing function: given the step that just ran and the
// state it produced, it returns the next action. It never mutates the state.
//
// The transition table is closed. There is no path back to the Clarifier
// except resume-from-suspension, and the attempts cap is a hard override that
// guarantees termination regardless of the Validator's verdict.
func Decide(prev domain.StepName, state *domain.State) (domain.Action, error) {
	switch prev {
	case domain.StepClarifier:
		if state.ClarityStatus == domain.ClarityNeedsClarification {
			return domain.Suspend(state.ClarificationQuestion), nil
		}
		return domain.GoTo(domain.StepResearcher), nil

	case domain.StepResearcher:
		if state.Confidence == nil {
			// The Researcher contract requires an independent confidence
			// assessment; its absence is a collaborator failure, not a
			// routing choice.
			return domain.Action{}, domain.NewStepError(
				domain.StepResearcher,
				domain.FailureMalformedOutput,
				errors.New("researcher produced no confidence score"),
			)
		}
		if *state.Confidence >= domain.ConfidenceThreshold {
			return domain.GoTo(domain.StepSynthesizer), nil
		}
		return domain.GoTo(domain.StepValidator), nil

	case domain.StepValidator:
		if state.Validation == nil {
			return domain.Action{}, domain.NewStepError(
				domain.StepValidator,
				domain.FailureMalformedOutput,
				errors.New("validator produced no assessment"),
			)
		}
		if state.Validation.Verdict == domain.VerdictSufficient || state.Attempts >= domain.MaxResearchAttempts {
			return domain.GoTo(domain.StepSynthesizer), nil
		}
		return domain.GoTo(domain.StepResearcher), nil

	case domain.StepSynthesizer:
		return domain.Terminate(), nil

	default:
		return domain.Action{}, fmt.Errorf("%w for step %q", domain.ErrNoRoute, prev)
	}
}
