package runtime

import (
	"errors"
	"testing"

	"github.com/tillerhq/tiller/pkg/domain"
)

func ptr[T any](v T) *T { return &v }

func TestDecide_AfterClarifier(t *testing.T) {
	state := domain.NewState("s1")
	state.ClarityStatus = domain.ClarityNeedsClarification
	state.ClarificationQuestion = "Which company are you asking about?"

	action, err := Decide(domain.StepClarifier, state)
	if err != nil {
		t.Fatalf("Decide failed: %v", err)
	}
	if action.Kind != domain.ActionSuspend {
		t.Fatalf("expected suspend, got %s", action.Kind)
	}
	if action.Question != "Which company are you asking about?" {
		t.Errorf("unexpected question: %q", action.Question)
	}

	state.ClarityStatus = domain.ClarityClear
	action, err = Decide(domain.StepClarifier, state)
	if err != nil {
		t.Fatalf("Decide failed: %v", err)
	}
	if action.Kind != domain.ActionGoTo || action.Next != domain.StepResearcher {
		t.Errorf("expected goto researcher, got %+v", action)
	}
}

func TestDecide_ConfidenceThresholdInclusive(t *testing.T) {
	cases := []struct {
		score float64
		next  domain.StepName
	}{
		{6.0, domain.StepSynthesizer}, // Exactly at the threshold skips validation
		{5.999, domain.StepValidator},
		{9.5, domain.StepSynthesizer},
		{0, domain.StepValidator},
	}
	for _, tc := range cases {
		state := domain.NewState("s1")
		state.Confidence = ptr(tc.score)

		action, err := Decide(domain.StepResearcher, state)
		if err != nil {
			t.Fatalf("score %v: Decide failed: %v", tc.score, err)
		}
		if action.Kind != domain.ActionGoTo || action.Next != tc.next {
			t.Errorf("score %v: expected goto %s, got %+v", tc.score, tc.next, action)
		}
	}
}

func TestDecide_MissingConfidenceIsHardFailure(t *testing.T) {
	state := domain.NewState("s1")

	_, err := Decide(domain.StepResearcher, state)
	if err == nil {
		t.Fatal("expected error for missing confidence score")
	}
	var stepErr *domain.StepError
	if !errors.As(err, &stepErr) {
		t.Fatalf("expected StepError, got %T: %v", err, err)
	}
	if stepErr.Kind != domain.FailureMalformedOutput {
		t.Errorf("expected malformed_output, got %s", stepErr.Kind)
	}
}

func TestDecide_AfterValidator(t *testing.T) {
	state := domain.NewState("s1")
	state.Validation = &domain.Validation{Verdict: domain.VerdictSufficient}

	action, err := Decide(domain.StepValidator, state)
	if err != nil {
		t.Fatalf("Decide failed: %v", err)
	}
	if action.Next != domain.StepSynthesizer {
		t.Errorf("sufficient verdict should route to synthesizer, got %s", action.Next)
	}

	state.Validation.Verdict = domain.VerdictInsufficient
	action, err = Decide(domain.StepValidator, state)
	if err != nil {
		t.Fatalf("Decide failed: %v", err)
	}
	if action.Next != domain.StepResearcher {
		t.Errorf("insufficient verdict should retry research, got %s", action.Next)
	}
}

func TestDecide_AttemptsCapOverridesVerdict(t *testing.T) {
	state := domain.NewState("s1")
	state.Validation = &domain.Validation{Verdict: domain.VerdictInsufficient}
	state.Attempts = domain.MaxResearchAttempts

	action, err := Decide(domain.StepValidator, state)
	if err != nil {
		t.Fatalf("Decide failed: %v", err)
	}
	if action.Next != domain.StepSynthesizer {
		t.Errorf("attempts cap must force synthesizer, got %s", action.Next)
	}
}

func TestDecide_AfterSynthesizer(t *testing.T) {
	action, err := Decide(domain.StepSynthesizer, domain.NewState("s1"))
	if err != nil {
		t.Fatalf("Decide failed: %v", err)
	}
	if action.Kind != domain.ActionTerminate {
		t.Errorf("expected terminate, got %s", action.Kind)
	}
}

func TestDecide_UnknownStepFailsClosed(t *testing.T) {
	_, err := Decide(domain.StepName("planner"), domain.NewState("s1"))
	if !errors.Is(err, domain.ErrNoRoute) {
		t.Fatalf("expected ErrNoRoute, got %v", err)
	}
}
