// Package testutils provides deterministic step fakes for exercising the
// orchestration loop without any LLM collaborator.
package testutils

import (
	"context"
	"strings"

	"github.com/tillerhq/tiller/pkg/domain"
	"github.com/tillerhq/tiller/pkg/ports"
)

// StepFunc adapts a function into a ports.Step.
type StepFunc struct {
	StepName domain.StepName
	Fn       func(ctx context.Context, state *domain.State) (*ports.StepResult, error)
	Calls    int
}

func (s *StepFunc) Name() domain.StepName { return s.StepName }

func (s *StepFunc) Run(ctx context.Context, state *domain.State) (*ports.StepResult, error) {
	s.Calls++
	return s.Fn(ctx, state)
}

func ptr[T any](v T) *T { return &v }

// KeywordClarifier is a scripted clarifier with the same observable contract
// as the real one: it resets per-turn fields, extracts an entity from the
// latest user message against a known-entity list, and resolves pronouns and
// generic references using LastDiscussedEntity and the history before asking
// for clarification.
func KeywordClarifier(known ...string) *StepFunc {
	return &StepFunc{
		StepName: domain.StepClarifier,
		Fn: func(ctx context.Context, state *domain.State) (*ports.StepResult, error) {
			msg := strings.ToLower(state.LastUserMessage())
			delta := domain.Delta{ResetTurn: true}

			resolve := func(entity string) *ports.StepResult {
				delta.ClarityStatus = domain.ClarityClear
				delta.SubjectEntity = ptr(entity)
				return &ports.StepResult{Delta: delta}
			}

			for _, entity := range known {
				if strings.Contains(msg, strings.ToLower(entity)) {
					return resolve(entity), nil
				}
			}

			// "the other one" refers to the discussed entity that is not the
			// most recent; plain pronouns default to the most recent.
			if strings.Contains(msg, "other one") && state.LastDiscussedEntity != "" {
				for i := len(state.History) - 1; i >= 0; i-- {
					text := strings.ToLower(state.History[i].Text)
					for _, entity := range known {
						if entity != state.LastDiscussedEntity && strings.Contains(text, strings.ToLower(entity)) {
							return resolve(entity), nil
						}
					}
				}
			}
			if state.LastDiscussedEntity != "" {
				for _, pronoun := range []string{"they", "their", "them", "the company", "that company"} {
					if strings.Contains(msg, pronoun) {
						return resolve(state.LastDiscussedEntity), nil
					}
				}
			}

			delta.ClarityStatus = domain.ClarityNeedsClarification
			delta.SubjectEntity = ptr("")
			delta.ClarificationQuestion = ptr("Which company are you asking about?")
			return &ports.StepResult{Delta: delta}, nil
		},
	}
}

// ScoredResearcher returns findings about the current subject with the given
// confidence scores, one per invocation (the last score repeats). It records
// the subject as LastDiscussedEntity, like the real researcher does on
// success.
func ScoredResearcher(scores ...float64) *StepFunc {
	call := 0
	return &StepFunc{
		StepName: domain.StepResearcher,
		Fn: func(ctx context.Context, state *domain.State) (*ports.StepResult, error) {
			score := scores[min(call, len(scores)-1)]
			call++
			brief := "Research brief on " + state.SubjectEntity
			return &ports.StepResult{Delta: domain.Delta{
				AppendHistory:       []domain.Turn{{Role: domain.RoleAssistant, Text: brief}},
				Findings:            &domain.Findings{Brief: brief},
				Confidence:          ptr(score),
				LastDiscussedEntity: ptr(state.SubjectEntity),
			}}, nil
		},
	}
}

// FailingResearcher simulates a collaborator failure of the given kind.
func FailingResearcher(kind domain.FailureKind, msg string) *StepFunc {
	return &StepFunc{
		StepName: domain.StepResearcher,
		Fn: func(ctx context.Context, state *domain.State) (*ports.StepResult, error) {
			return nil, domain.NewStepError(domain.StepResearcher, kind, errStr(msg))
		},
	}
}

// VerdictValidator returns the given verdicts, one per invocation (the last
// repeats).
func VerdictValidator(verdicts ...domain.Verdict) *StepFunc {
	call := 0
	return &StepFunc{
		StepName: domain.StepValidator,
		Fn: func(ctx context.Context, state *domain.State) (*ports.StepResult, error) {
			verdict := verdicts[min(call, len(verdicts)-1)]
			call++
			return &ports.StepResult{Delta: domain.Delta{
				Validation: &domain.Validation{Verdict: verdict, Critique: "scripted critique"},
			}}, nil
		},
	}
}

// EchoSynthesizer produces a final response naming the subject and findings.
func EchoSynthesizer() *StepFunc {
	return &StepFunc{
		StepName: domain.StepSynthesizer,
		Fn: func(ctx context.Context, state *domain.State) (*ports.StepResult, error) {
			answer := "Here is what I found about " + state.SubjectEntity + "."
			return &ports.StepResult{Delta: domain.Delta{
				AppendHistory: []domain.Turn{{Role: domain.RoleAssistant, Text: answer}},
				FinalResponse: ptr(answer),
			}}, nil
		},
	}
}

// Steps bundles a full scripted pipeline for the common happy-path setup.
func Steps(clarifier, researcher, validator, synthesizer *StepFunc) []ports.Step {
	return []ports.Step{clarifier, researcher, validator, synthesizer}
}

type errStr string

func (e errStr) Error() string { return string(e) }
