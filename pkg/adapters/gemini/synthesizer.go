package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/tillerhq/tiller/pkg/domain"
	"github.com/tillerhq/tiller/pkg/ports"
)

// Synthesizer turns the accumulated findings and conversation history into
// the final user-facing answer. It runs exactly once per turn, as the last
// step before the session completes.
type Synthesizer struct {
	client *Client
}

// NewSynthesizer creates the synthesis step.
func NewSynthesizer(client *Client) *Synthesizer {
	return &Synthesizer{client: client}
}

func (s *Synthesizer) Name() domain.StepName {
	return domain.StepSynthesizer
}

func (s *Synthesizer) Run(ctx context.Context, state *domain.State) (*ports.StepResult, error) {
	contents := historyContents(state)
	contents = append(contents, genai.NewContentFromText(
		synthesisInstruction(state), genai.RoleUser))

	_, answer, err := s.client.generateText(ctx, domain.StepSynthesizer, s.client.cfg.SynthesisModel, synthesisSystemPrompt, contents, nil)
	if err != nil {
		return nil, err
	}

	s.client.logger.Debug("synthesis complete",
		"session_id", state.SessionID,
		"subject", state.SubjectEntity,
		"chars", len(answer),
	)

	return &ports.StepResult{Delta: domain.Delta{
		AppendHistory: []domain.Turn{{Role: domain.RoleAssistant, Text: answer}},
		FinalResponse: &answer,
	}}, nil
}

// synthesisInstruction assembles the final generation request from the
// latest query, the research brief, and any grounding sources.
func synthesisInstruction(state *domain.State) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Latest user query: %s\n", state.LastUserMessage())
	if state.SubjectEntity != "" {
		fmt.Fprintf(&b, "Subject company: %s\n", state.SubjectEntity)
	}
	if state.Findings != nil {
		fmt.Fprintf(&b, "\nResearch findings:\n%s\n", state.Findings.Brief)
		if len(state.Findings.Sources) > 0 {
			b.WriteString("\nSources:\n")
			for _, src := range state.Findings.Sources {
				fmt.Fprintf(&b, "- %s\n", src)
			}
		}
	}
	b.WriteString("\nWrite the final answer for the user.")
	return b.String()
}
