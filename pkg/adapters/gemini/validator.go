package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/tillerhq/tiller/pkg/domain"
	"github.com/tillerhq/tiller/pkg/ports"
)

// Validator reviews the research brief against the user's query and issues a
// sufficient/insufficient verdict with a critique. It never routes; the
// router owns the retry decision and the attempts cap.
type Validator struct {
	client *Client
}

// NewValidator creates the validation step.
func NewValidator(client *Client) *Validator {
	return &Validator{client: client}
}

func (v *Validator) Name() domain.StepName {
	return domain.StepValidator
}

type validationAssessment struct {
	Verdict     string `json:"verdict"`
	Critique    string `json:"critique"`
	Suggestions string `json:"suggestions"`
}

var validationSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"verdict": {
			Type: genai.TypeString,
			Enum: []string{string(domain.VerdictSufficient), string(domain.VerdictInsufficient)},
		},
		"critique": {
			Type:        genai.TypeString,
			Description: "Brief critique of the research quality",
		},
		"suggestions": {
			Type:        genai.TypeString,
			Description: "Suggestions for improvement if validation is insufficient",
		},
	},
	Required: []string{"verdict", "critique"},
}

func (v *Validator) Run(ctx context.Context, state *domain.State) (*ports.StepResult, error) {
	brief := "<<missing>>"
	if state.Findings != nil {
		brief = state.Findings.Brief
	}

	contents := historyContents(state)
	contents = append(contents, genai.NewContentFromText(
		fmt.Sprintf("User query: %s\n\nResearch findings:\n%s", state.LastUserMessage(), brief), genai.RoleUser))

	var assessment validationAssessment
	if err := v.client.generateJSON(ctx, domain.StepValidator, v.client.cfg.ValidatorModel, validatorSystemPrompt, contents, validationSchema, 0.1, &assessment); err != nil {
		return nil, err
	}

	verdict, err := parseVerdict(assessment.Verdict)
	if err != nil {
		return nil, domain.NewStepError(domain.StepValidator, domain.FailureMalformedOutput, err)
	}

	v.client.logger.Debug("validation complete",
		"session_id", state.SessionID,
		"verdict", verdict,
		"attempts", state.Attempts,
	)

	critique := fmt.Sprintf("Critique: %s\n\nSuggestions: %s", assessment.Critique, assessment.Suggestions)
	return &ports.StepResult{Delta: domain.Delta{
		AppendHistory: []domain.Turn{{Role: domain.RoleAssistant, Text: critique}},
		Validation: &domain.Validation{
			Verdict:     verdict,
			Critique:    assessment.Critique,
			Suggestions: assessment.Suggestions,
		},
	}}, nil
}

func parseVerdict(raw string) (domain.Verdict, error) {
	switch domain.Verdict(raw) {
	case domain.VerdictSufficient:
		return domain.VerdictSufficient, nil
	case domain.VerdictInsufficient:
		return domain.VerdictInsufficient, nil
	default:
		return "", fmt.Errorf("unknown validation verdict %q", raw)
	}
}
