package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/tillerhq/tiller/pkg/domain"
	"github.com/tillerhq/tiller/pkg/ports"
)

// Researcher gathers information about the subject entity using Gemini with
// Google Search grounding, then scores the brief with a second, independent
// assessment call. The separation is deliberate: confidence must come from a
// distinct evaluative pass, not self-reported by the generation that produced
// the findings.
type Researcher struct {
	client *Client
}

// NewResearcher creates the research step.
func NewResearcher(client *Client) *Researcher {
	return &Researcher{client: client}
}

func (r *Researcher) Name() domain.StepName {
	return domain.StepResearcher
}

type confidenceAssessment struct {
	ConfidenceScore float64 `json:"confidence_score"`
	Reasoning       string  `json:"reasoning"`
}

var confidenceSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"confidence_score": {
			Type:        genai.TypeNumber,
			Description: "Confidence from 0-10 that the research answers the query",
		},
		"reasoning": {
			Type:        genai.TypeString,
			Description: "Brief explanation of the confidence assessment",
		},
	},
	Required: []string{"confidence_score", "reasoning"},
}

func (r *Researcher) Run(ctx context.Context, state *domain.State) (*ports.StepResult, error) {
	query := state.LastUserMessage()

	var parts []string
	if state.SubjectEntity != "" {
		parts = append(parts, "Company of interest: "+state.SubjectEntity+".")
	}
	if query != "" {
		parts = append(parts, "User query: "+query)
	}
	prompt := strings.Join(parts, "\n\n")

	resp, brief, err := r.client.generateText(ctx, domain.StepResearcher, r.client.cfg.ResearchModel, researchSystemPrompt,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		&genai.GenerateContentConfig{
			Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
		})
	if err != nil {
		return nil, err
	}

	sources := groundingSources(resp)

	// Independent confidence pass over the brief.
	assessment, err := r.assess(ctx, query, brief)
	if err != nil {
		return nil, err
	}

	r.client.logger.Debug("research complete",
		"session_id", state.SessionID,
		"subject", state.SubjectEntity,
		"confidence", assessment.ConfidenceScore,
		"sources", len(sources),
	)

	subject := state.SubjectEntity
	return &ports.StepResult{Delta: domain.Delta{
		AppendHistory:       []domain.Turn{{Role: domain.RoleAssistant, Text: brief}},
		Findings:            &domain.Findings{Brief: brief, Sources: sources},
		Confidence:          &assessment.ConfidenceScore,
		LastDiscussedEntity: &subject,
	}}, nil
}

func (r *Researcher) assess(ctx context.Context, query, brief string) (*confidenceAssessment, error) {
	contents := []*genai.Content{genai.NewContentFromText(
		fmt.Sprintf("User query: %s\n\nResearch findings:\n%s", query, brief), genai.RoleUser)}

	var assessment confidenceAssessment
	if err := r.client.generateJSON(ctx, domain.StepResearcher, r.client.cfg.AssessorModel, confidenceSystemPrompt, contents, confidenceSchema, 0.0, &assessment); err != nil {
		return nil, err
	}
	if assessment.ConfidenceScore < 0 || assessment.ConfidenceScore > 10 {
		return nil, domain.NewStepError(domain.StepResearcher, domain.FailureMalformedOutput,
			fmt.Errorf("confidence score %v out of range [0,10]", assessment.ConfidenceScore))
	}
	return &assessment, nil
}

// groundingSources extracts the web URIs backing a grounded response.
func groundingSources(resp *genai.GenerateContentResponse) []string {
	var sources []string
	for _, cand := range resp.Candidates {
		if cand.GroundingMetadata == nil {
			continue
		}
		for _, chunk := range cand.GroundingMetadata.GroundingChunks {
			if chunk.Web != nil && chunk.Web.URI != "" {
				sources = append(sources, chunk.Web.URI)
			}
		}
	}
	return sources
}
