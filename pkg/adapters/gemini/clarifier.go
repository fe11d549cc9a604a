package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/tillerhq/tiller/pkg/domain"
	"github.com/tillerhq/tiller/pkg/ports"
)

// Clarifier decides whether the latest user message identifies a research
// subject, resolving pronouns and generic references against the history and
// the last discussed entity before asking the human for clarification.
type Clarifier struct {
	client *Client
}

// NewClarifier creates the clarity step.
func NewClarifier(client *Client) *Clarifier {
	return &Clarifier{client: client}
}

func (c *Clarifier) Name() domain.StepName {
	return domain.StepClarifier
}

type clarityResult struct {
	ClarityStatus         string `json:"clarity_status"`
	SubjectEntity         string `json:"subject_entity"`
	ClarificationQuestion string `json:"clarification_question"`
}

var claritySchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"clarity_status": {
			Type: genai.TypeString,
			Enum: []string{string(domain.ClarityClear), string(domain.ClarityNeedsClarification)},
		},
		"subject_entity": {
			Type:        genai.TypeString,
			Description: "The company the query is about, when resolvable",
		},
		"clarification_question": {
			Type:        genai.TypeString,
			Description: "Short follow-up question when clarification is needed",
		},
	},
	Required: []string{"clarity_status"},
}

func (c *Clarifier) Run(ctx context.Context, state *domain.State) (*ports.StepResult, error) {
	system := claritySystemPrompt
	if state.LastDiscussedEntity != "" {
		system += fmt.Sprintf(clarityLastDiscussedContext, state.LastDiscussedEntity)
	}

	contents := historyContents(state)
	contents = append(contents, genai.NewContentFromText(
		"Latest user query: "+state.LastUserMessage(), genai.RoleUser))

	var result clarityResult
	if err := c.client.generateJSON(ctx, domain.StepClarifier, c.client.cfg.ClarityModel, system, contents, claritySchema, 0.0, &result); err != nil {
		return nil, err
	}

	status, err := parseClarityStatus(result.ClarityStatus)
	if err != nil {
		return nil, domain.NewStepError(domain.StepClarifier, domain.FailureMalformedOutput, err)
	}

	question := result.ClarificationQuestion
	if status == domain.ClarityNeedsClarification && question == "" {
		question = defaultClarificationQuestion
	}

	c.client.logger.Debug("clarity assessed",
		"session_id", state.SessionID,
		"status", status,
		"subject", result.SubjectEntity,
	)

	subject := result.SubjectEntity
	return &ports.StepResult{Delta: domain.Delta{
		ResetTurn:             true,
		ClarityStatus:         status,
		SubjectEntity:         &subject,
		ClarificationQuestion: &question,
	}}, nil
}

func parseClarityStatus(raw string) (domain.ClarityStatus, error) {
	switch domain.ClarityStatus(raw) {
	case domain.ClarityClear:
		return domain.ClarityClear, nil
	case domain.ClarityNeedsClarification:
		return domain.ClarityNeedsClarification, nil
	default:
		return domain.ClarityUnknown, fmt.Errorf("unknown clarity status %q", raw)
	}
}
