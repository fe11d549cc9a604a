package gemini

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/tillerhq/tiller/pkg/domain"
)

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(context.Background(), Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}

func TestConfig_WithDefaults(t *testing.T) {
	cfg := Config{APIKey: "k"}.withDefaults()
	assert.NotEmpty(t, cfg.ClarityModel)
	assert.NotEmpty(t, cfg.ResearchModel)
	assert.NotEmpty(t, cfg.AssessorModel)
	assert.NotEmpty(t, cfg.ValidatorModel)
	assert.NotEmpty(t, cfg.SynthesisModel)

	custom := Config{APIKey: "k", ResearchModel: "gemini-exp"}.withDefaults()
	assert.Equal(t, "gemini-exp", custom.ResearchModel)
}

func TestParseClarityStatus(t *testing.T) {
	status, err := parseClarityStatus("clear")
	require.NoError(t, err)
	assert.Equal(t, domain.ClarityClear, status)

	status, err = parseClarityStatus("needs_clarification")
	require.NoError(t, err)
	assert.Equal(t, domain.ClarityNeedsClarification, status)

	_, err = parseClarityStatus("maybe")
	assert.Error(t, err)

	_, err = parseClarityStatus("")
	assert.Error(t, err)
}

func TestParseVerdict(t *testing.T) {
	verdict, err := parseVerdict("sufficient")
	require.NoError(t, err)
	assert.Equal(t, domain.VerdictSufficient, verdict)

	verdict, err = parseVerdict("insufficient")
	require.NoError(t, err)
	assert.Equal(t, domain.VerdictInsufficient, verdict)

	_, err = parseVerdict("meh")
	assert.Error(t, err)
}

func TestHistoryContents_RoleMapping(t *testing.T) {
	state := domain.NewState("s1")
	state.History = []domain.Turn{
		{Role: domain.RoleUser, Text: "Tell me about Infosys"},
		{Role: domain.RoleAssistant, Text: "Infosys is an IT services company."},
	}

	contents := historyContents(state)
	require.Len(t, contents, 2)
	assert.Equal(t, genai.Role(genai.RoleUser), genai.Role(contents[0].Role))
	assert.Equal(t, genai.Role(genai.RoleModel), genai.Role(contents[1].Role))
}

func TestGroundingSources(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{
				GroundingMetadata: &genai.GroundingMetadata{
					GroundingChunks: []*genai.GroundingChunk{
						{Web: &genai.GroundingChunkWeb{URI: "https://example.com/a"}},
						{Web: &genai.GroundingChunkWeb{URI: ""}},
						{Web: nil},
					},
				},
			},
			{GroundingMetadata: nil},
		},
	}

	sources := groundingSources(resp)
	assert.Equal(t, []string{"https://example.com/a"}, sources)
}

func TestGroundingSources_NoCandidates(t *testing.T) {
	assert.Empty(t, groundingSources(&genai.GenerateContentResponse{}))
}

func TestSynthesisInstruction(t *testing.T) {
	state := domain.NewState("s1")
	state.History = []domain.Turn{{Role: domain.RoleUser, Text: "Who is the CEO of Infosys?"}}
	state.SubjectEntity = "Infosys"
	state.Findings = &domain.Findings{
		Brief:   "Salil Parekh has been CEO since 2018.",
		Sources: []string{"https://example.com/infosys"},
	}

	instruction := synthesisInstruction(state)
	assert.Contains(t, instruction, "Who is the CEO of Infosys?")
	assert.Contains(t, instruction, "Subject company: Infosys")
	assert.Contains(t, instruction, "Salil Parekh")
	assert.Contains(t, instruction, "https://example.com/infosys")
}

func TestSynthesisInstruction_NoFindings(t *testing.T) {
	state := domain.NewState("s1")
	state.History = []domain.Turn{{Role: domain.RoleUser, Text: "Tell me about Tesla"}}

	instruction := synthesisInstruction(state)
	assert.Contains(t, instruction, "Tell me about Tesla")
	assert.NotContains(t, instruction, "Research findings")
}
