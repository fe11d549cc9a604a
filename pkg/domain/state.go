package domain

// SessionStatus defines the lifecycle phase of a conversation session.
type SessionStatus string

const (
	StatusActive    SessionStatus = "active"    // Normal operation, drive loop running
	StatusSuspended SessionStatus = "suspended" // Paused, waiting for a human answer to PendingQuestion
	StatusCompleted SessionStatus = "completed" // Synthesizer produced a final response
)

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one entry in the conversation history. Insertion order is
// meaningful: steps resolve pronouns and generic references against it.
type Turn struct {
	Role Role   `json:"role" mapstructure:"role"`
	Text string `json:"text" mapstructure:"text"`
}

// ClarityStatus is the Clarifier's judgement of the latest user message.
type ClarityStatus string

const (
	ClarityUnknown            ClarityStatus = ""
	ClarityClear              ClarityStatus = "clear"
	ClarityNeedsClarification ClarityStatus = "needs_clarification"
)

// Verdict is the Validator's judgement of the research findings.
type Verdict string

const (
	VerdictSufficient   Verdict = "sufficient"
	VerdictInsufficient Verdict = "insufficient"
)

// Validation holds the Validator's structured assessment.
type Validation struct {
	Verdict     Verdict `json:"verdict" mapstructure:"verdict"`
	Critique    string  `json:"critique" mapstructure:"critique"`
	Suggestions string  `json:"suggestions,omitempty" mapstructure:"suggestions"`
}

// Findings holds the Researcher's structured output.
type Findings struct {
	Brief   string   `json:"brief" mapstructure:"brief"`
	Sources []string `json:"sources,omitempty" mapstructure:"sources"`
}

// State is the conversation record threaded through every step. One State
// exists per session and is exclusively owned by the orchestrator while a
// drive pass is running; between passes it is an opaque snapshot held by the
// caller (or a StateStore).
type State struct {
	// SessionID identifies the logical conversation.
	SessionID string `json:"session_id" mapstructure:"session_id"`

	// Status indicates whether the session is running, suspended, or done.
	Status SessionStatus `json:"status" mapstructure:"status"`

	// History is the append-only conversation transcript.
	History []Turn `json:"history" mapstructure:"history"`

	// ClarityStatus is set only by the Clarifier.
	ClarityStatus ClarityStatus `json:"clarity_status,omitempty" mapstructure:"clarity_status"`

	// SubjectEntity is the entity the current turn is about. Set by the
	// Clarifier; empty when unresolved.
	SubjectEntity string `json:"subject_entity,omitempty" mapstructure:"subject_entity"`

	// LastDiscussedEntity is the entity most recently researched. Written by
	// the Researcher on success, read by the Clarifier on the next turn to
	// resolve pronouns. Never reset, only overwritten.
	LastDiscussedEntity string `json:"last_discussed_entity,omitempty" mapstructure:"last_discussed_entity"`

	// ClarificationQuestion is the follow-up the Clarifier wants to ask the
	// user when the request is ambiguous.
	ClarificationQuestion string `json:"clarification_question,omitempty" mapstructure:"clarification_question"`

	// Findings is the Researcher's output; replaced on each research pass.
	Findings *Findings `json:"findings,omitempty" mapstructure:"findings"`

	// Confidence is the independent 0-10 assessment of the findings. Only
	// meaningful immediately after a Researcher run.
	Confidence *float64 `json:"confidence,omitempty" mapstructure:"confidence"`

	// Validation is the Validator's latest assessment.
	Validation *Validation `json:"validation,omitempty" mapstructure:"validation"`

	// Attempts counts Validator-triggered research retries this turn.
	// Never exceeds MaxResearchAttempts.
	Attempts int `json:"attempts" mapstructure:"attempts"`

	// Trace lists every step executed over the whole session, append-only.
	Trace []StepName `json:"trace" mapstructure:"trace"`

	// PendingQuestion is non-empty if and only if Status == StatusSuspended.
	PendingQuestion string `json:"pending_question,omitempty" mapstructure:"pending_question"`

	// FinalResponse is the Synthesizer's user-facing answer.
	FinalResponse string `json:"final_response,omitempty" mapstructure:"final_response"`
}

// NewState creates a clean state for a fresh session.
func NewState(sessionID string) *State {
	return &State{
		SessionID: sessionID,
		Status:    StatusActive,
	}
}

// Clone returns a deep copy. Stores copy on save/load so callers can never
// mutate a checkpoint through a retained pointer.
func (s *State) Clone() *State {
	out := *s
	out.History = append([]Turn(nil), s.History...)
	out.Trace = append([]StepName(nil), s.Trace...)
	if s.Findings != nil {
		f := *s.Findings
		f.Sources = append([]string(nil), s.Findings.Sources...)
		out.Findings = &f
	}
	if s.Confidence != nil {
		c := *s.Confidence
		out.Confidence = &c
	}
	if s.Validation != nil {
		v := *s.Validation
		out.Validation = &v
	}
	return &out
}

// LastUserMessage returns the text of the most recent user turn, or "".
func (s *State) LastUserMessage() string {
	for i := len(s.History) - 1; i >= 0; i-- {
		if s.History[i].Role == RoleUser {
			return s.History[i].Text
		}
	}
	return ""
}

// Delta is the set of state changes a step requests. Nil or zero fields are
// left untouched; History only ever appends. The orchestrator applies deltas,
// steps never mutate State directly.
type Delta struct {
	// ResetTurn clears the per-turn fields (attempts, validation, confidence,
	// findings, final response) before the rest of the delta is applied.
	// Set by the Clarifier at the start of every turn.
	ResetTurn bool

	AppendHistory         []Turn
	ClarityStatus         ClarityStatus
	SubjectEntity         *string
	ClarificationQuestion *string
	LastDiscussedEntity   *string
	Findings              *Findings
	Confidence            *float64
	Validation            *Validation
	FinalResponse         *string
}

// Apply mutates the state with the delta's changes.
func (s *State) Apply(d Delta) {
	if d.ResetTurn {
		s.Attempts = 0
		s.Validation = nil
		s.Confidence = nil
		s.Findings = nil
		s.FinalResponse = ""
	}
	s.History = append(s.History, d.AppendHistory...)
	if d.ClarityStatus != ClarityUnknown {
		s.ClarityStatus = d.ClarityStatus
	}
	if d.SubjectEntity != nil {
		s.SubjectEntity = *d.SubjectEntity
	}
	if d.ClarificationQuestion != nil {
		s.ClarificationQuestion = *d.ClarificationQuestion
	}
	if d.LastDiscussedEntity != nil {
		s.LastDiscussedEntity = *d.LastDiscussedEntity
	}
	if d.Findings != nil {
		s.Findings = d.Findings
	}
	if d.Confidence != nil {
		s.Confidence = d.Confidence
	}
	if d.Validation != nil {
		s.Validation = d.Validation
	}
	if d.FinalResponse != nil {
		s.FinalResponse = *d.FinalResponse
	}
}
