package domain

// ActionKind discriminates the router's decision.
type ActionKind string

const (
	ActionGoTo      ActionKind = "goto"
	ActionSuspend   ActionKind = "suspend"
	ActionTerminate ActionKind = "terminate"
)

// Action is the router's verdict after a step: run another step, suspend the
// session with a question for the human, or terminate.
type Action struct {
	Kind     ActionKind
	Next     StepName // Set when Kind == ActionGoTo
	Question string   // Set when Kind == ActionSuspend
}

// GoTo routes to the named step.
func GoTo(next StepName) Action {
	return Action{Kind: ActionGoTo, Next: next}
}

// Suspend pauses the session until the human answers the question.
func Suspend(question string) Action {
	return Action{Kind: ActionSuspend, Question: question}
}

// Terminate ends the drive loop.
func Terminate() Action {
	return Action{Kind: ActionTerminate}
}

// OutcomeKind discriminates how a drive pass ended.
type OutcomeKind string

const (
	OutcomeCompleted OutcomeKind = "completed"
	OutcomeSuspended OutcomeKind = "suspended"
)

// Outcome is returned to the external caller when a drive pass ends.
type Outcome struct {
	Kind OutcomeKind `json:"kind"`

	// Response is the synthesized answer (Kind == OutcomeCompleted).
	Response string `json:"response,omitempty"`

	// Question is the pending clarification (Kind == OutcomeSuspended).
	Question string `json:"question,omitempty"`

	// Trace lists the steps executed during this pass. The session-wide
	// trace lives on State.Trace.
	Trace []StepName `json:"trace"`

	// State is the session snapshot: the final state for a completed pass,
	// or the opaque handle the caller must pass back to Resume for a
	// suspended one.
	State *State `json:"state,omitempty"`
}

// Completed builds a terminal outcome.
func Completed(state *State, trace []StepName) *Outcome {
	return &Outcome{
		Kind:     OutcomeCompleted,
		Response: state.FinalResponse,
		Trace:    trace,
		State:    state,
	}
}

// Suspended builds a paused outcome carrying the resume handle.
func Suspended(state *State, trace []StepName) *Outcome {
	return &Outcome{
		Kind:     OutcomeSuspended,
		Question: state.PendingQuestion,
		Trace:    trace,
		State:    state,
	}
}
