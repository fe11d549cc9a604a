package domain

// StepName identifies one of the four reasoning steps.
type StepName string

const (
	StepClarifier   StepName = "clarifier"
	StepResearcher  StepName = "researcher"
	StepValidator   StepName = "validator"
	StepSynthesizer StepName = "synthesizer"
)

const (
	// MaxResearchAttempts caps Validator-triggered research retries within a
	// single turn. Reaching the cap is not an error: the router hard-routes
	// to the Synthesizer regardless of the verdict.
	MaxResearchAttempts = 3

	// ConfidenceThreshold routes research straight to synthesis when met.
	// The comparison is inclusive: a score of exactly 6.0 skips validation.
	ConfidenceThreshold = 6.0
)
