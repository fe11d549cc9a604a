package domain

import (
	"context"
	"time"
)

// EventType defines the category of the lifecycle event.
type EventType string

const (
	EventStepStart EventType = "step_start"
	EventStepEnd   EventType = "step_end"
	EventRetry     EventType = "retry"
	EventSuspend   EventType = "suspend"
	EventComplete  EventType = "complete"
)

// StepEvent describes one lifecycle occurrence inside the drive loop.
type StepEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	Type      EventType     `json:"type"`
	SessionID string        `json:"session_id"`
	Step      StepName      `json:"step,omitempty"`
	Attempts  int           `json:"attempts,omitempty"`
	Duration  time.Duration `json:"duration,omitempty"` // Set on step_end
}

// LifecycleHooks defines callbacks for orchestrator observability.
// Nil hooks are skipped.
type LifecycleHooks struct {
	OnStepStart func(context.Context, *StepEvent)
	OnStepEnd   func(context.Context, *StepEvent)
	OnRetry     func(context.Context, *StepEvent)
	OnSuspend   func(context.Context, *StepEvent)
	OnComplete  func(context.Context, *StepEvent)
}
