/*
Package domain contains the core domain models for the tiller orchestration
engine.

It defines the conversation state, the routing actions, the outcome returned
to callers, and the error taxonomy. This package is kept pure and free of
external dependencies like I/O or persistence, following Hexagonal
Architecture principles.

# Key Entities

  - State: the conversation record threaded through every step (history,
    clarity, subject entity, findings, confidence, validation, attempts).
  - Delta: the changes a step requests; applied by the orchestrator only.
  - Action: the router's verdict after a step (go-to, suspend, terminate).
  - Outcome: how a drive pass ended (completed answer or suspended question
    plus a resume handle).
  - StepError: a collaborator failure, classified and never silently hidden.
*/
package domain
