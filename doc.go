/*
Package tiller is an orchestration engine for multi-turn conversational
research. It routes each user turn through a sequence of specialized
reasoning steps (clarify intent, gather information, validate sufficiency,
synthesize an answer), deciding dynamically which step runs next from the
evolving conversation state.

The engine guarantees termination despite feedback loops: validation can send
work back to research, but retries are counted and capped, and the cap is a
hard override that routes to synthesis regardless of the verdict. When a
request is ambiguous, the engine suspends and surfaces a clarification
question; the caller later resumes with the human's answer, which re-enters
the clarifier so pronoun and entity resolution stay consistent across entry
points.

# Architecture

The core follows Hexagonal Architecture, separating the routing logic from
the reasoning collaborators and the persistence of suspended sessions:

  - pkg/domain: conversation state, routing actions, outcomes, errors.
  - pkg/ports: the Step and StateStore interfaces.
  - pkg/adapters/gemini: LLM-backed steps (Gemini with search grounding).
  - pkg/adapters/{memory,file,redis}: session checkpoint stores.
  - pkg/session: concurrent-safe session management over a store.

# Usage

Wire the four steps and drive turns through Start/Resume:

	steps, err := gemini.DefaultSteps(ctx, gemini.Config{APIKey: key})
	if err != nil {
		log.Fatal(err)
	}

	eng, err := tiller.New(steps)
	if err != nil {
		log.Fatal(err)
	}

	outcome, err := eng.Start(ctx, "Tell me about the company")
	if err != nil {
		log.Fatal(err)
	}

	if outcome.Kind == domain.OutcomeSuspended {
		// Show outcome.Question to the user, collect an answer...
		outcome, err = eng.Resume(ctx, outcome.State, "I meant Infosys")
	}

	fmt.Println(outcome.Response)

A completed outcome's State can be passed to Continue for the next turn of
the same conversation, preserving history and reference resolution.
*/
package tiller
