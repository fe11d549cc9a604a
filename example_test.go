package tiller_test

import (
	"context"
	"fmt"
	"log"

	"github.com/tillerhq/tiller"
	"github.com/tillerhq/tiller/internal/testutils"
)

// ExampleNew demonstrates driving a research session with scripted steps,
// including the suspend/resume cycle for an ambiguous first question.
func ExampleNew() {
	// 1. Build the four steps. In production these come from
	// gemini.DefaultSteps; scripted fakes keep the example deterministic.
	eng, err := tiller.New(testutils.Steps(
		testutils.KeywordClarifier("Infosys"),
		testutils.ScoredResearcher(8.5),
		testutils.VerdictValidator(),
		testutils.EchoSynthesizer(),
	))
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	// 2. An ambiguous question suspends the session with a clarification.
	outcome, err := eng.Start(ctx, "Tell me about the company")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(outcome.Kind, "-", outcome.Question)

	// 3. Answering the question resumes the drive loop to completion.
	outcome, err = eng.Resume(ctx, outcome.State, "I mean Infosys")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(outcome.Kind, "-", outcome.Response)

	// 4. Follow-up turns keep the conversation context: "they" resolves to
	// the last discussed entity.
	outcome, err = eng.Continue(ctx, outcome.State, "What do they sell?")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(outcome.Kind, "-", outcome.Response)

	// Output:
	// suspended - Which company are you asking about?
	// completed - Here is what I found about Infosys.
	// completed - Here is what I found about Infosys.
}

// ExampleEngine_Start shows the shape of a completed outcome.
func ExampleEngine_Start() {
	eng, err := tiller.New(testutils.Steps(
		testutils.KeywordClarifier("Tesla"),
		testutils.ScoredResearcher(9.0),
		testutils.VerdictValidator(),
		testutils.EchoSynthesizer(),
	))
	if err != nil {
		log.Fatal(err)
	}

	outcome, err := eng.Start(context.Background(), "Tell me about Tesla")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(outcome.Kind)
	fmt.Println(outcome.State.Status)
	for _, step := range outcome.Trace {
		fmt.Println(step)
	}

	// Output:
	// completed
	// completed
	// clarifier
	// researcher
	// synthesizer
}
