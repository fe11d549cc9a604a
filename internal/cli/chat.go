// Package cli implements the command logic behind the tiller binary.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/tillerhq/tiller/internal/config"
	"github.com/tillerhq/tiller/internal/presentation/tui"
	"github.com/tillerhq/tiller/pkg/domain"
)

// ChatOptions contains the configuration for the chat command.
type ChatOptions struct {
	ConfigPath string
	SessionID  string
	Debug      bool
}

// RunChat executes the interactive research chat loop: each line of input
// runs one drive pass, clarification questions suspend and wait for the next
// line, and everything is checkpointed so a session can be picked up later
// with --session.
func RunChat(opts ChatOptions) error {
	logger := createLogger(opts.Debug)

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	sessions, err := setupPersistence(cfg.Store, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, err := createEngine(ctx, cfg, logger)
	if err != nil {
		return err
	}

	tui.PrintBanner()

	// Rehydrate if the user named an existing session.
	var state *domain.State
	if opts.SessionID != "" {
		state, err = sessions.Load(ctx, opts.SessionID)
		if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
			return fmt.Errorf("failed to load session: %w", err)
		}
		if state != nil {
			printSystemMessage("Resumed session '%s' (%d turns).", opts.SessionID, len(state.History))
			if state.Status == domain.StatusSuspended {
				fmt.Println(tui.Question(state.PendingQuestion))
			}
		}
	}

	render := tui.NewRenderer()
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print(tui.Prompt())
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "/quit" || line == "/exit" {
			break
		}

		var outcome *domain.Outcome
		switch {
		case state == nil:
			outcome, err = engine.Start(ctx, line)
		case state.Status == domain.StatusSuspended:
			outcome, err = engine.Resume(ctx, state, line)
		default:
			outcome, err = engine.Continue(ctx, state, line)
		}
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			var stepErr *domain.StepError
			if errors.As(err, &stepErr) {
				printSystemMessage("The %s step failed (%s). Try again.", stepErr.Step, stepErr.Kind)
				logger.Error("step failed", "step", stepErr.Step, "kind", stepErr.Kind, "err", err)
				continue
			}
			return err
		}

		state = outcome.State
		if err := sessions.Save(ctx, state.SessionID, state); err != nil {
			logger.Warn("failed to checkpoint session", "session_id", state.SessionID, "err", err)
		}

		if opts.Debug {
			fmt.Println(tui.StepTrace(traceStrings(outcome.Trace)))
		}

		if outcome.Kind == domain.OutcomeSuspended {
			fmt.Println(tui.Question(outcome.Question))
			continue
		}

		rendered, rerr := render(outcome.Response)
		if rerr != nil {
			rendered = outcome.Response
		}
		fmt.Println(rendered)
	}

	if state != nil {
		printSystemMessage("Session '%s' saved.", state.SessionID)
	}
	return nil
}

// printSystemMessage prints a standardized system message to stdout.
func printSystemMessage(format string, args ...any) {
	fmt.Printf(">>> %s\n", fmt.Sprintf(format, args...))
}

func traceStrings(trace []domain.StepName) []string {
	out := make([]string, len(trace))
	for i, step := range trace {
		out[i] = string(step)
	}
	return out
}
