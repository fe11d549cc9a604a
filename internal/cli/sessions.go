package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/tillerhq/tiller/internal/config"
	"github.com/tillerhq/tiller/pkg/domain"
)

// ListSessions prints a table of stored sessions and their status.
func ListSessions(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	sessions, err := setupPersistence(cfg.Store, createLogger(false))
	if err != nil {
		return err
	}

	ids, err := sessions.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	if len(ids) == 0 {
		printSystemMessage("No stored sessions.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SESSION\tSTATUS\tTURNS\tSUBJECT")
	for _, id := range ids {
		state, err := sessions.Load(ctx, id)
		if err != nil {
			fmt.Fprintf(w, "%s\t%s\t\t\n", id, "unreadable")
			continue
		}
		subject := state.SubjectEntity
		if subject == "" {
			subject = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", id, state.Status, len(state.History), subject)
	}
	return w.Flush()
}

// DeleteSession removes a stored session.
func DeleteSession(ctx context.Context, configPath, sessionID string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	sessions, err := setupPersistence(cfg.Store, createLogger(false))
	if err != nil {
		return err
	}

	// Verify it exists so the user gets a real error for a typo'd ID.
	if _, err := sessions.Load(ctx, sessionID); err != nil {
		return err
	}
	if err := sessions.Delete(ctx, sessionID); err != nil {
		return err
	}
	printSystemMessage("Deleted session '%s'.", sessionID)
	return nil
}

// ShowSession prints the full state of one session as indented JSON.
func ShowSession(ctx context.Context, configPath, sessionID string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	sessions, err := setupPersistence(cfg.Store, createLogger(false))
	if err != nil {
		return err
	}

	state, err := sessions.Load(ctx, sessionID)
	if err != nil {
		return err
	}
	return printStateJSON(state)
}

func printStateJSON(state *domain.State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
