package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tillerhq/tiller/internal/cli"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive research chat",
	Long: `Runs the research loop interactively. Each line of input is a query;
when the engine needs clarification it asks and waits for your next line.
Sessions are checkpointed, so a conversation can be resumed later with
--session.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		debug, _ := cmd.Flags().GetBool("debug")
		sessionID, _ := cmd.Flags().GetString("session")

		err := cli.RunChat(cli.ChatOptions{
			ConfigPath: configPath,
			SessionID:  sessionID,
			Debug:      debug,
		})
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().String("session", "", "Session ID to resume")
}
