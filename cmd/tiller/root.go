package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tiller",
	Short: "Tiller is a conversational research engine",
	Long: `Tiller orchestrates a clarify-research-validate-synthesize loop over the
Gemini API. Ambiguous questions suspend the session and wait for a human
answer; everything else comes back as a sourced research brief.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Path to the tiller config file (YAML)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}
