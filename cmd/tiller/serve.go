package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/tillerhq/tiller/internal/cli"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Starts the research engine as a JSON API over HTTP, with a Prometheus
scrape endpoint on a separate port when configured.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		debug, _ := cmd.Flags().GetBool("debug")
		listen, _ := cmd.Flags().GetString("listen")

		err := cli.RunServe(cli.ServeOptions{
			ConfigPath: configPath,
			Listen:     listen,
			Debug:      debug,
		})
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("listen", "l", "", "Bind address (overrides config)")
}
