// Command streamgraphd runs the streamgraph daemon: serving the graph
// management API, or offline-validating and inspecting a graph document.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	root := &cobra.Command{
		Use:   "streamgraphd",
		Short: "Run and inspect streaming dataflow graphs",
	}
	root.AddCommand(newServeCmd())
	root.AddCommand(newValidateGraphCmd())
	root.AddCommand(newListComponentsCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
