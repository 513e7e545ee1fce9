package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	sourcesPath string
	jsonLogs    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:          "sift",
		Short:        "feedsift: classify, condense and store news from syndication feeds",
		Long:         "Runs the feed ingestion pipeline on demand and inspects its configuration and stored records.\nStore, model and notification settings come from the environment, as for the worker.",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.sourcesPath, "sources", "", "sources file (default $FEEDSIFT_SOURCES or config/sources.yaml)")
	root.PersistentFlags().BoolVar(&opts.jsonLogs, "json-logs", false, "write logs to stderr as JSON instead of text")

	root.AddCommand(
		runCmd(opts),
		sourcesCmd(opts),
		peekCmd(opts),
		classifyCmd(opts),
		summarizeCmd(opts),
		recordsCmd(opts),
	)
	return root
}
