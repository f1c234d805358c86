// Command votekit is the entry point for the votekit service and tooling:
// serve the HTTP API, tabulate elections from profile files, generate
// synthetic ballots and validate the docs-site configuration.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mggg/votekit/internal/log"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

var (
	flagConfig   string
	flagLogLevel string
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "votekit",
		Short:         "Ranked-ballot election analysis service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.Configure(log.Config{
				Level:   flagLogLevel,
				Output:  cmd.OutOrStdout(),
				Service: "votekit",
				Version: version,
			})
		},
	}

	root.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file (YAML)")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		newVersionCmd(),
		newServeCmd(),
		newRunCmd(),
		newGenerateCmd(),
		newSiteCmd(),
		newConfigCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "votekit %s (commit: %s, built: %s)\n", version, commit, buildDate)
		},
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
