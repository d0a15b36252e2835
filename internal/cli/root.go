// Package cli provides the command-line interface for logdigest.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/logdigest/internal/cli/commands"
)

// Execute runs the root command and returns the exit code.
func Execute() int {
	return run(os.Args[1:])
}

func run(args []string) int {
	rootCmd := NewRootCommand()
	rootCmd.SetArgs(args)

	if err := rootCmd.Execute(); err != nil {
		// Print error to stderr (SilenceErrors prevents Cobra from doing this)
		_, _ = fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return 2 // Configuration or runtime error
	}
	return 0
}

// NewRootCommand creates the root cobra command. Given a log file it
// analyzes it directly, the same as "logdigest analyze".
func NewRootCommand() *cobra.Command {
	opts := &commands.AnalyzeOptions{}

	rootCmd := &cobra.Command{
		Use:   "logdigest <log-file> [--top N]",
		Short: "Summarize a log file into a plain-text report",
		Long: `logdigest reads a log file and prints a summary report.

It recognizes two line formats:
  - access log:  1.2.3.4 - - [01/Jan/2024:10:00:00 +0000] "GET / HTTP/1.1" 200 512
  - structured:  2024-01-01T10:00:00Z ERROR 1.2.3.4 - message duration_ms=450

and reports level and HTTP status counts, top addresses and messages,
ERROR lines per hour (UTC) and the slowest lines.

Exit codes:
  0 - Report printed
  2 - Configuration or I/O error`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("missing log file argument (see 'logdigest --help')")
			}
			return commands.RunAnalyze(cmd, args[0], opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	commands.AddAnalyzeFlags(rootCmd.Flags(), opts)

	rootCmd.AddCommand(commands.NewAnalyzeCommand())
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewDetectCommand())
	rootCmd.AddCommand(commands.NewDiagnoseCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}
