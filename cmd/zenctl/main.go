// Command zenctl runs maintenance tasks and the finance calculators from a
// terminal.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"financaszen/internal/cli"
)

// Set at build time with -ldflags "-X main.version=...".
var (
	version = "dev"
	commit  = "none"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "zenctl",
		Short:   "Finanças Zen admin tool",
		Long:    "Apply database migrations, run the loan calculators and estimate road tolls.",
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	root.AddCommand(newMigrateCmd(), newCalcCmd(), newTollsCmd())
	return root
}

func main() {
	cli.LoadEnvFile()
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
