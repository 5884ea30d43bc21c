package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for mathglossary.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mathglossary",
		Short: "Build a mathematical glossary from a wiki category tree",
		Long: `mathglossary harvests the definition pages below a MediaWiki category
(ProofWiki by default), counts how often each word is used and exports the
result as a word,count CSV.

Categories below a blacklisted category (proofs, examples, people, ...) are
skipped, as are their pages. Math markup is removed before counting.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON lines")

	cmd.AddCommand(NewHarvestCmd())
	cmd.AddCommand(NewCleanCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
