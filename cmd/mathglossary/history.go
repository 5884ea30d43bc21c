package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/mathglossary/internal/config"
	"github.com/nao1215/mathglossary/internal/database"
	"github.com/nao1215/mathglossary/internal/frequency"
	"github.com/nao1215/mathglossary/internal/model"
)

// defaultHistoryTop is how many words history shows for a single run.
const defaultHistoryTop = 20

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show archived harvest runs",
		Long: `History lists the runs archived by harvest, newest first.
Given a run ID, it prints the most common words and sections of that run.

Examples:
  # List all archived runs
  mathglossary history

  # List the five newest runs of one root category
  mathglossary history --root "Definitions/Topology" -n 5

  # Show the 50 most common words of a run
  mathglossary history 01HZY3M6Q8K2V9T4W7X1C5B0NR -t 50

  # Delete a run
  mathglossary history 01HZY3M6Q8K2V9T4W7X1C5B0NR --delete`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("top", "t", defaultHistoryTop,
		"Number of words and sections to show for a run (0 for all)")
	cmd.Flags().String("db-dir", "",
		"Directory of the run archive (default: XDG data directory)")
	cmd.Flags().Bool("delete", false,
		"Delete the given run instead of showing it")
	cmd.Flags().String("root", "",
		"Only list runs started from this root category")
	cmd.Flags().IntP("last", "n", 0,
		"Only list the n newest runs (0 for all)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	top, err := cmd.Flags().GetInt("top")
	if err != nil {
		return err
	}
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}
	del, err := cmd.Flags().GetBool("delete")
	if err != nil {
		return err
	}
	root, err := cmd.Flags().GetString("root")
	if err != nil {
		return err
	}
	last, err := cmd.Flags().GetInt("last")
	if err != nil {
		return err
	}
	if del && len(args) == 0 {
		return errors.New("--delete requires a run ID")
	}

	opts := database.DefaultOptions()
	opts.CreateIfNotExists = false
	db, err := database.Open(dbDir, opts)
	if err != nil {
		return fmt.Errorf("failed to open database (no run archived yet?): %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	switch {
	case del:
		if err := db.DeleteRun(ctx, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(out, "Deleted run %s\n", args[0])
		return nil
	case len(args) == 1:
		return showRun(ctx, out, db, args[0], top)
	default:
		opts := []database.ListOption{database.WithLimit(last)}
		if root != "" {
			opts = append(opts, database.WithRootCategory(model.TrimCategoryNamespace(root)))
		}
		return listRuns(ctx, out, db, opts...)
	}
}

// listRuns prints one line per archived run.
func listRuns(ctx context.Context, out io.Writer, db *database.RunDB, opts ...database.ListOption) error {
	runs, err := db.ListRuns(ctx, opts...)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No archived runs.")
		return nil
	}

	fmt.Fprintf(out, "%-26s  %-19s  %8s  %8s  %6s  %s\n", "ID", "STARTED", "WORDS", "PAGES", "CATS", "ROOT")
	for _, r := range runs {
		root := r.RootCategory
		if r.Interrupted {
			root += " (interrupted)"
		}
		fmt.Fprintf(out, "%-26s  %-19s  %8d  %8d  %6d  %s\n",
			r.ID,
			r.StartedAt.Local().Format(time.DateTime),
			r.Stats.Words,
			r.Stats.Pages,
			r.Stats.Categories,
			root,
		)
	}
	return nil
}

// showRun prints the summary and ranked tables of one run.
func showRun(ctx context.Context, out io.Writer, db *database.RunDB, id string, top int) error {
	run, err := db.GetRun(ctx, id)
	if err != nil {
		return err
	}
	words, err := db.GetWordCounts(ctx, id, top)
	if err != nil {
		return err
	}
	sections, err := db.GetSectionCounts(ctx, id, top)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Run:      %s\n", run.ID)
	fmt.Fprintf(out, "Root:     %s\n", run.RootCategory)
	fmt.Fprintf(out, "Started:  %s\n", run.StartedAt.Local().Format(time.DateTime))
	fmt.Fprintf(out, "Elapsed:  %s\n", run.Elapsed.Round(time.Second))
	fmt.Fprintf(out, "Status:   %s\n", run.Status())
	fmt.Fprintf(out, "Counted %d words in %d pages in %d categories\n",
		run.Stats.Words, run.Stats.Pages, run.Stats.Categories)

	printRanking(out, "Section", sections)
	printRanking(out, "Word", words)
	return nil
}

// printRanking prints a ranked table in the same layout as the run report.
func printRanking(out io.Writer, header string, entries []frequency.Entry) {
	if len(entries) == 0 {
		return
	}
	fmt.Fprintf(out, "\n%-30s %s\n", header, "Count")
	for _, e := range entries {
		fmt.Fprintf(out, "%-30s %d\n", e.Key, e.Count)
	}
}
