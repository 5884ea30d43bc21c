package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/mathglossary/internal/cleaner"
	"github.com/nao1215/mathglossary/internal/config"
	"github.com/nao1215/mathglossary/internal/report"
)

// defaultCleanOutput is where the filtered CSV is written by default.
const defaultCleanOutput = "math-glossary-cleaned.csv"

// NewCleanCmd creates the clean command.
func NewCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove common words from an exported word count CSV",
		Long: `Clean copies a word,count CSV produced by harvest, dropping every row whose
word appears in the denylist. The denylist has one word per line; surrounding
whitespace is ignored and blank lines are skipped. Matching is exact.

Each removed row is reported together with its count.

Examples:
  # Remove the words listed in common.txt
  mathglossary clean -d common.txt

  # Choose input and output files
  mathglossary clean -d common.txt -i result.csv -o glossary.csv`,
		Args: cobra.NoArgs,
		RunE: runCleanCmd,
	}

	cmd.Flags().StringP("denylist", "d", "",
		"File listing the words to remove, one per line")
	cmd.Flags().StringP("input", "i", config.DefaultOutputFile,
		"Word count CSV to clean")
	cmd.Flags().StringP("output", "o", defaultCleanOutput,
		"Destination of the cleaned CSV")
	_ = cmd.MarkFlagRequired("denylist") //nolint:errcheck // The flag is defined above

	return cmd
}

// runCleanCmd executes the clean command.
func runCleanCmd(cmd *cobra.Command, _ []string) error {
	denylistPath, err := cmd.Flags().GetString("denylist")
	if err != nil {
		return err
	}
	inputPath, err := cmd.Flags().GetString("input")
	if err != nil {
		return err
	}
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	if inputPath == outputPath {
		return fmt.Errorf("input and output must differ: %s", inputPath)
	}

	deny, err := loadDenylist(denylistPath)
	if err != nil {
		return err
	}

	input, err := os.Open(inputPath) //nolint:gosec // User-provided input path is intentional
	if err != nil {
		return fmt.Errorf("failed to open word counts: %w", err)
	}
	defer input.Close()

	var result *cleaner.Result
	err = report.WriteFile(outputPath, func(w io.Writer) error {
		var filterErr error
		result, filterErr = cleaner.Filter(input, w, deny)
		return filterErr
	})
	if err != nil {
		return fmt.Errorf("failed to clean %s: %w", inputPath, err)
	}

	out := cmd.OutOrStdout()
	for _, removal := range result.Removed {
		fmt.Fprintf(out, "Removing %d occurrences of %s.\n", removal.Count, removal.Word)
	}
	fmt.Fprintf(out, "Written %d words!\n", result.Kept)

	return nil
}

// loadDenylist reads the denylist file at path.
func loadDenylist(path string) (cleaner.Denylist, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided denylist path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to open denylist: %w", err)
	}
	defer f.Close()

	deny, err := cleaner.LoadDenylist(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read denylist: %w", err)
	}
	return deny, nil
}
