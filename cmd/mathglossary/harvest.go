package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/mathglossary/internal/config"
	"github.com/nao1215/mathglossary/internal/crawler"
	applog "github.com/nao1215/mathglossary/internal/log"
	"github.com/nao1215/mathglossary/internal/model"
	"github.com/nao1215/mathglossary/internal/pipeline"
	"github.com/nao1215/mathglossary/internal/report"
	"github.com/nao1215/mathglossary/internal/wiki"
)

// NewHarvestCmd creates the harvest command.
func NewHarvestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "harvest [root-category]",
		Short: "Count the words of every definition page below a category",
		Long: `Harvest walks the category tree below root-category depth-first, processing
the pages of each category before its subcategories. Pages are tokenized
section by section with math markup removed, and every accepted word is
counted.

Categories below a blacklisted category are skipped together with their pages.
Press Ctrl+C to stop early: the partial counts are still reported, exported
and archived.

Examples:
  # Harvest the default root category of ProofWiki
  mathglossary harvest

  # Harvest a smaller tree and write a Markdown report
  mathglossary harvest "Definitions/Topology" -r topology.md

  # Use another wiki and a slower pace
  mathglossary harvest "Definitions" -a https://example.org/w/api.php --delay 1s`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHarvestCmd,
	}

	cmd.Flags().StringP("config", "c", "",
		"Path to config file (default: .mathglossary in current or home directory)")
	cmd.Flags().StringP("output", "o", config.DefaultOutputFile,
		"CSV file receiving the ranked word counts (empty to skip)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Print the report as Markdown")
	cmd.Flags().StringP("report", "r", "",
		"Also write the report to a file (.json, .md or text by extension)")
	cmd.Flags().Bool("no-save", false,
		"Do not archive the run in the database")
	cmd.Flags().IntP("nested-limit", "n", config.DefaultNestedLimit,
		"Depth at which subcategories stop being listed")
	cmd.Flags().IntP("limit", "l", config.DefaultMemberLimit,
		"Page size of category member listings (max 500)")
	cmd.Flags().Duration("delay", 0,
		"Pause between page fetches")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each wiki request")
	cmd.Flags().StringP("api-url", "a", config.DefaultAPIURL,
		"MediaWiki api.php endpoint")
	cmd.Flags().String("proxy", "",
		"SOCKS5 proxy address (host:port)")
	cmd.Flags().String("db-dir", "",
		"Directory of the run archive (default: XDG data directory)")

	return cmd
}

// runHarvestCmd executes the harvest command.
func runHarvestCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Verbose, getLogJSONFlag(cmd))
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(os.Stderr, "\nInterrupted, finishing with partial results...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runHarvest(ctx, cfg, cmd.OutOrStdout(), logger)
}

// buildConfig loads the configuration file and applies flag overrides.
// Only flags set on the command line override file values.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	flags := cmd.Flags()

	configPath, err := flags.GetString("config")
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if len(args) > 0 {
		cfg.RootCategory = args[0]
	}

	if flags.Changed("output") {
		if cfg.OutputFile, err = flags.GetString("output"); err != nil {
			return nil, err
		}
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("report"); err != nil {
		return nil, err
	}
	noSave, err := flags.GetBool("no-save")
	if err != nil {
		return nil, err
	}
	if noSave {
		cfg.SaveToDB = false
	}
	if flags.Changed("nested-limit") {
		if cfg.NestedLimit, err = flags.GetInt("nested-limit"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("limit") {
		if cfg.MemberLimit, err = flags.GetInt("limit"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("delay") {
		if cfg.RequestDelay, err = flags.GetDuration("delay"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("api-url") {
		if cfg.APIURL, err = flags.GetString("api-url"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("proxy") {
		if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("db-dir") {
		if cfg.DBDir, err = flags.GetString("db-dir"); err != nil {
			return nil, err
		}
	}

	cfg.Verbose = getVerboseFlag(cmd)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// getVerboseFlag returns the persistent verbose flag, wherever it is defined.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return false
	}
	return verbose
}

// getLogJSONFlag returns the persistent log-json flag.
func getLogJSONFlag(cmd *cobra.Command) bool {
	jsonLogs, err := cmd.Flags().GetBool("log-json")
	if err != nil {
		return false
	}
	return jsonLogs
}

// setupLogger creates the process logger. Logs go to stderr so that
// stdout carries only the report.
func setupLogger(verbose, jsonLogs bool) *slog.Logger {
	if jsonLogs {
		return applog.NewJSONLogger(os.Stderr, verbose)
	}
	return applog.NewLogger(os.Stderr, verbose)
}

// newHarvester builds the wiki client and the harvester described by cfg.
func newHarvester(cfg *config.Config, logger *slog.Logger) (*crawler.Harvester, error) {
	httpClient, err := wiki.NewHTTPClient(wiki.TransportOptions{
		Timeout:      cfg.Timeout,
		ProxyAddress: cfg.ProxyAddress,
		Cookie:       cfg.Cookie,
		Headers:      cfg.Headers,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	client, err := wiki.NewClient(cfg.APIURL,
		wiki.WithHTTPClient(httpClient),
		wiki.WithUserAgent(cfg.UserAgent),
		wiki.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create wiki client: %w", err)
	}

	return crawler.NewHarvester(client,
		crawler.WithLogger(logger),
		crawler.WithNestedLimit(cfg.NestedLimit),
		crawler.WithMemberLimit(cfg.MemberLimit),
		crawler.WithDelay(cfg.RequestDelay),
		crawler.WithBlacklist(cfg.BlacklistedCategories),
		crawler.WithExcludedSections(cfg.ExcludedSections),
		crawler.WithExcludedSectionPrefixes(cfg.ExcludedSectionPrefixes),
		crawler.WithExcludedNamespaces(cfg.ExcludedNamespaces),
	), nil
}

// runHarvest executes the harvest and publishes its results.
// A cancelled run still prints, exports and archives its partial counts.
func runHarvest(ctx context.Context, cfg *config.Config, out io.Writer, logger *slog.Logger) error {
	harvester, err := newHarvester(cfg, logger)
	if err != nil {
		return err
	}

	logger.Info("starting harvest",
		"api", cfg.APIURL,
		"root", cfg.RootCategory,
		"nestedLimit", cfg.NestedLimit,
		"memberLimit", cfg.MemberLimit,
	)

	startedAt := time.Now()
	harvestErr := harvester.Harvest(ctx, cfg.RootCategory)
	elapsed := time.Since(startedAt)

	// A request timeout is a failure; only the run's own context interrupts it.
	interrupted := harvestErr != nil && ctx.Err() != nil
	if harvestErr != nil && !interrupted {
		return harvestErr
	}
	if interrupted {
		logger.Warn("harvest interrupted", "elapsed", elapsed.Round(time.Millisecond))
	}

	runReport := harvester.Report(model.TrimCategoryNamespace(cfg.RootCategory), startedAt, elapsed,
		interrupted, cfg.TopSections, cfg.TopWords)

	// Publishing uses a fresh context so an interrupted run is still archived.
	return newPublishPipeline(cfg, out, logger).Execute(context.WithoutCancel(ctx), runReport)
}

// newPublishPipeline builds the steps that publish a finished run.
// The archive step runs first so that the printed report shows the run ID.
// Every step runs even if an earlier one fails.
func newPublishPipeline(cfg *config.Config, out io.Writer, logger *slog.Logger) *pipeline.Pipeline {
	p := pipeline.New(
		pipeline.WithLogger(logger),
		pipeline.WithContinueOnError(true),
	)

	if cfg.SaveToDB {
		p.AddStep(pipeline.NewArchiveStep(cfg.DBDir, pipeline.WithArchiveLogger(logger)))
	}

	if cfg.MarkdownReport {
		p.AddStep(pipeline.NewPrintStep(report.NewMarkdownWriter(out)))
	} else {
		p.AddStep(pipeline.NewPrintStep(report.NewSimpleWriter(out)))
	}

	if cfg.ReportFile != "" {
		p.AddStep(pipeline.NewReportFileStep(cfg.ReportFile, logger))
	}
	if cfg.OutputFile != "" {
		p.AddStep(pipeline.NewExportStep(cfg.OutputFile, logger))
	}

	return p
}
