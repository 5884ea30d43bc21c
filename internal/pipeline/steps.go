package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/nao1215/mathglossary/internal/database"
	"github.com/nao1215/mathglossary/internal/model"
	"github.com/nao1215/mathglossary/internal/report"
)

// ArchiveStep stores the report in the run archive and records the
// assigned run ID in the report.
type ArchiveStep struct {
	// dbDir is the directory holding the archive database.
	dbDir string

	// opts are passed to database.Open.
	opts database.Options

	logger *slog.Logger
}

// ArchiveStepOption configures an ArchiveStep.
type ArchiveStepOption func(*ArchiveStep)

// WithArchiveLogger sets a custom logger for the archive step.
func WithArchiveLogger(logger *slog.Logger) ArchiveStepOption {
	return func(s *ArchiveStep) {
		s.logger = logger
	}
}

// WithArchiveOptions overrides the database options.
func WithArchiveOptions(opts database.Options) ArchiveStepOption {
	return func(s *ArchiveStep) {
		s.opts = opts
	}
}

// NewArchiveStep creates a step archiving into the database under dbDir.
func NewArchiveStep(dbDir string, opts ...ArchiveStepOption) *ArchiveStep {
	s := &ArchiveStep{
		dbDir:  dbDir,
		opts:   database.DefaultOptions(),
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *ArchiveStep) Name() string {
	return "archive"
}

// Do saves the report. The database is opened for this call only.
func (s *ArchiveStep) Do(ctx context.Context, r *model.RunReport) error {
	db, err := database.Open(s.dbDir, s.opts)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	id, err := db.SaveRun(ctx, r)
	if err != nil {
		return err
	}

	s.logger.Info("run archived", "id", id, "db", db.Path())
	return nil
}

// PrintStep writes the report with a report.Writer, typically to stdout.
type PrintStep struct {
	writer report.Writer
}

// NewPrintStep creates a step writing the report with w.
func NewPrintStep(w report.Writer) *PrintStep {
	return &PrintStep{writer: w}
}

// Name returns the step name.
func (s *PrintStep) Name() string {
	return "print"
}

// Do writes the report.
func (s *PrintStep) Do(_ context.Context, r *model.RunReport) error {
	_, err := s.writer.Write(r)
	return err
}

// ReportFileStep writes the report to a file whose extension selects the
// format (see report.ForFile).
type ReportFileStep struct {
	path   string
	logger *slog.Logger
}

// NewReportFileStep creates a step writing the report to path.
func NewReportFileStep(path string, logger *slog.Logger) *ReportFileStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportFileStep{path: path, logger: logger}
}

// Name returns the step name.
func (s *ReportFileStep) Name() string {
	return "report_file"
}

// Do writes the report file.
func (s *ReportFileStep) Do(_ context.Context, r *model.RunReport) error {
	err := report.WriteFile(s.path, func(w io.Writer) error {
		_, err := report.ForFile(s.path, w).Write(r)
		return err
	})
	if err != nil {
		return err
	}

	s.logger.Info("report written", "path", s.path)
	return nil
}

// ExportStep writes the full ranked word table as word,count CSV.
type ExportStep struct {
	path   string
	logger *slog.Logger
}

// NewExportStep creates a step exporting the word counts to path.
func NewExportStep(path string, logger *slog.Logger) *ExportStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportStep{path: path, logger: logger}
}

// Name returns the step name.
func (s *ExportStep) Name() string {
	return "export"
}

// Do writes the CSV file.
func (s *ExportStep) Do(_ context.Context, r *model.RunReport) error {
	err := report.WriteFile(s.path, func(w io.Writer) error {
		return report.WriteFrequencyCSV(w, r.Words)
	})
	if err != nil {
		return err
	}

	s.logger.Info("word counts exported", "path", s.path, "words", len(r.Words))
	return nil
}
