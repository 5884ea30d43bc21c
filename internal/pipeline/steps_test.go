package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/mathglossary/internal/database"
	"github.com/nao1215/mathglossary/internal/frequency"
	"github.com/nao1215/mathglossary/internal/model"
	"github.com/nao1215/mathglossary/internal/report"
)

func newTestReport() *model.RunReport {
	words := frequency.NewTable()
	words.Update("group", "ring", "group")
	sections := frequency.NewTable()
	sections.Update("Definition")

	return model.NewRunReport("Definitions/Algebra", time.Now(), time.Minute,
		model.RunStats{Words: 3, Pages: 1, Categories: 1}, words, sections, 0, 0)
}

func TestArchiveStep(t *testing.T) {
	t.Parallel()

	t.Run("saves the run and sets its ID", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		r := newTestReport()
		step := NewArchiveStep(dir, WithArchiveLogger(quietLogger()))

		if step.Name() != "archive" {
			t.Errorf("Name() = %q", step.Name())
		}
		if err := step.Do(context.Background(), r); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r.ID == "" {
			t.Fatal("expected run ID to be set")
		}

		db, err := database.Open(dir, database.DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open archive: %v", err)
		}
		defer db.Close()

		words, err := db.GetWordCounts(context.Background(), r.ID, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(words) != 2 || words[0] != (frequency.Entry{Key: "group", Count: 2}) {
			t.Errorf("unexpected archived words %v", words)
		}
	})

	t.Run("fails when the archive must exist", func(t *testing.T) {
		t.Parallel()

		opts := database.DefaultOptions()
		opts.CreateIfNotExists = false
		step := NewArchiveStep(t.TempDir(), WithArchiveLogger(quietLogger()), WithArchiveOptions(opts))

		if err := step.Do(context.Background(), newTestReport()); err == nil {
			t.Error("expected error for missing archive")
		}
	})
}

func TestPrintStep(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	step := NewPrintStep(report.NewSimpleWriter(&buf))

	if err := step.Do(context.Background(), newTestReport()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "Finished counting 3 words in 1 pages in 1 categories!") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}

func TestReportFileStep(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out", "report.json")
	step := NewReportFileStep(path, quietLogger())

	if err := step.Do(context.Background(), newTestReport()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}
	var got model.RunReport
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("expected JSON report: %v", err)
	}
	if got.RootCategory != "Definitions/Algebra" {
		t.Errorf("RootCategory = %q", got.RootCategory)
	}
}

func TestExportStep(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "words.csv")
	step := NewExportStep(path, nil)

	if err := step.Do(context.Background(), newTestReport()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read CSV: %v", err)
	}
	if string(data) != "group,2\nring,1\n" {
		t.Errorf("unexpected CSV %q", data)
	}
}
