package model

import (
	"time"

	"github.com/nao1215/mathglossary/internal/frequency"
)

// Default sizes of the ranked tables kept in a RunReport.
const (
	// DefaultTopSections is how many section titles are shown after a run.
	DefaultTopSections = 100

	// DefaultTopWords is how many words are shown after a run.
	DefaultTopWords = 300
)

// RunStats holds the counters collected while harvesting.
type RunStats struct {
	// Words is the number of words accepted by the tokenizer.
	Words int `json:"words"`

	// Pages is the number of page titles handled, including pages that
	// were later skipped (redirects, blacklisted categories, failures).
	Pages int `json:"pages"`

	// Categories is the number of category visits. A category reached
	// through several parents is counted once per visit.
	Categories int `json:"categories"`

	// FailedPages is the number of pages whose processing returned an error.
	FailedPages int `json:"failed_pages"`
}

// RunReport is the result of one harvest run.
// It is a snapshot: reporters and the run archive read it instead of the
// live frequency tables.
type RunReport struct {
	// ID is the archive identifier. Empty until the run is saved.
	ID string `json:"id,omitempty"`

	// RootCategory is the category the traversal started from.
	RootCategory string `json:"root_category"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// Elapsed is the wall-clock duration of the traversal.
	Elapsed time.Duration `json:"elapsed"`

	// Interrupted is true when the run was cancelled and holds partial results.
	Interrupted bool `json:"interrupted"`

	// Stats holds the run counters.
	Stats RunStats `json:"stats"`

	// BlacklistedCategories is the number of categories known to be blacklisted
	// at the end of the run (static and inferred).
	BlacklistedCategories int `json:"blacklisted_categories"`

	// AllowedCategories is the number of categories resolved as allowed.
	AllowedCategories int `json:"allowed_categories"`

	// TopSections holds the most common section titles.
	TopSections []frequency.Entry `json:"top_sections,omitempty"`

	// TopWords holds the most common words.
	TopWords []frequency.Entry `json:"top_words,omitempty"`

	// Words holds every word ranked by descending count.
	Words []frequency.Entry `json:"-"`
}

// NewRunReport builds a RunReport from the tables of a finished run.
// topSections and topWords limit the display tables; values <= 0 use the defaults.
func NewRunReport(root string, startedAt time.Time, elapsed time.Duration, stats RunStats,
	words, sections *frequency.Table, topSections, topWords int) *RunReport {
	if topSections <= 0 {
		topSections = DefaultTopSections
	}
	if topWords <= 0 {
		topWords = DefaultTopWords
	}

	return &RunReport{
		RootCategory: root,
		StartedAt:    startedAt,
		Elapsed:      elapsed,
		Stats:        stats,
		TopSections:  sections.MostCommon(topSections),
		TopWords:     words.MostCommon(topWords),
		Words:        words.MostCommon(0),
	}
}

// Status returns a short human-readable status of the run.
func (r *RunReport) Status() string {
	if r.Interrupted {
		return "Interrupted (partial results)"
	}
	return "Complete"
}
