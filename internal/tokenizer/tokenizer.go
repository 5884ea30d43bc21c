package tokenizer

import (
	"log/slog"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/mathglossary/internal/frequency"
	"github.com/nao1215/mathglossary/internal/model"
)

// DefaultExcludedSections lists boilerplate section titles that carry no
// definitional text.
var DefaultExcludedSections = []string{
	"Sources",
	"Linguistic Note",
	"Also see",
	"Historical Note",
}

// DefaultExcludedSectionPrefixes lists title prefixes of sections that are
// skipped. Worked examples repeat the vocabulary of the definition they follow.
var DefaultExcludedSectionPrefixes = []string{
	"Example:",
}

var (
	// mathPattern matches from the first "$" to the last one, across lines.
	mathPattern = regexp.MustCompile(`(?s)\$.*\$`)

	// wordPattern captures the word core of a lowercased token.
	wordPattern = regexp.MustCompile(`^["'.,;:!?(]*([\p{L}\p{N}_'-]+)["'.,;:!?)]*$`)

	// punctuationPattern matches tokens that are formatting leftovers.
	punctuationPattern = regexp.MustCompile(`^["'.,;:!?=()]+$`)
)

// Tokenizer extracts words from page sections and accumulates them into
// a word table and a section table.
// A Tokenizer is not safe for concurrent use.
type Tokenizer struct {
	// words receives one count per accepted word.
	words *frequency.Table

	// sections receives one count per tokenized section title.
	sections *frequency.Table

	// excludedSections holds section titles that are skipped entirely.
	excludedSections map[string]struct{}

	// excludedPrefixes holds section title prefixes that are skipped entirely.
	excludedPrefixes []string

	// lower lowercases tokens with Unicode case rules.
	lower cases.Caser

	logger *slog.Logger
}

// Option configures a Tokenizer.
type Option func(*Tokenizer)

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tokenizer) {
		t.logger = logger
	}
}

// WithExcludedSections replaces the default list of excluded section titles.
func WithExcludedSections(titles []string) Option {
	return func(t *Tokenizer) {
		t.excludedSections = toSet(titles)
	}
}

// WithExcludedSectionPrefixes replaces the default excluded title prefixes.
func WithExcludedSectionPrefixes(prefixes []string) Option {
	return func(t *Tokenizer) {
		t.excludedPrefixes = prefixes
	}
}

// New creates a Tokenizer that counts into words and sections.
func New(words, sections *frequency.Table, opts ...Option) *Tokenizer {
	t := &Tokenizer{
		words:            words,
		sections:         sections,
		excludedSections: toSet(DefaultExcludedSections),
		excludedPrefixes: DefaultExcludedSectionPrefixes,
		lower:            cases.Lower(language.Und),
	}

	for _, opt := range opts {
		opt(t)
	}

	if t.logger == nil {
		t.logger = slog.Default()
	}

	return t
}

// Excluded reports whether a section title is skipped without being counted.
func (t *Tokenizer) Excluded(sectionTitle string) bool {
	if _, ok := t.excludedSections[sectionTitle]; ok {
		return true
	}
	for _, prefix := range t.excludedPrefixes {
		if strings.HasPrefix(sectionTitle, prefix) {
			return true
		}
	}
	return false
}

// TokenizeSection counts the words of one section of page and returns how
// many words were accepted. Excluded sections return 0 and are not counted
// in the section table. Sections without text are counted but yield 0.
func (t *Tokenizer) TokenizeSection(page *model.Page, sectionTitle string) int {
	if t.Excluded(sectionTitle) {
		return 0
	}

	t.sections.Add(sectionTitle)

	text, ok := page.SectionText(sectionTitle)
	if !ok {
		return 0
	}

	words := t.Tokenize(sectionTitle, text)
	t.words.Update(words...)
	return len(words)
}

// Tokenize returns the normalized words of text, in order.
// It does not touch the frequency tables.
func (t *Tokenizer) Tokenize(sectionTitle, text string) []string {
	stripped := StripMath(text)

	var words []string
	for _, raw := range strings.Fields(stripped) {
		token := t.lower.String(raw)

		// Headings are often repeated in the body; they would dominate the counts.
		if raw == sectionTitle || token == sectionTitle {
			continue
		}

		match := wordPattern.FindStringSubmatch(token)
		if match == nil {
			if !punctuationPattern.MatchString(token) {
				t.logger.Info("unrecognized token", "raw", token, "section", sectionTitle)
			}
			continue
		}
		words = append(words, match[1])
	}

	return words
}

// StripMath removes the longest span of text delimited by "$" markers,
// delimiters included. Text between two formulas is removed with them.
// Spans may cross line breaks. A lone "$" is left in place.
func StripMath(text string) string {
	return mathPattern.ReplaceAllString(text, "")
}

// toSet converts a slice into a lookup set.
func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}
