package tokenizer

import (
	"bytes"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"github.com/nao1215/mathglossary/internal/frequency"
	"github.com/nao1215/mathglossary/internal/model"
)

// newTestTokenizer returns a tokenizer whose diagnostics go to buf.
func newTestTokenizer(buf *bytes.Buffer, opts ...Option) (*Tokenizer, *frequency.Table, *frequency.Table) {
	words := frequency.NewTable()
	sections := frequency.NewTable()
	logger := slog.New(slog.NewTextHandler(buf, nil))
	opts = append([]Option{WithLogger(logger)}, opts...)
	return New(words, sections, opts...), words, sections
}

func TestTokenizeSection(t *testing.T) {
	t.Parallel()

	t.Run("math span removed and punctuation stripped", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		tok, words, sections := newTestTokenizer(&buf)
		page := &model.Page{
			Title: "Circle",
			Sections: []model.Section{
				{Title: "Circle", Text: "A $x^2+y^2=1$ circle.", HasText: true},
			},
		}

		n := tok.TokenizeSection(page, "Circle")
		if n != 2 {
			t.Errorf("expected 2 words, got %d", n)
		}
		want := []frequency.Entry{{Key: "a", Count: 1}, {Key: "circle", Count: 1}}
		if got := words.Entries(); !reflect.DeepEqual(got, want) {
			t.Errorf("word table = %v, want %v", got, want)
		}
		if sections.Count("Circle") != 1 {
			t.Errorf("expected section to be counted once, got %d", sections.Count("Circle"))
		}
		if buf.Len() != 0 {
			t.Errorf("expected no diagnostics, got %s", buf.String())
		}
	})

	t.Run("excluded sections are not counted", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		tok, words, sections := newTestTokenizer(&buf)
		page := &model.Page{
			Title: "Circle",
			Sections: []model.Section{
				{Title: "Sources", Text: "1989: Ephraim J. Borowski", HasText: true},
				{Title: "Example: Unit Circle", Text: "The unit circle", HasText: true},
			},
		}

		for _, title := range page.SectionTitles() {
			if n := tok.TokenizeSection(page, title); n != 0 {
				t.Errorf("section %q: expected 0 words, got %d", title, n)
			}
		}
		if words.Len() != 0 || sections.Len() != 0 {
			t.Errorf("expected empty tables, got words=%v sections=%v", words.Entries(), sections.Entries())
		}
	})

	t.Run("section without text is still counted", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		tok, words, sections := newTestTokenizer(&buf)
		page := &model.Page{
			Title:    "Circle",
			Sections: []model.Section{{Title: "Definition", HasText: false}},
		}

		if n := tok.TokenizeSection(page, "Definition"); n != 0 {
			t.Errorf("expected 0 words, got %d", n)
		}
		if sections.Count("Definition") != 1 {
			t.Errorf("expected section count 1, got %d", sections.Count("Definition"))
		}
		if words.Len() != 0 {
			t.Errorf("expected no words, got %v", words.Entries())
		}
	})

	t.Run("custom exclusions replace defaults", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		tok, _, sections := newTestTokenizer(&buf,
			WithExcludedSections([]string{"Proof"}),
			WithExcludedSectionPrefixes([]string{"Lemma"}),
		)
		page := &model.Page{
			Sections: []model.Section{
				{Title: "Proof", Text: "trivial", HasText: true},
				{Title: "Lemma 1", Text: "trivial", HasText: true},
				{Title: "Sources", Text: "book", HasText: true},
			},
		}

		for _, title := range page.SectionTitles() {
			tok.TokenizeSection(page, title)
		}
		want := []frequency.Entry{{Key: "Sources", Count: 1}}
		if got := sections.Entries(); !reflect.DeepEqual(got, want) {
			t.Errorf("section table = %v, want %v", got, want)
		}
	})
}

func TestTokenize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		section string
		text    string
		want    []string
	}{
		{
			name:    "quotes and brackets",
			section: "Definition",
			text:    `"Group", (ring) field;`,
			want:    []string{"group", "ring", "field"},
		},
		{
			name:    "apostrophes and hyphens kept",
			section: "Definition",
			text:    "don't well-defined.",
			want:    []string{"don't", "well-defined"},
		},
		{
			name:    "only the exact section title is skipped",
			section: "Definition",
			text:    "Definition definition Definition: term",
			want:    []string{"definition", "definition", "term"},
		},
		{
			name:    "section word in another case is counted",
			section: "Definition",
			text:    "A definition is a statement",
			want:    []string{"a", "definition", "is", "a", "statement"},
		},
		{
			name:    "lowercased token equal to section title is skipped",
			section: "circle",
			text:    "Circle is round",
			want:    []string{"is", "round"},
		},
		{
			name:    "math spanning lines",
			section: "Definition",
			text:    "Let $a\n= b$ hold",
			want:    []string{"let", "hold"},
		},
		{
			name:    "display math",
			section: "Definition",
			text:    "$$\\sum x$$ series",
			want:    []string{"series"},
		},
		{
			name:    "text between math spans is removed",
			section: "Definition",
			text:    "Let $x$ be a real number such that $y > 0$ holds",
			want:    []string{"let", "holds"},
		},
		{
			name:    "unicode letters",
			section: "Definition",
			text:    "Über Σύνολο",
			want:    []string{"über", "σύνολο"},
		},
		{
			name:    "combining marks are not word characters",
			section: "Definition",
			text:    "cafe\u0301 bar",
			want:    []string{"bar"},
		},
		{
			name:    "punctuation only tokens dropped",
			section: "Definition",
			text:    "a = ( ) ... b",
			want:    []string{"a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			tok, _, _ := newTestTokenizer(&buf)
			got := tok.Tokenize(tt.section, tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestTokenizeUnrecognized(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	tok, _, _ := newTestTokenizer(&buf)

	got := tok.Tokenize("Definition", "x+y = z")
	if !reflect.DeepEqual(got, []string{"z"}) {
		t.Errorf("unexpected words %q", got)
	}

	output := buf.String()
	if !strings.Contains(output, "unrecognized token") {
		t.Errorf("expected unrecognized token diagnostic, got %q", output)
	}
	if !strings.Contains(output, "token=x+y") {
		t.Errorf("expected offending token in diagnostic, got %q", output)
	}
	if strings.Count(output, "unrecognized token") != 1 {
		t.Errorf("expected exactly one diagnostic, got %q", output)
	}
}

func TestStripMath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"no math here", "no math here"},
		{"A $x$ b", "A  b"},
		{"$$x$$", ""},
		{"costs $5", "costs $5"},
		{"$a$$b$", ""},
		{"$a$ and $b$ end", " end"},
		{"a $x$\nb $y$ c", "a  c"},
	}
	for _, tt := range tests {
		if got := StripMath(tt.in); got != tt.want {
			t.Errorf("StripMath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
