package crawler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/mathglossary/internal/classifier"
	"github.com/nao1215/mathglossary/internal/model"
	"github.com/nao1215/mathglossary/internal/wiki"
)

// fakeRepo is an in-memory wiki.
type fakeRepo struct {
	// pages maps a category to its member page titles.
	pages map[string][]string
	// subcats maps a category to its subcategories.
	subcats map[string][]string
	// parents maps a category to its parent categories.
	parents map[string][]string
	// content maps a title to the page returned for it.
	content map[string]*model.Page
	// fail maps a page title to the error returned for it.
	fail map[string]error
	// parentFail maps a category to the error returned for its parents.
	parentFail map[string]error

	pageCalls   map[string]int
	listedCats  []string
	onPageFetch func(title string)
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		pages:     make(map[string][]string),
		subcats:   make(map[string][]string),
		parents:   make(map[string][]string),
		content:   make(map[string]*model.Page),
		fail:       make(map[string]error),
		parentFail: make(map[string]error),
		pageCalls:  make(map[string]int),
	}
}

func (f *fakeRepo) CategoryMembers(_ context.Context, category string, _ int, kind model.MemberKind) ([]string, error) {
	if kind == model.MemberPage {
		f.listedCats = append(f.listedCats, category)
		return f.pages[category], nil
	}
	return f.subcats[category], nil
}

func (f *fakeRepo) Page(_ context.Context, title string) (*model.Page, error) {
	f.pageCalls[title]++
	if f.onPageFetch != nil {
		f.onPageFetch(title)
	}
	if err, ok := f.fail[title]; ok {
		return nil, err
	}
	p, ok := f.content[title]
	if !ok {
		return nil, fmt.Errorf("%w: %s", wiki.ErrMissingPage, title)
	}
	return p, nil
}

func (f *fakeRepo) ParentCategories(_ context.Context, category string) ([]string, error) {
	if err, ok := f.parentFail[category]; ok {
		return nil, err
	}
	return f.parents[category], nil
}

// addPage registers a page with one "Definition" section.
func (f *fakeRepo) addPage(title, text string, categories ...string) {
	f.content[title] = &model.Page{
		Title:      title,
		Categories: categories,
		Sections:   []model.Section{{Title: "Definition", Text: text, HasText: text != ""}},
	}
}

func newTestHarvester(repo Repository, buf *bytes.Buffer, opts ...Option) *Harvester {
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return NewHarvester(repo, append([]Option{WithLogger(logger)}, opts...)...)
}

func TestProcessPage(t *testing.T) {
	t.Parallel()

	t.Run("counts words of an allowed page", func(t *testing.T) {
		t.Parallel()

		repo := newFakeRepo()
		repo.content["Definition:Circle"] = &model.Page{
			Title:      "Definition:Circle",
			Categories: []string{"Definitions/Geometry"},
			Sections:   []model.Section{{Title: "Circle", Text: "A $x^2+y^2=1$ circle.", HasText: true}},
		}
		var buf bytes.Buffer
		h := newTestHarvester(repo, &buf)

		if err := h.ProcessPage(context.Background(), "Definition:Circle"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if h.Words().Count("a") != 1 || h.Words().Count("circle") != 1 || h.Words().Len() != 2 {
			t.Errorf("unexpected words %v", h.Words().Entries())
		}
		if h.Sections().Count("Circle") != 1 {
			t.Errorf("expected section Circle to be counted once")
		}
		if h.Stats().Words != 2 || h.Stats().Pages != 1 {
			t.Errorf("unexpected stats %+v", h.Stats())
		}
	})

	t.Run("processes a page at most once", func(t *testing.T) {
		t.Parallel()

		repo := newFakeRepo()
		repo.addPage("Definition:Group", "a set with an operation")
		var buf bytes.Buffer
		h := newTestHarvester(repo, &buf)

		for range 2 {
			if err := h.ProcessPage(context.Background(), "Definition:Group"); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}
		if repo.pageCalls["Definition:Group"] != 1 {
			t.Errorf("expected one fetch, got %d", repo.pageCalls["Definition:Group"])
		}
		if h.Words().Count("set") != 1 {
			t.Errorf("expected words counted once, got %d", h.Words().Count("set"))
		}
	})

	t.Run("page in a blacklisted category contributes nothing", func(t *testing.T) {
		t.Parallel()

		repo := newFakeRepo()
		repo.addPage("Definition:Fallacy", "a mistake in reasoning", "Definitions/Geometry", "Definitions/Miscellanea")
		var buf bytes.Buffer
		h := newTestHarvester(repo, &buf)

		if err := h.ProcessPage(context.Background(), "Definition:Fallacy"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if h.Words().Len() != 0 || h.Sections().Len() != 0 {
			t.Errorf("expected no counts, got words=%v sections=%v", h.Words().Entries(), h.Sections().Entries())
		}
	})

	t.Run("category inheriting a blacklist blocks the page", func(t *testing.T) {
		t.Parallel()

		repo := newFakeRepo()
		repo.parents["Definitions/Puzzles"] = []string{"Definitions/Miscellanea"}
		repo.addPage("Definition:Riddle", "a question", "Definitions/Puzzles")
		var buf bytes.Buffer
		h := newTestHarvester(repo, &buf)

		if err := h.ProcessPage(context.Background(), "Definition:Riddle"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if h.Words().Len() != 0 {
			t.Errorf("expected no words, got %v", h.Words().Entries())
		}
	})

	t.Run("redirect is skipped", func(t *testing.T) {
		t.Parallel()

		repo := newFakeRepo()
		repo.fail["Definition:Old"] = fmt.Errorf("%w: Definition:Old", wiki.ErrRedirect)
		var buf bytes.Buffer
		h := newTestHarvester(repo, &buf)

		if err := h.ProcessPage(context.Background(), "Definition:Old"); err != nil {
			t.Fatalf("expected redirect to be skipped, got %v", err)
		}
		if !strings.Contains(buf.String(), "skipping redirect") {
			t.Errorf("expected redirect diagnostic, got %s", buf.String())
		}
		if h.Stats().Pages != 1 {
			t.Errorf("expected redirect to count as handled, got %d", h.Stats().Pages)
		}
	})

	t.Run("canonical title is processed instead", func(t *testing.T) {
		t.Parallel()

		repo := newFakeRepo()
		repo.addPage("Definition:Ring", "a ring has two operations")
		repo.content["Definition:ring"] = repo.content["Definition:Ring"]
		var buf bytes.Buffer
		h := newTestHarvester(repo, &buf)

		if err := h.ProcessPage(context.Background(), "Definition:ring"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := h.ProcessPage(context.Background(), "Definition:Ring"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if repo.pageCalls["Definition:ring"] != 1 || repo.pageCalls["Definition:Ring"] != 1 {
			t.Errorf("unexpected fetches %v", repo.pageCalls)
		}
		if h.Words().Count("ring") != 1 {
			t.Errorf("expected page counted once, got %d", h.Words().Count("ring"))
		}
	})

	t.Run("excluded namespace is never fetched", func(t *testing.T) {
		t.Parallel()

		repo := newFakeRepo()
		var buf bytes.Buffer
		h := newTestHarvester(repo, &buf)

		if err := h.ProcessPage(context.Background(), "Template:Proof"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if repo.pageCalls["Template:Proof"] != 0 {
			t.Error("expected template page not to be fetched")
		}
	})

	t.Run("fetch failure is returned", func(t *testing.T) {
		t.Parallel()

		repo := newFakeRepo()
		repo.fail["Definition:Broken"] = errors.New("connection reset")
		var buf bytes.Buffer
		h := newTestHarvester(repo, &buf)

		if err := h.ProcessPage(context.Background(), "Definition:Broken"); err == nil {
			t.Error("expected error")
		}
	})
}

func TestHarvest(t *testing.T) {
	t.Parallel()

	t.Run("pages before subcategories in listing order", func(t *testing.T) {
		t.Parallel()

		repo := newFakeRepo()
		repo.pages["Root"] = []string{"P1"}
		repo.subcats["Root"] = []string{"A", "B"}
		repo.pages["A"] = []string{"P2"}
		repo.subcats["A"] = []string{"A1"}
		repo.pages["B"] = []string{"P3"}
		for _, p := range []string{"P1", "P2", "P3"} {
			repo.addPage(p, "word")
		}
		var order []string
		repo.onPageFetch = func(title string) { order = append(order, title) }

		var buf bytes.Buffer
		h := newTestHarvester(repo, &buf)

		if err := h.Harvest(context.Background(), "Category:Root"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := strings.Join(repo.listedCats, ","); got != "Root,A,A1,B" {
			t.Errorf("category order = %s, expected Root,A,A1,B", got)
		}
		if got := strings.Join(order, ","); got != "P1,P2,P3" {
			t.Errorf("page order = %s, expected P1,P2,P3", got)
		}
		if h.Stats().Categories != 4 || h.Words().Count("word") != 3 {
			t.Errorf("unexpected stats %+v words %v", h.Stats(), h.Words().Entries())
		}
	})

	t.Run("nested limit stops listing", func(t *testing.T) {
		t.Parallel()

		repo := newFakeRepo()
		repo.subcats["C0"] = []string{"C1"}
		repo.subcats["C1"] = []string{"C2"}
		repo.subcats["C2"] = []string{"C3"}
		var buf bytes.Buffer
		h := newTestHarvester(repo, &buf, WithNestedLimit(2))

		if err := h.Harvest(context.Background(), "C0"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := strings.Join(repo.listedCats, ","); got != "C0,C1" {
			t.Errorf("listed = %s, expected C0,C1", got)
		}
		if !strings.Contains(buf.String(), "exceeded nested limit") {
			t.Error("expected nested limit diagnostic")
		}
	})

	t.Run("blacklisted subcategory branch is skipped", func(t *testing.T) {
		t.Parallel()

		repo := newFakeRepo()
		repo.subcats["Root"] = []string{"Definitions/Miscellanea", "Good"}
		repo.subcats["Definitions/Miscellanea"] = []string{"Hidden"}
		var buf bytes.Buffer
		h := newTestHarvester(repo, &buf)

		if err := h.Harvest(context.Background(), "Root"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := strings.Join(repo.listedCats, ","); got != "Root,Good" {
			t.Errorf("listed = %s, expected Root,Good", got)
		}
	})

	t.Run("category reached twice is visited twice", func(t *testing.T) {
		t.Parallel()

		repo := newFakeRepo()
		repo.subcats["Root"] = []string{"A", "B"}
		repo.subcats["A"] = []string{"Shared"}
		repo.subcats["B"] = []string{"Shared"}
		repo.pages["Shared"] = []string{"P"}
		repo.addPage("P", "once")
		var buf bytes.Buffer
		h := newTestHarvester(repo, &buf)

		if err := h.Harvest(context.Background(), "Root"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if h.Stats().Categories != 5 {
			t.Errorf("expected 5 visits, got %d", h.Stats().Categories)
		}
		if h.Words().Count("once") != 1 || repo.pageCalls["P"] != 1 {
			t.Errorf("expected shared page processed once")
		}
	})

	t.Run("page failure does not stop the traversal", func(t *testing.T) {
		t.Parallel()

		repo := newFakeRepo()
		repo.pages["Root"] = []string{"Bad", "Good"}
		repo.fail["Bad"] = errors.New("boom")
		repo.addPage("Good", "fine")
		var buf bytes.Buffer
		h := newTestHarvester(repo, &buf)

		if err := h.Harvest(context.Background(), "Root"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if h.Stats().FailedPages != 1 || h.Words().Count("fine") != 1 {
			t.Errorf("unexpected stats %+v", h.Stats())
		}
		if !strings.Contains(buf.String(), "failed to process page") {
			t.Error("expected failure diagnostic")
		}
	})

	t.Run("root classification failure is returned", func(t *testing.T) {
		t.Parallel()

		errParents := errors.New("connection refused")
		repo := newFakeRepo()
		repo.pages["Root"] = []string{"P1"}
		repo.addPage("P1", "word")
		repo.parentFail["Root"] = errParents
		var buf bytes.Buffer
		h := newTestHarvester(repo, &buf)

		err := h.Harvest(context.Background(), "Root")
		if !errors.Is(err, classifier.ErrLookup) || !errors.Is(err, errParents) {
			t.Fatalf("expected lookup error, got %v", err)
		}
		if len(repo.listedCats) != 0 || h.Stats() != (model.RunStats{}) {
			t.Errorf("expected nothing harvested, listed %v stats %+v", repo.listedCats, h.Stats())
		}
	})

	t.Run("subcategory classification failure skips the branch", func(t *testing.T) {
		t.Parallel()

		repo := newFakeRepo()
		repo.subcats["Root"] = []string{"Broken", "Fine"}
		repo.pages["Broken"] = []string{"Lost"}
		repo.pages["Fine"] = []string{"Kept"}
		repo.addPage("Lost", "lost")
		repo.addPage("Kept", "kept")
		repo.parentFail["Broken"] = errors.New("timeout")
		var buf bytes.Buffer
		h := newTestHarvester(repo, &buf)

		if err := h.Harvest(context.Background(), "Root"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if h.Words().Count("lost") != 0 || h.Words().Count("kept") != 1 {
			t.Errorf("unexpected words %v", h.Words().Entries())
		}
		if !strings.Contains(buf.String(), "failed to classify category") {
			t.Error("expected classification diagnostic")
		}
	})

	t.Run("cancellation keeps partial results", func(t *testing.T) {
		t.Parallel()

		repo := newFakeRepo()
		repo.pages["Root"] = []string{"P1", "P2", "P3"}
		for _, p := range []string{"P1", "P2", "P3"} {
			repo.addPage(p, "word")
		}
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		repo.onPageFetch = func(title string) {
			if title == "P1" {
				cancel()
			}
		}
		var buf bytes.Buffer
		h := newTestHarvester(repo, &buf)

		err := h.Harvest(ctx, "Root")
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if h.Words().Count("word") != 1 {
			t.Errorf("expected partial count 1, got %d", h.Words().Count("word"))
		}

		r := h.Report("Root", time.Time{}, 0, true, 0, 0)
		if !r.Interrupted || r.Stats.Words != 1 {
			t.Errorf("unexpected report %+v", r)
		}
	})
}
