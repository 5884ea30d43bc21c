package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nao1215/mathglossary/internal/classifier"
	"github.com/nao1215/mathglossary/internal/frequency"
	"github.com/nao1215/mathglossary/internal/model"
	"github.com/nao1215/mathglossary/internal/tokenizer"
	"github.com/nao1215/mathglossary/internal/wiki"
)

// Default traversal limits.
const (
	// DefaultNestedLimit is the depth at which subcategories stop being listed.
	DefaultNestedLimit = 20

	// DefaultMemberLimit is the page size of category member listings.
	DefaultMemberLimit = 100
)

// DefaultExcludedNamespaces are title prefixes of member pages that are never fetched.
var DefaultExcludedNamespaces = []string{"Template:"}

// Repository is the wiki as seen by the harvester.
// wiki.Client implements it; tests use an in-memory fake.
type Repository interface {
	// CategoryMembers lists the members of category of the given kind.
	CategoryMembers(ctx context.Context, category string, limit int, kind model.MemberKind) ([]string, error)

	// Page fetches a page without following redirects.
	// A redirect page yields an error wrapping wiki.ErrRedirect.
	Page(ctx context.Context, title string) (*model.Page, error)

	// ParentCategories lists the categories category belongs to.
	ParentCategories(ctx context.Context, category string) ([]string, error)
}

// Harvester walks a category tree and counts the words of every admissible page.
//
// A Harvester holds the state of a single run (handled pages, classifier
// memo, frequency tables) and must not be shared between goroutines.
type Harvester struct {
	// repo is the wiki being harvested.
	repo Repository

	// classifier decides whether a category may be harvested.
	classifier *classifier.Classifier

	// tokenizer feeds the word and section tables.
	tokenizer *tokenizer.Tokenizer

	// words counts accepted words across the run.
	words *frequency.Table

	// sections counts section titles across the run.
	sections *frequency.Table

	// handled holds every page title already processed or being processed.
	handled map[string]struct{}

	// nestedLimit is the depth at which the traversal stops descending.
	nestedLimit int

	// memberLimit is the page size of member listings.
	memberLimit int

	// excludedNamespaces are title prefixes of pages that are never fetched.
	excludedNamespaces []string

	// delay is the time to wait between page fetches.
	delay time.Duration

	// blacklist overrides the classifier's static blacklist when non-nil.
	blacklist []string

	// excludedSections overrides the tokenizer's section denylist when non-nil.
	excludedSections []string

	// excludedPrefixes overrides the tokenizer's section prefix denylist when non-nil.
	excludedPrefixes []string

	stats  model.RunStats
	logger *slog.Logger
}

// Option configures a Harvester.
type Option func(*Harvester)

// WithLogger sets the logger. It is shared with the classifier and tokenizer.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Harvester) {
		h.logger = logger
	}
}

// WithNestedLimit sets the maximum category depth.
// The root is at depth 0; a category at depth >= limit is not listed.
func WithNestedLimit(limit int) Option {
	return func(h *Harvester) {
		h.nestedLimit = limit
	}
}

// WithMemberLimit sets the page size of category member listings.
func WithMemberLimit(limit int) Option {
	return func(h *Harvester) {
		h.memberLimit = limit
	}
}

// WithExcludedNamespaces sets the title prefixes of member pages to skip.
func WithExcludedNamespaces(prefixes []string) Option {
	return func(h *Harvester) {
		h.excludedNamespaces = prefixes
	}
}

// WithDelay sets a pause between page fetches.
// Public wikis ask bots to keep a low request rate.
func WithDelay(d time.Duration) Option {
	return func(h *Harvester) {
		h.delay = d
	}
}

// WithBlacklist replaces the static category blacklist.
func WithBlacklist(categories []string) Option {
	return func(h *Harvester) {
		h.blacklist = categories
	}
}

// WithExcludedSections replaces the section titles that are never tokenized.
func WithExcludedSections(titles []string) Option {
	return func(h *Harvester) {
		h.excludedSections = titles
	}
}

// WithExcludedSectionPrefixes replaces the section title prefixes that are never tokenized.
func WithExcludedSectionPrefixes(prefixes []string) Option {
	return func(h *Harvester) {
		h.excludedPrefixes = prefixes
	}
}

// NewHarvester creates a Harvester reading from repo.
func NewHarvester(repo Repository, opts ...Option) *Harvester {
	h := &Harvester{
		repo:               repo,
		words:              frequency.NewTable(),
		sections:           frequency.NewTable(),
		handled:            make(map[string]struct{}),
		nestedLimit:        DefaultNestedLimit,
		memberLimit:        DefaultMemberLimit,
		excludedNamespaces: DefaultExcludedNamespaces,
	}

	for _, opt := range opts {
		opt(h)
	}

	if h.logger == nil {
		h.logger = slog.Default()
	}

	classifierOpts := []classifier.Option{classifier.WithLogger(h.logger)}
	if h.blacklist != nil {
		classifierOpts = append(classifierOpts, classifier.WithBlacklist(h.blacklist))
	}
	h.classifier = classifier.New(repo, classifierOpts...)

	tokenizerOpts := []tokenizer.Option{tokenizer.WithLogger(h.logger)}
	if h.excludedSections != nil {
		tokenizerOpts = append(tokenizerOpts, tokenizer.WithExcludedSections(h.excludedSections))
	}
	if h.excludedPrefixes != nil {
		tokenizerOpts = append(tokenizerOpts, tokenizer.WithExcludedSectionPrefixes(h.excludedPrefixes))
	}
	h.tokenizer = tokenizer.New(h.words, h.sections, tokenizerOpts...)

	return h
}

// visit is an entry of the traversal stack.
type visit struct {
	category string
	depth    int
}

// Harvest traverses the category tree rooted at root, depth-first with the
// pages of a category processed before its subcategories.
//
// Per-page and per-category failures are logged and skipped. Only
// cancellation of ctx or a failure to classify or list the root stops the
// traversal; the tables keep whatever was counted so far in both cases.
func (h *Harvester) Harvest(ctx context.Context, root string) error {
	root = model.TrimCategoryNamespace(root)
	stack := []visit{{category: root, depth: 0}}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		subcats, err := h.visitCategory(ctx, v)
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			if v.depth == 0 {
				return fmt.Errorf("failed to harvest %q: %w", root, err)
			}
			h.logger.Error("failed to list category", "category", v.category, "error", err)
			continue
		}

		// Reverse push keeps listing order on a LIFO stack.
		for i := len(subcats) - 1; i >= 0; i-- {
			stack = append(stack, visit{category: subcats[i], depth: v.depth + 1})
		}
	}

	return nil
}

// visitCategory processes the member pages of one category and returns its
// subcategories, or nil when the category must not be descended into.
func (h *Harvester) visitCategory(ctx context.Context, v visit) ([]string, error) {
	if v.depth >= h.nestedLimit {
		h.logger.Warn("exceeded nested limit", "category", v.category, "depth", v.depth)
		return nil, nil
	}

	ok, err := h.classifier.Classify(ctx, v.category)
	if err != nil {
		// Without a classified root there is nothing to harvest.
		if ctx.Err() != nil || v.depth == 0 {
			return nil, err
		}
		h.logger.Error("failed to classify category", "category", v.category, "error", err)
		return nil, nil
	}
	if !ok {
		h.logger.Info("blacklisted category", "category", v.category)
		return nil, nil
	}

	h.stats.Categories++
	h.logger.Info("visiting category", "category", v.category, "depth", v.depth)

	pages, err := h.repo.CategoryMembers(ctx, v.category, h.memberLimit, model.MemberPage)
	if err != nil {
		return nil, err
	}

	for i, title := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := h.ProcessPage(ctx, title); err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			h.stats.FailedPages++
			h.logger.Error("failed to process page", "page", title, "error", err)
		}
		if h.delay > 0 && i < len(pages)-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(h.delay):
			}
		}
	}

	return h.repo.CategoryMembers(ctx, v.category, h.memberLimit, model.MemberSubcategory)
}

// ProcessPage counts the words of one page at most once per run.
//
// Pages in an excluded namespace, redirects and pages with a blacklisted
// category are skipped and return nil. When the wiki reports a different
// canonical title, that title is processed instead.
func (h *Harvester) ProcessPage(ctx context.Context, title string) error {
	for {
		if _, ok := h.handled[title]; ok {
			h.logger.Debug("page already handled", "page", title)
			return nil
		}
		if h.inExcludedNamespace(title) {
			h.logger.Debug("skipping excluded namespace", "page", title)
			return nil
		}

		h.handled[title] = struct{}{}
		h.stats.Pages++

		page, err := h.repo.Page(ctx, title)
		if err != nil {
			if errors.Is(err, wiki.ErrRedirect) {
				h.logger.Warn("skipping redirect", "page", title)
				return nil
			}
			return fmt.Errorf("failed to fetch page %q: %w", title, err)
		}

		if page.Title != "" && page.Title != title {
			h.logger.Debug("following canonical title", "page", title, "canonical", page.Title)
			title = page.Title
			continue
		}

		return h.countPage(ctx, page)
	}
}

// countPage tokenizes page when every one of its categories is allowed.
func (h *Harvester) countPage(ctx context.Context, page *model.Page) error {
	for _, category := range page.Categories {
		ok, err := h.classifier.Classify(ctx, category)
		if err != nil {
			return err
		}
		if !ok {
			h.logger.Info("skipping page in blacklisted category", "page", page.Title, "category", category)
			return nil
		}
	}

	words := 0
	for _, section := range page.Sections {
		words += h.tokenizer.TokenizeSection(page, section.Title)
	}

	h.logger.Info("processed page", "page", page.Title, "words", words)
	return nil
}

func (h *Harvester) inExcludedNamespace(title string) bool {
	for _, prefix := range h.excludedNamespaces {
		if strings.HasPrefix(title, prefix) {
			return true
		}
	}
	return false
}

// Stats returns the counters collected so far.
func (h *Harvester) Stats() model.RunStats {
	stats := h.stats
	stats.Words = h.words.Total()
	return stats
}

// Words returns the word table.
func (h *Harvester) Words() *frequency.Table {
	return h.words
}

// Sections returns the section title table.
func (h *Harvester) Sections() *frequency.Table {
	return h.sections
}

// Report builds the run report from the current tables.
// interrupted marks a run stopped by cancellation.
func (h *Harvester) Report(root string, startedAt time.Time, elapsed time.Duration,
	interrupted bool, topSections, topWords int) *model.RunReport {
	r := model.NewRunReport(root, startedAt, elapsed, h.Stats(), h.words, h.sections, topSections, topWords)
	r.Interrupted = interrupted
	r.BlacklistedCategories = len(h.classifier.Blacklisted())
	r.AllowedCategories = len(h.classifier.Allowed())
	return r
}
