package classifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
)

// ErrLookup is returned when the parents of a category cannot be fetched.
var ErrLookup = errors.New("category lookup failed")

// DefaultBlacklist holds the categories whose branches carry no mathematical
// definitions.
var DefaultBlacklist = []string{
	"Definition Disambiguation Pages",
	"Definitions/Language Definitions",
	"Definitions/Branches of Science",
	"Definitions/Fallacies and Mistakes",
	"Definitions/Miscellanea",
}

// ParentLister fetches the declared parent categories of a category.
// Titles are passed and returned without the "Category:" prefix.
type ParentLister interface {
	ParentCategories(ctx context.Context, category string) ([]string, error)
}

// State is the classification state of a category.
type State int

const (
	// StateUnresolved means the category has not been classified yet.
	StateUnresolved State = iota

	// StateInProgress means the category is being resolved right now.
	StateInProgress

	// StateAllowed means the category and all its ancestors are allowed.
	StateAllowed

	// StateBlacklisted means the category or one of its ancestors is blacklisted.
	StateBlacklisted
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateInProgress:
		return "in_progress"
	case StateAllowed:
		return "allowed"
	case StateBlacklisted:
		return "blacklisted"
	default:
		return "unresolved"
	}
}

// Classifier holds the classification memo for one run.
// A Classifier is not safe for concurrent use.
type Classifier struct {
	parents ParentLister

	// blacklisted holds the static blacklist plus inferred verdicts.
	blacklisted map[string]struct{}

	// allowed holds categories resolved as allowed.
	allowed map[string]struct{}

	// inProgress holds categories on the resolution stack.
	inProgress map[string]struct{}

	logger *slog.Logger
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithLogger sets the logger used for blacklist and cycle diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Classifier) {
		c.logger = logger
	}
}

// WithBlacklist replaces the default static blacklist.
func WithBlacklist(categories []string) Option {
	return func(c *Classifier) {
		c.blacklisted = make(map[string]struct{}, len(categories))
		for _, category := range categories {
			c.blacklisted[category] = struct{}{}
		}
	}
}

// New creates a Classifier that looks parents up through parents.
func New(parents ParentLister, opts ...Option) *Classifier {
	c := &Classifier{
		parents:    parents,
		allowed:    make(map[string]struct{}),
		inProgress: make(map[string]struct{}),
	}
	WithBlacklist(DefaultBlacklist)(c)

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = slog.Default()
	}

	return c
}

// frame is one category on the resolution stack.
type frame struct {
	title   string
	parents []string

	// next is the index of the next parent to inspect.
	next int

	// blocked is set once a parent turned out to be blacklisted.
	blocked bool
}

// Classify reports whether category is allowed.
//
// Memoized verdicts are returned without network access. Otherwise the
// ancestry is resolved depth-first; the first blacklisted parent stops the
// inspection of the remaining parents of that category.
//
// On a lookup failure or cancellation the partially resolved ancestry is
// released (nothing stays in progress) and the error is returned. Verdicts
// reached before the failure are kept.
func (c *Classifier) Classify(ctx context.Context, category string) (bool, error) {
	switch c.State(category) {
	case StateBlacklisted:
		return false, nil
	case StateAllowed:
		return true, nil
	case StateInProgress:
		c.logger.Warn("circular category", "category", category)
		return true, nil
	}

	root, err := c.enter(ctx, category)
	if err != nil {
		return false, err
	}
	stack := []*frame{root}

	for len(stack) > 0 {
		top := stack[len(stack)-1]

		if top.blocked || top.next == len(top.parents) {
			stack = stack[:len(stack)-1]
			c.resolve(top)
			if top.blocked && len(stack) > 0 {
				stack[len(stack)-1].blocked = true
			}
			continue
		}

		parent := top.parents[top.next]
		top.next++

		switch c.State(parent) {
		case StateBlacklisted:
			top.blocked = true
		case StateAllowed:
		case StateInProgress:
			c.logger.Warn("circular category", "category", parent, "child", top.title)
		default:
			child, err := c.enter(ctx, parent)
			if err != nil {
				c.abandon(stack)
				return false, err
			}
			stack = append(stack, child)
		}
	}

	return c.State(category) == StateAllowed, nil
}

// enter marks category in progress and fetches its parents.
// On failure the mark is removed again.
func (c *Classifier) enter(ctx context.Context, category string) (*frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.inProgress[category] = struct{}{}

	parents, err := c.parents.ParentCategories(ctx, category)
	if err != nil {
		delete(c.inProgress, category)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrLookup, category, err)
	}

	return &frame{title: category, parents: parents}, nil
}

// resolve memoizes the verdict of a finished frame.
func (c *Classifier) resolve(f *frame) {
	delete(c.inProgress, f.title)
	if f.blocked {
		c.blacklisted[f.title] = struct{}{}
		c.logger.Info("blacklisted category", "category", f.title)
		return
	}
	c.allowed[f.title] = struct{}{}
}

// abandon clears the in-progress marks of an unfinished stack.
func (c *Classifier) abandon(stack []*frame) {
	for _, f := range stack {
		delete(c.inProgress, f.title)
	}
}

// State returns the current classification state of category.
func (c *Classifier) State(category string) State {
	if _, ok := c.blacklisted[category]; ok {
		return StateBlacklisted
	}
	if _, ok := c.allowed[category]; ok {
		return StateAllowed
	}
	if _, ok := c.inProgress[category]; ok {
		return StateInProgress
	}
	return StateUnresolved
}

// Blacklisted returns the blacklisted categories in sorted order.
func (c *Classifier) Blacklisted() []string {
	return sortedKeys(c.blacklisted)
}

// Allowed returns the allowed categories in sorted order.
func (c *Classifier) Allowed() []string {
	return sortedKeys(c.allowed)
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
