// Package classifier decides whether a wiki category is allowed, that is,
// neither the category itself nor any of its transitive parent categories
// is blacklisted.
//
// # Algorithm
//
// Parents are discovered lazily through a ParentLister, so the category graph
// is never known up front. Classify walks it depth-first with an explicit
// stack and memoizes every verdict:
//
//   - a category with a blacklisted parent becomes blacklisted itself
//   - a category whose parents are all allowed (or that has no parents)
//     becomes allowed
//   - reaching a category that is already on the stack is a cycle; that
//     occurrence counts as allowed and nothing is memoized for it
//
// Verdicts are final: the first resolution of a title wins for the rest of
// the run.
//
// # Usage
//
//	c := classifier.New(client, classifier.WithBlacklist(cfg.BlacklistedCategories))
//	ok, err := c.Classify(ctx, "Definitions/Algebra")
package classifier
