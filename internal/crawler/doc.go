// Package crawler harvests word frequencies from a category tree of a wiki.
//
// # Architecture
//
// The Harvester drives a depth-first traversal over an explicit stack of
// categories. Each category is gated by the classifier, its member pages are
// processed before its subcategories are pushed, and subcategories deeper
// than the nested limit are never listed.
//
// Pages go through ProcessPage:
//   - a title is fetched at most once per run
//   - redirects and pages in an excluded namespace are skipped
//   - when the wiki reports a different canonical title, that title is used
//   - every category of the page must be allowed by the classifier
//   - each section is handed to the tokenizer
//
// # Usage
//
//	client, _ := wiki.NewClient("https://proofwiki.org/w/api.php")
//	h := crawler.NewHarvester(client, crawler.WithNestedLimit(20))
//	err := h.Harvest(ctx, "Definitions/Branches of Mathematics")
//	report := h.Report(root, start, time.Since(start), err != nil, 0, 0)
//
// Cancelling ctx stops the traversal; the tables keep the partial counts.
package crawler
