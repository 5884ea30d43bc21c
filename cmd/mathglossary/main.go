// Package main provides the entry point for the mathglossary CLI.
//
// mathglossary walks the category tree of a MediaWiki site such as
// ProofWiki, counts the words of every definition page and exports the
// word frequencies as CSV. A second step removes common English words
// from that CSV.
//
// Usage:
//
//	mathglossary harvest [root-category]
//	mathglossary clean --denylist common.txt
//
// See --help for all available options.
package main

// main is the entry point for mathglossary.
func main() {
	Execute()
}
