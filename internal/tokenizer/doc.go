// Package tokenizer turns the plain text of wiki sections into normalized
// word counts.
//
// # Pipeline
//
// For every section that is not excluded by title:
//  1. the section title is counted in the section table
//  2. inline ($...$) and display ($$...$$) math spans are removed
//  3. the text is split on whitespace
//  4. each token is lowercased and reduced to its word core by stripping
//     surrounding quotes and punctuation
//  5. accepted cores are counted in the word table
//
// Tokens that do not look like words and are not plain punctuation are
// reported as "unrecognized token" diagnostics and dropped.
//
// # Usage
//
//	words, sections := frequency.NewTable(), frequency.NewTable()
//	tok := tokenizer.New(words, sections, tokenizer.WithLogger(logger))
//	n := tok.TokenizeSection(page, "Definition")
package tokenizer
