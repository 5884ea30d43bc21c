// Package report writes harvest results.
//
// This package contains writers for different output formats:
//   - SimpleWriter: plain text summary and ranked tables for the terminal
//   - MarkdownWriter: Markdown document for sharing
//   - JSONWriter: structured JSON for tool integration
//
// WriteFrequencyCSV writes the exported word,count artifact.
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed with MultiWriter.
package report
