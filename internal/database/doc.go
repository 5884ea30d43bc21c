// Package database provides SQLite-based storage for harvest runs.
//
// This package implements the RunDB, which archives the final results of
// each run:
//   - run metadata and totals
//   - the full ranked word table
//   - the ranked section table
//
// Crawl state (handled pages, classifier memo) is never stored; a run
// always starts from scratch.
//
// The archive is a single SQLite file opened through the CGO-free
// modernc.org/sqlite driver.
package database
