package database

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/mathglossary/internal/frequency"
	"github.com/nao1215/mathglossary/internal/model"
)

// FileName is the name of the archive file inside the database directory.
const FileName = "mathglossary.db"

// storedTimeFormat keeps a fixed width so stored times sort lexically.
const storedTimeFormat = "2006-01-02T15:04:05.000000000Z"

// ErrRunNotFound is returned when no run has the requested ID.
var ErrRunNotFound = errors.New("run not found")

// RunDB archives the results of harvest runs.
type RunDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string

	// entropy generates monotonic run IDs.
	entropy *ulid.MonotonicEntropy

	// mu guards entropy, which is not safe for concurrent use.
	mu sync.Mutex
}

// Options configures RunDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a RunDB in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*RunDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (run a harvest first)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	rdb := &RunDB{
		db:      db,
		dbPath:  dbPath,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := rdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return rdb, nil
}

// Path returns the database file path.
func (rdb *RunDB) Path() string {
	return rdb.dbPath
}

// Close closes the database connection.
func (rdb *RunDB) Close() error {
	return rdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (rdb *RunDB) createTables() error {
	schema := `
	-- One row per archived run
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		root_category TEXT NOT NULL,
		started_at TEXT NOT NULL,
		elapsed_ms INTEGER NOT NULL,
		interrupted INTEGER NOT NULL DEFAULT 0,
		words INTEGER NOT NULL,
		pages INTEGER NOT NULL,
		categories INTEGER NOT NULL,
		failed_pages INTEGER NOT NULL DEFAULT 0,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	-- Ranked word table of a run
	CREATE TABLE IF NOT EXISTS word_counts (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		rank INTEGER NOT NULL,
		word TEXT NOT NULL,
		count INTEGER NOT NULL,
		PRIMARY KEY (run_id, rank)
	);

	-- Ranked section table of a run
	CREATE TABLE IF NOT EXISTS section_counts (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		rank INTEGER NOT NULL,
		section TEXT NOT NULL,
		count INTEGER NOT NULL,
		PRIMARY KEY (run_id, rank)
	);
	`

	_, err := rdb.db.ExecContext(context.Background(), schema)
	return err
}

// newID returns a new run ID, ordered by creation time.
func (rdb *RunDB) newID(at time.Time) string {
	if at.IsZero() {
		at = time.Now()
	}
	rdb.mu.Lock()
	defer rdb.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(at), rdb.entropy).String()
}

// SaveRun archives report with its full word table and its section ranking.
// The generated ID is stored in report.ID and returned.
func (rdb *RunDB) SaveRun(ctx context.Context, report *model.RunReport) (string, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("failed to serialize report: %w", err)
	}

	id := rdb.newID(report.StartedAt)

	tx, err := rdb.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after Commit

	_, err = tx.ExecContext(ctx, `
	INSERT INTO runs (id, root_category, started_at, elapsed_ms, interrupted, words, pages, categories, failed_pages, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		report.RootCategory,
		report.StartedAt.UTC().Format(storedTimeFormat),
		report.Elapsed.Milliseconds(),
		report.Interrupted,
		report.Stats.Words,
		report.Stats.Pages,
		report.Stats.Categories,
		report.Stats.FailedPages,
		string(reportJSON),
	)
	if err != nil {
		return "", fmt.Errorf("failed to save run: %w", err)
	}

	if err := insertRanking(ctx, tx, "INSERT INTO word_counts (run_id, rank, word, count) VALUES (?, ?, ?, ?)", id, report.Words); err != nil {
		return "", fmt.Errorf("failed to save word counts: %w", err)
	}
	if err := insertRanking(ctx, tx, "INSERT INTO section_counts (run_id, rank, section, count) VALUES (?, ?, ?, ?)", id, report.TopSections); err != nil {
		return "", fmt.Errorf("failed to save section counts: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run: %w", err)
	}

	report.ID = id
	return id, nil
}

// insertRanking inserts entries with their 1-based rank.
func insertRanking(ctx context.Context, tx *sql.Tx, query, runID string, entries []frequency.Entry) error {
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, e := range entries {
		if _, err := stmt.ExecContext(ctx, runID, i+1, e.Key, e.Count); err != nil {
			return err
		}
	}
	return nil
}

// RunSummary is the archived metadata of a run.
type RunSummary struct {
	ID           string
	RootCategory string
	StartedAt    time.Time
	Elapsed      time.Duration
	Interrupted  bool
	Stats        model.RunStats
}

// ListOption narrows the result of ListRuns.
type ListOption func(*sq.SelectBuilder)

// WithRootCategory keeps only runs started from root.
func WithRootCategory(root string) ListOption {
	return func(b *sq.SelectBuilder) {
		*b = b.Where(sq.Eq{"root_category": root})
	}
}

// WithLimit keeps only the n newest runs. n <= 0 means no limit.
func WithLimit(n int) ListOption {
	return func(b *sq.SelectBuilder) {
		if n > 0 {
			*b = b.Limit(uint64(n))
		}
	}
}

// ListRuns returns the archived runs, newest first.
func (rdb *RunDB) ListRuns(ctx context.Context, opts ...ListOption) ([]RunSummary, error) {
	builder := sq.Select(
		"id", "root_category", "started_at", "elapsed_ms", "interrupted",
		"words", "pages", "categories", "failed_pages",
	).From("runs").OrderBy("started_at DESC", "id DESC")

	for _, opt := range opts {
		opt(&builder)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := rdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var results []RunSummary
	for rows.Next() {
		var (
			s         RunSummary
			startedAt string
			elapsedMS int64
		)
		err := rows.Scan(
			&s.ID, &s.RootCategory, &startedAt, &elapsedMS, &s.Interrupted,
			&s.Stats.Words, &s.Stats.Pages, &s.Stats.Categories, &s.Stats.FailedPages,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		s.StartedAt = parseTimestamp(startedAt)
		s.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		results = append(results, s)
	}

	return results, rows.Err()
}

// GetRun returns the archived report of a run.
// The full word table is not loaded; use GetWordCounts for it.
func (rdb *RunDB) GetRun(ctx context.Context, id string) (*model.RunReport, error) {
	var reportJSON string
	err := rdb.db.QueryRowContext(ctx, "SELECT report_json FROM runs WHERE id = ?", id).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	var report model.RunReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	report.ID = id

	return &report, nil
}

// GetWordCounts returns the ranked words of a run. limit <= 0 returns all.
func (rdb *RunDB) GetWordCounts(ctx context.Context, id string, limit int) ([]frequency.Entry, error) {
	return rdb.ranking(ctx, "word_counts", "word", id, limit)
}

// GetSectionCounts returns the ranked section titles of a run. limit <= 0 returns all.
func (rdb *RunDB) GetSectionCounts(ctx context.Context, id string, limit int) ([]frequency.Entry, error) {
	return rdb.ranking(ctx, "section_counts", "section", id, limit)
}

// ranking reads the ranked keyColumn/count pairs of a run from table.
func (rdb *RunDB) ranking(ctx context.Context, table, keyColumn, id string, limit int) ([]frequency.Entry, error) {
	var exists int
	err := rdb.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs WHERE id = ?", id).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to look up run: %w", err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}

	builder := sq.Select(keyColumn, "count").
		From(table).
		Where(sq.Eq{"run_id": id}).
		OrderBy("rank")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := rdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query counts: %w", err)
	}
	defer rows.Close()

	var entries []frequency.Entry
	for rows.Next() {
		var e frequency.Entry
		if err := rows.Scan(&e.Key, &e.Count); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// DeleteRun removes a run and its tables.
func (rdb *RunDB) DeleteRun(ctx context.Context, id string) error {
	tx, err := rdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after Commit

	res, err := tx.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 { //nolint:errcheck // the sqlite driver always reports rows affected
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	for _, table := range []string{"word_counts", "section_counts"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE run_id = ?", id); err != nil {
			return fmt.Errorf("failed to delete %s: %w", table, err)
		}
	}

	return tx.Commit()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// parseTimestamp parses a stored timestamp. It returns the zero time when no
// format matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
