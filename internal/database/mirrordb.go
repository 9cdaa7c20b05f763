package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/spacemirror/internal/model"
)

// MirrorDB provides SQLite-based storage for mirror run history.
// It manages connection pooling and provides methods for recording and
// querying runs.
type MirrorDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures MirrorDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a MirrorDB at the specified path.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*MirrorDB, error) {
	dbPath := filepath.Join(dbDir, "spacemirror.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite DSN: mode=rw prevents creating new files,
	// mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	mdb := &MirrorDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := mdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return mdb, nil
}

// Close closes the database connection.
func (mdb *MirrorDB) Close() error {
	return mdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (mdb *MirrorDB) createTables() error {
	schema := `
	-- One row per completed mirror run
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		space TEXT NOT NULL,
		root_id TEXT NOT NULL,
		output_dir TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		duration_ms INTEGER NOT NULL,
		pages_discovered INTEGER NOT NULL,
		pages_written INTEGER NOT NULL,
		assets_downloaded INTEGER NOT NULL,
		assets_skipped INTEGER NOT NULL,
		failures TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_space ON runs(space);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	-- One row per page of a run
	CREATE TABLE IF NOT EXISTS run_pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id),
		page_id TEXT NOT NULL,
		title TEXT,
		slug TEXT NOT NULL,
		parent_id TEXT,
		folder TEXT NOT NULL,
		file TEXT NOT NULL,
		UNIQUE(run_id, page_id)
	);

	CREATE INDEX IF NOT EXISTS idx_pages_run ON run_pages(run_id);
	CREATE INDEX IF NOT EXISTS idx_pages_page ON run_pages(page_id);
	`

	_, err := mdb.db.ExecContext(context.Background(), schema)
	return err
}

// InsertRun records a completed mirror run and returns its database id.
func (mdb *MirrorDB) InsertRun(ctx context.Context, res *model.MirrorResult) (int64, error) {
	if res == nil {
		return 0, errors.New("nil mirror result")
	}

	failuresJSON, err := json.Marshal(res.Failures)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize failures: %w", err)
	}

	query := `
	INSERT INTO runs (space, root_id, output_dir, started_at, duration_ms,
		pages_discovered, pages_written, assets_downloaded, assets_skipped, failures)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := mdb.db.ExecContext(ctx, query,
		res.Space,
		res.RootID,
		res.OutputDir,
		res.StartedAt.UTC().Format("2006-01-02 15:04:05"),
		res.Duration.Milliseconds(),
		res.PagesDiscovered,
		res.PagesWritten,
		res.AssetsDownloaded,
		res.AssetsSkipped,
		string(failuresJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	return result.LastInsertId()
}

// InsertPages records the per-page outcome of a run from the graph snapshot.
// Re-inserting a page of the same run updates the existing row.
func (mdb *MirrorDB) InsertPages(ctx context.Context, runID int64, snap *model.Snapshot) error {
	if snap == nil {
		return errors.New("nil snapshot")
	}

	query := `
	INSERT INTO run_pages (run_id, page_id, title, slug, parent_id, folder, file)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(run_id, page_id) DO UPDATE SET
		title = excluded.title,
		slug = excluded.slug,
		parent_id = excluded.parent_id,
		folder = excluded.folder,
		file = excluded.file
	`

	tx, err := mdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	for id, rec := range snap.Nodes {
		if _, err := tx.ExecContext(ctx, query,
			runID, id, rec.Title, rec.Slug, rec.Parent, rec.Folder, rec.File,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert page %s: %w", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit pages: %w", err)
	}
	return nil
}

// RunRecord is one stored mirror run.
type RunRecord struct {
	// ID is the unique identifier of the run in the database.
	ID int64

	// Space is the mirrored space key.
	Space string

	// RootID is the canonical id of the space's root page.
	RootID string

	// OutputDir is where the mirror was written.
	OutputDir string

	// StartedAt is when the run began.
	StartedAt time.Time

	// Duration is the total wall-clock time of the run.
	Duration time.Duration

	// PagesDiscovered, PagesWritten, AssetsDownloaded and AssetsSkipped
	// mirror the counters of model.MirrorResult.
	PagesDiscovered  int
	PagesWritten     int
	AssetsDownloaded int
	AssetsSkipped    int

	// Failures lists the run's recorded problems.
	Failures []model.Failure
}

// ListRuns returns stored runs, newest first. An empty space returns runs
// for every space.
func (mdb *MirrorDB) ListRuns(ctx context.Context, space string) ([]RunRecord, error) {
	query := `
	SELECT id, space, root_id, output_dir, started_at, duration_ms,
		pages_discovered, pages_written, assets_downloaded, assets_skipped, failures
	FROM runs
	`
	args := make([]any, 0, 1)
	if space != "" {
		query += " WHERE space = ?"
		args = append(args, space)
	}
	query += " ORDER BY started_at DESC, id DESC"

	rows, err := mdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var results []RunRecord
	for rows.Next() {
		var rec RunRecord
		var startedAt string
		var durationMS int64
		var failuresJSON sql.NullString

		if err := rows.Scan(
			&rec.ID,
			&rec.Space,
			&rec.RootID,
			&rec.OutputDir,
			&startedAt,
			&durationMS,
			&rec.PagesDiscovered,
			&rec.PagesWritten,
			&rec.AssetsDownloaded,
			&rec.AssetsSkipped,
			&failuresJSON,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		rec.StartedAt = parseTimestamp(startedAt)
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		if failuresJSON.Valid && failuresJSON.String != "" {
			if err := json.Unmarshal([]byte(failuresJSON.String), &rec.Failures); err != nil {
				rec.Failures = nil
			}
		}
		results = append(results, rec)
	}

	return results, rows.Err()
}

// LatestRun returns the most recent run for a space, or nil when none exists.
func (mdb *MirrorDB) LatestRun(ctx context.Context, space string) (*RunRecord, error) {
	runs, err := mdb.ListRuns(ctx, space)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return &runs[0], nil
}

// PageRecord is one stored page of a run.
type PageRecord struct {
	// PageID is the page's canonical id.
	PageID string

	// Title is the page's display name.
	Title string

	// Slug is the page's filesystem-safe name.
	Slug string

	// ParentID is the canonical id of the parent page, empty for the root.
	ParentID string

	// Folder and File locate the page relative to the mirror root.
	Folder string
	File   string
}

// GetRunPages returns the pages recorded for a run, ordered by page id.
func (mdb *MirrorDB) GetRunPages(ctx context.Context, runID int64) ([]PageRecord, error) {
	query := `
	SELECT page_id, title, slug, parent_id, folder, file
	FROM run_pages
	WHERE run_id = ?
	ORDER BY page_id
	`

	rows, err := mdb.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run pages: %w", err)
	}
	defer rows.Close()

	var results []PageRecord
	for rows.Next() {
		var rec PageRecord
		var title, parent sql.NullString
		if err := rows.Scan(&rec.PageID, &title, &rec.Slug, &parent, &rec.Folder, &rec.File); err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		rec.Title = title.String
		rec.ParentID = parent.String
		results = append(results, rec)
	}

	return results, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
