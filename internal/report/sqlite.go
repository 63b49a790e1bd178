package report

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    root_path TEXT NOT NULL,
    model TEXT NOT NULL,
    dry_run INTEGER NOT NULL DEFAULT 0,
    started_at TIMESTAMP NOT NULL,
    finished_at TIMESTAMP,
    files_total INTEGER NOT NULL DEFAULT 0,
    files_upgraded INTEGER NOT NULL DEFAULT 0,
    files_compatible INTEGER NOT NULL DEFAULT 0,
    files_failed INTEGER NOT NULL DEFAULT 0,
    chunks_total INTEGER NOT NULL DEFAULT 0,
    chunks_failed INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS file_results (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id INTEGER NOT NULL,
    file_path TEXT NOT NULL,
    status TEXT NOT NULL,
    chunks INTEGER NOT NULL DEFAULT 0,
    chunks_failed INTEGER NOT NULL DEFAULT 0,
    lines_added INTEGER NOT NULL DEFAULT 0,
    lines_removed INTEGER NOT NULL DEFAULT 0,
    error TEXT NOT NULL DEFAULT '',
    duration_ms INTEGER NOT NULL DEFAULT 0,
    FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_file_results_run ON file_results(run_id);
`

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the journal database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// WAL mode so a concurrent reader doesn't block the run's writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	// SQLite benefits from a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateRun inserts a new run row and fills in run.ID.
func (s *SQLiteStore) CreateRun(ctx context.Context, run *Run) error {
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (root_path, model, dry_run, started_at) VALUES (?, ?, ?, ?)`,
		run.RootPath, run.Model, boolToInt(run.DryRun), run.StartedAt)
	if err != nil {
		return fmt.Errorf("create run: %w", err)
	}
	run.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("run id: %w", err)
	}
	return nil
}

// FinishRun stores the run's final counters and finish time.
func (s *SQLiteStore) FinishRun(ctx context.Context, run *Run) error {
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, files_total = ?, files_upgraded = ?,
		        files_compatible = ?, files_failed = ?, chunks_total = ?, chunks_failed = ?
		 WHERE id = ?`,
		run.FinishedAt, run.FilesTotal, run.FilesUpgraded,
		run.FilesCompatible, run.FilesFailed, run.ChunksTotal, run.ChunksFailed,
		run.ID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordFileResult inserts one file's outcome and fills in result.ID.
func (s *SQLiteStore) RecordFileResult(ctx context.Context, result *FileResult) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO file_results (run_id, file_path, status, chunks, chunks_failed,
		        lines_added, lines_removed, error, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.RunID, result.FilePath, string(result.Status), result.Chunks,
		result.ChunksFailed, result.LinesAdded, result.LinesRemoved,
		result.Error, result.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("record file result: %w", err)
	}
	result.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("file result id: %w", err)
	}
	return nil
}

// GetRun retrieves a run by id.
func (s *SQLiteStore) GetRun(ctx context.Context, id int64) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, root_path, model, dry_run, started_at, finished_at,
		        files_total, files_upgraded, files_compatible, files_failed,
		        chunks_total, chunks_failed
		 FROM runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, root_path, model, dry_run, started_at, finished_at,
		        files_total, files_upgraded, files_compatible, files_failed,
		        chunks_total, chunks_failed
		 FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// ListFileResults returns every file outcome recorded for a run, in
// insertion order.
func (s *SQLiteStore) ListFileResults(ctx context.Context, runID int64) ([]*FileResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, file_path, status, chunks, chunks_failed,
		        lines_added, lines_removed, error, duration_ms
		 FROM file_results WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("list file results: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*FileResult
	for rows.Next() {
		r := &FileResult{}
		var status string
		var durationMs int64
		if err := rows.Scan(&r.ID, &r.RunID, &r.FilePath, &status, &r.Chunks,
			&r.ChunksFailed, &r.LinesAdded, &r.LinesRemoved, &r.Error, &durationMs); err != nil {
			return nil, fmt.Errorf("scan file result: %w", err)
		}
		r.Status = FileStatus(status)
		r.Duration = time.Duration(durationMs) * time.Millisecond
		results = append(results, r)
	}
	return results, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	run := &Run{}
	var dryRun int
	var finished sql.NullTime
	if err := row.Scan(&run.ID, &run.RootPath, &run.Model, &dryRun,
		&run.StartedAt, &finished, &run.FilesTotal, &run.FilesUpgraded,
		&run.FilesCompatible, &run.FilesFailed, &run.ChunksTotal, &run.ChunksFailed); err != nil {
		return nil, err
	}
	run.DryRun = dryRun != 0
	if finished.Valid {
		run.FinishedAt = finished.Time
	}
	return run, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
