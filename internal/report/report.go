// Package report persists upgrade run outcomes so a completed run can be
// inspected after the fact: which files were rewritten, which came back
// compatible, and which degraded to their original content because of
// remote failures. The log alone cannot answer that once the process has
// exited.
package report

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested run doesn't exist.
var ErrNotFound = errors.New("not found")

// FileStatus is the terminal state of one file within a run.
type FileStatus string

const (
	StatusUpgraded   FileStatus = "upgraded"
	StatusCompatible FileStatus = "compatible"
	StatusFailed     FileStatus = "failed"
)

// Run is one invocation of the upgrade pipeline.
type Run struct {
	ID              int64
	RootPath        string
	Model           string
	DryRun          bool
	StartedAt       time.Time
	FinishedAt      time.Time
	FilesTotal      int
	FilesUpgraded   int
	FilesCompatible int
	FilesFailed     int
	ChunksTotal     int
	ChunksFailed    int
}

// FileResult is the outcome for a single file.
type FileResult struct {
	ID           int64
	RunID        int64
	FilePath     string // relative to the run's root
	Status       FileStatus
	Chunks       int
	ChunksFailed int
	LinesAdded   int
	LinesRemoved int
	Error        string
	Duration     time.Duration
}

// Store records runs and their per-file results.
type Store interface {
	CreateRun(ctx context.Context, run *Run) error
	FinishRun(ctx context.Context, run *Run) error
	RecordFileResult(ctx context.Context, result *FileResult) error
	GetRun(ctx context.Context, id int64) (*Run, error)
	ListRuns(ctx context.Context, limit int) ([]*Run, error)
	ListFileResults(ctx context.Context, runID int64) ([]*FileResult, error)
	Close() error
}
