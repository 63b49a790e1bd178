package upgrader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/Tython3/netupgrade/internal/chunker"
	"github.com/Tython3/netupgrade/internal/csharp"
	"github.com/Tython3/netupgrade/internal/llm"
	"github.com/Tython3/netupgrade/internal/prompt"
	"github.com/Tython3/netupgrade/internal/report"
	"github.com/Tython3/netupgrade/internal/scanner"
)

// Upgrader coordinates the upgrade pipeline: discover -> chunk -> prompt
// -> complete -> reassemble -> write.
type Upgrader struct {
	client llm.Client
	store  report.Store // optional run journal, may be nil
}

// Config contains configuration for one upgrade run.
type Config struct {
	Root             string
	Extension        string // file suffix, default ".cs"
	ChunkSize        int    // max characters per chunk, default 200,000
	Workers          int    // concurrent files, default runtime.NumCPU()
	DryRun           bool   // full pipeline, no writes
	RespectGitignore bool
}

// Statistics describes a completed run.
type Statistics struct {
	FilesFound      int
	FilesUpgraded   int
	FilesCompatible int
	FilesFailed     int
	ChunksProcessed int
	ChunksFailed    int
	Duration        time.Duration
	ErrorMessages   []string
}

// New creates an Upgrader. store may be nil to disable the run journal.
func New(client llm.Client, store report.Store) *Upgrader {
	return &Upgrader{client: client, store: store}
}

// Run upgrades every matching file under cfg.Root. Per-file failures are
// contained: they are counted and logged but never abort the run. The
// returned error is non-nil only when the context is canceled.
func (u *Upgrader) Run(ctx context.Context, cfg *Config) (*Statistics, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	chunkSize := cfg.ChunkSize
	if chunkSize <= 0 {
		chunkSize = chunker.DefaultChunkSize
	}

	startTime := time.Now()
	stats := &Statistics{}

	files := scanner.Discover(cfg.Root, scanner.Options{
		Extension:        cfg.Extension,
		RespectGitignore: cfg.RespectGitignore,
	})
	if len(files) == 0 {
		log.Warn().Str("root", cfg.Root).Msg("no matching files found")
		stats.Duration = time.Since(startTime)
		return stats, nil
	}
	stats.FilesFound = len(files)

	log.Info().
		Int("files", len(files)).
		Str("model", u.client.Model()).
		Int("workers", workers).
		Bool("dry_run", cfg.DryRun).
		Msg("starting upgrade")

	var run *report.Run
	if u.store != nil {
		run = &report.Run{RootPath: cfg.Root, Model: u.client.Model(), DryRun: cfg.DryRun}
		if err := u.store.CreateRun(ctx, run); err != nil {
			log.Warn().Err(err).Msg("run journal unavailable, continuing without it")
			run = nil
		}
	}

	// Worker pool: one task per file, bounded by a semaphore. Files are
	// independent; only cancellation crosses task boundaries.
	g, gctx := errgroup.WithContext(ctx)
	semaphore := make(chan struct{}, workers)
	var mu sync.Mutex

	for _, file := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			result := u.processFile(gctx, cfg, chunkSize, file)

			mu.Lock()
			stats.ChunksProcessed += result.Chunks
			stats.ChunksFailed += result.ChunksFailed
			switch result.Status {
			case report.StatusUpgraded:
				stats.FilesUpgraded++
			case report.StatusCompatible:
				stats.FilesCompatible++
			case report.StatusFailed:
				stats.FilesFailed++
			}
			if result.Error != "" {
				stats.ErrorMessages = append(stats.ErrorMessages,
					fmt.Sprintf("%s: %s", result.FilePath, result.Error))
			}
			mu.Unlock()

			if run != nil {
				result.RunID = run.ID
				if err := u.store.RecordFileResult(gctx, result); err != nil {
					log.Warn().Err(err).Str("file", result.FilePath).Msg("failed to journal file result")
				}
			}
			return nil
		})
	}

	err := g.Wait()
	stats.Duration = time.Since(startTime)

	if run != nil {
		run.FilesTotal = stats.FilesFound
		run.FilesUpgraded = stats.FilesUpgraded
		run.FilesCompatible = stats.FilesCompatible
		run.FilesFailed = stats.FilesFailed
		run.ChunksTotal = stats.ChunksProcessed
		run.ChunksFailed = stats.ChunksFailed
		if ferr := u.store.FinishRun(context.WithoutCancel(ctx), run); ferr != nil {
			log.Warn().Err(ferr).Int64("run_id", run.ID).Msg("failed to finalize run journal")
		}
	}

	log.Info().
		Int("upgraded", stats.FilesUpgraded).
		Int("compatible", stats.FilesCompatible).
		Int("failed", stats.FilesFailed).
		Int("chunks", stats.ChunksProcessed).
		Int("chunks_failed", stats.ChunksFailed).
		Dur("duration", stats.Duration).
		Msg("upgrade complete")

	return stats, err
}

// processFile runs the per-file state machine. All failures are folded
// into the returned result; nothing propagates to other files.
func (u *Upgrader) processFile(ctx context.Context, cfg *Config, chunkSize int, path string) *report.FileResult {
	start := time.Now()

	rel, err := filepath.Rel(cfg.Root, path)
	if err != nil {
		rel = path
	}
	logger := log.With().Str("file", rel).Logger()
	logger.Info().Msg("processing file")

	result := &report.FileResult{FilePath: rel}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Status = report.StatusFailed
		result.Error = fmt.Sprintf("read: %v", err)
		result.Duration = time.Since(start)
		logger.Error().Err(err).Msg("failed to read file")
		return result
	}
	original := string(data)

	chunks := chunker.Split(original, chunkSize)
	result.Chunks = len(chunks)
	if len(chunks) == 0 {
		result.Status = report.StatusCompatible
		result.Duration = time.Since(start)
		logger.Info().Msg("empty file, nothing to do")
		return result
	}

	// Context is computed once per file and only when the file splits:
	// a single chunk already is the whole file.
	fileContext := ""
	if len(chunks) > 1 {
		fileContext = csharp.ExtractContext(original)
	}

	// Chunks are upgraded strictly in order, one remote call at a time.
	parts := make([]string, 0, len(chunks))
	var firstChunkErr string
	for i, chunk := range chunks {
		out, err := u.client.Complete(ctx, prompt.SystemPrompt, prompt.Build(chunk, fileContext))
		if err != nil {
			logger.Error().Err(err).
				Int("chunk", i+1).
				Int("chunks", len(chunks)).
				Msg("remote call failed, keeping original chunk")
			result.ChunksFailed++
			if firstChunkErr == "" {
				firstChunkErr = err.Error()
			}
			parts = append(parts, chunk)
			continue
		}
		if strings.TrimSpace(out) == prompt.CompatibleMarker {
			parts = append(parts, chunk)
			continue
		}
		parts = append(parts, out)
	}
	result.Error = firstChunkErr

	final := strings.Join(parts, "\n")
	if final == original {
		result.Status = report.StatusCompatible
	} else {
		result.Status = report.StatusUpgraded
		result.LinesAdded, result.LinesRemoved = diffStats(original, final)
	}

	if !cfg.DryRun {
		if err := writeAtomic(path, final); err != nil {
			result.Status = report.StatusFailed
			result.Error = fmt.Sprintf("write: %v", err)
			result.Duration = time.Since(start)
			logger.Error().Err(err).Msg("failed to write file")
			return result
		}
	}

	result.Duration = time.Since(start)
	logger.Info().
		Str("status", string(result.Status)).
		Int("chunks", result.Chunks).
		Int("lines_added", result.LinesAdded).
		Int("lines_removed", result.LinesRemoved).
		Dur("duration", result.Duration).
		Msg("finished file")
	return result
}
