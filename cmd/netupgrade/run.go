package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/Tython3/netupgrade/internal/config"
	"github.com/Tython3/netupgrade/internal/llm"
	"github.com/Tython3/netupgrade/internal/report"
	"github.com/Tython3/netupgrade/internal/upgrader"
)

// runCommand returns the run command
func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Upgrade every matching file under a directory",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "dry-run",
				Aliases: []string{"d"},
				Usage:   "Run the full pipeline without writing any files",
			},
			&cli.StringFlag{
				Name:    "model",
				Aliases: []string{"m"},
				Usage:   "Override the completion model",
			},
			&cli.StringFlag{
				Name:  "extension",
				Usage: "File extension to process, including the dot",
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Usage:   "Files processed concurrently (0 uses the CPU count)",
			},
			&cli.IntFlag{
				Name:  "chunk-size",
				Usage: "Maximum characters sent to the model per request",
			},
			&cli.BoolFlag{
				Name:  "no-gitignore",
				Usage: "Process files even when .gitignore excludes them",
			},
		},
		ArgsUsage: "DIRECTORY",
		Action:    runUpgrade,
	}
}

func runUpgrade(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("missing required argument: directory to upgrade")
	}

	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyLogLevel(c, cfg)

	root, err := filepath.Abs(c.Args().Get(0))
	if err != nil {
		return fmt.Errorf("resolve directory: %w", err)
	}
	cfg.Root = root

	if c.Bool("dry-run") {
		cfg.DryRun = true
	}
	if m := c.String("model"); m != "" {
		cfg.Model = m
	}
	if ext := c.String("extension"); ext != "" {
		cfg.Extension = ext
	}
	if c.IsSet("workers") {
		cfg.Workers = c.Int("workers")
	}
	if c.IsSet("chunk-size") {
		cfg.ChunkSize = c.Int("chunk-size")
	}
	if c.Bool("no-gitignore") {
		cfg.RespectGitignore = false
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	client, err := llm.NewOpenAIClient(llm.Options{
		Model:     cfg.Model,
		APIKey:    cfg.APIKey,
		BaseURL:   cfg.BaseURL,
		CacheSize: cfg.CacheSize,
	})
	if err != nil {
		return fmt.Errorf("failed to create completion client: %w", err)
	}
	defer client.Close()

	store := openStore(cfg)
	if store != nil {
		defer store.Close()
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	stats, err := upgrader.New(client, store).Run(ctx, &upgrader.Config{
		Root:             cfg.Root,
		Extension:        cfg.Extension,
		ChunkSize:        cfg.ChunkSize,
		Workers:          cfg.Workers,
		DryRun:           cfg.DryRun,
		RespectGitignore: cfg.RespectGitignore,
	})
	if err != nil {
		return err
	}

	printSummary(stats, cfg.DryRun)
	return nil
}

// openStore opens the run journal, or returns nil when unavailable. A
// missing journal never blocks an upgrade.
func openStore(cfg *config.Config) report.Store {
	dbPath, err := cfg.ReportDBPath()
	if err != nil {
		log.Warn().Err(err).Msg("run journal disabled")
		return nil
	}
	store, err := report.NewSQLiteStore(dbPath)
	if err != nil {
		log.Warn().Err(err).Str("path", dbPath).Msg("run journal disabled")
		return nil
	}
	return store
}

func applyLogLevel(c *cli.Context, cfg *config.Config) {
	if c.String("log-level") != "" || cfg.LogLevel == "" {
		return
	}
	if parsed, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(parsed)
	}
}

func printSummary(stats *upgrader.Statistics, dryRun bool) {
	fmt.Printf("Files found:      %d\n", stats.FilesFound)
	fmt.Printf("Files upgraded:   %d\n", stats.FilesUpgraded)
	fmt.Printf("Files compatible: %d\n", stats.FilesCompatible)
	fmt.Printf("Files failed:     %d\n", stats.FilesFailed)
	fmt.Printf("Chunks processed: %d (%d failed)\n", stats.ChunksProcessed, stats.ChunksFailed)
	fmt.Printf("Duration:         %s\n", stats.Duration.Round(time.Millisecond))
	if dryRun {
		fmt.Println("Dry run: no files were written.")
	}
}
