package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/Tython3/netupgrade/internal/config"
	"github.com/Tython3/netupgrade/internal/report"
)

// reportCommand returns the report command
func reportCommand() *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Inspect past upgrade runs",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recent runs",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of runs to show",
						Value:   10,
					},
				},
				Action: runReportList,
			},
			{
				Name:      "show",
				Usage:     "Show per-file results for a run",
				ArgsUsage: "RUN_ID",
				Action:    runReportShow,
			},
		},
	}
}

func runReportList(c *cli.Context) error {
	store, err := openReportStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.ListRuns(c.Context, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	fmt.Printf("%-5s %-20s %-12s %-8s %-9s %-10s %-6s %s\n",
		"ID", "STARTED", "MODEL", "UPGRADED", "COMPAT", "FAILED", "DRY", "ROOT")
	for _, r := range runs {
		fmt.Printf("%-5d %-20s %-12s %-8d %-9d %-10d %-6v %s\n",
			r.ID,
			r.StartedAt.Format("2006-01-02 15:04:05"),
			r.Model,
			r.FilesUpgraded,
			r.FilesCompatible,
			r.FilesFailed,
			r.DryRun,
			r.RootPath,
		)
	}
	return nil
}

func runReportShow(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("missing required argument: run ID")
	}
	runID, err := strconv.ParseInt(c.Args().Get(0), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid run ID %q", c.Args().Get(0))
	}

	store, err := openReportStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := store.GetRun(c.Context, runID)
	if err != nil {
		if errors.Is(err, report.ErrNotFound) {
			return fmt.Errorf("run %d not found", runID)
		}
		return fmt.Errorf("failed to load run: %w", err)
	}

	results, err := store.ListFileResults(c.Context, runID)
	if err != nil {
		return fmt.Errorf("failed to load file results: %w", err)
	}

	fmt.Printf("Run %d: %s (model %s, started %s)\n",
		run.ID, run.RootPath, run.Model, run.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Files: %d total, %d upgraded, %d compatible, %d failed\n\n",
		run.FilesTotal, run.FilesUpgraded, run.FilesCompatible, run.FilesFailed)

	for _, r := range results {
		line := fmt.Sprintf("%-10s %s (%d chunks, +%d/-%d lines, %s)",
			r.Status, r.FilePath, r.Chunks, r.LinesAdded, r.LinesRemoved,
			r.Duration.Round(time.Millisecond))
		if r.Error != "" {
			line += " error: " + r.Error
		}
		fmt.Println(line)
	}
	return nil
}

// openReportStore opens the run journal for reading. Unlike upgrade runs,
// report commands fail when the journal cannot be opened.
func openReportStore(c *cli.Context) (report.Store, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	dbPath, err := cfg.ReportDBPath()
	if err != nil {
		return nil, err
	}
	store, err := report.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open run journal: %w", err)
	}
	return store, nil
}
