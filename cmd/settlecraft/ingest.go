package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"settlecraft/internal/archive"
	"settlecraft/internal/ingest"
	"settlecraft/internal/metrics"
)

var ingestFull bool
var ingestWorkers int

func ingestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Convert the project's settlement pages and publish them to the database",
		RunE:  runIngest,
	}
	cmd.Flags().BoolVar(&ingestFull, "full", false, "Force full re-ingestion (ignore incremental hashes)")
	cmd.Flags().IntVar(&ingestWorkers, "workers", 0, "Concurrent conversions (default from config)")
	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, log, err := loadProject()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	arc, err := archive.Open(ctx, cfg.Archive)
	if err != nil {
		return err
	}

	started := time.Now()
	result, err := ingest.Run(ctx, cfg, db, arc, ingest.Options{
		Full:    ingestFull,
		Workers: ingestWorkers,
		Logger:  log,
		Metrics: metrics.New(),
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Ingestion complete (%s).\n", time.Since(started).Round(time.Millisecond))
	fmt.Fprintf(os.Stdout, "  Settlements published: %s\n", humanize.Comma(int64(result.Published)))
	fmt.Fprintf(os.Stdout, "  Settlements removed:   %s\n", humanize.Comma(int64(result.Removed)))
	fmt.Fprintf(os.Stdout, "  Files skipped:         %s\n", humanize.Comma(int64(result.FilesSkipped)))
	fmt.Fprintf(os.Stdout, "  Conversion warnings:   %s\n", humanize.Comma(int64(result.Warnings)))
	if arc != nil {
		fmt.Fprintf(os.Stdout, "  Archive:               %s\n", arc.Driver())
	}

	if len(result.Errors) > 0 {
		fmt.Fprintf(os.Stdout, "\nErrors (%d):\n", len(result.Errors))
		for _, item := range result.Errors {
			fmt.Fprintf(os.Stdout, "  - %v\n", item)
		}
		return fmt.Errorf("ingestion completed with errors")
	}

	return nil
}
