package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"settlecraft/internal/config"
	"settlecraft/internal/convert"
	"settlecraft/internal/export"
)

func convertCmd() *cobra.Command {
	var outDir string
	var verbose bool
	cmd := &cobra.Command{
		Use:   "convert <file.html>...",
		Short: "Convert settlement pages into JSON documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(args, outDir, verbose)
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Directory for the JSON documents (default stdout)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log conversion details")
	return cmd
}

func runConvert(files []string, outDir string, verbose bool) error {
	level := "warn"
	if verbose {
		level = "debug"
	}
	log, err := newLogger(config.LogConfig{Level: level, Format: "console"})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if outDir != "" {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", outDir, err)
		}
	}

	failed := 0
	for _, path := range files {
		res, err := convertFile(path, convert.Options{Logger: log})
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			failed++
			continue
		}

		if outDir == "" {
			if err := export.Write(os.Stdout, res); err != nil {
				return err
			}
			continue
		}

		var buf bytes.Buffer
		if err := export.Write(&buf, res); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			failed++
			continue
		}
		target := filepath.Join(outDir, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))+".json")
		if err := os.WriteFile(target, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", target, err)
		}
		fmt.Fprintf(os.Stdout, "%s -> %s (%s, %d buildings, %d npcs, %d warnings)\n",
			path,
			target,
			humanize.Bytes(uint64(buf.Len())),
			len(res.Settlement.Buildings),
			len(res.Settlement.Npcs),
			len(res.Warnings),
		)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed to convert", failed, len(files))
	}
	return nil
}

func convertFile(path string, opts convert.Options) (*convert.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return convert.ConvertReader(f, opts)
}
