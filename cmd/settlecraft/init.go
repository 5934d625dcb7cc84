package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

func initCmd() *cobra.Command {
	var projectName string
	var dsn string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a new settlecraft project",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(projectName) == "" {
				return fmt.Errorf("--name is required")
			}
			if err := runInit(configPath, projectName, dsn); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Wrote %s.\n", configPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&projectName, "name", "", "Project name")
	cmd.Flags().StringVar(&dsn, "dsn", "sqlite://./settlecraft.db", "Database DSN (sqlite:// or postgres://)")
	return cmd
}

func runInit(path, projectName, dsn string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := os.MkdirAll(filepath.Join(filepath.Dir(path), "towns"), 0o755); err != nil {
		return fmt.Errorf("creating towns directory: %w", err)
	}

	contents := fmt.Sprintf("project: %s\nversion: 1\n\ndatabase:\n  dsn: %s\n\ninputs:\n  - ./towns/\n\nexclude:\n  - ./towns/drafts/\n\narchive:\n  driver: fs\n  root: ./archive/\n\nconversion:\n  workers: 4\n\nlog:\n  level: info\n  format: console\n", projectName, dsn)
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
