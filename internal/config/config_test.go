package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadProjectConfig(t *testing.T) {
	t.Run("valid yaml loads", func(t *testing.T) {
		cfg, err := LoadProjectConfig(filepath.Join("testdata", "valid_config.yaml"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.Project != "test-project" {
			t.Fatalf("expected project name, got %q", cfg.Project)
		}
		if cfg.Archive.Driver != ArchiveFS || cfg.Archive.Root != "./archive" {
			t.Fatalf("unexpected archive config %+v", cfg.Archive)
		}
		if cfg.Conversion.Workers != 2 || cfg.Log.Format != "json" {
			t.Fatalf("unexpected conversion/log config %+v %+v", cfg.Conversion, cfg.Log)
		}
	})

	t.Run("valid toml loads", func(t *testing.T) {
		cfg, err := LoadProjectConfig(filepath.Join("testdata", "valid_config.toml"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.Archive.S3.Bucket != "settlements" || !cfg.Archive.S3.PathStyle {
			t.Fatalf("unexpected s3 config %+v", cfg.Archive.S3)
		}
		if cfg.Conversion.Workers != DefaultWorkers {
			t.Fatalf("expected default workers, got %d", cfg.Conversion.Workers)
		}
		if cfg.Log.Level != "info" || cfg.Log.Format != "console" {
			t.Fatalf("expected default log config, got %+v", cfg.Log)
		}
	})

	t.Run("defaults apply", func(t *testing.T) {
		path := writeTempConfig(t, "config.yaml", "project: test\nversion: 1\ndatabase:\n  dsn: sqlite://x.db\n")
		cfg, err := LoadProjectConfig(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.Archive.Driver != ArchiveNone || cfg.Conversion.Workers != DefaultWorkers {
			t.Fatalf("unexpected defaults %+v %+v", cfg.Archive, cfg.Conversion)
		}
	})

	failures := []struct {
		name     string
		contents string
	}{
		{"missing project name", "version: 1\ndatabase:\n  dsn: sqlite://x.db\n"},
		{"bad version", "project: test\nversion: 2\ndatabase:\n  dsn: sqlite://x.db\n"},
		{"missing dsn", "project: test\nversion: 1\n"},
		{"unknown dsn scheme", "project: test\nversion: 1\ndatabase:\n  dsn: mysql://x\n"},
		{"empty input", "project: test\nversion: 1\ndatabase:\n  dsn: sqlite://x.db\ninputs:\n  - ''\n"},
		{"fs archive without root", "project: test\nversion: 1\ndatabase:\n  dsn: sqlite://x.db\narchive:\n  driver: fs\n"},
		{"s3 archive without bucket", "project: test\nversion: 1\ndatabase:\n  dsn: sqlite://x.db\narchive:\n  driver: s3\n"},
		{"unknown archive driver", "project: test\nversion: 1\ndatabase:\n  dsn: sqlite://x.db\narchive:\n  driver: ftp\n"},
		{"negative workers", "project: test\nversion: 1\ndatabase:\n  dsn: sqlite://x.db\nconversion:\n  workers: -1\n"},
		{"unknown log level", "project: test\nversion: 1\ndatabase:\n  dsn: sqlite://x.db\nlog:\n  level: loud\n"},
		{"invalid yaml", "project: [\n"},
	}
	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTempConfig(t, "config.yaml", tt.contents)
			if _, err := LoadProjectConfig(path); err == nil {
				t.Fatalf("expected error")
			}
		})
	}

	t.Run("invalid toml", func(t *testing.T) {
		path := writeTempConfig(t, "config.toml", "project = [\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("file not found", func(t *testing.T) {
		if _, err := LoadProjectConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
			t.Fatalf("expected error")
		}
	})
}

func writeTempConfig(t *testing.T, name, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
