package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPath    = "settlecraft.yaml"
	DefaultWorkers = 4
)

// Archive drivers.
const (
	ArchiveNone   = "none"
	ArchiveFS     = "fs"
	ArchiveS3     = "s3"
	ArchiveMemory = "memory"
)

type ProjectConfig struct {
	Project    string           `yaml:"project" toml:"project"`
	Version    int              `yaml:"version" toml:"version"`
	Database   DatabaseConfig   `yaml:"database" toml:"database"`
	Inputs     []string         `yaml:"inputs" toml:"inputs"`
	Exclude    []string         `yaml:"exclude" toml:"exclude"`
	Archive    ArchiveConfig    `yaml:"archive" toml:"archive"`
	Conversion ConversionConfig `yaml:"conversion" toml:"conversion"`
	Log        LogConfig        `yaml:"log" toml:"log"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn" toml:"dsn"`
}

type ArchiveConfig struct {
	Driver string   `yaml:"driver" toml:"driver"`
	Root   string   `yaml:"root" toml:"root"`
	S3     S3Config `yaml:"s3" toml:"s3"`
}

type S3Config struct {
	Bucket    string `yaml:"bucket" toml:"bucket"`
	Region    string `yaml:"region" toml:"region"`
	Endpoint  string `yaml:"endpoint" toml:"endpoint"`
	PathStyle bool   `yaml:"path_style" toml:"path_style"`
}

type ConversionConfig struct {
	Workers int `yaml:"workers" toml:"workers"`
}

type LogConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// LoadProjectConfig reads a project file. Files ending in .toml are decoded
// as TOML, everything else as YAML.
func LoadProjectConfig(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	cfg := defaults()
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	if err := validateProjectConfig(cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	return cfg, nil
}

func defaults() *ProjectConfig {
	return &ProjectConfig{
		Archive:    ArchiveConfig{Driver: ArchiveNone},
		Conversion: ConversionConfig{Workers: DefaultWorkers},
		Log:        LogConfig{Level: "info", Format: "console"},
	}
}

func validateProjectConfig(cfg *ProjectConfig) error {
	if strings.TrimSpace(cfg.Project) == "" {
		return fmt.Errorf("project name is required")
	}
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported version: %d", cfg.Version)
	}
	dsn := strings.TrimSpace(cfg.Database.DSN)
	if dsn == "" {
		return fmt.Errorf("database dsn is required")
	}
	if !strings.HasPrefix(dsn, "sqlite://") && !strings.HasPrefix(dsn, "postgres://") && !strings.HasPrefix(dsn, "postgresql://") {
		return fmt.Errorf("unsupported database dsn scheme: %s", dsn)
	}
	for i, input := range cfg.Inputs {
		if strings.TrimSpace(input) == "" {
			return fmt.Errorf("input %d path is empty", i)
		}
	}

	switch cfg.Archive.Driver {
	case "":
		cfg.Archive.Driver = ArchiveNone
	case ArchiveNone, ArchiveMemory:
	case ArchiveFS:
		if strings.TrimSpace(cfg.Archive.Root) == "" {
			return fmt.Errorf("archive root is required for the fs driver")
		}
	case ArchiveS3:
		if strings.TrimSpace(cfg.Archive.S3.Bucket) == "" {
			return fmt.Errorf("archive s3 bucket is required")
		}
	default:
		return fmt.Errorf("unknown archive driver: %s", cfg.Archive.Driver)
	}

	if cfg.Conversion.Workers < 0 {
		return fmt.Errorf("conversion workers must not be negative")
	}
	if cfg.Conversion.Workers == 0 {
		cfg.Conversion.Workers = DefaultWorkers
	}

	switch strings.ToLower(cfg.Log.Level) {
	case "":
		cfg.Log.Level = "info"
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level: %s", cfg.Log.Level)
	}
	switch cfg.Log.Format {
	case "":
		cfg.Log.Format = "console"
	case "console", "json":
	default:
		return fmt.Errorf("unknown log format: %s", cfg.Log.Format)
	}

	return nil
}
