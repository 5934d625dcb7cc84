package ingest

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"settlecraft/internal/archive"
	"settlecraft/internal/config"
	"settlecraft/internal/convert"
	"settlecraft/internal/export"
	"settlecraft/internal/metrics"
	"settlecraft/internal/store"
)

// Store is the part of store.Store that publishing needs.
type Store interface {
	EnsureSchema(ctx context.Context) error
	GetSourceHashes(ctx context.Context, project string) (map[string]string, error)
	SaveSettlement(ctx context.Context, rec store.SettlementRecord) error
	RemoveStaleSettlements(ctx context.Context, project string, currentSourceFiles []string) (int64, error)
}

type Result struct {
	Published    int
	FilesSkipped int
	Removed      int
	Warnings     int
	Errors       []error
}

type Options struct {
	Full    bool
	Workers int
	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

var documentExtensions = []string{".html", ".htm"}

// Run converts every generator document under the configured inputs and
// publishes the settlements to db. Unchanged documents are skipped unless
// Full is set. Failures of single documents are collected in Result.Errors
// and do not stop the run. arc may be nil.
func Run(ctx context.Context, cfg *config.ProjectConfig, db Store, arc archive.Store, options Options) (*Result, error) {
	log := options.Logger
	if log == nil {
		log = zap.NewNop()
	}
	workers := options.Workers
	if workers <= 0 {
		workers = cfg.Conversion.Workers
	}
	if workers <= 0 {
		workers = config.DefaultWorkers
	}

	if err := db.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	var existingHashes map[string]string
	if !options.Full {
		var err error
		existingHashes, err = db.GetSourceHashes(ctx, cfg.Project)
		if err != nil {
			return nil, fmt.Errorf("get source hashes: %w", err)
		}
	}

	files, err := walkDocuments(cfg.Inputs, cfg.Exclude)
	if err != nil {
		return nil, fmt.Errorf("walking inputs: %w", err)
	}

	result := &Result{}
	var mu sync.Mutex
	record := func(fn func(r *Result)) {
		mu.Lock()
		fn(result)
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p := publisher{cfg: cfg, db: db, arc: arc, log: log, metrics: options.Metrics}
			outcome, err := p.publish(gctx, path, existingHashes[path], options.Full)
			record(func(r *Result) {
				switch {
				case err != nil:
					r.Errors = append(r.Errors, err)
				case outcome.skipped:
					r.FilesSkipped++
				default:
					r.Published++
					r.Warnings += outcome.warnings
				}
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return result, err
	}

	removed, err := db.RemoveStaleSettlements(ctx, cfg.Project, files)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Errorf("removing stale settlements: %w", err))
	} else {
		result.Removed = int(removed)
	}

	log.Info("ingest finished",
		zap.Int("published", result.Published),
		zap.Int("skipped", result.FilesSkipped),
		zap.Int("removed", result.Removed),
		zap.Int("errors", len(result.Errors)),
	)
	return result, nil
}

type publisher struct {
	cfg     *config.ProjectConfig
	db      Store
	arc     archive.Store
	log     *zap.Logger
	metrics *metrics.Metrics
}

type outcome struct {
	skipped  bool
	warnings int
}

func (p publisher) publish(ctx context.Context, path, previousHash string, full bool) (outcome, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return outcome{}, fmt.Errorf("reading %s: %w", path, err)
	}
	hash := computeHash(data)
	if !full && previousHash == hash {
		p.metrics.Conversion(metrics.OutcomeSkipped)
		return outcome{skipped: true}, nil
	}

	res, err := convert.ConvertReader(bytes.NewReader(data), convert.Options{
		Logger:  p.log.With(zap.String("file", path)),
		Metrics: p.metrics,
	})
	if errors.Is(err, convert.ErrNoSections) {
		p.log.Debug("not a settlement document", zap.String("file", path))
		return outcome{skipped: true}, nil
	}
	if err != nil {
		return outcome{}, fmt.Errorf("converting %s: %w", path, err)
	}

	rec := store.SettlementRecord{
		ID:         store.NewSettlementID(),
		Project:    p.cfg.Project,
		SourceFile: path,
		SourceHash: hash,
		Settlement: res.Settlement,
		Content:    res.Content,
		Warnings:   len(res.Warnings),
	}
	if err := p.db.SaveSettlement(ctx, rec); err != nil {
		return outcome{}, fmt.Errorf("saving %s: %w", path, err)
	}
	p.metrics.Published()

	if p.arc != nil {
		if err := p.archive(ctx, rec, data, res); err != nil {
			return outcome{}, fmt.Errorf("archiving %s: %w", path, err)
		}
	}

	p.log.Info("published settlement",
		zap.String("file", path),
		zap.String("settlement", rec.ID),
		zap.String("title", res.Settlement.Title),
	)
	return outcome{warnings: len(res.Warnings)}, nil
}

func (p publisher) archive(ctx context.Context, rec store.SettlementRecord, raw []byte, res *convert.Result) error {
	md := map[string]string{"source": filepath.Base(rec.SourceFile), "settlement": rec.ID}
	if _, err := archive.PutCompressed(ctx, p.arc, archive.SourceKey(rec.Project, rec.SourceHash), raw, md); err != nil {
		return err
	}
	doc, err := export.Marshal(res)
	if err != nil {
		return err
	}
	_, err = p.arc.Put(ctx, archive.ExportKey(rec.Project, rec.ID), bytes.NewReader(doc), archive.PutOptions{
		ContentType: "application/json",
		Metadata:    md,
	})
	return err
}

func walkDocuments(roots []string, excludes []string) ([]string, error) {
	excluded := make([]string, 0, len(excludes))
	for _, path := range excludes {
		if path == "" {
			continue
		}
		excluded = append(excluded, filepath.Clean(path))
	}

	var files []string
	for _, root := range roots {
		if root == "" {
			continue
		}
		root = filepath.Clean(root)
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if isExcluded(path, excluded) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() || !isDocument(d.Name()) {
				return nil
			}
			files = append(files, path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

func isDocument(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, candidate := range documentExtensions {
		if ext == candidate {
			return true
		}
	}
	return false
}

func isExcluded(path string, excludes []string) bool {
	clean := filepath.Clean(path)
	for _, exclude := range excludes {
		if exclude == clean || strings.HasPrefix(clean, exclude+string(os.PathSeparator)) {
			return true
		}
	}
	return false
}

func computeHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
