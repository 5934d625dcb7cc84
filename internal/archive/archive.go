package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"settlecraft/internal/config"
)

var ErrNotFound = errors.New("archive: blob not found")

type Info struct {
	Key          string            `json:"key"`
	Size         int64             `json:"size_bytes"`
	ContentType  string            `json:"content_type,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	LastModified time.Time         `json:"last_modified"`
}

type PutOptions struct {
	ContentType string
	Metadata    map[string]string
}

// Store is a flat key/value blob store. Put replaces existing blobs.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (Info, error)
	Get(ctx context.Context, key string) (Info, io.ReadCloser, error)
	Head(ctx context.Context, key string) (Info, error)
	Delete(ctx context.Context, key string) (bool, error)
	List(ctx context.Context, prefix string) ([]Info, error)
	Driver() string
}

// Open selects a Store from the archive section of the project config. The
// none driver yields a nil Store and no error.
func Open(ctx context.Context, cfg config.ArchiveConfig) (Store, error) {
	switch cfg.Driver {
	case "", config.ArchiveNone:
		return nil, nil
	case config.ArchiveFS:
		fs, err := NewFilesystem(cfg.Root)
		if err != nil {
			return nil, err
		}
		return fs, nil
	case config.ArchiveMemory:
		return NewMemory(), nil
	case config.ArchiveS3:
		s3, err := NewS3(ctx, S3Config{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			PathStyle: cfg.S3.PathStyle,
		})
		if err != nil {
			return nil, err
		}
		return s3, nil
	default:
		return nil, fmt.Errorf("unknown archive driver %s", cfg.Driver)
	}
}

func SourceKey(project, hash string) string {
	return path.Join(cleanSegment(project), "sources", hash+".html.zst")
}

func ExportKey(project, settlementID string) string {
	return path.Join(cleanSegment(project), "exports", settlementID+".json")
}

func cleanSegment(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "/", "_")
	if s == "" || s == "." || s == ".." {
		return "_"
	}
	return s
}

func validKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "..") {
		return fmt.Errorf("invalid blob key %q", key)
	}
	return nil
}
