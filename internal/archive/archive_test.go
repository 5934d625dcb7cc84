package archive

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"settlecraft/internal/config"
)

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	info, err := store.Put(ctx, "oakvale/exports/a.json", strings.NewReader(`{"a":1}`), PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"source": "oakvale.html"},
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Key != "oakvale/exports/a.json" || info.Size != 7 {
		t.Fatalf("unexpected info %+v", info)
	}
	if _, err := store.Put(ctx, "oakvale/exports/a.json", strings.NewReader(`{"a":2}`), PutOptions{ContentType: "application/json"}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if _, err := store.Put(ctx, "other/b.json", strings.NewReader(`{}`), PutOptions{}); err != nil {
		t.Fatalf("put other: %v", err)
	}

	head, err := store.Head(ctx, "oakvale/exports/a.json")
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	if head.ContentType != "application/json" {
		t.Fatalf("unexpected content type %q", head.ContentType)
	}

	_, rc, err := store.Get(ctx, "oakvale/exports/a.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != `{"a":2}` {
		t.Fatalf("expected overwritten body, got %q", data)
	}

	list, err := store.List(ctx, "oakvale/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Key != "oakvale/exports/a.json" {
		t.Fatalf("unexpected list %+v", list)
	}

	deleted, err := store.Delete(ctx, "oakvale/exports/a.json")
	if err != nil || !deleted {
		t.Fatalf("delete: %v %v", deleted, err)
	}
	if deleted, _ := store.Delete(ctx, "oakvale/exports/a.json"); deleted {
		t.Fatalf("expected second delete to report missing")
	}
	if _, err := store.Head(ctx, "oakvale/exports/a.json"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemory(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestFilesystem(t *testing.T) {
	store, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("new filesystem: %v", err)
	}
	exerciseStore(t, store)

	if _, err := store.Put(context.Background(), "../escape", strings.NewReader("x"), PutOptions{}); err == nil {
		t.Fatalf("expected traversal to be rejected")
	}
}

func TestCompressedRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	doc := bytes.Repeat([]byte("<font size=\"2\">-<b>John Smith:</b> a tall man.</font><hr/>"), 200)

	info, err := PutCompressed(ctx, store, SourceKey("demo", "abc123"), doc, map[string]string{"source": "oakvale.html"})
	if err != nil {
		t.Fatalf("put compressed: %v", err)
	}
	if info.Size >= int64(len(doc)) {
		t.Fatalf("expected compression, stored %d of %d bytes", info.Size, len(doc))
	}
	if info.ContentType != compressedType {
		t.Fatalf("unexpected content type %q", info.ContentType)
	}

	got, err := GetCompressed(ctx, store, SourceKey("demo", "abc123"))
	if err != nil {
		t.Fatalf("get compressed: %v", err)
	}
	if !bytes.Equal(got, doc) {
		t.Fatalf("round trip mismatch")
	}

	if _, err := GetCompressed(ctx, store, SourceKey("demo", "missing")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestKeys(t *testing.T) {
	if got := SourceKey("my/project", "ff"); got != "my_project/sources/ff.html.zst" {
		t.Fatalf("unexpected source key %q", got)
	}
	if got := ExportKey("", "id"); got != "_/exports/id.json" {
		t.Fatalf("unexpected export key %q", got)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, config.ArchiveConfig{Driver: config.ArchiveNone})
	if err != nil || store != nil {
		t.Fatalf("expected nil store for none driver, got %v %v", store, err)
	}
	store, err = Open(ctx, config.ArchiveConfig{Driver: config.ArchiveMemory})
	if err != nil || store.Driver() != "memory" {
		t.Fatalf("expected memory store, got %v %v", store, err)
	}
	store, err = Open(ctx, config.ArchiveConfig{Driver: config.ArchiveFS, Root: t.TempDir()})
	if err != nil || store.Driver() != "fs" {
		t.Fatalf("expected fs store, got %v %v", store, err)
	}
	if _, err := Open(ctx, config.ArchiveConfig{Driver: "ftp"}); err == nil {
		t.Fatalf("expected unknown driver error")
	}
}
