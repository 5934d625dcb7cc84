package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

const compressedType = "application/zstd"

func PutCompressed(ctx context.Context, s Store, key string, data []byte, metadata map[string]string) (Info, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return Info{}, fmt.Errorf("creating zstd encoder: %w", err)
	}
	compressed := enc.EncodeAll(data, make([]byte, 0, len(data)/2))
	if err := enc.Close(); err != nil {
		return Info{}, fmt.Errorf("closing zstd encoder: %w", err)
	}
	return s.Put(ctx, key, bytes.NewReader(compressed), PutOptions{ContentType: compressedType, Metadata: metadata})
}

func GetCompressed(ctx context.Context, s Store, key string) ([]byte, error) {
	_, rc, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	dec, err := zstd.NewReader(rc)
	if err != nil {
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}
	defer dec.Close()

	data, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("decompressing %s: %w", key, err)
	}
	return data, nil
}
