// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

// gzipCompress fills the GZIP slot directly: klauspost/compress's
// gzip package is a drop-in, faster implementation of the same wire
// format, and its level axis (1-9, or the usual Default/Best
// constants) matches the adapter's caller-facing level directly.
func gzipCompress(data []byte, level int) ([]byte, error) {
	level = clampLevel(level, gzip.BestSpeed, gzip.BestCompression)

	var buf bytes.Buffer
	writer, err := gzip.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, fmt.Errorf("gzip: new writer: %w", err)
	}
	if _, err := writer.Write(data); err != nil {
		return nil, fmt.Errorf("gzip: write: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("gzip: close: %w", err)
	}

	if buf.Len() >= len(data) {
		return nil, errIncompressible
	}
	return buf.Bytes(), nil
}

func gzipDecompress(compressed []byte, uncompressedSize int) ([]byte, error) {
	reader, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("gzip: new reader: %w", err)
	}
	defer reader.Close()

	out := make([]byte, uncompressedSize)
	if _, err := io.ReadFull(reader, out); err != nil {
		return nil, fmt.Errorf("gzip: read: %w", err)
	}
	return out, nil
}

// clampLevel forces level into [lo, hi], treating an unset (zero)
// level as the midpoint of that range rather than its fastest setting.
func clampLevel(level, lo, hi int) int {
	if level == 0 {
		return (lo + hi) / 2
	}
	if level < lo {
		return lo
	}
	if level > hi {
		return hi
	}
	return level
}
