// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"fmt"
)

// zpaqCompress fills the ZPAQ slot, the slowest and highest-ratio of
// the five. No Go binding for ZPAQ's context-mixing compressor exists
// in this adapter's dependency set, so zstd pinned at its best
// compression level stands in — the closest available approximation
// of "spend the most CPU for the smallest output" among the
// libraries this adapter already depends on.
func zpaqCompress(data []byte, _ int) ([]byte, error) {
	compressed, err := zstdCompress(data, zstdBestCompressionLevel)
	if err != nil {
		return nil, fmt.Errorf("zpaq: %w", err)
	}
	return compressed, nil
}

func zpaqDecompress(compressed []byte, uncompressedSize int) ([]byte, error) {
	out, err := zstdDecompress(compressed, uncompressedSize)
	if err != nil {
		return nil, fmt.Errorf("zpaq: %w", err)
	}
	return out, nil
}

// zstdBestCompressionLevel is the zstd numeric level corresponding to
// zstd.SpeedBestCompression, used directly rather than through the
// caller-facing 1-9 axis: ZPAQ in the original format has no level
// parameter of its own.
const zstdBestCompressionLevel = 19
