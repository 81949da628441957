// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import "fmt"

// lzmaCompress fills the LZMA slot with zstd: no pure-Go LZMA
// implementation is available in this adapter's dependency set, and
// zstd plays the same "high ratio, general purpose" role LZMA does
// among the five back ends. The caller-facing level has already been
// rescaled to LZMA's 1-7 axis by the time it reaches here (see
// [RescaleLevel]); this maps that onto zstd's 1-22 axis.
func lzmaCompress(data []byte, lzmaLevel int) ([]byte, error) {
	zstdLevel := lzmaLevel * 22 / 7
	if zstdLevel < 1 {
		zstdLevel = 1
	}

	compressed, err := zstdCompress(data, zstdLevel)
	if err != nil {
		return nil, fmt.Errorf("lzma: %w", err)
	}
	return compressed, nil
}

func lzmaDecompress(compressed []byte, uncompressedSize int) ([]byte, error) {
	out, err := zstdDecompress(compressed, uncompressedSize)
	if err != nil {
		return nil, fmt.Errorf("lzma: %w", err)
	}
	return out, nil
}
