// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"fmt"

	"github.com/pierrec/lz4/v4"
)

// lzoCompress fills the LZO slot with LZ4 block compression: both are
// byte-oriented, dictionary-free, single-pass compressors built for
// speed over ratio, which is the role LZO plays in this adapter (it is
// also the algorithm [ProbeCompressible] uses internally). The level
// parameter is accepted for interface symmetry; LZ4 block mode has no
// level axis.
func lzoCompress(data []byte, _ int) ([]byte, error) {
	bound := lz4.CompressBlockBound(len(data))
	dst := make([]byte, bound)

	written, err := lz4.CompressBlock(data, dst, nil)
	if err != nil {
		return nil, fmt.Errorf("lzo: %w", err)
	}
	if written == 0 || written >= len(data) {
		return nil, errIncompressible
	}
	return dst[:written], nil
}

func lzoDecompress(compressed []byte, uncompressedSize int) ([]byte, error) {
	dst := make([]byte, uncompressedSize)
	n, err := lz4.UncompressBlock(compressed, dst)
	if err != nil {
		return nil, fmt.Errorf("lzo: %w", err)
	}
	if n != uncompressedSize {
		return nil, fmt.Errorf("lzo: decompressed %d bytes, expected %d", n, uncompressedSize)
	}
	return dst, nil
}
