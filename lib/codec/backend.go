// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import "fmt"

// backendCompress dispatches to the concrete back end for tag. Every
// back end either returns a compressed buffer strictly shorter than
// data, or errIncompressible/errOutOfMemory for the two cases
// CompressChunk handles specially, or a plain error for anything
// else.
func backendCompress(tag Tag, data []byte, level int) ([]byte, error) {
	switch tag {
	case TagBzip2:
		return bzip2Compress(data, level)
	case TagGzip:
		return gzipCompress(data, level)
	case TagLzma:
		return lzmaCompress(data, level)
	case TagLzo:
		return lzoCompress(data, level)
	case TagZpaq:
		return zpaqCompress(data, level)
	default:
		return nil, fmt.Errorf("codec: unsupported backend %s", tag)
	}
}

// backendDecompress dispatches to the concrete back end for tag.
func backendDecompress(tag Tag, compressed []byte, uncompressedSize int) ([]byte, error) {
	switch tag {
	case TagBzip2:
		return bzip2Decompress(compressed, uncompressedSize)
	case TagGzip:
		return gzipDecompress(compressed, uncompressedSize)
	case TagLzma:
		return lzmaDecompress(compressed, uncompressedSize)
	case TagLzo:
		return lzoDecompress(compressed, uncompressedSize)
	case TagZpaq:
		return zpaqDecompress(compressed, uncompressedSize)
	default:
		return nil, fmt.Errorf("codec: unsupported backend %s", tag)
	}
}
