// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// zstd.Encoder and zstd.Decoder are expensive to construct (they
// allocate the match-finder tables for their level) but safe for
// concurrent use once built, so both the LZMA and ZPAQ slots share a
// small cache of encoders keyed by zstd level, the same pattern used
// for the fixed-level zstd encoder elsewhere in this dependency
// family.
var (
	zstdEncodersMu sync.Mutex
	zstdEncoders   = map[int]*zstd.Encoder{}

	zstdDecoderOnce sync.Once
	zstdDecoder     *zstd.Decoder
	zstdDecoderErr  error
)

func zstdEncoderForLevel(level int) (*zstd.Encoder, error) {
	zstdEncodersMu.Lock()
	defer zstdEncodersMu.Unlock()

	if encoder, ok := zstdEncoders[level]; ok {
		return encoder, nil
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
	if err != nil {
		return nil, err
	}
	zstdEncoders[level] = encoder
	return encoder, nil
}

func sharedZstdDecoder() (*zstd.Decoder, error) {
	zstdDecoderOnce.Do(func() {
		zstdDecoder, zstdDecoderErr = zstd.NewReader(nil)
	})
	return zstdDecoder, zstdDecoderErr
}

// zstdCompress is the shared body for the LZMA and ZPAQ slots: both
// stand in a real general-purpose compressor for a back end this
// adapter's dependency set cannot provide a genuine implementation
// of, differing only in which zstd level they aim for.
func zstdCompress(data []byte, zstdLevel int) ([]byte, error) {
	encoder, err := zstdEncoderForLevel(zstdLevel)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errOutOfMemory, err)
	}

	compressed := encoder.EncodeAll(data, nil)
	if len(compressed) >= len(data) {
		return nil, errIncompressible
	}
	return compressed, nil
}

func zstdDecompress(compressed []byte, uncompressedSize int) ([]byte, error) {
	decoder, err := sharedZstdDecoder()
	if err != nil {
		return nil, fmt.Errorf("new decoder: %w", err)
	}

	out, err := decoder.DecodeAll(compressed, make([]byte, 0, uncompressedSize))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if len(out) != uncompressedSize {
		return nil, fmt.Errorf("decoded %d bytes, expected %d", len(out), uncompressedSize)
	}
	return out, nil
}
