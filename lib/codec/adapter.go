// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"errors"
	"fmt"
)

// Config carries the caller-selected back end, compression level, and
// probe threshold. It is read-only once a container is open — workers
// hold a shared reference, never a private copy that could drift.
type Config struct {
	// Backend is the back end requested for chunks that are not
	// stored with TagNone outright.
	Backend Tag

	// Level is the caller-facing compression level, 1 (fastest) to 9
	// (smallest). Back ends with a narrower native range rescale it
	// (see [RescaleLevel] for LZMA's 1-7 axis).
	Level int

	// Threshold gates the incompressibility probe: a probe slice is
	// judged "compressible" when its compressed fraction falls below
	// Threshold. A Threshold greater than 1 short-circuits the probe
	// to always report compressible, skipping the cost entirely.
	Threshold float64

	// ProbeWindow is the cap on how large a probe slice grows to
	// (STREAM_BUFSIZE in the container's terms).
	ProbeWindow int
}

// compressFunc indirects through backendCompress so tests can inject
// a failing back end to exercise the LZMA-to-BZIP2 out-of-memory
// fallback without needing to genuinely exhaust memory.
var compressFunc = backendCompress

// errIncompressible is returned internally by back ends (and by the
// probe) to mean "do not use this back end, store as TagNone". It
// never reaches a caller of CompressChunk.
var errIncompressible = errors.New("codec: incompressible")

// errOutOfMemory is returned internally by a back end compressor that
// could not allocate the working state it needed. CompressChunk
// treats it as a signal to retry the same payload as TagBzip2 when
// the original request was TagLzma.
var errOutOfMemory = errors.New("codec: backend out of memory")

// CodecError reports a non-recoverable failure from a compression or
// decompression back end — anything other than the routine
// "incompressible, fall back to none" and "out of memory, fall back
// to bzip2" cases, which are handled internally and never surface as
// errors.
type CodecError struct {
	Tag Tag
	Op  string
	Err error
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("codec: %s (%s): %v", e.Op, e.Tag, e.Err)
}

func (e *CodecError) Unwrap() error {
	return e.Err
}

// RescaleLevel maps the caller-facing 1-9 level onto LZMA's narrower
// 1-7 axis: level*7/9, floored at 1. LZMA exposes seven levels rather
// than nine, so level 9 (the caller's "smallest possible") lands on
// LZMA's level 7, and every level below the point where the rescale
// would round to zero is clamped up to 1 instead.
func RescaleLevel(level int) int {
	rescaled := level * 7 / 9
	if rescaled < 1 {
		rescaled = 1
	}
	return rescaled
}

// CompressChunk compresses data using the configuration's back end.
// It returns the bytes to store, the tag that was actually used (which
// may be TagNone, or TagBzip2 if an LZMA request fell back), and an
// error only for a non-recoverable back-end failure.
//
// The returned slice is either data itself (TagNone) or a freshly
// allocated compressed buffer — CompressChunk never returns an alias
// that the caller must avoid mutating data through.
func CompressChunk(data []byte, cfg Config) ([]byte, Tag, error) {
	if cfg.Backend == TagNone || len(data) == 0 {
		return data, TagNone, nil
	}

	// GZIP is the one back end that skips the probe (a historical
	// exception in the format this adapter is wire-compatible with).
	if cfg.Backend != TagGzip {
		compressible := ProbeCompressible(data, cfg.Threshold, cfg.ProbeWindow)
		if !compressible {
			return data, TagNone, nil
		}
	}

	level := cfg.Level
	if cfg.Backend == TagLzma {
		level = RescaleLevel(level)
	}

	compressed, err := compressFunc(cfg.Backend, data, level)
	usedTag := cfg.Backend

	if err != nil {
		switch {
		case errors.Is(err, errIncompressible):
			return data, TagNone, nil

		case cfg.Backend == TagLzma && errors.Is(err, errOutOfMemory):
			compressed, err = compressFunc(TagBzip2, data, cfg.Level)
			usedTag = TagBzip2
			if err != nil {
				if errors.Is(err, errIncompressible) {
					return data, TagNone, nil
				}
				return nil, 0, &CodecError{Tag: TagBzip2, Op: "compress (lzma fallback)", Err: err}
			}

		default:
			return nil, 0, &CodecError{Tag: cfg.Backend, Op: "compress", Err: err}
		}
	}

	if len(compressed) >= len(data) {
		return data, TagNone, nil
	}
	return compressed, usedTag, nil
}

// DecompressChunk decompresses compressed data that was tagged with
// tag, verifying the result is exactly uncompressedSize bytes.
func DecompressChunk(compressed []byte, tag Tag, uncompressedSize int) ([]byte, error) {
	if tag == TagNone {
		if len(compressed) != uncompressedSize {
			return nil, fmt.Errorf("codec: uncompressed chunk is %d bytes, expected %d",
				len(compressed), uncompressedSize)
		}
		return compressed, nil
	}

	out, err := backendDecompress(tag, compressed, uncompressedSize)
	if err != nil {
		return nil, &CodecError{Tag: tag, Op: "decompress", Err: err}
	}
	return out, nil
}

// IsIncompressible reports whether err is (or wraps) the sentinel a
// back end uses to say "this block did not shrink".
func IsIncompressible(err error) bool {
	return errors.Is(err, errIncompressible)
}
