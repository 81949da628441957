// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import "fmt"

// Tag identifies the compression back end used for a chunk. Tags are
// stored as a single byte in every chunk header; these values are
// wire-format constants.
type Tag uint8

const (
	// TagNone marks an uncompressed chunk: the payload is stored
	// verbatim. Used both when compression would not help (the
	// incompressibility probe said no) and when a back end's output
	// turned out not to be strictly smaller than its input.
	TagNone Tag = 0

	// TagBzip2 marks a chunk compressed with the BZIP2-slot back end.
	TagBzip2 Tag = 1

	// TagGzip marks a chunk compressed with the GZIP-slot back end.
	// The only tag whose compression path skips the incompressibility
	// probe.
	TagGzip Tag = 2

	// TagLzma marks a chunk compressed with the LZMA-slot back end.
	// Carries a level axis rescaled to a 1-7 range (see [RescaleLevel])
	// and an out-of-memory fallback to BZIP2.
	TagLzma Tag = 3

	// TagLzo marks a chunk compressed with the LZO-slot back end. Also
	// the algorithm used internally by [ProbeCompressible].
	TagLzo Tag = 4

	// TagZpaq marks a chunk compressed with the ZPAQ-slot back end,
	// the slowest and highest-ratio of the five.
	TagZpaq Tag = 5
)

// String returns the human-readable name of a tag.
func (tag Tag) String() string {
	switch tag {
	case TagNone:
		return "none"
	case TagBzip2:
		return "bzip2"
	case TagGzip:
		return "gzip"
	case TagLzma:
		return "lzma"
	case TagLzo:
		return "lzo"
	case TagZpaq:
		return "zpaq"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(tag))
	}
}

// ParseTag parses a tag from its string representation.
func ParseTag(name string) (Tag, error) {
	switch name {
	case "none":
		return TagNone, nil
	case "bzip2":
		return TagBzip2, nil
	case "gzip":
		return TagGzip, nil
	case "lzma":
		return TagLzma, nil
	case "lzo":
		return TagLzo, nil
	case "zpaq":
		return TagZpaq, nil
	default:
		return 0, fmt.Errorf("codec: unknown tag name %q", name)
	}
}

// Valid reports whether tag is one of the six defined wire values.
func (tag Tag) Valid() bool {
	return tag <= TagZpaq
}
