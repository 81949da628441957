// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package container

import (
	"fmt"
	"io"

	"github.com/clayne/mscc/lib/codec"
	"github.com/clayne/mscc/lib/streamio"
)

// headerLen is the on-disk size of a chunk header in the modern
// (version >= 0.4) layout: 1 byte tag, 8 bytes compressed length, 8
// bytes uncompressed length, 8 bytes next-chunk offset.
const headerLen = 25

// legacyHeaderLen is the on-disk size of a chunk header for containers
// recorded with major_version == 0 && minor_version < 4: the same four
// fields, but the three integer fields are 4 bytes each instead of 8.
const legacyHeaderLen = 13

// Field offsets within a modern 25-byte header. nextOffOffset is the
// offset an open question in this format's design notes singles out:
// the arithmetic 1 + 8 + 8 = 17 is easy to get wrong when porting, so
// it is named here rather than recomputed at each call site.
const (
	tagOffset     = 0
	cLenOffset    = 1
	uLenOffset    = 9
	nextOffOffset = 17
)

// header is the in-memory form of a chunk header.
type header struct {
	Tag     codec.Tag
	CLen    uint64
	ULen    uint64
	NextOff uint64
}

// zeroHeader is the initial header written once per stream at Create
// time: c_type = NONE, all lengths and next-offset zero.
var zeroHeader = header{Tag: codec.TagNone}

// encodedLen returns the on-disk length of h given whether the legacy
// (pre-0.4) 13-byte layout is in effect.
func encodedLen(legacy bool) int64 {
	if legacy {
		return legacyHeaderLen
	}
	return headerLen
}

// writeHeader appends h to w in the modern or legacy layout.
func writeHeader(w io.Writer, h header, legacy bool) error {
	if err := streamio.WriteUint8(w, uint8(h.Tag)); err != nil {
		return fmt.Errorf("container: write header tag: %w", err)
	}
	if legacy {
		if h.CLen > 0xFFFFFFFF || h.ULen > 0xFFFFFFFF || h.NextOff > 0xFFFFFFFF {
			return fmt.Errorf("container: header field exceeds 32 bits in legacy layout")
		}
		if err := streamio.WriteUint32(w, uint32(h.CLen)); err != nil {
			return fmt.Errorf("container: write header c_len: %w", err)
		}
		if err := streamio.WriteUint32(w, uint32(h.ULen)); err != nil {
			return fmt.Errorf("container: write header u_len: %w", err)
		}
		if err := streamio.WriteUint32(w, uint32(h.NextOff)); err != nil {
			return fmt.Errorf("container: write header next_off: %w", err)
		}
		return nil
	}

	if err := streamio.WriteInt64(w, int64(h.CLen)); err != nil {
		return fmt.Errorf("container: write header c_len: %w", err)
	}
	if err := streamio.WriteInt64(w, int64(h.ULen)); err != nil {
		return fmt.Errorf("container: write header u_len: %w", err)
	}
	if err := streamio.WriteInt64(w, int64(h.NextOff)); err != nil {
		return fmt.Errorf("container: write header next_off: %w", err)
	}
	return nil
}

// readHeader reads one chunk header from r in the modern or legacy
// layout.
func readHeader(r io.Reader, legacy bool) (header, error) {
	tag, err := streamio.ReadUint8(r)
	if err != nil {
		return header{}, fmt.Errorf("container: read header tag: %w", err)
	}
	if !codec.Tag(tag).Valid() {
		return header{}, &FormatError{Reason: fmt.Sprintf("unknown chunk tag %d", tag)}
	}

	if legacy {
		cLen, err := streamio.ReadUint32(r)
		if err != nil {
			return header{}, fmt.Errorf("container: read header c_len: %w", err)
		}
		uLen, err := streamio.ReadUint32(r)
		if err != nil {
			return header{}, fmt.Errorf("container: read header u_len: %w", err)
		}
		nextOff, err := streamio.ReadUint32(r)
		if err != nil {
			return header{}, fmt.Errorf("container: read header next_off: %w", err)
		}
		return header{Tag: codec.Tag(tag), CLen: uint64(cLen), ULen: uint64(uLen), NextOff: uint64(nextOff)}, nil
	}

	cLen, err := streamio.ReadInt64(r)
	if err != nil {
		return header{}, fmt.Errorf("container: read header c_len: %w", err)
	}
	uLen, err := streamio.ReadInt64(r)
	if err != nil {
		return header{}, fmt.Errorf("container: read header u_len: %w", err)
	}
	nextOff, err := streamio.ReadInt64(r)
	if err != nil {
		return header{}, fmt.Errorf("container: read header next_off: %w", err)
	}
	return header{Tag: codec.Tag(tag), CLen: uint64(cLen), ULen: uint64(uLen), NextOff: uint64(nextOff)}, nil
}

// writeInt64Field writes a single back-patch value (a chunk's next_off
// field, on its own rather than as part of a full header) in the
// modern 8-byte or legacy 4-byte width.
func writeInt64Field(w io.Writer, v int64, legacy bool) error {
	if legacy {
		if v > 0xFFFFFFFF {
			return fmt.Errorf("container: back-patch offset %d exceeds 32 bits in legacy layout", v)
		}
		return streamio.WriteUint32(w, uint32(v))
	}
	return streamio.WriteInt64(w, v)
}

// nextOffFieldOffset returns the absolute file offset of h's next_off
// field given the absolute offset chunkOff at which h itself begins —
// the location a successor chunk's writer must back-patch.
func nextOffFieldOffset(chunkOff int64, legacy bool) int64 {
	if legacy {
		return chunkOff + 1 + 4 + 4 // tag + c_len + u_len
	}
	return chunkOff + nextOffOffset
}
