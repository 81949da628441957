// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package container

import (
	"fmt"
	"io"
	"os"

	"github.com/clayne/mscc/lib/streamio"
)

// fileReaderAt is the subset of *os.File this package needs for
// random-access I/O. Satisfied by *os.File; narrowed to an interface
// so tests can substitute an in-memory fixture.
type fileReaderAt interface {
	io.ReaderAt
	io.WriterAt
}

// writeAtExact writes all of data to f at offset, split into slices
// of at most [streamio.MaxTransferSize] for the same platform-limit
// reasons [streamio.WriteExact] exists — but using WriteAt rather than
// a stateful Write, so that concurrent workers committing chunks for
// different streams never contend over (or corrupt) a shared file
// cursor the way sequential Seek-then-Write would.
func writeAtExact(f io.WriterAt, data []byte, offset int64) error {
	for len(data) > 0 {
		slice := data
		if len(slice) > streamio.MaxTransferSize {
			slice = slice[:streamio.MaxTransferSize]
		}
		n, err := f.WriteAt(slice, offset)
		if err != nil {
			return fmt.Errorf("container: write at %d: %w", offset, err)
		}
		if n == 0 {
			return fmt.Errorf("container: write at %d returned 0 bytes: %w", offset, streamio.ErrShortTransfer)
		}
		data = data[n:]
		offset += int64(n)
	}
	return nil
}

// readAtExact reads len(buf) bytes from f at offset, split the same
// way writeAtExact splits writes.
func readAtExact(f io.ReaderAt, buf []byte, offset int64) error {
	for len(buf) > 0 {
		slice := buf
		if len(slice) > streamio.MaxTransferSize {
			slice = slice[:streamio.MaxTransferSize]
		}
		n, err := f.ReadAt(slice, offset)
		if n == 0 {
			if err == nil || err == io.EOF {
				return fmt.Errorf("container: read at %d: %w", offset, streamio.ErrShortTransfer)
			}
			return fmt.Errorf("container: read at %d: %w", offset, err)
		}
		buf = buf[n:]
		offset += int64(n)
		if err != nil && len(buf) > 0 {
			if err == io.EOF {
				return fmt.Errorf("container: read at %d: %w", offset, streamio.ErrShortTransfer)
			}
			return fmt.Errorf("container: read at %d: %w", offset, err)
		}
	}
	return nil
}

var _ fileReaderAt = (*os.File)(nil)
