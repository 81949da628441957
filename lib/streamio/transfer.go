// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package streamio

import (
	"errors"
	"fmt"
	"io"
)

// MaxTransferSize is the largest slice moved in a single Read/Write
// call. Some platforms silently truncate or reject transfers larger
// than ~2 GiB; capping well under that (1 GiB) keeps every syscall in
// the region every platform handles correctly.
const MaxTransferSize = 1 << 30

// ErrShortTransfer is returned when a transfer ends (end-of-file, or a
// read/write that returns zero bytes with no error) before the
// requested number of bytes has been moved. It is never retried —
// a short transfer on a container file means the file is truncated
// or corrupt, not a transient condition.
var ErrShortTransfer = errors.New("streamio: short transfer")

// WriteExact writes all of data to w, split into slices of at most
// MaxTransferSize. A write that returns fewer bytes than requested is
// retried with the remainder; a write that returns zero bytes with no
// error is treated as ErrShortTransfer since retrying it could spin
// forever.
func WriteExact(w io.Writer, data []byte) error {
	for len(data) > 0 {
		slice := data
		if len(slice) > MaxTransferSize {
			slice = slice[:MaxTransferSize]
		}

		written, err := w.Write(slice)
		if err != nil {
			return fmt.Errorf("streamio: write: %w", err)
		}
		if written == 0 {
			return fmt.Errorf("streamio: write returned 0 bytes: %w", ErrShortTransfer)
		}

		data = data[written:]
	}
	return nil
}

// ReadExact reads len(buf) bytes from r into buf, split into slices of
// at most MaxTransferSize. Reaching end-of-file (or any read that
// returns zero bytes with no error) before buf is filled returns an
// error wrapping ErrShortTransfer; any other read error is returned
// wrapped on its own.
func ReadExact(r io.Reader, buf []byte) error {
	for len(buf) > 0 {
		slice := buf
		if len(slice) > MaxTransferSize {
			slice = slice[:MaxTransferSize]
		}

		n, err := r.Read(slice)
		if n == 0 {
			if err == nil || errors.Is(err, io.EOF) {
				return fmt.Errorf("streamio: read: %w", ErrShortTransfer)
			}
			return fmt.Errorf("streamio: read: %w", err)
		}

		buf = buf[n:]
		if err != nil && len(buf) > 0 {
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("streamio: read: %w", ErrShortTransfer)
			}
			return fmt.Errorf("streamio: read: %w", err)
		}
	}
	return nil
}
