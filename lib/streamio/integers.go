// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package streamio

import (
	"encoding/binary"
	"io"
)

// WriteUint8 writes a single byte.
func WriteUint8(w io.Writer, v uint8) error {
	return WriteExact(w, []byte{v})
}

// ReadUint8 reads a single byte.
func ReadUint8(r io.Reader) (uint8, error) {
	var buf [1]byte
	if err := ReadExact(r, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// WriteUint32 writes a 32-bit unsigned integer in the host's native
// byte order. See the package doc comment: this is a deliberate
// compatibility quirk of the container format, not an oversight.
func WriteUint32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.NativeEndian.PutUint32(buf[:], v)
	return WriteExact(w, buf[:])
}

// ReadUint32 reads a 32-bit unsigned integer in the host's native byte
// order.
func ReadUint32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if err := ReadExact(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.NativeEndian.Uint32(buf[:]), nil
}

// WriteInt64 writes a 64-bit signed integer in the host's native byte
// order.
func WriteInt64(w io.Writer, v int64) error {
	var buf [8]byte
	binary.NativeEndian.PutUint64(buf[:], uint64(v))
	return WriteExact(w, buf[:])
}

// ReadInt64 reads a 64-bit signed integer in the host's native byte
// order.
func ReadInt64(r io.Reader) (int64, error) {
	var buf [8]byte
	if err := ReadExact(r, buf[:]); err != nil {
		return 0, err
	}
	return int64(binary.NativeEndian.Uint64(buf[:])), nil
}
