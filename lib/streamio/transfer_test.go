// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package streamio

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

// shortReader returns at most limit bytes per Read call, to exercise
// the retry loop without allocating a gigabyte-sized buffer.
type shortReader struct {
	data  []byte
	limit int
}

func (r *shortReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, io.EOF
	}
	n := len(p)
	if n > r.limit {
		n = r.limit
	}
	if n > len(r.data) {
		n = len(r.data)
	}
	copy(p, r.data[:n])
	r.data = r.data[n:]
	return n, nil
}

func TestReadExact_SplitAcrossShortReads(t *testing.T) {
	source := bytes.Repeat([]byte{0xAB}, 10000)
	r := &shortReader{data: append([]byte{}, source...), limit: 37}

	buf := make([]byte, len(source))
	if err := ReadExact(r, buf); err != nil {
		t.Fatalf("ReadExact failed: %v", err)
	}
	if !bytes.Equal(buf, source) {
		t.Fatal("ReadExact produced wrong bytes")
	}
}

func TestReadExact_ShortTransfer(t *testing.T) {
	r := bytes.NewReader([]byte("short"))
	buf := make([]byte, 100)
	err := ReadExact(r, buf)
	if !errors.Is(err, ErrShortTransfer) {
		t.Fatalf("expected ErrShortTransfer, got %v", err)
	}
}

func TestWriteExact_RoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte{0x5A}, 5000)
	var out bytes.Buffer
	if err := WriteExact(&out, data); err != nil {
		t.Fatalf("WriteExact failed: %v", err)
	}
	if !bytes.Equal(out.Bytes(), data) {
		t.Fatal("WriteExact wrote wrong bytes")
	}
}

func TestIntegerRoundTrip(t *testing.T) {
	var buf bytes.Buffer

	if err := WriteUint8(&buf, 0xAB); err != nil {
		t.Fatalf("WriteUint8: %v", err)
	}
	if err := WriteUint32(&buf, 0xDEADBEEF); err != nil {
		t.Fatalf("WriteUint32: %v", err)
	}
	if err := WriteInt64(&buf, -123456789); err != nil {
		t.Fatalf("WriteInt64: %v", err)
	}

	u8, err := ReadUint8(&buf)
	if err != nil || u8 != 0xAB {
		t.Fatalf("ReadUint8 = %v, %v", u8, err)
	}
	u32, err := ReadUint32(&buf)
	if err != nil || u32 != 0xDEADBEEF {
		t.Fatalf("ReadUint32 = %v, %v", u32, err)
	}
	i64, err := ReadInt64(&buf)
	if err != nil || i64 != -123456789 {
		t.Fatalf("ReadInt64 = %v, %v", i64, err)
	}
}
