// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"bytes"
	"testing"
)

func sampleManifest() Manifest {
	return Manifest{
		FormatVersion: "0.4",
		StreamCount:   3,
		Bufsize:       1 << 20,
		ThreadCount:   4,
		Codec:         "lzma",
		CodecLevel:    7,
		Encrypted:     true,
		EncLoops:      1000,
	}
}

func TestRoundTrip(t *testing.T) {
	m := sampleManifest()
	data, err := Marshal(m)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got != m {
		t.Fatalf("round trip mismatch: want %+v, got %+v", m, got)
	}
}

func TestWriteRead(t *testing.T) {
	m := sampleManifest()
	var buf bytes.Buffer
	if err := Write(&buf, m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got != m {
		t.Fatalf("round trip mismatch: want %+v, got %+v", m, got)
	}
}

// Encoding the same value twice must produce byte-identical output:
// Core Deterministic Encoding guarantees this, and nothing in this
// package's wrapping around it (field order, map usage) should break
// it.
func TestMarshal_Deterministic(t *testing.T) {
	m := sampleManifest()
	a, err := Marshal(m)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	b, err := Marshal(m)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatal("two encodings of the same value differ")
	}
}

func TestValidate_Agrees(t *testing.T) {
	m := sampleManifest()
	if err := Validate(m, 3, 1<<20, "lzma", true); err != nil {
		t.Fatalf("Validate: unexpected error: %v", err)
	}
}

func TestValidate_DetectsEachMismatch(t *testing.T) {
	m := sampleManifest()

	cases := []struct {
		name            string
		streamCount     int
		bufsize         int
		codec           string
		encrypted       bool
		wantFieldPrefix string
	}{
		{"stream_count", 4, m.Bufsize, m.Codec, m.Encrypted, "stream_count"},
		{"bufsize", m.StreamCount, m.Bufsize * 2, m.Codec, m.Encrypted, "bufsize"},
		{"codec", m.StreamCount, m.Bufsize, "gzip", m.Encrypted, "codec"},
		{"encrypted", m.StreamCount, m.Bufsize, m.Codec, !m.Encrypted, "encrypted"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(m, tc.streamCount, tc.bufsize, tc.codec, tc.encrypted)
			if err == nil {
				t.Fatal("expected a mismatch error")
			}
			mismatch, ok := err.(*MismatchError)
			if !ok {
				t.Fatalf("expected *MismatchError, got %T", err)
			}
			if mismatch.Field != tc.wantFieldPrefix {
				t.Fatalf("expected mismatch on field %q, got %q", tc.wantFieldPrefix, mismatch.Field)
			}
		})
	}
}

// CodecLevel, ThreadCount, and EncLoops are advisory: Validate must
// not reject a manifest that disagrees only on those.
func TestValidate_IgnoresAdvisoryFields(t *testing.T) {
	m := sampleManifest()
	m.CodecLevel = 1
	m.ThreadCount = 99
	m.EncLoops = 1
	if err := Validate(m, m.StreamCount, m.Bufsize, m.Codec, m.Encrypted); err != nil {
		t.Fatalf("Validate: unexpected error on advisory-only disagreement: %v", err)
	}
}
