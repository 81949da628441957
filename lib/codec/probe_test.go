// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"crypto/rand"
	"strings"
	"testing"
)

func TestProbeCompressible_ThresholdAboveOneShortCircuits(t *testing.T) {
	data := make([]byte, 128)
	if _, err := rand.Read(data); err != nil {
		t.Fatalf("rand.Read: %v", err)
	}
	if !ProbeCompressible(data, 1.5, 4096) {
		t.Fatal("threshold > 1 should always report compressible")
	}
}

func TestProbeCompressible_EmptyInput(t *testing.T) {
	if ProbeCompressible(nil, 0.9, 4096) {
		t.Fatal("empty input should never be reported compressible")
	}
}

func TestProbeCompressible_RepetitiveTextIsCompressible(t *testing.T) {
	data := bytes.Repeat([]byte("abcdefgh"), 8192)
	if !ProbeCompressible(data, 0.9, 4096) {
		t.Fatal("highly repetitive data should probe as compressible")
	}
}

func TestProbeCompressible_RandomDataIsNotCompressible(t *testing.T) {
	data := make([]byte, 1<<20)
	if _, err := rand.Read(data); err != nil {
		t.Fatalf("rand.Read: %v", err)
	}
	if ProbeCompressible(data, 0.9, 64*1024) {
		t.Fatal("random data should not probe as compressible")
	}
}

func TestProbeCompressible_SmallInputHandledWithoutPanicking(t *testing.T) {
	for _, n := range []int{1, 2, 15, 16, 17, 4095, 4096, 4097} {
		data := []byte(strings.Repeat("x", n))
		// Neither outcome matters here; the probe must simply not
		// panic on inputs smaller than a single probe slice.
		ProbeCompressible(data, 0.9, 4096)
	}
}

func TestProbeCompressible_ZeroProbeWindowFallsBackToFullLength(t *testing.T) {
	data := bytes.Repeat([]byte("z"), 1024)
	if !ProbeCompressible(data, 0.9, 0) {
		t.Fatal("a zero probe window should default to the full input length")
	}
}

func TestProbeCompressLZ4_EmptySlice(t *testing.T) {
	if got := probeCompressLZ4(nil, make([]byte, 64)); got != 0 {
		t.Fatalf("expected 0 for empty slice, got %d", got)
	}
}

func TestProbeCompressLZ4_GrowsScratchWhenTooSmall(t *testing.T) {
	data := bytes.Repeat([]byte("repeat-me"), 1024)
	got := probeCompressLZ4(data, make([]byte, 1))
	if got <= 0 || got >= len(data) {
		t.Fatalf("expected a compressed length strictly between 0 and %d, got %d", len(data), got)
	}
}
