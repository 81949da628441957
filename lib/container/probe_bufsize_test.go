// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package container

import "testing"

// Scenario S6: a generous 1 TiB ceiling against an 8 GiB budget for a
// handful of streams must shrink to something that actually fits,
// never returning a candidate the budget cannot hold.
func TestProbeBufsize_ShrinksToFitBudget(t *testing.T) {
	const oneTiB = int64(1) << 40
	const eightGiB = int64(8) << 30

	got, err := ProbeBufsize(oneTiB, 4, eightGiB, false)
	if err != nil {
		t.Fatalf("ProbeBufsize: %v", err)
	}
	if int64(got)*int64(4+1) > eightGiB {
		t.Fatalf("candidate %d does not fit the 8 GiB budget across 5 slots", got)
	}
	if got < StreamBufsize {
		t.Fatalf("candidate %d fell below the minimum bufsize", got)
	}
}

func TestProbeBufsize_RejectsInvalidInputs(t *testing.T) {
	cases := []struct {
		limit, available int64
		numStreams       int
	}{
		{0, 1 << 30, 2},
		{1 << 20, 0, 2},
		{1 << 20, 1 << 30, 0},
		{-1, 1 << 30, 2},
	}
	for _, tc := range cases {
		if _, err := ProbeBufsize(tc.limit, tc.numStreams, tc.available, false); err == nil {
			t.Fatalf("expected an error for limit=%d numStreams=%d available=%d", tc.limit, tc.numStreams, tc.available)
		}
	}
}

func TestProbeBufsize_Lzma32Clamp(t *testing.T) {
	const limit = int64(1) << 40
	const plenty = int64(1) << 40

	got, err := ProbeBufsize(limit, 1, plenty, true)
	if err != nil {
		t.Fatalf("ProbeBufsize: %v", err)
	}
	ceiling := int64(StreamBufsize) * 10 * 3
	if int64(got) > ceiling {
		t.Fatalf("candidate %d exceeds the LZMA 32-bit-host ceiling %d", got, ceiling)
	}
}

// Scenario S7: a write error injected mid-stream poisons the
// container; a concurrent writer and the eventual Close both observe
// it rather than one silently succeeding.
func TestWriteFailure_PoisonsConcurrentWriteAndClose(t *testing.T) {
	f := tempFile(t)
	cfg := Config{Threads: 2, Bufsize: 64, Codec: 0}

	c, err := Create(f, 1, cfg, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := f.Close(); err != nil {
		t.Fatalf("close underlying file early: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := c.Write(0, textBytes(4096))
		done <- err
	}()
	writeErr := <-done

	closeErr := c.Close()

	if writeErr == nil || closeErr == nil {
		t.Fatalf("expected both Write and Close to observe the injected I/O failure, got Write=%v Close=%v", writeErr, closeErr)
	}
}
