// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import "github.com/pierrec/lz4/v4"

// ProbeCompressible runs a fast incompressibility test: it compresses
// consecutive slices of data with the LZO-slot algorithm, each slice
// starting where the previous one ended, until either a slice's
// compressed fraction drops below threshold (the data is
// "compressible") or the whole input has been tested ("not
// compressible"). The slice size starts small and doubles each
// iteration, capped at probeWindow.
//
// A threshold greater than 1 short-circuits the probe entirely,
// reporting "always compressible" — useful for callers who already
// know the payload is worth trying (or who want to disable the probe
// for benchmarking).
func ProbeCompressible(data []byte, threshold float64, probeWindow int) bool {
	if threshold > 1 {
		return true
	}
	if len(data) == 0 {
		return false
	}
	if probeWindow <= 0 {
		probeWindow = len(data)
	}

	remaining := int64(len(data))
	offset := 0

	// Seed the test slice size: a full probeWindow once the input is
	// big enough that an initial small sample would take many
	// doublings to matter, otherwise start small so tiny inputs don't
	// pay for compressing the whole thing up front.
	sliceSize := probeWindow / 4096
	if sliceSize < 1 {
		sliceSize = 1
	}
	if remaining > 5*int64(probeWindow) {
		sliceSize = probeWindow
	}

	workmem := make([]byte, lz4.CompressBlockBound(probeWindow))

	for remaining > 0 {
		n := sliceSize
		if int64(n) > remaining {
			n = int(remaining)
		}

		compressedLen := probeCompressLZ4(data[offset:offset+n], workmem)
		if float64(compressedLen) < float64(n)*threshold {
			return true
		}

		remaining -= int64(n)
		offset += n

		if remaining > 0 && sliceSize < probeWindow {
			sliceSize <<= 1
			if sliceSize > probeWindow {
				sliceSize = probeWindow
			}
		}
	}
	return false
}

// probeCompressLZ4 compresses slice into scratch and returns the
// resulting length. lz4.CompressBlock reports 0 when it determines
// the input is incompressible (rather than emitting an expanded
// block), so that case is treated as "no better than the original
// size" for the probe's ratio math.
func probeCompressLZ4(slice []byte, scratch []byte) int {
	if len(slice) == 0 {
		return 0
	}
	if need := lz4.CompressBlockBound(len(slice)); len(scratch) < need {
		scratch = make([]byte, need)
	}
	written, err := lz4.CompressBlock(slice, scratch, nil)
	if err != nil || written == 0 {
		return len(slice)
	}
	return written
}
