// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package container

import (
	"bytes"
	"fmt"

	"github.com/clayne/mscc/lib/aescbc"
	"github.com/clayne/mscc/lib/codec"
)

// readSlot is one slot of a stream's read-side decompression ring.
// free, complete, and ready mirror the three semaphores component C6
// specifies; data and err carry the slot's result from worker to
// consumer across the complete channel's synchronization point.
type readSlot struct {
	free     chan struct{}
	complete chan struct{}
	ready    chan struct{}

	data []byte
	err  error
}

// readRing is one stream's dedicated sub-ring of decompression
// workers. The format's own design models all streams' sub-rings as
// slices of one shared pool indexed by stream*width+slot; giving each
// stream its own independent *readRing is behaviorally identical
// (slots from different streams' sub-rings never interact in the
// specified algorithm) and avoids carrying shared base-index
// arithmetic through every call.
type readRing struct {
	width int
	slots []readSlot

	// submitted and consumed count total prefetch submissions and
	// total results drained by the caller, unbounded rather than
	// wrapped modulo width, so "is anything outstanding" is a plain
	// comparison rather than reconstructed from wrapped indices.
	submitted int
	consumed  int
}

func newReadRing(width int) *readRing {
	r := &readRing{width: width, slots: make([]readSlot, width)}
	for i := range r.slots {
		r.slots[i].free = make(chan struct{}, 1)
		r.slots[i].free <- struct{}{}
		r.slots[i].complete = make(chan struct{}, 1)
		r.slots[i].ready = make(chan struct{}, 1)
	}
	return r
}

// fillAhead submits one blocking prefetch (waiting for a slot to be
// free if none is), then keeps opportunistically submitting more
// while a slot is immediately available, up to width outstanding
// chunks per stream.
func (ring *readRing) fillAhead(c *Container, st *stream) error {
	ok, err := ring.prefetchBlocking(c, st)
	if err != nil {
		return err
	}
	for ok {
		ok, err = ring.prefetchTry(c, st)
		if err != nil {
			return err
		}
	}
	return nil
}

func (ring *readRing) prefetchBlocking(c *Container, st *stream) (bool, error) {
	if st.eos {
		return false, nil
	}
	slot := ring.submitted % ring.width
	<-ring.slots[slot].free
	return ring.doPrefetch(c, st, slot)
}

// prefetchTry is the non-blocking counterpart used once a first
// prefetch has already been submitted: "trywait" on the next slot's
// free channel via select/default.
func (ring *readRing) prefetchTry(c *Container, st *stream) (bool, error) {
	if st.eos {
		return false, nil
	}
	slot := ring.submitted % ring.width
	select {
	case <-ring.slots[slot].free:
	default:
		return false, nil
	}
	return ring.doPrefetch(c, st, slot)
}

// doPrefetch reads one chunk header and its payload from the file and
// hands the payload to a decompression worker. The caller must have
// already claimed slot's free token.
func (ring *readRing) doPrefetch(c *Container, st *stream, slot int) (bool, error) {
	hdrLen := encodedLen(c.legacy)
	hdrBuf := make([]byte, hdrLen)
	if err := readAtExact(c.file, hdrBuf, st.lastHead); err != nil {
		ring.slots[slot].free <- struct{}{}
		return false, fmt.Errorf("container: read chunk header for stream %d: %w", st.index, err)
	}
	h, err := readHeader(bytes.NewReader(hdrBuf), c.legacy)
	if err != nil {
		ring.slots[slot].free <- struct{}{}
		return false, err
	}

	var payload []byte
	if h.CLen > 0 {
		payload = make([]byte, h.CLen)
		if err := readAtExact(c.file, payload, st.lastHead+hdrLen); err != nil {
			ring.slots[slot].free <- struct{}{}
			return false, fmt.Errorf("container: read chunk payload for stream %d: %w", st.index, err)
		}
	}

	c.totalRead.Add(hdrLen + int64(h.CLen))

	nextHead := int64(h.NextOff)
	st.lastHead = nextHead
	if nextHead == 0 {
		st.eos = true
	}

	ring.submitted++
	go ring.worker(c, slot, st.index, h, payload)
	return true, nil
}

func (ring *readRing) worker(c *Container, slot int, streamIdx int, h header, payload []byte) {
	plain, err := c.decodeChunk(h, payload)
	ring.slots[slot].data = plain
	ring.slots[slot].err = err

	ring.slots[slot].complete <- struct{}{}
	<-ring.slots[slot].ready
	ring.slots[slot].free <- struct{}{}
}

// next returns the next decompressed chunk for st, blocking on its
// worker if necessary, or (nil, true, nil) once both the on-disk
// chain and every outstanding prefetch are exhausted.
func (ring *readRing) next(c *Container, st *stream) ([]byte, bool, error) {
	if ring.consumed == ring.submitted {
		if err := ring.fillAhead(c, st); err != nil {
			return nil, false, err
		}
		if ring.consumed == ring.submitted {
			return nil, true, nil
		}
	}

	slot := ring.consumed % ring.width
	<-ring.slots[slot].complete
	data, err := ring.slots[slot].data, ring.slots[slot].err
	ring.slots[slot].ready <- struct{}{}
	ring.consumed++

	if err != nil {
		return nil, false, err
	}
	return data, false, nil
}

// drain waits for every outstanding worker to finish, used by Close
// to guarantee no goroutine remains in flight for this stream.
func (ring *readRing) drain() {
	for ring.consumed < ring.submitted {
		slot := ring.consumed % ring.width
		<-ring.slots[slot].complete
		ring.slots[slot].ready <- struct{}{}
		ring.consumed++
	}
}

// decodeChunk reverses encodeChunk: strip and consume the per-chunk
// salt if this container decrypts, then run the codec adapter's
// decompression and verify the result matches the header's advertised
// uncompressed length.
func (c *Container) decodeChunk(h header, payload []byte) ([]byte, error) {
	raw := payload

	if c.ks != nil && len(raw) > 0 {
		if len(raw) < aescbc.SaltLen {
			return nil, &FormatError{Reason: "encrypted chunk shorter than salt"}
		}
		var salt [aescbc.SaltLen]byte
		copy(salt[:], raw[:aescbc.SaltLen])
		ciphertext := raw[aescbc.SaltLen:]
		if err := aescbc.Decrypt(c.ks, ciphertext, salt); err != nil {
			return nil, &CryptoError{Reason: "decrypt chunk", Err: err}
		}
		raw = ciphertext
	}

	out, err := codec.DecompressChunk(raw, h.Tag, int(h.ULen))
	if err != nil {
		return nil, err
	}
	if uint64(len(out)) != h.ULen {
		return nil, &FormatError{Reason: fmt.Sprintf("decompressed %d bytes, header advertised %d", len(out), h.ULen)}
	}
	return out, nil
}
