// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package container

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"sync"

	"github.com/clayne/mscc/lib/aescbc"
	"github.com/clayne/mscc/lib/codec"
)

// writeSlot is one slot of the write-side worker ring. free and
// complete are capacity-1 channels standing in for the binary
// semaphores the design is specified against: a send is "post", a
// receive is "wait". Every send/receive pair also serves as a Go
// memory-model synchronization point, which is what lets worker
// goroutines touch shared container and stream state without a
// separate mutex — see the comment on [stream].
type writeSlot struct {
	free     chan struct{}
	complete chan struct{}
}

// writeRing is the fixed-width pool of compression workers described
// in component C5: at most width tasks are outstanding, and workers
// commit to the file in the order they were submitted regardless of
// how long their own compression takes, by waiting on their
// predecessor slot's complete channel before writing anything.
type writeRing struct {
	width int
	slots []writeSlot

	mu       sync.Mutex
	threadNo int

	wg sync.WaitGroup
}

func newWriteRing(width int) *writeRing {
	r := &writeRing{width: width, slots: make([]writeSlot, width)}
	for i := range r.slots {
		r.slots[i].free = make(chan struct{}, 1)
		r.slots[i].free <- struct{}{}
		r.slots[i].complete = make(chan struct{}, 1)
	}
	// Seed slot width-1's complete so slot 0's worker does not wait
	// forever for a predecessor that was never submitted.
	r.slots[width-1].complete <- struct{}{}
	return r
}

// submit claims the next slot in submission order, waits for that
// slot to be idle, and hands payload off to a new worker goroutine.
// submit itself never blocks on compression or file I/O — only on a
// slot becoming free, which is the write-side's natural back-pressure
// (at most width chunks outstanding).
func (r *writeRing) submit(c *Container, streamIdx int, payload []byte, uLen int) {
	r.mu.Lock()
	slot := r.threadNo
	r.threadNo = (r.threadNo + 1) % r.width
	r.mu.Unlock()

	<-r.slots[slot].free

	r.wg.Add(1)
	go r.worker(c, slot, streamIdx, payload, uLen)
}

// worker compresses (and, if enabled, encrypts) payload, then waits
// its turn in submission order before committing the result to the
// file. A failure at any stage poisons the container rather than
// panicking or terminating the process; the slot's complete and free
// channels are always posted on the way out so neither this worker's
// successor nor a future submission into this slot can deadlock.
func (r *writeRing) worker(c *Container, slot int, streamIdx int, payload []byte, uLen int) {
	defer r.wg.Done()

	tag, encoded, err := c.encodeChunk(payload)

	waitOn := (slot - 1 + r.width) % r.width
	<-r.slots[waitOn].complete

	if err == nil && c.checkPoisoned() == nil {
		err = c.commitChunk(streamIdx, tag, encoded, uLen)
	}
	if err != nil {
		c.poison(err)
	}

	r.slots[slot].complete <- struct{}{}
	r.slots[slot].free <- struct{}{}
}

// drain waits for every slot to report idle, guaranteeing no worker
// remains in flight. Called once from Close.
func (r *writeRing) drain() {
	for i := range r.slots {
		<-r.slots[i].free
	}
	r.wg.Wait()
}

// encodeChunk runs the codec adapter and, if this container encrypts,
// AES-128-CBC/CTS encryption over payload, returning the tag actually
// used and the bytes to write as this chunk's on-disk payload.
//
// When encryption is enabled, the on-disk payload is an 8-byte random
// salt followed by the ciphertext; c_len covers both. The wire layout
// in §6 of this format reserves no header field for a salt, so this
// is the one placement decision this package makes rather than
// transcribes — documented in DESIGN.md.
func (c *Container) encodeChunk(payload []byte) (codec.Tag, []byte, error) {
	compressed, tag, err := codec.CompressChunk(payload, c.cfg.codecConfig())
	if err != nil {
		return 0, nil, err
	}

	if c.ks == nil {
		// CompressChunk returns payload itself, unmodified, for
		// TagNone; copy before it is queued for the next stream
		// accumulation to avoid an accidental alias.
		if tag == codec.TagNone {
			out := make([]byte, len(compressed))
			copy(out, compressed)
			return tag, out, nil
		}
		return tag, compressed, nil
	}

	var salt [aescbc.SaltLen]byte
	if _, err := rand.Read(salt[:]); err != nil {
		return 0, nil, fmt.Errorf("container: generate salt: %w", err)
	}

	ciphertext := make([]byte, len(compressed))
	copy(ciphertext, compressed)
	if err := aescbc.Encrypt(c.ks, ciphertext, salt); err != nil {
		return 0, nil, &CryptoError{Reason: "encrypt chunk", Err: err}
	}

	out := make([]byte, aescbc.SaltLen+len(ciphertext))
	copy(out, salt[:])
	copy(out[aescbc.SaltLen:], ciphertext)
	return tag, out, nil
}

// commitChunk appends one chunk for streamIdx: it back-patches the
// stream's previous header's next_off field to point here, then
// writes this chunk's own header and payload, advancing cur_pos.
//
// Because only one worker at a time reaches this method — enforced by
// the write ring's predecessor-complete wait before calling it — no
// additional lock is needed around cur_pos or any stream's lastHead.
func (c *Container) commitChunk(streamIdx int, tag codec.Tag, payload []byte, uLen int) error {
	st := c.streams[streamIdx]

	chunkOff := c.initialPos + c.curPos

	var patch bytes.Buffer
	if err := writeInt64Field(&patch, chunkOff, c.legacy); err != nil {
		return err
	}
	if err := writeAtExact(c.file, patch.Bytes(), st.lastHead); err != nil {
		return fmt.Errorf("container: back-patch stream %d: %w", streamIdx, err)
	}

	var buf bytes.Buffer
	h := header{Tag: tag, CLen: uint64(len(payload)), ULen: uint64(uLen), NextOff: 0}
	if err := writeHeader(&buf, h, c.legacy); err != nil {
		return err
	}
	if err := writeAtExact(c.file, buf.Bytes(), chunkOff); err != nil {
		return fmt.Errorf("container: write header for stream %d: %w", streamIdx, err)
	}
	if err := writeAtExact(c.file, payload, chunkOff+encodedLen(c.legacy)); err != nil {
		return fmt.Errorf("container: write payload for stream %d: %w", streamIdx, err)
	}

	st.lastHead = nextOffFieldOffset(chunkOff, c.legacy)
	c.curPos = chunkOff - c.initialPos + encodedLen(c.legacy) + int64(len(payload))

	if err := c.file.Sync(); err != nil {
		return fmt.Errorf("container: fsync: %w", err)
	}
	return nil
}
