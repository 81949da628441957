// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package container

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/clayne/mscc/lib/aescbc"
	"github.com/clayne/mscc/lib/codec"
	"github.com/clayne/mscc/lib/manifest"
)

// Container is an open multi-stream compression container, ready for
// either writing (via [Create]) or reading (via [Open]), never both.
type Container struct {
	file   *os.File
	cfg    Config
	legacy bool
	ks     *aescbc.KeySchedule
	logger *slog.Logger

	numStreams int
	initialPos int64

	mu       sync.Mutex
	curPos   int64 // write side only; see commitChunk
	poisoned error
	closed   bool

	totalRead atomic.Int64 // read side only

	streams   []*stream
	writeRing *writeRing  // non-nil when opened via Create
	readRings []*readRing // non-nil (one per stream) when opened via Open
}

// Create opens a new container for writing over f, starting at f's
// current position, with numStreams logical streams. If
// manifestWriter is non-nil, a CBOR manifest describing cfg is
// written to it once, in full, before Create returns.
func Create(f *os.File, numStreams int, cfg Config, manifestWriter io.Writer) (*Container, error) {
	if numStreams <= 0 {
		return nil, fmt.Errorf("container: numStreams must be positive, got %d", numStreams)
	}
	cfg, err := cfg.normalize()
	if err != nil {
		return nil, err
	}
	ks, err := cfg.newKeySchedule()
	if err != nil {
		return nil, err
	}

	initialPos, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("container: locate initial position: %w", err)
	}

	c := &Container{
		file:       f,
		cfg:        cfg,
		legacy:     cfg.BackwardCompatible,
		ks:         ks,
		logger:     cfg.log(),
		numStreams: numStreams,
		initialPos: initialPos,
		curPos:     int64(numStreams) * encodedLen(cfg.BackwardCompatible),
	}

	c.streams = make([]*stream, numStreams)
	var hdr bytes.Buffer
	if err := writeHeader(&hdr, zeroHeader, c.legacy); err != nil {
		return nil, err
	}
	for i := 0; i < numStreams; i++ {
		off := initialPos + int64(i)*encodedLen(c.legacy)
		if err := writeAtExact(f, hdr.Bytes(), off); err != nil {
			return nil, fmt.Errorf("container: write initial header %d: %w", i, err)
		}
		st := newStream(i, cfg.Bufsize)
		st.lastHead = nextOffFieldOffset(off, c.legacy)
		c.streams[i] = st
	}

	c.writeRing = newWriteRing(cfg.Threads)

	if manifestWriter != nil {
		m := manifest.Manifest{
			FormatVersion: cfg.FormatVersion,
			StreamCount:   numStreams,
			Bufsize:       cfg.Bufsize,
			ThreadCount:   cfg.Threads,
			Codec:         cfg.Codec.String(),
			CodecLevel:    cfg.CodecLevel,
			Encrypted:     ks != nil,
			EncLoops:      cfg.EncLoops,
		}
		if err := manifest.Write(manifestWriter, m); err != nil {
			return nil, fmt.Errorf("container: write manifest: %w", err)
		}
	}

	return c, nil
}

// Open opens an existing container for reading over f, starting at
// f's current position, expecting numStreams logical streams. If
// manifestReader is non-nil, the manifest read from it is validated
// against the container's live initial headers and configuration; a
// disagreement on stream count, bufsize, codec, or encryption yields
// a [FormatError] rather than silently trusting one source over the
// other.
func Open(f *os.File, numStreams int, cfg Config, manifestReader io.Reader) (*Container, error) {
	if numStreams <= 0 {
		return nil, fmt.Errorf("container: numStreams must be positive, got %d", numStreams)
	}
	cfg, err := cfg.normalize()
	if err != nil {
		return nil, err
	}
	ks, err := cfg.newKeySchedule()
	if err != nil {
		return nil, err
	}

	initialPos, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("container: locate initial position: %w", err)
	}
	legacy := cfg.BackwardCompatible

	headers, retried, err := readInitialHeaders(f, initialPos, numStreams, legacy)
	if err != nil {
		return nil, err
	}

	c := &Container{
		file:       f,
		cfg:        cfg,
		legacy:     legacy,
		ks:         ks,
		logger:     cfg.log(),
		numStreams: numStreams,
		initialPos: initialPos,
	}
	if retried {
		c.logger.Warn("recovered from a stray leading initial header", "streams", numStreams)
	}

	c.streams = make([]*stream, numStreams)
	c.readRings = make([]*readRing, numStreams)
	for i := 0; i < numStreams; i++ {
		st := newStream(i, cfg.Bufsize)
		st.lastHead = int64(headers[i].NextOff)
		st.eos = headers[i].NextOff == 0
		c.streams[i] = st
		c.readRings[i] = newReadRing(cfg.Threads)
	}

	if manifestReader != nil {
		m, err := manifest.Read(manifestReader)
		if err != nil {
			return nil, fmt.Errorf("container: read manifest: %w", err)
		}
		if err := manifest.Validate(m, numStreams, cfg.Bufsize, cfg.Codec.String(), ks != nil); err != nil {
			return nil, &FormatError{Reason: err.Error()}
		}
	}

	return c, nil
}

// maxStreamCloseWorkarounds bounds how many times readInitialHeaders
// will shift past a degenerate stream-0 header before giving up. The
// original's equivalent goto-again loop has no such bound; this one
// exists only so a corrupt or adversarial file cannot hang Open in an
// unbounded read loop.
const maxStreamCloseWorkarounds = 16

// readInitialHeaders reads numStreams consecutive placeholder headers
// starting at offset. Every header must have tag NONE and zero
// lengths (next_off may be non-zero once a stream has data). Stream
// 0's header gets one further check: if it reads back completely
// zero — tag, lengths, and next_off all zero — that header is a stray
// one some historical archives prepended when closing a stream, and
// is skipped: the read retries one header-width further along the
// file, as many times as the stray header repeats (at most
// maxStreamCloseWorkarounds). Streams 1..n-1 are read from the
// positions that follow stream 0's accepted header, so they shift by
// the same number of skipped headers; they never receive the
// all-zero check. retried reports whether the workaround fired at
// least once.
func readInitialHeaders(f *os.File, offset int64, numStreams int, legacy bool) (headers []header, retried bool, err error) {
	step := encodedLen(legacy)
	headers = make([]header, numStreams)
	pos := offset

	readOne := func(at int64) (header, error) {
		buf := make([]byte, step)
		if err := readAtExact(f, buf, at); err != nil {
			return header{}, err
		}
		return readHeader(bytes.NewReader(buf), legacy)
	}

	for skips := 0; ; skips++ {
		h, err := readOne(pos)
		if err != nil {
			return nil, false, err
		}
		if h.Tag == codec.TagNone && h.CLen == 0 && h.ULen == 0 && h.NextOff == 0 {
			if skips >= maxStreamCloseWorkarounds {
				return nil, false, &FormatError{Reason: "initial header for stream 0 never resolved past the close workaround"}
			}
			pos += step
			retried = true
			continue
		}
		headers[0] = h
		pos += step
		break
	}

	for i := 1; i < numStreams; i++ {
		h, err := readOne(pos)
		if err != nil {
			return nil, false, err
		}
		if h.Tag != codec.TagNone || h.CLen != 0 || h.ULen != 0 {
			return nil, false, &FormatError{Reason: fmt.Sprintf("initial header %d is not a placeholder", i)}
		}
		headers[i] = h
		pos += step
	}

	return headers, retried, nil
}

// ProbeBufsize computes a chunk buffer size, starting from limit, such
// that bufsize*(numStreams+1) fits within available bytes, shrinking
// the candidate by 10% per round — the Go-safe analogue of the
// original's "try to malloc, halve toward 90% on failure" probe. Go's
// allocator has no recoverable allocation-failure signal equivalent
// to malloc returning NULL, so this computes the ceiling analytically
// from a caller-supplied memory budget rather than by trial
// allocation. The result is never below [StreamBufsize]: a limit
// smaller than StreamBufsize is raised to StreamBufsize. lzma32 clamps
// the result to the original's tighter 32-bit-host LZMA ceiling.
func ProbeBufsize(limit int64, numStreams int, available int64, lzma32 bool) (int, error) {
	if limit <= 0 || numStreams <= 0 || available <= 0 {
		return 0, &ResourceError{Reason: "invalid bufsize probe parameters"}
	}

	candidate := limit
	for candidate*int64(numStreams+1) > available {
		next := candidate * 9 / 10
		if next >= candidate || next < StreamBufsize {
			return 0, &ResourceError{Reason: "no bufsize fits the available memory budget"}
		}
		candidate = next
	}

	if candidate < StreamBufsize {
		candidate = StreamBufsize
	}
	if lzma32 {
		if ceiling := int64(StreamBufsize) * 10 * 3; candidate > ceiling {
			candidate = ceiling
		}
	}
	return int(candidate), nil
}

// Write appends data to the logical stream numbered streamIdx,
// accumulating it into that stream's buffer and flushing full buffers
// to the write ring as needed. Write never blocks on compression
// itself — only on the write ring running out of free slots.
func (c *Container) Write(streamIdx int, data []byte) (int, error) {
	if err := c.checkPoisoned(); err != nil {
		return 0, err
	}
	if err := c.checkClosed(); err != nil {
		return 0, err
	}
	if c.writeRing == nil {
		return 0, fmt.Errorf("container: Write called on a container opened for reading")
	}
	st, err := c.stream(streamIdx)
	if err != nil {
		return 0, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	written := 0
	for len(data) > 0 {
		room := cap(st.buf) - len(st.buf)
		if room == 0 {
			c.flush(st)
			room = cap(st.buf)
		}
		n := room
		if n > len(data) {
			n = len(data)
		}
		st.buf = append(st.buf, data[:n]...)
		data = data[n:]
		written += n
	}

	if err := c.checkPoisoned(); err != nil {
		return written, err
	}
	return written, nil
}

// flush hands st's accumulated buffer to the write ring and replaces
// it with a fresh, empty one. Caller must hold st.mu.
func (c *Container) flush(st *stream) {
	if len(st.buf) == 0 {
		return
	}
	payload := st.buf
	uLen := len(payload)
	st.buf = make([]byte, 0, cap(payload))
	c.writeRing.submit(c, st.index, payload, uLen)
}

// Read drains decompressed bytes for the logical stream numbered
// streamIdx into p, prefetching and awaiting decompression workers as
// needed. Returns fewer than len(p) bytes (possibly zero) with a nil
// error exactly at end-of-stream.
func (c *Container) Read(streamIdx int, p []byte) (int, error) {
	if err := c.checkPoisoned(); err != nil {
		return 0, err
	}
	if err := c.checkClosed(); err != nil {
		return 0, err
	}
	if c.readRings == nil {
		return 0, fmt.Errorf("container: Read called on a container opened for writing")
	}
	st, err := c.stream(streamIdx)
	if err != nil {
		return 0, err
	}
	ring := c.readRings[streamIdx]

	st.mu.Lock()
	defer st.mu.Unlock()

	n := 0
	for n < len(p) {
		if st.bufp >= len(st.buf) {
			data, eos, err := ring.next(c, st)
			if err != nil {
				c.poison(err)
				return n, c.checkPoisoned()
			}
			if eos {
				break
			}
			st.buf = data
			st.bufp = 0
		}
		copied := copy(p[n:], st.buf[st.bufp:])
		st.bufp += copied
		n += copied
	}
	return n, nil
}

// Close flushes and drains a write-side container, or joins every
// outstanding read-side worker and repositions f just past the
// container's last consumed byte. Close is idempotent: calling it
// again returns the same result without touching the file further.
func (c *Container) Close() error {
	c.mu.Lock()
	if c.closed {
		poisoned := c.poisoned
		c.mu.Unlock()
		if poisoned != nil {
			return &PoisonedError{Err: poisoned}
		}
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	if err := c.checkPoisoned(); err != nil {
		return err
	}

	if c.writeRing != nil {
		for _, st := range c.streams {
			st.mu.Lock()
			c.flush(st)
			st.mu.Unlock()
		}
		c.writeRing.drain()
	}

	if c.readRings != nil {
		for i, ring := range c.readRings {
			st := c.streams[i]
			st.mu.Lock()
			ring.drain()
			st.mu.Unlock()
		}
		if _, err := c.file.Seek(c.initialPos+c.totalRead.Load(), io.SeekStart); err != nil {
			return fmt.Errorf("container: seek past container on close: %w", err)
		}
	}

	return c.checkPoisoned()
}

// stream validates streamIdx and returns the corresponding stream
// record.
func (c *Container) stream(streamIdx int) (*stream, error) {
	if streamIdx < 0 || streamIdx >= c.numStreams {
		return nil, fmt.Errorf("container: stream index %d out of range [0,%d)", streamIdx, c.numStreams)
	}
	return c.streams[streamIdx], nil
}
