// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package manifest encodes and decodes the CBOR sidecar record that
// describes a container's shape: stream count, chunk buffer size,
// thread count, codec selection, and whether encryption is enabled.
//
// A container's own chunk chains are fully self-describing — every
// chunk carries its own tag and lengths — so a Manifest is never
// required to decode a stream. It exists purely so that tooling,
// logging, and Open's own sanity check can answer "how many streams
// does this have, and was it encrypted" without reading and parsing
// the first N chunk headers.
//
// Encoding follows Core Deterministic Encoding (RFC 8949 §4.2): sorted
// keys, smallest integer encoding, no indefinite-length items. The
// same Manifest value always encodes to identical bytes.
package manifest

import (
	"fmt"
	"io"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// Manifest is the CBOR record written once at container-create time
// and, optionally, validated against the live container at open time.
// Fields use integer keys (via the keyasint struct tag) rather than
// string field names, matching the wire-compact convention CBOR
// documents for RFC 8949 §4.2 deterministic encoding: smaller maps,
// and a stable key regardless of any future Go field rename.
type Manifest struct {
	FormatVersion string `cbor:"0,keyasint"`
	StreamCount   int    `cbor:"1,keyasint"`
	Bufsize       int    `cbor:"2,keyasint"`
	ThreadCount   int    `cbor:"3,keyasint"`
	Codec         string `cbor:"4,keyasint"`
	CodecLevel    int    `cbor:"5,keyasint"`
	Encrypted     bool   `cbor:"6,keyasint"`
	EncLoops      int64  `cbor:"7,keyasint"`
}

var encMode cbor.EncMode
var decMode cbor.DecMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("manifest: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("manifest: CBOR decoder initialization failed: " + err.Error())
	}
}

// Marshal encodes m using Core Deterministic Encoding. Encoding the
// same Manifest value twice always produces byte-identical output.
func Marshal(m Manifest) ([]byte, error) {
	data, err := encMode.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("manifest: marshal: %w", err)
	}
	return data, nil
}

// Unmarshal decodes a Manifest previously produced by [Marshal].
func Unmarshal(data []byte) (Manifest, error) {
	var m Manifest
	if err := decMode.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("manifest: unmarshal: %w", err)
	}
	return m, nil
}

// Write encodes m and writes it to w in a single CBOR item.
func Write(w io.Writer, m Manifest) error {
	data, err := Marshal(m)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("manifest: write: %w", err)
	}
	return nil
}

// Read decodes a single Manifest CBOR item from r.
func Read(r io.Reader) (Manifest, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Manifest{}, fmt.Errorf("manifest: read: %w", err)
	}
	return Unmarshal(data)
}

// MismatchError describes a single field on which a Manifest
// disagrees with the live container it was supposed to describe.
type MismatchError struct {
	Field    string
	Manifest any
	Live     any
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("manifest: %s mismatch: manifest says %v, container has %v", e.Field, e.Manifest, e.Live)
}

// Validate compares m against the live values read from a container's
// initial headers and configuration, returning a [MismatchError] for
// the first field that disagrees, or nil if the manifest and the live
// container agree on every field Validate checks.
//
// Validate intentionally checks only the fields a live container can
// cheaply and unambiguously reconstruct without decoding any chunk
// payload: stream count, bufsize, codec, and whether encryption is
// enabled. CodecLevel, ThreadCount, and EncLoops are advisory —
// changing them does not alter how an already-written container must
// be read, so a mismatch there is not a format error.
func Validate(m Manifest, liveStreamCount int, liveBufsize int, liveCodec string, liveEncrypted bool) error {
	if m.StreamCount != liveStreamCount {
		return &MismatchError{Field: "stream_count", Manifest: m.StreamCount, Live: liveStreamCount}
	}
	if m.Bufsize != liveBufsize {
		return &MismatchError{Field: "bufsize", Manifest: m.Bufsize, Live: liveBufsize}
	}
	if m.Codec != liveCodec {
		return &MismatchError{Field: "codec", Manifest: m.Codec, Live: liveCodec}
	}
	if m.Encrypted != liveEncrypted {
		return &MismatchError{Field: "encrypted", Manifest: m.Encrypted, Live: liveEncrypted}
	}
	return nil
}
