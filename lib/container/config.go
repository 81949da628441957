// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package container

import (
	"fmt"
	"log/slog"

	"github.com/clayne/mscc/lib/aescbc"
	"github.com/clayne/mscc/lib/codec"
)

// StreamBufsize is the default chunk size (STREAM_BUFSIZE in the
// format's original terms): the amount of stream data accumulated
// before it is handed to a compression worker as one chunk.
const StreamBufsize = 1 << 20 // 1 MiB

// Config carries every knob a container needs, built once by the
// caller before [Create] or [Open] and held read-only thereafter —
// every worker shares the same *Config rather than reading from
// process-wide mutable state.
type Config struct {
	// Threads is the width T of the worker ring: at most this many
	// compression (or, per stream, decompression) tasks are
	// outstanding at once. Must be at least 1.
	Threads int

	// Bufsize is the chunk size streams accumulate before flushing to
	// a worker. Zero means [StreamBufsize].
	Bufsize int

	// Codec selects the compression back end applied to every chunk.
	Codec codec.Tag

	// CodecLevel is the caller-facing 1-9 compression level forwarded
	// to the codec adapter.
	CodecLevel int

	// ProbeThreshold gates the incompressibility probe (see
	// lib/codec). Zero (or a negative value) is replaced with 0.98 by
	// [Config.normalize].
	ProbeThreshold float64

	// Passphrase, if non-empty, enables per-chunk AES-128-CBC
	// encryption with ciphertext stealing. Encryption is applied
	// after compression, on the compressed (or, for NONE chunks,
	// uncompressed) bytes.
	Passphrase []byte

	// EncLoops is the key-schedule rehash count (see lib/aescbc).
	// Ignored unless Passphrase is set; must be positive when it is.
	EncLoops int64

	// BackwardCompatible selects the legacy 13-byte chunk header
	// layout used by containers recorded with major_version == 0 &&
	// minor_version < 4. New containers should leave this false.
	BackwardCompatible bool

	// FormatVersion is recorded in the manifest. It is not consulted
	// when choosing the header layout on read; BackwardCompatible alone
	// selects the layout.
	FormatVersion string

	// Logger receives diagnostic events: the initial-header recovery
	// quirk and poisoning. A nil Logger falls back to [slog.Default]
	// (see [Config.log]).
	Logger *slog.Logger
}

// normalize returns a copy of cfg with zero-valued fields replaced by
// their defaults, and validates the fields that have no sensible
// default.
func (cfg Config) normalize() (Config, error) {
	if cfg.Threads <= 0 {
		cfg.Threads = 1
	}
	if cfg.Bufsize <= 0 {
		cfg.Bufsize = StreamBufsize
	}
	if cfg.CodecLevel <= 0 {
		cfg.CodecLevel = 6
	}
	if cfg.ProbeThreshold <= 0 {
		cfg.ProbeThreshold = 0.98
	}
	if len(cfg.Passphrase) > 0 && cfg.EncLoops <= 0 {
		return cfg, fmt.Errorf("container: EncLoops must be positive when Passphrase is set")
	}
	return cfg, nil
}

// codecConfig projects cfg onto the subset of fields the codec
// adapter needs.
func (cfg Config) codecConfig() codec.Config {
	return codec.Config{
		Backend:     cfg.Codec,
		Level:       cfg.CodecLevel,
		Threshold:   cfg.ProbeThreshold,
		ProbeWindow: cfg.Bufsize,
	}
}

// newKeySchedule builds an [aescbc.KeySchedule] from cfg if encryption
// is enabled, or returns (nil, nil) otherwise.
func (cfg Config) newKeySchedule() (*aescbc.KeySchedule, error) {
	if len(cfg.Passphrase) == 0 {
		return nil, nil
	}
	ks, err := aescbc.Keygen(cfg.Passphrase, cfg.EncLoops)
	if err != nil {
		return nil, &CryptoError{Reason: "key schedule", Err: err}
	}
	return ks, nil
}

// log returns cfg's logger, or [slog.Default] if none was configured,
// so call sites never need a nil check and diagnostics are visible by
// default rather than silently discarded.
func (cfg Config) log() *slog.Logger {
	if cfg.Logger != nil {
		return cfg.Logger
	}
	return slog.Default()
}
