// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package aescbc implements the container's per-chunk encryption: a
// passphrase-derived key schedule feeding AES-128-CBC with ciphertext
// stealing (CTS), so that a chunk of any length — not just a multiple
// of the cipher's 16-byte block — encrypts to exactly as many bytes as
// it started with.
//
// [KeySchedule] holds the two hashes ([Keygen] produces them from a
// passphrase) that every chunk's key and IV are re-derived from,
// combined with that chunk's own salt. Both hashes live in a
// [secret.Buffer], never in ordinary garbage-collected memory.
//
// [Encrypt] and [Decrypt] mutate a chunk's payload in place. Neither
// function pads: the caller's buffer length is the ciphertext length,
// always.
package aescbc
