// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package container implements a multi-stream compression container: a
// threaded pipeline that multiplexes N independent logical byte streams
// into one seekable file, compressing each stream's data in fixed-size
// chunks through [github.com/clayne/mscc/lib/codec] and, optionally,
// encrypting each chunk with [github.com/clayne/mscc/lib/aescbc].
//
// [Create] opens a container for writing and [Open] opens one for
// reading; both return a [Container] whose [Container.Write],
// [Container.Read], and [Container.Close] methods are the only
// surface most callers need. Internally, writes are handed to a ring
// of compression workers ([writeRing]) that compress concurrently but
// commit to the file in strict submission order, and reads are served
// by a per-stream ring of decompression workers ([readRing]) that
// prefetch ahead of the caller.
//
// A container that hits a fatal error in a worker poisons itself: the
// error is recorded on the [Container] and returned by every
// subsequent call, including Close. See [Container.poison].
package container
