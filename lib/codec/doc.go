// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec implements the chunk compression adapter: a uniform
// compress/decompress front over several interchangeable back ends,
// tagged by a single byte stored in every chunk header.
//
// [CompressChunk] runs a cheap incompressibility probe before most
// back ends (the fast LZO-style block compressor in [ProbeCompressible])
// so that already-compressed or random payloads are stored with
// [TagNone] instead of paying for a back end that cannot help. GZIP
// is the one back end that skips the probe, matching a long-standing
// behavior of the container format this package's wire tags are
// compatible with. LZMA-tagged compression also carries a fallback:
// if the back end reports it ran out of memory, the chunk is retried
// as BZIP2 rather than failing outright.
//
// Every exported Tag value and the wire meaning of [TagNone] are
// protocol constants — changing them breaks compatibility with
// already-written containers.
package codec
