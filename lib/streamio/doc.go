// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package streamio provides exact-count file transfers and the
// fixed-width integer encoding used by the container chunk header.
//
// [ReadExact] and [WriteExact] move a precise number of bytes from an
// io.Reader or to an io.Writer, splitting the transfer into slices no larger than
// [MaxTransferSize] to avoid platform read/write size limits and
// retrying short results until the full count is satisfied or the
// file is exhausted.
//
// The integer helpers ([WriteUint8], [WriteUint32], [WriteInt64] and
// their Read counterparts) encode in the host's native byte order rather
// than a fixed endianness. This is a deliberate, isolated legacy
// choice: older containers were written on whatever architecture
// produced them, and this package is the single place that
// decision lives, so that a future little-endian-by-default format
// revision only has to change this file.
package streamio
