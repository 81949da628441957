// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package container

import (
	"errors"
	"fmt"
)

// FormatError reports a problem with the on-disk chunk chain itself:
// a non-zero initial header where a zero one was expected, an
// advertised length that disagrees with what decompression actually
// produced, an unrecognized chunk tag, or a manifest that disagrees
// with the live chunk headers.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("container: format error: %s", e.Reason)
}

// CryptoError reports a problem in the crypto layer: a key schedule
// that could not be constructed, or a chunk encryption or decryption
// call that failed. A decrypted chunk whose length disagrees with its
// header is reported as a FormatError or a codec error, not a
// CryptoError.
type CryptoError struct {
	Reason string
	Err    error
}

func (e *CryptoError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("container: crypto error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("container: crypto error: %s", e.Reason)
}

func (e *CryptoError) Unwrap() error { return e.Err }

// ResourceError reports an allocation failure during the open-time
// buffer-sizing probe that could not be recovered by shrinking the
// candidate buffer size any further.
type ResourceError struct {
	Reason string
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("container: resource error: %s", e.Reason)
}

// PoisonedError wraps the error a prior operation recorded on a
// container. Once a container is poisoned, every subsequent public
// call returns a PoisonedError wrapping the same underlying cause
// instead of attempting further I/O.
type PoisonedError struct {
	Err error
}

func (e *PoisonedError) Error() string {
	return fmt.Sprintf("container: poisoned: %v", e.Err)
}

func (e *PoisonedError) Unwrap() error { return e.Err }

// ErrClosed is returned by any operation attempted on a Container
// after Close has already completed.
var ErrClosed = errors.New("container: already closed")

// poison records err as the container's fatal error if one is not
// already recorded, under the container's state mutex. The first
// error wins; later calls (from other workers racing to poison the
// same container) are no-ops. Returns the error now in effect, which
// may be err itself or an earlier one.
func (c *Container) poison(err error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.poisoned == nil {
		c.poisoned = err
		if c.logger != nil {
			c.logger.Error("container poisoned", "error", err)
		}
	}
	return c.poisoned
}

// checkPoisoned returns a PoisonedError wrapping the container's
// recorded fatal error, or nil if the container is healthy.
func (c *Container) checkPoisoned() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.poisoned != nil {
		return &PoisonedError{Err: c.poisoned}
	}
	return nil
}

// checkClosed returns ErrClosed if Close has already completed on c,
// or nil otherwise.
func (c *Container) checkClosed() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	return nil
}
