// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package aescbc

import (
	"crypto/sha512"
	"fmt"

	"github.com/clayne/mscc/lib/secret"
)

// HashLen is the digest length of the hash used throughout this
// package (SHA-512), and also the length of the pass hash and the
// rolling hash held in a [KeySchedule].
const HashLen = sha512.Size // 64

// passphraseFieldLen is the fixed width a passphrase is hashed at:
// the passphrase is copied into a zeroed buffer of this length
// (truncated if longer) before the first hash, so that two
// passphrases of different lengths that happen to share a prefix
// never collide in a way that depends on where the caller's own
// buffer happened to end.
const passphraseFieldLen = 512

// SaltLen is the length of the per-chunk salt mixed into key and IV
// derivation.
const SaltLen = 8

// KeySchedule holds the two passphrase-derived hashes every chunk's
// key and IV are re-derived from: a fixed pass hash, and a rolling
// hash produced by repeated self-XOR-and-rehash (see [Keygen]). Both
// live in secret memory for the lifetime of the container.
type KeySchedule struct {
	passHash *secret.Buffer
	hash     *secret.Buffer
}

// Keygen derives a KeySchedule from passphrase. encLoops controls how
// many times the rolling hash is rehashed against the pass hash — a
// higher count makes brute-forcing the passphrase proportionally more
// expensive. encLoops must be positive.
//
// The caller's passphrase slice is not modified or retained; Keygen
// copies it into an ordinary scratch buffer, zeroes that copy before
// returning, and keeps only the derived hashes in secret memory.
func Keygen(passphrase []byte, encLoops int64) (*KeySchedule, error) {
	if encLoops <= 0 {
		return nil, fmt.Errorf("aescbc: encLoops must be positive, got %d", encLoops)
	}

	field := make([]byte, passphraseFieldLen)
	copy(field, passphrase)
	defer secret.Zero(field)

	passHashBytes := sha512.Sum512(field)

	passHash, err := secret.NewFromBytes(passHashBytes[:])
	if err != nil {
		return nil, fmt.Errorf("aescbc: pass hash buffer: %w", err)
	}

	hash, err := secret.New(HashLen)
	if err != nil {
		passHash.Close()
		return nil, fmt.Errorf("aescbc: rolling hash buffer: %w", err)
	}

	rolling := make([]byte, HashLen)
	defer secret.Zero(rolling)

	passHashView := passHash.Bytes()
	for i := int64(0); i < encLoops; i++ {
		for j := 0; j < HashLen; j++ {
			rolling[j] ^= passHashView[j]
		}
		sum := sha512.Sum512(rolling)
		copy(rolling, sum[:])
	}
	copy(hash.Bytes(), rolling)

	return &KeySchedule{passHash: passHash, hash: hash}, nil
}

// Close releases the secret memory backing the key schedule. After
// Close, the KeySchedule must not be used.
func (ks *KeySchedule) Close() error {
	var firstErr error
	if err := ks.passHash.Close(); err != nil {
		firstErr = err
	}
	if err := ks.hash.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// deriveKeyIV computes the per-chunk AES-128 key and IV from the key
// schedule and a chunk salt, following lrz_crypt's derivation exactly:
//
//	key := SHA512((pass_hash XOR hash) || salt)
//	iv  := SHA512((key XOR pass_hash) || salt)
//
// Only the first 16 bytes of each resulting digest are used as the
// AES-128 key and IV respectively.
func deriveKeyIV(ks *KeySchedule, salt [SaltLen]byte) (key, iv [16]byte) {
	passHash := ks.passHash.Bytes()
	hash := ks.hash.Bytes()

	keyMaterial := make([]byte, HashLen+SaltLen)
	defer secret.Zero(keyMaterial)
	for i := 0; i < HashLen; i++ {
		keyMaterial[i] = passHash[i] ^ hash[i]
	}
	copy(keyMaterial[HashLen:], salt[:])
	keyDigest := sha512.Sum512(keyMaterial)

	ivMaterial := make([]byte, HashLen+SaltLen)
	defer secret.Zero(ivMaterial)
	for i := 0; i < HashLen; i++ {
		ivMaterial[i] = keyDigest[i] ^ passHash[i]
	}
	copy(ivMaterial[HashLen:], salt[:])
	ivDigest := sha512.Sum512(ivMaterial)

	copy(key[:], keyDigest[:16])
	copy(iv[:], ivDigest[:16])
	return key, iv
}
