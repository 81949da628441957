// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package aescbc

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	"github.com/clayne/mscc/lib/secret"
)

// BlockLen is the AES block size (and the CBC/CTS chunk this package
// operates in), 16 bytes.
const BlockLen = aes.BlockSize

// Encrypt derives this chunk's key and IV from ks and salt, then
// encrypts buf in place using AES-128-CBC with ciphertext stealing.
// The output is exactly len(buf) bytes; no padding is added.
func Encrypt(ks *KeySchedule, buf []byte, salt [SaltLen]byte) error {
	key, iv := deriveKeyIV(ks, salt)
	defer secret.Zero(key[:])
	defer secret.Zero(iv[:])

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return fmt.Errorf("aescbc: new cipher: %w", err)
	}
	ctsEncrypt(block, iv, buf)
	return nil
}

// Decrypt derives this chunk's key and IV from ks and salt, then
// decrypts buf in place using AES-128-CBC with ciphertext stealing.
// buf must be exactly the ciphertext length Encrypt produced for the
// original plaintext.
func Decrypt(ks *KeySchedule, buf []byte, salt [SaltLen]byte) error {
	key, iv := deriveKeyIV(ks, salt)
	defer secret.Zero(key[:])
	defer secret.Zero(iv[:])

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return fmt.Errorf("aescbc: new cipher: %w", err)
	}
	ctsDecrypt(block, iv, buf)
	return nil
}

// ctsEncrypt encrypts buf in place under block and iv using CBC with
// ciphertext stealing: given block size B, N = floor(len(buf)/B)*B
// full blocks are CBC-encrypted normally, and any M = len(buf)-N
// trailing bytes are folded into the last full block via the
// swap-the-stolen-bytes trick so the output is exactly len(buf) bytes.
func ctsEncrypt(block cipher.Block, iv [16]byte, buf []byte) {
	n := len(buf) - len(buf)%BlockLen
	m := len(buf) - n

	if n == 0 {
		// Shorter than one block: ciphertext stealing has no full
		// block to steal bytes from. Fall back to a one-time-pad
		// style stream: ciphertext = plaintext XOR E(iv), truncated
		// to len(buf). This is its own inverse, so ctsDecrypt uses
		// the identical operation.
		streamXOR(block, iv, buf)
		return
	}

	cipher.NewCBCEncrypter(block, iv[:]).CryptBlocks(buf[:n], buf[:n])

	if m == 0 {
		return
	}

	// Zero-pad the tail to a full block and CBC-encrypt it
	// continuing the chain from the last full block's ciphertext,
	// then swap that ciphertext block with the stolen tail bytes so
	// the output is exactly len(buf) bytes with no padding visible.
	tmp0 := make([]byte, BlockLen)
	defer secret.Zero(tmp0)
	copy(tmp0, buf[n:])

	tmp1 := make([]byte, BlockLen)
	defer secret.Zero(tmp1)
	cipher.NewCBCEncrypter(block, buf[n-BlockLen:n]).CryptBlocks(tmp1, tmp0)

	copy(buf[n:], buf[n-BlockLen:n][:m])
	copy(buf[n-BlockLen:n], tmp1)
}

// ctsDecrypt is the exact inverse of ctsEncrypt.
func ctsDecrypt(block cipher.Block, iv [16]byte, buf []byte) {
	n := len(buf) - len(buf)%BlockLen
	m := len(buf) - n

	if n == 0 {
		streamXOR(block, iv, buf)
		return
	}

	if m == 0 {
		cipher.NewCBCDecrypter(block, iv[:]).CryptBlocks(buf, buf)
		return
	}

	// chainBeforeLast is the ciphertext (or IV) that chains into the
	// last full block, captured before that region is overwritten by
	// the decrypt-in-place call below.
	chainBeforeLast := make([]byte, BlockLen)
	defer secret.Zero(chainBeforeLast)
	if n > BlockLen {
		copy(chainBeforeLast, buf[n-2*BlockLen:n-BlockLen])
	} else {
		copy(chainBeforeLast, iv[:])
	}

	if n > BlockLen {
		cipher.NewCBCDecrypter(block, iv[:]).CryptBlocks(buf[:n-BlockLen], buf[:n-BlockLen])
	}

	// ECB-decrypt the swapped-in block at buf[n-BlockLen:n]. Since
	// the padded tail's plaintext had zeros past position m, this
	// recovers the true last-full-block ciphertext's trailing bytes
	// directly, and the tail's real plaintext once XORed with the
	// stolen bytes still sitting at buf[n:].
	recovered := make([]byte, BlockLen)
	defer secret.Zero(recovered)
	block.Decrypt(recovered, buf[n-BlockLen:n])

	stolen := make([]byte, BlockLen)
	defer secret.Zero(stolen)
	copy(stolen, buf[n:])

	xorBlock(recovered, stolen)
	// recovered[:m] is now the tail's plaintext; recovered[m:] is the
	// true last-full-block ciphertext's trailing bytes.
	copy(buf[n:], recovered[:m])

	trueLastCiphertext := make([]byte, BlockLen)
	defer secret.Zero(trueLastCiphertext)
	copy(trueLastCiphertext, stolen)
	copy(trueLastCiphertext[m:], recovered[m:])

	block.Decrypt(buf[n-BlockLen:n], trueLastCiphertext)
	xorBlock(buf[n-BlockLen:n], chainBeforeLast)
}

// streamXOR encrypts or decrypts a payload shorter than one AES block
// by XORing it with the leading bytes of E(iv). The operation is its
// own inverse.
func streamXOR(block cipher.Block, iv [16]byte, buf []byte) {
	mask := make([]byte, BlockLen)
	block.Encrypt(mask, iv[:])
	for i := range buf {
		buf[i] ^= mask[i]
	}
}

// xorBlock XORs b into a in place. Both must be exactly BlockLen bytes.
func xorBlock(a, b []byte) {
	for i := range a {
		a[i] ^= b[i]
	}
}
