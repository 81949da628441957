// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package aescbc

import (
	"bytes"
	"testing"
)

func TestKeygen_RejectsNonPositiveEncLoops(t *testing.T) {
	for _, loops := range []int64{0, -1, -100} {
		if _, err := Keygen([]byte("passphrase"), loops); err == nil {
			t.Fatalf("encLoops=%d: expected error, got nil", loops)
		}
	}
}

func TestKeygen_DifferentEncLoopsProduceDifferentHash(t *testing.T) {
	ks1, err := Keygen([]byte("correct horse battery staple"), 1)
	if err != nil {
		t.Fatalf("Keygen(1): %v", err)
	}
	defer ks1.Close()

	ks2, err := Keygen([]byte("correct horse battery staple"), 2)
	if err != nil {
		t.Fatalf("Keygen(2): %v", err)
	}
	defer ks2.Close()

	if bytes.Equal(ks1.hash.Bytes(), ks2.hash.Bytes()) {
		t.Fatal("different encLoops must produce different rolling hashes")
	}
	// Same passphrase means the same pass hash regardless of encLoops.
	if !bytes.Equal(ks1.passHash.Bytes(), ks2.passHash.Bytes()) {
		t.Fatal("pass hash should not depend on encLoops")
	}
}

func TestKeygen_DifferentPassphrasesProduceDifferentSchedules(t *testing.T) {
	ks1, err := Keygen([]byte("passphrase one"), 5)
	if err != nil {
		t.Fatalf("Keygen: %v", err)
	}
	defer ks1.Close()

	ks2, err := Keygen([]byte("passphrase two"), 5)
	if err != nil {
		t.Fatalf("Keygen: %v", err)
	}
	defer ks2.Close()

	if bytes.Equal(ks1.passHash.Bytes(), ks2.passHash.Bytes()) {
		t.Fatal("different passphrases must produce different pass hashes")
	}
	if bytes.Equal(ks1.hash.Bytes(), ks2.hash.Bytes()) {
		t.Fatal("different passphrases must produce different rolling hashes")
	}
}

func TestKeygen_DeterministicForSameInputs(t *testing.T) {
	ks1, err := Keygen([]byte("correct horse battery staple"), 10)
	if err != nil {
		t.Fatalf("Keygen: %v", err)
	}
	defer ks1.Close()

	ks2, err := Keygen([]byte("correct horse battery staple"), 10)
	if err != nil {
		t.Fatalf("Keygen: %v", err)
	}
	defer ks2.Close()

	if !bytes.Equal(ks1.passHash.Bytes(), ks2.passHash.Bytes()) {
		t.Fatal("identical inputs must produce identical pass hashes")
	}
	if !bytes.Equal(ks1.hash.Bytes(), ks2.hash.Bytes()) {
		t.Fatal("identical inputs must produce identical rolling hashes")
	}
}

func TestDeriveKeyIV_DifferentSaltsProduceDifferentKeysAndIVs(t *testing.T) {
	ks, err := Keygen([]byte("correct horse battery staple"), 10)
	if err != nil {
		t.Fatalf("Keygen: %v", err)
	}
	defer ks.Close()

	var saltA, saltB [SaltLen]byte
	saltB[0] = 1

	keyA, ivA := deriveKeyIV(ks, saltA)
	keyB, ivB := deriveKeyIV(ks, saltB)

	if keyA == keyB {
		t.Fatal("different salts must derive different keys")
	}
	if ivA == ivB {
		t.Fatal("different salts must derive different IVs")
	}
}

func TestDeriveKeyIV_KeyAndIVDiffer(t *testing.T) {
	ks, err := Keygen([]byte("correct horse battery staple"), 10)
	if err != nil {
		t.Fatalf("Keygen: %v", err)
	}
	defer ks.Close()

	var salt [SaltLen]byte
	key, iv := deriveKeyIV(ks, salt)
	if key == iv {
		t.Fatal("key and IV derivations must not coincide")
	}
}
