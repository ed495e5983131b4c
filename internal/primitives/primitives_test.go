package primitives_test

import (
	"bytes"
	"testing"

	"ciphera/internal/domain"
	"ciphera/internal/primitives"
)

func TestX25519_DHAgreement(t *testing.T) {
	aPriv, aPub, err := primitives.GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519 (a): %v", err)
	}
	bPriv, bPub, err := primitives.GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519 (b): %v", err)
	}

	sharedA, err := primitives.DH(aPriv, bPub)
	if err != nil {
		t.Fatalf("DH (a): %v", err)
	}
	sharedB, err := primitives.DH(bPriv, aPub)
	if err != nil {
		t.Fatalf("DH (b): %v", err)
	}
	if sharedA != sharedB {
		t.Fatal("shared secrets differ")
	}
}

func TestEd25519_SignVerify(t *testing.T) {
	priv, pub, err := primitives.GenerateEd25519()
	if err != nil {
		t.Fatalf("GenerateEd25519: %v", err)
	}
	msg := []byte("hello ratchet")
	sig := primitives.SignEd25519(priv, msg)
	if !primitives.VerifyEd25519(pub, msg, sig) {
		t.Fatal("signature did not verify")
	}
	if primitives.VerifyEd25519(pub, []byte("tampered"), sig) {
		t.Fatal("signature verified over the wrong message")
	}
}

func TestHKDF_DeterministicAndIndependent(t *testing.T) {
	input := []byte("shared secret material")
	salt := make([]byte, 32)
	info := []byte("Signal_X3DH")

	blocksA, err := primitives.HKDF(input, 2, salt, info)
	if err != nil {
		t.Fatalf("HKDF: %v", err)
	}
	blocksB, err := primitives.HKDF(input, 2, salt, info)
	if err != nil {
		t.Fatalf("HKDF (rerun): %v", err)
	}
	for i := range blocksA {
		if !bytes.Equal(blocksA[i], blocksB[i]) {
			t.Fatalf("block %d not deterministic", i)
		}
	}
	if bytes.Equal(blocksA[0], blocksA[1]) {
		t.Fatal("expansion blocks must be independent")
	}
	if len(blocksA[0]) != primitives.HKDFBlockSize {
		t.Fatalf("block size = %d, want %d", len(blocksA[0]), primitives.HKDFBlockSize)
	}
}

func TestAESGCM_SealOpenRoundTrip(t *testing.T) {
	var key domain.AESKey
	copy(key[:], bytes.Repeat([]byte{0x11}, 32))
	aad := []byte("counter=3")
	plaintext := []byte("the ratchet advances")

	sealed, err := primitives.SealAESGCM(key, aad, plaintext)
	if err != nil {
		t.Fatalf("SealAESGCM: %v", err)
	}
	got, err := primitives.OpenAESGCM(key, aad, sealed)
	if err != nil {
		t.Fatalf("OpenAESGCM: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Fatalf("got %q, want %q", got, plaintext)
	}

	if _, err := primitives.OpenAESGCM(key, []byte("wrong aad"), sealed); err == nil {
		t.Fatal("expected AEAD failure with wrong aad")
	}
}

func TestThumbprint_StableAndSensitive(t *testing.T) {
	_, pubA, err := primitives.GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519: %v", err)
	}
	_, pubB, err := primitives.GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519: %v", err)
	}

	tpA1 := primitives.Thumbprint(pubA.Slice())
	tpA2 := primitives.Thumbprint(pubA.Slice())
	if tpA1 != tpA2 {
		t.Fatal("thumbprint not stable across calls")
	}
	if tpA1 == primitives.Thumbprint(pubB.Slice()) {
		t.Fatal("thumbprints collided for distinct keys")
	}
	if len(tpA1) != 64 {
		t.Fatalf("thumbprint length = %d, want 64 hex chars", len(tpA1))
	}
}

func TestConstantTimeEqual(t *testing.T) {
	a := []byte{1, 2, 3}
	b := []byte{1, 2, 3}
	c := []byte{1, 2, 4}

	if !primitives.ConstantTimeEqual(a, b) {
		t.Fatal("equal slices reported unequal")
	}
	if primitives.ConstantTimeEqual(a, c) {
		t.Fatal("unequal slices reported equal")
	}
	if primitives.ConstantTimeEqual(a, []byte{1, 2}) {
		t.Fatal("different-length slices reported equal")
	}
}
