package x3dh_test

import (
	"testing"

	"ciphera/internal/domain"
	"ciphera/internal/identity"
	"ciphera/internal/x3dh"
)

func TestInitiatorAndResponderRoot_NoOneTime(t *testing.T) {
	alice, err := identity.Generate(1, 0, 1)
	if err != nil {
		t.Fatalf("Generate (alice): %v", err)
	}
	bob, err := identity.Generate(2, 0, 1)
	if err != nil {
		t.Fatalf("Generate (bob): %v", err)
	}

	bundle, err := identity.Bundle(bob)
	if err != nil {
		t.Fatalf("Bundle: %v", err)
	}
	if bundle.OneTime != nil {
		t.Fatal("expected no one-time pre-key in bundle")
	}

	rootA, _, ephPub, err := x3dh.InitiatorRoot(alice, bundle)
	if err != nil {
		t.Fatalf("InitiatorRoot: %v", err)
	}

	aliceRemote, err := identity.Bundle(alice)
	if err != nil {
		t.Fatalf("Bundle (alice): %v", err)
	}

	rootB, err := x3dh.ResponderRoot(&bob, aliceRemote.Identity, bundle.SignedPreKey.ID, nil, ephPub)
	if err != nil {
		t.Fatalf("ResponderRoot: %v", err)
	}
	if rootA != rootB {
		t.Fatal("root keys differ (no one-time pre-key)")
	}
}

func TestInitiatorAndResponderRoot_WithOneTime(t *testing.T) {
	alice, err := identity.Generate(1, 0, 1)
	if err != nil {
		t.Fatalf("Generate (alice): %v", err)
	}
	bob, err := identity.Generate(2, 1, 1)
	if err != nil {
		t.Fatalf("Generate (bob): %v", err)
	}

	bundle, err := identity.Bundle(bob)
	if err != nil {
		t.Fatalf("Bundle: %v", err)
	}
	if bundle.OneTime == nil {
		t.Fatal("expected a one-time pre-key in bundle")
	}

	rootA, _, ephPub, err := x3dh.InitiatorRoot(alice, bundle)
	if err != nil {
		t.Fatalf("InitiatorRoot: %v", err)
	}

	aliceRemote, err := identity.Bundle(alice)
	if err != nil {
		t.Fatalf("Bundle (alice): %v", err)
	}

	opkID := bundle.OneTime.ID
	rootB, err := x3dh.ResponderRoot(&bob, aliceRemote.Identity, bundle.SignedPreKey.ID, &opkID, ephPub)
	if err != nil {
		t.Fatalf("ResponderRoot: %v", err)
	}
	if rootA != rootB {
		t.Fatal("root keys differ (with one-time pre-key)")
	}
	if len(bob.OneTimePreKeys) != 0 {
		t.Fatal("expected the one-time pre-key to be consumed")
	}
}

func TestResponderRoot_UnknownOneTimeID(t *testing.T) {
	alice, err := identity.Generate(1, 0, 1)
	if err != nil {
		t.Fatalf("Generate (alice): %v", err)
	}
	bob, err := identity.Generate(2, 0, 1)
	if err != nil {
		t.Fatalf("Generate (bob): %v", err)
	}
	bundle, err := identity.Bundle(bob)
	if err != nil {
		t.Fatalf("Bundle: %v", err)
	}
	_, _, ephPub, err := x3dh.InitiatorRoot(alice, bundle)
	if err != nil {
		t.Fatalf("InitiatorRoot: %v", err)
	}
	aliceRemote, err := identity.Bundle(alice)
	if err != nil {
		t.Fatalf("Bundle (alice): %v", err)
	}

	neverIssued := domain.OneTimePreKeyID(999)
	if _, err := x3dh.ResponderRoot(&bob, aliceRemote.Identity, bundle.SignedPreKey.ID, &neverIssued, ephPub); err == nil {
		t.Fatal("expected an error for an unknown one-time pre-key id")
	}
}

func TestResponderRoot_RejectsUnsignedIdentity(t *testing.T) {
	alice, err := identity.Generate(1, 0, 1)
	if err != nil {
		t.Fatalf("Generate (alice): %v", err)
	}
	bob, err := identity.Generate(2, 0, 1)
	if err != nil {
		t.Fatalf("Generate (bob): %v", err)
	}
	bundle, err := identity.Bundle(bob)
	if err != nil {
		t.Fatalf("Bundle: %v", err)
	}
	_, _, ephPub, err := x3dh.InitiatorRoot(alice, bundle)
	if err != nil {
		t.Fatalf("InitiatorRoot: %v", err)
	}
	aliceRemote, err := identity.Bundle(alice)
	if err != nil {
		t.Fatalf("Bundle (alice): %v", err)
	}

	tampered := aliceRemote.Identity
	tampered.Signature = append([]byte(nil), tampered.Signature...)
	tampered.Signature[0] ^= 0xFF

	if _, err := x3dh.ResponderRoot(&bob, tampered, bundle.SignedPreKey.ID, nil, ephPub); err == nil {
		t.Fatal("expected bad-identity error for a tampered signature")
	}
}
