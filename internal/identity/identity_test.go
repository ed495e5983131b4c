package identity_test

import (
	"errors"
	"testing"

	"ciphera/internal/domain"
	"ciphera/internal/identity"
	"ciphera/internal/protoerr"
)

func TestGenerate_PopulatesPreKeys(t *testing.T) {
	id, err := identity.Generate(1, 3, 2)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(id.OneTimePreKeys) != 3 {
		t.Fatalf("got %d one-time pre-keys, want 3", len(id.OneTimePreKeys))
	}
	if len(id.SignedPreKeys) != 2 {
		t.Fatalf("got %d signed pre-keys, want 2", len(id.SignedPreKeys))
	}
	spk, ok := id.CurrentSignedPreKey()
	if !ok {
		t.Fatal("expected a current signed pre-key")
	}
	if spk.ID != id.SignedPreKeys[1].ID {
		t.Fatal("current signed pre-key should be the most recently appended")
	}
}

func TestBundle_SignaturesVerify(t *testing.T) {
	id, err := identity.Generate(1, 1, 1)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	bundle, err := identity.Bundle(id)
	if err != nil {
		t.Fatalf("Bundle: %v", err)
	}
	if err := identity.VerifyRemoteIdentity(bundle.Identity); err != nil {
		t.Fatalf("VerifyRemoteIdentity: %v", err)
	}
	if err := identity.VerifySignedPreKey(bundle.Identity, bundle.SignedPreKey); err != nil {
		t.Fatalf("VerifySignedPreKey: %v", err)
	}
	if bundle.OneTime == nil {
		t.Fatal("expected a one-time pre-key in the bundle")
	}
}

func TestVerifyRemoteIdentity_RejectsTamperedSignature(t *testing.T) {
	id, err := identity.Generate(1, 0, 1)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	bundle, err := identity.Bundle(id)
	if err != nil {
		t.Fatalf("Bundle: %v", err)
	}
	bundle.Identity.Signature[0] ^= 0xFF

	if err := identity.VerifyRemoteIdentity(bundle.Identity); !errors.Is(err, protoerr.ErrBadIdentity) {
		t.Fatalf("got %v, want ErrBadIdentity", err)
	}
}

func TestConsumeOneTimePreKey_ExactlyOnce(t *testing.T) {
	id, err := identity.Generate(1, 1, 1)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	keyID := id.OneTimePreKeys[0].ID

	if _, err := identity.ConsumeOneTimePreKey(&id, keyID); err != nil {
		t.Fatalf("first consume: %v", err)
	}
	if len(id.OneTimePreKeys) != 0 {
		t.Fatal("expected the one-time pre-key to be removed")
	}

	if _, err := identity.ConsumeOneTimePreKey(&id, keyID); !errors.Is(err, protoerr.ErrUnknownPreKey) {
		t.Fatalf("second consume: got %v, want ErrUnknownPreKey", err)
	}
}

func TestConsumeOneTimePreKey_UnknownID(t *testing.T) {
	id, err := identity.Generate(1, 0, 1)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := identity.ConsumeOneTimePreKey(&id, domain.OneTimePreKeyID(999)); !errors.Is(err, protoerr.ErrUnknownPreKey) {
		t.Fatalf("got %v, want ErrUnknownPreKey", err)
	}
}
