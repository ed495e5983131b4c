package x3dh

import (
	"fmt"

	"ciphera/internal/domain"
	"ciphera/internal/identity"
	"ciphera/internal/primitives"
	"ciphera/internal/protoerr"
)

// info is the HKDF info string binding the root-key derivation to X3DH,
// matching the wire-compatible Signal construction.
const info = "Signal_X3DH"

// f is the 32-byte constant prepended to the concatenated DH outputs,
// conventionally all-0xFF to push curve points away from low-order
// subgroups.
var f = func() [32]byte {
	var b [32]byte
	for i := range b {
		b[i] = 0xFF
	}
	return b
}()

// InitiatorRoot runs the initiator side of X3DH: it verifies the
// responder's published bundle, generates a fresh ephemeral X25519 pair,
// and derives the session root key. It returns the root key together with
// the ephemeral key pair, which becomes the session's initial DH ratchet
// key.
func InitiatorRoot(ownIdentity domain.Identity, bundle domain.PreKeyBundle) (domain.RootKey, domain.X25519Private, domain.X25519Public, error) {
	var zero domain.RootKey

	if err := identity.VerifyRemoteIdentity(bundle.Identity); err != nil {
		return zero, domain.X25519Private{}, domain.X25519Public{}, err
	}
	if err := identity.VerifySignedPreKey(bundle.Identity, bundle.SignedPreKey); err != nil {
		return zero, domain.X25519Private{}, domain.X25519Public{}, err
	}

	ephPriv, ephPub, err := primitives.GenerateX25519()
	if err != nil {
		return zero, domain.X25519Private{}, domain.X25519Public{}, fmt.Errorf("x3dh: generate ephemeral key: %w", err)
	}

	dh1, err := primitives.DH(ownIdentity.ExchangePrivate, bundle.SignedPreKey.Pub)
	if err != nil {
		return zero, domain.X25519Private{}, domain.X25519Public{}, fmt.Errorf("x3dh: dh1: %w", err)
	}
	dh2, err := primitives.DH(ephPriv, bundle.Identity.ExchangeKey)
	if err != nil {
		return zero, domain.X25519Private{}, domain.X25519Public{}, fmt.Errorf("x3dh: dh2: %w", err)
	}
	dh3, err := primitives.DH(ephPriv, bundle.SignedPreKey.Pub)
	if err != nil {
		return zero, domain.X25519Private{}, domain.X25519Public{}, fmt.Errorf("x3dh: dh3: %w", err)
	}

	km := make([]byte, 0, 32*5)
	km = append(km, f[:]...)
	km = append(km, dh1[:]...)
	km = append(km, dh2[:]...)
	km = append(km, dh3[:]...)

	if bundle.OneTime != nil {
		dh4, err := primitives.DH(ephPriv, bundle.OneTime.Pub)
		if err != nil {
			return zero, domain.X25519Private{}, domain.X25519Public{}, fmt.Errorf("x3dh: dh4: %w", err)
		}
		km = append(km, dh4[:]...)
	}

	root, err := deriveRoot(km)
	if err != nil {
		return zero, domain.X25519Private{}, domain.X25519Public{}, err
	}
	return root, ephPriv, ephPub, nil
}

// ResponderRoot runs the responder side of X3DH against a decoded
// PreKeyMessage: it verifies the initiator's identity, looks up its own
// signed pre-key by id, consumes the cited one-time pre-key (if any) from
// ownIdentity, and derives the same root key the initiator computed.
//
// ownIdentity is mutated (the cited one-time pre-key is removed) when a
// one-time pre-key is cited and found.
func ResponderRoot(ownIdentity *domain.Identity, peerIdentity domain.RemoteIdentity, spkID domain.SignedPreKeyID, opkID *domain.OneTimePreKeyID, baseKey domain.X25519Public) (domain.RootKey, error) {
	var zero domain.RootKey

	if err := identity.VerifyRemoteIdentity(peerIdentity); err != nil {
		return zero, err
	}

	spk, ok := ownIdentity.FindSignedPreKey(spkID)
	if !ok {
		return zero, fmt.Errorf("%w: signed pre-key id %d", protoerr.ErrUnknownPreKey, spkID)
	}

	dh1, err := primitives.DH(spk.Priv, peerIdentity.ExchangeKey)
	if err != nil {
		return zero, fmt.Errorf("x3dh: dh1: %w", err)
	}
	dh2, err := primitives.DH(ownIdentity.ExchangePrivate, baseKey)
	if err != nil {
		return zero, fmt.Errorf("x3dh: dh2: %w", err)
	}
	dh3, err := primitives.DH(spk.Priv, baseKey)
	if err != nil {
		return zero, fmt.Errorf("x3dh: dh3: %w", err)
	}

	km := make([]byte, 0, 32*5)
	km = append(km, f[:]...)
	km = append(km, dh1[:]...)
	km = append(km, dh2[:]...)
	km = append(km, dh3[:]...)

	if opkID != nil {
		opk, err := identity.ConsumeOneTimePreKey(ownIdentity, *opkID)
		if err != nil {
			return zero, err
		}
		dh4, err := primitives.DH(opk.Priv, baseKey)
		if err != nil {
			return zero, fmt.Errorf("x3dh: dh4: %w", err)
		}
		km = append(km, dh4[:]...)
	}

	return deriveRoot(km)
}

func deriveRoot(km []byte) (domain.RootKey, error) {
	blocks, err := primitives.HKDF(km, 1, nil, []byte(info))
	if err != nil {
		return domain.RootKey{}, fmt.Errorf("x3dh: derive root key: %w", err)
	}
	var root domain.RootKey
	copy(root[:], blocks[0])
	return root, nil
}
