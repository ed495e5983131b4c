package identity

import (
	"fmt"

	"ciphera/internal/domain"
	"ciphera/internal/primitives"
	"ciphera/internal/protoerr"
)

// Bundle assembles the PreKeyBundle a remote peer consumes to run X3DH
// against id: id's signed self-description, its current signed pre-key,
// and the lowest-id one-time pre-key still available, if any.
//
// Bundle does not consume the one-time pre-key; consumption happens on the
// responder side when a session is created from a PreKeyMessage citing it
// (see ConsumeOneTimePreKey, called from x3dh.ResponderRoot).
func Bundle(id domain.Identity) (domain.PreKeyBundle, error) {
	spk, ok := id.CurrentSignedPreKey()
	if !ok {
		return domain.PreKeyBundle{}, fmt.Errorf("identity: bundle: no signed pre-key available")
	}

	remote := domain.RemoteIdentity{
		SigningKey:     id.SigningPublic,
		ExchangeKey:    id.ExchangePublic,
		Signature:      primitives.SignEd25519(id.SigningPrivate, id.ExchangePublic.Slice()),
		CreatedAt:      id.CreatedAt,
		RegistrationID: id.RegistrationID,
	}

	bundle := domain.PreKeyBundle{
		RegistrationID: id.RegistrationID,
		Identity:       remote,
		SignedPreKey: domain.SignedPreKeyPublic{
			ID:  spk.ID,
			Pub: spk.Pub,
			Sig: spk.Sig,
		},
	}

	if len(id.OneTimePreKeys) > 0 {
		otp := id.OneTimePreKeys[0]
		bundle.OneTime = &domain.OneTimePreKeyPublic{ID: otp.ID, Pub: otp.Pub}
	}
	return bundle, nil
}

// VerifyRemoteIdentity checks that remote's signature over its exchange key
// verifies under its own signing key, per §4.4's admission check.
func VerifyRemoteIdentity(remote domain.RemoteIdentity) error {
	if !primitives.VerifyEd25519(remote.SigningKey, remote.ExchangeKey.Slice(), remote.Signature) {
		return protoerr.ErrBadIdentity
	}
	return nil
}

// VerifySignedPreKey checks that spk's signature verifies under the owning
// identity's signing key.
func VerifySignedPreKey(owner domain.RemoteIdentity, spk domain.SignedPreKeyPublic) error {
	if !primitives.VerifyEd25519(owner.SigningKey, spk.Pub.Slice(), spk.Sig) {
		return protoerr.ErrBadIdentity
	}
	return nil
}
