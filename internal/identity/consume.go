package identity

import (
	"ciphera/internal/domain"
	"ciphera/internal/protoerr"
)

// ConsumeOneTimePreKey removes and returns the one-time pre-key keyID from
// id. A second consumption of the same id (or a never-issued id) returns
// protoerr.ErrUnknownPreKey, per the "consumed exactly once" invariant.
func ConsumeOneTimePreKey(id *domain.Identity, keyID domain.OneTimePreKeyID) (domain.OneTimePreKeyPair, error) {
	for i, otp := range id.OneTimePreKeys {
		if otp.ID == keyID {
			id.OneTimePreKeys = append(id.OneTimePreKeys[:i], id.OneTimePreKeys[i+1:]...)
			return otp, nil
		}
	}
	return domain.OneTimePreKeyPair{}, protoerr.ErrUnknownPreKey
}
