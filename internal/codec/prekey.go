package codec

import (
	"ciphera/internal/domain"
	"ciphera/internal/domain/types"
)

// EncodePreKey serializes a one-time pre-key's public half as a PreKey record.
func EncodePreKey(pk domain.OneTimePreKeyPublic) []byte {
	var b builder
	b.putUint32(1, uint32(pk.ID))
	b.put(2, pk.Pub.Slice())
	return b.encode()
}

// DecodePreKey parses a PreKey record.
func DecodePreKey(data []byte) (domain.OneTimePreKeyPublic, error) {
	var out domain.OneTimePreKeyPublic

	fields, err := parseFields(data)
	if err != nil {
		return out, err
	}
	id, err := requireUint32(fields, 1, "id")
	if err != nil {
		return out, err
	}
	key, err := requireFixed(fields, 2, "key", types.X25519KeySize)
	if err != nil {
		return out, err
	}

	out.ID = domain.OneTimePreKeyID(id)
	out.Pub = types.MustX25519Public(key)
	return out, nil
}

// EncodePreKeySigned serializes a signed pre-key's public half as a
// PreKeySigned record (PreKey fields plus a required signature).
func EncodePreKeySigned(spk domain.SignedPreKeyPublic) []byte {
	var b builder
	b.putUint32(1, uint32(spk.ID))
	b.put(2, spk.Pub.Slice())
	b.put(3, spk.Sig)
	return b.encode()
}

// DecodePreKeySigned parses a PreKeySigned record.
func DecodePreKeySigned(data []byte) (domain.SignedPreKeyPublic, error) {
	var out domain.SignedPreKeyPublic

	fields, err := parseFields(data)
	if err != nil {
		return out, err
	}
	id, err := requireUint32(fields, 1, "id")
	if err != nil {
		return out, err
	}
	key, err := requireFixed(fields, 2, "key", types.X25519KeySize)
	if err != nil {
		return out, err
	}
	sig, err := requireField(fields, 3, "signature")
	if err != nil {
		return out, err
	}

	out.ID = domain.SignedPreKeyID(id)
	out.Pub = types.MustX25519Public(key)
	out.Sig = append([]byte(nil), sig...)
	return out, nil
}

// EncodePreKeyBundle serializes a PreKeyBundle record.
func EncodePreKeyBundle(bundle domain.PreKeyBundle) []byte {
	var b builder
	b.putUint32(1, uint32(bundle.RegistrationID))
	b.putRecord(2, EncodeIdentity(bundle.Identity))
	if bundle.OneTime != nil {
		b.putRecord(3, EncodePreKey(*bundle.OneTime))
	}
	b.putRecord(4, EncodePreKeySigned(bundle.SignedPreKey))
	return b.encode()
}

// DecodePreKeyBundle parses a PreKeyBundle record.
func DecodePreKeyBundle(data []byte) (domain.PreKeyBundle, error) {
	var out domain.PreKeyBundle

	fields, err := parseFields(data)
	if err != nil {
		return out, err
	}
	regID, err := requireUint32(fields, 1, "registrationId")
	if err != nil {
		return out, err
	}
	identityRaw, err := requireField(fields, 2, "identity")
	if err != nil {
		return out, err
	}
	identity, err := DecodeIdentity(identityRaw)
	if err != nil {
		return out, err
	}
	signedRaw, err := requireField(fields, 4, "preKeySigned")
	if err != nil {
		return out, err
	}
	signed, err := DecodePreKeySigned(signedRaw)
	if err != nil {
		return out, err
	}

	out.RegistrationID = domain.RegistrationID(regID)
	out.Identity = identity
	out.Identity.RegistrationID = out.RegistrationID
	out.SignedPreKey = signed

	if oneTimeRaw, ok := fields[3]; ok {
		oneTime, err := DecodePreKey(oneTimeRaw)
		if err != nil {
			return out, err
		}
		out.OneTime = &oneTime
	}
	return out, nil
}
