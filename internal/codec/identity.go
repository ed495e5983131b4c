package codec

import (
	"ciphera/internal/domain"
	"ciphera/internal/domain/types"
)

// EncodeIdentity serializes a RemoteIdentity as an Identity record.
func EncodeIdentity(id domain.RemoteIdentity) []byte {
	var b builder
	b.put(1, id.SigningKey.Slice())
	b.put(2, id.ExchangeKey.Slice())
	b.put(3, id.Signature)
	b.putDate(4, id.CreatedAt)
	return b.encode()
}

// DecodeIdentity parses an Identity record into a RemoteIdentity. The
// registration id is not part of the Identity record itself; callers that
// need it populate RemoteIdentity.RegistrationID from the enclosing record.
func DecodeIdentity(data []byte) (domain.RemoteIdentity, error) {
	var out domain.RemoteIdentity

	fields, err := parseFields(data)
	if err != nil {
		return out, err
	}

	signingKey, err := requireFixed(fields, 1, "signingKey", types.Ed25519PubSize)
	if err != nil {
		return out, err
	}
	exchangeKey, err := requireFixed(fields, 2, "exchangeKey", types.X25519KeySize)
	if err != nil {
		return out, err
	}
	sig, err := requireField(fields, 3, "signature")
	if err != nil {
		return out, err
	}
	createdAt, err := requireDate(fields, 4, "createdAt")
	if err != nil {
		return out, err
	}

	out.SigningKey = types.MustEd25519Public(signingKey)
	out.ExchangeKey = types.MustX25519Public(exchangeKey)
	out.Signature = append([]byte(nil), sig...)
	out.CreatedAt = createdAt
	return out, nil
}
