package codec

import (
	"ciphera/internal/domain"
	"ciphera/internal/domain/types"
)

// EncodeMessage serializes a Message record.
func EncodeMessage(m domain.Message) []byte {
	var b builder
	b.put(1, m.SenderRatchetKey.Slice())
	b.putUint32(2, m.Counter)
	b.putUint32(3, m.PreviousCounter)
	b.put(4, m.CipherText)
	return b.encode()
}

// DecodeMessage parses a Message record.
func DecodeMessage(data []byte) (domain.Message, error) {
	var out domain.Message

	fields, err := parseFields(data)
	if err != nil {
		return out, err
	}
	senderKey, err := requireFixed(fields, 1, "senderRatchetKey", types.X25519KeySize)
	if err != nil {
		return out, err
	}
	counter, err := requireUint32(fields, 2, "counter")
	if err != nil {
		return out, err
	}
	prevCounter, err := requireUint32(fields, 3, "previousCounter")
	if err != nil {
		return out, err
	}
	cipherText, err := requireField(fields, 4, "cipherText")
	if err != nil {
		return out, err
	}

	out.SenderRatchetKey = types.MustX25519Public(senderKey)
	out.Counter = counter
	out.PreviousCounter = prevCounter
	out.CipherText = append([]byte(nil), cipherText...)
	return out, nil
}

// EncodeMessageSigned serializes a MessageSigned record.
func EncodeMessageSigned(ms domain.MessageSigned) []byte {
	var b builder
	b.put(1, ms.SenderKey.Slice())
	b.putRecord(2, EncodeMessage(ms.Message))
	b.put(3, ms.Signature)
	return b.encode()
}

// DecodeMessageSigned parses a MessageSigned record.
func DecodeMessageSigned(data []byte) (domain.MessageSigned, error) {
	var out domain.MessageSigned

	fields, err := parseFields(data)
	if err != nil {
		return out, err
	}
	senderKey, err := requireFixed(fields, 1, "senderKey", types.Ed25519PubSize)
	if err != nil {
		return out, err
	}
	messageRaw, err := requireField(fields, 2, "message")
	if err != nil {
		return out, err
	}
	message, err := DecodeMessage(messageRaw)
	if err != nil {
		return out, err
	}
	sig, err := requireField(fields, 3, "signature")
	if err != nil {
		return out, err
	}

	out.SenderKey = types.MustEd25519Public(senderKey)
	out.Message = message
	out.Signature = append([]byte(nil), sig...)
	return out, nil
}

// EncodePreKeyMessage serializes a PreKeyMessage record.
func EncodePreKeyMessage(pm domain.PreKeyMessage) []byte {
	var b builder
	b.putUint32(1, uint32(pm.RegistrationID))
	if pm.PreKeyID != nil {
		b.putUint32(2, uint32(*pm.PreKeyID))
	}
	b.putUint32(3, uint32(pm.PreKeySignedID))
	b.put(4, pm.BaseKey.Slice())
	b.putRecord(5, EncodeIdentity(pm.Identity))
	b.putRecord(6, EncodeMessageSigned(pm.SignedMessage))
	return b.encode()
}

// DecodePreKeyMessage parses a PreKeyMessage record.
func DecodePreKeyMessage(data []byte) (domain.PreKeyMessage, error) {
	var out domain.PreKeyMessage

	fields, err := parseFields(data)
	if err != nil {
		return out, err
	}
	regID, err := requireUint32(fields, 1, "registrationId")
	if err != nil {
		return out, err
	}
	signedID, err := requireUint32(fields, 3, "preKeySignedId")
	if err != nil {
		return out, err
	}
	baseKey, err := requireFixed(fields, 4, "baseKey", types.X25519KeySize)
	if err != nil {
		return out, err
	}
	identityRaw, err := requireField(fields, 5, "identity")
	if err != nil {
		return out, err
	}
	identity, err := DecodeIdentity(identityRaw)
	if err != nil {
		return out, err
	}
	signedMsgRaw, err := requireField(fields, 6, "signedMessage")
	if err != nil {
		return out, err
	}
	signedMsg, err := DecodeMessageSigned(signedMsgRaw)
	if err != nil {
		return out, err
	}

	out.RegistrationID = domain.RegistrationID(regID)
	out.PreKeySignedID = domain.SignedPreKeyID(signedID)
	out.BaseKey = types.MustX25519Public(baseKey)
	out.Identity = identity
	out.Identity.RegistrationID = out.RegistrationID
	out.SignedMessage = signedMsg

	if preKeyRaw, ok := fields[2]; ok {
		v, err := decodeUint32("preKeyId", 2, preKeyRaw)
		if err != nil {
			return out, err
		}
		id := domain.OneTimePreKeyID(v)
		out.PreKeyID = &id
	}
	return out, nil
}
