package codec_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
	"time"

	"ciphera/internal/codec"
	"ciphera/internal/domain"
	"ciphera/internal/primitives"
	"ciphera/internal/protoerr"
)

func makeRemoteIdentity(t *testing.T) domain.RemoteIdentity {
	t.Helper()
	signPriv, signPub, err := primitives.GenerateEd25519()
	if err != nil {
		t.Fatalf("GenerateEd25519: %v", err)
	}
	_, exchangePub, err := primitives.GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519: %v", err)
	}
	sig := primitives.SignEd25519(signPriv, exchangePub.Slice())

	return domain.RemoteIdentity{
		SigningKey:  signPub,
		ExchangeKey: exchangePub,
		Signature:   sig,
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}
}

func TestIdentity_RoundTrip(t *testing.T) {
	want := makeRemoteIdentity(t)
	got, err := codec.DecodeIdentity(codec.EncodeIdentity(want))
	if err != nil {
		t.Fatalf("DecodeIdentity: %v", err)
	}
	if got.SigningKey != want.SigningKey || got.ExchangeKey != want.ExchangeKey {
		t.Fatal("key mismatch after round trip")
	}
	if !bytes.Equal(got.Signature, want.Signature) {
		t.Fatal("signature mismatch after round trip")
	}
	if !got.CreatedAt.Equal(want.CreatedAt) {
		t.Fatalf("createdAt mismatch: got %v, want %v", got.CreatedAt, want.CreatedAt)
	}
}

func TestPreKeyBundle_RoundTrip_WithOneTime(t *testing.T) {
	identity := makeRemoteIdentity(t)
	_, spkPub, err := primitives.GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519 (spk): %v", err)
	}
	_, otPub, err := primitives.GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519 (otp): %v", err)
	}

	want := domain.PreKeyBundle{
		RegistrationID: 7,
		Identity:       identity,
		OneTime:        &domain.OneTimePreKeyPublic{ID: 3, Pub: otPub},
		SignedPreKey:   domain.SignedPreKeyPublic{ID: 1, Pub: spkPub, Sig: []byte("sig-bytes")},
	}
	want.Identity.RegistrationID = want.RegistrationID

	got, err := codec.DecodePreKeyBundle(codec.EncodePreKeyBundle(want))
	if err != nil {
		t.Fatalf("DecodePreKeyBundle: %v", err)
	}
	if got.RegistrationID != want.RegistrationID {
		t.Fatalf("registrationId mismatch: got %d, want %d", got.RegistrationID, want.RegistrationID)
	}
	if got.OneTime == nil || *got.OneTime != *want.OneTime {
		t.Fatal("one-time pre-key mismatch after round trip")
	}
	if got.SignedPreKey.ID != want.SignedPreKey.ID || got.SignedPreKey.Pub != want.SignedPreKey.Pub {
		t.Fatal("signed pre-key mismatch after round trip")
	}
}

func TestPreKeyBundle_RoundTrip_NoOneTime(t *testing.T) {
	identity := makeRemoteIdentity(t)
	_, spkPub, err := primitives.GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519 (spk): %v", err)
	}

	want := domain.PreKeyBundle{
		RegistrationID: 42,
		Identity:       identity,
		SignedPreKey:   domain.SignedPreKeyPublic{ID: 2, Pub: spkPub, Sig: []byte("sig")},
	}
	want.Identity.RegistrationID = want.RegistrationID

	got, err := codec.DecodePreKeyBundle(codec.EncodePreKeyBundle(want))
	if err != nil {
		t.Fatalf("DecodePreKeyBundle: %v", err)
	}
	if got.OneTime != nil {
		t.Fatal("expected nil one-time pre-key")
	}
}

func TestMessageSigned_RoundTrip(t *testing.T) {
	_, senderKey, err := primitives.GenerateEd25519()
	if err != nil {
		t.Fatalf("GenerateEd25519: %v", err)
	}
	_, ratchetKey, err := primitives.GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519: %v", err)
	}

	want := domain.MessageSigned{
		SenderKey: senderKey,
		Message: domain.Message{
			SenderRatchetKey: ratchetKey,
			Counter:          5,
			PreviousCounter:  4,
			CipherText:       []byte("sealed bytes"),
		},
		Signature: []byte("mac-bytes"),
	}

	got, err := codec.DecodeMessageSigned(codec.EncodeMessageSigned(want))
	if err != nil {
		t.Fatalf("DecodeMessageSigned: %v", err)
	}
	if got.Message.Counter != want.Message.Counter || got.Message.PreviousCounter != want.Message.PreviousCounter {
		t.Fatal("counter mismatch after round trip")
	}
	if !bytes.Equal(got.Message.CipherText, want.Message.CipherText) {
		t.Fatal("cipherText mismatch after round trip")
	}
	if !bytes.Equal(got.Signature, want.Signature) {
		t.Fatal("signature mismatch after round trip")
	}
}

func TestPreKeyMessage_RoundTrip_WithAndWithoutPreKeyID(t *testing.T) {
	identity := makeRemoteIdentity(t)
	_, baseKey, err := primitives.GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519: %v", err)
	}
	_, senderKey, err := primitives.GenerateEd25519()
	if err != nil {
		t.Fatalf("GenerateEd25519: %v", err)
	}
	_, ratchetKey, err := primitives.GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519 (ratchet): %v", err)
	}

	base := domain.PreKeyMessage{
		RegistrationID: 9,
		PreKeySignedID: 1,
		BaseKey:        baseKey,
		Identity:       identity,
		SignedMessage: domain.MessageSigned{
			SenderKey: senderKey,
			Message: domain.Message{
				SenderRatchetKey: ratchetKey,
				Counter:          0,
				PreviousCounter:  0,
				CipherText:       []byte("first message"),
			},
			Signature: []byte("mac"),
		},
	}
	base.Identity.RegistrationID = base.RegistrationID

	t.Run("without pre-key id", func(t *testing.T) {
		got, err := codec.DecodePreKeyMessage(codec.EncodePreKeyMessage(base))
		if err != nil {
			t.Fatalf("DecodePreKeyMessage: %v", err)
		}
		if got.PreKeyID != nil {
			t.Fatal("expected nil preKeyId")
		}
	})

	t.Run("with pre-key id", func(t *testing.T) {
		withID := base
		id := domain.OneTimePreKeyID(11)
		withID.PreKeyID = &id

		got, err := codec.DecodePreKeyMessage(codec.EncodePreKeyMessage(withID))
		if err != nil {
			t.Fatalf("DecodePreKeyMessage: %v", err)
		}
		if got.PreKeyID == nil || *got.PreKeyID != id {
			t.Fatal("preKeyId mismatch after round trip")
		}
	})
}

func TestDecode_MissingRequiredField_IsMalformed(t *testing.T) {
	_, err := codec.DecodeMessage([]byte{})
	if !errors.Is(err, protoerr.ErrMalformedMessage) {
		t.Fatalf("got %v, want ErrMalformedMessage for empty record", err)
	}
}

func TestDecode_UnknownFieldIsSkipped(t *testing.T) {
	want := domain.Message{
		SenderRatchetKey: domain.X25519Public{1, 2, 3},
		Counter:          1,
		PreviousCounter:  0,
		CipherText:       []byte("ct"),
	}
	encoded := codec.EncodeMessage(want)

	// Append an unrecognized field (id 99) after the known fields; the
	// decoder must skip it rather than fail.
	extra := make([]byte, 8)
	binary.LittleEndian.PutUint32(extra[0:4], 99)
	binary.LittleEndian.PutUint32(extra[4:8], 3)
	extra = append(extra, 'x', 'y', 'z')
	encoded = append(encoded, extra...)

	got, err := codec.DecodeMessage(encoded)
	if err != nil {
		t.Fatalf("DecodeMessage with unknown trailing field: %v", err)
	}
	if got.Counter != want.Counter {
		t.Fatal("decode with unknown field altered known fields")
	}
}
