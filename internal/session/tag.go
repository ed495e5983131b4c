package session

import (
	"ciphera/internal/codec"
	"ciphera/internal/domain"
	"ciphera/internal/primitives"
)

// sealTag computes the MessageSigned MAC: HMAC-SHA-256, keyed by the
// per-message HMAC key derived alongside the AEAD key, over
// receiverSigningPk‖senderSigningPk‖encode(message). receiverSigningPk
// never travels on the wire — each endpoint supplies its own local signing
// public key, which is why Encrypt and Decrypt pass different (receiver,
// sender) pairs into the same function despite agreeing on the result.
func sealTag(receiverSigningPk, senderSigningPk domain.Ed25519Public, msg domain.Message, hmacKey domain.HMACKey) []byte {
	payload := make([]byte, 0, len(receiverSigningPk)+len(senderSigningPk)+64)
	payload = append(payload, receiverSigningPk.Slice()...)
	payload = append(payload, senderSigningPk.Slice()...)
	payload = append(payload, codec.EncodeMessage(msg)...)
	return primitives.HMACSHA256(hmacKey, payload)
}
