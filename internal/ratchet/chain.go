package ratchet

import (
	"encoding/binary"
	"fmt"

	"ciphera/internal/domain"
	"ciphera/internal/domain/types"
	"ciphera/internal/primitives"
)

// messageKeysInfo is the HKDF info string for per-message key expansion.
const messageKeysInfo = "WhisperMessageKeys"

var (
	chainKeyLabel   = []byte{0x02}
	messageKeyLabel = []byte{0x01}
)

// MessageKeys are the three values expanded from one chain step's raw
// message-key precursor: the AEAD key, the HMAC key used to tag
// MessageSigned, and the fixed AEAD nonce.
type MessageKeys struct {
	AES   domain.AESKey
	HMAC  domain.HMACKey
	Nonce [types.GCMNonceSize]byte
}

// AdvanceChain steps ck forward by one message, returning the next chain
// key and the raw message-key precursor for the step just consumed (i.e.
// the key for counter ck.Counter, before advancement).
func AdvanceChain(ck domain.ChainKey) (next domain.ChainKey, mkRaw []byte) {
	mkRaw = primitives.HMACSHA256(ck.Key, messageKeyLabel)
	nextKey := primitives.HMACSHA256(ck.Key, chainKeyLabel)
	next = domain.ChainKey{Key: types.MustHMACKey(nextKey), Counter: ck.Counter + 1}
	return next, mkRaw
}

// DeriveMessageKeys expands a raw message-key precursor into the AES key,
// HMAC key, and AEAD nonce used for one message.
func DeriveMessageKeys(mkRaw []byte) (MessageKeys, error) {
	blocks, err := primitives.HKDF(mkRaw, 3, nil, []byte(messageKeysInfo))
	if err != nil {
		return MessageKeys{}, fmt.Errorf("ratchet: derive message keys: %w", err)
	}

	var out MessageKeys
	out.AES = types.MustAESKey(blocks[0])
	out.HMAC = types.MustHMACKey(blocks[1])
	copy(out.Nonce[:], blocks[2][:types.GCMNonceSize])
	return out, nil
}

// MessageAAD returns the 8-byte big-endian counter||previousCounter
// associated data bound into each message's AEAD seal.
func MessageAAD(counter, previousCounter uint32) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint32(buf[0:4], counter)
	binary.BigEndian.PutUint32(buf[4:8], previousCounter)
	return buf
}

// SealMessage advances ck, derives its message keys, and seals plaintext
// under the resulting AES key and nonce. It returns the advanced chain,
// the sealed ciphertext, and the HMAC key the caller uses to tag the
// enclosing MessageSigned record.
func SealMessage(ck domain.ChainKey, previousCounter uint32, plaintext []byte) (next domain.ChainKey, ciphertext []byte, hmacKey domain.HMACKey, err error) {
	next, mkRaw := AdvanceChain(ck)
	keys, err := DeriveMessageKeys(mkRaw)
	if err != nil {
		return domain.ChainKey{}, nil, domain.HMACKey{}, err
	}

	aad := MessageAAD(ck.Counter, previousCounter)
	ct, err := primitives.SealAESGCMWithNonce(keys.AES, keys.Nonce[:], aad, plaintext)
	if err != nil {
		return domain.ChainKey{}, nil, domain.HMACKey{}, fmt.Errorf("ratchet: seal message: %w", err)
	}
	return next, ct, keys.HMAC, nil
}

// OpenMessageWithKeys decrypts ciphertext using an already-derived
// MessageKeys value, whether it came from a skipped-cache hit (where the raw
// precursor was stored) or was just derived from the live receiving chain.
func OpenMessageWithKeys(keys MessageKeys, counter, previousCounter uint32, ciphertext []byte) ([]byte, error) {
	aad := MessageAAD(counter, previousCounter)
	return primitives.OpenAESGCMWithNonce(keys.AES, keys.Nonce[:], aad, ciphertext)
}
