// Package codec implements the deterministic, self-describing binary wire
// format used for every record exchanged between sessions: Identity,
// PreKey, PreKeySigned, PreKeyBundle, Message, MessageSigned, and
// PreKeyMessage.
//
// A record is a concatenation of fields sorted by ascending numeric field
// id. Each field is framed as a u32 little-endian id, a u32 little-endian
// length, and that many value bytes. Unknown field ids are skipped on
// decode; a required field absent after decoding is a malformed message.
// Encoding always re-sorts fields, so decode(encode(x)) == x even for a
// decoder that tolerated out-of-order input.
package codec
