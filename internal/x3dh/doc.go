// Package x3dh implements the X3DH key-agreement handshake: both the
// initiator side (which owns a long-term identity and a fresh ephemeral
// key) and the responder side (which publishes a signed pre-key and
// optionally a one-time pre-key). Both sides converge on the same 32-byte
// session root key.
package x3dh
