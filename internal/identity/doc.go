// Package identity creates and manages long-term identities: the Ed25519
// signing keypair, the X25519 exchange keypair, and the pool of signed and
// one-time pre-keys an identity publishes for X3DH. It also assembles the
// PreKeyBundle an initiator consumes and verifies a RemoteIdentity's
// self-signature before it is admitted into a session.
package identity
