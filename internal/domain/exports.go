package domain

import (
	interfaces "ciphera/internal/domain/interfaces"
	types "ciphera/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	Fingerprint        = types.Fingerprint
	StepID             = types.StepID
	SignedPreKeyID     = types.SignedPreKeyID
	OneTimePreKeyID    = types.OneTimePreKeyID
	RegistrationID     = types.RegistrationID
	X25519Public       = types.X25519Public
	X25519Private      = types.X25519Private
	Ed25519Public      = types.Ed25519Public
	Ed25519Private     = types.Ed25519Private
	HMACKey            = types.HMACKey
	AESKey             = types.AESKey
	Identity           = types.Identity
	RemoteIdentity     = types.RemoteIdentity
	OneTimePreKeyPair  = types.OneTimePreKeyPair
	OneTimePreKeyPublic = types.OneTimePreKeyPublic
	SignedPreKeyPair   = types.SignedPreKeyPair
	SignedPreKeyPublic = types.SignedPreKeyPublic
	PreKeyBundle       = types.PreKeyBundle
	Message            = types.Message
	MessageSigned      = types.MessageSigned
	PreKeyMessage      = types.PreKeyMessage
	Envelope           = types.Envelope
	ChainKey           = types.ChainKey
	RootKey            = types.RootKey
	DHStep             = types.DHStep
	SkippedMessageKey  = types.SkippedMessageKey
	SkippedStats       = types.SkippedStats
	SessionState       = types.SessionState
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	CryptoEngine    = interfaces.CryptoEngine
	SkippedKeyCache = interfaces.SkippedKeyCache
	SessionStore    = interfaces.SessionStore
)
