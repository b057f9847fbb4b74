package fernet

import "errors"

var (
	// ErrKeyLength is returned when the key is not exactly KeySize bytes.
	ErrKeyLength = errors.New("key must be 32 bytes")
	// ErrTokenFormat is returned when a token is structurally malformed or
	// carries an unrecognized version byte. It is reported before any
	// cryptographic work is attempted.
	ErrTokenFormat = errors.New("malformed token")
	// ErrAuthentication is returned when the token's tag does not verify:
	// wrong key, tampering, or truncation. No plaintext is released.
	ErrAuthentication = errors.New("token authentication failed")
	// ErrInvalidPadding is returned when the tag verified but the decrypted
	// padding is malformed. A verified tag rules out tampering, so this
	// indicates an internal bug rather than attacker activity.
	ErrInvalidPadding = errors.New("invalid padding")
)
