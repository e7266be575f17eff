// Package cryptox holds the password hashing primitives shared by the
// server (verifier storage) and the login flow.
package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"

	"golang.org/x/crypto/argon2"
)

// DeriveKey stretches a password with argon2id into a 32-byte key.
func DeriveKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}

// MakeVerifier hashes a derived key into the value stored server-side.
// The key itself never leaves the login flow.
func MakeVerifier(key []byte) []byte {
	h := sha256.Sum256(key)
	return h[:]
}

// VerifyPassword derives a candidate verifier from (password, salt) and
// compares it to the stored one in constant time.
func VerifyPassword(password, salt, storedVerifier []byte) bool {
	candidate := MakeVerifier(DeriveKey(password, salt))
	return subtle.ConstantTimeCompare(candidate, storedVerifier) == 1
}
