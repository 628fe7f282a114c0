// Package id mints the opaque identifiers used for proposals, questionnaires
// and mirror jobs.
package id

import (
	"crypto/rand"
	"encoding/hex"
)

// Len is the length of every id minted here.
const Len = 32

// NewID32 returns exactly 32 lowercase hex characters.
func NewID32() string {
	b := make([]byte, Len/2)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// Valid reports whether s has the shape NewID32 produces. Uppercase is
// rejected so ids compare byte-for-byte in the store.
func Valid(s string) bool {
	if len(s) != Len {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
