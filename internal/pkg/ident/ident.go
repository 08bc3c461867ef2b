package ident

import (
	"crypto/rand"
	"encoding/hex"
)

const rawLen = 12

// New returns a 24-character lowercase hex identifier.
func New() string {
	buf := make([]byte, rawLen)
	if _, err := rand.Read(buf); err != nil {
		return ""
	}
	return hex.EncodeToString(buf)
}

// IsValid reports whether s is a well-formed 24-hex identifier.
func IsValid(s string) bool {
	if len(s) != rawLen*2 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
