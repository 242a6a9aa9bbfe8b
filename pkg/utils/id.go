package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// NewID returns a random 16-byte hex identifier, used for pages and jobs.
func NewID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand only fails when the OS entropy source is broken.
		panic(err)
	}
	return hex.EncodeToString(b)
}
