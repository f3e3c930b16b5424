// Package auth holds the credential primitives: opaque single-use token
// values, signed session tokens and password hashing.
package auth

import "crypto/rand"

// NewOpaqueToken returns a random 26 character base32 string carrying 130
// bits of entropy. It has no structure and cannot be reversed.
func NewOpaqueToken() string {
	return rand.Text()
}
