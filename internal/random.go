// Package internal holds crypto/rand helpers shared by the engine and its
// stores. Nothing here is part of the public API.
package internal

import (
	"crypto/rand"
	"encoding/base64"
	"math/big"
)

const (
	passcodeMin  = 100000
	passcodeSpan = 900000 // codes are uniform over [100000, 999999]

	refreshSecretSize = 32
)

// NewPasscode returns a uniformly random 6-digit numeric string.
func NewPasscode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(passcodeSpan))
	if err != nil {
		return "", err
	}
	return big.NewInt(passcodeMin + n.Int64()).String(), nil
}

// NewOpaqueToken returns 256 bits of entropy as unpadded base64url. Opaque
// by construction: its only meaning comes from equality against a stored
// value.
func NewOpaqueToken() (string, error) {
	var raw [refreshSecretSize]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw[:]), nil
}
