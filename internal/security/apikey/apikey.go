// Package apikey generates and verifies the opaque API credentials handed
// to desktop/external clients.
//
// A credential has the form "tlk_<key id>_<secret>". Only the key id and a
// bcrypt hash of the secret are stored; the full credential is shown once
// at creation time.
package apikey

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	prefix      = "tlk"
	keyIDBytes  = 6
	secretBytes = 32
)

// ErrMalformed means the presented credential does not have the expected
// three-part shape.
var ErrMalformed = errors.New("apikey: malformed credential")

// Credential is a freshly generated API credential.
type Credential struct {
	// Plain is the full credential to hand to the user, shown once.
	Plain string
	// KeyID is the public lookup handle.
	KeyID string
	// SecretHash is the bcrypt hash to persist.
	SecretHash string
}

// New generates a credential.
func New() (*Credential, error) {
	keyID, err := randToken(keyIDBytes)
	if err != nil {
		return nil, err
	}
	secret, err := randToken(secretBytes)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return &Credential{
		Plain:      prefix + "_" + keyID + "_" + secret,
		KeyID:      keyID,
		SecretHash: string(hash),
	}, nil
}

// Split extracts the key id and secret from a presented credential.
func Split(plain string) (keyID, secret string, err error) {
	parts := strings.SplitN(plain, "_", 3)
	if len(parts) != 3 || parts[0] != prefix || parts[1] == "" || parts[2] == "" {
		return "", "", ErrMalformed
	}
	return parts[1], parts[2], nil
}

// Verify compares a presented secret against the stored hash.
func Verify(secret, secretHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(secretHash), []byte(secret)) == nil
}

func randToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
