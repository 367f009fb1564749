// Package secretbox encrypts third-party access tokens before they are
// written to Postgres. AES-256-GCM; output is base64(nonce)|base64(ciphertext).
package secretbox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	nonceSizeGCM      = 12
	requiredKeyLength = 32 // AES-256
	sep               = "|"
)

var (
	ErrBadKey     = errors.New("secretbox: key must decode to 32 bytes")
	ErrBadPayload = errors.New("secretbox: malformed payload")
)

// Box holds the master key. Construct once during wiring.
type Box struct {
	key []byte
}

// New creates a Box from a base64(std) encoded 32-byte key.
func New(keyB64 string) (*Box, error) {
	k, err := base64.StdEncoding.DecodeString(strings.TrimSpace(keyB64))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadKey, err)
	}
	if len(k) != requiredKeyLength {
		return nil, ErrBadKey
	}
	key := make([]byte, len(k))
	copy(key, k)
	return &Box{key: key}, nil
}

// Encrypt seals plainText and returns base64(nonce)|base64(ciphertext).
func (b *Box) Encrypt(plainText string) (string, error) {
	gcm, err := b.aead()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, nonceSizeGCM)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	ct := gcm.Seal(nil, nonce, []byte(plainText), nil)
	return base64.StdEncoding.EncodeToString(nonce) + sep + base64.StdEncoding.EncodeToString(ct), nil
}

// Decrypt opens a payload produced by Encrypt.
func (b *Box) Decrypt(payload string) (string, error) {
	parts := strings.SplitN(payload, sep, 2)
	if len(parts) != 2 {
		return "", ErrBadPayload
	}
	nonce, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil || len(nonce) != nonceSizeGCM {
		return "", ErrBadPayload
	}
	ct, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return "", ErrBadPayload
	}

	gcm, err := b.aead()
	if err != nil {
		return "", err
	}
	pt, err := gcm.Open(nil, nonce, ct, nil)
	if err != nil {
		return "", err
	}
	return string(pt), nil
}

func (b *Box) aead() (cipher.AEAD, error) {
	block, err := aes.NewCipher(b.key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
