// Package statetoken implements the signed state blob carried through
// third-party OAuth round trips.
//
// A token is base64url(JSON{data, sig}) where sig = HMAC-SHA256(data) under
// a server-side secret. The payload carries the initiating user, a random
// nonce and the issue time; decoding enforces the signature and a fixed
// validity window. The codec does not track nonce consumption — replay
// within the window is accepted and left to the caller.
package statetoken

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"
)

// Validity window for a decoded token.
const DefaultTTL = 10 * time.Minute

var (
	// ErrInvalidFormat means the token could not be parsed at all.
	ErrInvalidFormat = errors.New("statetoken: invalid format")
	// ErrInvalidSignature means the HMAC did not verify.
	ErrInvalidSignature = errors.New("statetoken: invalid signature")
	// ErrExpired means the signature verified but the token is too old.
	ErrExpired = errors.New("statetoken: expired")
)

// Payload is the signed content of a state token.
type Payload struct {
	UserID   string `json:"uid"`
	Nonce    string `json:"nonce"`
	IssuedAt int64  `json:"iat"` // unix seconds
}

type wrapper struct {
	Data string `json:"data"` // base64url(JSON payload)
	Sig  string `json:"sig"`  // base64url(HMAC-SHA256(data))
}

// Codec signs and verifies state tokens with one secret. Construct one per
// provider; secrets are never shared across providers.
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// New creates a codec. A non-positive ttl falls back to DefaultTTL.
func New(secret string, ttl time.Duration) *Codec {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Codec{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithClock replaces the codec clock. Test hook.
func (c *Codec) WithClock(now func() time.Time) *Codec {
	c.now = now
	return c
}

// Encode signs payload and returns the transportable token. A zero IssuedAt
// is stamped with the current time; an empty Nonce is filled with a fresh
// random one.
func (c *Codec) Encode(p Payload) (string, error) {
	if p.IssuedAt == 0 {
		p.IssuedAt = c.now().Unix()
	}
	if p.Nonce == "" {
		n, err := NewNonce()
		if err != nil {
			return "", err
		}
		p.Nonce = n
	}

	raw, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	data := base64.RawURLEncoding.EncodeToString(raw)

	w := wrapper{Data: data, Sig: base64.RawURLEncoding.EncodeToString(c.sign(data))}
	wb, err := json.Marshal(w)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(wb), nil
}

// Decode verifies token and returns its payload. Errors are ErrInvalidFormat,
// ErrInvalidSignature or ErrExpired; the first two are surfaced identically
// to end users, ErrExpired gets its own message.
func (c *Codec) Decode(token string) (*Payload, error) {
	wb, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, ErrInvalidFormat
	}
	var w wrapper
	if err := json.Unmarshal(wb, &w); err != nil || w.Data == "" || w.Sig == "" {
		return nil, ErrInvalidFormat
	}

	sig, err := base64.RawURLEncoding.DecodeString(w.Sig)
	if err != nil {
		return nil, ErrInvalidFormat
	}
	if !hmac.Equal(sig, c.sign(w.Data)) {
		return nil, ErrInvalidSignature
	}

	raw, err := base64.RawURLEncoding.DecodeString(w.Data)
	if err != nil {
		return nil, ErrInvalidFormat
	}
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, ErrInvalidFormat
	}

	issued := time.Unix(p.IssuedAt, 0)
	if c.now().Sub(issued) > c.ttl {
		return nil, ErrExpired
	}
	return &p, nil
}

func (c *Codec) sign(data string) []byte {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(data))
	return mac.Sum(nil)
}

// NewNonce returns 16 random bytes, base64url encoded.
func NewNonce() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
