package secretbox

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func testBox(t *testing.T) *Box {
	t.Helper()
	raw := make([]byte, 32)
	for i := range raw {
		raw[i] = byte(i + 1)
	}
	b, err := New(base64.StdEncoding.EncodeToString(raw))
	require.NoError(t, err)
	return b
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	b := testBox(t)

	msg := "gho_exampletoken ✓"
	ct, err := b.Encrypt(msg)
	require.NoError(t, err)

	pt, err := b.Decrypt(ct)
	require.NoError(t, err)
	require.Equal(t, msg, pt)
}

func TestDecrypt_DetectsTamper(t *testing.T) {
	b := testBox(t)

	ct, err := b.Encrypt("top secret")
	require.NoError(t, err)

	parts := strings.SplitN(ct, "|", 2)
	require.Len(t, parts, 2)

	bs, err := base64.StdEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	bs[0] ^= 0x01
	corrupted := parts[0] + "|" + base64.StdEncoding.EncodeToString(bs)

	_, err = b.Decrypt(corrupted)
	require.Error(t, err)
}

func TestNew_RejectsBadKeys(t *testing.T) {
	_, err := New("not-base64 %%%")
	require.Error(t, err)

	short := base64.StdEncoding.EncodeToString([]byte("too short"))
	_, err = New(short)
	require.ErrorIs(t, err, ErrBadKey)
}

func TestDecrypt_MalformedPayload(t *testing.T) {
	b := testBox(t)
	for _, p := range []string{"", "no-separator", "a|b|c-extra", "!!|??"} {
		_, err := b.Decrypt(p)
		require.Error(t, err, "payload %q", p)
	}
}
