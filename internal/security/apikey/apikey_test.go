package apikey

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew_ShapeAndVerify(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(c.Plain, "tlk_"))

	keyID, secret, err := Split(c.Plain)
	require.NoError(t, err)
	require.Equal(t, c.KeyID, keyID)
	require.True(t, Verify(secret, c.SecretHash))
	require.False(t, Verify("wrong-secret", c.SecretHash))
}

func TestSplit_Malformed(t *testing.T) {
	for _, in := range []string{"", "tlk", "tlk_", "tlk_a", "tlk_a_", "nope_a_b", "tlk__s"} {
		_, _, err := Split(in)
		require.ErrorIs(t, err, ErrMalformed, "input %q", in)
	}
}

func TestNew_Unique(t *testing.T) {
	a, err := New()
	require.NoError(t, err)
	b, err := New()
	require.NoError(t, err)
	require.NotEqual(t, a.Plain, b.Plain)
	require.NotEqual(t, a.KeyID, b.KeyID)
}
