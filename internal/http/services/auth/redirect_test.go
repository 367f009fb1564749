package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSanitizeNext_Unsafe(t *testing.T) {
	cases := []string{
		"",
		"//evil.com",
		"///evil.com",
		`/\evil.com`,
		`/\\evil.com`,
		"https://evil.com",
		"http://evil.com",
		"javascript:alert(1)",
		"JavaScript:alert(1)",
		"evil.com",
		"dashboard",
		"/javascript:alert(1)",
		"\\evil.com",
	}
	for _, c := range cases {
		require.Equal(t, DefaultLandingPath, SanitizeNext(c), "input %q", c)
	}
}

func TestSanitizeNext_Safe(t *testing.T) {
	cases := []string{
		"/",
		"/dashboard",
		"/settings",
		"/valid?param=value",
		"/offers/123?tab=drafts&sort=new",
		"/search?q=a:b",
	}
	for _, c := range cases {
		require.Equal(t, c, SanitizeNext(c), "input %q", c)
	}
}
