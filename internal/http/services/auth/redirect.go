package auth

import "strings"

// DefaultLandingPath is where a login lands when no usable destination was
// requested.
const DefaultLandingPath = "/dashboard"

// SanitizeNext narrows an untrusted post-login destination to a same-origin
// relative path. Anything that could escape the origin (protocol-relative
// URLs, absolute URLs, scheme smuggling, backslash normalization tricks)
// falls back to the default landing path. It never fails, it only narrows.
func SanitizeNext(candidate string) string {
	if candidate == "" {
		return DefaultLandingPath
	}

	// Must be a relative path: exactly one leading slash followed by a
	// character that is neither a slash nor a backslash. This rejects
	// "//evil.com", "///evil.com" and "/\evil.com" in one check.
	if candidate[0] != '/' {
		return DefaultLandingPath
	}
	if len(candidate) > 1 && (candidate[1] == '/' || candidate[1] == '\\') {
		return DefaultLandingPath
	}

	// Absolute URLs and scheme smuggling ("javascript:...", "https:...")
	// cannot start with "/", but a colon before any "?" would still let
	// odd agents interpret a scheme.
	if i := strings.IndexByte(candidate, ':'); i >= 0 {
		if q := strings.IndexByte(candidate, '?'); q < 0 || i < q {
			return DefaultLandingPath
		}
	}

	return candidate
}
