// Package helpers contains small request helpers shared by controllers.
package helpers

import (
	"net/http"
	"strings"
)

// BearerToken extracts the token from an Authorization: Bearer header,
// or "" when the header is absent or malformed.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
