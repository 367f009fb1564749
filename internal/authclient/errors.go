package authclient

import "fmt"

// APIError is an error response from the provider. Code and Message are the
// provider's own vocabulary; classification into the identity-subsystem
// taxonomy happens in the verify service, not here.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"error_code,omitempty"`
	Message string `json:"msg,omitempty"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("authclient: %s (%s)", e.Message, e.Code)
	}
	return fmt.Sprintf("authclient: %s (status %d)", e.Message, e.Status)
}
