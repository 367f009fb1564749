package repository

import "errors"

var (
	// ErrNotFound: the requested row does not exist.
	ErrNotFound = errors.New("repository: not found")

	// ErrRPCUnavailable: the server-side function backing an atomic
	// operation is not deployed; callers may fall back to direct writes.
	ErrRPCUnavailable = errors.New("repository: rpc unavailable")
)
