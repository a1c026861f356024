package domain

import "errors"

// Hard failures. Handlers map these to HTTP statuses with errors.Is.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrStoreWrite   = errors.New("store write failed")
)
