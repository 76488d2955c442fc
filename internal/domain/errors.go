package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalid marks malformed input or a rejected business operation.
	ErrInvalid = errors.New("invalid request")

	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")

	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrInvalid)
	ErrAlreadyExists      = fmt.Errorf("%w: already exists", ErrInvalid)
)
