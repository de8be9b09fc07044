package domain

import "errors"

// ErrInvalidInput marks caller-supplied input rejected at the validation
// boundary. Service validation errors wrap it so transports can map the
// whole family to a client error without enumerating every field check.
var ErrInvalidInput = errors.New("invalid input")
