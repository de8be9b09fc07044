package repository

import "errors"

// ErrNotFound indicates an entity was not located. Ownership-scoped
// lookups report a foreign owner the same way as a missing row.
var ErrNotFound = errors.New("repository: not found")

// ErrConflict indicates a uniqueness constraint was violated.
var ErrConflict = errors.New("repository: conflict")
