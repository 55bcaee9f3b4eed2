package app

import "errors"

// ErrInvalid marks fatal usage errors: starting a run from a non-idle
// state, deploying without a resolvable name, malformed references.
var ErrInvalid = errors.New("invalid usage")

// ErrNotFound marks a named object or application that does not exist
// remotely. Callers may recover from it.
var ErrNotFound = errors.New("not found")

// ErrInconsistent marks fatal disagreements between this client and the
// backend, like an identity mismatch on an identity-stable object.
var ErrInconsistent = errors.New("inconsistent state")

// ErrConflict marks a tag registered twice.
var ErrConflict = errors.New("conflicting registration")
