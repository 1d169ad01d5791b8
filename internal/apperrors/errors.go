package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found within
// the caller's organization.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed structural or business-rule
// validation (unbalanced entry, bad date ordering, duplicate code, ...).
var ErrValidation = errors.New("validation error")

// ErrInvalidState indicates that an operation was attempted from a state that
// forbids it (posting a non-draft entry, reopening a locked period, ...).
var ErrInvalidState = errors.New("invalid state for operation")

// ErrConflict indicates that a concurrent mutation raced past an optimistic
// precondition. Callers may retry.
var ErrConflict = errors.New("conflicting concurrent modification")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrInternal indicates an unexpected internal failure that should not leak details.
var ErrInternal = errors.New("internal error")
