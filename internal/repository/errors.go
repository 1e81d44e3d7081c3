// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as handlers
// to distinguish between failure scenarios: a missing row maps to a 404
// envelope, a duplicate email to a validation failure, an unknown token to
// an authentication failure.
package repository

import "errors"

// ErrEmailExists is returned when an insert would violate the unique
// constraint on users.email.
var ErrEmailExists = errors.New("email already exists")

// ErrUserNotFound is returned when no user row matches the given id or email.
var ErrUserNotFound = errors.New("user not found")

// ErrTaskNotFound is returned when no task row matches the given id.
var ErrTaskNotFound = errors.New("task not found")

// ErrTokenNotFound is returned when an access token hash matches no live
// binding, either because it never existed or because it was revoked.
var ErrTokenNotFound = errors.New("token not found")
