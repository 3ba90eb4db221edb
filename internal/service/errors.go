package service

import (
	"errors"
)

// --- Error Definitions ---
var (
	ErrWorkoutNotFound  = errors.New("workout not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrAlreadyCopied    = errors.New("workout already copied by this user")
	ErrCloneIncomplete  = errors.New("workout clone incomplete")
	ErrNotFollowing     = errors.New("user is not followed")
)

// Kind is the stable failure category reported to callers.
type Kind string

const (
	KindOK               Kind = "OK"
	KindNotFound         Kind = "NotFound"
	KindValidationFailed Kind = "ValidationFailed"
	KindAlreadyCopied    Kind = "AlreadyCopied"
	KindCloneIncomplete  Kind = "CloneIncomplete"
	KindInternal         Kind = "Internal"
)

// ErrorKind classifies err. A nil error is KindOK; anything not produced by
// this package is KindInternal.
func ErrorKind(err error) Kind {
	switch {
	case err == nil:
		return KindOK
	case errors.Is(err, ErrWorkoutNotFound), errors.Is(err, ErrUserNotFound), errors.Is(err, ErrNotFollowing):
		return KindNotFound
	case errors.Is(err, ErrValidationFailed):
		return KindValidationFailed
	case errors.Is(err, ErrAlreadyCopied):
		return KindAlreadyCopied
	case errors.Is(err, ErrCloneIncomplete):
		return KindCloneIncomplete
	default:
		return KindInternal
	}
}
