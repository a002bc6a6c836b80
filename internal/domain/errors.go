package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateEmail    = errors.New("email already exists")
	ErrInvalidInput      = errors.New("invalid input")
	ErrMissingCredential = errors.New("missing credential")
	ErrInvalidCredential = errors.New("invalid credential")
	ErrInvalidToken      = errors.New("invalid token")
	ErrExpiredToken      = errors.New("token expired")
	ErrRateLimited       = errors.New("rate limited")

	// ErrTransient marks a store failure the caller may retry: a timed out
	// or busy database. Writes that apply a score delta are never retried
	// server-side.
	ErrTransient = errors.New("transient store failure")

	// ErrConflict is returned by guarded writes when the row changed between
	// read and write. Nothing has been applied when it is returned.
	ErrConflict = errors.New("concurrent modification")
)
