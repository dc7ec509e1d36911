// Package common defines sentinel errors shared across doveauthd layers.
// Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// ErrStore classifies transient storage failures. Repositories wrap
	// driver errors with it; retry policy belongs to the caller.
	ErrStore = errors.New("db error")

	// ErrSchemaTooNew means the database was written by a newer binary.
	// Fatal at startup: serving against an unknown format risks corruption.
	ErrSchemaTooNew = errors.New("database schema version newer than supported")

	// ErrMalformedRequest marks protocol lines that cannot be parsed. The
	// dict handler converts it to a failure reply, it never reaches the wire.
	ErrMalformedRequest = errors.New("malformed request")

	// ErrorCreationDisabled = errors.New("account creation disabled")
	// ErrorAlreadyExists    = errors.New("already exists")
)
