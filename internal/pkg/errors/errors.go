package errors

import "errors"

var (
	// ErrNotConfigured is returned by engine clients that were built without
	// the credentials or binaries they need.
	ErrNotConfigured = errors.New("engine not configured")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNoText signals that an engine ran successfully but found nothing.
	ErrNoText = errors.New("no text detected")
)
