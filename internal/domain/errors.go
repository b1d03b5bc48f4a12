package domain

import "errors"

var (
	// ErrInvalidURL is returned when the input cannot be parsed into a URL with a host
	ErrInvalidURL = errors.New("invalid URL")

	// ErrInvalidDomain is returned by list mutations given a malformed domain
	ErrInvalidDomain = errors.New("invalid domain")

	// ErrSourceTimeout is returned when an external collaborator exceeds its deadline
	ErrSourceTimeout = errors.New("external source timed out")

	// ErrSourceFailure is returned when an external collaborator fails or returns garbage
	ErrSourceFailure = errors.New("external source failed")

	// ErrPersistence wraps load/save failures of the storage collaborator
	ErrPersistence = errors.New("persistence failure")
)
