package ledger

import "errors"

var (
	// ErrInvalidInput indicates a missing or malformed date, or a negative amount.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound indicates no record exists for the requested date.
	ErrNotFound = errors.New("sale record not found")

	// ErrStorageFailure indicates the record store could not be read or written.
	ErrStorageFailure = errors.New("storage failure")
)
