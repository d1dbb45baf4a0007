// Package common defines shared constants and sentinel errors used across
// the backup codec and its local store. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Wrapping repository failures that leave the store inconsistent.
	ErrorInternal = errors.New("internal error")

	// Returned when an insert did not produce a row identifier.
	ErrorMissingRowID = errors.New("missing row id")

	// Validation errors for values read from the local store.
	ErrorInvalidAddress = errors.New("invalid address")
)
