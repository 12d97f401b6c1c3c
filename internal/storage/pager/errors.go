package pager

import "errors"

// Error kinds per the error-handling design: input-validation and
// execution errors are recoverable and returned to the caller; fatal
// conditions (bad page numbers, I/O failures, no unpinned eviction victim)
// are programming/corruption errors and panic instead (see pool.go).
var (
	ErrInputValidation = errors.New("input validation failed")
	ErrDuplicateKey    = errors.New("duplicate key")
	ErrKeyNotFound     = errors.New("key not found")
)
