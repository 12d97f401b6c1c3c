package storage

import "github.com/cranked/recstore/internal/storage/pager"

// These re-export the pager package's sentinel errors at the storage
// boundary so callers that only import the outer package (cmd/pagedb,
// config.go, scheduler.go) never need to reach into internal/storage/pager
// themselves. errors.Is works across the re-export either way, since these
// are the exact same values, not wrapped copies.
var (
	ErrInputValidation = pager.ErrInputValidation
	ErrDuplicateKey    = pager.ErrDuplicateKey
	ErrKeyNotFound     = pager.ErrKeyNotFound
)
