package storage

import (
	"errors"
)

var (
	// ErrNotFound is returned when a retrieved key does not exist in the
	// database. Note: modules in storage/badger and storage/badger/operation
	// return ErrNotFound rather than badger.ErrKeyNotFound.
	ErrNotFound = errors.New("key not found")

	// ErrAlreadyExists is returned when an insert-only write targets a key
	// that already exists.
	ErrAlreadyExists = errors.New("key already exists")
)
