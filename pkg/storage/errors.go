package storage

import "errors"

var (
	// ErrNotFound is returned when no blob exists at the key.
	ErrNotFound = errors.New("artifact blob not found")
	// ErrEmptyKey is returned for a blank artifact key.
	ErrEmptyKey = errors.New("artifact key is empty")
	// ErrInvalidKey is returned for a key containing "..".
	ErrInvalidKey = errors.New("artifact key escapes the container")
)
