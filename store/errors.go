package store

import "errors"

var (
	// ErrNotFound indicates no envelope is stored under the key.
	ErrNotFound = errors.New("store: not found")

	// ErrExists indicates an envelope or payload is already stored under the key.
	ErrExists = errors.New("store: already exists")

	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("store: required parameter is nil")

	// ErrInvalidKey indicates a key that is not 32 bytes of hex.
	ErrInvalidKey = errors.New("store: invalid key")

	// ErrCorrupt indicates a stored record that no longer decodes.
	ErrCorrupt = errors.New("store: corrupt record")
)
