package database

import "errors"

// ErrNotFound indicates a requested record does not exist.
var ErrNotFound = errors.New("database: not found")

// ErrAlreadyExists indicates an insert collided with an existing alias.
var ErrAlreadyExists = errors.New("database: already exists")
