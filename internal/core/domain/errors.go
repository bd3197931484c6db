package domain

import "errors"

var (
	// ErrNotFound is returned by repositories when no row matches.
	ErrNotFound = errors.New("not found")
	// ErrInvalidQuery marks a selection the routing backend cannot be asked.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrUnknownOption is returned when setting an option a plugin does not declare.
	ErrUnknownOption = errors.New("unknown plugin option")
)
