package engine

import "errors"

// ErrNotFound is returned when the engine cannot resolve a table.
var ErrNotFound = errors.New("engine: not found")

// ErrClosed is returned when a relation handle is used after Close.
var ErrClosed = errors.New("engine: relation is closed")
