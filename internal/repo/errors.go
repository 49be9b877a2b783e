package repo

import "errors"

var (
	// ErrOutsideRoot is returned when an absolute path does not lie under
	// the repository root.
	ErrOutsideRoot = errors.New("path outside repository root")

	// ErrNotFound is returned when a file discovered during a walk vanishes
	// before it can be read, or when a requested path is not tracked.
	ErrNotFound = errors.New("file not found")
)
