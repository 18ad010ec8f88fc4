package source

import "errors"

var (
	// ErrDirectoryRequired is returned when a corpus directory is not provided.
	ErrDirectoryRequired = errors.New("corpus directory required")

	// ErrPathsRequired is returned when no file paths are provided.
	ErrPathsRequired = errors.New("at least one file path required")
)
