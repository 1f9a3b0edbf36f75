// pkg/core/errors.go
package core

import (
	"errors"
	"fmt"
)

var (
	// ErrPackageNotFound indicates the package is not in the cache
	ErrPackageNotFound = errors.New("package not found")

	// ErrNotInitialized indicates the process configuration was never initialized
	ErrNotInitialized = errors.New("configuration not initialized")

	// ErrCacheClosed indicates the cache file was already released
	ErrCacheClosed = errors.New("cache closed")

	// ErrInvalidHandle indicates a handle that was never issued
	ErrInvalidHandle = errors.New("invalid handle")

	// ErrStaleHandle indicates a handle whose owner was released
	ErrStaleHandle = errors.New("stale handle")

	// ErrAtEnd indicates an accessor was called on an exhausted iterator
	ErrAtEnd = errors.New("iterator at end")
)

// Error wraps an error with additional context
type Error struct {
	Op      string // Operation that failed
	Package string // Package name if applicable
	Err     error  // Underlying error
}

func (e *Error) Error() string {
	if e.Package != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Package, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
