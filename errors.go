// errors.go
package aptcache

import (
	"github.com/arc-language/aptcache/pkg/core"
)

var (
	// ErrPackageNotFound indicates the package is not in the cache
	ErrPackageNotFound = core.ErrPackageNotFound

	// ErrNotInitialized indicates Init was never called
	ErrNotInitialized = core.ErrNotInitialized

	// ErrCacheClosed indicates the cache was already closed
	ErrCacheClosed = core.ErrCacheClosed

	// ErrInvalidHandle indicates a handle that was never issued
	ErrInvalidHandle = core.ErrInvalidHandle

	// ErrStaleHandle indicates a handle whose cache was released
	ErrStaleHandle = core.ErrStaleHandle

	// ErrAtEnd indicates an accessor was called on an exhausted iterator
	ErrAtEnd = core.ErrAtEnd
)

// Error wraps an error with the operation and package it concerns
type Error = core.Error
