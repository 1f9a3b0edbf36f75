// aptcache.go
package aptcache

import (
	"context"

	"github.com/arc-language/aptcache/pkg/cachefile"
	"github.com/arc-language/aptcache/pkg/config"
	"github.com/arc-language/aptcache/pkg/pkgcache"
)

// Re-export the cache types for convenience
type (
	Config      = config.Config
	CacheFile   = cachefile.CacheFile
	Cache       = pkgcache.Cache
	Package     = pkgcache.Package
	Version     = pkgcache.Version
	PkgIterator = pkgcache.PkgIterator
	DepCache    = pkgcache.DepCache
)

// DefaultConfig returns a configuration pointing at the system database
func DefaultConfig() *Config {
	return config.DefaultConfig()
}

// LoadConfig reads the configuration file at path, see config.Load
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}

// Init initializes the process-wide configuration and system detection.
// It must be called before Open.
func Init(cfg *Config) error {
	return config.Init(cfg)
}

// Open loads the system package cache using the state set up by Init
func Open(ctx context.Context) (*CacheFile, error) {
	return cachefile.OpenDefault(ctx)
}

// Lookup finds a package by name in an open cache
func Lookup(f *CacheFile, name string) (PkgIterator, error) {
	if f.Closed() {
		return PkgIterator{}, &Error{Op: "lookup", Package: name, Err: ErrCacheClosed}
	}
	it := f.GetPkgCache().FindPkg(name)
	if it.End() {
		return it, &Error{Op: "lookup", Package: name, Err: ErrPackageNotFound}
	}
	return it, nil
}

// Describe renders the pretty description of the package under it
func Describe(f *CacheFile, it PkgIterator) string {
	return pkgcache.PrettyPkg(f.GetDepCache(), it)
}
