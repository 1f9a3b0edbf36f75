// pkg/cachefile/cachefile.go
package cachefile

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/arc-language/aptcache/pkg/config"
	"github.com/arc-language/aptcache/pkg/core"
	"github.com/arc-language/aptcache/pkg/deb"
	"github.com/arc-language/aptcache/pkg/pkgcache"
)

// CacheFile owns a loaded package cache together with the views derived
// from it. Closing it invalidates every iterator obtained from GetPkgCache.
type CacheFile struct {
	state  *config.State
	logger *log.Logger

	cache    *pkgcache.Cache
	policy   *pkgcache.Policy
	depCache *pkgcache.DepCache
	closed   bool
}

// OpenDefault opens the cache described by the global configuration
func OpenDefault(ctx context.Context) (*CacheFile, error) {
	state, err := config.Global()
	if err != nil {
		return nil, &core.Error{Op: "open cache", Err: err}
	}
	return Open(ctx, state)
}

// Open reads the status database, every list file and the configured local
// .deb files, and builds the package cache from them
func Open(ctx context.Context, state *config.State) (*CacheFile, error) {
	if state == nil || state.Config == nil || state.System == nil {
		return nil, &core.Error{Op: "open cache", Err: core.ErrNotInitialized}
	}
	cfg := state.Config
	sys := state.System
	logger := cfg.NewLogger("cache")

	foreign := make([]string, 0, len(sys.ForeignArchs))
	for _, a := range sys.ForeignArchs {
		foreign = append(foreign, a.String())
	}
	b := pkgcache.NewBuilder(sys.NativeArch.String(), foreign, logger)

	logger.Debug("reading status", "path", cfg.Dir.Status)
	if err := b.AddStatus(cfg.Dir.Status); err != nil {
		return nil, &core.Error{Op: "open cache", Err: err}
	}

	indexes, err := deb.ListIndexes(cfg.Dir.Lists)
	if err != nil {
		return nil, &core.Error{Op: "open cache", Err: err}
	}
	logger.Debug("found indexes", "dir", cfg.Dir.Lists, "count", len(indexes))

	for _, idx := range indexes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := b.AddIndex(idx); err != nil {
			if errors.Is(err, deb.ErrUnsupportedCompression) {
				logger.Warn("skipping index", "path", idx.Path, "err", err)
				continue
			}
			return nil, &core.Error{Op: "open cache", Err: err}
		}
	}

	for _, path := range cfg.Debs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !filepath.IsAbs(path) && cfg.Dir.Archives != "" {
			path = filepath.Join(cfg.Dir.Archives, path)
		}
		if err := b.AddDeb(path); err != nil {
			return nil, &core.Error{Op: "open cache", Err: fmt.Errorf("adding %s: %w", path, err)}
		}
	}

	cache := b.Build()
	logger.Debug("cache ready", "packages", cache.PackageCount(), "versions", cache.VersionCount())

	return &CacheFile{
		state:  state,
		logger: logger,
		cache:  cache,
		policy: pkgcache.NewPolicy(cache),
	}, nil
}

// GetPkgCache returns the package cache. The cache is borrowed: it stays
// owned by f and must not be used after Close.
func (f *CacheFile) GetPkgCache() *pkgcache.Cache {
	return f.cache
}

// GetPolicy returns the candidate policy
func (f *CacheFile) GetPolicy() *pkgcache.Policy {
	return f.policy
}

// GetDepCache returns the dependency-resolution view, computing it on first use
func (f *CacheFile) GetDepCache() *pkgcache.DepCache {
	if f.depCache == nil && f.cache != nil {
		f.logger.Debug("building dependency cache")
		f.depCache = pkgcache.NewDepCache(f.cache, f.policy)
	}
	return f.depCache
}

// System returns the packaging system the cache was built for
func (f *CacheFile) System() string {
	return f.state.System.String()
}

// Closed reports whether Close has been called
func (f *CacheFile) Closed() bool {
	return f.closed
}

// Close releases the cache and everything derived from it
func (f *CacheFile) Close() error {
	if f.closed {
		return core.ErrCacheClosed
	}
	f.logger.Debug("releasing cache")
	f.cache = nil
	f.policy = nil
	f.depCache = nil
	f.closed = true
	return nil
}
