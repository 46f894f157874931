// Package cache provides the caching layer for parsed documents and
// rendered artifacts. Both conversion stages are content-addressed: the same
// input bytes always parse and render the same way, so entries never go
// stale and TTLs exist only to bound storage.
package cache

import (
	"context"
	"time"
)

// Default TTLs per stage. Parsed documents are cheap to rebuild and large;
// rendered artifacts are small and worth keeping longer.
const (
	DocumentTTL = 24 * time.Hour
	ArtifactTTL = 7 * 24 * time.Hour
)

// Cache is the storage interface shared by all backends.
type Cache interface {
	// Get retrieves a value. hit is false on a miss; err is reserved for
	// backend failures.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)

	// Set stores a value. A ttl of zero means no expiration; a negative ttl
	// stores an entry already past its expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// ArtifactKeyOpts captures the rendering options that change an artifact's
// bytes, so differently configured renders do not collide.
type ArtifactKeyOpts struct {
	Format      string
	IncludeText bool
	FixedPage   bool
}

// Keyer generates cache keys for the conversion stages.
type Keyer interface {
	// DocumentKey keys a parsed document by its source content hash.
	DocumentKey(contentHash string) string

	// ArtifactKey keys a rendered artifact by content hash and render
	// options.
	ArtifactKey(contentHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes key components so arbitrary option values stay safe in
// any backend's key syntax.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// DocumentKey generates a key for a parsed document.
func (k *DefaultKeyer) DocumentKey(contentHash string) string {
	return "doc:" + contentHash
}

// ArtifactKey generates a key for a rendered artifact.
func (k *DefaultKeyer) ArtifactKey(contentHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", contentHash, opts)
}
