// cache.go - a (dev, ino, algo-key) -> (digest, ctime) memoization cache
//
// (c) 2024- Sudhi Herle <sudhi@herle.net>
//
// Licensing Terms: GPLv2
//
// If you need a commercial license for this work, please contact
// the author.
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

// Package hashcache memoizes content digests keyed by inode identity
// and hash parameters, so hardlinks share one hash computation and a
// file unchanged since it was last hashed in this process is not
// re-read.
package hashcache

import (
	"github.com/puzpuzpuz/xsync/v3"
)

// key identifies one cacheable digest: a specific inode hashed with
// a specific set of hash parameters.
type key struct {
	dev     uint64
	ino     uint64
	algoKey string
}

// entry is the cached outcome of hashing an inode once.
type entry struct {
	digest string
	ctime  float64
}

// Cache is a process-wide, concurrency-safe hash memoization table.
// Workers read and write it from every hashing goroutine; contention
// is negligible because hits are cheap and misses hold the map only
// during insert, never during file I/O.
type Cache struct {
	m *xsync.MapOf[key, entry]
}

// New returns an empty Cache.
func New() *Cache {
	return &Cache{m: xsync.NewMapOf[key, entry]()}
}

// Lookup returns the cached digest for (dev, ino, algoKey) iff one
// exists and its stored ctime equals ctime. A ctime mismatch means
// the inode changed since it was cached, so the caller must re-hash.
func (c *Cache) Lookup(dev, ino uint64, algoKey string, ctime float64) (string, bool) {
	k := key{dev, ino, algoKey}
	e, ok := c.m.Load(k)
	if !ok || e.ctime != ctime {
		return "", false
	}
	return e.digest, true
}

// Store records digest as the hash of (dev, ino, algoKey) as of ctime.
func (c *Cache) Store(dev, ino uint64, algoKey string, ctime float64, digest string) {
	k := key{dev, ino, algoKey}
	c.m.Store(k, entry{digest: digest, ctime: ctime})
}

// Clear purges the cache. Useful between independent scans in a
// long-lived process.
func (c *Cache) Clear() {
	c.m.Clear()
}

// Len reports the number of distinct (inode, algo-key) pairs cached.
func (c *Cache) Len() int {
	return c.m.Size()
}
