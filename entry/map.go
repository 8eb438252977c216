// map.go - concurrency-safe map of relative path to Entry
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

package entry

import (
	"github.com/puzpuzpuz/xsync/v3"
)

// Map is the existing-entry map the indexer populates once (from a
// prior index, in --update mode) and reads concurrently from every
// hashing worker; it is never written to after population completes.
type Map = xsync.MapOf[string, *Entry]

// NewMap returns an empty Map.
func NewMap() *Map {
	return xsync.NewMapOf[string, *Entry]()
}

// Unchanged reports whether st (the just-stat'd size and mtime of a
// walked file) matches e within e's epsilon, meaning the file can be
// skipped rather than re-hashed.
func Unchanged(e *Entry, size int64, mtime float64) bool {
	if e == nil {
		return false
	}
	if e.Size != size {
		return false
	}
	d := e.Mtime - mtime
	if d < 0 {
		d = -d
	}
	return d < e.Epsilon()
}
