// options.go - indexer configuration
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

// Package indexer drives the resumable walker, hashing cache,
// partial-content hasher and ordered parallel map into one
// create-subsystem orchestrator: it filters walked items against
// exclude patterns and an existing-entry map, hands survivors to the
// hasher pool, and writes header/rows/footer to the output index.
package indexer

import (
	"runtime"

	"github.com/opencoff/go-logger"
	"github.com/vfxetc/uindex/bytesize"
	"github.com/vfxetc/uindex/entry"
)

// Options configures one indexer run.
type Options struct {
	// Root is the directory to scan.
	Root string

	// IndexRoot is the base relative paths are computed against;
	// defaults to Root.
	IndexRoot string

	// Start is an explicit resume path (absolute, or relative to
	// Root).
	Start string

	// AutoStart and Update record the caller's resume/update mode.
	// The indexer does not read either field: a caller resolves Start
	// itself (e.g. with index.TailResumePath) and fills Existing
	// itself; items found unchanged in Existing per entry.Unchanged
	// are skipped whenever Existing is non-nil.
	AutoStart bool
	Update    bool

	Excludes        []string
	IncludeDotfiles bool

	Head bytesize.Size
	Tail bytesize.Size

	ChecksumAlgo string

	Threads int
	Sorted  bool

	// Existing is the pre-populated existing-entry map used by
	// update mode; nil disables the unchanged-entry skip.
	Existing *entry.Map

	Log logger.Logger
}

// DefaultOptions returns zero-value-safe defaults: sha256, one
// thread, sorted output, no excludes beyond the implicit dotfile
// rule.
func DefaultOptions() Options {
	return Options{
		ChecksumAlgo: "sha256",
		Threads:      1,
		Sorted:       true,
	}
}

func (o *Options) normalize() {
	if o.IndexRoot == "" {
		o.IndexRoot = o.Root
	}
	if o.ChecksumAlgo == "" {
		o.ChecksumAlgo = "sha256"
	}
	if o.Threads <= 0 {
		o.Threads = runtime.NumCPU()
	}
}
