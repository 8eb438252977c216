// walk.go - resumable, lexicographically-ordered depth-first walker
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

// Package walk does a single-producer, sorted, depth-first traversal
// of a directory tree that can resume mid-traversal from an arbitrary
// relative path and still visit every file exactly once. Unlike a
// plain filepath.WalkDir, each directory's non-directory entries are
// delivered together as one ordered batch, and a resume path can skip
// whole sibling runs without re-entering them.
package walk

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vfxetc/uindex/fsutil"
)

// Kind tags the variant of a walked item, dispatched by the hasher.
type Kind int

const (
	Regular Kind = iota
	Symlink
	Special // block/char/fifo/socket/door/port: recorded only as skipped
)

// Item is one non-directory entry yielded by the walk, carrying its
// parent directory, name, full path and lstat result.
type Item struct {
	Parent string
	Name   string
	Path   string
	Info   *fsutil.Info
	Kind   Kind
}

// Options controls the behavior of the walk.
type Options struct {
	// Filter is invoked for every directory and non-directory name
	// encountered (full path in Path); returning true prunes a
	// directory's entire subtree or skips a single file. A nil
	// Filter admits everything.
	Filter func(item *Item) bool

	// OnError is invoked for lstat/readdir failures on individual
	// names; the walk continues past these. A nil OnError discards
	// the error.
	OnError func(err error)
}

// Walk performs a resumable sorted traversal of root, delivering each
// directory's non-directory items (in lexicographic name order) to
// onBatch. start, if non-empty, is a path relative to root (or
// absolute, rooted at root) identifying the resume point: the last
// path emitted by a prior run. start itself is excluded -- every item
// is still visited exactly once across a resumed sequence of runs.
// Directory stat failures on root itself are fatal and returned;
// failures on children are reported via Options.OnError and that
// child is skipped.
func Walk(root string, start string, opt Options, onBatch func(dir string, items []*Item) error) error {
	if _, err := os.Lstat(root); err != nil {
		return &Error{"lstat-root", root, err}
	}

	var stack []string
	if start != "" {
		rel := start
		if filepath.IsAbs(start) {
			r, err := filepath.Rel(root, start)
			if err != nil {
				return &Error{"resume-rel", start, err}
			}
			rel = r
		}
		rel = filepath.ToSlash(filepath.Clean(rel))
		if rel != "." && rel != "" {
			stack = strings.Split(rel, "/")
		}
	}

	w := &walker{opt: opt, onBatch: onBatch}
	return w.descend(root, stack)
}

type walker struct {
	opt     Options
	onBatch func(dir string, items []*Item) error
}

// descend implements the resume algorithm of §4.D: skip siblings
// lexicographically before stack[0] (and, once stack bottoms out, a
// non-directory named stack[0] -- it names the last path a prior run
// already emitted; a directory named stack[0] is walked in full),
// emit this directory's batch only if stack has no deeper
// component, then recurse into subdirectories in order, dropping the
// resume stack once a sibling strictly greater than stack[0] is
// reached.
func (w *walker) descend(dir string, stack []string) error {
	var thisStart string
	var nextStack []string
	if len(stack) > 0 {
		thisStart = stack[0]
		nextStack = stack[1:]
	}

	names, err := readDirNames(dir)
	if err != nil {
		w.reportErr(&Error{"readdir", dir, err})
		return nil
	}
	sort.Strings(names)

	var dirs []string
	var items []*Item

	for _, name := range names {
		if thisStart != "" && name < thisStart {
			continue
		}

		full := filepath.Join(dir, name)
		fi, err := fsutil.Lstat(full)
		if err != nil {
			w.reportErr(&Error{"lstat", full, err})
			continue
		}

		item := &Item{Parent: dir, Name: name, Path: full, Info: fi}

		if fi.IsDir() {
			if w.opt.Filter != nil && w.opt.Filter(item) {
				continue
			}
			dirs = append(dirs, name)
			continue
		}

		// At the leaf of the resume stack, a non-directory named
		// thisStart is the exact item a prior run last emitted:
		// exclude it too, or it gets re-emitted in this batch.
		if len(nextStack) == 0 && name == thisStart {
			continue
		}

		switch {
		case fi.IsRegular():
			item.Kind = Regular
		case fi.IsSymlink():
			item.Kind = Symlink
		default:
			item.Kind = Special
		}

		if w.opt.Filter != nil && w.opt.Filter(item) {
			continue
		}

		items = append(items, item)
	}

	// Emit this directory's batch only if there is no deeper resume
	// component pending: a nonzero nextStack means the prior run
	// already emitted (part of) this level's batch.
	if len(nextStack) == 0 {
		if err := w.onBatch(dir, items); err != nil {
			return err
		}
	}

	for _, name := range dirs {
		var childStack []string
		switch {
		case thisStart == "":
			childStack = nil
		case name == thisStart:
			childStack = nextStack
		case name > thisStart:
			childStack = nil
		default:
			// name < thisStart already filtered out above
			continue
		}

		if err := w.descend(filepath.Join(dir, name), childStack); err != nil {
			return err
		}
	}

	return nil
}

func (w *walker) reportErr(err error) {
	if w.opt.OnError != nil {
		w.opt.OnError(err)
	}
}

func readDirNames(dir string) ([]string, error) {
	fd, err := os.Open(dir)
	if err != nil {
		return nil, err
	}
	defer fd.Close()
	return fd.Readdirnames(-1)
}
