// dedupe.go - match-and-delete driver
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

// Package dedupe loads a reference index into a (checksum, size)
// lookup table and, driven by a second index, finds and optionally
// unlinks files whose content already exists somewhere under the
// reference root.
package dedupe

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vfxetc/uindex/entry"
	"github.com/vfxetc/uindex/fsutil"
)

// key identifies a candidate duplicate by content.
type key struct {
	checksum string
	size     int64
}

// Reference is the (checksum, size) -> entries lookup table built
// from the reference index.
type Reference struct {
	byKey map[key][]*entry.Entry

	// suffixCount counts how many reference entries share a given
	// path suffix (a "/"-joined tail of segments), built lazily on
	// first MatchUniqueRelpath use -- grounded on the later
	// suffix-count revision of the match-unique-relpath mode.
	suffixCount map[string]int
	suffixEntry map[string]*entry.Entry
}

// NewReference indexes entries by (checksum, size).
func NewReference(entries []*entry.Entry) *Reference {
	r := &Reference{byKey: make(map[key][]*entry.Entry, len(entries))}
	for _, e := range entries {
		k := key{e.Checksum(), e.Size}
		r.byKey[k] = append(r.byKey[k], e)
	}
	return r
}

// buildSuffixIndex populates suffixCount/suffixEntry once, counting
// every "/"-delimited suffix of every reference path so
// MatchUniqueRelpath can test "is this suffix unique in the
// reference" in O(1).
func (r *Reference) buildSuffixIndex() {
	if r.suffixCount != nil {
		return
	}
	r.suffixCount = make(map[string]int)
	r.suffixEntry = make(map[string]*entry.Entry)
	for _, entries := range r.byKey {
		for _, e := range entries {
			parts := strings.Split(e.Path, "/")
			for i := range parts {
				suf := strings.Join(parts[i:], "/")
				r.suffixCount[suf]++
				r.suffixEntry[suf] = e
			}
		}
	}
}

// Mode selects how a candidate entry is matched against the
// reference, most to least strict.
type Mode int

const (
	MatchExactPath Mode = iota
	MatchName
	MatchUniqueRelpath
	MatchChecksum
)

// Options configures one dedupe pass.
type Options struct {
	Mode Mode

	// MinSize tightens matches: candidates smaller than MinSize are
	// never matched.
	MinSize int64

	// MatchXattrName, if non-empty, additionally requires the
	// candidate file to carry the named xattr with value
	// MatchXattrValue.
	MatchXattrName  string
	MatchXattrValue string

	// Root resolves a matched candidate's relative path to an
	// absolute path to operate on; if empty, the path is resolved
	// via filepath.Abs instead.
	Root string

	Yes    bool
	DryRun bool

	// Verbose enables the per-match progress line.
	Verbose bool

	// Verify, if true, mmap-compares the candidate file's bytes
	// against its matched reference entry before unlinking, as an
	// extra guard against checksum collisions or stale indexes.
	Verify bool

	// Threads controls how many candidates are matched and verified
	// concurrently (the deletion/prompt phase itself stays serial).
	// <= 1 defaults to runtime.NumCPU.
	Threads int
}

// Match is one candidate entry resolved against the reference.
type Match struct {
	Candidate *entry.Entry
	Refs      []*entry.Entry // reference entries with the same (checksum, size)
	AbsPath   string
}

// Find looks up one candidate against r per opt.Mode and opt.MinSize,
// returning ok=false if there is no usable match.
func (r *Reference) Find(cand *entry.Entry, opt Options) (Match, bool) {
	if opt.MinSize > 0 && cand.Size < opt.MinSize {
		return Match{}, false
	}

	k := key{cand.Checksum(), cand.Size}
	refs, ok := r.byKey[k]
	if !ok || len(refs) == 0 {
		return Match{}, false
	}

	switch opt.Mode {
	case MatchExactPath:
		for _, ref := range refs {
			if ref.Path == cand.Path {
				return Match{Candidate: cand, Refs: []*entry.Entry{ref}}, true
			}
		}
		return Match{}, false

	case MatchName:
		name := filepath.Base(cand.Path)
		for _, ref := range refs {
			if filepath.Base(ref.Path) == name {
				return Match{Candidate: cand, Refs: []*entry.Entry{ref}}, true
			}
		}
		return Match{}, false

	case MatchUniqueRelpath:
		r.buildSuffixIndex()
		parts := strings.Split(cand.Path, "/")
		for i := range parts {
			suf := strings.Join(parts[i:], "/")
			if r.suffixCount[suf] == 1 {
				ref := r.suffixEntry[suf]
				if ref.Checksum() != k.checksum || ref.Size != k.size {
					return Match{}, false
				}
				return Match{Candidate: cand, Refs: []*entry.Entry{ref}}, true
			}
		}
		return Match{}, false

	default: // MatchChecksum
		return Match{Candidate: cand, Refs: refs}, true
	}
}

// XattrOK reports whether path carries opt's required xattr, when
// one is configured; true (vacuously) when MatchXattrName is empty.
func XattrOK(path string, opt Options) (bool, error) {
	if opt.MatchXattrName == "" {
		return true, nil
	}
	x, err := fsutil.GetXattr(path)
	if err != nil {
		return false, err
	}
	v, ok := x.Get(opt.MatchXattrName)
	return ok && v == opt.MatchXattrValue, nil
}

// ResolvePath resolves cand's relative path to an absolute one using
// opt.Root, or filepath.Abs if Root is unset.
func ResolvePath(cand *entry.Entry, opt Options) (string, error) {
	if opt.Root != "" {
		return filepath.Join(opt.Root, cand.Path), nil
	}
	return filepath.Abs(cand.Path)
}

// Prompter asks the user to confirm a deletion, matching the
// reference implementation's prompt_bool(default=True) semantics: an
// empty response accepts the default.
type Prompter struct {
	in  *bufio.Scanner
	out *os.File
}

// NewPrompter wraps stdin for confirmation prompts.
func NewPrompter() *Prompter {
	return &Prompter{in: bufio.NewScanner(os.Stdin), out: os.Stderr}
}

// Confirm asks prompt and returns the user's boolean answer,
// defaulting to true on an empty reply.
func (p *Prompter) Confirm(prompt string) bool {
	fmt.Fprintf(p.out, "%s [Yn]: ", prompt)
	if !p.in.Scan() {
		return true
	}
	res := strings.TrimSpace(p.in.Text())
	switch strings.ToLower(res) {
	case "":
		return true
	case "y", "yes":
		return true
	case "n", "no":
		return false
	default:
		return true
	}
}

// ShouldDelete decides whether to proceed with deleting absPath,
// honoring opt.Yes/opt.DryRun and falling back to an interactive
// prompt otherwise.
func ShouldDelete(absPath string, opt Options, prompter *Prompter) bool {
	if opt.Yes {
		return true
	}
	if opt.DryRun {
		return false
	}
	if prompter == nil {
		return false
	}
	return prompter.Confirm(fmt.Sprintf("Delete %s?", absPath))
}
