// diff.go - merge two sorted index streams and report the difference
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

// Package diff compares two already-built indexes as sorted path
// streams: entries present only in A are "missing", entries present
// only in B are "extra", and entries with matching paths and
// checksums are matches.
package diff

import (
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/vfxetc/uindex/entry"
)

// Kind tags one line of diff output.
type Kind int

const (
	Match   Kind = iota // present in both, identical checksum
	Missing             // present in A only ('-')
	Extra               // present in B only ('+')
)

func (k Kind) Symbol() string {
	switch k {
	case Missing:
		return "-"
	case Extra:
		return "+"
	default:
		return " "
	}
}

// Line is one reported row of the diff.
type Line struct {
	Kind     Kind
	Checksum string
	Path     string

	// Annotated marks an Extra symlink line that opened an
	// --ignore-links match window, printed as '@' instead of '+'
	// when Options.IgnoreLinks >= 2.
	Annotated bool
}

// Symbol returns the printed column for l, honoring Annotated.
func (l Line) Symbol() string {
	if l.Annotated {
		return "@"
	}
	return l.Kind.Symbol()
}

// Summary is the footer line's aggregate counts.
type Summary struct {
	Match   int
	Missing int
	Extra   int
}

// Options configures one diff run.
type Options struct {
	// PrintMatches, when true, emits Match lines in addition to
	// Missing/Extra ones.
	PrintMatches bool

	// IgnoreLinks implements the --ignore-links prefix-window
	// relaxation: a symlink entry present only in B opens a window
	// so that subsequent Missing entries under its path prefix are
	// reclassified as matches. Level 0 disables the relaxation;
	// level >= 2 additionally annotates the window-opening line
	// with '@'.
	IgnoreLinks int
}

// Run merges the sorted entries a and b (both already sorted by
// Path) and returns the diff lines plus the footer summary. Use Sort
// to prepare raw reads beforehand.
func Run(a, b []*entry.Entry, opt Options) ([]Line, Summary) {
	var lines []Line
	var sum Summary

	i, j := 0, 0
	var windowPrefix string
	haveWindow := false

	emitMissing := func(e *entry.Entry) {
		if haveWindow && strings.HasPrefix(e.Path, windowPrefix) {
			sum.Match++
			if opt.PrintMatches {
				lines = append(lines, Line{Kind: Match, Checksum: e.Checksum(), Path: e.Path})
			}
			return
		}
		sum.Missing++
		lines = append(lines, Line{Kind: Missing, Checksum: e.Checksum(), Path: e.Path})
	}

	emitExtra := func(e *entry.Entry) {
		sum.Extra++
		l := Line{Kind: Extra, Checksum: e.Checksum(), Path: e.Path}
		if opt.IgnoreLinks >= 1 && e.TypeCode == entry.Symlink {
			haveWindow = true
			windowPrefix = e.Path
			l.Annotated = opt.IgnoreLinks >= 2
		}
		lines = append(lines, l)
	}

	for i < len(a) && j < len(b) {
		av, bv := a[i], b[j]
		switch {
		case av.Path == bv.Path:
			if av.Checksum() == bv.Checksum() {
				sum.Match++
				if opt.PrintMatches {
					lines = append(lines, Line{Kind: Match, Checksum: av.Checksum(), Path: av.Path})
				}
			} else {
				emitMissing(av)
				emitExtra(bv)
			}
			i = skipDup(a, i)
			j = skipDup(b, j)

		case av.Path < bv.Path:
			emitMissing(av)
			i = skipDup(a, i)

		default:
			emitExtra(bv)
			j = skipDup(b, j)
		}
	}

	for ; i < len(a); i = skipDup(a, i) {
		emitMissing(a[i])
	}
	for ; j < len(b); j = skipDup(b, j) {
		emitExtra(b[j])
	}

	return lines, sum
}

// skipDup advances past any further entries sharing entries[i]'s path
// (duplicate paths in an index collapse to one comparison, matching
// the reference implementation's dedup-by-path pop()).
func skipDup(entries []*entry.Entry, i int) int {
	p := entries[i].Path
	i++
	for i < len(entries) && entries[i].Path == p {
		i++
	}
	return i
}

// Sort orders entries by path using raw byte comparison, as required
// before calling Run.
func Sort(entries []*entry.Entry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Path < entries[j].Path
	})
}

// WriteSummary renders the footer line: "<m> match, <n> missing, <k> extra."
func WriteSummary(w io.Writer, sum Summary) error {
	line := strconv.Itoa(sum.Match) + " match, " +
		strconv.Itoa(sum.Missing) + " missing, " +
		strconv.Itoa(sum.Extra) + " extra.\n"
	_, err := io.WriteString(w, line)
	return err
}
