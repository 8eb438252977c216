package diff

import (
	"bytes"
	"testing"

	"github.com/vfxetc/uindex/entry"
)

func e(path, sum string, typ entry.Type) *entry.Entry {
	return &entry.Entry{Path: path, RawChecksum: sum, TypeCode: typ}
}

func TestRunBasic(t *testing.T) {
	a := []*entry.Entry{
		e("a.txt", "sha256:111", entry.Regular),
		e("b.txt", "sha256:222", entry.Regular),
		e("c.txt", "sha256:333", entry.Regular),
	}
	b := []*entry.Entry{
		e("a.txt", "sha256:111", entry.Regular), // match
		e("b.txt", "sha256:999", entry.Regular), // changed -> missing+extra
		e("d.txt", "sha256:444", entry.Regular), // extra
	}

	lines, sum := Run(a, b, Options{})
	if sum.Match != 1 || sum.Missing != 2 || sum.Extra != 2 {
		t.Fatalf("summary = %+v", sum)
	}

	var missingPaths, extraPaths []string
	for _, l := range lines {
		switch l.Kind {
		case Missing:
			missingPaths = append(missingPaths, l.Path)
		case Extra:
			extraPaths = append(extraPaths, l.Path)
		}
	}
	if len(missingPaths) != 2 || len(extraPaths) != 2 {
		t.Fatalf("missing=%v extra=%v", missingPaths, extraPaths)
	}
}

func TestRunPrintMatches(t *testing.T) {
	a := []*entry.Entry{e("a.txt", "sha256:111", entry.Regular)}
	b := []*entry.Entry{e("a.txt", "sha256:111", entry.Regular)}

	lines, sum := Run(a, b, Options{PrintMatches: true})
	if sum.Match != 1 {
		t.Fatalf("sum.Match = %d, want 1", sum.Match)
	}
	if len(lines) != 1 || lines[0].Kind != Match {
		t.Fatalf("expected one Match line, got %v", lines)
	}

	lines2, _ := Run(a, b, Options{})
	if len(lines2) != 0 {
		t.Fatalf("without PrintMatches, matches should not be emitted, got %v", lines2)
	}
}

func TestIgnoreLinks(t *testing.T) {
	// A still has the concrete subtree; B replaced it with a symlink,
	// so B has no entry at all under that prefix.
	a := []*entry.Entry{
		e("dir/real/file.txt", "sha256:aaa", entry.Regular),
	}
	b := []*entry.Entry{
		e("dir/real", "sha256:bbb", entry.Symlink),
	}

	// Without --ignore-links, A's concrete subtree looks "missing"
	// entirely since B replaced it with a symlink.
	_, sum := Run(a, b, Options{})
	if sum.Missing == 0 {
		t.Fatalf("expected at least one missing entry without --ignore-links, got %+v", sum)
	}

	// With --ignore-links, files under the symlinked prefix should be
	// reclassified as matches instead of missing.
	lines, sum2 := Run(a, b, Options{IgnoreLinks: 2})
	if sum2.Missing != 0 {
		t.Fatalf("expected --ignore-links to suppress missing entries under the prefix, got %+v", sum2)
	}
	var sawAnnotated bool
	for _, l := range lines {
		if l.Annotated {
			sawAnnotated = true
		}
	}
	if !sawAnnotated {
		t.Fatalf("expected an annotated '@' line at --ignore-links level 2")
	}
}

func TestSkipDupPaths(t *testing.T) {
	a := []*entry.Entry{
		e("x.txt", "sha256:111", entry.Regular),
		e("x.txt", "sha256:111", entry.Regular), // duplicate path, collapses
	}
	b := []*entry.Entry{
		e("x.txt", "sha256:111", entry.Regular),
	}
	_, sum := Run(a, b, Options{})
	if sum.Match != 1 || sum.Missing != 0 || sum.Extra != 0 {
		t.Fatalf("duplicate path should collapse to a single comparison, got %+v", sum)
	}
}

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSummary(&buf, Summary{Match: 3, Missing: 1, Extra: 2}); err != nil {
		t.Fatalf("WriteSummary: %s", err)
	}
	want := "3 match, 1 missing, 2 extra.\n"
	if buf.String() != want {
		t.Errorf("WriteSummary() = %q, want %q", buf.String(), want)
	}
}

func TestSortOrdersByPath(t *testing.T) {
	entries := []*entry.Entry{
		e("c.txt", "sha256:3", entry.Regular),
		e("a.txt", "sha256:1", entry.Regular),
		e("b.txt", "sha256:2", entry.Regular),
	}
	Sort(entries)
	if entries[0].Path != "a.txt" || entries[1].Path != "b.txt" || entries[2].Path != "c.txt" {
		t.Fatalf("Sort did not order by path: %v", entries)
	}
}
