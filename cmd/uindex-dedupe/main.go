// main.go - dedupe: delete files already present in a reference index
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

package main

import (
	"fmt"
	"os"
	"path"
	"strings"

	flag "github.com/opencoff/pflag"

	"github.com/vfxetc/uindex/bytesize"
	"github.com/vfxetc/uindex/dedupe"
	"github.com/vfxetc/uindex/entry"
	"github.com/vfxetc/uindex/index"
)

var z = path.Base(os.Args[0])

func main() {
	var deleteMatching, root, minsizeStr, matchXattr string
	var matchName, matchUniqueRelpath, matchChecksum bool
	var minsize int64
	var yes, dryRun, verbose, verify bool
	var threads int

	fs := flag.NewFlagSet(z, flag.ExitOnError)
	fs.StringVar(&deleteMatching, "delete-matching", "", "Index `FILE` whose entries are candidates for deletion")
	fs.BoolVar(&matchName, "match-name", false, "Match by basename instead of exact path")
	fs.BoolVar(&matchUniqueRelpath, "match-unique-relpath", false, "Match if any path suffix is unique in the reference")
	fs.BoolVar(&matchChecksum, "match-checksum", false, "Match on checksum+size alone")
	fs.StringVar(&minsizeStr, "minsize", "", "Only consider candidates at least `N` bytes")
	fs.StringVar(&matchXattr, "match-xattr", "", "Additionally require xattr `NAME=VALUE` on the candidate")
	fs.StringVar(&root, "root", "", "Resolve candidate relative paths under `DIR`")
	fs.BoolVar(&yes, "yes", false, "Delete without prompting")
	fs.BoolVar(&dryRun, "dry-run", false, "Report matches without deleting")
	fs.BoolVar(&verify, "verify", false, "mmap-compare bytes against the reference before deleting")
	fs.BoolVarP(&verbose, "verbose", "v", false, "Print one line per decision")
	fs.IntVarP(&threads, "threads", "t", 1, "Use `N` worker threads for matching/verification (1 or less: one per CPU)")
	fs.SetOutput(os.Stderr)

	if err := fs.Parse(os.Args[1:]); err != nil {
		die("%s", err)
	}

	args := fs.Args()
	if len(args) != 1 {
		fs.Usage()
		die("expecting exactly one reference index path")
	}
	if deleteMatching == "" {
		die("--delete-matching is required")
	}
	if yes && dryRun {
		die("--yes and --dry-run are mutually exclusive")
	}

	if minsizeStr != "" {
		sz, err := parseSize(minsizeStr)
		if err != nil {
			die("--minsize: %s", err)
		}
		minsize = sz
	}

	refEntries, err := readAll(args[0])
	if err != nil {
		die("%s: %s", args[0], err)
	}
	candEntries, err := readAll(deleteMatching)
	if err != nil {
		die("%s: %s", deleteMatching, err)
	}

	mode := dedupe.MatchExactPath
	switch {
	case matchChecksum:
		mode = dedupe.MatchChecksum
	case matchUniqueRelpath:
		mode = dedupe.MatchUniqueRelpath
	case matchName:
		mode = dedupe.MatchName
	}

	opt := dedupe.Options{
		Mode:    mode,
		MinSize: minsize,
		Root:    root,
		Yes:     yes,
		DryRun:  dryRun,
		Verbose: verbose,
		Verify:  verify,
		Threads: threads,
	}
	if matchXattr != "" {
		name, value, ok := strings.Cut(matchXattr, "=")
		if !ok {
			die("--match-xattr expects NAME=VALUE")
		}
		opt.MatchXattrName = name
		opt.MatchXattrValue = value
	}

	ref := dedupe.NewReference(refEntries)
	res, err := dedupe.Run(ref, candEntries, opt, os.Stderr)
	if err != nil {
		die("%s", err)
	}

	fmt.Printf("%d matched, %d deleted, %d skipped, %d failed.\n", res.Matched, res.Deleted, res.Skipped, res.Failed)
	if res.Failed > 0 {
		os.Exit(1)
	}
}

func readAll(path string) ([]*entry.Entry, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fd.Close()
	r := index.NewReader(fd, func(msg string) { fmt.Fprintln(os.Stderr, msg) })
	return r.ReadAll()
}

// parseSize accepts the same suffixes as --head/--tail.
func parseSize(s string) (int64, error) {
	sz, err := bytesize.Parse(s)
	if err != nil {
		return 0, err
	}
	return int64(sz.Bytes()), nil
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s: %s\n", z, fmt.Sprintf(format, args...))
	os.Exit(1)
}
