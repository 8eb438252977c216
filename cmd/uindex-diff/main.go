// main.go - diff: compare two micro file indexes as sorted path streams
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
	"regexp"

	flag "github.com/opencoff/pflag"

	"github.com/vfxetc/uindex/diff"
	"github.com/vfxetc/uindex/entry"
	"github.com/vfxetc/uindex/index"
)

var z = path.Base(os.Args[0])

type sideFlags struct {
	prepend     string
	replaceFrom string
	replaceTo   string
	search      string
	invert      bool
	pop         int
}

func main() {
	var a, b sideFlags
	var printMatches bool
	var ignoreLinks int

	fs := flag.NewFlagSet(z, flag.ExitOnError)
	fs.StringVar(&a.prepend, "prepend-a", "", "Prepend `PREFIX` to every path in A")
	fs.StringVar(&b.prepend, "prepend-b", "", "Prepend `PREFIX` to every path in B")
	fs.StringVar(&a.search, "search-a", "", "Keep only A paths matching `REGEX`")
	fs.StringVar(&b.search, "search-b", "", "Keep only B paths matching `REGEX`")
	fs.BoolVar(&a.invert, "invert-search-a", false, "Invert --search-a")
	fs.BoolVar(&b.invert, "invert-search-b", false, "Invert --search-b")
	fs.IntVar(&a.pop, "pop-a", 0, "Drop `N` leading path segments from A")
	fs.IntVar(&b.pop, "pop-b", 0, "Drop `N` leading path segments from B")
	fs.StringVar(&a.replaceFrom, "replace-a-from", "", "Regex to match in A paths (paired with --replace-a-to)")
	fs.StringVar(&a.replaceTo, "replace-a-to", "", "Replacement text for --replace-a-from")
	fs.StringVar(&b.replaceFrom, "replace-b-from", "", "Regex to match in B paths (paired with --replace-b-to)")
	fs.StringVar(&b.replaceTo, "replace-b-to", "", "Replacement text for --replace-b-from")
	fs.BoolVar(&printMatches, "print-matches", false, "Also print ' ' match lines")
	fs.IntVar(&ignoreLinks, "ignore-links", 0, "Reclassify missing entries under a B symlink as matches (1), annotated (2)")
	fs.SetOutput(os.Stderr)

	if err := fs.Parse(os.Args[1:]); err != nil {
		die("%s", err)
	}

	args := fs.Args()
	if len(args) != 2 {
		fs.Usage()
		die("expecting exactly two index files: a b")
	}

	ea, err := readIndex(args[0], a)
	if err != nil {
		die("%s: %s", args[0], err)
	}
	eb, err := readIndex(args[1], b)
	if err != nil {
		die("%s: %s", args[1], err)
	}

	diff.Sort(ea)
	diff.Sort(eb)

	lines, sum := diff.Run(ea, eb, diff.Options{PrintMatches: printMatches, IgnoreLinks: ignoreLinks})
	for _, l := range lines {
		fmt.Printf("%s %s\t%s\n", l.Symbol(), l.Checksum, l.Path)
	}
	if err := diff.WriteSummary(os.Stdout, sum); err != nil {
		die("%s", err)
	}
}

func readIndex(path string, sf sideFlags) ([]*entry.Entry, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	r := index.NewReader(fd, func(msg string) { fmt.Fprintln(os.Stderr, msg) })

	if sf.pop > 0 {
		r.WithTransforms(index.PopPath(sf.pop))
	}
	if sf.prepend != "" {
		r.WithTransforms(index.PrependPath(sf.prepend))
	}
	if sf.search != "" {
		re, err := regexp.Compile(sf.search)
		if err != nil {
			return nil, err
		}
		r.WithTransforms(index.SearchPath(re, sf.invert))
	}
	if sf.replaceFrom != "" {
		re, err := regexp.Compile(sf.replaceFrom)
		if err != nil {
			return nil, err
		}
		r.WithTransforms(index.ReplacePath(re, sf.replaceTo))
	}

	return r.ReadAll()
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s: %s\n", z, fmt.Sprintf(format, args...))
	os.Exit(1)
}
