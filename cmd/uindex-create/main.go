// main.go - create: scan a tree and emit a micro file index
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

	flag "github.com/opencoff/pflag"

	"github.com/vfxetc/uindex/bytesize"
	"github.com/vfxetc/uindex/entry"
	"github.com/vfxetc/uindex/index"
	"github.com/vfxetc/uindex/indexer"
	"github.com/vfxetc/uindex/internal/progress"
	"github.com/vfxetc/uindex/internal/ulog"
)

var z = path.Base(os.Args[0])

const (
	exitOK = iota
	exitIncompatibleFlags
	exitMissingOut
	exitMissingOutFile
)

func main() {
	var includeDotfiles, autoStart, update, unsorted bool
	var out, start, algo, root string
	var excludes []string
	var head, tail bytesize.Size
	var threads int
	var verbose int

	fs := flag.NewFlagSet(z, flag.ExitOnError)
	fs.BoolVarP(&includeDotfiles, "include-dotfiles", "D", false, "Do not exclude dotfiles by default")
	fs.StringArrayVarP(&excludes, "exclude", "e", nil, "Exclude `PATTERN` (repeatable); leading '/' matches path, else basename")
	fs.StringVarP(&out, "out", "o", "", "Write index to `FILE` instead of stdout")
	fs.StringVarP(&start, "start", "s", "", "Resume scan at `PATH`")
	fs.BoolVarP(&autoStart, "auto-start", "S", false, "Derive resume path from the tail of --out")
	fs.BoolVarP(&update, "update", "u", false, "Load --out and skip unchanged entries")
	fs.BoolVar(&unsorted, "unsorted", false, "Disable output ordering")
	fs.VarP(bytesize.NewValue(&head), "head", "", "Hash only the first `N` bytes of each file")
	fs.VarP(bytesize.NewValue(&tail), "tail", "", "Hash only the last `N` bytes of each file")
	fs.IntVarP(&threads, "threads", "t", 1, "Use `N` hashing worker threads")
	fs.StringVarP(&algo, "checksum-algo", "H", "sha256", "Digest family `NAME`")
	fs.StringVarP(&root, "root", "C", "", "Root `DIR` for relative paths [scan path]")
	fs.CountVarP(&verbose, "verbose", "v", "Increase verbosity (repeatable)")
	fs.SetOutput(os.Stderr)

	if err := fs.Parse(os.Args[1:]); err != nil {
		die(exitIncompatibleFlags, "%s", err)
	}

	args := fs.Args()
	if len(args) != 1 {
		fs.Usage()
		die(exitIncompatibleFlags, "expecting exactly one scan path")
	}
	scanPath := args[0]

	exclusive := 0
	for _, b := range []bool{start != "", autoStart, update} {
		if b {
			exclusive++
		}
	}
	if exclusive > 1 {
		die(exitIncompatibleFlags, "at most one of --start, --auto-start, --update may be given")
	}

	if (autoStart || update) && out == "" {
		die(exitMissingOut, "--auto-start/--update require --out")
	}

	log := ulog.New(verbose)
	defer log.Close()

	opt := indexer.DefaultOptions()
	opt.Root = scanPath
	opt.IndexRoot = root
	if opt.IndexRoot == "" {
		opt.IndexRoot = scanPath
	}
	opt.Start = start
	opt.Excludes = excludes
	opt.IncludeDotfiles = includeDotfiles
	opt.Head = head
	opt.Tail = tail
	opt.ChecksumAlgo = algo
	opt.Threads = threads
	opt.Sorted = !unsorted
	opt.Log = log

	var outFd *os.File
	if out != "" {
		if autoStart || update {
			if _, err := os.Stat(out); err != nil {
				die(exitMissingOutFile, "%s: %s", out, err)
			}
		}
		if autoStart {
			resume, err := index.TailResumePath(out)
			if err != nil {
				die(exitMissingOutFile, "auto-start: %s", err)
			}
			opt.Start = resume
		}
		if update {
			existing, err := loadExisting(out)
			if err != nil {
				die(exitMissingOutFile, "update: %s", err)
			}
			opt.Existing = existing
		}

		fd, err := os.OpenFile(out, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			die(exitMissingOutFile, "%s: %s", out, err)
		}
		outFd = fd
		defer outFd.Close()
	}

	ix, err := indexer.New(opt)
	if err != nil {
		die(exitIncompatibleFlags, "%s", err)
	}

	bar := progress.New(verbose > 0 && out != "", -1)

	dst := os.Stdout
	if outFd != nil {
		dst = outFd
	}

	stats, runErr := ix.Run(dst)
	bar.Finish(stats)

	if runErr != nil {
		die(exitIncompatibleFlags, "%s", runErr)
	}
	log.Info("%s", stats.String())
}

func loadExisting(out string) (*entry.Map, error) {
	fd, err := os.Open(out)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	r := index.NewReader(fd, func(msg string) { fmt.Fprintln(os.Stderr, msg) })
	entries, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	m := entry.NewMap()
	for _, e := range entries {
		m.Store(e.Path, e)
	}
	return m, nil
}

func die(code int, format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s: %s\n", z, fmt.Sprintf(format, args...))
	os.Exit(code)
}
