// run.go - drive one dedupe pass over a candidate index
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

package dedupe

import (
	"fmt"
	"io"
	"os"

	"github.com/vfxetc/uindex/entry"
)

// Result tallies one dedupe run's outcome.
type Result struct {
	Matched int
	Deleted int
	Skipped int
	Failed  int
}

// probe is one candidate's outcome from the concurrent match/verify
// phase, ready for the serial delete/prompt phase to act on.
type probe struct {
	cand    *entry.Entry
	match   Match
	matched bool
	absPath string
	usable  bool // xattr + verify (when requested) both passed
	err     error
}

// Run walks candidates, matching each against ref per opt, and
// deletes the ones that are confirmed duplicates. Matching,
// path-resolution, xattr, and --verify checks run concurrently across
// opt.Threads workers; actual deletion (and any interactive prompt)
// happens afterward, serially, so prompts never interleave. log
// receives one line per decision when opt.Verbose is set.
func Run(ref *Reference, candidates []*entry.Entry, opt Options, log io.Writer) (Result, error) {
	probes := make([]probe, len(candidates))

	wp := newWorkPool(opt.Threads, func(_ int, i int) error {
		probes[i] = probeCandidate(ref, candidates[i], opt)
		return nil
	})
	for i := range candidates {
		wp.submit(i)
	}
	if err := wp.wait(); err != nil {
		return Result{}, err
	}

	var res Result
	var prompter *Prompter
	if !opt.Yes && !opt.DryRun {
		prompter = NewPrompter()
	}

	for _, p := range probes {
		if !p.matched {
			continue
		}
		res.Matched++

		if p.err != nil || !p.usable {
			res.Skipped++
			if p.err != nil && log != nil && opt.Verbose {
				fmt.Fprintf(log, "skip %s: %s\n", p.absPath, p.err)
			}
			continue
		}

		if opt.DryRun {
			if log != nil {
				fmt.Fprintf(log, "would delete %s (dup of %s)\n", p.absPath, p.match.Refs[0].Path)
			}
			continue
		}

		if !ShouldDelete(p.absPath, opt, prompter) {
			res.Skipped++
			continue
		}

		if err := os.Remove(p.absPath); err != nil {
			res.Failed++
			if log != nil {
				fmt.Fprintf(log, "delete %s: %s\n", p.absPath, err)
			}
			continue
		}
		res.Deleted++
		if log != nil && opt.Verbose {
			fmt.Fprintf(log, "deleted %s (dup of %s)\n", p.absPath, p.match.Refs[0].Path)
		}
	}

	return res, nil
}

// probeCandidate does the side-effect-free (besides stat/xattr/mmap
// reads) part of matching one candidate: lookup, path resolution,
// xattr gating, and optional byte verification.
func probeCandidate(ref *Reference, cand *entry.Entry, opt Options) probe {
	m, ok := ref.Find(cand, opt)
	if !ok {
		return probe{cand: cand}
	}
	p := probe{cand: cand, match: m, matched: true}

	absPath, err := ResolvePath(cand, opt)
	if err != nil {
		p.err = err
		return p
	}
	p.absPath = absPath
	p.match.AbsPath = absPath

	if ok, err := XattrOK(absPath, opt); err != nil {
		p.err = err
		return p
	} else if !ok {
		return p
	}

	if opt.Verify {
		refPath := m.Refs[0].Path
		if opt.Root != "" {
			refPath = joinRoot(opt.Root, refPath)
		}
		same, err := SameBytes(absPath, refPath)
		if err != nil {
			p.err = err
			return p
		}
		if !same {
			return p
		}
	}

	p.usable = true
	return p
}

func joinRoot(root, rel string) string {
	if len(rel) > 0 && rel[0] == '/' {
		return rel
	}
	return root + "/" + rel
}
