// progress.go - optional spinner/bar wrapper for the uindex CLIs
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

// Package progress wraps schollz/progressbar so the CLIs can share
// one enabled/disabled-aware progress indicator: all methods are
// no-ops when disabled.
package progress

import (
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
)

const updateInterval = 100 * time.Millisecond

// Bar wraps a progressbar.ProgressBar; the zero value (bar == nil) is
// the disabled no-op form returned by New(false, ...).
type Bar struct {
	bar *progressbar.ProgressBar
}

// New creates a progress indicator. total < 0 selects spinner mode
// (used when the total item count isn't known up front, as in
// create's streaming walk); total >= 0 selects a determinate bar.
func New(enabled bool, total int64) *Bar {
	if !enabled {
		return &Bar{}
	}

	opts := []progressbar.Option{
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionThrottle(updateInterval),
		progressbar.OptionClearOnFinish(),
	}

	if total < 0 {
		opts = append(opts,
			progressbar.OptionSpinnerType(14),
			progressbar.OptionSetElapsedTime(true),
		)
		return &Bar{bar: progressbar.NewOptions64(-1, opts...)}
	}

	opts = append(opts, progressbar.OptionSetWidth(40))
	return &Bar{bar: progressbar.NewOptions64(total, opts...)}
}

// Add advances the bar by n (a no-op when disabled).
func (b *Bar) Add(n int64) {
	if b.bar != nil {
		_ = b.bar.Add64(n)
	}
}

// Describe updates the bar's label.
func (b *Bar) Describe(s string) {
	if b.bar != nil {
		b.bar.Describe(s)
	}
}

// Finish completes the bar and prints s's final summary.
func (b *Bar) Finish(s fmt.Stringer) {
	if b.bar == nil {
		return
	}
	_ = b.bar.Finish()
	fmt.Fprintln(os.Stderr, s.String())
}
