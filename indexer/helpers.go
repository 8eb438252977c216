// helpers.go - small conversions shared by the orchestrator
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

package indexer

import (
	"errors"
	"os"
	"syscall"
	"time"

	"github.com/vfxetc/uindex/chash"
)

// toFloat renders a time.Time as seconds-since-epoch with
// nanosecond-derived fractional precision, matching the Python
// source's st_mtime/st_ctime float representation.
func toFloat(t time.Time) float64 {
	return float64(t.Unix()) + float64(t.Nanosecond())/1e9
}

// readlink returns a symlink's target path.
func readlink(path string) (string, error) {
	return os.Readlink(path)
}

// isUnreadable reports whether err is chash's EPERM sentinel.
func isUnreadable(err error) bool {
	return errors.Is(err, chash.ErrUnreadable) || errors.Is(err, syscall.EPERM)
}
