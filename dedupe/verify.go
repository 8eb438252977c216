// verify.go - mmap-based byte comparison before unlinking a duplicate
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
	"bytes"
	"fmt"
	"os"

	"github.com/opencoff/go-mmap"
)

// SameBytes mmap-reads both files and compares their contents
// directly, as a final guard against a checksum collision or a stale
// index before unlinking candPath in favor of refPath.
func SameBytes(candPath, refPath string) (bool, error) {
	cfi, err := os.Stat(candPath)
	if err != nil {
		return false, err
	}
	rfi, err := os.Stat(refPath)
	if err != nil {
		return false, err
	}
	if cfi.Size() != rfi.Size() {
		return false, nil
	}
	if cfi.Size() == 0 {
		return true, nil
	}

	cf, err := os.Open(candPath)
	if err != nil {
		return false, err
	}
	defer cf.Close()

	rf, err := os.Open(refPath)
	if err != nil {
		return false, err
	}
	defer rf.Close()

	ref := make([]byte, 0, rfi.Size())
	if _, err := mmap.Reader(rf, func(b []byte) error {
		ref = append(ref, b...)
		return nil
	}); err != nil {
		return false, fmt.Errorf("mmap-read %s: %w", refPath, err)
	}

	var off int
	equal := true
	if _, err := mmap.Reader(cf, func(b []byte) error {
		if !equal {
			return nil
		}
		end := off + len(b)
		if end > len(ref) || !bytes.Equal(b, ref[off:end]) {
			equal = false
			return nil
		}
		off = end
		return nil
	}); err != nil {
		return false, fmt.Errorf("mmap-read %s: %w", candPath, err)
	}

	return equal && off == len(ref), nil
}
