// chash.go - partial-content hasher
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

// Package chash digests a file's head bytes, tail bytes, full
// content, or a symlink's target, behind one canonical algo-key
// label so digests made with different (algo, head, tail) budgets
// stay distinguishable across runs.
package chash

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/vfxetc/uindex/bytesize"
)

// chunkSize is the read-buffer size used while streaming file
// content into the hasher.
const chunkSize = 64 * 1024

// ErrUnreadable is the sentinel returned when an open or read fails
// with EPERM or any other error matching os.ErrPermission (such as
// EACCES), which create() treats as "unreadable" rather than fatal, to
// accommodate things like Windows System Volume Information.
var ErrUnreadable = errors.New("chash: file unreadable (permission denied)")

type newHashFunc func() hash.Hash

var algos = map[string]newHashFunc{
	"md5":       md5.New,
	"sha1":      sha1.New,
	"sha256":    sha256.New,
	"sha384":    sha512.New384,
	"sha512":    sha512.New,
	"sha512256": sha512.New512_256,
}

// Lookup returns the hash constructor for name, or an error if the
// name is not a supported digest family.
func Lookup(name string) (newHashFunc, error) {
	fn, ok := algos[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("chash: unsupported checksum algorithm %q", name)
	}
	return fn, nil
}

// Config describes one (algo, head, tail) hashing budget; it is
// immutable once built and shared by every worker in a run.
type Config struct {
	Algo string
	Head bytesize.Size
	Tail bytesize.Size

	newHash newHashFunc
}

// NewConfig validates algo and returns a ready-to-use Config.
func NewConfig(algo string, head, tail bytesize.Size) (*Config, error) {
	fn, err := Lookup(algo)
	if err != nil {
		return nil, err
	}
	return &Config{Algo: algo, Head: head, Tail: tail, newHash: fn}, nil
}

// AlgoKey is the canonical encoding of the hash parameters used both
// as the hashing cache key and as the prefix of the emitted
// raw_checksum. It preserves the user-supplied byte-size strings
// verbatim (not the parsed integer) so "--head 1024" and "--head 1k"
// remain distinguishable.
func (c *Config) AlgoKey() string {
	k := c.Algo
	if !c.Head.IsZero() {
		k += ",h=" + c.Head.Raw()
	}
	if !c.Tail.IsZero() {
		k += ",t=" + c.Tail.Raw()
	}
	return k
}

// HashFile digests a regular file according to c's (head, tail)
// budget and returns the hex digest. size is the file's stat size,
// used to compute the tail offset without a second stat call.
func (c *Config) HashFile(path string, size int64) (string, error) {
	fd, err := os.Open(path)
	if err != nil {
		if isEPERM(err) {
			return "", ErrUnreadable
		}
		return "", err
	}
	defer fd.Close()

	h := c.newHash()

	if c.Head.IsZero() && c.Tail.IsZero() {
		// neither budget set: stream the whole file
		buf := make([]byte, chunkSize)
		if _, err := io.CopyBuffer(h, fd, buf); err != nil {
			return "", wrapReadErr(err)
		}
		return hex.EncodeToString(h.Sum(nil)), nil
	}

	var headEnd int64
	if !c.Head.IsZero() {
		headEnd = min64(int64(c.Head.Bytes()), size)
		if err := copyN(h, fd, headEnd); err != nil {
			return "", wrapReadErr(err)
		}
	}

	if !c.Tail.IsZero() {
		tailStart := size - int64(c.Tail.Bytes())
		if tailStart < headEnd {
			// tail region already covered by head: skip, don't double-hash
			tailStart = size
		}
		if tailStart < size {
			if _, err := fd.Seek(tailStart, io.SeekStart); err != nil {
				return "", wrapReadErr(err)
			}
			if err := copyN(h, fd, size-tailStart); err != nil {
				return "", wrapReadErr(err)
			}
		}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashSymlink digests the byte content of a symlink's target path.
func (c *Config) HashSymlink(target string) string {
	h := c.newHash()
	io.WriteString(h, target)
	return hex.EncodeToString(h.Sum(nil))
}

// copyN streams exactly n bytes (or until EOF) from r into w using a
// 64KiB buffer.
func copyN(w io.Writer, r io.Reader, n int64) error {
	buf := make([]byte, chunkSize)
	_, err := io.CopyBuffer(w, io.LimitReader(r, n), buf)
	return err
}

func wrapReadErr(err error) error {
	if isEPERM(err) {
		return ErrUnreadable
	}
	return err
}

func isEPERM(err error) bool {
	return errors.Is(err, syscall.EPERM) || errors.Is(err, os.ErrPermission)
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
