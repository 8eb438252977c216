// reader.go - streaming index file reader
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

package index

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/vfxetc/uindex/entry"
)

// legacyColumns is the 7-column layout assumed when no #scan-start
// header has been seen yet: checksum, perms, size, uid, gid, mtime, path.
var legacyColumns = []string{"checksum", "perms", "size", "uid", "gid", "mtime", "path"}

// Transform is a post-processing step applied, in order, to every
// Entry a Reader yields.
type Transform func(e *entry.Entry) (keep bool)

// PopPath drops the first n leading "/"-delimited path segments.
func PopPath(n int) Transform {
	return func(e *entry.Entry) bool {
		e.PopPath(n)
		return true
	}
}

// PrependPath glues prefix in front of every entry's path.
func PrependPath(prefix string) Transform {
	return func(e *entry.Entry) bool {
		e.PrependPath(prefix)
		return true
	}
}

// ReplacePath applies a regex substitution to every entry's path.
func ReplacePath(pattern *regexp.Regexp, replace string) Transform {
	return func(e *entry.Entry) bool {
		e.ReplacePath(pattern, replace)
		return true
	}
}

// SearchPath keeps (or, if invert, drops) entries whose path matches
// pattern.
func SearchPath(pattern *regexp.Regexp, invert bool) Transform {
	return func(e *entry.Entry) bool {
		return e.SearchPath(pattern) != invert
	}
}

// Reader streams Entry records out of an index file, tolerating
// appended runs and schema drift.
type Reader struct {
	sc     *bufio.Scanner
	header *entry.Header
	warn   func(msg string)

	transforms []Transform
}

// NewReader wraps r. warn, if non-nil, receives one message per
// malformed row encountered (the row is otherwise skipped); a nil
// warn discards these.
func NewReader(r io.Reader, warn func(msg string)) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	if warn == nil {
		warn = func(string) {}
	}
	return &Reader{sc: sc, warn: warn}
}

// WithTransforms attaches post-processing transforms, applied in
// order to every yielded entry; a transform returning false drops
// the entry.
func (r *Reader) WithTransforms(t ...Transform) *Reader {
	r.transforms = append(r.transforms, t...)
	return r
}

// Header returns the most recently parsed #scan-start record, or nil
// if none has been seen yet.
func (r *Reader) Header() *entry.Header {
	return r.header
}

// Next reads and returns the next data-row Entry, applying any
// attached transforms and skipping dropped/malformed rows and
// directive lines along the way. It returns io.EOF when the
// underlying stream is exhausted.
func (r *Reader) Next() (*entry.Entry, error) {
	for r.sc.Scan() {
		line := strings.TrimSpace(r.sc.Text())
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "#scan-start"):
			h, err := parseHeader(line)
			if err != nil {
				r.warn(fmt.Sprintf("malformed #scan-start: %s", err))
				continue
			}
			r.header = h
			continue

		case strings.HasPrefix(line, "#scan-error"), strings.HasPrefix(line, "#scan-end"):
			continue

		case strings.HasPrefix(line, "#"):
			continue
		}

		e, err := r.parseRow(line)
		if err != nil {
			r.warn(err.Error())
			continue
		}

		keep := true
		for _, t := range r.transforms {
			if !t(e) {
				keep = false
				break
			}
		}
		if !keep {
			continue
		}
		return e, nil
	}
	if err := r.sc.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

// ReadAll drains the reader and returns every surviving entry.
func (r *Reader) ReadAll() ([]*entry.Entry, error) {
	var out []*entry.Entry
	for {
		e, err := r.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, e)
	}
}

func parseHeader(line string) (*entry.Header, error) {
	rest := strings.TrimSpace(strings.TrimPrefix(line, "#scan-start"))
	var h entry.Header
	if err := json.Unmarshal([]byte(rest), &h); err != nil {
		return nil, err
	}
	if len(h.Columns) == 0 {
		h.Columns = entry.DefaultColumns
	}
	return &h, nil
}

func (r *Reader) parseRow(line string) (*entry.Entry, error) {
	fields := strings.Split(line, "\t")

	columns := legacyColumns
	if r.header != nil && len(r.header.Columns) > 0 {
		columns = r.header.Columns
	}

	if len(fields) != len(columns) {
		return nil, fmt.Errorf("index: row has %d columns, expected %d: %q", len(fields), len(columns), line)
	}

	e := &entry.Entry{Meta: r.header, TypeCode: entry.Regular}
	for i, col := range columns {
		v := fields[i]
		var err error
		switch col {
		case "checksum":
			e.RawChecksum = v
		case "inode":
			e.Inode, err = strconv.ParseUint(v, 10, 64)
		case "type":
			if len(v) == 1 {
				e.TypeCode = entry.Type(v[0])
			} else {
				e.TypeCode = entry.Regular
			}
		case "perms":
			var p uint64
			p, err = strconv.ParseUint(v, 8, 32)
			e.Perms = uint32(p)
		case "size":
			e.Size, err = strconv.ParseInt(v, 10, 64)
		case "uid":
			var u uint64
			u, err = strconv.ParseUint(v, 10, 32)
			e.Uid = uint32(u)
		case "gid":
			var g uint64
			g, err = strconv.ParseUint(v, 10, 32)
			e.Gid = uint32(g)
		case "mtime":
			e.Mtime, err = strconv.ParseFloat(v, 64)
			e.RawTime = v
		case "ctime":
			e.Ctime, err = strconv.ParseFloat(v, 64)
			if e.RawTime == "" {
				e.RawTime = v
			}
		case "path":
			e.Path = v
		}
		if err != nil {
			return nil, fmt.Errorf("index: column %q value %q: %w", col, v, err)
		}
	}

	if columns[len(columns)-1] != "path" {
		// legacy layout and any future layout both end in path;
		// guard against a malformed header claiming otherwise
		return nil, fmt.Errorf("index: columns %v do not end in path", columns)
	}

	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// TailResumePath implements the auto-start heuristic of §4.H: read
// the final <=1000 bytes of path, split on newlines, take the last
// non-empty line, split on TAB, and return its last field (the path
// column). Requires the index to have been written in sorted mode.
func TailResumePath(path string) (string, error) {
	fd, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer fd.Close()

	info, err := fd.Stat()
	if err != nil {
		return "", err
	}

	const window = 1000
	size := info.Size()
	start := int64(0)
	if size > window {
		start = size - window
	}
	if _, err := fd.Seek(start, io.SeekStart); err != nil {
		return "", err
	}

	buf, err := io.ReadAll(fd)
	if err != nil {
		return "", err
	}

	lines := strings.Split(string(buf), "\n")
	var last string
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.TrimSpace(lines[i]) != "" {
			last = lines[i]
			break
		}
	}
	if last == "" {
		return "", fmt.Errorf("index: %s: no non-empty tail line found", path)
	}

	fields := strings.Split(last, "\t")
	return fields[len(fields)-1], nil
}
