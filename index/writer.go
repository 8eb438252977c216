// writer.go - append-only index file writer
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

// Package index reads and writes the micro file index record
// taxonomy: a #scan-start header, tab-separated data rows,
// #scan-error records, and a #scan-end footer, any number of which
// may be appended to the same file across multiple runs.
package index

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/vfxetc/uindex/entry"
)

// ScanError is one #scan-error record: a path that could not be
// hashed during a run.
type ScanError struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// ScanEnd is the #scan-end footer record closing a run.
type ScanEnd struct {
	AddedCount int64  `json:"added_count"`
	AddedBytes int64  `json:"added_bytes"`
	TotalCount int64  `json:"total_count"`
	TotalBytes int64  `json:"total_bytes"`
	ErrorCount int64  `json:"error_count"`
	EndedAt    string `json:"ended_at"`
	UUID       string `json:"uuid"`
}

// Writer appends scan runs to an underlying io.Writer. The output
// stream is flushed at least once per second so a kill can only lose
// at most one second of work; callers must call Close when done.
type Writer struct {
	w  *bufio.Writer
	bf bufferFlusher

	mu        sync.Mutex
	stopFlush chan struct{}
	wg        sync.WaitGroup
}

// bufferFlusher is satisfied by anything that can be periodically
// fsync'd in addition to being flushed out of the bufio buffer; an
// *os.File qualifies. When the underlying writer does not, flushing
// the bufio.Writer alone is sufficient for "recoverable on kill".
type bufferFlusher interface {
	Sync() error
}

// NewWriter wraps w and starts the periodic flush goroutine.
func NewWriter(w io.Writer) *Writer {
	iw := &Writer{
		w:         bufio.NewWriterSize(w, 64*1024),
		stopFlush: make(chan struct{}),
	}
	if bf, ok := w.(bufferFlusher); ok {
		iw.bf = bf
	}

	iw.wg.Add(1)
	go iw.flushLoop()
	return iw
}

func (iw *Writer) flushLoop() {
	defer iw.wg.Done()
	t := time.NewTicker(time.Second)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			iw.mu.Lock()
			iw.w.Flush()
			if iw.bf != nil {
				iw.bf.Sync()
			}
			iw.mu.Unlock()
		case <-iw.stopFlush:
			return
		}
	}
}

// Close stops the periodic flusher and flushes any remaining output.
func (iw *Writer) Close() error {
	close(iw.stopFlush)
	iw.wg.Wait()
	iw.mu.Lock()
	defer iw.mu.Unlock()
	return iw.w.Flush()
}

// WriteHeader emits a "#scan-start <json>" record opening a new run.
func (iw *Writer) WriteHeader(h *entry.Header) error {
	return iw.writeDirective("#scan-start", h)
}

// WriteRow emits one tab-separated data row in the column order
// entry.DefaultColumns: checksum, inode, type, perms, size, uid,
// gid, mtime, ctime, path. precision is the number of subsecond
// decimal digits to render mtime/ctime with (see §4.H's time
// precision formula, computed by the indexer per run).
func (iw *Writer) WriteRow(e *entry.Entry, precision int) error {
	fields := []string{
		e.RawChecksum,
		strconv.FormatUint(e.Inode, 10),
		e.TypeCode.String(),
		e.PermString(),
		strconv.FormatInt(e.Size, 10),
		strconv.FormatUint(uint64(e.Uid), 10),
		strconv.FormatUint(uint64(e.Gid), 10),
		formatTime(e.Mtime, precision),
		formatTime(e.Ctime, precision),
		e.Path,
	}

	iw.mu.Lock()
	defer iw.mu.Unlock()
	_, err := iw.w.WriteString(strings.Join(fields, "\t") + "\n")
	return err
}

// WriteScanError emits a "#scan-error <json>" record for a file that
// could not be hashed.
func (iw *Writer) WriteScanError(se *ScanError) error {
	return iw.writeDirective("#scan-error", se)
}

// WriteFooter emits a "#scan-end <json>" record closing the run.
func (iw *Writer) WriteFooter(se *ScanEnd) error {
	return iw.writeDirective("#scan-end", se)
}

func (iw *Writer) writeDirective(word string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("index: marshal %s: %w", word, err)
	}

	iw.mu.Lock()
	defer iw.mu.Unlock()
	_, err = fmt.Fprintf(iw.w, "%s %s\n", word, b)
	return err
}

// formatTime renders a Unix timestamp with the given number of
// subsecond decimal digits.
func formatTime(t float64, precision int) string {
	return strconv.FormatFloat(t, 'f', precision, 64)
}
