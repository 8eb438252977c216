package index

import (
	"bytes"
	"io"
	"os"
	"path"
	"testing"

	"github.com/vfxetc/uindex/entry"
)

func TestWriteReadRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	h := &entry.Header{
		PathToIndex:  "/data",
		Root:         "/data",
		StartedAt:    "2026-01-01T00:00:00Z",
		UUID:         "abc-123",
		ChecksumAlgo: "sha256",
		Columns:      entry.DefaultColumns,
	}
	if err := w.WriteHeader(h); err != nil {
		t.Fatalf("WriteHeader: %s", err)
	}

	rows := []*entry.Entry{
		{Path: "a/b", RawChecksum: "sha256:deadbeef", Perms: 0644, TypeCode: entry.Regular, Size: 10, Uid: 1, Gid: 1, Mtime: 1700000000.12, Ctime: 1700000000.12, Inode: 42},
		{Path: "a/c", RawChecksum: "sha256:cafef00d", Perms: 0755, TypeCode: entry.Symlink, Size: 3, Uid: 1, Gid: 1, Mtime: 1700000001.12, Ctime: 1700000001.12, Inode: 43},
	}
	for _, e := range rows {
		if err := w.WriteRow(e, 2); err != nil {
			t.Fatalf("WriteRow: %s", err)
		}
	}

	if err := w.WriteScanError(&ScanError{Path: "bad/file", Error: "permission denied"}); err != nil {
		t.Fatalf("WriteScanError: %s", err)
	}

	footer := &ScanEnd{AddedCount: 2, AddedBytes: 13, TotalCount: 2, TotalBytes: 13, EndedAt: "2026-01-01T00:01:00Z", UUID: "abc-123"}
	if err := w.WriteFooter(footer); err != nil {
		t.Fatalf("WriteFooter: %s", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %s", err)
	}

	r := NewReader(&buf, nil)
	got, err := r.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %s", err)
	}
	if len(got) != 2 {
		t.Fatalf("ReadAll returned %d entries, want 2", len(got))
	}
	if got[0].Path != "a/b" || got[0].Checksum() != "deadbeef" {
		t.Errorf("row 0 mismatch: %+v", got[0])
	}
	if got[1].TypeCode != entry.Symlink {
		t.Errorf("row 1 TypeCode = %v, want Symlink", got[1].TypeCode)
	}
	if r.Header() == nil || r.Header().UUID != "abc-123" {
		t.Errorf("Header() did not survive round trip")
	}
}

func TestReaderLegacyColumns(t *testing.T) {
	// 7-column legacy layout, no preceding #scan-start.
	data := "deadbeef\t644\t10\t1\t1\t1700000000.0\ta/b\n"
	r := NewReader(bytes.NewBufferString(data), nil)
	e, err := r.Next()
	if err != nil {
		t.Fatalf("Next: %s", err)
	}
	if e.Path != "a/b" || e.PermString() != "644" {
		t.Errorf("legacy row parsed wrong: %+v", e)
	}
	if e.TypeCode != entry.Regular {
		t.Errorf("legacy row should default TypeCode to Regular, got %v", e.TypeCode)
	}

	if _, err := r.Next(); err != io.EOF {
		t.Fatalf("expected io.EOF at end, got %v", err)
	}
}

func TestReaderSkipsMalformedRows(t *testing.T) {
	var warned []string
	data := "not\tenough\tcolumns\nsha256:deadbeef\t644\t10\t1\t1\t1700000000.0\tgood/path\n"
	r := NewReader(bytes.NewBufferString(data), func(msg string) { warned = append(warned, msg) })

	e, err := r.Next()
	if err != nil {
		t.Fatalf("Next: %s", err)
	}
	if e.Path != "good/path" {
		t.Errorf("expected to skip malformed row and return good one, got %+v", e)
	}
	if len(warned) == 0 {
		t.Errorf("expected a warning for the malformed row")
	}
}

func TestTailResumePath(t *testing.T) {
	tmp := t.TempDir()
	nm := path.Join(tmp, "idx")

	content := "sha256:aaa\t1\tF\t644\t1\t1\t1\t1.0\t1.0\tfirst/path\n" +
		"sha256:bbb\t2\tF\t644\t1\t1\t1\t1.0\t1.0\tsecond/path\n"
	if err := os.WriteFile(nm, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := TailResumePath(nm)
	if err != nil {
		t.Fatalf("TailResumePath: %s", err)
	}
	if got != "second/path" {
		t.Errorf("TailResumePath() = %q, want %q", got, "second/path")
	}
}
