package entry

import "testing"

func TestChecksum(t *testing.T) {
	e := &Entry{RawChecksum: "sha256,h=4k:deadbeef"}
	if got := e.Checksum(); got != "deadbeef" {
		t.Errorf("Checksum() = %q, want %q", got, "deadbeef")
	}

	legacy := &Entry{RawChecksum: "deadbeef"}
	if got := legacy.Checksum(); got != "deadbeef" {
		t.Errorf("Checksum() on bare hex = %q, want %q", got, "deadbeef")
	}
}

func TestEpsilon(t *testing.T) {
	e := &Entry{RawTime: "1700000000.123"}
	want := 2e-3
	if got := e.Epsilon(); got < want*0.99 || got > want*1.01 {
		t.Errorf("Epsilon() = %v, want ~%v", got, want)
	}

	none := &Entry{RawTime: "1700000000"}
	if got := none.Epsilon(); got != 0 {
		t.Errorf("Epsilon() with no fraction = %v, want 0", got)
	}
}

func TestPrependAndPopPath(t *testing.T) {
	e := &Entry{Path: "a/b/c"}
	e.PrependPath("/root/")
	if e.Path != "root/a/b/c" {
		t.Fatalf("PrependPath: got %q", e.Path)
	}
	e.PopPath(2)
	if e.Path != "b/c" {
		t.Fatalf("PopPath(2): got %q", e.Path)
	}
}

func TestValidate(t *testing.T) {
	ok := &Entry{Path: "a/b", RawChecksum: "sha256:deadbeef", Perms: 0644}
	if err := ok.Validate(); err != nil {
		t.Fatalf("Validate() on well-formed entry: %s", err)
	}

	bad := &Entry{Path: "", RawChecksum: "sha256:deadbeef"}
	if err := bad.Validate(); err == nil {
		t.Fatalf("Validate() should reject empty path")
	}

	badPerm := &Entry{Path: "a", RawChecksum: "sha256:deadbeef", Perms: 010000}
	if err := badPerm.Validate(); err == nil {
		t.Fatalf("Validate() should reject out-of-range perms")
	}

	badSum := &Entry{Path: "a", RawChecksum: "not hex!!"}
	if err := badSum.Validate(); err == nil {
		t.Fatalf("Validate() should reject malformed checksum")
	}
}

func TestPermString(t *testing.T) {
	e := &Entry{Perms: 0755}
	if got := e.PermString(); got != "755" {
		t.Errorf("PermString() = %q, want %q", got, "755")
	}
}
