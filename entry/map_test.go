package entry

import "testing"

func TestUnchanged(t *testing.T) {
	e := &Entry{Size: 100, Mtime: 1700000000.123, RawTime: "1700000000.123"}

	if !Unchanged(e, 100, 1700000000.123) {
		t.Fatalf("identical size/mtime should be Unchanged")
	}
	if Unchanged(e, 101, 1700000000.123) {
		t.Fatalf("different size should not be Unchanged")
	}
	if Unchanged(e, 100, 1700000100.0) {
		t.Fatalf("mtime far outside epsilon should not be Unchanged")
	}
	if Unchanged(nil, 100, 0) {
		t.Fatalf("nil entry should not be Unchanged")
	}
}

func TestMapRoundTrip(t *testing.T) {
	m := NewMap()
	e := &Entry{Path: "a/b"}
	m.Store(e.Path, e)

	got, ok := m.Load("a/b")
	if !ok || got != e {
		t.Fatalf("Load after Store: ok=%v got=%v", ok, got)
	}

	if _, ok := m.Load("missing"); ok {
		t.Fatalf("Load of missing key should fail")
	}
}
