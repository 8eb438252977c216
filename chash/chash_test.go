package chash

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path"
	"testing"

	"github.com/vfxetc/uindex/bytesize"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	tmp := t.TempDir()
	nm := path.Join(tmp, "f")
	if err := os.WriteFile(nm, []byte(content), 0644); err != nil {
		t.Fatalf("write temp: %s", err)
	}
	return nm
}

func sha256hex(b []byte) string {
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}

func TestHashFileWhole(t *testing.T) {
	content := "hello world\n"
	nm := writeTemp(t, content)

	cfg, err := NewConfig("sha256", bytesize.Size{}, bytesize.Size{})
	if err != nil {
		t.Fatalf("NewConfig: %s", err)
	}

	got, err := cfg.HashFile(nm, int64(len(content)))
	if err != nil {
		t.Fatalf("HashFile: %s", err)
	}
	want := sha256hex([]byte(content))
	if got != want {
		t.Errorf("HashFile whole = %s, want %s", got, want)
	}
}

func TestHashFileHeadOnly(t *testing.T) {
	content := "0123456789abcdef"
	nm := writeTemp(t, content)

	head, err := bytesize.Parse("4")
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := NewConfig("sha256", head, bytesize.Size{})
	if err != nil {
		t.Fatal(err)
	}

	got, err := cfg.HashFile(nm, int64(len(content)))
	if err != nil {
		t.Fatalf("HashFile: %s", err)
	}
	want := sha256hex([]byte(content[:4]))
	if got != want {
		t.Errorf("HashFile head-only = %s, want %s", got, want)
	}
}

func TestHashFileTailOnly(t *testing.T) {
	content := "0123456789abcdef"
	nm := writeTemp(t, content)

	tail, err := bytesize.Parse("4")
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := NewConfig("sha256", bytesize.Size{}, tail)
	if err != nil {
		t.Fatal(err)
	}

	got, err := cfg.HashFile(nm, int64(len(content)))
	if err != nil {
		t.Fatalf("HashFile: %s", err)
	}
	want := sha256hex([]byte(content[len(content)-4:]))
	if got != want {
		t.Errorf("HashFile tail-only = %s, want %s", got, want)
	}
}

func TestHashFileHeadTailOverlap(t *testing.T) {
	content := "0123456789" // 10 bytes
	nm := writeTemp(t, content)

	head, _ := bytesize.Parse("8")
	tail, _ := bytesize.Parse("8")
	cfg, err := NewConfig("sha256", head, tail)
	if err != nil {
		t.Fatal(err)
	}

	got, err := cfg.HashFile(nm, int64(len(content)))
	if err != nil {
		t.Fatalf("HashFile: %s", err)
	}
	// head covers [0,8), tail (8 bytes from the end, i.e. starting at
	// offset 2) would start inside the head region, so the tail is
	// skipped and only the head bytes are hashed.
	want := sha256hex([]byte(content[:8]))
	if got != want {
		t.Errorf("HashFile head+tail overlap = %s, want %s", got, want)
	}
}

func TestAlgoKey(t *testing.T) {
	head, _ := bytesize.Parse("1k")
	cfg, err := NewConfig("sha256", head, bytesize.Size{})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := cfg.AlgoKey(), "sha256,h=1k"; got != want {
		t.Errorf("AlgoKey() = %q, want %q", got, want)
	}
}

func TestHashSymlink(t *testing.T) {
	cfg, err := NewConfig("sha256", bytesize.Size{}, bytesize.Size{})
	if err != nil {
		t.Fatal(err)
	}
	got := cfg.HashSymlink("../target")
	want := sha256hex([]byte("../target"))
	if got != want {
		t.Errorf("HashSymlink() = %s, want %s", got, want)
	}
}

func TestLookupUnsupported(t *testing.T) {
	if _, err := Lookup("not-an-algo"); err == nil {
		t.Fatalf("Lookup should reject unsupported algorithm names")
	}
}
