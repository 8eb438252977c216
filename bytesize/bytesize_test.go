package bytesize

import "testing"

func TestParseBasic(t *testing.T) {
	cases := []struct {
		in   string
		want uint64
	}{
		{"0", 0},
		{"1024", 1024},
		{"4k", 4 * 1024},
		{"1M", 1024 * 1024},
	}
	for _, c := range cases {
		z, err := Parse(c.in)
		if err != nil {
			t.Fatalf("Parse(%q): %s", c.in, err)
		}
		if z.Bytes() != c.want {
			t.Errorf("Parse(%q).Bytes() = %d, want %d", c.in, z.Bytes(), c.want)
		}
		if z.Raw() != c.in {
			t.Errorf("Parse(%q).Raw() = %q, want %q", c.in, z.Raw(), c.in)
		}
	}
}

func TestIsZero(t *testing.T) {
	var z Size
	if !z.IsZero() {
		t.Fatalf("zero-value Size should be IsZero")
	}
	z2, err := Parse("0")
	if err != nil {
		t.Fatal(err)
	}
	if z2.IsZero() {
		t.Fatalf("explicitly parsed \"0\" should not be IsZero")
	}
}

func TestValueFlag(t *testing.T) {
	var z Size
	v := NewValue(&z)
	if v.Type() != "size" {
		t.Fatalf("Type() = %q, want %q", v.Type(), "size")
	}
	if err := v.Set("8k"); err != nil {
		t.Fatalf("Set: %s", err)
	}
	if z.Bytes() != 8*1024 {
		t.Fatalf("after Set(8k), Bytes() = %d", z.Bytes())
	}
	if v.String() != "8k" {
		t.Fatalf("String() = %q, want %q", v.String(), "8k")
	}
}

func TestParseInvalid(t *testing.T) {
	if _, err := Parse("not-a-size"); err == nil {
		t.Fatalf("expected error for invalid size string")
	}
}
