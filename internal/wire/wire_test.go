package wire

import "testing"

func TestParse(t *testing.T) {
	cases := map[string]Type{
		"int8_t":   Int8,
		"uint16_t": Uint16,
		"float":    Float32,
		"double":   Float64,
		"char":     Char,
		"int":      Int32,
		"bogus":    Invalid,
	}
	for name, want := range cases {
		if got := Parse(name); got != want {
			t.Fatalf("Parse(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestInt_SignExtension(t *testing.T) {
	b := []byte{0xff, 0xff, 0xff, 0xff}
	if got := Int16.Int(b); got != -1 {
		t.Fatalf("int16: %d", got)
	}
	if got := Uint16.Int(b); got != 0xffff {
		t.Fatalf("uint16: %d", got)
	}
	if got := Uint32.Int(b); got != 0xffffffff {
		t.Fatalf("uint32: %d", got)
	}
}

func TestCString(t *testing.T) {
	if got := CString([]byte("ab\x00cd")); got != "ab" {
		t.Fatalf("CString: %q", got)
	}
	if n := NulLength([]byte("abc")); n != 3 {
		t.Fatalf("NulLength without terminator: %d", n)
	}
	if n := NulLength([]byte("a\x00b")); n != 2 {
		t.Fatalf("NulLength: %d", n)
	}
}
