package source_test

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/reoring/datskema/source"
)

func TestDeflateInflate(t *testing.T) {
	data := bytes.Repeat([]byte("VER 5.7\x00terrain"), 512)
	compressed, err := source.Deflate(data, 0)
	if err != nil {
		t.Fatalf("deflate: %v", err)
	}
	if len(compressed) >= len(data) {
		t.Fatalf("repetitive input should shrink: %d >= %d", len(compressed), len(data))
	}
	// raw deflate: no zlib header (0x78 0x9c)
	if compressed[0] == 0x78 && compressed[1] == 0x9c {
		t.Fatalf("unexpected zlib header")
	}
	got, err := source.Inflate(compressed)
	if err != nil {
		t.Fatalf("inflate: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("round trip mismatch")
	}
}

func TestInflate_Corrupt(t *testing.T) {
	if _, err := source.Inflate([]byte{0xff, 0xff, 0xff, 0xff}); err == nil {
		t.Fatalf("expected an error for a corrupt stream")
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "empires2.dat")
	data := []byte{1, 2, 3, 4, 5}
	if err := source.WriteFile(name, data, 9); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := source.ReadFile(name, false)
	if err != nil || !bytes.Equal(got, data) {
		t.Fatalf("read: %v %v", got, err)
	}
	raw, err := source.ReadFile(name, true)
	if err != nil || bytes.Equal(raw, data) {
		t.Fatalf("raw read must return the compressed bytes: %v %v", raw, err)
	}
	if _, err := source.ReadFile(filepath.Join(dir, "missing.dat"), false); err == nil {
		t.Fatalf("expected an error for a missing file")
	}
}
