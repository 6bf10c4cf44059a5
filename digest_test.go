package datskema_test

import (
	"bytes"
	"testing"

	ds "github.com/reoring/datskema"
)

func mustDigest(t *testing.T, s *ds.Schema) []byte {
	t.Helper()
	sum, err := ds.Digest(s, v0)
	if err != nil {
		t.Fatalf("digest %s: %v", s.Name, err)
	}
	return sum
}

// TestDigest_FieldOrder checks that [a, b] and [b, a] differ.
func TestDigest_FieldOrder(t *testing.T) {
	a := ds.Gen("a", ds.StorageInt, ds.Number("uint32_t"))
	b := ds.Gen("b", ds.StorageInt, ds.Number("uint32_t"))
	ab := ds.Static("s", "f", "d", a, b)
	ba := ds.Static("s", "f", "d", b, a)
	if bytes.Equal(mustDigest(t, ab), mustDigest(t, ba)) {
		t.Fatalf("permuted fields must change the digest")
	}
}

func TestDigest_Stable(t *testing.T) {
	root, _, _ := dispatchSchemas()
	d1 := mustDigest(t, root)
	d2 := mustDigest(t, root)
	if !bytes.Equal(d1, d2) || len(d1) != 64 {
		t.Fatalf("digest must be a stable sha512")
	}
	h, err := ds.DigestHex(root, v0)
	if err != nil || len(h) != 128 {
		t.Fatalf("hex digest: %q %v", h, err)
	}
}

func TestDigest_SensitiveToShape(t *testing.T) {
	base := ds.Static("s", "f", "d",
		ds.Gen("a", ds.StorageInt, ds.Number("uint32_t")),
		ds.Gen("k", ds.StorageID, ds.Enum("kinds", "uint8_t", "x", "y")),
	)
	variants := map[string]*ds.Schema{
		"rename": ds.Static("s", "f", "d",
			ds.Gen("a2", ds.StorageInt, ds.Number("uint32_t")),
			ds.Gen("k", ds.StorageID, ds.Enum("kinds", "uint8_t", "x", "y"))),
		"wire type": ds.Static("s", "f", "d",
			ds.Gen("a", ds.StorageInt, ds.Number("int32_t")),
			ds.Gen("k", ds.StorageID, ds.Enum("kinds", "uint8_t", "x", "y"))),
		"enum value added": ds.Static("s", "f", "d",
			ds.Gen("a", ds.StorageInt, ds.Number("uint32_t")),
			ds.Gen("k", ds.StorageID, ds.Enum("kinds", "uint8_t", "x", "y", "z"))),
		"access mode": ds.Static("s", "f", "d",
			ds.Internal("a", ds.StorageInt, ds.Number("uint32_t")),
			ds.Gen("k", ds.StorageID, ds.Enum("kinds", "uint8_t", "x", "y"))),
		"description": ds.Static("s", "f", "other",
			ds.Gen("a", ds.StorageInt, ds.Number("uint32_t")),
			ds.Gen("k", ds.StorageID, ds.Enum("kinds", "uint8_t", "x", "y"))),
	}
	want := mustDigest(t, base)
	for name, s := range variants {
		if bytes.Equal(want, mustDigest(t, s)) {
			t.Fatalf("%s must change the digest", name)
		}
	}
}

func TestDigest_LookupValueChange(t *testing.T) {
	mk := func(m map[int64]string) *ds.Schema {
		return ds.Static("s", "f", "", ds.Gen("k", ds.StorageString, ds.EnumLookup("k", "uint8_t", m)))
	}
	a := mustDigest(t, mk(map[int64]string{0: "x", 1: "y"}))
	b := mustDigest(t, mk(map[int64]string{1: "y", 0: "x"}))
	c := mustDigest(t, mk(map[int64]string{0: "x", 2: "y"}))
	if !bytes.Equal(a, b) {
		t.Fatalf("map iteration order must not matter")
	}
	if bytes.Equal(a, c) {
		t.Fatalf("remapped key must change the digest")
	}
}

func TestDigest_NestedChangePropagates(t *testing.T) {
	mk := func(w string) *ds.Schema {
		inner := ds.Static("inner", "f", "", ds.Gen("x", ds.StorageInt, ds.Number(w)))
		return ds.Static("outer", "f", "",
			ds.Internal("n", ds.StorageInt, ds.Number("uint8_t")),
			ds.Gen("items", ds.StorageArrayContainer, ds.Subdata(inner, ds.Sibling("n"))))
	}
	if bytes.Equal(mustDigest(t, mk("uint8_t")), mustDigest(t, mk("uint16_t"))) {
		t.Fatalf("nested schema change must change the outer digest")
	}
}

func TestDigest_UnsupportedKind(t *testing.T) {
	s := ds.Static("s", "f", "", ds.Entry{Access: ds.ReadOnly, Name: "x", Field: ds.Field{Kind: ds.KindInvalid}})
	if _, err := ds.Digest(s, v0); !ds.HasCode(err, ds.CodeSchemaDefinition) {
		t.Fatalf("expected schema_definition, got %v", err)
	}
}
