package datskema_test

import (
	"testing"

	ds "github.com/reoring/datskema"
)

func TestSchema_MembersFlatten(t *testing.T) {
	base := ds.Static("base", "u", "",
		ds.Gen("id", ds.StorageID, ds.Number("int16_t")),
	)
	mid := ds.Static("mid", "u", "",
		ds.Inherit(base),
		ds.Gen("hp", ds.StorageInt, ds.Number("int16_t")),
	)
	top := ds.Static("top", "u", "",
		ds.Inherit(mid),
		ds.Gen("speed", ds.StorageFloat, ds.Number("float")),
	)
	flat := top.Members(v0, true)
	if len(flat) != 3 {
		t.Fatalf("flattened: %d members", len(flat))
	}
	want := []struct {
		name       string
		fromParent bool
	}{{"id", true}, {"hp", true}, {"speed", false}}
	for i, w := range want {
		if flat[i].Name != w.name || flat[i].FromParent != w.fromParent {
			t.Fatalf("member %d: %+v", i, flat[i])
		}
	}
	own := top.Members(v0, false)
	if len(own) != 2 || own[0].Field.Kind != ds.KindInclude {
		t.Fatalf("unflattened keeps the include marker: %+v", own)
	}
}

func TestSchema_EntriesMemoizedPerVersion(t *testing.T) {
	calls := 0
	s := ds.NewSchema("m", "m", "", func(v ds.Version) []ds.Entry {
		calls++
		return []ds.Entry{ds.Gen("a", ds.StorageInt, ds.Number("uint8_t"))}
	})
	s.Entries(ds.Version{Edition: "x", Expansions: []string{"b", "a"}})
	s.Entries(ds.Version{Edition: "x", Expansions: []string{"a", "b"}})
	if calls != 1 {
		t.Fatalf("expected one evaluation per version, got %d", calls)
	}
	s.Entries(ds.Version{Edition: "y"})
	if calls != 2 {
		t.Fatalf("new version must evaluate again, got %d", calls)
	}
}

func TestSchema_ValidateIncludeCycle(t *testing.T) {
	var a, b *ds.Schema
	a = ds.NewSchema("a", "c", "", func(ds.Version) []ds.Entry { return []ds.Entry{ds.Inherit(b)} })
	b = ds.NewSchema("b", "c", "", func(ds.Version) []ds.Entry { return []ds.Entry{ds.Inherit(a)} })
	err := a.Validate(v0)
	if !ds.HasCode(err, ds.CodeIncludeCycle) {
		t.Fatalf("expected include_cycle, got %v", err)
	}
	if !ds.IsSchemaError(err) {
		t.Fatalf("include_cycle is a schema error")
	}
}

func TestSchema_ValidateStorageAndKinds(t *testing.T) {
	cases := []struct {
		name string
		e    ds.Entry
		code string
	}{
		{"float as int", ds.Gen("a", ds.StorageInt, ds.Number("float")), ds.CodeInvalidStorage},
		{"array as scalar", ds.Gen("a", ds.StorageInt, ds.Array("int8_t", ds.Literal(2))), ds.CodeInvalidStorage},
		{"bad wire", ds.Gen("a", ds.StorageInt, ds.Number("quad")), ds.CodeUnknownWireType},
		{"empty enum", ds.Gen("a", ds.StorageID, ds.Enum("e", "uint8_t")), ds.CodeSchemaDefinition},
		{"float enum", ds.Gen("a", ds.StorageID, ds.Enum("e", "float", "x")), ds.CodeSchemaDefinition},
		{"unnamed export", ds.Entry{Access: ds.ReadGen, Storage: ds.StorageInt, Field: ds.Number("uint8_t")}, ds.CodeSchemaDefinition},
		{"dispatch without subtypes", ds.Gen("d", ds.StorageArrayContainer,
			ds.Dispatch(ds.Internal("t", ds.StorageInt, ds.Number("uint8_t")), nil, ds.Literal(1))), ds.CodeSchemaDefinition},
		{"skipped discriminant", ds.Gen("d", ds.StorageArrayContainer,
			ds.Dispatch(ds.Skipped(ds.Number("uint8_t")), map[string]*ds.Schema{"0": ds.Static("z", "s", "")}, ds.Literal(1))), ds.CodeSchemaDefinition},
		{"unknown discriminant", ds.Gen("d", ds.StorageArrayContainer,
			ds.Dispatch(ds.Unknown(ds.Number("uint8_t")), map[string]*ds.Schema{"0": ds.Static("z", "s", "")}, ds.Literal(1))), ds.CodeSchemaDefinition},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := ds.Static("s", "s", "", tc.e)
			if err := s.Validate(v0); !ds.HasCode(err, tc.code) {
				t.Fatalf("expected %s, got %v", tc.code, err)
			}
		})
	}
}

func TestAccess_String(t *testing.T) {
	for a, want := range map[ds.Access]string{ds.ReadOnly: "read", ds.ReadGen: "read_gen", ds.ReadUnknown: "read_unknown", ds.Skip: "skip"} {
		if got := a.String(); got != want {
			t.Fatalf("%d: %q, want %q", a, got, want)
		}
	}
	if ds.Internal("x", ds.StorageInt, ds.Number("uint8_t")).Access != ds.ReadOnly {
		t.Fatalf("internal entries are read only")
	}
}

func TestSchema_ValidateDuplicateNames(t *testing.T) {
	base := ds.Static("base", "d", "", ds.Gen("a", ds.StorageInt, ds.Number("uint8_t")))
	s := ds.Static("s", "d", "",
		ds.Gen("a", ds.StorageInt, ds.Number("uint8_t")),
		ds.Gen("a", ds.StorageInt, ds.Number("uint8_t")),
	)
	if err := s.Validate(v0); !ds.HasCode(err, ds.CodeSchemaDefinition) {
		t.Fatalf("expected duplicate name error, got %v", err)
	}
	ok := ds.Static("ok", "d", "", ds.Inherit(base), ds.Gen("b", ds.StorageInt, ds.Number("uint8_t")))
	if err := ok.Validate(v0); err != nil {
		t.Fatalf("valid schema: %v", err)
	}
}

func TestSchema_Reachable(t *testing.T) {
	root, foo, bar := dispatchSchemas()
	got := root.Reachable(v0)
	if len(got) != 3 || got[0] != root {
		t.Fatalf("reachable: %d", len(got))
	}
	// dispatch subtypes are visited in sorted key order: bar before foo
	if got[1] != bar || got[2] != foo {
		t.Fatalf("unexpected order: %s %s", got[1].Name, got[2].Name)
	}
}
