package codegen_test

import (
	"go/parser"
	"go/token"
	"strings"
	"testing"

	ds "github.com/reoring/datskema"
	"github.com/reoring/datskema/codegen"
)

var v0 = ds.Version{Edition: "test"}

func source(t *testing.T, files []codegen.File, name string) string {
	t.Helper()
	for _, f := range files {
		if f.Name == name {
			return string(f.Source)
		}
	}
	t.Fatalf("no file %s", name)
	return ""
}

func TestAssemble_OrdersDefinersFirst(t *testing.T) {
	sn := []*codegen.Snippet{
		{File: "a.go", Section: codegen.SectionType, OrderKey: "a", Text: "type A struct{ B B }", Defines: []string{"A"}, Refs: []string{"B"}},
		{File: "a.go", Section: codegen.SectionType, OrderKey: "z", Text: "type B int", Defines: []string{"B"}},
		{File: "a.go", Section: codegen.SectionType, OrderKey: "m", Text: "type M int", Defines: []string{"M"}},
	}
	files, err := codegen.Assemble(sn, codegen.AssembleOpt{Package: "out"})
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	src := source(t, files, "a.go")
	ia, ib, im := strings.Index(src, "type A"), strings.Index(src, "type B"), strings.Index(src, "type M")
	if !(ib < ia && im < ib) {
		t.Fatalf("order M, B, A expected:\n%s", src)
	}
	if !strings.Contains(src, "package out\n") {
		t.Fatalf("missing package clause:\n%s", src)
	}
}

func TestAssemble_OrderIsDeterministic(t *testing.T) {
	mk := func() []*codegen.Snippet {
		return []*codegen.Snippet{
			{File: "x.go", OrderKey: "k", Text: "type Q int", Defines: []string{"Q"}},
			{File: "x.go", OrderKey: "k", Text: "type P int", Defines: []string{"P"}},
		}
	}
	a, err := codegen.Assemble(mk(), codegen.AssembleOpt{Package: "p"})
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	sn := mk()
	sn[0], sn[1] = sn[1], sn[0]
	b, err := codegen.Assemble(sn, codegen.AssembleOpt{Package: "p"})
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if string(a[0].Source) != string(b[0].Source) {
		t.Fatalf("input order leaked into output:\n%s\n---\n%s", a[0].Source, b[0].Source)
	}
	if strings.Index(string(a[0].Source), "type P") > strings.Index(string(a[0].Source), "type Q") {
		t.Fatalf("equal keys must fall back to text order:\n%s", a[0].Source)
	}
}

func TestAssemble_CrossFileReference(t *testing.T) {
	sn := []*codegen.Snippet{
		{File: "a.go", Text: "type A struct{ B B; C C }", Defines: []string{"A"}, Refs: []string{"B", "C"}},
		{File: "b.go", Text: "type B int\n\ntype C int", Defines: []string{"B", "C"}},
	}
	files, err := codegen.Assemble(sn, codegen.AssembleOpt{Package: "p"})
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if len(files) != 2 || files[0].Name != "a.go" {
		t.Fatalf("files: %+v", files)
	}
	if !strings.Contains(source(t, files, "a.go"), "// b.go: uses B, C\n") {
		t.Fatalf("missing reference comment:\n%s", files[0].Source)
	}
	if len(files[0].Uses) != 1 || files[0].Uses[0] != "b.go" {
		t.Fatalf("uses: %v", files[0].Uses)
	}
}

func TestAssemble_Errors(t *testing.T) {
	cases := []struct {
		name string
		sn   []*codegen.Snippet
		code string
	}{
		{"missing type", []*codegen.Snippet{
			{File: "a.go", Text: "type A struct{ X X; Y Y }", Defines: []string{"A"}, Refs: []string{"Y", "X"}},
		}, ds.CodeMissingType},
		{"two definers", []*codegen.Snippet{
			{File: "a.go", Text: "type A int", Defines: []string{"A"}},
			{File: "b.go", Text: "type A string", Defines: []string{"A"}},
		}, ds.CodeOrderingConflict},
		{"cycle", []*codegen.Snippet{
			{File: "a.go", Text: "type A struct{ b *B }", Defines: []string{"A"}, Refs: []string{"B"}},
			{File: "a.go", Text: "type B struct{ a *A }", Defines: []string{"B"}, Refs: []string{"A"}},
		}, ds.CodeOrderingConflict},
		{"unformattable", []*codegen.Snippet{
			{File: "a.go", Text: "type A struct {", Defines: []string{"A"}},
		}, ds.CodeFormatError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := codegen.Assemble(tc.sn, codegen.AssembleOpt{Package: "p"})
			if !ds.HasCode(err, tc.code) {
				t.Fatalf("expected %s, got %v", tc.code, err)
			}
			if !ds.IsExportError(err) {
				t.Fatalf("expected an export error: %v", err)
			}
		})
	}
	_, err := codegen.Assemble(cases[0].sn, codegen.AssembleOpt{Package: "p"})
	iss, _ := ds.AsIssues(err)
	if !strings.Contains(iss[0].Hint, "X, Y") {
		t.Fatalf("missing types must be listed sorted: %q", iss[0].Hint)
	}
}

func sampleSchemas() *ds.Schema {
	kinds := map[int64]string{0: "foo", 1: "bar"}
	base := ds.Static("base_thing", "things", "",
		ds.Gen("id", ds.StorageID, ds.Number("int16_t")),
		ds.Gen("name", ds.StorageString, ds.CharArray(ds.Literal(8))),
	)
	foo := ds.Static("foo", "things", "a foo thing",
		ds.Inherit(base),
		ds.Gen("speed", ds.StorageFloat, ds.Number("float")),
	)
	bar := ds.Static("bar", "things", "",
		ds.Inherit(base),
		ds.Gen("flags", ds.StorageArrayInt, ds.Array("uint8_t", ds.Literal(4))),
	)
	terrain := ds.Static("terrain", "terrain", "",
		ds.Gen("slot", ds.StorageInt, ds.Number("uint32_t")),
	)
	return ds.Static("root", "root", "",
		ds.Internal("count", ds.StorageInt, ds.Number("uint8_t")),
		ds.Gen("mode", ds.StorageString, ds.Enum("mode", "uint8_t", "off", "on")),
		ds.Gen("terrains", ds.StorageArrayContainer, ds.Subdata(terrain, ds.Literal(2))),
		ds.Gen("things", ds.StorageArrayContainer, ds.Dispatch(
			ds.Gen("kind", ds.StorageString, ds.EnumLookup("kinds", "uint8_t", kinds)),
			map[string]*ds.Schema{"foo": foo, "bar": bar},
			ds.Sibling("count"),
		)),
	)
}

func TestGenerate_Assembles(t *testing.T) {
	sn, err := codegen.Generate([]*ds.Schema{sampleSchemas()}, v0)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	files, err := codegen.Assemble(sn, codegen.AssembleOpt{Package: "gamedata"})
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	names := map[string]bool{}
	for _, f := range files {
		names[f.Name] = true
		if _, err := parser.ParseFile(token.NewFileSet(), f.Name, f.Source, 0); err != nil {
			t.Fatalf("%s does not parse: %v\n%s", f.Name, err, f.Source)
		}
	}
	for _, want := range []string{"root.go", "terrain.go", "things.go", "util.go"} {
		if !names[want] {
			t.Fatalf("missing %s in %v", want, names)
		}
	}

	root := source(t, files, "root.go")
	for _, want := range []string{
		"const RootMemberCount = 3\n",
		"type Mode string",
		"func ParseMode(s string) (Mode, error)",
		"table.Subdata[Terrain, *Terrain]",
		"type RootThings struct",
		"r.Terrains.Set(row[1])",
		"if r.Mode, err = ParseMode(row[0]); err != nil",
		"func (r *Root) Recurse(fsys fs.FS, dir string) error",
		"// terrain.go: uses Terrain\n",
	} {
		if !strings.Contains(root, want) {
			t.Fatalf("root.go lacks %q:\n%s", want, root)
		}
	}

	things := source(t, files, "things.go")
	for _, want := range []string{
		"const FooMemberCount = 3\n",
		"const BarMemberCount = 3\n",
		"if r.Speed, err = table.ParseFloat[float32](row[2]); err != nil",
		"if r.Flags, err = table.ParseInts[uint8](row[2]); err != nil",
		"r.Name = row[1]",
	} {
		if !strings.Contains(things, want) {
			t.Fatalf("things.go lacks %q:\n%s", want, things)
		}
	}
	if strings.Index(things, "type BaseThing struct") > strings.Index(things, "type Foo struct") {
		t.Fatalf("included struct must precede its embedder:\n%s", things)
	}
	if !strings.Contains(source(t, files, "util.go"), "type SubtypeIndex struct") {
		t.Fatalf("dispatch needs the subtype index type")
	}
}

func TestGenerate_RedefinitionConflicts(t *testing.T) {
	a := ds.Static("dup", "x", "", ds.Gen("a", ds.StorageInt, ds.Number("int32_t")))
	b := ds.Static("dup", "x", "", ds.Gen("b", ds.StorageInt, ds.Number("int32_t")))
	root := ds.Static("root", "x", "",
		ds.Gen("one", ds.StorageContainer, ds.Group(a)),
		ds.Gen("two", ds.StorageContainer, ds.Group(b)),
	)
	if _, err := codegen.Generate([]*ds.Schema{root}, v0); !ds.HasCode(err, ds.CodeOrderingConflict) {
		t.Fatalf("expected ordering_conflict, got %v", err)
	}

	same := ds.Static("dup", "x", "", ds.Gen("a", ds.StorageInt, ds.Number("int32_t")))
	root = ds.Static("root", "x", "",
		ds.Gen("one", ds.StorageContainer, ds.Group(a)),
		ds.Gen("two", ds.StorageContainer, ds.Group(same)),
	)
	if _, err := codegen.Generate([]*ds.Schema{root}, v0); err != nil {
		t.Fatalf("identical redefinition must be accepted: %v", err)
	}
}

func TestExported(t *testing.T) {
	cases := map[string]string{
		"terrain_restriction": "TerrainRestriction",
		"dead_or_fish":        "DeadOrFish",
		"hp":                  "Hp",
		"2d":                  "X2d",
		"":                    "X",
	}
	for in, want := range cases {
		if got := codegen.Exported(in); got != want {
			t.Fatalf("Exported(%q) = %q, want %q", in, got, want)
		}
	}
}
