package codegen

import (
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"
	"unicode"

	ds "github.com/reoring/datskema"
	"github.com/reoring/datskema/internal/wire"
	"github.com/reoring/datskema/table"
)

const tableImport = "github.com/reoring/datskema/table"

// Generate returns the snippets describing every schema reachable from roots
// for v: a struct with its member count, a Fill method parsing one table row,
// a Recurse method loading child tables, enum types with a Parse function and
// one container type per dispatch field.
func Generate(roots []*ds.Schema, v ds.Version) ([]*Snippet, error) {
	g := &generator{v: v, defined: map[string]*Snippet{}}
	var schemas []*ds.Schema
	seen := map[*ds.Schema]bool{}
	for _, r := range roots {
		if err := r.Validate(v); err != nil {
			return nil, err
		}
		for _, s := range r.Reachable(v) {
			if !seen[s] {
				seen[s] = true
				schemas = append(schemas, s)
			}
		}
	}
	for _, s := range schemas {
		if err := g.schema(s); err != nil {
			return nil, err
		}
	}
	if g.needIndex && !seen[table.IndexSchema] {
		if err := g.schema(table.IndexSchema); err != nil {
			return nil, err
		}
	}
	return g.out, nil
}

type generator struct {
	v         ds.Version
	out       []*Snippet
	defined   map[string]*Snippet
	needIndex bool
}

// add records sn unless an identical definition exists. A different body for
// an already defined type is an ordering_conflict.
func (g *generator) add(sn *Snippet) error {
	_, err := g.define(sn)
	return err
}

// define is add reporting whether sn was new.
func (g *generator) define(sn *Snippet) (bool, error) {
	for _, name := range sn.Defines {
		if prev, ok := g.defined[name]; ok {
			if prev.Text == sn.Text {
				return false, nil
			}
			return false, ds.Issues{ds.PathAt("/"+sn.File).Field(name).Issue(ds.CodeOrderingConflict, -1,
				fmt.Sprintf("type %s is generated twice with different bodies", name), "type", name)}
		}
	}
	for _, name := range sn.Defines {
		g.defined[name] = sn
	}
	g.out = append(g.out, sn)
	return true, nil
}

func fileFor(file string) string {
	if file == "" {
		file = "types"
	}
	return file + ".go"
}

func (g *generator) schema(s *ds.Schema) error {
	name := Exported(s.Name)
	file := fileFor(s.File)

	var b strings.Builder
	fmt.Fprintf(&b, "// %s is one row of a %s table.\n", name, s.Name)
	if s.Description != "" {
		b.WriteString("//\n")
		for _, line := range strings.Split(s.Description, "\n") {
			fmt.Fprintf(&b, "// %s\n", strings.TrimSpace(line))
		}
	}
	fmt.Fprintf(&b, "type %s struct {\n", name)
	st := &Snippet{File: file, Section: SectionType, Defines: []string{name}, OrderKey: s.Name}
	for _, m := range s.Members(g.v, false) {
		e := m.Entry
		f := &e.Field
		if f.Kind == ds.KindInclude {
			parent := Exported(f.Schema.Name)
			fmt.Fprintf(&b, "\t%s\n", parent)
			st.Refs = append(st.Refs, parent)
			continue
		}
		if e.Access != ds.ReadGen || e.Name == "" {
			continue
		}
		typ, err := g.goType(s, e, st)
		if err != nil {
			return err
		}
		fmt.Fprintf(&b, "\t%s %s\n", fieldName(e.Name), typ)
	}
	b.WriteString("}\n\n")
	cols := table.Columns(s, g.v)
	fmt.Fprintf(&b, "// %sMemberCount is the number of columns of a %s row.\n", name, name)
	fmt.Fprintf(&b, "const %sMemberCount = %d\n", name, len(cols))
	st.Text = b.String()
	if added, err := g.define(st); !added || err != nil {
		return err
	}
	return g.add(g.methods(s, name, file))
}

// goType returns the field type of e and registers what it needs on st.
func (g *generator) goType(s *ds.Schema, e ds.Entry, st *Snippet) (string, error) {
	f := &e.Field
	switch f.Kind {
	case ds.KindNumber:
		t := numberType(f.Wire)
		if !f.IsScalar() {
			return "[]" + t, nil
		}
		return t, nil
	case ds.KindContinue:
		return numberType(f.Wire), nil
	case ds.KindCharArray:
		return "string", nil
	case ds.KindEnum, ds.KindEnumLookup:
		name := Exported(f.TypeName)
		if err := g.add(g.enum(s, f)); err != nil {
			return "", err
		}
		st.Refs = append(st.Refs, name)
		return name, nil
	case ds.KindGroup, ds.KindSubdata:
		child := Exported(f.Schema.Name)
		addImport(st, tableImport)
		return fmt.Sprintf("table.Subdata[%s, *%s]", child, child), nil
	case ds.KindDispatch:
		name := Exported(s.Name) + Exported(e.Name)
		file := s.File
		if f.File != "" {
			file = f.File
		}
		g.needIndex = true
		typ, meth := g.container(name, fileFor(file), e)
		added, err := g.define(typ)
		if err != nil {
			return "", err
		}
		if added {
			g.out = append(g.out, meth)
		}
		st.Refs = append(st.Refs, name)
		return name, nil
	}
	return "", ds.Issues{ds.PathAt("/" + s.Name).Field(e.Name).Issue(ds.CodeSchemaDefinition, -1,
		fmt.Sprintf("no Go type for %s field", f.Kind))}
}

func numberType(w string) string {
	switch wire.Parse(w) {
	case wire.Int8:
		return "int8"
	case wire.Uint8, wire.Char:
		return "uint8"
	case wire.Int16:
		return "int16"
	case wire.Uint16:
		return "uint16"
	case wire.Int32:
		return "int32"
	case wire.Uint32:
		return "uint32"
	case wire.Int64:
		return "int64"
	case wire.Uint64:
		return "uint64"
	case wire.Float32:
		return "float32"
	}
	return "float64"
}

func isFloat(w string) bool { return wire.Parse(w).IsFloat() }

// methods builds Fill over every flattened column and, when the row references
// child tables, Recurse.
func (g *generator) methods(s *ds.Schema, name, file string) *Snippet {
	sn := &Snippet{File: file, Section: SectionMethod, OrderKey: s.Name, Refs: []string{name}}
	addImport(sn, tableImport)
	var body, rec strings.Builder
	needErr := false
	i := 0
	for _, m := range s.Members(g.v, true) {
		e := m.Entry
		if e.Access != ds.ReadGen || e.Name == "" {
			continue
		}
		f := &e.Field
		field := "r." + fieldName(e.Name)
		cell := fmt.Sprintf("row[%d]", i)
		parse := ""
		switch f.Kind {
		case ds.KindNumber, ds.KindContinue:
			fn := "ParseInt"
			if isFloat(f.Wire) {
				fn = "ParseFloat"
			}
			if f.Kind == ds.KindNumber && !f.IsScalar() {
				fn += "s"
			}
			parse = fmt.Sprintf("table.%s[%s](%s)", fn, numberType(f.Wire), cell)
		case ds.KindCharArray:
			fmt.Fprintf(&body, "\t%s = %s\n", field, cell)
		case ds.KindEnum, ds.KindEnumLookup:
			parse = fmt.Sprintf("Parse%s(%s)", Exported(f.TypeName), cell)
		case ds.KindGroup, ds.KindSubdata, ds.KindDispatch:
			fmt.Fprintf(&body, "\t%s.Set(%s)\n", field, cell)
			fmt.Fprintf(&rec, "\tif err := %s.Recurse(fsys, dir); err != nil {\n\t\treturn err\n\t}\n", field)
			if f.Kind != ds.KindDispatch {
				sn.Refs = append(sn.Refs, Exported(f.Schema.Name))
			}
		}
		if parse != "" {
			needErr = true
			fmt.Fprintf(&body, "\tif %s, err = %s; err != nil {\n\t\treturn table.CellError(%q, %d, err)\n\t}\n",
				field, parse, s.Name, i)
		}
		i++
	}

	var b strings.Builder
	fmt.Fprintf(&b, "// Fill parses one %s row.\n", s.Name)
	fmt.Fprintf(&b, "func (r *%s) Fill(row []string) error {\n", name)
	fmt.Fprintf(&b, "\tif len(row) != %sMemberCount {\n", name)
	fmt.Fprintf(&b, "\t\treturn table.ColumnMismatch(%q, %sMemberCount, len(row))\n\t}\n", s.Name, name)
	if needErr {
		b.WriteString("\tvar err error\n")
	}
	b.WriteString(body.String())
	b.WriteString("\treturn nil\n}\n")
	if rec.Len() > 0 {
		addImport(sn, "io/fs")
		fmt.Fprintf(&b, "\n// Recurse loads the child tables referenced by the row.\n")
		fmt.Fprintf(&b, "func (r *%s) Recurse(fsys fs.FS, dir string) error {\n", name)
		b.WriteString(rec.String())
		b.WriteString("\treturn nil\n}\n")
	}
	sn.Text = b.String()
	return sn
}

// enum returns the string type, its constants and Parse function for f.
func (g *generator) enum(s *ds.Schema, f *ds.Field) *Snippet {
	name := Exported(f.TypeName)
	var values []string
	if f.Kind == ds.KindEnum {
		values = slices.Clone(f.Values)
	} else {
		for _, n := range f.Lookup {
			values = append(values, n)
		}
		sort.Strings(values)
	}
	values = uniq(values)

	var b strings.Builder
	fmt.Fprintf(&b, "// %s is one of the %s names.\n", name, f.TypeName)
	fmt.Fprintf(&b, "type %s string\n\nconst (\n", name)
	consts := make([]string, len(values))
	for i, val := range values {
		consts[i] = name + Exported(val)
		fmt.Fprintf(&b, "\t%s %s = %s\n", consts[i], name, strconv.Quote(val))
	}
	b.WriteString(")\n\n")
	fmt.Fprintf(&b, "// Parse%s returns the %s named by s.\n", name, name)
	fmt.Fprintf(&b, "func Parse%s(s string) (%s, error) {\n", name, name)
	fmt.Fprintf(&b, "\tswitch v := %s(s); v {\n\tcase %s:\n\t\treturn v, nil\n\t}\n", name, strings.Join(consts, ", "))
	fmt.Fprintf(&b, "\treturn \"\", fmt.Errorf(\"%%q is not a valid %s value\", s)\n}\n", f.TypeName)
	return &Snippet{
		File: fileFor(s.File), Section: SectionEnum, Text: b.String(),
		Defines: []string{name}, OrderKey: f.TypeName, Imports: []string{"fmt"},
	}
}

// container returns the type holding the per-subtype tables of a dispatch
// field together with its methods.
func (g *generator) container(name, file string, e ds.Entry) (*Snippet, *Snippet) {
	f := &e.Field
	keys := make([]string, 0, len(f.Subtypes))
	for k := range f.Subtypes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	index := Exported(table.IndexSchema.Name)

	var t strings.Builder
	fmt.Fprintf(&t, "// %s holds the subtype tables of a %s field.\n", name, e.Name)
	fmt.Fprintf(&t, "type %s struct {\n\tFilename string\n", name)
	for _, k := range keys {
		fmt.Fprintf(&t, "\t%s []%s\n", Exported(k), Exported(f.Subtypes[k].Name))
	}
	t.WriteString("}\n")
	typ := &Snippet{File: file, Section: SectionType, Text: t.String(), Defines: []string{name}, OrderKey: e.Name}

	var m strings.Builder
	fmt.Fprintf(&m, "// Set stores the index table file name.\nfunc (c *%s) Set(cell string) { c.Filename = cell }\n\n", name)
	fmt.Fprintf(&m, "// Recurse loads the index table and every subtype table it names.\n")
	fmt.Fprintf(&m, "func (c *%s) Recurse(fsys fs.FS, dir string) error {\n", name)
	m.WriteString("\tif c.Filename == \"\" {\n\t\treturn nil\n\t}\n")
	m.WriteString("\tname := path.Join(dir, c.Filename)\n")
	fmt.Fprintf(&m, "\tindex, err := table.Load[%s](fsys, name)\n", index)
	m.WriteString("\tif err != nil {\n\t\treturn err\n\t}\n\tdir = path.Dir(name)\n")
	m.WriteString("\tfor _, e := range index {\n\t\tswitch e.Subtype {\n")
	refs := []string{name, index}
	for _, k := range keys {
		child := Exported(f.Subtypes[k].Name)
		refs = append(refs, child)
		fmt.Fprintf(&m, "\t\tcase %q:\n", k)
		fmt.Fprintf(&m, "\t\t\tif c.%s, err = table.Load[%s](fsys, path.Join(dir, e.Filename)); err != nil {\n\t\t\t\treturn err\n\t\t\t}\n",
			Exported(k), child)
	}
	m.WriteString("\t\tdefault:\n\t\t\treturn fmt.Errorf(\"%s: unknown subtype %q\", name, e.Subtype)\n\t\t}\n\t}\n\treturn nil\n}\n")
	meth := &Snippet{
		File: file, Section: SectionMethod, Text: m.String(), Refs: refs, OrderKey: e.Name,
		Imports: []string{"fmt", "io/fs", "path", tableImport},
	}
	return typ, meth
}

func addImport(sn *Snippet, imp string) {
	if !slices.Contains(sn.Imports, imp) {
		sn.Imports = append(sn.Imports, imp)
	}
}

func uniq(xs []string) []string {
	out := xs[:0]
	seen := map[string]bool{}
	for _, x := range xs {
		if !seen[x] {
			seen[x] = true
			out = append(out, x)
		}
	}
	return out
}

// fieldName keeps generated fields clear of the generated method names.
func fieldName(name string) string {
	n := Exported(name)
	switch n {
	case "Fill", "Recurse":
		n += "Value"
	}
	return n
}

// Exported converts a snake_case schema or field name into an exported Go
// identifier.
func Exported(name string) string {
	var b strings.Builder
	upper := true
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	out := b.String()
	if out == "" || unicode.IsDigit(rune(out[0])) {
		out = "X" + out
	}
	return out
}
