package table

import (
	"fmt"
	"path"
	"slices"
	"sort"
	"strconv"
	"strings"

	ds "github.com/reoring/datskema"
)

// Suffix is appended to table paths when they become file names.
const Suffix = ".csv"

// ColumnKind classifies how a cell is rendered and parsed.
type ColumnKind int

const (
	ColInt ColumnKind = iota
	ColFloat
	ColString
	ColEnum
	ColArray // space-separated numbers
	ColRef   // relative path of a child table
)

// Column is one exported field of a table.
type Column struct {
	Name string
	// Type is the rendered column type: a wire type, an enum or schema name,
	// with "[N]" for fixed arrays.
	Type string
	Kind ColumnKind
	// Values lists the valid names of an enum column.
	Values []string
}

// Ref is a row value pointing at a child table by path (without Suffix).
type Ref struct{ Path string }

// Row maps column names to record values or Refs.
type Row map[string]any

// Definition is one table: the schema it renders, its output path (relative,
// without Suffix) and its rows.
type Definition struct {
	Schema      string
	Description string
	Path        string
	Columns     []Column
	Rows        []Row
}

// File returns the output file name of the table.
func (d *Definition) File() string { return d.Path + Suffix }

// Columns lists the exported columns of s for v: ReadGen entries after
// flattening includes, in wire order.
func Columns(s *ds.Schema, v ds.Version) []Column {
	var cols []Column
	for _, m := range s.Members(v, true) {
		if m.Access != ds.ReadGen || m.Name == "" {
			continue
		}
		cols = append(cols, column(m.Entry))
	}
	return cols
}

func column(e ds.Entry) Column {
	f := &e.Field
	c := Column{Name: e.Name}
	switch f.Kind {
	case ds.KindNumber:
		c.Type, c.Kind = f.Wire, ColInt
		if isFloatWire(f.Wire) {
			c.Kind = ColFloat
		}
		if !f.IsScalar() {
			c.Kind = ColArray
			c.Type += arraySuffix(f.Length)
		}
	case ds.KindContinue:
		c.Type, c.Kind = f.Wire, ColInt
	case ds.KindCharArray:
		c.Type, c.Kind = "char"+arraySuffix(f.Length), ColString
	case ds.KindEnum:
		c.Type, c.Kind, c.Values = f.TypeName, ColEnum, f.Values
	case ds.KindEnumLookup:
		c.Type, c.Kind = f.TypeName, ColEnum
		for _, n := range f.Lookup {
			c.Values = append(c.Values, n)
		}
		sort.Strings(c.Values)
	case ds.KindGroup, ds.KindSubdata:
		c.Type, c.Kind = f.Schema.Name, ColRef
	case ds.KindDispatch:
		c.Type, c.Kind = IndexSchema.Name, ColRef
	}
	return c
}

func isFloatWire(w string) bool { return w == "float" || w == "double" }

func arraySuffix(n ds.LengthRule) string {
	if n.Kind == ds.LenLiteral {
		return "[" + strconv.Itoa(n.N) + "]"
	}
	return "[]"
}

// Text renders the table: a "#struct" line, the description as "#" lines,
// the column types and the column names, then one line per row. Enum cells are
// checked against the enum's names.
func (d *Definition) Text() (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "#struct %s\n", d.Schema)
	if d.Description != "" {
		for _, line := range strings.Split(d.Description, "\n") {
			fmt.Fprintf(&b, "# %s\n", line)
		}
	}
	types := make([]string, len(d.Columns))
	names := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		types[i], names[i] = c.Type, c.Name
	}
	delim := string(Delimiter)
	fmt.Fprintf(&b, "#%s\n", strings.Join(types, delim))
	fmt.Fprintf(&b, "#%s\n", strings.Join(names, delim))

	dir := path.Dir(d.Path)
	cells := make([]string, len(d.Columns))
	for idx, row := range d.Rows {
		at := ds.PathAt(d.Path).Index(idx)
		if len(row) != len(d.Columns) {
			return "", ds.Issues{at.Issue(ds.CodeColumnMismatch, -1,
				fmt.Sprintf("row %d has %d values for %d columns", idx, len(row), len(d.Columns)), "row", idx)}
		}
		for i, c := range d.Columns {
			v, ok := row[c.Name]
			if !ok {
				return "", ds.Issues{at.Field(c.Name).Issue(ds.CodeColumnMismatch, -1,
					fmt.Sprintf("row %d has no value for column %s", idx, c.Name), "row", idx)}
			}
			cell, err := formatCell(v, dir)
			if err != nil {
				return "", ds.Issues{at.Field(c.Name).Issue(ds.CodeNotDumpable, -1, err.Error(), "row", idx)}
			}
			if c.Kind == ColEnum && !slices.Contains(c.Values, cell) {
				return "", ds.Issues{at.Field(c.Name).Issue(ds.CodeUnknownEnum, -1,
					fmt.Sprintf("data entry %d %q not a valid %s value", idx, cell, c.Type), "row", idx)}
			}
			cells[i] = Escape(cell)
		}
		b.WriteString(strings.Join(cells, delim))
		b.WriteByte('\n')
	}
	return b.String(), nil
}

func formatCell(v any, dir string) (string, error) {
	switch x := v.(type) {
	case int64:
		return strconv.FormatInt(x, 10), nil
	case uint64:
		return strconv.FormatUint(x, 10), nil
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), nil
	case string:
		return x, nil
	case []int64:
		return joinNumbers(x, func(n int64) string { return strconv.FormatInt(n, 10) }), nil
	case []uint64:
		return joinNumbers(x, func(n uint64) string { return strconv.FormatUint(n, 10) }), nil
	case []float64:
		return joinNumbers(x, func(n float64) string { return strconv.FormatFloat(n, 'g', -1, 64) }), nil
	case Ref:
		return relative(dir, x.Path) + Suffix, nil
	}
	return "", fmt.Errorf("cannot render %T as a cell", v)
}

func joinNumbers[T any](xs []T, f func(T) string) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = f(x)
	}
	return strings.Join(parts, " ")
}

// relative expresses target relative to the directory dir; both are
// slash-separated paths relative to the same output root.
func relative(dir, target string) string {
	split := func(p string) []string {
		if p == "." || p == "" {
			return nil
		}
		return strings.Split(path.Clean(p), "/")
	}
	from, to := split(dir), split(target)
	i := 0
	for i < len(from) && i < len(to) && from[i] == to[i] {
		i++
	}
	var parts []string
	for range from[i:] {
		parts = append(parts, "..")
	}
	parts = append(parts, to[i:]...)
	return strings.Join(parts, "/")
}
