package table

import (
	"fmt"
	"sort"

	ds "github.com/reoring/datskema"
)

// IndexSchema describes the index table written at a dispatch boundary: one
// row per subtype naming the file that holds its entries.
var IndexSchema = ds.Static("subtype_index", "util", "subtype files of a dispatch field",
	ds.Gen("subtype", ds.StorageString, ds.CharArray(ds.AnyLength)),
	ds.Gen("filename", ds.StorageString, ds.CharArray(ds.AnyLength)),
)

// Dump walks rec together with s and returns the child tables of every
// nested level plus the row of rec itself. base is the output path of rec:
// subdata and group children go to base-field, dispatch children to
// base/subtype with an index table at base-field, and entry i of a child
// table is dumped with base "<child>/%04d".
func Dump(rec *ds.Record, s *ds.Schema, v ds.Version, base string) ([]*Definition, Row, error) {
	if rec == nil {
		return nil, nil, notDumpable(base, "nil record")
	}
	var defs []*Definition
	row := Row{}
	for _, m := range s.Members(v, true) {
		if m.Access != ds.ReadGen || m.Name == "" {
			continue
		}
		val, ok := rec.Get(m.Name)
		if !ok {
			return nil, nil, notDumpable(base+"/"+m.Name, fmt.Sprintf("record %s has no field %s", rec.Name, m.Name))
		}
		f := &m.Field
		child := base + "-" + m.Name
		switch f.Kind {
		case ds.KindGroup:
			sub, ok := val.(*ds.Record)
			if !ok {
				return nil, nil, notDumpable(child, fmt.Sprintf("group value is %T", val))
			}
			d, err := childTable(f.Schema, v, child, []*ds.Record{sub})
			if err != nil {
				return nil, nil, err
			}
			defs = append(defs, d...)
			row[m.Name] = Ref{Path: child}
		case ds.KindSubdata:
			els, ok := val.(*ds.Elements)
			if !ok {
				return nil, nil, notDumpable(child, fmt.Sprintf("subdata value is %T", val))
			}
			d, err := childTable(f.Schema, v, child, present(els.Entries))
			if err != nil {
				return nil, nil, err
			}
			defs = append(defs, d...)
			row[m.Name] = Ref{Path: child}
		case ds.KindDispatch:
			els, ok := val.(*ds.Elements)
			if !ok {
				return nil, nil, notDumpable(child, fmt.Sprintf("dispatch value is %T", val))
			}
			d, err := dispatchTables(f, v, base, child, els)
			if err != nil {
				return nil, nil, err
			}
			defs = append(defs, d...)
			row[m.Name] = Ref{Path: child}
		default:
			row[m.Name] = val
		}
	}
	return defs, row, nil
}

// Root dumps rec as a one-row table at base followed by all child tables.
func Root(rec *ds.Record, s *ds.Schema, v ds.Version, base string) ([]*Definition, error) {
	defs, row, err := Dump(rec, s, v, base)
	if err != nil {
		return nil, err
	}
	top := &Definition{Schema: s.Name, Description: s.Description, Path: base, Columns: Columns(s, v), Rows: []Row{row}}
	return append([]*Definition{top}, defs...), nil
}

func present(entries []*ds.Record) []*ds.Record {
	out := make([]*ds.Record, 0, len(entries))
	for _, e := range entries {
		if e != nil {
			out = append(out, e)
		}
	}
	return out
}

// childTable dumps entries into one table at p, nested tables first.
func childTable(s *ds.Schema, v ds.Version, p string, entries []*ds.Record) ([]*Definition, error) {
	table := &Definition{Schema: s.Name, Description: s.Description, Path: p, Columns: Columns(s, v)}
	var nested []*Definition
	for idx, e := range entries {
		d, row, err := Dump(e, s, v, fmt.Sprintf("%s/%04d", p, idx))
		if err != nil {
			return nil, err
		}
		nested = append(nested, d...)
		if len(row) > 0 {
			table.Rows = append(table.Rows, row)
		}
	}
	return append(nested, table), nil
}

// dispatchTables writes one table per subtype (even when empty) plus the
// index table.
func dispatchTables(f *ds.Field, v ds.Version, base, index string, els *ds.Elements) ([]*Definition, error) {
	_, groups := els.BySubtype()
	for k := range groups {
		if _, ok := f.Subtypes[k]; !ok {
			return nil, notDumpable(index, "entries of unknown subtype "+k)
		}
	}
	keys := make([]string, 0, len(f.Subtypes))
	for k := range f.Subtypes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var defs []*Definition
	idx := &Definition{Schema: IndexSchema.Name, Description: IndexSchema.Description, Path: index, Columns: Columns(IndexSchema, v)}
	for _, k := range keys {
		p := base + "/" + k
		d, err := childTable(f.Subtypes[k], v, p, groups[k])
		if err != nil {
			return nil, err
		}
		defs = append(defs, d...)
		idx.Rows = append(idx.Rows, Row{"subtype": k, "filename": Ref{Path: p}})
	}
	return append(defs, idx), nil
}

func notDumpable(p, hint string) error {
	return ds.Issues{ds.PathAt(p).Issue(ds.CodeNotDumpable, -1, hint)}
}
