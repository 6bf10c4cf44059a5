package datskema

import (
	"sort"

	js "github.com/reoring/datskema/jsonschema"
)

// JSONSchema describes the JSON form of records read with s for v (see
// Record.MarshalJSON). Every reachable schema becomes one entry of $defs.
func JSONSchema(s *Schema, v Version) (*js.Schema, error) {
	if err := s.Validate(v); err != nil {
		return nil, err
	}
	defs := map[string]*js.Schema{}
	for _, c := range s.Reachable(v) {
		if _, ok := defs[c.Name]; ok {
			continue
		}
		defs[c.Name] = objectSchema(c, v)
	}
	return &js.Schema{SchemaURI: js.Draft, Title: s.Name, Description: s.Description, Ref: defRef(s), Defs: defs}, nil
}

func defRef(s *Schema) string { return "#/$defs/" + s.Name }

func objectSchema(s *Schema, v Version) *js.Schema {
	props := map[string]*js.Schema{}
	var req []string
	unknown := false
	for _, m := range s.Members(v, true) {
		if m.Access == ReadUnknown {
			unknown = true
			continue
		}
		if m.Access == Skip || m.Name == "" {
			continue
		}
		props[m.Name] = fieldSchema(&m.Field)
		req = append(req, m.Name)
	}
	sort.Strings(req)
	return &js.Schema{Type: "object", Description: s.Description, Properties: props, Required: req, AdditionalProperties: unknown}
}

func fieldSchema(f *Field) *js.Schema {
	switch f.Kind {
	case KindNumber:
		item := numberSchema(f)
		if f.IsScalar() {
			return item
		}
		return sized(&js.Schema{Type: "array", Items: item}, f.Length)
	case KindContinue:
		return numberSchema(f)
	case KindCharArray:
		out := &js.Schema{Type: "string"}
		if f.Length.Kind == LenLiteral {
			out.MaxLength = js.Int(f.Length.N)
		}
		return out
	case KindEnum:
		return enumSchema(f.Values)
	case KindEnumLookup:
		return enumSchema(lookupNames(f.Lookup))
	case KindGroup:
		return &js.Schema{Ref: defRef(f.Schema)}
	case KindSubdata:
		return sized(&js.Schema{Type: "array", Items: gated(f, &js.Schema{Ref: defRef(f.Schema)})}, f.Length)
	case KindDispatch:
		var alts []*js.Schema
		for _, k := range sortedKeys(f.Subtypes) {
			alts = append(alts, &js.Schema{
				Type: "object",
				Properties: map[string]*js.Schema{
					"$subtype": {Type: "string", Enum: []any{k}},
					"value":    {Ref: defRef(f.Subtypes[k])},
				},
				Required:             []string{"$subtype", "value"},
				AdditionalProperties: false,
			})
		}
		return sized(&js.Schema{Type: "array", Items: gated(f, &js.Schema{OneOf: alts})}, f.Length)
	}
	return &js.Schema{}
}

func numberSchema(f *Field) *js.Schema {
	wt := f.wireType()
	if wt.IsFloat() {
		return &js.Schema{Type: "number"}
	}
	lo, hi := wt.Range()
	return &js.Schema{Type: "integer", Minimum: js.Float(lo), Maximum: js.Float(hi)}
}

func enumSchema(names []string) *js.Schema {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	vals := make([]any, len(sorted))
	for i, n := range sorted {
		vals[i] = n
	}
	return &js.Schema{Type: "string", Enum: vals}
}

// gated allows null items for offset-gated placeholders.
func gated(f *Field, item *js.Schema) *js.Schema {
	if f.OffsetTo == nil {
		return item
	}
	return &js.Schema{OneOf: []*js.Schema{item, {Type: "null"}}}
}

func sized(arr *js.Schema, n LengthRule) *js.Schema {
	if n.Kind == LenLiteral {
		arr.MinItems, arr.MaxItems = js.Int(n.N), js.Int(n.N)
	}
	return arr
}
