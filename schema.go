package datskema

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Schema describes one binary record kind. Its entries are computed from a
// Version by a pure function and memoized per Version.Key.
type Schema struct {
	Name        string
	File        string
	Description string

	members func(Version) []Entry
	cache   sync.Map // Version.Key() -> []Entry
}

// NewSchema creates a version-conditional schema.
func NewSchema(name, file, description string, members func(Version) []Entry) *Schema {
	return &Schema{Name: name, File: file, Description: description, members: members}
}

// Static creates a schema whose entries do not depend on the version.
func Static(name, file, description string, entries ...Entry) *Schema {
	return NewSchema(name, file, description, func(Version) []Entry { return entries })
}

// Entries returns the wire-ordered entries for v. The slice is shared and must
// not be modified.
func (s *Schema) Entries(v Version) []Entry {
	if s == nil || s.members == nil {
		return nil
	}
	key := v.Key()
	if es, ok := s.cache.Load(key); ok {
		return es.([]Entry)
	}
	es, _ := s.cache.LoadOrStore(key, s.members(v))
	return es.([]Entry)
}

// Member is an entry of a (possibly flattened) schema.
type Member struct {
	Entry
	// FromParent marks entries spliced in from an included schema.
	FromParent bool
}

// Members lists the entries for v. With flatten, Include entries are replaced
// by the included schema's members, recursively, marked FromParent.
func (s *Schema) Members(v Version, flatten bool) []Member {
	var out []Member
	s.appendMembers(&out, v, flatten, false, map[*Schema]bool{})
	return out
}

func (s *Schema) appendMembers(out *[]Member, v Version, flatten, fromParent bool, stack map[*Schema]bool) {
	if stack[s] {
		return
	}
	stack[s] = true
	defer delete(stack, s)
	for _, e := range s.Entries(v) {
		if flatten && e.Field.Kind == KindInclude && e.Field.Schema != nil {
			e.Field.Schema.appendMembers(out, v, true, true, stack)
			continue
		}
		*out = append(*out, Member{Entry: e, FromParent: fromParent})
	}
}

// Parents returns the schemas included directly by s for v.
func (s *Schema) Parents(v Version) []*Schema {
	var out []*Schema
	for _, e := range s.Entries(v) {
		if e.Field.Kind == KindInclude && e.Field.Schema != nil {
			out = append(out, e.Field.Schema)
		}
	}
	return out
}

// Reachable returns s and every schema referenced from it for v, in
// depth-first discovery order.
func (s *Schema) Reachable(v Version) []*Schema {
	var out []*Schema
	seen := map[*Schema]bool{}
	var walk func(*Schema)
	walk = func(c *Schema) {
		if c == nil || seen[c] {
			return
		}
		seen[c] = true
		out = append(out, c)
		for _, e := range c.Entries(v) {
			for _, n := range nestedSchemas(&e.Field) {
				walk(n)
			}
		}
	}
	walk(s)
	return out
}

// nestedSchemas lists the schemas a field refers to; dispatch subtypes come in
// sorted key order.
func nestedSchemas(f *Field) []*Schema {
	switch f.Kind {
	case KindGroup, KindInclude, KindSubdata:
		if f.Schema != nil {
			return []*Schema{f.Schema}
		}
	case KindDispatch:
		keys := sortedKeys(f.Subtypes)
		out := make([]*Schema, 0, len(keys))
		for _, k := range keys {
			out = append(out, f.Subtypes[k])
		}
		return out
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Validate checks every schema reachable from s for v. All problems are
// collected into Issues.
func (s *Schema) Validate(v Version) error {
	var iss Issues
	for _, c := range s.Reachable(v) {
		iss = append(iss, c.validateLevel(v)...)
	}
	if cyc := s.includeCycle(v); cyc != nil {
		names := make([]string, len(cyc))
		for i, c := range cyc {
			names[i] = c.Name
		}
		iss = AppendIssues(iss, newIssue("/"+cyc[0].Name, CodeIncludeCycle, -1, strings.Join(names, " -> "), "cycle", strings.Join(names, ",")))
	}
	if len(iss) > 0 {
		return iss
	}
	return nil
}

// includeCycle returns the first Include chain that loops back on itself.
func (s *Schema) includeCycle(v Version) []*Schema {
	const (
		white = iota
		grey
		black
	)
	color := map[*Schema]int{}
	var stack []*Schema
	var found []*Schema
	var visit func(*Schema) bool
	visit = func(c *Schema) bool {
		color[c] = grey
		stack = append(stack, c)
		for _, p := range c.Parents(v) {
			switch color[p] {
			case grey:
				for i, x := range stack {
					if x == p {
						found = append(append([]*Schema{}, stack[i:]...), p)
						break
					}
				}
				return true
			case white:
				if visit(p) {
					return true
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[c] = black
		return false
	}
	for _, c := range s.Reachable(v) {
		if color[c] == white && visit(c) {
			return found
		}
	}
	return nil
}

func (s *Schema) validateLevel(v Version) Issues {
	var iss Issues
	at := RootPath().Field(s.Name)
	seen := map[string]bool{}
	for i, e := range s.Entries(v) {
		p := at.Index(i)
		if e.Name != "" {
			p = at.Field(e.Name)
			if seen[e.Name] {
				iss = append(iss, p.Issue(CodeSchemaDefinition, -1, "duplicate field name "+e.Name))
			}
			seen[e.Name] = true
		}
		if e.Access == ReadGen && e.Name == "" && e.Field.Kind != KindInclude {
			iss = append(iss, p.Issue(CodeSchemaDefinition, -1, "exported field needs a name"))
		}
		iss = append(iss, validateEntry(p, e)...)
	}
	return iss
}

func validateEntry(p PathRef, e Entry) Issues {
	f := &e.Field
	bad := func(code, hint string) Issues { return Issues{p.Issue(code, -1, hint)} }
	storage := func(allowed ...Storage) Issues {
		if e.Access == Skip || (e.Access != ReadGen && e.Storage == StorageNone) {
			return nil
		}
		for _, a := range allowed {
			if e.Storage == a {
				return nil
			}
		}
		names := make([]string, len(allowed))
		for i, a := range allowed {
			names[i] = a.String()
		}
		return Issues{p.Issue(CodeInvalidStorage, -1,
			fmt.Sprintf("%s cannot be stored as %s; expected %s", f.Kind, e.Storage, strings.Join(names, ", ")))}
	}
	needWire := func(integer bool) Issues {
		wt := f.wireType()
		if !wt.Valid() {
			return bad(CodeUnknownWireType, fmt.Sprintf("unknown wire type %q", f.Wire))
		}
		if integer && !wt.IsInteger() {
			return bad(CodeSchemaDefinition, fmt.Sprintf("%s needs an integer wire type, got %s", f.Kind, f.Wire))
		}
		return nil
	}
	switch f.Kind {
	case KindNumber:
		if iss := needWire(false); iss != nil {
			return iss
		}
		wt := f.wireType()
		if f.Length.Kind == LenAny {
			return bad(CodeSchemaDefinition, "any-length is only valid for char arrays")
		}
		if f.IsScalar() {
			if wt.IsFloat() {
				return storage(StorageFloat)
			}
			return storage(StorageInt, StorageBool, StorageID, StorageBitfield)
		}
		if wt.IsFloat() {
			return storage(StorageArrayFloat)
		}
		return storage(StorageArrayInt, StorageArrayBool, StorageArrayID)
	case KindContinue:
		if iss := needWire(true); iss != nil {
			return iss
		}
		return storage(StorageBool, StorageInt)
	case KindCharArray:
		if f.Length.Kind == LenNone {
			return bad(CodeSchemaDefinition, "char array needs a length")
		}
		return storage(StorageString)
	case KindEnum:
		if iss := needWire(true); iss != nil {
			return iss
		}
		if len(f.Values) == 0 {
			return bad(CodeSchemaDefinition, "enum "+f.TypeName+" has no values")
		}
		return storage(StorageID, StorageInt, StorageString)
	case KindEnumLookup:
		if iss := needWire(true); iss != nil {
			return iss
		}
		if len(f.Lookup) == 0 {
			return bad(CodeSchemaDefinition, "enum lookup "+f.TypeName+" is empty")
		}
		return storage(StorageID, StorageInt, StorageBitfield, StorageString)
	case KindGroup:
		if f.Schema == nil {
			return bad(CodeSchemaDefinition, "group without schema")
		}
		return storage(StorageContainer)
	case KindInclude:
		if f.Schema == nil {
			return bad(CodeSchemaDefinition, "include without schema")
		}
		return nil
	case KindSubdata:
		if f.Schema == nil {
			return bad(CodeSchemaDefinition, "subdata without schema")
		}
		if f.Length.Kind == LenNone || f.Length.Kind == LenAny {
			return bad(CodeSchemaDefinition, "subdata needs a count")
		}
		return storage(StorageArrayContainer)
	case KindDispatch:
		if f.Discriminant == nil {
			return bad(CodeSchemaDefinition, "dispatch without discriminant")
		}
		switch f.Discriminant.Field.Kind {
		case KindNumber, KindEnum, KindEnumLookup:
			if !f.Discriminant.Field.IsScalar() {
				return bad(CodeSchemaDefinition, "dispatch discriminant must be a scalar")
			}
		default:
			return bad(CodeSchemaDefinition, "dispatch discriminant must be a number or enum")
		}
		if a := f.Discriminant.Access; a == Skip || a == ReadUnknown {
			return bad(CodeSchemaDefinition, fmt.Sprintf("dispatch discriminant must be decoded, not %s", a))
		}
		if iss := validateEntry(p.Field("discriminant"), *f.Discriminant); iss != nil {
			return iss
		}
		if len(f.Subtypes) == 0 {
			return bad(CodeSchemaDefinition, "dispatch without subtypes")
		}
		for _, k := range sortedKeys(f.Subtypes) {
			if f.Subtypes[k] == nil {
				return bad(CodeSchemaDefinition, "dispatch subtype "+k+" has no schema")
			}
		}
		if f.Length.Kind == LenNone || f.Length.Kind == LenAny {
			return bad(CodeSchemaDefinition, "dispatch needs a count")
		}
		return storage(StorageArrayContainer)
	}
	return bad(CodeSchemaDefinition, fmt.Sprintf("unknown field kind %d", f.Kind))
}
