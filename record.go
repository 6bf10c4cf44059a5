package datskema

import (
	"math"
	"slices"
)

// Record is one decoded instance of a Schema: an ordered attribute bag.
//
// Values are int64, uint64, float64, string, []int64, []uint64, []float64,
// *Record or *Elements.
type Record struct {
	// Name is the name of the schema the record was read with.
	Name string
	keys []string
	vals map[string]any
}

// NewRecord creates an empty record for the named schema.
func NewRecord(name string) *Record {
	return &Record{Name: name, vals: map[string]any{}}
}

// Set stores v under k, keeping the first insertion position of k.
func (r *Record) Set(k string, v any) {
	if r.vals == nil {
		r.vals = map[string]any{}
	}
	if _, ok := r.vals[k]; !ok {
		r.keys = append(r.keys, k)
	}
	r.vals[k] = v
}

// Get returns the value stored under k.
func (r *Record) Get(k string) (any, bool) {
	if r == nil {
		return nil, false
	}
	v, ok := r.vals[k]
	return v, ok
}

// Keys returns the keys in insertion (wire) order.
func (r *Record) Keys() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.keys...)
}

// Len returns the number of stored keys.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// Int returns an integer value stored under k.
func (r *Record) Int(k string) (int64, bool) {
	v, ok := r.Get(k)
	if !ok {
		return 0, false
	}
	return asInt(v)
}

// Ints returns an integer array stored under k.
func (r *Record) Ints(k string) ([]int64, bool) {
	v, ok := r.Get(k)
	if !ok {
		return nil, false
	}
	switch a := v.(type) {
	case []int64:
		return a, true
	case []uint64:
		out := make([]int64, len(a))
		for i, x := range a {
			out[i] = int64(x)
		}
		return out, true
	}
	return nil, false
}

// String returns a string value stored under k.
func (r *Record) String(k string) (string, bool) {
	v, ok := r.Get(k)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Sub returns the sub-record stored under k.
func (r *Record) Sub(k string) (*Record, bool) {
	v, ok := r.Get(k)
	if !ok {
		return nil, false
	}
	s, ok := v.(*Record)
	return s, ok
}

// Elements returns the entries of a subdata or dispatch field.
func (r *Record) Elements(k string) (*Elements, bool) {
	v, ok := r.Get(k)
	if !ok {
		return nil, false
	}
	e, ok := v.(*Elements)
	return e, ok
}

func asInt(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case uint64:
		return int64(x), true
	}
	return 0, false
}

// Equal reports whether r and o hold the same keys in the same order with
// bit-identical values.
func (r *Record) Equal(o *Record) bool {
	if r == nil || o == nil {
		return r == o
	}
	if r.Name != o.Name || !slices.Equal(r.keys, o.keys) {
		return false
	}
	for _, k := range r.keys {
		if !valueEqual(r.vals[k], o.vals[k]) {
			return false
		}
	}
	return true
}

func valueEqual(a, b any) bool {
	switch x := a.(type) {
	case int64, uint64, string:
		return a == b
	case float64:
		y, ok := b.(float64)
		return ok && math.Float64bits(x) == math.Float64bits(y)
	case []int64:
		y, ok := b.([]int64)
		return ok && slices.Equal(x, y)
	case []uint64:
		y, ok := b.([]uint64)
		return ok && slices.Equal(x, y)
	case []float64:
		y, ok := b.([]float64)
		return ok && slices.EqualFunc(x, y, func(p, q float64) bool { return math.Float64bits(p) == math.Float64bits(q) })
	case *Record:
		y, ok := b.(*Record)
		return ok && x.Equal(y)
	case *Elements:
		y, ok := b.(*Elements)
		return ok && x.Equal(y)
	}
	return false
}

// Elements holds the entries of a subdata or dispatch field in wire order.
// Nil entries are offset-gated placeholders. Kinds is parallel to Entries for
// dispatch fields and holds each entry's subtype key.
type Elements struct {
	Entries []*Record
	Kinds   []string
}

// Len returns the number of entries including placeholders.
func (e *Elements) Len() int {
	if e == nil {
		return 0
	}
	return len(e.Entries)
}

// Kind returns the subtype key of entry i ("" for subdata).
func (e *Elements) Kind(i int) string {
	if e == nil || i >= len(e.Kinds) {
		return ""
	}
	return e.Kinds[i]
}

// BySubtype groups the non-placeholder entries per subtype key. keys lists the
// subtypes in order of first appearance.
func (e *Elements) BySubtype() (keys []string, groups map[string][]*Record) {
	groups = map[string][]*Record{}
	if e == nil {
		return nil, groups
	}
	for i, rec := range e.Entries {
		if rec == nil {
			continue
		}
		k := e.Kind(i)
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], rec)
	}
	return keys, groups
}

// Equal reports whether both element lists hold equal entries and kinds.
func (e *Elements) Equal(o *Elements) bool {
	if e == nil || o == nil {
		return e == o
	}
	if len(e.Entries) != len(o.Entries) || !slices.Equal(e.Kinds, o.Kinds) {
		return false
	}
	for i := range e.Entries {
		if !e.Entries[i].Equal(o.Entries[i]) {
			return false
		}
	}
	return true
}
