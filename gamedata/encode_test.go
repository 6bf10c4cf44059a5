package gamedata_test

import (
	"bytes"
	"encoding/binary"
	"math"
	"sort"
	"testing"

	ds "github.com/reoring/datskema"
	"github.com/reoring/datskema/internal/wire"
)

// fields holds the values written for one record. Missing names are written
// as zero (or the smallest key of a lookup). Subdata values are []fields,
// with nil for entries skipped by an offset table; dispatch entries carry
// their raw discriminant under "$type".
type fields map[string]any

// encoder writes the wire form of records so tests can build data files
// without shipping binary fixtures.
type encoder struct {
	t   *testing.T
	v   ds.Version
	buf bytes.Buffer
}

func encode(t *testing.T, s *ds.Schema, v ds.Version, vals fields) []byte {
	t.Helper()
	e := &encoder{t: t, v: v}
	e.level(s, vals, map[string]any{})
	return e.buf.Bytes()
}

// level writes the entries of s. known collects the integers written so far
// for length rules and offset tables.
func (e *encoder) level(s *ds.Schema, vals fields, known map[string]any) {
	e.t.Helper()
	for _, en := range s.Entries(e.v) {
		f := &en.Field
		val := vals[en.Name]
		switch f.Kind {
		case ds.KindInclude:
			e.level(f.Schema, vals, known)
		case ds.KindGroup:
			sub, _ := val.(fields)
			e.level(f.Schema, sub, map[string]any{})
		case ds.KindSubdata, ds.KindDispatch:
			e.elements(en, val, known)
		case ds.KindContinue:
			n := int64(1)
			if x, ok := val.(int); ok {
				n = int64(x)
			}
			e.number(f.Wire, float64(n))
			if n == 0 {
				return
			}
		case ds.KindCharArray:
			str, _ := val.(string)
			n := e.length(f.Length, known)
			b := make([]byte, n)
			copy(b, str)
			e.buf.Write(b)
		case ds.KindEnum:
			e.number(f.Wire, toFloat(val))
		case ds.KindEnumLookup:
			raw := smallestKey(f.Lookup)
			if val != nil {
				raw = int64(toFloat(val))
			}
			e.number(f.Wire, float64(raw))
			known[en.Name] = raw
		default:
			if f.Length.Kind == ds.LenNone {
				x := toFloat(val)
				e.number(f.Wire, x)
				known[en.Name] = int64(x)
				continue
			}
			n := e.length(f.Length, known)
			xs := toFloats(val)
			ints := make([]int64, n)
			for i := 0; i < n; i++ {
				var x float64
				if i < len(xs) {
					x = xs[i]
				}
				e.number(f.Wire, x)
				ints[i] = int64(x)
			}
			known[en.Name] = ints
		}
	}
}

func (e *encoder) elements(en ds.Entry, val any, known map[string]any) {
	e.t.Helper()
	f := &en.Field
	n := e.length(f.Length, known)
	entries, _ := val.([]fields)
	var gate []int64
	if f.OffsetTo != nil {
		gate, _ = known[f.OffsetTo.Field].([]int64)
	}
	child := map[string]any{}
	for _, name := range f.Passed {
		child[name] = known[name]
	}
	for i := 0; i < n; i++ {
		if gate != nil && !accepts(f.OffsetTo.Pred, gate[i]) {
			continue
		}
		var vals fields
		if i < len(entries) {
			vals = entries[i]
		}
		ck := make(map[string]any, len(child))
		for k, v := range child {
			ck[k] = v
		}
		target := f.Schema
		if f.Kind == ds.KindDispatch {
			raw := int64(toFloat(vals["$type"]))
			e.number(f.Discriminant.Field.Wire, float64(raw))
			key := f.Discriminant.Field.Lookup[raw]
			target = f.Subtypes[key]
			if target == nil {
				e.t.Fatalf("no subtype for discriminant %d", raw)
			}
		}
		e.level(target, vals, ck)
	}
}

func accepts(p ds.Pred, v int64) bool {
	if p == ds.PredPositive {
		return v > 0
	}
	return v != 0
}

func (e *encoder) length(r ds.LengthRule, known map[string]any) int {
	e.t.Helper()
	switch r.Kind {
	case ds.LenLiteral:
		return r.N
	case ds.LenSibling:
		n, ok := known[r.Name].(int64)
		if !ok {
			e.t.Fatalf("length %s is not known", r.Name)
		}
		return int(n)
	case ds.LenWhen:
		if n, _ := known[r.Name].(int64); n != 0 {
			return e.length(*r.Then, known)
		}
		return e.length(*r.Else, known)
	}
	e.t.Fatalf("unsupported length rule %s", r)
	return 0
}

func (e *encoder) number(w string, x float64) {
	e.t.Helper()
	wt := wire.Parse(w)
	b := make([]byte, wt.Size())
	switch wt {
	case wire.Float32:
		binary.LittleEndian.PutUint32(b, math.Float32bits(float32(x)))
	case wire.Float64:
		binary.LittleEndian.PutUint64(b, math.Float64bits(x))
	case wire.Invalid:
		e.t.Fatalf("unknown wire type %q", w)
	default:
		u := uint64(int64(x))
		for i := range b {
			b[i] = byte(u >> (8 * i))
		}
	}
	e.buf.Write(b)
}

func toFloat(v any) float64 {
	switch x := v.(type) {
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case float64:
		return x
	}
	return 0
}

func toFloats(v any) []float64 {
	switch x := v.(type) {
	case []float64:
		return x
	case []int:
		out := make([]float64, len(x))
		for i, n := range x {
			out[i] = float64(n)
		}
		return out
	}
	return nil
}

func smallestKey(m map[int64]string) int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	if len(keys) == 0 {
		return 0
	}
	return keys[0]
}
