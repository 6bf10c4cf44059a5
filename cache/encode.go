package cache

import (
	"fmt"
	"math"

	ds "github.com/reoring/datskema"
)

// Value tags of the snapshot encoding.
const (
	tagInt      = "i"
	tagUint     = "u"
	tagFloat    = "f"
	tagString   = "s"
	tagInts     = "ai"
	tagUints    = "au"
	tagFloats   = "af"
	tagRecord   = "r"
	tagElements = "e"
)

// Floats are kept as IEEE bits so NaN and infinities in arrays survive JSON.
type node struct {
	T  string    `json:"t"`
	I  int64     `json:"i,omitempty"`
	U  uint64    `json:"u,omitempty"`
	S  string    `json:"s,omitempty"`
	AI []int64   `json:"ai,omitempty"`
	AU []uint64  `json:"au,omitempty"`
	R  *record   `json:"r,omitempty"`
	E  *elements `json:"e,omitempty"`
}

type record struct {
	Name string   `json:"name"`
	Keys []string `json:"keys"`
	Vals []node   `json:"vals"`
}

type elements struct {
	Entries []*record `json:"entries"`
	Kinds   []string  `json:"kinds,omitempty"`
}

func encodeRecord(r *ds.Record) (*record, error) {
	if r == nil {
		return nil, nil
	}
	out := &record{Name: r.Name, Keys: r.Keys()}
	out.Vals = make([]node, len(out.Keys))
	for i, k := range out.Keys {
		v, _ := r.Get(k)
		n, err := encodeValue(v)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", r.Name, k, err)
		}
		out.Vals[i] = n
	}
	return out, nil
}

func encodeValue(v any) (node, error) {
	switch x := v.(type) {
	case int64:
		return node{T: tagInt, I: x}, nil
	case uint64:
		return node{T: tagUint, U: x}, nil
	case float64:
		return node{T: tagFloat, U: math.Float64bits(x)}, nil
	case string:
		return node{T: tagString, S: x}, nil
	case []int64:
		return node{T: tagInts, AI: x}, nil
	case []uint64:
		return node{T: tagUints, AU: x}, nil
	case []float64:
		bits := make([]uint64, len(x))
		for i, f := range x {
			bits[i] = math.Float64bits(f)
		}
		return node{T: tagFloats, AU: bits}, nil
	case *ds.Record:
		r, err := encodeRecord(x)
		return node{T: tagRecord, R: r}, err
	case *ds.Elements:
		e := &elements{Kinds: x.Kinds, Entries: make([]*record, len(x.Entries))}
		for i, entry := range x.Entries {
			r, err := encodeRecord(entry)
			if err != nil {
				return node{}, fmt.Errorf("[%d]: %w", i, err)
			}
			e.Entries[i] = r
		}
		return node{T: tagElements, E: e}, nil
	}
	return node{}, fmt.Errorf("unsupported value type %T", v)
}

func decodeRecord(r *record) (*ds.Record, error) {
	if r == nil {
		return nil, nil
	}
	if len(r.Keys) != len(r.Vals) {
		return nil, fmt.Errorf("record %s: %d keys for %d values", r.Name, len(r.Keys), len(r.Vals))
	}
	out := ds.NewRecord(r.Name)
	for i, k := range r.Keys {
		v, err := decodeValue(r.Vals[i])
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", r.Name, k, err)
		}
		out.Set(k, v)
	}
	return out, nil
}

func decodeValue(n node) (any, error) {
	switch n.T {
	case tagInt:
		return n.I, nil
	case tagUint:
		return n.U, nil
	case tagFloat:
		return math.Float64frombits(n.U), nil
	case tagString:
		return n.S, nil
	case tagInts:
		return nonNil(n.AI), nil
	case tagUints:
		return nonNil(n.AU), nil
	case tagFloats:
		out := make([]float64, len(n.AU))
		for i, b := range n.AU {
			out[i] = math.Float64frombits(b)
		}
		return out, nil
	case tagRecord:
		if n.R == nil {
			return nil, fmt.Errorf("record tag without record")
		}
		return decodeRecord(n.R)
	case tagElements:
		if n.E == nil {
			return nil, fmt.Errorf("elements tag without elements")
		}
		e := &ds.Elements{Kinds: n.E.Kinds, Entries: make([]*ds.Record, len(n.E.Entries))}
		for i, entry := range n.E.Entries {
			r, err := decodeRecord(entry)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			e.Entries[i] = r
		}
		return e, nil
	}
	return nil, fmt.Errorf("unknown value tag %q", n.T)
}

// nonNil restores empty arrays that omitempty dropped.
func nonNil[T any](xs []T) []T {
	if xs == nil {
		return []T{}
	}
	return xs
}
