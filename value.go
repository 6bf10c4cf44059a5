package datskema

import (
	"fmt"
	"math"
	"strconv"
)

// ValueKind tags a Value node.
type ValueKind int

const (
	ValueInvalid ValueKind = iota
	ValueInt
	ValueFloat
	ValueBool
	ValueID
	ValueBitfield
	ValueString
	ValueContainer
	ValueArray
	// Diff results.
	ValueNoDiff
	ValueLeftMissing
	ValueRightMissing
)

func (k ValueKind) String() string {
	switch k {
	case ValueInt:
		return "int"
	case ValueFloat:
		return "float"
	case ValueBool:
		return "bool"
	case ValueID:
		return "id"
	case ValueBitfield:
		return "bitfield"
	case ValueString:
		return "string"
	case ValueContainer:
		return "container"
	case ValueArray:
		return "array"
	case ValueNoDiff:
		return "nodiff"
	case ValueLeftMissing:
		return "left_missing"
	case ValueRightMissing:
		return "right_missing"
	}
	return "invalid"
}

// Value is a schema-independent mirror of the exported part of a Record.
type Value struct {
	Kind ValueKind `json:"kind"`
	Name string    `json:"name,omitempty"`

	Int   int64   `json:"int,omitempty"`
	Float float64 `json:"float,omitempty"`
	Bool  bool    `json:"bool,omitempty"`
	Str   string  `json:"str,omitempty"`

	// Members of a container, in wire order.
	Members []*Value `json:"members,omitempty"`
	// Elems of an array, all of kind Elem.
	Elems []*Value    `json:"elems,omitempty"`
	Elem  ValueKind   `json:"elem,omitempty"`
	// Ref is the compared node of NoDiff, or the present side of a
	// Left/RightMissing node.
	Ref *Value `json:"ref,omitempty"`
}

// Member returns the container member called name.
func (v *Value) Member(name string) (*Value, bool) {
	if v == nil || v.Kind != ValueContainer {
		return nil, false
	}
	for _, m := range v.Members {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}

// Len returns the arity of a container or array.
func (v *Value) Len() int {
	switch v.Kind {
	case ValueContainer:
		return len(v.Members)
	case ValueArray:
		return len(v.Elems)
	}
	return 0
}

// Key renders a scalar node for use as a map key.
func (v *Value) Key() string {
	switch v.Kind {
	case ValueInt, ValueID, ValueBitfield:
		return strconv.FormatInt(v.Int, 10)
	case ValueFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case ValueBool:
		return strconv.FormatBool(v.Bool)
	case ValueString:
		return v.Str
	}
	return ""
}

// KeyedOpt relaxes Keyed.
type KeyedOpt struct {
	SkipNotFound  bool
	SkipDuplicate bool
}

// Keyed converts an array of containers into a container whose members are
// the array's containers, named by the value of their member key.
func (v *Value) Keyed(key string, opt KeyedOpt) (*Value, error) {
	if v.Kind != ValueArray || v.Elem != ValueContainer {
		return nil, singleIssue("/"+v.Name, CodeInvalidType, -1,
			fmt.Sprintf("keyed view needs an array of containers, got %s", v.Kind))
	}
	out := &Value{Kind: ValueContainer, Name: v.Name}
	seen := map[string]bool{}
	for i, c := range v.Elems {
		km, ok := c.Member(key)
		if !ok {
			if opt.SkipNotFound {
				continue
			}
			return nil, singleIssue(fmt.Sprintf("/%s/%d", v.Name, i), CodeInvalidType, -1, "container has no member "+key)
		}
		k := km.Key()
		if seen[k] {
			if opt.SkipDuplicate {
				continue
			}
			return nil, singleIssue(fmt.Sprintf("/%s/%d", v.Name, i), CodeInvalidType, -1, "duplicate key "+k)
		}
		seen[k] = true
		cp := *c
		cp.Name = k
		out.Members = append(out.Members, &cp)
	}
	return out, nil
}

// Diff compares a with b. Equal nodes yield NoDiff; numbers yield b-a,
// bitfields the XOR and other scalars b's value. Containers diff by member
// name and arrays by index, with Left/RightMissing for unmatched members.
func Diff(a, b *Value) (*Value, error) {
	if a.Kind != b.Kind || a.Kind == ValueArray && a.Elem != b.Elem {
		return nil, singleIssue("/"+a.Name, CodeInvalidType, -1,
			fmt.Sprintf("%s cannot be diffed with %s", a.Kind, b.Kind))
	}
	same := &Value{Kind: ValueNoDiff, Name: a.Name, Ref: a}
	switch a.Kind {
	case ValueInt:
		if a.Int == b.Int {
			return same, nil
		}
		return &Value{Kind: ValueInt, Name: a.Name, Int: b.Int - a.Int}, nil
	case ValueFloat:
		if isClose(a.Float, b.Float, 1e-7) {
			return same, nil
		}
		return &Value{Kind: ValueFloat, Name: a.Name, Float: b.Float - a.Float}, nil
	case ValueBool:
		if a.Bool == b.Bool {
			return same, nil
		}
		return &Value{Kind: ValueBool, Name: a.Name, Bool: b.Bool}, nil
	case ValueID:
		if a.Int == b.Int {
			return same, nil
		}
		return &Value{Kind: ValueID, Name: a.Name, Int: b.Int}, nil
	case ValueBitfield:
		if a.Int == b.Int {
			return same, nil
		}
		return &Value{Kind: ValueBitfield, Name: a.Name, Int: a.Int ^ b.Int}, nil
	case ValueString:
		if a.Str == b.Str {
			return same, nil
		}
		return &Value{Kind: ValueString, Name: a.Name, Str: b.Str}, nil
	case ValueContainer:
		out := &Value{Kind: ValueContainer, Name: a.Name}
		changed := false
		for _, m := range a.Members {
			var d *Value
			if o, ok := b.Member(m.Name); ok {
				var err error
				if d, err = Diff(m, o); err != nil {
					return nil, err
				}
			} else {
				d = &Value{Kind: ValueRightMissing, Name: m.Name, Ref: m}
			}
			changed = changed || d.Kind != ValueNoDiff
			out.Members = append(out.Members, d)
		}
		for _, o := range b.Members {
			if _, ok := a.Member(o.Name); !ok {
				out.Members = append(out.Members, &Value{Kind: ValueLeftMissing, Name: o.Name, Ref: o})
				changed = true
			}
		}
		if !changed {
			return same, nil
		}
		return out, nil
	case ValueArray:
		out := &Value{Kind: ValueArray, Name: a.Name, Elem: a.Elem}
		changed := false
		n := min(len(a.Elems), len(b.Elems))
		for i := 0; i < n; i++ {
			d, err := Diff(a.Elems[i], b.Elems[i])
			if err != nil {
				return nil, err
			}
			changed = changed || d.Kind != ValueNoDiff
			out.Elems = append(out.Elems, d)
		}
		for _, o := range b.Elems[n:] {
			out.Elems = append(out.Elems, &Value{Kind: ValueLeftMissing, Name: o.Name, Ref: o})
			changed = true
		}
		for _, m := range a.Elems[n:] {
			out.Elems = append(out.Elems, &Value{Kind: ValueRightMissing, Name: m.Name, Ref: m})
			changed = true
		}
		if !changed {
			return same, nil
		}
		return out, nil
	}
	return nil, singleIssue("/"+a.Name, CodeInvalidType, -1, a.Kind.String()+" cannot be diffed")
}

func isClose(a, b, rel float64) bool {
	if a == b {
		return true
	}
	if math.IsInf(a, 0) || math.IsInf(b, 0) {
		return false
	}
	return math.Abs(a-b) <= rel*math.Max(math.Abs(a), math.Abs(b))
}

func scalarKind(st Storage) ValueKind {
	switch st.Elem() {
	case StorageInt:
		return ValueInt
	case StorageFloat:
		return ValueFloat
	case StorageBool:
		return ValueBool
	case StorageID:
		return ValueID
	case StorageBitfield:
		return ValueBitfield
	case StorageString:
		return ValueString
	case StorageContainer:
		return ValueContainer
	}
	return ValueInvalid
}

// scalarValue builds a node for one decoded element.
func scalarValue(name string, st Storage, v any) *Value {
	n := &Value{Kind: scalarKind(st), Name: name}
	switch x := v.(type) {
	case int64:
		n.Int, n.Float, n.Bool = x, float64(x), x != 0
	case uint64:
		n.Int, n.Float, n.Bool = int64(x), float64(x), x != 0
	case float64:
		n.Int, n.Float, n.Bool = int64(x), x, x != 0
	case string:
		n.Str = x
	}
	return n.clean()
}

// clean zeroes the fields that do not belong to the node's kind.
func (v *Value) clean() *Value {
	switch v.Kind {
	case ValueInt, ValueID, ValueBitfield:
		v.Float, v.Bool = 0, false
	case ValueFloat:
		v.Int, v.Bool = 0, false
	case ValueBool:
		v.Int, v.Float = 0, 0
	}
	return v
}

// arrayValue builds an array node from a decoded number array.
func arrayValue(name string, st Storage, v any) *Value {
	out := &Value{Kind: ValueArray, Name: name, Elem: scalarKind(st)}
	switch a := v.(type) {
	case []int64:
		for _, x := range a {
			out.Elems = append(out.Elems, scalarValue(name, st, x))
		}
	case []uint64:
		for _, x := range a {
			out.Elems = append(out.Elems, scalarValue(name, st, x))
		}
	case []float64:
		for _, x := range a {
			out.Elems = append(out.Elems, scalarValue(name, st, x))
		}
	}
	return out
}
