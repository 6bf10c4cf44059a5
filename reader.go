package datskema

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/reoring/datskema/internal/wire"
)

// Read decodes one record of s from buf starting at offset. It returns the
// cursor after the record, the record itself and its value tree. Any failure
// aborts the whole read; no partial result is returned.
func Read(s *Schema, buf []byte, offset int, opt ReadOpt) (int, *Record, *Value, error) {
	if s == nil {
		return offset, nil, nil, singleIssue("/", CodeSchemaDefinition, -1, "nil schema")
	}
	if offset < 0 || offset > len(buf) {
		return offset, nil, nil, singleIssue("/", CodeOverrun, int64(offset), fmt.Sprintf("start offset outside of %d byte buffer", len(buf)))
	}
	md := opt.MaxDepth
	if md <= 0 {
		md = DefaultMaxDepth
	}
	r := &reader{buf: buf, v: opt.Version, maxDepth: md}
	rec := NewRecord(s.Name)
	var nodes []*Value
	end, err := r.level(s, rec, &nodes, offset, RootPath(), nil, 0, true)
	if err != nil {
		return offset, nil, nil, err
	}
	if opt.Exact && end != len(buf) {
		return offset, nil, nil, singleIssue("/", CodeSizeMismatch, int64(end),
			fmt.Sprintf("read ended at %d of %d bytes", end, len(buf)), "end", end, "size", len(buf))
	}
	return end, rec, &Value{Kind: ValueContainer, Name: s.Name, Members: nodes}, nil
}

// reader walks one buffer. It is not reentrant.
type reader struct {
	buf      []byte
	v        Version
	maxDepth int
}

// level reads the entries of s into rec. gen is false when the enclosing
// entry is not exported, so no value nodes are produced below it.
func (r *reader) level(s *Schema, rec *Record, nodes *[]*Value, off int, at PathRef, passed map[string]any, depth int, gen bool) (int, error) {
	if depth > r.maxDepth {
		return off, singleIssue(at.Pointer(), CodeMaxDepth, int64(off), fmt.Sprintf("depth %d exceeds %d", depth, r.maxDepth))
	}
	lookup := func(name string) (int64, bool) {
		if v, ok := rec.Get(name); ok {
			return asInt(v)
		}
		if v, ok := passed[name]; ok {
			return asInt(v)
		}
		return 0, false
	}
	stopped := false
	for i, e := range s.Entries(r.v) {
		f := &e.Field
		exported := gen && e.Access == ReadGen
		p := at.Index(i)
		if e.Name != "" {
			p = at.Field(e.Name)
		}
		if stopped {
			r.defaults(e, rec, nodes, exported)
			continue
		}
		var err error
		switch f.Kind {
		case KindInclude:
			off, err = r.level(f.Schema, rec, nodes, off, at, passed, depth+1, exported)
		case KindGroup:
			sub := NewRecord(f.Schema.Name)
			var subNodes []*Value
			off, err = r.level(f.Schema, sub, &subNodes, off, p, nil, depth+1, exported)
			if err == nil {
				r.store(e, rec, sub)
				if exported {
					*nodes = append(*nodes, &Value{Kind: ValueContainer, Name: e.Name, Members: subNodes})
				}
			}
		case KindSubdata, KindDispatch:
			off, err = r.elements(e, rec, nodes, off, p, lookup, passed, depth, exported)
		default:
			var res primitive
			res, err = r.primitive(e, off, p, lookup)
			if err == nil {
				name := e.Name
				if e.Access == ReadUnknown {
					name = fmt.Sprintf("unknown-0x%08x", off)
				}
				off = res.end
				if e.Access != Skip && name != "" {
					rec.Set(name, res.val)
				}
				if exported {
					*nodes = append(*nodes, res.node(e))
				}
				stopped = res.stop
			}
		}
		if err != nil {
			return off, err
		}
	}
	return off, nil
}

func (r *reader) store(e Entry, rec *Record, v any) {
	if e.Access != Skip && e.Name != "" {
		rec.Set(e.Name, v)
	}
}

// primitive is the result of decoding one leaf entry.
type primitive struct {
	end  int
	val  any  // record value
	raw  any  // raw wire value(s) before enum mapping
	stop bool // sentinel fired
	arr  bool // val is an array
}

func (p primitive) node(e Entry) *Value {
	if p.arr {
		return arrayValue(e.Name, e.Storage, p.val)
	}
	if e.Storage == StorageString {
		return scalarValue(e.Name, e.Storage, p.val)
	}
	return scalarValue(e.Name, e.Storage, p.raw)
}

func (r *reader) primitive(e Entry, off int, at PathRef, lookup lookupFunc) (primitive, error) {
	f := &e.Field
	wt := f.wireType()
	if !wt.Valid() {
		return primitive{}, singleIssue(at.Pointer(), CodeUnknownWireType, int64(off), fmt.Sprintf("unknown wire type %q", f.Wire))
	}
	count := int64(1)
	switch f.Length.Kind {
	case LenNone:
	case LenAny:
		if f.Kind != KindCharArray {
			return primitive{}, singleIssue(at.Pointer(), CodeLengthUnresolved, int64(off), "any-length outside of a char array")
		}
		count = int64(wire.NulLength(r.buf[off:]))
	default:
		n, missing, ok := f.Length.resolve(lookup)
		if !ok {
			return primitive{}, singleIssue(at.Pointer(), CodeLengthUnresolved, int64(off),
				fmt.Sprintf("length field %q is not known here", missing), "name", missing)
		}
		if n < 0 {
			return primitive{}, singleIssue(at.Pointer(), CodeNegativeLength, int64(off),
				fmt.Sprintf("invalid length %d < 0", n), "length", n)
		}
		count = n
	}
	width := int64(wt.Size())
	left := int64(len(r.buf) - off)
	if count > left/width {
		return primitive{}, singleIssue(at.Pointer(), CodeOverrun, int64(off),
			fmt.Sprintf("need %d bytes, %d left", count*width, left), "need", count*width, "left", left)
	}
	size := int(count * width)
	res := primitive{end: off + size}
	if e.Access == Skip {
		return res, nil
	}
	b := r.buf[off : off+size]

	switch f.Kind {
	case KindCharArray:
		str := wire.CString(b)
		res.val, res.raw = str, str
		return res, nil
	case KindNumber:
		if !f.IsScalar() {
			res.arr = true
			res.val = decodeArray(wt, b, int(count))
			res.raw = res.val
			if f.Check == CheckZero && !allZero(b) {
				return res, singleIssue(at.Pointer(), CodeVerifyFailed, int64(off), "expected all-zero data")
			}
			return res, nil
		}
		switch {
		case wt.IsFloat():
			x := wt.Float(b)
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return res, singleIssue(at.Pointer(), CodeNonFinite, int64(off), fmt.Sprintf("invalid float %v", x))
			}
			res.val = x
		case wt == wire.Uint64:
			res.val = wire.Uint(b)
		default:
			res.val = wt.Int(b)
		}
		res.raw = res.val
		if f.Check == CheckZero && !allZero(b) {
			return res, singleIssue(at.Pointer(), CodeVerifyFailed, int64(off), "expected all-zero data")
		}
		return res, nil
	case KindContinue:
		x := wt.Int(b)
		res.val, res.raw, res.stop = x, x, x == 0
		return res, nil
	case KindEnum:
		x := wt.Int(b)
		res.raw = x
		if x < 0 || x >= int64(len(f.Values)) {
			return res, unknownEnum(at, off, x, f.TypeName, f.Values)
		}
		res.val = f.Values[x]
		return res, nil
	case KindEnumLookup:
		x := wt.Int(b)
		res.raw = x
		name, ok := f.Lookup[x]
		if !ok {
			return res, unknownEnum(at, off, x, f.TypeName, lookupNames(f.Lookup))
		}
		res.val = name
		return res, nil
	}
	return res, singleIssue(at.Pointer(), CodeSchemaDefinition, int64(off), fmt.Sprintf("%s is not a leaf field", f.Kind))
}

func unknownEnum(at PathRef, off int, raw int64, typeName string, valid []string) error {
	sorted := append([]string(nil), valid...)
	sort.Strings(sorted)
	hint := fmt.Sprintf("failed to find %d (%#x) in lookup dict; valid are: %s", raw, raw, strings.Join(sorted, ", "))
	return singleIssue(at.Pointer(), CodeUnknownEnum, int64(off), hint, "raw", raw, "valid", strings.Join(sorted, ", "), "type", typeName)
}

func lookupNames(m map[int64]string) []string {
	out := make([]string, 0, len(m))
	for _, n := range m {
		out = append(out, n)
	}
	return out
}

func decodeArray(wt wire.Type, b []byte, n int) any {
	w := wt.Size()
	switch {
	case wt.IsFloat():
		out := make([]float64, n)
		for i := range out {
			out[i] = wt.Float(b[i*w:])
		}
		return out
	case wt == wire.Uint64:
		out := make([]uint64, n)
		for i := range out {
			out[i] = wire.Uint(b[i*w:])
		}
		return out
	}
	out := make([]int64, n)
	for i := range out {
		out[i] = wt.Int(b[i*w:])
	}
	return out
}

func allZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}

// elements reads a subdata or dispatch field.
func (r *reader) elements(e Entry, rec *Record, nodes *[]*Value, off int, at PathRef, lookup lookupFunc, passed map[string]any, depth int, exported bool) (int, error) {
	f := &e.Field
	n, missing, ok := f.Length.resolve(lookup)
	if !ok || f.Length.Kind == LenAny || f.Length.Kind == LenNone {
		return off, singleIssue(at.Pointer(), CodeLengthUnresolved, int64(off),
			fmt.Sprintf("count field %q is not known here", missing), "name", missing)
	}
	if n < 0 {
		return off, singleIssue(at.Pointer(), CodeNegativeLength, int64(off), fmt.Sprintf("invalid length %d < 0", n), "length", n)
	}
	var childPassed map[string]any
	if len(f.Passed) > 0 {
		childPassed = make(map[string]any, len(f.Passed))
		for _, name := range f.Passed {
			v, ok := rec.Get(name)
			if !ok {
				v, ok = passed[name]
			}
			if !ok {
				return off, singleIssue(at.Pointer(), CodeLengthUnresolved, int64(off),
					fmt.Sprintf("passed field %q is not known here", name), "name", name)
			}
			childPassed[name] = v
		}
	}
	var gate []int64
	if f.OffsetTo != nil {
		gate, ok = rec.Ints(f.OffsetTo.Field)
		if !ok {
			return off, singleIssue(at.Pointer(), CodeLengthUnresolved, int64(off),
				fmt.Sprintf("offset table %q is not known here", f.OffsetTo.Field), "name", f.OffsetTo.Field)
		}
		if len(gate) > 0 && int64(len(gate)) < n {
			return off, singleIssue(at.Pointer(), CodeLengthUnresolved, int64(off),
				fmt.Sprintf("offset table %q has %d of %d entries", f.OffsetTo.Field, len(gate), n))
		}
	}

	if n > math.MaxInt32 {
		return off, singleIssue(at.Pointer(), CodeOverrun, int64(off),
			fmt.Sprintf("count %d exceeds the %d byte buffer", n, len(r.buf)), "length", n)
	}
	// n comes from the file; the capacity stays within what the buffer or
	// the offset table can describe.
	capacity := min(n, int64(len(r.buf)-off)+int64(len(gate)))
	elems := &Elements{Entries: make([]*Record, 0, capacity)}
	if f.Kind == KindDispatch {
		elems.Kinds = make([]string, 0, capacity)
	}
	var arr []*Value
	for i := 0; i < int(n); i++ {
		// Gated entries become placeholders; reading continues at the
		// current cursor, not at the gated offset.
		if len(gate) > 0 && !f.OffsetTo.Pred.accept(gate[i]) {
			elems.Entries = append(elems.Entries, nil)
			if elems.Kinds != nil {
				elems.Kinds = append(elems.Kinds, "")
			}
			continue
		}
		ep := at.Index(i)
		target := f.Schema
		var childNodes []*Value
		if f.Kind == KindDispatch {
			d := *f.Discriminant
			res, err := r.primitive(d, off, ep.Field(discName(d)), lookup)
			if err != nil {
				return off, err
			}
			key := dispatchKey(res.val)
			sub, ok := f.Subtypes[key]
			if !ok {
				valid := strings.Join(sortedKeys(f.Subtypes), ", ")
				return off, singleIssue(ep.Pointer(), CodeDiscriminatorUnknown, int64(off),
					fmt.Sprintf("no subtype for %s; valid are: %s", key, valid), "value", key, "valid", valid)
			}
			off = res.end
			target = sub
			elems.Kinds = append(elems.Kinds, key)
			if exported && d.Access == ReadGen {
				childNodes = append(childNodes, res.node(d))
			}
		}
		child := NewRecord(target.Name)
		var err error
		off, err = r.level(target, child, &childNodes, off, ep, childPassed, depth+1, exported)
		if err != nil {
			return off, err
		}
		elems.Entries = append(elems.Entries, child)
		if exported {
			arr = append(arr, &Value{Kind: ValueContainer, Members: childNodes})
		}
	}
	r.store(e, rec, elems)
	if exported {
		*nodes = append(*nodes, &Value{Kind: ValueArray, Name: e.Name, Elem: ValueContainer, Elems: arr})
	}
	return off, nil
}

func discName(d Entry) string {
	if d.Name != "" {
		return d.Name
	}
	return "discriminant"
}

// dispatchKey renders a discriminant value as a Subtypes key.
func dispatchKey(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	}
	return fmt.Sprint(v)
}

// defaults stores the empty value of e without consuming bytes.
func (r *reader) defaults(e Entry, rec *Record, nodes *[]*Value, exported bool) {
	f := &e.Field
	if f.Kind == KindInclude {
		for _, ie := range f.Schema.Entries(r.v) {
			r.defaults(ie, rec, nodes, exported && ie.Access == ReadGen)
		}
		return
	}
	val, node := r.emptyValue(e)
	r.store(e, rec, val)
	if exported && node != nil {
		*nodes = append(*nodes, node)
	}
}

func (r *reader) emptyValue(e Entry) (any, *Value) {
	f := &e.Field
	switch f.Kind {
	case KindNumber:
		wt := f.wireType()
		if !f.IsScalar() {
			var v any
			switch {
			case wt.IsFloat():
				v = []float64{}
			case wt == wire.Uint64:
				v = []uint64{}
			default:
				v = []int64{}
			}
			return v, arrayValue(e.Name, e.Storage, v)
		}
		var v any = int64(0)
		switch {
		case wt.IsFloat():
			v = float64(0)
		case wt == wire.Uint64:
			v = uint64(0)
		}
		return v, scalarValue(e.Name, e.Storage, v)
	case KindContinue:
		return int64(0), scalarValue(e.Name, e.Storage, int64(0))
	case KindCharArray:
		return "", scalarValue(e.Name, e.Storage, "")
	case KindEnum:
		return f.Values[0], enumNode(e, f.Values[0], 0)
	case KindEnumLookup:
		raw := int64(0)
		name, ok := f.Lookup[0]
		if !ok && len(f.Lookup) > 0 {
			keys := make([]int64, 0, len(f.Lookup))
			for k := range f.Lookup {
				keys = append(keys, k)
			}
			sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
			raw, name = keys[0], f.Lookup[keys[0]]
		}
		return name, enumNode(e, name, raw)
	case KindGroup:
		sub := NewRecord(f.Schema.Name)
		var subNodes []*Value
		for _, ge := range f.Schema.Entries(r.v) {
			r.defaults(ge, sub, &subNodes, ge.Access == ReadGen)
		}
		return sub, &Value{Kind: ValueContainer, Name: e.Name, Members: subNodes}
	case KindSubdata, KindDispatch:
		return &Elements{}, &Value{Kind: ValueArray, Name: e.Name, Elem: ValueContainer}
	}
	return int64(0), nil
}

func enumNode(e Entry, name string, raw int64) *Value {
	if e.Storage == StorageString {
		return scalarValue(e.Name, e.Storage, name)
	}
	return scalarValue(e.Name, e.Storage, raw)
}
