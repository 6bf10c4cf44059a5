package datskema

import (
	"github.com/reoring/datskema/internal/wire"
)

// FieldKind enumerates the closed set of field descriptor variants.
type FieldKind int

const (
	KindInvalid    FieldKind = iota
	KindNumber               // fixed-width number or array of numbers
	KindContinue             // sentinel: zero truncates the rest of the level
	KindCharArray            // char[N], NUL-trimmed
	KindEnum                 // raw value indexes Values
	KindEnumLookup           // raw value mapped through Lookup
	KindGroup                // nested schema stored as a sub-record
	KindInclude              // nested schema spliced into the current level
	KindSubdata              // Length entries of one schema
	KindDispatch             // Length entries, each selected by a discriminant
)

func (k FieldKind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindContinue:
		return "continue"
	case KindCharArray:
		return "char_array"
	case KindEnum:
		return "enum"
	case KindEnumLookup:
		return "enum_lookup"
	case KindGroup:
		return "group"
	case KindInclude:
		return "include"
	case KindSubdata:
		return "subdata"
	case KindDispatch:
		return "dispatch"
	}
	return "invalid"
}

// Check is a post-read verification of a number field.
type Check int

const (
	CheckNone Check = iota
	CheckZero       // every decoded element must be zero
)

// Pred decides whether an offset-gated entry is read.
type Pred int

const (
	PredNonZero Pred = iota
	PredPositive
)

func (p Pred) String() string {
	if p == PredPositive {
		return "positive"
	}
	return "nonzero"
}

func (p Pred) accept(v int64) bool {
	if p == PredPositive {
		return v > 0
	}
	return v != 0
}

// OffsetRule gates entry i of a subdata or dispatch field on element i of the
// sibling array Field.
type OffsetRule struct {
	Field string
	Pred  Pred
}

// Field describes how one record field is laid out on the wire. Fields are
// immutable after construction and shared by every read of their schema.
type Field struct {
	Kind FieldKind
	// Wire is the C type name of the raw value ("uint16_t", "float", ...).
	Wire string
	// Length is the element count. The zero rule means a scalar.
	Length LengthRule
	Check  Check

	// Enum and EnumLookup.
	TypeName string
	Values   []string
	Lookup   map[int64]string

	// Group, Include and Subdata.
	Schema *Schema

	// Dispatch.
	Discriminant *Entry
	Subtypes     map[string]*Schema

	// Subdata and Dispatch options.
	OffsetTo *OffsetRule
	Passed   []string
	File     string

	wt wire.Type
}

func (f *Field) wireType() wire.Type {
	if f.wt.Valid() {
		return f.wt
	}
	return wire.Parse(f.Wire)
}

// IsScalar reports whether a number field decodes a single value.
func (f *Field) IsScalar() bool { return f.Length.Kind == LenNone }

// Number declares a scalar of the given wire type.
func Number(wireType string) Field {
	return Field{Kind: KindNumber, Wire: wireType, wt: wire.Parse(wireType)}
}

// Array declares n values of the given wire type.
func Array(wireType string, n LengthRule) Field {
	f := Number(wireType)
	f.Length = n
	return f
}

// Zero declares n values that must all decode to zero.
func Zero(wireType string, n int) Field {
	f := Array(wireType, Literal(n))
	f.Check = CheckZero
	return f
}

// Continue declares a sentinel integer.
func Continue(wireType string) Field {
	return Field{Kind: KindContinue, Wire: wireType, wt: wire.Parse(wireType)}
}

// CharArray declares a NUL-trimmed string of n bytes.
func CharArray(n LengthRule) Field {
	return Field{Kind: KindCharArray, Wire: "char", Length: n, wt: wire.Char}
}

// Enum declares an integer whose value indexes values.
func Enum(typeName, wireType string, values ...string) Field {
	return Field{Kind: KindEnum, Wire: wireType, TypeName: typeName, Values: values, wt: wire.Parse(wireType)}
}

// EnumLookup declares an integer mapped to a name through lookup.
func EnumLookup(typeName, wireType string, lookup map[int64]string) Field {
	return Field{Kind: KindEnumLookup, Wire: wireType, TypeName: typeName, Lookup: lookup, wt: wire.Parse(wireType)}
}

// Group stores s as a sub-record.
func Group(s *Schema) Field { return Field{Kind: KindGroup, Schema: s} }

// Include splices the fields of s into the current level.
func Include(s *Schema) Field { return Field{Kind: KindInclude, Schema: s} }

// SubdataOpt configures Subdata and Dispatch fields.
type SubdataOpt func(*Field)

// WithOffsetTo gates each entry on the matching element of a sibling array.
func WithOffsetTo(field string, pred Pred) SubdataOpt {
	return func(f *Field) { f.OffsetTo = &OffsetRule{Field: field, Pred: pred} }
}

// WithPassed makes parent values visible to the children's length rules.
func WithPassed(names ...string) SubdataOpt {
	return func(f *Field) { f.Passed = append(f.Passed, names...) }
}

// WithFile overrides the owning file of the generated container type.
func WithFile(file string) SubdataOpt {
	return func(f *Field) { f.File = file }
}

// Subdata declares n entries of s.
func Subdata(s *Schema, n LengthRule, opts ...SubdataOpt) Field {
	f := Field{Kind: KindSubdata, Schema: s, Length: n}
	for _, o := range opts {
		o(&f)
	}
	return f
}

// Dispatch declares n entries, each preceded by the discriminant entry whose
// value (enum name or decimal integer) selects one of subtypes.
func Dispatch(disc Entry, subtypes map[string]*Schema, n LengthRule, opts ...SubdataOpt) Field {
	d := disc
	f := Field{Kind: KindDispatch, Discriminant: &d, Subtypes: subtypes, Length: n}
	for _, o := range opts {
		o(&f)
	}
	return f
}

// Entry is one (access, name, storage, field) member of a schema.
type Entry struct {
	Access  Access
	Name    string
	Storage Storage
	Field   Field
}

// Gen is shorthand for an exported entry.
func Gen(name string, st Storage, f Field) Entry {
	return Entry{Access: ReadGen, Name: name, Storage: st, Field: f}
}

// Internal is shorthand for a stored but not exported entry.
func Internal(name string, st Storage, f Field) Entry {
	return Entry{Access: ReadOnly, Name: name, Storage: st, Field: f}
}

// Unknown is shorthand for an entry of unknown meaning.
func Unknown(f Field) Entry { return Entry{Access: ReadUnknown, Field: f} }

// Skipped is shorthand for bytes that are stepped over.
func Skipped(f Field) Entry { return Entry{Access: Skip, Field: f} }

// Inherit is shorthand for an Include entry.
func Inherit(s *Schema) Entry { return Entry{Access: ReadGen, Field: Include(s)} }
