package datskema

import (
	"strconv"
)

// LengthKind enumerates length rule variants.
type LengthKind int

const (
	LenNone    LengthKind = iota // scalar
	LenLiteral                   // fixed count
	LenSibling                   // value of a previously read field
	LenWhen                      // Then if the named value is nonzero, else Else
	LenAny                       // through the first NUL, or the rest of the buffer
)

// LengthRule resolves the element count of a field. Rules form a closed set
// so the reader never evaluates arbitrary code.
type LengthRule struct {
	Kind LengthKind
	N    int
	Name string
	Then *LengthRule
	Else *LengthRule
}

// Literal is a fixed count.
func Literal(n int) LengthRule { return LengthRule{Kind: LenLiteral, N: n} }

// Sibling takes the count from an already read field (or a passed parent value).
func Sibling(name string) LengthRule { return LengthRule{Kind: LenSibling, Name: name} }

// When picks then when the named value is nonzero and els otherwise.
func When(name string, then, els LengthRule) LengthRule {
	return LengthRule{Kind: LenWhen, Name: name, Then: &then, Else: &els}
}

// AnyLength consumes a string through its terminator.
var AnyLength = LengthRule{Kind: LenAny}

// String renders the rule; the form is part of the format digest.
func (r LengthRule) String() string {
	switch r.Kind {
	case LenLiteral:
		return strconv.Itoa(r.N)
	case LenSibling:
		return "$" + r.Name
	case LenWhen:
		t, e := "?", "?"
		if r.Then != nil {
			t = r.Then.String()
		}
		if r.Else != nil {
			e = r.Else.String()
		}
		return "$" + r.Name + "?" + t + ":" + e
	case LenAny:
		return "any"
	}
	return "1"
}

// Dynamic reports whether the count depends on read data.
func (r LengthRule) Dynamic() bool { return r.Kind == LenSibling || r.Kind == LenWhen || r.Kind == LenAny }

// lookupFunc yields an integer value by field name.
type lookupFunc func(name string) (int64, bool)

// resolve evaluates r. ok is false when a referenced name is unknown; the
// caller maps that to length_unresolved. LenAny and LenNone are handled by the
// caller.
func (r LengthRule) resolve(lookup lookupFunc) (n int64, missing string, ok bool) {
	for {
		switch r.Kind {
		case LenLiteral:
			return int64(r.N), "", true
		case LenSibling:
			v, found := lookup(r.Name)
			if !found {
				return 0, r.Name, false
			}
			return v, "", true
		case LenWhen:
			v, found := lookup(r.Name)
			if !found {
				return 0, r.Name, false
			}
			next := r.Else
			if v != 0 {
				next = r.Then
			}
			if next == nil {
				return 0, r.Name, false
			}
			r = *next
		default:
			return 1, "", true
		}
	}
}
