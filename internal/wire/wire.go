package wire

// Package wire decodes the little-endian primitive types found in Genie
// engine data files. This package is internal and not part of the public API.

import (
	"bytes"
	"encoding/binary"
	"math"
)

// Type identifies a raw on-disk primitive.
type Type uint8

const (
	Invalid Type = iota
	Int8
	Uint8
	Int16
	Uint16
	Int32
	Uint32
	Int64
	Uint64
	Float32
	Float64
	Char
)

var names = [...]string{
	Invalid: "invalid",
	Int8:    "int8_t",
	Uint8:   "uint8_t",
	Int16:   "int16_t",
	Uint16:  "uint16_t",
	Int32:   "int32_t",
	Uint32:  "uint32_t",
	Int64:   "int64_t",
	Uint64:  "uint64_t",
	Float32: "float",
	Float64: "double",
	Char:    "char",
}

// aliases accepted by Parse in addition to the canonical names.
var aliases = map[string]Type{
	"unsigned char":      Uint8,
	"short":              Int16,
	"unsigned short":     Uint16,
	"int":                Int32,
	"unsigned int":       Uint32,
	"uint":               Uint32,
	"long long":          Int64,
	"unsigned long long": Uint64,
}

func (t Type) String() string {
	if int(t) < len(names) {
		return names[t]
	}
	return names[Invalid]
}

// Parse maps a C type name to a Type. Unknown names yield Invalid.
func Parse(name string) Type {
	for i, n := range names {
		if i != int(Invalid) && n == name {
			return Type(i)
		}
	}
	if t, ok := aliases[name]; ok {
		return t
	}
	return Invalid
}

// Size returns the byte width of one element, 0 for Invalid.
func (t Type) Size() int {
	switch t {
	case Int8, Uint8, Char:
		return 1
	case Int16, Uint16:
		return 2
	case Int32, Uint32, Float32:
		return 4
	case Int64, Uint64, Float64:
		return 8
	}
	return 0
}

// Valid reports whether t is a known wire type.
func (t Type) Valid() bool { return t > Invalid && t <= Char }

func (t Type) IsFloat() bool { return t == Float32 || t == Float64 }

func (t Type) IsSigned() bool {
	switch t {
	case Int8, Int16, Int32, Int64, Char:
		return true
	}
	return false
}

// IsInteger reports whether t decodes to an integer value.
func (t Type) IsInteger() bool { return t.Valid() && !t.IsFloat() }

// Int decodes one signed or unsigned integer (up to 32 bits unsigned) at b[0:].
// The caller guarantees len(b) >= t.Size().
func (t Type) Int(b []byte) int64 {
	switch t {
	case Int8, Char:
		return int64(int8(b[0]))
	case Uint8:
		return int64(b[0])
	case Int16:
		return int64(int16(binary.LittleEndian.Uint16(b)))
	case Uint16:
		return int64(binary.LittleEndian.Uint16(b))
	case Int32:
		return int64(int32(binary.LittleEndian.Uint32(b)))
	case Uint32:
		return int64(binary.LittleEndian.Uint32(b))
	case Int64:
		return int64(binary.LittleEndian.Uint64(b))
	case Uint64:
		return int64(binary.LittleEndian.Uint64(b))
	}
	return 0
}

// Uint decodes a uint64 at b[0:].
func Uint(b []byte) uint64 { return binary.LittleEndian.Uint64(b) }

// Float decodes a float or double at b[0:].
func (t Type) Float(b []byte) float64 {
	switch t {
	case Float32:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
	case Float64:
		return math.Float64frombits(binary.LittleEndian.Uint64(b))
	}
	return 0
}

// CString returns b up to (not including) the first NUL byte.
func CString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

// NulLength returns the number of bytes up to and including the first NUL in b,
// or len(b) when b has no terminator.
func NulLength(b []byte) int {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return i + 1
	}
	return len(b)
}

// Range returns the smallest and largest value an integer type can hold.
func (t Type) Range() (lo, hi float64) {
	switch t {
	case Int8, Char:
		return math.MinInt8, math.MaxInt8
	case Uint8:
		return 0, math.MaxUint8
	case Int16:
		return math.MinInt16, math.MaxInt16
	case Uint16:
		return 0, math.MaxUint16
	case Int32:
		return math.MinInt32, math.MaxInt32
	case Uint32:
		return 0, math.MaxUint32
	case Int64:
		return math.MinInt64, math.MaxInt64
	case Uint64:
		return 0, math.MaxUint64
	}
	return math.Inf(-1), math.Inf(1)
}
