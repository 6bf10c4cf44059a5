package gamedata

import (
	"strings"

	ds "github.com/reoring/datskema"
)

// Shorthands for the declarations below. The storage follows the wire type:
// float wires store floats, everything else integers.

func storageOf(wire string, array bool) ds.Storage {
	float := wire == "float" || wire == "double"
	switch {
	case array && float:
		return ds.StorageArrayFloat
	case array:
		return ds.StorageArrayInt
	case float:
		return ds.StorageFloat
	}
	return ds.StorageInt
}

// gen declares an exported number. A "[n]" or "[name]" suffix declares an
// array with a literal or sibling length.
func gen(name, wire string) ds.Entry {
	w, n, array := splitArray(wire)
	if !array {
		return ds.Gen(name, storageOf(w, false), ds.Number(w))
	}
	return ds.Gen(name, storageOf(w, true), ds.Array(w, n))
}

// read declares a number that is decoded but not exported.
func read(name, wire string) ds.Entry {
	e := gen(name, wire)
	e.Access = ds.ReadOnly
	return e
}

func unknown(wire string) ds.Entry {
	e := gen("", wire)
	return ds.Unknown(e.Field)
}

func id(name, wire string) ds.Entry { return ds.Gen(name, ds.StorageID, ds.Number(wire)) }

func text(name string, n ds.LengthRule) ds.Entry {
	return ds.Gen(name, ds.StorageString, ds.CharArray(n))
}

func lookup(name, typeName, wire string, dict map[int64]string) ds.Entry {
	return ds.Gen(name, ds.StorageID, ds.EnumLookup(typeName, wire, dict))
}

func subdata(name string, s *ds.Schema, n ds.LengthRule, opts ...ds.SubdataOpt) ds.Entry {
	return ds.Gen(name, ds.StorageArrayContainer, ds.Subdata(s, n, opts...))
}

func splitArray(wire string) (string, ds.LengthRule, bool) {
	i := strings.IndexByte(wire, '[')
	if i < 0 || !strings.HasSuffix(wire, "]") {
		return wire, ds.LengthRule{}, false
	}
	arg := wire[i+1 : len(wire)-1]
	n := 0
	for _, c := range arg {
		if c < '0' || c > '9' {
			return wire[:i], ds.Sibling(arg), true
		}
		n = n*10 + int(c-'0')
	}
	return wire[:i], ds.Literal(n), true
}
