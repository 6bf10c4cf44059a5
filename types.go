package datskema

import (
	"sort"
	"strings"
)

// Access controls what the reader does with an entry.
type Access int

const (
	ReadOnly    Access = iota // Decode and store, not exported.
	ReadGen                   // Decode, store and export (table column, value node, struct field).
	ReadUnknown               // Decode and verify, stored under an "unknown-0x..." name.
	Skip                      // Advance the cursor without decoding.
)

func (a Access) String() string {
	switch a {
	case ReadOnly:
		return "read"
	case ReadGen:
		return "read_gen"
	case ReadUnknown:
		return "read_unknown"
	case Skip:
		return "skip"
	}
	return "invalid"
}

// Storage is the logical type an entry is exported as.
type Storage int

const (
	StorageNone Storage = iota
	StorageInt
	StorageFloat
	StorageBool
	StorageID
	StorageBitfield
	StorageString
	StorageArrayInt
	StorageArrayFloat
	StorageArrayBool
	StorageArrayID
	StorageArrayString
	StorageContainer
	StorageArrayContainer
)

var storageNames = [...]string{
	StorageNone:           "none",
	StorageInt:            "int",
	StorageFloat:          "float",
	StorageBool:           "bool",
	StorageID:             "id",
	StorageBitfield:       "bitfield",
	StorageString:         "string",
	StorageArrayInt:       "array_int",
	StorageArrayFloat:     "array_float",
	StorageArrayBool:      "array_bool",
	StorageArrayID:        "array_id",
	StorageArrayString:    "array_string",
	StorageContainer:      "container",
	StorageArrayContainer: "array_container",
}

func (s Storage) String() string {
	if s >= 0 && int(s) < len(storageNames) {
		return storageNames[s]
	}
	return "invalid"
}

// IsArray reports whether s is one of the array storages.
func (s Storage) IsArray() bool { return s >= StorageArrayInt && s <= StorageArrayString || s == StorageArrayContainer }

// Elem returns the scalar storage of an array storage, or s itself.
func (s Storage) Elem() Storage {
	switch s {
	case StorageArrayInt:
		return StorageInt
	case StorageArrayFloat:
		return StorageFloat
	case StorageArrayBool:
		return StorageBool
	case StorageArrayID:
		return StorageID
	case StorageArrayString:
		return StorageString
	case StorageArrayContainer:
		return StorageContainer
	}
	return s
}

// Version selects the edition and expansions a version-conditional Schema is
// resolved for. The core never interprets it.
type Version struct {
	Edition    string   `json:"edition" yaml:"edition"`
	Expansions []string `json:"expansions,omitempty" yaml:"expansions,omitempty"`
}

// Key is a canonical form of v, stable under expansion reordering.
func (v Version) Key() string {
	if len(v.Expansions) == 0 {
		return v.Edition
	}
	exps := append([]string(nil), v.Expansions...)
	sort.Strings(exps)
	return v.Edition + "+" + strings.Join(exps, "+")
}

// Has reports whether the expansion is enabled.
func (v Version) Has(exp string) bool {
	for _, e := range v.Expansions {
		if e == exp {
			return true
		}
	}
	return false
}

// ReadOpt bundles reading options.
type ReadOpt struct {
	Version  Version
	Exact    bool // Fail with size_mismatch when the read does not end at len(buf).
	MaxDepth int  // Nesting limit; 0 uses DefaultMaxDepth.
}

// DefaultMaxDepth bounds schema nesting when ReadOpt.MaxDepth is zero.
const DefaultMaxDepth = 64
