package datskema

import (
	"crypto/sha512"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"hash"
	"sort"
	"strconv"
	"strings"
)

// Digest fingerprints the shape of s for v: names, wire types, length rules,
// enum value sets, nested schemas and access modes, in wire order. A cached
// record is stale whenever the digest of its schema changes.
func Digest(s *Schema, v Version) ([]byte, error) {
	if s == nil {
		return nil, singleIssue("/", CodeSchemaDefinition, -1, "nil schema")
	}
	d := &digester{v: v, done: map[*Schema][]byte{}, active: map[*Schema]bool{}}
	return d.schema(s)
}

// DigestHex is Digest rendered as lowercase hex.
func DigestHex(s *Schema, v Version) (string, error) {
	sum, err := Digest(s, v)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(sum), nil
}

type digester struct {
	v      Version
	done   map[*Schema][]byte
	active map[*Schema]bool
}

// token writes a length-prefixed string so adjacent tokens never run together.
func token(h hash.Hash, parts ...string) {
	var n [binary.MaxVarintLen64]byte
	for _, p := range parts {
		h.Write(n[:binary.PutUvarint(n[:], uint64(len(p)))])
		h.Write([]byte(p))
	}
}

func (d *digester) schema(s *Schema) ([]byte, error) {
	if sum, ok := d.done[s]; ok {
		return sum, nil
	}
	d.active[s] = true
	defer delete(d.active, s)
	h := sha512.New()
	token(h, s.Name, s.File, s.Description)
	for i, e := range s.Entries(d.v) {
		if e.Field.Kind != KindInclude {
			token(h, e.Name)
		}
		if err := d.entryType(h, e); err != nil {
			if iss, ok := AsIssues(err); ok {
				for j := range iss {
					if iss[j].Path == "/" {
						iss[j].Path = RootPath().Field(s.Name).Index(i).Pointer()
					}
				}
				return nil, iss
			}
			return nil, err
		}
		token(h, e.Storage.String(), e.Access.String())
	}
	sum := h.Sum(nil)
	d.done[s] = sum
	return sum, nil
}

func (d *digester) nested(h hash.Hash, s *Schema) error {
	if s == nil {
		return singleIssue("/", CodeSchemaDefinition, -1, "nested schema is nil")
	}
	if d.active[s] {
		// self reference through subdata; the name pins it
		token(h, "recursive", s.Name)
		return nil
	}
	sum, err := d.schema(s)
	if err != nil {
		return err
	}
	token(h, "schema", hex.EncodeToString(sum))
	return nil
}

func (d *digester) entryType(h hash.Hash, e Entry) error {
	f := &e.Field
	token(h, f.Kind.String())
	switch f.Kind {
	case KindNumber:
		token(h, f.Wire, f.Length.String(), strconv.Itoa(int(f.Check)))
	case KindContinue:
		token(h, f.Wire)
	case KindCharArray:
		token(h, f.Length.String())
	case KindEnum:
		pairs := make([]string, len(f.Values))
		for i, n := range f.Values {
			pairs[i] = strconv.Itoa(i) + "=" + n
		}
		enumTokens(h, f.Wire, f.TypeName, append([]string(nil), f.Values...), pairs)
	case KindEnumLookup:
		names := make([]string, 0, len(f.Lookup))
		keys := make([]int64, 0, len(f.Lookup))
		for k, n := range f.Lookup {
			names = append(names, n)
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
		pairs := make([]string, len(keys))
		for i, k := range keys {
			pairs[i] = strconv.FormatInt(k, 10) + "=" + f.Lookup[k]
		}
		enumTokens(h, f.Wire, f.TypeName, names, pairs)
	case KindGroup, KindInclude:
		return d.nested(h, f.Schema)
	case KindSubdata:
		d.collection(h, f)
		return d.nested(h, f.Schema)
	case KindDispatch:
		d.collection(h, f)
		if f.Discriminant == nil {
			return singleIssue("/", CodeSchemaDefinition, -1, "dispatch without discriminant")
		}
		token(h, f.Discriminant.Name)
		if err := d.entryType(h, *f.Discriminant); err != nil {
			return err
		}
		token(h, f.Discriminant.Access.String())
		for _, k := range sortedKeys(f.Subtypes) {
			token(h, k)
			if err := d.nested(h, f.Subtypes[k]); err != nil {
				return err
			}
		}
	default:
		return singleIssue("/", CodeSchemaDefinition, -1, fmt.Sprintf("cannot digest field kind %d", f.Kind))
	}
	return nil
}

func (d *digester) collection(h hash.Hash, f *Field) {
	token(h, f.Length.String())
	if f.OffsetTo != nil {
		token(h, "offset", f.OffsetTo.Field, f.OffsetTo.Pred.String())
	}
	if len(f.Passed) > 0 {
		token(h, "passed", strings.Join(f.Passed, ","))
	}
}

func enumTokens(h hash.Hash, wireType, typeName string, names, pairs []string) {
	sort.Strings(names)
	token(h, wireType, typeName)
	token(h, names...)
	token(h, pairs...)
}
