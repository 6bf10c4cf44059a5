package datskema

import (
	"bytes"

	json "github.com/goccy/go-json"
)

// MarshalJSON renders the record as an object with keys in wire order.
// Offset-gated placeholders become null; dispatch entries are wrapped as
// {"$subtype": key, "value": {...}}.
func (r *Record) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	if err := r.appendJSON(&b); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func (r *Record) appendJSON(b *bytes.Buffer) error {
	if r == nil {
		b.WriteString("null")
		return nil
	}
	b.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			b.WriteByte(',')
		}
		if err := writeJSON(b, k); err != nil {
			return err
		}
		b.WriteByte(':')
		var err error
		switch x := r.vals[k].(type) {
		case *Record:
			err = x.appendJSON(b)
		case *Elements:
			err = x.appendJSON(b)
		default:
			err = writeJSON(b, x)
		}
		if err != nil {
			return err
		}
	}
	b.WriteByte('}')
	return nil
}

func (e *Elements) appendJSON(b *bytes.Buffer) error {
	b.WriteByte('[')
	for i, rec := range e.Entries {
		if i > 0 {
			b.WriteByte(',')
		}
		kind := e.Kind(i)
		if e.Kinds == nil || rec == nil {
			if err := rec.appendJSON(b); err != nil {
				return err
			}
			continue
		}
		b.WriteString(`{"$subtype":`)
		if err := writeJSON(b, kind); err != nil {
			return err
		}
		b.WriteString(`,"value":`)
		if err := rec.appendJSON(b); err != nil {
			return err
		}
		b.WriteByte('}')
	}
	b.WriteByte(']')
	return nil
}

func writeJSON(b *bytes.Buffer, v any) error {
	bs, err := json.Marshal(v)
	if err != nil {
		return err
	}
	b.Write(bs)
	return nil
}
