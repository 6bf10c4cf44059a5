package datskema_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	ds "github.com/reoring/datskema"
	"github.com/reoring/datskema/i18n"
)

func TestRecord_MarshalJSONKeepsWireOrder(t *testing.T) {
	root, _, _ := dispatchSchemas()
	_, rec, _, err := ds.Read(root, []byte{2, 0, 4, 1, 1, 0, 2, 0}, 0, ds.ReadOpt{Version: v0})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	b, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"count":2,"things":[{"$subtype":"foo","value":{"f":4}},{"$subtype":"bar","value":{"b1":1,"b2":2}}]}`
	if string(b) != want {
		t.Fatalf("json mismatch\n got=%s\nwant=%s", b, want)
	}
}

func TestJSONSchema_Projection(t *testing.T) {
	root, _, _ := dispatchSchemas()
	doc, err := ds.JSONSchema(root, v0)
	if err != nil {
		t.Fatalf("jsonschema: %v", err)
	}
	if doc.Ref != "#/$defs/root" || len(doc.Defs) != 3 {
		t.Fatalf("unexpected root: ref=%s defs=%d", doc.Ref, len(doc.Defs))
	}
	things := doc.Defs["root"].Properties["things"]
	if things == nil || things.Type != "array" || len(things.Items.OneOf) != 2 {
		t.Fatalf("dispatch must become an array of alternatives: %+v", things)
	}
	count := doc.Defs["root"].Properties["count"]
	if count.Type != "integer" || *count.Maximum != 255 {
		t.Fatalf("uint8 range expected: %+v", count)
	}
}

func TestIssues_ErrorAndTranslation(t *testing.T) {
	s := ds.Static("o", "o", "", ds.Gen("a", ds.StorageInt, ds.Number("uint32_t")))
	_, _, _, err := ds.Read(s, []byte{1}, 0, ds.ReadOpt{Version: v0})
	var iss ds.Issues
	if !errors.As(err, &iss) || len(iss) != 1 {
		t.Fatalf("expected one issue: %v", err)
	}
	if !strings.HasPrefix(err.Error(), "overrun at /a (offset ") {
		t.Fatalf("error text: %s", err.Error())
	}
	if iss[0].Message != "read past end of input" {
		t.Fatalf("message: %q", iss[0].Message)
	}

	i18n.SetLanguage("ja")
	defer i18n.SetLanguage("en")
	_, _, _, err = ds.Read(s, []byte{1}, 0, ds.ReadOpt{Version: v0})
	iss, _ = ds.AsIssues(err)
	if iss[0].Message == "read past end of input" {
		t.Fatalf("expected japanese message")
	}
}
