package gamedata_test

import (
	"go/parser"
	"go/token"
	"strings"
	"testing"

	ds "github.com/reoring/datskema"
	"github.com/reoring/datskema/codegen"
	"github.com/reoring/datskema/gamedata"
	"github.com/reoring/datskema/table"
)

var aoc = ds.Version{Edition: gamedata.EditionAOC, Expansions: []string{"x1"}}

func versions() []ds.Version {
	return []ds.Version{
		{Edition: gamedata.EditionROR},
		aoc,
		{Edition: gamedata.EditionSWGB, Expansions: []string{"cc"}},
	}
}

func TestSchemas_ValidForEveryEdition(t *testing.T) {
	digests := map[string]string{}
	for _, v := range versions() {
		if err := gamedata.EmpiresDat.Validate(v); err != nil {
			t.Fatalf("%s: %v", v.Key(), err)
		}
		d, err := ds.DigestHex(gamedata.EmpiresDat, v)
		if err != nil {
			t.Fatalf("%s: digest: %v", v.Key(), err)
		}
		if other, dup := digests[d]; dup {
			t.Fatalf("%s and %s share a digest", other, v.Key())
		}
		digests[d] = v.Key()
	}
}

func TestCheckVersion(t *testing.T) {
	cases := []struct {
		v  ds.Version
		ok bool
	}{
		{aoc, true},
		{ds.Version{Edition: gamedata.EditionROR}, true},
		{ds.Version{Edition: "aok"}, false},
		{ds.Version{Edition: gamedata.EditionROR, Expansions: []string{"x1"}}, false},
	}
	for _, tc := range cases {
		err := gamedata.CheckVersion(tc.v)
		if (err == nil) != tc.ok {
			t.Fatalf("%+v: err=%v", tc.v, err)
		}
	}
	if _, _, err := gamedata.Read(nil, ds.Version{Edition: "aok"}); err == nil {
		t.Fatalf("unknown edition must be rejected before reading")
	}
}

// sampleFile is a small AoC data file: one graphic slot is empty, one unit
// header is truncated by its sentinel and the civ skips one unit id.
func sampleFile() fields {
	return fields{
		"versionstr":                  "VER 5.7",
		"terrain_restriction_count":   1,
		"terrain_count":               2,
		"terrain_restriction_offset0": []int{1},
		"terrain_restriction_offset1": []int{1},
		"terrain_restrictions": []fields{
			{"accessible_dmgmultiplier": []float64{1, 0.5}},
		},
		"player_color_count": 1,
		"player_colors":      []fields{{"id": 3}},
		"sound_count":        1,
		"sounds": []fields{
			{"id": 7, "file_count": 1, "sound_items": []fields{{"filename": "arrow.wav", "resource_id": 5030}}},
		},
		"graphic_count":   2,
		"graphic_offsets": []int{100, 0},
		"graphics": []fields{
			{"name": "ARCHER_A", "attack_sound_used": 1, "angle_count": 2, "delta_count": 1, "id": 1},
			nil,
		},
		"unit_count": 2,
		"unit_headers": []fields{
			{"unit_command_count": 1, "unit_commands": []fields{{"id": 0, "type": 7}}},
			{"exists": 0},
		},
		"civ_count": 1,
		"civs": []fields{{
			"name":            "Gaia",
			"resources_count": 2,
			"resources":       []float64{200, 100},
			"unit_count":      3,
			"unit_offsets":    []int{1, 0, 1},
			"units": []fields{
				{"$type": 90, "name_length": 4, "name": "tree", "unit_class": 15},
				nil,
				{"$type": 20, "speed": 1.5, "hit_points": 45},
			},
		}},
	}
}

func TestRead_SampleFile(t *testing.T) {
	buf := encode(t, gamedata.EmpiresDat, aoc, sampleFile())
	rec, val, err := gamedata.Read(buf, aoc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if s, _ := rec.String("versionstr"); s != "VER 5.7" {
		t.Fatalf("versionstr: %q", s)
	}

	trs, _ := rec.Elements("terrain_restrictions")
	if trs.Len() != 1 {
		t.Fatalf("terrain restrictions: %d", trs.Len())
	}
	passes, ok := trs.Entries[0].Elements("pass_graphics")
	if !ok || passes.Len() != 2 {
		t.Fatalf("pass graphics must follow the passed terrain count: %v", passes)
	}

	graphics, _ := rec.Elements("graphics")
	if graphics.Len() != 2 || graphics.Entries[1] != nil {
		t.Fatalf("second graphic must be a placeholder: %+v", graphics)
	}
	sounds, _ := graphics.Entries[0].Elements("graphic_attack_sounds")
	if sounds.Len() != 2 {
		t.Fatalf("one attack sound per angle expected, got %d", sounds.Len())
	}
	if layer, _ := graphics.Entries[0].String("layer"); layer != "TERRAIN" {
		t.Fatalf("layer: %q", layer)
	}

	headers, _ := rec.Elements("unit_headers")
	cmds, _ := headers.Entries[0].Elements("unit_commands")
	if cmds.Len() != 1 {
		t.Fatalf("unit commands: %d", cmds.Len())
	}
	if typ, _ := cmds.Entries[0].String("type"); typ != "ATTACK" {
		t.Fatalf("command type: %q", typ)
	}
	if cmds, ok := headers.Entries[1].Elements("unit_commands"); !ok || cmds.Len() != 0 {
		t.Fatalf("a missing header keeps empty commands: %v", cmds)
	}

	civs, _ := rec.Elements("civs")
	units, _ := civs.Entries[0].Elements("units")
	if got := strings.Join(units.Kinds, ","); got != "tree,,flag" {
		t.Fatalf("unit kinds: %s", got)
	}
	if name, _ := units.Entries[0].String("name"); name != "tree" {
		t.Fatalf("tree name: %q", name)
	}
	if class, _ := units.Entries[0].String("unit_class"); class != "TREES" {
		t.Fatalf("tree class: %q", class)
	}
	if speed, _ := units.Entries[2].Get("speed"); speed != 1.5 {
		t.Fatalf("flag speed: %v", speed)
	}
	if hp, _ := units.Entries[2].Int("hit_points"); hp != 45 {
		t.Fatalf("inherited hit points: %d", hp)
	}
	if val == nil || len(val.Members) == 0 {
		t.Fatalf("value tree is empty")
	}
}

func TestRead_SizeChecks(t *testing.T) {
	buf := encode(t, gamedata.EmpiresDat, aoc, sampleFile())
	if _, _, err := gamedata.Read(buf[:len(buf)-1], aoc); !ds.HasCode(err, ds.CodeOverrun) {
		t.Fatalf("truncated file: %v", err)
	}
	if _, _, err := gamedata.Read(append(buf, 0), aoc); !ds.HasCode(err, ds.CodeSizeMismatch) {
		t.Fatalf("trailing byte: %v", err)
	}
}

func TestRead_UnknownUnitType(t *testing.T) {
	buf := encode(t, gamedata.EmpiresDat, aoc, sampleFile())
	i := strings.Index(string(buf), "Gaia")
	if i < 0 {
		t.Fatalf("civ name not found")
	}
	// name(20) resources_count(2) tech_tree_id(2) team_bonus_id(2)
	// resources(8) icon_set(1) unit_count(2) unit_offsets(12)
	disc := i + 20 + 2 + 2 + 2 + 8 + 1 + 2 + 12
	if buf[disc] != 90 {
		t.Fatalf("discriminant not at %d: %d", disc, buf[disc])
	}
	buf[disc] = 55
	if _, _, err := gamedata.Read(buf, aoc); !ds.HasCode(err, ds.CodeUnknownEnum) {
		t.Fatalf("expected unknown_enum, got %v", err)
	}
}

func TestDump_SampleFile(t *testing.T) {
	rec, _, err := gamedata.Read(encode(t, gamedata.EmpiresDat, aoc, sampleFile()), aoc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	defs, err := table.Root(rec, gamedata.EmpiresDat, aoc, "dat")
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	byPath := map[string]*table.Definition{}
	for _, d := range defs {
		if _, err := d.Text(); err != nil {
			t.Fatalf("%s: %v", d.Path, err)
		}
		byPath[d.Path] = d
	}
	for _, want := range []string{"dat", "dat-graphics", "dat-civs", "dat-civs/0000-units", "dat-civs/0000/tree", "dat-civs/0000/living"} {
		if byPath[want] == nil {
			t.Fatalf("missing table %s", want)
		}
	}
	if n := len(byPath["dat-graphics"].Rows); n != 1 {
		t.Fatalf("placeholders must not be dumped, got %d graphic rows", n)
	}
	if n := len(byPath["dat-civs/0000-units"].Rows); n != len(gamedata.UnitSchemas) {
		t.Fatalf("index rows: %d", n)
	}
}

func TestGenerate_EveryEdition(t *testing.T) {
	for _, v := range versions() {
		sn, err := codegen.Generate([]*ds.Schema{gamedata.EmpiresDat}, v)
		if err != nil {
			t.Fatalf("%s: generate: %v", v.Key(), err)
		}
		files, err := codegen.Assemble(sn, codegen.AssembleOpt{Package: "gamedata"})
		if err != nil {
			t.Fatalf("%s: assemble: %v", v.Key(), err)
		}
		seen := map[string]bool{}
		for _, f := range files {
			seen[f.Name] = true
			if _, err := parser.ParseFile(token.NewFileSet(), f.Name, f.Source, 0); err != nil {
				t.Fatalf("%s: %s: %v", v.Key(), f.Name, err)
			}
		}
		for _, want := range []string{"empires_dat.go", "unit.go", "civ.go", "graphic.go"} {
			if !seen[want] {
				t.Fatalf("%s: missing %s", v.Key(), want)
			}
		}
	}
}
