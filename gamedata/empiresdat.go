package gamedata

import (
	ds "github.com/reoring/datskema"
)

// EmpiresDat is the root of the (inflated) data file.
var EmpiresDat = ds.NewSchema("empiresdat", "empires_dat", "empires2_x1_p1.dat structure",
	func(v ds.Version) []ds.Entry {
		es := []ds.Entry{
			text("versionstr", ds.Literal(8)),
			read("terrain_restriction_count", "uint16_t"),
			read("terrain_count", "uint16_t"),
			read("terrain_restriction_offset0", "int32_t[terrain_restriction_count]"),
		}
		if !ror(v) {
			es = append(es, read("terrain_restriction_offset1", "int32_t[terrain_restriction_count]"))
		}
		es = append(es,
			subdata("terrain_restrictions", TerrainRestriction,
				ds.Sibling("terrain_restriction_count"), ds.WithPassed("terrain_count")),

			read("player_color_count", "uint16_t"),
			subdata("player_colors", PlayerColor, ds.Sibling("player_color_count")),

			read("sound_count", "uint16_t"),
			subdata("sounds", Sound, ds.Sibling("sound_count")),

			read("graphic_count", "uint16_t"),
			read("graphic_offsets", "int32_t[graphic_count]"),
			subdata("graphics", Graphic, ds.Sibling("graphic_count"),
				ds.WithOffsetTo("graphic_offsets", ds.PredPositive)),
		)
		if !ror(v) {
			es = append(es,
				read("unit_count", "uint32_t"),
				subdata("unit_headers", UnitHeader, ds.Sibling("unit_count")),
			)
		}
		return append(es,
			read("civ_count", "uint16_t"),
			subdata("civs", Civ, ds.Sibling("civ_count")),
		)
	})

// Root returns the root schema after checking v.
func Root(v ds.Version) (*ds.Schema, error) {
	if err := CheckVersion(v); err != nil {
		return nil, err
	}
	return EmpiresDat, nil
}

// Read decodes an inflated data file. The whole buffer must be consumed.
func Read(buf []byte, v ds.Version) (*ds.Record, *ds.Value, error) {
	s, err := Root(v)
	if err != nil {
		return nil, nil, err
	}
	_, rec, val, err := ds.Read(s, buf, 0, ds.ReadOpt{Version: v, Exact: true})
	return rec, val, err
}
