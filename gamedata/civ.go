package gamedata

import ds "github.com/reoring/datskema"

// Civ is one civilisation with its resources and its unit list. Units are
// stored by type; a non-positive offset marks an id the civ does not have.
var Civ = ds.NewSchema("civ", "civ", "describes one civilisation.",
	func(v ds.Version) []ds.Entry {
		es := []ds.Entry{
			read("player_type", "int8_t"), // always 1
			text("name", ds.Literal(20)),
		}
		if swgb(v) {
			es = append(es,
				text("name2", ds.Literal(20)),
				read("unique_unit_techs", "int16_t[4]"),
			)
		}
		es = append(es,
			read("resources_count", "uint16_t"),
			id("tech_tree_id", "int16_t"),
		)
		if !ror(v) {
			es = append(es, id("team_bonus_id", "int16_t"))
		}
		return append(es,
			gen("resources", "float[resources_count]"),
			read("icon_set", "int8_t"),
			read("unit_count", "uint16_t"),
			read("unit_offsets", "int32_t[unit_count]"),
			ds.Gen("units", ds.StorageArrayContainer, ds.Dispatch(
				ds.Internal("unit_type", ds.StorageID, ds.EnumLookup("unit_types", "int8_t", UnitTypes)),
				UnitSchemas,
				ds.Sibling("unit_count"),
				ds.WithOffsetTo("unit_offsets", ds.PredPositive),
				ds.WithFile("unit"),
			)),
		)
	})
