package gamedata

import ds "github.com/reoring/datskema"

// PlayerColor describes the palette entries of one player color.
var PlayerColor = ds.NewSchema("player_color", "player_color", "describes player color settings",
	func(v ds.Version) []ds.Entry {
		if ror(v) {
			return []ds.Entry{
				text("name", ds.Literal(30)),
				id("id", "int16_t"),
				unknown("int16_t"),
				gen("color", "uint8_t"),
				unknown("uint8_t"),
			}
		}
		return []ds.Entry{
			id("id", "int32_t"),
			gen("player_color_base", "int32_t"), // palette index offset
			gen("outline_color", "int32_t"),
			gen("unit_selection_color1", "int32_t"),
			gen("unit_selection_color2", "int32_t"),
			gen("minimap_color1", "int32_t"),
			gen("minimap_color2", "int32_t"),
			gen("minimap_color3", "int32_t"),
			gen("statistics_text_color", "int32_t"),
		}
	})
