package gamedata

import ds "github.com/reoring/datskema"

var graphicLayers = map[int64]string{
	0:  "TERRAIN",    // cliff
	5:  "SHADOW",     // farm fields as well
	6:  "RUBBLE",
	10: "UNIT_LOW",   // constructions, dead units, tree stumps, flowers, paths
	11: "FISH",
	19: "CRATER",     // rugs
	20: "UNIT",       // buildings, units, damage flames, animations
	21: "BLACKSMITH", // blacksmith smoke
	22: "BIRD",
	30: "PROJECTILE", // and explosions
}

// GraphicDelta is a sprite drawn on top of another graphic.
var GraphicDelta = ds.Static("graphic_delta", "graphic", "delta definitions for ingame graphics files.",
	id("graphic_id", "int16_t"),
	unknown("int16_t"),
	ds.Skipped(ds.Number("int32_t")), // sprite pointer, only meaningful at runtime
	gen("offset_x", "int16_t"),
	gen("offset_y", "int16_t"),
	gen("display_angle", "int16_t"),
	unknown("int16_t"),
)

// GraphicAttackSound holds up to three sounds per angle of an attack graphic.
var GraphicAttackSound = ds.Static("graphic_attack_sound", "graphic", "attack sounds for a given graphics file.",
	gen("sound_delay0", "int16_t"),
	id("sound_id0", "int16_t"),
	gen("sound_delay1", "int16_t"),
	id("sound_id1", "int16_t"),
	gen("sound_delay2", "int16_t"),
	id("sound_id2", "int16_t"),
)

// Graphic is one sprite sheet with its animation settings.
var Graphic = ds.NewSchema("graphic", "graphic", "metadata for ingame graphics files.",
	func(v ds.Version) []ds.Entry {
		name, file := ds.Literal(21), ds.Literal(13)
		if swgb(v) {
			name, file = ds.Literal(25), ds.Literal(25)
		}
		return []ds.Entry{
			text("name", name),
			text("filename", file),
			id("slp_id", "int32_t"),
			unknown("int8_t"),
			unknown("int8_t"),
			lookup("layer", "graphics_layer", "int8_t", graphicLayers),
			gen("player_color", "int8_t"), // force given player color
			gen("adapt_color", "int8_t"),  // playercolor can be changed on sight
			gen("replay", "uint8_t"),
			read("coordinates", "int16_t[4]"),
			read("delta_count", "uint16_t"),
			id("sound_id", "int16_t"),
			read("attack_sound_used", "uint8_t"),
			gen("frame_count", "uint16_t"),
			gen("angle_count", "uint16_t"),
			gen("speed_adjust", "float"),
			gen("frame_rate", "float"),
			gen("replay_delay", "float"),
			gen("sequence_type", "int8_t"),
			id("id", "int16_t"),
			gen("mirroring_mode", "int8_t"),
			subdata("graphic_deltas", GraphicDelta, ds.Sibling("delta_count")),
			// one attack sound per angle, only when attack sounds are used
			subdata("graphic_attack_sounds", GraphicAttackSound,
				ds.When("attack_sound_used", ds.Sibling("angle_count"), ds.Literal(0))),
		}
	})
