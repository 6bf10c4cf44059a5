package gamedata

import ds "github.com/reoring/datskema"

var unitClasses = map[int64]string{
	0: "ARCHER", 1: "ARTIFACT", 2: "TRADE_BOAT", 3: "BUILDING", 4: "CIVILIAN",
	5: "SEA_FISH", 6: "SOLDIER", 7: "BERRY_BUSH", 8: "STONE_MINE", 9: "PREY_ANIMAL",
	10: "PREDATOR_ANIMAL", 11: "OTHER", 12: "CAVALRY", 13: "SIEGE_WEAPON", 14: "TERRAIN",
	15: "TREES", 18: "PRIEST", 19: "TRADE_CART", 20: "TRANSPORT_BOAT", 21: "FISHING_BOAT",
	22: "WAR_BOAT", 23: "CONQUISTADOR", 27: "WALLS", 28: "PHALANX", 29: "ANIMAL_DOMESTICATED",
	30: "FLAGS", 32: "GOLD_MINE", 33: "SHORE_FISH", 34: "CLIFF", 35: "PETARD",
	36: "CAVALRY_ARCHER", 37: "DOLPHIN", 38: "BIRDS", 39: "GATES", 40: "PILES",
	41: "PILES_OF_RESOURCE", 42: "RELIC", 43: "MONK_WITH_RELIC", 44: "HAND_CANNONEER",
	45: "TWO_HANDED_SWORD", 46: "PIKEMAN", 47: "SCOUT_CAVALRY", 48: "ORE_MINE", 49: "FARM",
	50: "SPEARMAN", 51: "PACKED_SIEGE_UNITS", 52: "TOWER", 53: "BOARDING_BOAT",
	54: "UNPACKED_SIEGE_UNITS", 55: "SCORPION", 56: "RAIDER", 57: "CAVALRY_RAIDER",
	58: "SHEEP", 59: "KING", 61: "HORSE",
}

// groundTypes are the terrain restriction ids a unit may be placed on.
var groundTypes = map[int64]string{
	0x00: "ANY", 0x01: "SHORELINE", 0x02: "WATER", 0x03: "WATER_SHIP_0x03",
	0x04: "FOUNDATION", 0x05: "NOWHERE", 0x06: "WATER_DOCK", 0x07: "SOLID",
	0x08: "NO_ICE_0x08", 0x0A: "NO_ICE_0x0A", 0x0B: "FOREST", 0x0C: "UNKNOWN_0x0C",
	0x0D: "WATER_0x0D", 0x0E: "UNKNOWN_0x0E", 0x0F: "WATER_SHIP_0x0F",
	0x10: "GRASS_SHORELINE", 0x11: "WATER_ANY_0x11", 0x12: "UNKNOWN_0x12",
	0x13: "FISH_NO_ICE", 0x14: "WATER_ANY_0x14", 0x15: "WATER_SHALLOW",
}

var minimapModes = map[int64]string{
	0: "NO_DOT_0", 1: "SQUARE_DOT", 2: "DIAMOND_DOT", 3: "DIAMOND_DOT_KEEPCOLOR",
	4: "LARGEDOT_0", 5: "LARGEDOT_1", 6: "NO_DOT_6", 7: "NO_DOT_7", 8: "NO_DOT_8",
	9: "NO_DOT_9", 10: "NO_DOT_10",
}

var commandAttributes = map[int64]string{
	0: "LIVING", 1: "ANIMAL", 2: "NONMILITARY_BULIDING", 3: "VILLAGER",
	4: "MILITARY_UNIT", 5: "TRADING_UNIT", 6: "MONK_EMPTY", 7: "TRANSPORT_SHIP",
	8: "RELIC", 9: "FISHING_SHIP", 10: "MILITARY_BUILDING", 11: "SHIELDED_BUILDING",
}

var selectionEffects = map[int64]string{
	0: "NONE", 1: "HPBAR_ON_OUTLINE_DARK", 2: "HPBAR_ON_OUTLINE_NORMAL",
	3: "HPBAR_OFF_SELECTION_SHADOW", 4: "HPBAR_OFF_OUTLINE_NORMAL", 5: "HPBAR_ON_5",
	6: "HPBAR_OFF_6", 7: "HPBAR_OFF_7", 8: "HPBAR_ON_8", 9: "HPBAR_ON_9",
}

// UnitObject holds the properties every unit type has.
var UnitObject = ds.Static("unit_object", "unit", "base properties for all units.",
	read("name_length", "uint16_t"),
	id("id0", "int16_t"),
	gen("language_dll_name", "uint16_t"),
	gen("language_dll_creation", "uint16_t"),
	lookup("unit_class", "unit_classes", "int16_t", unitClasses),
	id("graphic_standing0", "int16_t"),
	id("graphic_standing1", "int16_t"),
	id("graphic_dying0", "int16_t"),
	id("graphic_dying1", "int16_t"),
	read("death_mode", "int8_t"), // 1: become dead_unit_id
	gen("hit_points", "int16_t"), // -1: dies instantly
	read("line_of_sight", "float"),
	read("garrison_capacity", "int8_t"),
	gen("radius_size0", "float"),
	gen("radius_size1", "float"),
	gen("hp_bar_height0", "float"),
	id("sound_creation0", "int16_t"),
	id("sound_creation1", "int16_t"),
	id("dead_unit_id", "int16_t"),
	read("placement_mode", "int8_t"),
	read("air_mode", "int8_t"),
	read("icon_id", "int16_t"),
	read("hidden_in_editor", "int8_t"),
	unknown("int16_t"),
	read("enabled", "int16_t"), // 0: unlocked by research
	read("placement_bypass_terrain0", "int16_t"),
	read("placement_bypass_terrain1", "int16_t"),
	read("placement_terrain0", "int16_t"),
	read("placement_terrain1", "int16_t"),
	read("editor_radius0", "float"),
	read("editor_radius1", "float"),
	lookup("building_mode", "building_modes", "int8_t", map[int64]string{
		0: "NON_BUILDING",
		2: "TRADE_BUILDING",
		3: "ANY",
	}),
	lookup("visible_in_fog", "fog_visibility", "int8_t", map[int64]string{
		0: "INVISIBLE",
		1: "VISIBLE",
		3: "ONLY_IN_FOG",
	}),
	lookup("terrain_restriction", "ground_type", "int16_t", groundTypes),
	gen("fly_mode", "int8_t"),
	gen("resource_capacity", "int16_t"),
	gen("resource_decay", "float"),
	lookup("blast_armor_level", "blast_types", "int8_t", map[int64]string{
		0: "UNIT_0",
		1: "OTHER",
		2: "BUILDING",
		3: "UNIT_3",
	}),
	read("trigger_type", "int8_t"),
	lookup("interaction_mode", "interaction_modes", "int8_t", map[int64]string{
		0: "NOTHING_0",
		1: "NOTHING_1",
		2: "SELECTABLE",
		3: "SELECT_ATTACK",
		4: "SELECT_ATTACK_MOVE",
		5: "SELECT_MOVE",
	}),
	lookup("minimap_mode", "minimap_modes", "int8_t", minimapModes),
	lookup("command_attribute", "command_attributes", "int8_t", commandAttributes),
	unknown("float"),
	gen("minimap_color", "int8_t"),
	gen("language_dll_help", "uint16_t"),
	read("hot_keys", "int16_t[4]"),
	unknown("int8_t"),
	unknown("int8_t"),
	read("unselectable", "uint8_t"),
	unknown("int8_t"),
	read("selection_mode", "int8_t"),
	unknown("int8_t"),
	read("selection_mask", "int8_t"),
	read("selection_shape_type", "int8_t"),
	gen("selection_shape", "int8_t"), // 0: square, 1 and above: round
	ds.Internal("attribute", ds.StorageBitfield, ds.Number("uint8_t")),
	read("civilisation", "int8_t"),
	unknown("int16_t"),
	lookup("selection_effect", "selection_effects", "int8_t", selectionEffects),
	read("editor_selection_color", "uint8_t"),
	read("selection_radius0", "float"),
	read("selection_radius1", "float"),
	gen("hp_bar_height1", "float"),
	subdata("resource_storage", ResourceStorage, ds.Literal(3)),
	read("damage_graphic_count", "int8_t"),
	subdata("damage_graphic", DamageGraphic, ds.Sibling("damage_graphic_count")),
	id("sound_selection", "int16_t"),
	id("sound_dying", "int16_t"),
	gen("attack_mode", "int8_t"), // 0: no attack, 1: follow, 2: run when attacked, 4: attack
	read("is_edible_meat", "int8_t"),
	text("name", ds.Sibling("name_length")),
	id("id1", "int16_t"),
	id("id2", "int16_t"),
)

// UnitFlag adds a speed.
var UnitFlag = ds.Static("unit_flag", "unit", "adds speed property to units.",
	ds.Inherit(UnitObject),
	gen("speed", "float"),
)

// UnitDoppelganger has the layout of UnitFlag.
var UnitDoppelganger = ds.Static("unit_doppelganger", "unit",
	"weird doppelganger unit thats actually the same as a flag unit.",
	ds.Inherit(UnitFlag),
)

// UnitDeadOrFish adds walking graphics, rotation and tracking.
var UnitDeadOrFish = ds.Static("unit_dead_or_fish", "unit",
	"adds walking graphics, rotations and tracking properties to units.",
	ds.Inherit(UnitDoppelganger),
	id("walking_graphics0", "int16_t"),
	id("walking_graphics1", "int16_t"),
	read("rotation_speed", "float"),
	unknown("int8_t"),
	read("tracking_unit_id", "int16_t"),
	read("tracking_unit_used", "uint8_t"),
	read("tracking_unit_density", "float"),
	unknown("int8_t"),
	read("rotation_angles", "float[5]"),
)

// UnitBird adds search radius, work rate and movement sounds.
var UnitBird = ds.Static("unit_bird", "unit",
	"adds search radius and work properties, as well as movement sounds.",
	ds.Inherit(UnitDeadOrFish),
	read("sheep_conversion", "int16_t"), // 0: can be converted by unit command 107
	read("search_radius", "float"),
	gen("work_rate", "float"),
	id("drop_site0", "int16_t"),
	id("drop_site1", "int16_t"),
	gen("villager_mode", "int8_t"),
	id("move_sound", "int16_t"),
	id("stop_sound", "int16_t"),
	read("animal_mode", "int8_t"),
)

// UnitMovable adds attack and armor.
var UnitMovable = ds.Static("unit_movable", "unit", "adds attack and armor properties to units.",
	ds.Inherit(UnitBird),
	read("default_armor", "int16_t"),
	read("attack_count", "uint16_t"),
	ds.Internal("attacks", ds.StorageArrayContainer, ds.Subdata(HitType, ds.Sibling("attack_count"))),
	read("armor_count", "uint16_t"),
	ds.Internal("armors", ds.StorageArrayContainer, ds.Subdata(HitType, ds.Sibling("armor_count"))),
	lookup("interaction_type", "interaction_types", "int16_t", map[int64]string{
		-1: "NONE",
		4:  "BUILDING",
		6:  "DOCK",
		10: "WALL",
	}),
	gen("max_range", "float"),
	read("blast_radius", "float"),
	read("reload_time0", "float"),
	id("projectile_unit_id", "int16_t"),
	read("accuracy_percent", "int16_t"),
	read("tower_mode", "int8_t"),
	read("delay", "int16_t"), // frames before the projectile is shot
	read("graphics_displacement_lr", "float"),
	read("graphics_displacement_distance", "float"),
	read("graphics_displacement_height", "float"),
	lookup("blast_attack_level", "range_damage_type", "int8_t", map[int64]string{
		0: "RESOURCES",
		1: "TREES",
		2: "NEARBY_UNITS",
		3: "TARGET_ONLY",
	}),
	read("min_range", "float"),
	read("garrison_recovery_rate", "float"),
	id("attack_graphic", "int16_t"),
	read("melee_armor_displayed", "int16_t"),
	read("attack_displayed", "int16_t"),
	read("range_displayed", "float"),
	read("reload_time1", "float"),
)

// UnitProjectile adds the projectile flight settings.
var UnitProjectile = ds.Static("unit_projectile", "unit", "adds projectile specific unit properties.",
	ds.Inherit(UnitMovable),
	read("stretch_mode", "int8_t"), // 1: falls vertically to the bottom of the map
	read("compensation_mode", "int8_t"),
	read("drop_animation_mode", "int8_t"), // 1: disappear on hit
	read("penetration_mode", "int8_t"),    // 1: pass through hit object
	unknown("int8_t"),
	gen("projectile_arc", "float"),
)

// UnitLiving adds costs, creation and garrison missile properties.
var UnitLiving = ds.Static("unit_living", "unit", "adds creation location and garrison unit properties.",
	ds.Inherit(UnitMovable),
	subdata("resource_cost", ResourceCost, ds.Literal(3)),
	gen("creation_time", "int16_t"),        // in seconds
	id("creation_location_id", "int16_t"), // e.g. 118: villager
	read("creation_button_id", "int8_t"),
	unknown("float"),
	unknown("float"),
	read("missile_graphic_delay", "int8_t"),
	read("hero_mode", "int8_t"),
	id("garrison_graphic", "int32_t"),
	read("attack_missile_count", "float"),
	read("attack_missile_max_count", "int8_t"),
	read("attack_missile_duplication_spawning_width", "float"),
	read("attack_missile_duplication_spawning_length", "float"),
	read("attack_missile_duplication_spawning_randomness", "float"),
	read("attack_missile_duplication_unit_id", "int32_t"),
	read("attack_missile_duplication_graphic_id", "int32_t"),
	read("dynamic_image_update", "int8_t"),
	read("pierce_armor_displayed", "int16_t"),
)

// UnitBuilding adds construction graphics, annexes and garrison settings.
var UnitBuilding = ds.Static("unit_building", "unit",
	"construction graphics and garrison building properties for units.",
	ds.Inherit(UnitLiving),
	id("construction_graphic_id", "int16_t"),
	read("snow_graphic_id", "int16_t"),
	read("adjacent_mode", "int8_t"),
	read("icon_disabler", "int16_t"),
	read("disappears_when_built", "int8_t"),
	id("stack_unit_id", "int16_t"), // second building placed on top
	id("terrain_id", "int16_t"),    // terrain below once construction completes
	read("resource_id", "int16_t"),
	read("research_id", "int16_t"),
	unknown("int8_t"),
	subdata("building_annex", BuildingAnnex, ds.Literal(4)),
	read("head_unit_id", "int16_t"),
	read("transform_unit_id", "int16_t"),
	unknown("int16_t"),
	read("construction_sound_id", "int16_t"),
	lookup("garrison_type", "garrison_types", "int8_t", map[int64]string{
		0x00: "NONE",
		0x01: "VILLAGER",
		0x02: "INFANTRY",
		0x04: "CAVALRY",
		0x08: "MONK",
		0x0b: "NOCAVALRY",
		0x0f: "ALL",
	}),
	read("garrison_heal_rate", "float"),
	unknown("int32_t"),
	unknown("int16_t"),
	unknown("int8_t[6]"),
)

// UnitTree has the layout of UnitObject.
var UnitTree = ds.Static("unit_tree", "unit", "just a tree unit.",
	ds.Inherit(UnitObject),
)

// UnitTypes maps the unit type byte to the type name.
var UnitTypes = map[int64]string{
	10: "object",
	20: "flag",
	25: "doppelganger",
	30: "dead_or_fish",
	40: "bird",
	60: "projectile",
	70: "living",
	80: "building",
	90: "tree",
}

// UnitSchemas maps the unit type names to their layouts.
var UnitSchemas = map[string]*ds.Schema{
	"object":       UnitObject,
	"flag":         UnitFlag,
	"doppelganger": UnitDoppelganger,
	"dead_or_fish": UnitDeadOrFish,
	"bird":         UnitBird,
	"projectile":   UnitProjectile,
	"living":       UnitLiving,
	"building":     UnitBuilding,
	"tree":         UnitTree,
}
