package gamedata

import ds "github.com/reoring/datskema"

var commandAbilities = map[int64]string{
	0:    "UNUSED",
	1:    "MOVE_TO",
	2:    "FOLLOW",
	3:    "GARRISON",
	4:    "EXPLORE",
	5:    "GATHER", // gather, rebuild
	6:    "NATURAL_WONDERS_CHEAT",
	7:    "ATTACK",
	8:    "SHOOT",
	10:   "FLY",
	11:   "SCARE_HUNT", // triggers flee
	12:   "UNLOAD",     // transport, garrison
	13:   "GUARD",
	20:   "ESCAPE",
	21:   "MAKE_FARM",
	101:  "BUILD",
	102:  "MAKE_OBJECT",
	103:  "MAKE_TECH",
	104:  "CONVERT",
	105:  "HEAL",
	106:  "REPAIR",
	107:  "CONVERT_AUTO", // can get auto-converted
	108:  "DISCOVERY",
	109:  "SHOOTING_RANGE_RETREAT",
	110:  "HUNT",
	111:  "TRADE",
	120:  "WONDER_VICTORY_GENERATE",
	121:  "DESELECT_ON_TASK",
	122:  "LOOT",
	123:  "HOUSING",
	124:  "PACK",
	125:  "UNPACK_ATTACK",
	130:  "OFF_MAP_TRADE_0",
	131:  "OFF_MAP_TRADE_1",
	132:  "PICKUP_UNIT",
	133:  "PICKUP_133",
	134:  "PICKUP_134",
	135:  "KIDNAP_UNIT",
	136:  "DEPOSIT_UNIT",
	149:  "SHEAR",
	768:  "UNKNOWN_768",
	1024: "UNKNOWN_1024",
}

var selectionTypes = map[int64]string{
	0: "ANY_0",              // select anything
	1: "OWNED_UNITS",        // your own things
	2: "NEUTRAL_ENEMY",      // enemy and neutral things
	3: "NOTHING",
	4: "GAIA_OWNED_ALLY",    // any of gaia, owned or allied things
	5: "GAYA_NEUTRAL_ENEMY", // any of gaia, neutral or enemy things
	6: "NOT_OWNED",          // all things that aren't yours
	7: "ANY_7",
}

// UnitCommand is one task a unit may receive from a script or a player.
var UnitCommand = ds.Static("unit_command", "unit", "a command a single unit may receive by script or human.",
	read("command_used", "int16_t"), // always 1
	id("id", "int16_t"),
	unknown("int8_t"),
	lookup("type", "command_ability", "int16_t", commandAbilities),
	gen("class_id", "int16_t"),
	id("unit_id", "int16_t"),
	unknown("int16_t"),
	id("resource_in", "int16_t"),           // carry resource
	id("resource_productivity", "int16_t"), // multiplies the amount you can gather
	id("resource_out", "int16_t"),          // drop resource
	id("resource", "int16_t"),
	gen("work_rate_multiplier", "float"),
	gen("execution_radius", "float"),
	gen("extra_range", "float"),
	unknown("int8_t"),
	unknown("float"),
	read("selection_enabled", "int8_t"),
	unknown("int8_t"),
	unknown("int16_t"),
	unknown("int16_t"),
	lookup("targets_allowed", "selection_type", "int8_t", selectionTypes),
	unknown("int8_t"),
	unknown("int8_t"),
	id("tool_graphic_id", "int16_t"),           // walking with tool but no resource
	id("proceed_graphic_id", "int16_t"),        // proceeding resource gathering or attack
	id("action_graphic_id", "int16_t"),         // actual execution or transformation graphic
	id("carrying_graphic_id", "int16_t"),       // display resources in hands
	id("execution_sound_id", "int16_t"),        // sound to play when execution starts
	id("resource_deposit_sound_id", "int16_t"), // sound to play on resource drop
)

// UnitHeader lists the commands of one unit id. A zero exists flag ends the
// entry: the remaining fields keep their defaults.
var UnitHeader = ds.Static("unit_header", "unit", "stores a bunch of unit commands.",
	ds.Internal("exists", ds.StorageBool, ds.Continue("uint8_t")),
	read("unit_command_count", "uint16_t"),
	subdata("unit_commands", UnitCommand, ds.Sibling("unit_command_count")),
)

// ResourceStorage is the resource capacity of one unit mode.
var ResourceStorage = ds.Static("resource_storage", "unit", "determines the resource storage capacity for one unit mode.",
	read("type", "int16_t"),
	read("amount", "float"),
	ds.Internal("used_mode", ds.StorageID, ds.EnumLookup("resource_handling", "int8_t", map[int64]string{
		0: "DECAYABLE",
		1: "KEEP_AFTER_DEATH",
		2: "RESET_ON_DEATH_INSTANT",
		4: "RESET_ON_DEATH_WHEN_COMPLETED",
	})),
)

// DamageGraphic is shown at a given damage percentage.
var DamageGraphic = ds.Static("damage_graphic", "unit",
	"stores one possible unit image that is displayed at a given damage percentage.",
	id("graphic_id", "int16_t"),
	gen("damage_percent", "int8_t"),
	lookup("apply_mode", "damage_draw_type", "int8_t", map[int64]string{
		0: "ADD_FLAMES_0",
		1: "ADD_FLAMES_1",
		2: "REPLACE",
	}),
	unknown("int8_t"),
)

// HitType is an attack or armor amount for one damage class.
var HitType = ds.Static("hit_type", "unit", "stores attack amount for a damage type.",
	ds.Internal("type_id", ds.StorageID, ds.EnumLookup("hit_class", "int16_t", map[int64]string{
		-1: "NONE",
		1:  "INFANTRY",
		2:  "SHIP_TURTLE",
		3:  "UNITS_PIERCE",
		4:  "UNITS_MELEE",
		5:  "WAR_ELEPHANT",
		8:  "CAVALRY",
		11: "BUILDINGS_NO_PORT",
		13: "STONE_DEFENSES",
		15: "ARCHERS",
		16: "SHIPS_CAMELS_SABOTEURS",
		17: "RAMS",
		18: "TREES",
		19: "UNIQUE_UNITS",
		20: "SIEGE_WEAPONS",
		21: "BUILDINGS",
		22: "WALLS_GATES",
		24: "BOAR",
		25: "MONKS",
		26: "CASTLE",
		27: "SPEARMEN",
		28: "CAVALRY_ARCHER",
		29: "EAGLE_WARRIOR",
	})),
	read("amount", "int16_t"),
)

// Only the resource types that appear in unit costs are listed.
var resourceTypes = map[int64]string{
	-1: "NONE",
	0:  "FOOD_STORAGE",
	1:  "WOOD_STORAGE",
	2:  "STONE_STORAGE",
	3:  "GOLD_STORAGE",
	4:  "POPULATION_HEADROOM",
	11: "POPULATION",
	15: "MEAT_STORAGE",
	16: "BERRY_STORAGE",
	17: "FISH_STORAGE",
	31: "FOOD_COUNT",
	32: "BONUS_POPULATION",
	56: "ORE_STORAGE",
}

// ResourceCost is one resource amount paid to create a unit.
var ResourceCost = ds.Static("resource_cost", "unit", "stores cost for one resource for creating the unit.",
	ds.Internal("type_id", ds.StorageID, ds.EnumLookup("resource_types", "int16_t", resourceTypes)),
	read("amount", "int16_t"),
	read("enabled", "int16_t"),
)

// BuildingAnnex is a building placed next to another one.
var BuildingAnnex = ds.Static("building_annex", "unit", "a possible building annex.",
	id("unit_id", "int16_t"),
	gen("misplaced0", "float"),
	gen("misplaced1", "float"),
)
