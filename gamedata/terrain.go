package gamedata

import ds "github.com/reoring/datskema"

// TerrainPassGraphic holds the sprites shown while a unit crosses a terrain.
var TerrainPassGraphic = ds.Static("terrain_pass_graphic", "terrain", "",
	gen("slp_id_exit_tile", "int32_t"),
	gen("slp_id_enter_tile", "int32_t"),
	gen("slp_id_walk_tile", "int32_t"),
	gen("walk_sprite_rate", "float"),
)

// TerrainRestriction is read with the file's terrain_count passed in: one
// multiplier (and, after the first edition, one pass graphic) per terrain.
var TerrainRestriction = ds.NewSchema("terrain_restriction", "terrain",
	"access multiplier and pass graphics of a terrain restriction",
	func(v ds.Version) []ds.Entry {
		es := []ds.Entry{
			// 0 means inaccessible, any other value multiplies the damage
			// taken on that terrain.
			gen("accessible_dmgmultiplier", "float[terrain_count]"),
		}
		if !ror(v) {
			es = append(es, subdata("pass_graphics", TerrainPassGraphic, ds.Sibling("terrain_count")))
		}
		return es
	})
