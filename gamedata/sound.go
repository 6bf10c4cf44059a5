package gamedata

import ds "github.com/reoring/datskema"

// SoundItem is one of the files a sound picks from.
var SoundItem = ds.NewSchema("sound_item", "sound", "one possible file for a sound.",
	func(v ds.Version) []ds.Entry {
		es := []ds.Entry{
			text("filename", ds.Literal(13)),
			id("resource_id", "int32_t"),
			gen("probablilty", "int16_t"),
		}
		if !ror(v) {
			es = append(es,
				id("civilisation", "int16_t"),
				id("player_id", "int16_t"),
			)
		}
		return es
	})

// Sound groups the files played for one sound id.
var Sound = ds.Static("sound", "sound", "describes a sound, consisting of several sound items.",
	id("id", "int16_t"),
	gen("play_delay", "int16_t"),
	read("file_count", "uint16_t"),
	gen("cache_time", "int32_t"), // always 300000
	subdata("sound_items", SoundItem, ds.Sibling("file_count")),
)
