package gamedata

// Package gamedata declares the record layouts of the empires data file for
// the supported game editions. The layouts cover the file header, terrain
// restrictions, player colors, sounds, graphics, unit headers and civs.

import (
	"fmt"
	"slices"

	ds "github.com/reoring/datskema"
)

// Editions with their known expansions.
const (
	EditionROR  = "ror"
	EditionAOC  = "aoc"
	EditionSWGB = "swgb"
)

var expansions = map[string][]string{
	EditionROR:  {},
	EditionAOC:  {"x1"},
	EditionSWGB: {"cc"},
}

// Editions lists the supported editions.
func Editions() []string { return []string{EditionAOC, EditionROR, EditionSWGB} }

// CheckVersion reports an unknown edition or an expansion the edition lacks.
func CheckVersion(v ds.Version) error {
	known, ok := expansions[v.Edition]
	if !ok {
		return fmt.Errorf("unknown edition %q (known: %v)", v.Edition, Editions())
	}
	for _, e := range v.Expansions {
		if !slices.Contains(known, e) {
			return fmt.Errorf("edition %s has no expansion %q", v.Edition, e)
		}
	}
	return nil
}

func ror(v ds.Version) bool  { return v.Edition == EditionROR }
func swgb(v ds.Version) bool { return v.Edition == EditionSWGB }
