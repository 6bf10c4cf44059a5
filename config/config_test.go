package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/reoring/datskema/config"
)

func TestParse_OverridesDefaults(t *testing.T) {
	cfg, err := config.Parse([]byte(`
version:
  edition: swgb
  expansions: [cc]
cache_dir: /var/cache/datskema
parallelism: 2
language: ja
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Version.Key() != "swgb+cc" || cfg.CacheDir != "/var/cache/datskema" || cfg.Parallelism != 2 || cfg.Language != "ja" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Package != "gamedata" || cfg.OutDir != "out" {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}

func TestParse_Empty(t *testing.T) {
	cfg, err := config.Parse(nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Version.Edition != config.Default().Version.Edition {
		t.Fatalf("empty file must yield defaults: %+v", cfg)
	}
}

func TestParse_Rejects(t *testing.T) {
	cases := map[string]string{
		"unknown key":    "edition: aoc\n",
		"no edition":     "version:\n  edition: \"\"\n",
		"parallelism":    "parallelism: -1\n",
		"language":       "language: fr\n",
		"malformed yaml": "version: [\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := config.Parse([]byte(doc)); err == nil {
				t.Fatalf("expected an error for %q", doc)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	if cfg, err := config.Load(""); err != nil || cfg.Package != "gamedata" {
		t.Fatalf("empty path: %+v %v", cfg, err)
	}
	p := filepath.Join(t.TempDir(), "datskema.yaml")
	if err := os.WriteFile(p, []byte("out_dir: build\nparallelism: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := config.Load(p)
	if err == nil || !strings.Contains(err.Error(), "parallelism") {
		t.Fatalf("expected a parallelism error, got %v", err)
	}
}
