package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	ds "github.com/reoring/datskema"
	"github.com/reoring/datskema/cache"
	"github.com/reoring/datskema/codegen"
	"github.com/reoring/datskema/config"
	"github.com/reoring/datskema/gamedata"
	"github.com/reoring/datskema/i18n"
	"github.com/reoring/datskema/source"
	"github.com/reoring/datskema/table"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	sub := os.Args[1]
	switch sub {
	case "read":
		readCmd(os.Args[2:])
	case "gen":
		genCmd(os.Args[2:])
	case "digest":
		digestCmd(os.Args[2:])
	case "diff":
		diffCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `datskema CLI

Usage:
  datskema read   [common flags] [-json] [-no-cache] [-o dir] file.dat...
  datskema gen    [common flags] [-package name] [-o dir]
  datskema digest [common flags]
  datskema diff   [common flags] a.dat b.dat

Common flags:
  -config file.yaml  settings file (flags override it)
  -edition name      game edition (aoc, ror, swgb)
  -expansions a,b    expansions of the edition
  -raw               inputs are already inflated
  -v                 debug logging`)
}

// common holds the flags every subcommand accepts.
type common struct {
	configPath string
	edition    string
	expansions string
	raw        bool
	verbose    bool
}

func (c *common) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "", "YAML settings file")
	fs.StringVar(&c.edition, "edition", "", "game edition")
	fs.StringVar(&c.expansions, "expansions", "", "comma-separated expansions")
	fs.BoolVar(&c.raw, "raw", false, "inputs are already inflated")
	fs.BoolVar(&c.verbose, "v", false, "enable debug logs")
}

// load merges the config file with the flags and sets up logging and
// message language.
func (c *common) load(fs *flag.FlagSet) (config.Config, *slog.Logger) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		fatalf("%v", err)
	}
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if c.edition != "" {
		cfg.Version.Edition = c.edition
		if !set["expansions"] {
			cfg.Version.Expansions = nil
		}
	}
	if set["expansions"] {
		cfg.Version.Expansions = splitCSV(c.expansions)
	}
	if set["raw"] {
		cfg.Raw = c.raw
	}
	if err := gamedata.CheckVersion(cfg.Version); err != nil {
		fatalf("%v", err)
	}
	level := slog.LevelInfo
	if c.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	i18n.SetLanguage(cfg.Language)
	return cfg, logger
}

func readCmd(args []string) {
	fs := flag.NewFlagSet("read", flag.ExitOnError)
	var c common
	var out string
	var asJSON, noCache bool
	c.register(fs)
	fs.StringVar(&out, "o", "", "output directory")
	fs.BoolVar(&asJSON, "json", false, "write the record as JSON instead of tables")
	fs.BoolVar(&noCache, "no-cache", false, "always parse the input files")
	_ = fs.Parse(args)
	if fs.NArg() == 0 {
		fs.Usage()
		os.Exit(2)
	}
	cfg, logger := c.load(fs)
	if out != "" {
		cfg.OutDir = out
	}
	if noCache {
		cfg.NoCache = true
	}
	store := &cache.Store{Dir: cfg.CacheDir, Logger: logger}

	var g errgroup.Group
	g.SetLimit(cfg.Parallelism)
	for _, name := range fs.Args() {
		g.Go(func() error {
			log := logger.With("file", name)
			rec, err := loadRecord(name, cfg, store, log)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			stem := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
			if asJSON {
				return writeJSON(filepath.Join(cfg.OutDir, stem+".json"), rec)
			}
			n, err := writeTables(cfg.OutDir, stem, rec, cfg.Version)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			log.Info("dumped tables", "tables", n, "dir", cfg.OutDir)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		fatalf("read: %v", err)
	}
}

// loadRecord returns the parsed record of name, from the snapshot store when
// it holds a current one.
func loadRecord(name string, cfg config.Config, store *cache.Store, log *slog.Logger) (*ds.Record, error) {
	s, err := gamedata.Root(cfg.Version)
	if err != nil {
		return nil, err
	}
	digest, err := ds.Digest(s, cfg.Version)
	if err != nil {
		return nil, err
	}
	if !cfg.NoCache {
		rec, hit, err := store.Load(name, digest, cfg.Version)
		if err != nil {
			log.Warn("snapshot store unavailable", "err", err)
		}
		if hit {
			return rec, nil
		}
	}
	buf, err := source.ReadFile(name, cfg.Raw)
	if err != nil {
		return nil, err
	}
	log.Debug("read data file", "bytes", len(buf))
	rec, _, err := gamedata.Read(buf, cfg.Version)
	if err != nil {
		return nil, err
	}
	if !cfg.NoCache {
		if err := store.Save(name, digest, cfg.Version, rec); err != nil {
			log.Warn("could not save snapshot", "err", err)
		}
	}
	return rec, nil
}

func writeTables(dir, base string, rec *ds.Record, v ds.Version) (int, error) {
	defs, err := table.Root(rec, gamedata.EmpiresDat, v, base)
	if err != nil {
		return 0, err
	}
	for _, d := range defs {
		text, err := d.Text()
		if err != nil {
			return 0, err
		}
		if err := writeFile(filepath.Join(dir, filepath.FromSlash(d.File())), []byte(text)); err != nil {
			return 0, err
		}
	}
	return len(defs), nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return writeFile(path, append(data, '\n'))
}

func genCmd(args []string) {
	fs := flag.NewFlagSet("gen", flag.ExitOnError)
	var c common
	var out, pkg string
	c.register(fs)
	fs.StringVar(&out, "o", "", "output directory")
	fs.StringVar(&pkg, "package", "", "package name of the generated code")
	_ = fs.Parse(args)
	cfg, logger := c.load(fs)
	if out != "" {
		cfg.OutDir = out
	}
	if pkg != "" {
		cfg.Package = pkg
	}
	s, err := gamedata.Root(cfg.Version)
	if err != nil {
		fatalf("gen: %v", err)
	}
	snippets, err := codegen.Generate([]*ds.Schema{s}, cfg.Version)
	if err != nil {
		fatalf("gen: %v", err)
	}
	files, err := codegen.Assemble(snippets, codegen.AssembleOpt{Package: cfg.Package})
	if err != nil {
		fatalf("gen: %v", err)
	}
	for _, f := range files {
		if err := writeFile(filepath.Join(cfg.OutDir, f.Name), f.Source); err != nil {
			fatalf("gen: %v", err)
		}
		logger.Debug("wrote generated file", "file", f.Name, "uses", f.Uses)
	}
	logger.Info("generated code", "files", len(files), "dir", cfg.OutDir)
}

func digestCmd(args []string) {
	fs := flag.NewFlagSet("digest", flag.ExitOnError)
	var c common
	c.register(fs)
	_ = fs.Parse(args)
	cfg, _ := c.load(fs)
	s, err := gamedata.Root(cfg.Version)
	if err != nil {
		fatalf("digest: %v", err)
	}
	hex, err := ds.DigestHex(s, cfg.Version)
	if err != nil {
		fatalf("digest: %v", err)
	}
	fmt.Println(hex)
}

func diffCmd(args []string) {
	fs := flag.NewFlagSet("diff", flag.ExitOnError)
	var c common
	c.register(fs)
	_ = fs.Parse(args)
	if fs.NArg() != 2 {
		fs.Usage()
		os.Exit(2)
	}
	cfg, logger := c.load(fs)
	vals := make([]*ds.Value, 2)
	var g errgroup.Group
	for i, name := range fs.Args() {
		g.Go(func() error {
			buf, err := source.ReadFile(name, cfg.Raw)
			if err != nil {
				return err
			}
			_, val, err := gamedata.Read(buf, cfg.Version)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			logger.Debug("read data file", "file", name, "bytes", len(buf))
			vals[i] = val
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		fatalf("diff: %v", err)
	}
	d, err := ds.Diff(vals[0], vals[1])
	if err != nil {
		fatalf("diff: %v", err)
	}
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		fatalf("diff: %v", err)
	}
	fmt.Println(string(data))
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
