package cache

// Package cache keeps parsed records between runs. A snapshot is only used
// when it was written for the same source file, Version and format digest;
// anything else is a miss, never an error for the caller's read.

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/DataDog/zstd"
	json "github.com/goccy/go-json"

	ds "github.com/reoring/datskema"
)

const level = zstd.BestSpeed

// Store reads and writes snapshots under Dir (os.TempDir() when empty).
type Store struct {
	Dir    string
	Logger *slog.Logger
}

type snapshot struct {
	Source  string     `json:"source"`
	Version ds.Version `json:"version"`
	Digest  []byte     `json:"digest"`
	Record  *record    `json:"record"`
}

func (s *Store) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// Path returns the snapshot file for source.
func (s *Store) Path(source string) string {
	dir := s.Dir
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "datskema-"+filepath.Base(source)+".snapshot")
}

// Load returns the cached record of source. hit is false when no snapshot
// exists or it is stale or unreadable; those cases are logged. err is only
// set when the snapshot exists but cannot be opened.
func (s *Store) Load(source string, digest []byte, v ds.Version) (rec *ds.Record, hit bool, err error) {
	p := s.Path(source)
	log := s.logger().With("snapshot", p)
	compressed, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		log.Debug("no cached snapshot")
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read snapshot: %w", err)
	}
	raw, err := zstd.Decompress(nil, compressed)
	if err != nil {
		log.Warn("could not use cached snapshot", "err", err)
		return nil, false, nil
	}
	var snap snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		log.Warn("could not use cached snapshot", "err", err)
		return nil, false, nil
	}
	switch {
	case snap.Source != filepath.Base(source):
		log.Info("snapshot belongs to another source", "source", snap.Source)
		return nil, false, nil
	case snap.Version.Key() != v.Key():
		log.Info("snapshot is for another version", "cached", snap.Version.Key(), "want", v.Key())
		return nil, false, nil
	case !bytes.Equal(snap.Digest, digest):
		log.Info("snapshot format digest changed")
		return nil, false, nil
	}
	rec, err = decodeRecord(snap.Record)
	if err != nil || rec == nil {
		log.Warn("could not use cached snapshot", "err", err)
		return nil, false, nil
	}
	log.Info("using cached snapshot")
	return rec, true, nil
}

// Save writes rec as the snapshot of source, replacing any previous one.
func (s *Store) Save(source string, digest []byte, v ds.Version, rec *ds.Record) error {
	enc, err := encodeRecord(rec)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	raw, err := json.Marshal(snapshot{Source: filepath.Base(source), Version: v, Digest: digest, Record: enc})
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	compressed, err := zstd.CompressLevel(nil, raw, level)
	if err != nil {
		return fmt.Errorf("compress snapshot: %w", err)
	}
	p := s.Path(source)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	// Concurrent saves of sources with the same base name each get their
	// own temp file; the last rename wins.
	f, err := os.CreateTemp(filepath.Dir(p), filepath.Base(p)+".*.tmp")
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	tmp := f.Name()
	_, err = f.Write(compressed)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmp, p)
	}
	if err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write snapshot: %w", err)
	}
	s.logger().Debug("wrote snapshot", "snapshot", p, "bytes", len(compressed))
	return nil
}
