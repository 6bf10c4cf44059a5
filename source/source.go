package source

// Package source reads and writes the compressed container that wraps game
// data files: a raw deflate stream (window 15, no zlib header or checksum).

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/flate"
)

// MaxSize bounds the inflated size of one data file.
const MaxSize = 1 << 30

// Inflate decompresses a raw deflate stream.
func Inflate(compressed []byte) ([]byte, error) {
	return InflateReader(bytes.NewReader(compressed))
}

// InflateReader decompresses the raw deflate stream read from r.
func InflateReader(r io.Reader) ([]byte, error) {
	fr := flate.NewReader(r)
	defer fr.Close()
	out, err := io.ReadAll(io.LimitReader(fr, MaxSize+1))
	if err != nil {
		return nil, fmt.Errorf("inflate: %w", err)
	}
	if len(out) > MaxSize {
		return nil, fmt.Errorf("inflate: data exceeds %d bytes", MaxSize)
	}
	return out, nil
}

// Deflate compresses data into a raw deflate stream at the given level
// (flate.DefaultCompression when level is 0).
func Deflate(data []byte, level int) ([]byte, error) {
	if level == 0 {
		level = flate.DefaultCompression
	}
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, level)
	if err != nil {
		return nil, fmt.Errorf("deflate: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("deflate: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("deflate: %w", err)
	}
	return buf.Bytes(), nil
}

// ReadFile reads and inflates a compressed data file. With raw set the file
// is returned as is, for inputs that were decompressed beforehand.
func ReadFile(name string, raw bool) ([]byte, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open data file: %w", err)
	}
	defer f.Close()
	if raw {
		data, err := io.ReadAll(f)
		if err != nil {
			return nil, fmt.Errorf("read data file %s: %w", name, err)
		}
		return data, nil
	}
	data, err := InflateReader(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return data, nil
}

// WriteFile deflates data into name.
func WriteFile(name string, data []byte, level int) error {
	compressed, err := Deflate(data, level)
	if err != nil {
		return err
	}
	if err := os.WriteFile(name, compressed, 0o644); err != nil {
		return fmt.Errorf("write data file: %w", err)
	}
	return nil
}
