package table

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strconv"
	"strings"

	ds "github.com/reoring/datskema"
)

// Filler is implemented by generated row types: Fill parses one split row.
type Filler interface {
	Fill(row []string) error
}

// Recurser is implemented by generated row types that reference child
// tables; dir is the directory of the table the row was read from.
type Recurser interface {
	Recurse(fsys fs.FS, dir string) error
}

// ReadRows reads a rendered table and returns its data rows split into cells.
// Header and comment lines ("#...") and empty lines are skipped.
func ReadRows(r io.Reader) ([][]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	var rows [][]string
	for sc.Scan() {
		line := strings.TrimSuffix(sc.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rows = append(rows, SplitRow(line))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read table: %w", err)
	}
	return rows, nil
}

// Load reads the table at name from fsys and fills one T per row, then lets
// each row load its own child tables.
func Load[T any, PT interface {
	*T
	Filler
}](fsys fs.FS, name string) ([]T, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open table %s: %w", name, err)
	}
	defer f.Close()
	rows, err := ReadRows(f)
	if err != nil {
		return nil, err
	}
	out := make([]T, len(rows))
	for i, row := range rows {
		if err := PT(&out[i]).Fill(row); err != nil {
			return nil, fmt.Errorf("%s row %d: %w", name, i, err)
		}
	}
	dir := path.Dir(name)
	for i := range out {
		if r, ok := any(PT(&out[i])).(Recurser); ok {
			if err := r.Recurse(fsys, dir); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// Subdata is the field type generated for child-table columns: the cell holds
// the file name and Recurse loads its rows.
type Subdata[T any, PT interface {
	*T
	Filler
}] struct {
	Filename string
	Data     []T
}

// Set stores the file name cell.
func (s *Subdata[T, PT]) Set(cell string) { s.Filename = cell }

// Recurse loads the referenced table relative to dir.
func (s *Subdata[T, PT]) Recurse(fsys fs.FS, dir string) error {
	if s.Filename == "" {
		return nil
	}
	data, err := Load[T, PT](fsys, path.Join(dir, s.Filename))
	if err != nil {
		return err
	}
	s.Data = data
	return nil
}

// Integer lists the wire integer types.
type Integer interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Float lists the wire float types.
type Float interface {
	~float32 | ~float64
}

// ParseInt parses a decimal cell into T, rejecting values out of T's range.
func ParseInt[T Integer](cell string) (T, error) {
	var zero T
	if zero-1 < zero {
		n, err := strconv.ParseInt(cell, 10, 64)
		if err != nil {
			return zero, err
		}
		if int64(T(n)) != n {
			return zero, fmt.Errorf("%d out of range", n)
		}
		return T(n), nil
	}
	n, err := strconv.ParseUint(cell, 10, 64)
	if err != nil {
		return zero, err
	}
	if uint64(T(n)) != n {
		return zero, fmt.Errorf("%d out of range", n)
	}
	return T(n), nil
}

// ParseFloat parses a float cell into T.
func ParseFloat[T Float](cell string) (T, error) {
	var zero T
	bits := 64
	if _, ok := any(zero).(float32); ok {
		bits = 32
	}
	f, err := strconv.ParseFloat(cell, bits)
	if err != nil {
		return zero, err
	}
	return T(f), nil
}

// ParseInts parses a space-separated integer array cell.
func ParseInts[T Integer](cell string) ([]T, error) {
	fields := strings.Fields(cell)
	out := make([]T, len(fields))
	for i, f := range fields {
		n, err := ParseInt[T](f)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

// ParseFloats parses a space-separated float array cell.
func ParseFloats[T Float](cell string) ([]T, error) {
	fields := strings.Fields(cell)
	out := make([]T, len(fields))
	for i, f := range fields {
		n, err := ParseFloat[T](f)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

// ColumnMismatch reports a row whose cell count differs from the struct's
// member count.
func ColumnMismatch(structName string, want, got int) error {
	return ds.Issues{ds.PathAt("/"+structName).Issue(ds.CodeColumnMismatch, -1,
		fmt.Sprintf("tokenizing %s led to %d columns (expected %d)", structName, got, want), "want", want, "got", got)}
}

// CellError reports a cell that does not parse as its column type.
func CellError(structName string, col int, err error) error {
	iss := ds.PathAt("/"+structName).Index(col).Issue(ds.CodeInvalidType, -1,
		fmt.Sprintf("column %d: %v", col, err), "column", col)
	iss.Cause = err
	return ds.Issues{iss}
}
