package table

import "strings"

// Delimiter separates columns in a row.
const Delimiter = ','

// Escape encodes a cell: backslash, comma and newline are backslash-escaped.
func Escape(s string) string {
	if !strings.ContainsAny(s, "\\,\n") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 4)
	for _, c := range s {
		switch c {
		case '\\':
			b.WriteString(`\\`)
		case ',':
			b.WriteString(`\,`)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteRune(c)
		}
	}
	return b.String()
}

// Unescape reverses Escape. An unknown escape keeps the escaped character; a
// trailing lone backslash is kept as is.
func Unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		if s[i] == 'n' {
			b.WriteByte('\n')
		} else {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// SplitRow splits a rendered row at unescaped delimiters and unescapes each
// cell.
func SplitRow(line string) []string {
	var cells []string
	start := 0
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++
		case Delimiter:
			cells = append(cells, Unescape(line[start:i]))
			start = i + 1
		}
	}
	return append(cells, Unescape(line[start:]))
}
