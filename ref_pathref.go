package datskema

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/reoring/datskema/i18n"
)

// PathRef builds JSON Pointer paths into a Record in a chain-safe way and
// creates Issues located at them.
type PathRef interface {
	Field(name string) PathRef
	Index(i int) PathRef
	Pointer() string
	Issue(code string, offset int64, hint string, kv ...any) Issue
}

// RootPath returns the PathRef of a top-level record.
func RootPath() PathRef { return &pathRef{} }

// PathAt parses a pointer such as "/units/2/name".
func PathAt(path string) PathRef {
	if path == "" || path == "/" {
		return RootPath()
	}
	parts := []string{}
	for _, p := range strings.Split(path, "/") {
		if p == "" {
			continue
		}
		parts = append(parts, p)
	}
	return &pathRef{parts: parts}
}

type pathRef struct {
	parts []string
}

func (p *pathRef) Field(name string) PathRef {
	if name == "" {
		return p
	}
	// escape '~' -> '~0', '/' -> '~1' per RFC6901
	esc := strings.ReplaceAll(strings.ReplaceAll(name, "~", "~0"), "/", "~1")
	return &pathRef{parts: append(append([]string{}, p.parts...), esc)}
}

func (p *pathRef) Index(i int) PathRef {
	return &pathRef{parts: append(append([]string{}, p.parts...), strconv.Itoa(i))}
}

func (p *pathRef) Pointer() string {
	if len(p.parts) == 0 {
		return "/"
	}
	return "/" + strings.Join(p.parts, "/")
}

// Issue creates an Issue at this path. kv pairs become Params and are also
// offered to the translator as message placeholders.
func (p *pathRef) Issue(code string, offset int64, hint string, kv ...any) Issue {
	return newIssue(p.Pointer(), code, offset, hint, kv...)
}

func newIssue(path, code string, offset int64, hint string, kv ...any) Issue {
	var params map[string]any
	var data map[string]string
	if len(kv) > 1 {
		params = map[string]any{}
		data = map[string]string{}
		for i := 0; i+1 < len(kv); i += 2 {
			k := fmt.Sprint(kv[i])
			params[k] = kv[i+1]
			data[k] = fmt.Sprint(kv[i+1])
		}
	}
	return Issue{Path: path, Code: code, Message: i18n.T(code, data), Hint: hint, Offset: offset, Params: params}
}

// singleIssue wraps one located issue as an error.
func singleIssue(path, code string, offset int64, hint string, kv ...any) error {
	return Issues{newIssue(path, code, offset, hint, kv...)}
}
