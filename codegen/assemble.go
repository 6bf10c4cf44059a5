package codegen

// Package codegen turns Schemas into Go source: Generate produces
// dependency-annotated snippets, Assemble orders them per output file.

import (
	"fmt"
	"go/format"
	"slices"
	"sort"
	"strings"

	ds "github.com/reoring/datskema"
)

// Sections order snippets within a file before OrderKey does.
const (
	SectionEnum = iota
	SectionType
	SectionMethod
)

// Snippet is one fragment of generated source. Defines lists the type names it
// introduces, Refs the type names that must be defined before it.
type Snippet struct {
	File     string
	Section  int
	Text     string
	Defines  []string
	Refs     []string
	OrderKey string
	Imports  []string
}

// File is one assembled output file.
type File struct {
	Name   string
	Source []byte
	// Uses lists the other files this one depends on.
	Uses []string
}

// AssembleOpt controls the file header.
type AssembleOpt struct {
	Package string
	// Raw skips gofmt, for callers that post-process the text.
	Raw bool
}

// Assemble groups snippets by File and orders every file so that a snippet
// follows the snippets defining the types it refers to. Ties are broken by
// Section, then OrderKey, then Text. A reference nobody defines is a
// missing_type error, two definers of one type or a reference cycle is an
// ordering_conflict.
func Assemble(snippets []*Snippet, opt AssembleOpt) ([]File, error) {
	definer := map[string]*Snippet{}
	var errs ds.Issues
	for _, s := range snippets {
		for _, name := range s.Defines {
			if prev, ok := definer[name]; ok && prev != s {
				errs = append(errs, ds.PathAt("/"+s.File).Field(name).Issue(ds.CodeOrderingConflict, -1,
					fmt.Sprintf("type %s is defined in %s and %s", name, prev.File, s.File), "type", name))
				continue
			}
			definer[name] = s
		}
	}
	missing := map[string]bool{}
	for _, s := range snippets {
		for _, r := range s.Refs {
			if _, ok := definer[r]; !ok {
				missing[r] = true
			}
		}
	}
	if len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for n := range missing {
			names = append(names, n)
		}
		sort.Strings(names)
		errs = append(errs, ds.RootPath().Issue(ds.CodeMissingType, -1,
			"undefined: "+strings.Join(names, ", "), "types", strings.Join(names, ", ")))
	}
	if len(errs) > 0 {
		return nil, errs
	}

	byFile := map[string][]*Snippet{}
	for _, s := range snippets {
		byFile[s.File] = append(byFile[s.File], s)
	}
	names := make([]string, 0, len(byFile))
	for n := range byFile {
		names = append(names, n)
	}
	sort.Strings(names)

	out := make([]File, 0, len(names))
	for _, name := range names {
		ordered, err := order(name, byFile[name], definer)
		if err != nil {
			return nil, err
		}
		f, err := render(name, ordered, definer, opt)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func less(a, b *Snippet) bool {
	if a.Section != b.Section {
		return a.Section < b.Section
	}
	if a.OrderKey != b.OrderKey {
		return a.OrderKey < b.OrderKey
	}
	return a.Text < b.Text
}

// order runs Kahn's algorithm over the snippets of one file. Only references
// to types defined in the same file create edges.
func order(file string, snippets []*Snippet, definer map[string]*Snippet) ([]*Snippet, error) {
	indeg := map[*Snippet]int{}
	next := map[*Snippet][]*Snippet{}
	for _, s := range snippets {
		seen := map[*Snippet]bool{}
		for _, r := range s.Refs {
			d := definer[r]
			if d == s || d.File != file || seen[d] {
				continue
			}
			seen[d] = true
			next[d] = append(next[d], s)
			indeg[s]++
		}
	}
	var ready []*Snippet
	for _, s := range snippets {
		if indeg[s] == 0 {
			ready = append(ready, s)
		}
	}
	out := make([]*Snippet, 0, len(snippets))
	for len(ready) > 0 {
		sort.SliceStable(ready, func(i, j int) bool { return less(ready[i], ready[j]) })
		s := ready[0]
		ready = ready[1:]
		out = append(out, s)
		for _, n := range next[s] {
			indeg[n]--
			if indeg[n] == 0 {
				ready = append(ready, n)
			}
		}
	}
	if len(out) != len(snippets) {
		var stuck []string
		for _, s := range snippets {
			if indeg[s] > 0 {
				stuck = append(stuck, s.Defines...)
			}
		}
		sort.Strings(stuck)
		return nil, ds.Issues{ds.PathAt("/"+file).Issue(ds.CodeOrderingConflict, -1,
			"reference cycle between "+strings.Join(stuck, ", "), "types", strings.Join(stuck, ", "))}
	}
	return out, nil
}

func render(name string, snippets []*Snippet, definer map[string]*Snippet, opt AssembleOpt) (File, error) {
	imports := map[string]bool{}
	uses := map[string][]string{}
	for _, s := range snippets {
		for _, imp := range s.Imports {
			imports[imp] = true
		}
		for _, r := range s.Refs {
			if d := definer[r]; d.File != name && !slices.Contains(uses[d.File], r) {
				uses[d.File] = append(uses[d.File], r)
			}
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "// Code generated by datskema. DO NOT EDIT.\n\npackage %s\n", opt.Package)
	if len(imports) > 0 {
		var std, ext []string
		for imp := range imports {
			if strings.Contains(strings.SplitN(imp, "/", 2)[0], ".") {
				ext = append(ext, imp)
			} else {
				std = append(std, imp)
			}
		}
		sort.Strings(std)
		sort.Strings(ext)
		b.WriteString("\nimport (\n")
		for _, imp := range std {
			fmt.Fprintf(&b, "\t%q\n", imp)
		}
		if len(std) > 0 && len(ext) > 0 {
			b.WriteString("\n")
		}
		for _, imp := range ext {
			fmt.Fprintf(&b, "\t%q\n", imp)
		}
		b.WriteString(")\n")
	}
	files := make([]string, 0, len(uses))
	for f := range uses {
		files = append(files, f)
	}
	sort.Strings(files)
	if len(files) > 0 {
		b.WriteString("\n")
	}
	for _, f := range files {
		sort.Strings(uses[f])
		fmt.Fprintf(&b, "// %s: uses %s\n", f, strings.Join(uses[f], ", "))
	}
	for _, s := range snippets {
		b.WriteString("\n")
		b.WriteString(strings.TrimRight(s.Text, "\n"))
		b.WriteString("\n")
	}

	f := File{Name: name, Source: []byte(b.String()), Uses: files}
	if opt.Raw {
		return f, nil
	}
	src, err := format.Source(f.Source)
	if err != nil {
		iss := ds.PathAt("/"+name).Issue(ds.CodeFormatError, -1, err.Error())
		iss.Cause = err
		return File{}, ds.Issues{iss}
	}
	f.Source = src
	return f, nil
}
