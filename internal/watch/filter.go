package watch

import (
	"path"
	"strings"

	"github.com/gobwas/glob"
)

// Filter decides which changed paths are reported. Patterns containing a
// slash match the whole root-relative path; patterns without one match any
// single path element, so "*.swp" or ".git" apply at every depth.
type Filter struct {
	include []pattern
	exclude []pattern
}

type pattern struct {
	g        glob.Glob
	anchored bool
}

// NewFilter compiles include and exclude globs. An empty include list
// matches everything.
func NewFilter(include, exclude []string) (*Filter, error) {
	inc, err := compile(include)
	if err != nil {
		return nil, err
	}
	exc, err := compile(exclude)
	if err != nil {
		return nil, err
	}
	return &Filter{include: inc, exclude: exc}, nil
}

func compile(patterns []string) ([]pattern, error) {
	out := make([]pattern, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, err
		}
		out = append(out, pattern{g: g, anchored: strings.Contains(p, "/")})
	}
	return out, nil
}

func (p pattern) match(rel string) bool {
	if p.anchored {
		return p.g.Match(rel)
	}
	for _, elem := range strings.Split(rel, "/") {
		if p.g.Match(elem) {
			return true
		}
	}
	return false
}

// Excluded reports whether rel matches any exclude pattern.
func (f *Filter) Excluded(rel string) bool {
	for _, p := range f.exclude {
		if p.match(rel) {
			return true
		}
	}
	return false
}

// Match reports whether a change to rel should be reported.
func (f *Filter) Match(rel string) bool {
	rel = path.Clean(rel)
	if f.Excluded(rel) {
		return false
	}
	if len(f.include) == 0 {
		return true
	}
	for _, p := range f.include {
		if p.anchored && p.g.Match(rel) {
			return true
		}
		if !p.anchored && p.g.Match(path.Base(rel)) {
			return true
		}
	}
	return false
}
