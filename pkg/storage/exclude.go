package storage

import (
	"path"
	"path/filepath"
	"strings"
)

type patternKind int

const (
	// directory pattern: "node_modules/"
	patternDir patternKind = iota
	// any depth: "**/fixtures/*.md"
	patternAnyDepth
	// relative path glob: "build/*"
	patternPath
	// base name glob: "*.tmp"
	patternBase
)

type excludePattern struct {
	kind patternKind
	glob string
}

// ExcludeMatcher decides whether a relative path is excluded.
// Supported patterns:
//   - base name globs: *.tmp, *.log
//   - directories: .git/, node_modules/
//   - path globs: build/*, docs/drafts/*.md
//   - any depth: **/testdata/*
type ExcludeMatcher struct {
	patterns []excludePattern
}

// NewExcludeMatcher compiles the patterns; empty patterns are ignored
func NewExcludeMatcher(patterns []string) *ExcludeMatcher {
	m := &ExcludeMatcher{}
	for _, raw := range patterns {
		p := filepath.ToSlash(strings.TrimSpace(raw))
		switch {
		case p == "":
			continue
		case strings.HasSuffix(p, "/"):
			m.patterns = append(m.patterns, excludePattern{kind: patternDir, glob: strings.TrimSuffix(p, "/")})
		case strings.HasPrefix(p, "**/"):
			m.patterns = append(m.patterns, excludePattern{kind: patternAnyDepth, glob: strings.TrimPrefix(p, "**/")})
		case strings.Contains(p, "/"):
			m.patterns = append(m.patterns, excludePattern{kind: patternPath, glob: p})
		default:
			m.patterns = append(m.patterns, excludePattern{kind: patternBase, glob: p})
		}
	}
	return m
}

// Empty reports whether the matcher has no patterns
func (m *ExcludeMatcher) Empty() bool {
	return m == nil || len(m.patterns) == 0
}

// Match reports whether relativePath is excluded
func (m *ExcludeMatcher) Match(relativePath string) bool {
	if m.Empty() {
		return false
	}

	rel := filepath.ToSlash(relativePath)
	segments := strings.Split(rel, "/")
	base := segments[len(segments)-1]

	for _, p := range m.patterns {
		switch p.kind {
		case patternDir:
			if containsSegments(segments, p.glob) {
				return true
			}
		case patternAnyDepth:
			if matchSuffix(segments, p.glob) {
				return true
			}
		case patternPath:
			if ok, _ := path.Match(p.glob, rel); ok || matchSuffix(segments, p.glob) {
				return true
			}
		case patternBase:
			if ok, _ := path.Match(p.glob, base); ok {
				return true
			}
		}
	}
	return false
}

// containsSegments reports whether dir (one or more segments) appears as a
// directory prefix anywhere in segments, or equals the whole path
func containsSegments(segments []string, dir string) bool {
	want := strings.Split(dir, "/")
	for start := 0; start+len(want) <= len(segments); start++ {
		matched := true
		for i, w := range want {
			if ok, _ := path.Match(w, segments[start+i]); !ok {
				matched = false
				break
			}
		}
		if matched {
			return true
		}
	}
	return false
}

// matchSuffix reports whether the trailing segments of the path match glob
func matchSuffix(segments []string, glob string) bool {
	n := strings.Count(glob, "/") + 1
	if n > len(segments) {
		return false
	}
	tail := strings.Join(segments[len(segments)-n:], "/")
	ok, _ := path.Match(glob, tail)
	return ok
}
