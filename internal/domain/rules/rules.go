package rules

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Set is an immutable collection of exclusion rules, fixed for the whole run.
// Substrings are matched case-sensitively; globs follow doublestar syntax and
// are matched against slash-separated paths relative to the source root.
type Set struct {
	// substrings excludes any directory name or file path containing one.
	substrings []string
	// globs excludes relative paths matching a doublestar pattern.
	globs []string
}

// NewSet builds a rule set from literal substrings and doublestar globs.
// The input slices are copied so later mutation by the caller has no effect.
func NewSet(substrings, globs []string) *Set {
	return &Set{
		substrings: append([]string(nil), substrings...),
		globs:      append([]string(nil), globs...),
	}
}

// MatchesName reports whether a single path component (typically a directory
// name considered for pruning) contains any exclusion substring.
func (s *Set) MatchesName(name string) bool {
	for _, pattern := range s.substrings {
		if strings.Contains(name, pattern) {
			return true
		}
	}

	return false
}

// MatchesPath reports whether a slash-separated relative path is excluded,
// either by containing a substring rule or by matching a glob rule.
// Substrings see the whole path here, not just the leaf name; that asymmetry
// with MatchesName is intentional and matches the established behavior.
func (s *Set) MatchesPath(relPath string) bool {
	if s.MatchesName(relPath) {
		return true
	}

	for _, pattern := range s.globs {
		// Patterns are validated at configuration time.
		if ok, _ := doublestar.Match(pattern, relPath); ok {
			return true
		}
	}

	return false
}

// Substrings returns a copy of the substring rules, preserving order.
func (s *Set) Substrings() []string {
	return append([]string(nil), s.substrings...)
}

// Globs returns a copy of the glob rules, preserving order.
func (s *Set) Globs() []string {
	return append([]string(nil), s.globs...)
}

// Clone returns a deep copy of the rule set.
func (s *Set) Clone() *Set {
	if s == nil {
		return nil
	}

	return NewSet(s.substrings, s.globs)
}
