// Package exclude decides which directory entries a scan should skip.
package exclude

import (
	"path/filepath"
	"strings"
)

// Directory noise that is skipped regardless of settings: build caches,
// dependency trees, and VCS internals that never hold user files.
var universalBlocklist = map[string]struct{}{
	"node_modules":      {},
	"bower_components":  {},
	"__pycache__":       {},
	"site-packages":     {},
	"venv":              {},
	"virtualenv":        {},
	"target":            {},
	"dist":              {},
	"build":             {},
	"out":               {},
	"vendor":            {},
	"DerivedData":       {},
	"CMakeFiles":        {},
	"System Volume Information": {},
}

// Path segments belonging to OS cache, trash, and library locations. Only
// consulted when recommended (system) exclusions are enabled.
var systemSegments = map[string]struct{}{
	"Library":             {},
	"Caches":              {},
	"Cache":               {},
	"Application Support": {},
	"AppData":             {},
	"Temp":                {},
	"tmp":                 {},
	"Trash":               {},
	"$RECYCLE.BIN":        {},
	"Windows":             {},
	"Program Files":       {},
	"Program Files (x86)": {},
	"ProgramData":         {},
	"proc":                {},
	"sys":                 {},
	"dev":                 {},
}

// Policy applies exclusion rules to directory entries. The zero value
// excludes only dotted names and universal noise.
type Policy struct {
	system bool
	custom []string
}

// NewPolicy builds a policy. When system is true the OS cache/trash/library
// lists apply; custom patterns are matched against entry names (glob
// syntax) and, when a pattern contains a separator, against the full path.
func NewPolicy(system bool, custom []string) *Policy {
	return &Policy{system: system, custom: custom}
}

// Exclude reports whether the entry should be skipped. Checks are ordered;
// the first matching rule wins:
//  1. names starting with "." are always excluded,
//  2. universal directory-noise blocklist,
//  3. system exclusions, when enabled,
//  4. custom user patterns.
func (p *Policy) Exclude(fullPath, name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	if _, ok := universalBlocklist[name]; ok {
		return true
	}
	if p.system && pathHasSystemSegment(fullPath) {
		return true
	}
	for _, pattern := range p.custom {
		if matchesCustom(pattern, fullPath, name) {
			return true
		}
	}
	return false
}

func pathHasSystemSegment(fullPath string) bool {
	for _, seg := range strings.Split(filepath.ToSlash(fullPath), "/") {
		if _, ok := systemSegments[seg]; ok {
			return true
		}
	}
	return false
}

func matchesCustom(pattern, fullPath, name string) bool {
	if pattern == "" {
		return false
	}
	if strings.ContainsRune(pattern, filepath.Separator) || strings.ContainsRune(pattern, '/') {
		if ok, err := filepath.Match(pattern, filepath.ToSlash(fullPath)); err == nil && ok {
			return true
		}
		return strings.Contains(filepath.ToSlash(fullPath), strings.Trim(filepath.ToSlash(pattern), "/"))
	}
	if ok, err := filepath.Match(pattern, name); err == nil && ok {
		return true
	}
	return pattern == name
}
