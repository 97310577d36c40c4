package extract

import (
	"path/filepath"
	"strings"

	"github.com/sadopc/ddlschema/internal/schema"
)

// Filter limits which tables and views are returned. Patterns may use *
// wildcards. Exclusion wins over inclusion; an empty include list keeps
// everything.
type Filter struct {
	IncludeTables []string
	ExcludeTables []string
}

// Validate rejects a pattern that is both included and excluded.
func (f Filter) Validate() error {
	for _, inc := range f.IncludeTables {
		for _, exc := range f.ExcludeTables {
			if inc == exc {
				return ErrConflictingFilters
			}
		}
	}
	return nil
}

// IsZero reports whether the filter keeps everything.
func (f Filter) IsZero() bool {
	return len(f.IncludeTables) == 0 && len(f.ExcludeTables) == 0
}

// Match reports whether an object with the given name passes the filter.
func (f Filter) Match(name string) bool {
	for _, pattern := range f.ExcludeTables {
		if matchWildcard(pattern, name) {
			return false
		}
	}

	if len(f.IncludeTables) > 0 {
		for _, pattern := range f.IncludeTables {
			if matchWildcard(pattern, name) {
				return true
			}
		}
		return false
	}

	return true
}

// Apply returns a copy of s holding only matching tables and views.
func (f Filter) Apply(s schema.Schema) schema.Schema {
	if f.IsZero() {
		return s
	}

	out := schema.Schema{
		Name:   s.Name,
		Tables: make([]schema.Table, 0, len(s.Tables)),
		Views:  make([]schema.View, 0, len(s.Views)),
	}
	for _, t := range s.Tables {
		if f.Match(t.Name) {
			out.Tables = append(out.Tables, t)
		}
	}
	for _, v := range s.Views {
		if f.Match(v.Name) {
			out.Views = append(out.Views, v)
		}
	}
	return out
}

func matchWildcard(pattern, text string) bool {
	if !strings.Contains(pattern, "*") {
		return pattern == text
	}

	matched, err := filepath.Match(pattern, text)
	if err != nil {
		// Invalid pattern: fall back to exact match.
		return pattern == text
	}
	return matched
}
