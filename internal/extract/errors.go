package extract

import (
	"errors"
	"fmt"

	"github.com/sadopc/ddlschema/internal/schema"
)

// Configuration errors
var (
	ErrUnknownEngine      = errors.New("unknown engine")
	ErrConflictingFilters = errors.New("conflicting table filters: same pattern in both include and exclude lists")
)

// EngineError reports DDL the engine rejected. The message is the engine's
// own, unchanged.
type EngineError struct {
	Err error
}

func (e *EngineError) Error() string { return e.Err.Error() }
func (e *EngineError) Unwrap() error { return e.Err }

// InconsistentCatalogError reports two introspection sources that disagree
// about the same object. It never occurs on a consistent snapshot.
type InconsistentCatalogError struct {
	Schema string
	Object string
	Source string
	Detail string
}

func (e *InconsistentCatalogError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("inconsistent catalog: %s.%s missing from %s", e.Schema, e.Object, e.Source)
	}
	return fmt.Sprintf("inconsistent catalog: %s.%s (%s): %s", e.Schema, e.Object, e.Source, e.Detail)
}

// UnrecognizedStrictTypeError is returned when a strict table declares a
// type outside the allowed set.
type UnrecognizedStrictTypeError = schema.UnrecognizedStrictTypeError

// MalformedViewDefinitionError reports a view whose declaration has no AS
// separator before its query.
type MalformedViewDefinitionError struct {
	Schema string
	View   string
	SQL    string
}

func (e *MalformedViewDefinitionError) Error() string {
	return fmt.Sprintf("malformed view definition %s.%s: no AS before query", e.Schema, e.View)
}
