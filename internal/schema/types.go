package schema

import (
	"fmt"
	"strings"
)

// Affinity is the coarse type category derived from a declared column type.
type Affinity string

const (
	AffinityInteger Affinity = "INTEGER"
	AffinityText    Affinity = "TEXT"
	AffinityBlob    Affinity = "BLOB"
	AffinityReal    Affinity = "REAL"
	AffinityNumeric Affinity = "NUMERIC"
)

// StrictType is the enforced storage type of a column in a strict table.
type StrictType string

const (
	StrictInteger StrictType = "INTEGER"
	StrictText    StrictType = "TEXT"
	StrictReal    StrictType = "REAL"
	StrictBlob    StrictType = "BLOB"
	StrictAny     StrictType = "ANY"
)

// ForeignKeyAction is a referential action of a foreign key constraint.
type ForeignKeyAction string

const (
	ActionSetNull    ForeignKeyAction = "SET NULL"
	ActionSetDefault ForeignKeyAction = "SET DEFAULT"
	ActionCascade    ForeignKeyAction = "CASCADE"
	ActionRestrict   ForeignKeyAction = "RESTRICT"
	ActionNoAction   ForeignKeyAction = "NO ACTION"
)

// affinityRules is checked in order; the first rule with a matching
// substring wins.
var affinityRules = []struct {
	substrings []string
	affinity   Affinity
}{
	{[]string{"INT"}, AffinityInteger},
	{[]string{"CHAR", "CLOB", "TEXT"}, AffinityText},
	{[]string{"BLOB"}, AffinityBlob},
	{[]string{"REAL", "FLOA", "DOUB"}, AffinityReal},
}

// ClassifyAffinity maps a declared type name to its affinity using SQLite's
// declared-type rules. Matching is case-sensitive.
func ClassifyAffinity(typeName string) Affinity {
	for _, rule := range affinityRules {
		for _, sub := range rule.substrings {
			if strings.Contains(typeName, sub) {
				return rule.affinity
			}
		}
	}
	return AffinityNumeric
}

var strictTypes = map[string]StrictType{
	"INT":     StrictInteger,
	"INTEGER": StrictInteger,
	"TEXT":    StrictText,
	"REAL":    StrictReal,
	"BLOB":    StrictBlob,
	"ANY":     StrictAny,
}

// UnrecognizedStrictTypeError is returned when a strict table declares a
// type name outside the set the engine allows.
type UnrecognizedStrictTypeError struct {
	TypeName string
}

func (e *UnrecognizedStrictTypeError) Error() string {
	return fmt.Sprintf("unrecognized type for strict table: %q", e.TypeName)
}

// ClassifyStrict returns the strict storage type for typeName, or nil when
// the owning table is not strict.
func ClassifyStrict(typeName string, isStrict bool) (*StrictType, error) {
	if !isStrict {
		return nil, nil
	}
	st, ok := strictTypes[typeName]
	if !ok {
		return nil, &UnrecognizedStrictTypeError{TypeName: typeName}
	}
	return &st, nil
}

// ParseForeignKeyAction parses the action text reported by the engine.
func ParseForeignKeyAction(s string) (ForeignKeyAction, bool) {
	switch a := ForeignKeyAction(strings.ToUpper(strings.TrimSpace(s))); a {
	case ActionSetNull, ActionSetDefault, ActionCascade, ActionRestrict, ActionNoAction:
		return a, true
	}
	return "", false
}
