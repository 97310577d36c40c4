package adapter

import (
	"context"
	"errors"
	"sort"
	"sync"
)

var (
	ErrNotReadOnly = errors.New("statement is not read-only")
	ErrClosed      = errors.New("instance is closed")
)

// Engine creates isolated database instances.
type Engine interface {
	Name() string
	Open(ctx context.Context) (Instance, error)
}

// Instance is one throwaway database owned by a single extraction.
type Instance interface {
	Introspector

	// Exec applies a whole batch of DDL statements.
	Exec(ctx context.Context, script string) error
	Close() error
}

// Introspector exposes the read-only catalog calls of an instance. Every
// call returns fully consumed rows in engine order.
type Introspector interface {
	Databases(ctx context.Context) ([]DatabaseRow, error)
	TableList(ctx context.Context, schemaName string) ([]TableListRow, error)
	Catalog(ctx context.Context, schemaName, objType string) ([]CatalogRow, error)
	Columns(ctx context.Context, schemaName, table string) ([]ColumnRow, error)
	Indexes(ctx context.Context, schemaName, table string) ([]IndexRow, error)
	IndexColumns(ctx context.Context, schemaName, index string) ([]IndexColumnRow, error)
	ForeignKeys(ctx context.Context, schemaName, table string) ([]ForeignKeyRow, error)
	Triggers(ctx context.Context, schemaName, table string) ([]string, error)

	// Probe compiles query without stepping it and describes its output
	// columns.
	Probe(ctx context.Context, query string) ([]ResultColumn, error)
}

// Catalog object types.
const (
	ObjectTable   = "table"
	ObjectView    = "view"
	ObjectIndex   = "index"
	ObjectTrigger = "trigger"
)

// DatabaseRow is one attached schema.
type DatabaseRow struct {
	Seq       int
	Name      string
	File      string
	Temporary bool
}

// TableListRow carries the table-level flags of one table.
type TableListRow struct {
	Name         string
	Type         string
	Strict       bool
	WithoutRowID bool
}

// CatalogRow is a catalog entry with its original declaration text.
type CatalogRow struct {
	Name string
	SQL  string
}

// ColumnRow is one row of column introspection.
type ColumnRow struct {
	CID     int
	Name    string
	Type    string
	NotNull bool
	Default *string
	PK      int // 0 = not part of the primary key, else 1-based position
}

// IndexRow is one row of index listing.
type IndexRow struct {
	Seq     int
	Name    string
	Unique  bool
	Origin  string
	Partial bool
}

// IndexColumnRow is one row of extended index column introspection. Name
// is nil for the rowid slot.
type IndexColumnRow struct {
	SeqNo     int
	CID       int
	Name      *string
	Desc      bool
	Collation string
	Key       bool
}

// ForeignKeyRow is one (constraint, column) row of foreign key listing. To
// is nil when the constraint references the parent's primary key implicitly.
type ForeignKeyRow struct {
	ID       int
	Seq      int
	Table    string
	From     string
	To       *string
	OnUpdate string
	OnDelete string
	Match    string
}

// ResultColumn describes one output column of a compiled query.
type ResultColumn struct {
	Name       string
	OriginName *string
	TableName  *string
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Engine{}
)

// Register adds an engine to the global registry.
func Register(e Engine) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[e.Name()] = e
}

// Lookup returns the engine registered under name.
func Lookup(name string) (Engine, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	e, ok := registry[name]
	return e, ok
}

// Names returns the registered engine names in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
