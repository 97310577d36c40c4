package extract

import (
	"context"
	"errors"

	"github.com/sadopc/ddlschema/internal/adapter"
)

// fakeCatalog is an Introspector backed by fixed tables of rows. Keys are
// "schema.object"; catalog entries are keyed "schema.type".
type fakeCatalog struct {
	databases    []adapter.DatabaseRow
	tableList    map[string][]adapter.TableListRow
	catalog      map[string][]adapter.CatalogRow
	columns      map[string][]adapter.ColumnRow
	indexes      map[string][]adapter.IndexRow
	indexColumns map[string][]adapter.IndexColumnRow
	foreignKeys  map[string][]adapter.ForeignKeyRow
	triggers     map[string][]string
	probes       map[string][]adapter.ResultColumn

	// failOn makes the named method return errFake.
	failOn string
}

var errFake = errors.New("fake introspection failure")

func key(schemaName, object string) string { return schemaName + "." + object }

func (f *fakeCatalog) fail(method string) error {
	if f.failOn == method {
		return errFake
	}
	return nil
}

func (f *fakeCatalog) Databases(context.Context) ([]adapter.DatabaseRow, error) {
	return f.databases, f.fail("Databases")
}

func (f *fakeCatalog) TableList(_ context.Context, s string) ([]adapter.TableListRow, error) {
	return f.tableList[s], f.fail("TableList")
}

func (f *fakeCatalog) Catalog(_ context.Context, s, objType string) ([]adapter.CatalogRow, error) {
	return f.catalog[key(s, objType)], f.fail("Catalog")
}

func (f *fakeCatalog) Columns(_ context.Context, s, table string) ([]adapter.ColumnRow, error) {
	return f.columns[key(s, table)], f.fail("Columns")
}

func (f *fakeCatalog) Indexes(_ context.Context, s, table string) ([]adapter.IndexRow, error) {
	return f.indexes[key(s, table)], f.fail("Indexes")
}

func (f *fakeCatalog) IndexColumns(_ context.Context, s, index string) ([]adapter.IndexColumnRow, error) {
	return f.indexColumns[key(s, index)], f.fail("IndexColumns")
}

func (f *fakeCatalog) ForeignKeys(_ context.Context, s, table string) ([]adapter.ForeignKeyRow, error) {
	return f.foreignKeys[key(s, table)], f.fail("ForeignKeys")
}

func (f *fakeCatalog) Triggers(_ context.Context, s, table string) ([]string, error) {
	return f.triggers[key(s, table)], f.fail("Triggers")
}

func (f *fakeCatalog) Probe(_ context.Context, query string) ([]adapter.ResultColumn, error) {
	if err := f.fail("Probe"); err != nil {
		return nil, err
	}
	cols, ok := f.probes[query]
	if !ok {
		return nil, errors.New("fake: unknown query " + query)
	}
	return cols, nil
}

// fakeInstance wraps a fakeCatalog and records Exec and Close calls.
type fakeInstance struct {
	*fakeCatalog

	execErr  error
	closeErr error
	executed []string
	closes   int
}

func (i *fakeInstance) Exec(_ context.Context, script string) error {
	i.executed = append(i.executed, script)
	return i.execErr
}

func (i *fakeInstance) Close() error {
	i.closes++
	return i.closeErr
}

// fakeEngine hands out one prepared instance.
type fakeEngine struct {
	inst    *fakeInstance
	openErr error
	opens   int
}

func (e *fakeEngine) Name() string { return "fake" }

func (e *fakeEngine) Open(context.Context) (adapter.Instance, error) {
	e.opens++
	if e.openErr != nil {
		return nil, e.openErr
	}
	return e.inst, nil
}

func strPtr(s string) *string { return &s }

// mainOnly is the database list of a fresh instance.
var mainOnly = []adapter.DatabaseRow{{Seq: 0, Name: "main"}}
