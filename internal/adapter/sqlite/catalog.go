package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sadopc/ddlschema/internal/adapter"
)

// querier is satisfied by *sql.DB and *sql.Conn.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// catalog runs the introspection queries. It holds no state besides the
// connection, so every call sees the current snapshot.
type catalog struct {
	q querier
}

// tempSchema is the name SQLite gives the temporary database.
const tempSchema = "temp"

// Databases lists attached schemas using PRAGMA database_list.
func (c catalog) Databases(ctx context.Context) ([]adapter.DatabaseRow, error) {
	rows, err := c.q.QueryContext(ctx, "PRAGMA database_list")
	if err != nil {
		return nil, fmt.Errorf("sqlite database_list: %w", err)
	}
	defer rows.Close()

	var dbs []adapter.DatabaseRow
	for rows.Next() {
		var (
			seq  int
			name string
			file sql.NullString
		)
		if err := rows.Scan(&seq, &name, &file); err != nil {
			return nil, fmt.Errorf("sqlite database_list scan: %w", err)
		}
		dbs = append(dbs, adapter.DatabaseRow{
			Seq:       seq,
			Name:      name,
			File:      file.String,
			Temporary: name == tempSchema,
		})
	}
	return dbs, rows.Err()
}

// TableList returns table-level flags using PRAGMA table_list.
func (c catalog) TableList(ctx context.Context, schemaName string) ([]adapter.TableListRow, error) {
	rows, err := c.q.QueryContext(ctx, fmt.Sprintf("PRAGMA %s.table_list", quoteIdentifier(schemaName)))
	if err != nil {
		return nil, fmt.Errorf("sqlite table_list: %w", err)
	}
	defer rows.Close()

	var tables []adapter.TableListRow
	for rows.Next() {
		var (
			schemaCol string
			name      string
			typ       string
			ncol      int
			wr        int
			strict    int
		)
		if err := rows.Scan(&schemaCol, &name, &typ, &ncol, &wr, &strict); err != nil {
			return nil, fmt.Errorf("sqlite table_list scan: %w", err)
		}
		tables = append(tables, adapter.TableListRow{
			Name:         name,
			Type:         typ,
			Strict:       strict == 1,
			WithoutRowID: wr == 1,
		})
	}
	return tables, rows.Err()
}

// Catalog returns name and declaration text of catalog entries of objType.
// Tables with the reserved sqlite_ prefix are skipped.
func (c catalog) Catalog(ctx context.Context, schemaName, objType string) ([]adapter.CatalogRow, error) {
	query := fmt.Sprintf("SELECT name, sql FROM %s.sqlite_schema WHERE type = ?", quoteIdentifier(schemaName))
	if objType == adapter.ObjectTable {
		query += ` AND name NOT LIKE 'sqlite\_%' ESCAPE '\'`
	}

	rows, err := c.q.QueryContext(ctx, query, objType)
	if err != nil {
		return nil, fmt.Errorf("sqlite catalog %s: %w", objType, err)
	}
	defer rows.Close()

	var entries []adapter.CatalogRow
	for rows.Next() {
		var (
			name  string
			sqlCol sql.NullString
		)
		if err := rows.Scan(&name, &sqlCol); err != nil {
			return nil, fmt.Errorf("sqlite catalog %s scan: %w", objType, err)
		}
		entries = append(entries, adapter.CatalogRow{Name: name, SQL: sqlCol.String})
	}
	return entries, rows.Err()
}

// Columns returns column metadata for the given table using PRAGMA table_info.
func (c catalog) Columns(ctx context.Context, schemaName, table string) ([]adapter.ColumnRow, error) {
	rows, err := c.q.QueryContext(ctx, fmt.Sprintf("PRAGMA %s.table_info(%s)", quoteIdentifier(schemaName), quoteIdentifier(table)))
	if err != nil {
		return nil, fmt.Errorf("sqlite table_info: %w", err)
	}
	defer rows.Close()

	var columns []adapter.ColumnRow
	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return nil, fmt.Errorf("sqlite table_info scan: %w", err)
		}
		col := adapter.ColumnRow{
			CID:     cid,
			Name:    name,
			Type:    colType,
			NotNull: notNull != 0,
			PK:      pk,
		}
		if dfltValue.Valid {
			col.Default = &dfltValue.String
		}
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

// Indexes lists the indexes of a table using PRAGMA index_list.
func (c catalog) Indexes(ctx context.Context, schemaName, table string) ([]adapter.IndexRow, error) {
	rows, err := c.q.QueryContext(ctx, fmt.Sprintf("PRAGMA %s.index_list(%s)", quoteIdentifier(schemaName), quoteIdentifier(table)))
	if err != nil {
		return nil, fmt.Errorf("sqlite index_list: %w", err)
	}
	defer rows.Close()

	var indexes []adapter.IndexRow
	for rows.Next() {
		var (
			seq     int
			name    string
			unique  int
			origin  string
			partial int
		)
		if err := rows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
			return nil, fmt.Errorf("sqlite index_list scan: %w", err)
		}
		indexes = append(indexes, adapter.IndexRow{
			Seq:     seq,
			Name:    name,
			Unique:  unique == 1,
			Origin:  origin,
			Partial: partial == 1,
		})
	}
	return indexes, rows.Err()
}

// IndexColumns returns every column slot of an index using PRAGMA index_xinfo.
func (c catalog) IndexColumns(ctx context.Context, schemaName, index string) ([]adapter.IndexColumnRow, error) {
	rows, err := c.q.QueryContext(ctx, fmt.Sprintf("PRAGMA %s.index_xinfo(%s)", quoteIdentifier(schemaName), quoteIdentifier(index)))
	if err != nil {
		return nil, fmt.Errorf("sqlite index_xinfo: %w", err)
	}
	defer rows.Close()

	var cols []adapter.IndexColumnRow
	for rows.Next() {
		var (
			seqno int
			cid   int
			name  sql.NullString
			desc  int
			coll  sql.NullString
			key   int
		)
		if err := rows.Scan(&seqno, &cid, &name, &desc, &coll, &key); err != nil {
			return nil, fmt.Errorf("sqlite index_xinfo scan: %w", err)
		}
		col := adapter.IndexColumnRow{
			SeqNo:     seqno,
			CID:       cid,
			Desc:      desc == 1,
			Collation: coll.String,
			Key:       key == 1,
		}
		if name.Valid {
			col.Name = &name.String
		}
		cols = append(cols, col)
	}
	return cols, rows.Err()
}

// ForeignKeys returns one row per (constraint, column) pair using
// PRAGMA foreign_key_list.
func (c catalog) ForeignKeys(ctx context.Context, schemaName, table string) ([]adapter.ForeignKeyRow, error) {
	rows, err := c.q.QueryContext(ctx, fmt.Sprintf("PRAGMA %s.foreign_key_list(%s)", quoteIdentifier(schemaName), quoteIdentifier(table)))
	if err != nil {
		return nil, fmt.Errorf("sqlite foreign_key_list: %w", err)
	}
	defer rows.Close()

	var fks []adapter.ForeignKeyRow
	for rows.Next() {
		var (
			id       int
			seq      int
			refTable string
			from     string
			to       sql.NullString
			onUpdate string
			onDelete string
			match    string
		)
		if err := rows.Scan(&id, &seq, &refTable, &from, &to, &onUpdate, &onDelete, &match); err != nil {
			return nil, fmt.Errorf("sqlite foreign_key_list scan: %w", err)
		}
		fk := adapter.ForeignKeyRow{
			ID:       id,
			Seq:      seq,
			Table:    refTable,
			From:     from,
			OnUpdate: onUpdate,
			OnDelete: onDelete,
			Match:    match,
		}
		if to.Valid {
			fk.To = &to.String
		}
		fks = append(fks, fk)
	}
	return fks, rows.Err()
}

// Triggers returns the names of triggers bound to table.
func (c catalog) Triggers(ctx context.Context, schemaName, table string) ([]string, error) {
	query := fmt.Sprintf("SELECT name FROM %s.sqlite_schema WHERE type = 'trigger' AND tbl_name = ?", quoteIdentifier(schemaName))
	rows, err := c.q.QueryContext(ctx, query, table)
	if err != nil {
		return nil, fmt.Errorf("sqlite triggers: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("sqlite triggers scan: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
