package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/ncruces/go-sqlite3"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/sadopc/ddlschema/internal/adapter"
)

func init() {
	adapter.Register(&sqliteEngine{})
}

// driverName is the database/sql name registered by the ncruces driver.
const driverName = "sqlite3"

// sqliteEngine implements adapter.Engine with private in-memory databases.
type sqliteEngine struct{}

func (e *sqliteEngine) Name() string { return "sqlite" }

// Open creates a fresh in-memory database pinned to a single connection.
// Every call gets its own database, so instances never share state.
func (e *sqliteEngine) Open(ctx context.Context) (adapter.Instance, error) {
	db, err := sql.Open(driverName, ":memory:")
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	db.SetMaxOpenConns(1)

	conn, err := db.Conn(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite conn: %w", err)
	}

	if _, err := conn.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		conn.Close()
		db.Close()
		return nil, fmt.Errorf("sqlite enable foreign keys: %w", err)
	}

	return &sqliteInstance{
		catalog: catalog{q: conn},
		db:      db,
		conn:    conn,
	}, nil
}

// sqliteInstance implements adapter.Instance.
type sqliteInstance struct {
	catalog

	db   *sql.DB
	conn *sql.Conn

	closeOnce sync.Once
	closeErr  error
	closed    bool
}

// rawConn is implemented by the ncruces driver connections.
type rawConn interface {
	Raw() *sqlite3.Conn
}

func (i *sqliteInstance) withRaw(fn func(c *sqlite3.Conn) error) error {
	if i.closed {
		return adapter.ErrClosed
	}
	return i.conn.Raw(func(driverConn any) error {
		rc, ok := driverConn.(rawConn)
		if !ok {
			return fmt.Errorf("sqlite: unexpected driver connection %T", driverConn)
		}
		return fn(rc.Raw())
	})
}

// Exec applies script as one batch. Engine errors are returned unwrapped so
// callers see the engine's own message.
func (i *sqliteInstance) Exec(ctx context.Context, script string) error {
	if strings.TrimSpace(script) == "" {
		return nil
	}
	return i.withRaw(func(c *sqlite3.Conn) error {
		return c.Exec(script)
	})
}

// Probe prepares query without stepping it and reads the column metadata of
// the compiled statement.
func (i *sqliteInstance) Probe(ctx context.Context, query string) ([]adapter.ResultColumn, error) {
	var cols []adapter.ResultColumn
	err := i.withRaw(func(c *sqlite3.Conn) error {
		stmt, _, err := c.Prepare(query)
		if err != nil {
			return err
		}
		if stmt == nil {
			return fmt.Errorf("sqlite probe: empty statement")
		}
		defer stmt.Close()

		if !stmt.ReadOnly() {
			return adapter.ErrNotReadOnly
		}

		n := stmt.ColumnCount()
		cols = make([]adapter.ResultColumn, n)
		for col := 0; col < n; col++ {
			cols[col] = adapter.ResultColumn{
				Name:       stmt.ColumnName(col),
				OriginName: nonEmpty(stmt.ColumnOriginName(col)),
				TableName:  nonEmpty(stmt.ColumnTableName(col)),
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("sqlite probe: %w", err)
	}
	return cols, nil
}

// Close releases the pinned connection and the pool. It is safe to call
// more than once.
func (i *sqliteInstance) Close() error {
	i.closeOnce.Do(func() {
		i.closed = true
		i.closeErr = errors.Join(i.conn.Close(), i.db.Close())
	})
	return i.closeErr
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// quoteIdentifier wraps a SQL identifier in double-quotes (ANSI style),
// escaping any embedded double-quotes by doubling them.
func quoteIdentifier(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
