package source

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// Definitions are replayed in dependency order: tables, then indexes, then
// views, then triggers. Within a type, creation order is kept.
const definitionsSQL = `SELECT name, sql FROM sqlite_schema
WHERE sql IS NOT NULL AND name NOT LIKE 'sqlite\_%' ESCAPE '\'
ORDER BY CASE type
	WHEN 'table' THEN 0
	WHEN 'index' THEN 1
	WHEN 'view' THEN 2
	ELSE 3
END, rowid`

// FromDatabase returns the DDL of an existing SQLite database file as one
// script. The file is opened read-only and never modified.
func FromDatabase(ctx context.Context, path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("source: %w", err)
	}

	dsn, err := readOnlyURI(path)
	if err != nil {
		return "", fmt.Errorf("source: %w", err)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return "", fmt.Errorf("source: open db: %w", err)
	}
	defer db.Close()

	shadow, err := shadowTables(ctx, db)
	if err != nil {
		return "", err
	}

	rows, err := db.QueryContext(ctx, definitionsSQL)
	if err != nil {
		return "", fmt.Errorf("source: read schema: %w", err)
	}
	defer rows.Close()

	var stmts []string
	for rows.Next() {
		var name, stmt string
		if err := rows.Scan(&name, &stmt); err != nil {
			return "", fmt.Errorf("source: scan schema: %w", err)
		}
		// Shadow tables are recreated by their virtual table.
		if shadow[name] {
			continue
		}
		stmts = append(stmts, stmt)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("source: read schema: %w", err)
	}
	return joinStatements(stmts), nil
}

// readOnlyURI builds a read-only SQLite URI for path. The path is made
// absolute and percent-escaped so '?' and '#' stay part of the file name.
func readOnlyURI(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	abs = filepath.ToSlash(abs)
	if !strings.HasPrefix(abs, "/") {
		abs = "/" + abs
	}
	u := url.URL{Scheme: "file", Path: abs, RawQuery: "mode=ro"}
	return u.String(), nil
}

func shadowTables(ctx context.Context, db *sql.DB) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, "SELECT name FROM pragma_table_list WHERE schema = 'main' AND type = 'shadow'")
	if err != nil {
		return nil, fmt.Errorf("source: table list: %w", err)
	}
	defer rows.Close()

	shadow := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("source: scan table list: %w", err)
		}
		shadow[name] = true
	}
	return shadow, rows.Err()
}
