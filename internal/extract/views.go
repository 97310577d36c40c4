package extract

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/sadopc/ddlschema/internal/adapter"
	"github.com/sadopc/ddlschema/internal/schema"
)

var (
	// viewAS matches the first standalone AS keyword of a view declaration,
	// which may follow the closing parenthesis of a column list directly.
	viewAS = regexp.MustCompile(`(?i)[\s)](AS)[\s(]`)

	// columnList matches an explicit column-name list at the end of the
	// view header, e.g. CREATE VIEW v(a, "b").
	columnList = regexp.MustCompile(`\(([^()]*)\)\s*$`)
)

// views resolves every view of the schema in catalog order.
func (r *resolver) views(ctx context.Context) ([]schema.View, error) {
	entries, err := r.in.Catalog(ctx, r.schema, adapter.ObjectView)
	if err != nil {
		return nil, fmt.Errorf("list view definitions: %w", err)
	}

	views := make([]schema.View, 0, len(entries))
	for _, entry := range entries {
		if _, err := r.lookup(entry.Name, adapter.ObjectView); err != nil {
			return nil, err
		}

		v, err := r.view(ctx, entry)
		if err != nil {
			return nil, fmt.Errorf("view %q: %w", entry.Name, err)
		}
		views = append(views, v)
	}
	return views, nil
}

func (r *resolver) view(ctx context.Context, entry adapter.CatalogRow) (schema.View, error) {
	header, query, ok := splitViewSQL(entry.SQL)
	if !ok {
		return schema.View{}, &MalformedViewDefinitionError{Schema: r.schema, View: entry.Name, SQL: entry.SQL}
	}

	result, err := r.in.Probe(ctx, query)
	if err != nil {
		return schema.View{}, fmt.Errorf("probe: %w", err)
	}

	return schema.View{
		Name:    entry.Name,
		Columns: viewColumns(declaredColumns(header), result),
	}, nil
}

// splitViewSQL splits a view declaration at its first standalone AS into the
// header before it and the trimmed query after it.
// Comments are removed first so neither the split nor the column list can be
// thrown off by them.
func splitViewSQL(sql string) (header, query string, ok bool) {
	sql = stripComments(sql)
	loc := viewAS.FindStringSubmatchIndex(sql)
	if loc == nil {
		return "", "", false
	}
	// loc[2:4] brackets the AS keyword itself.
	return strings.TrimSpace(sql[:loc[2]]), strings.TrimSpace(sql[loc[3]:]), true
}

// stripComments replaces SQL line and block comments with a single space.
// Quoted strings and identifiers are copied through untouched.
func stripComments(sql string) string {
	var b strings.Builder
	b.Grow(len(sql))
	for i := 0; i < len(sql); {
		switch c := sql[i]; {
		case c == '\'' || c == '"' || c == '`' || c == '[':
			end := c
			if c == '[' {
				end = ']'
			}
			j := i + 1
			for j < len(sql) && sql[j] != end {
				j++
			}
			if j < len(sql) {
				j++
			}
			b.WriteString(sql[i:j])
			i = j
		case c == '-' && i+1 < len(sql) && sql[i+1] == '-':
			j := strings.IndexByte(sql[i:], '\n')
			if j < 0 {
				j = len(sql) - i
			}
			b.WriteByte(' ')
			i += j
		case c == '/' && i+1 < len(sql) && sql[i+1] == '*':
			j := strings.Index(sql[i+2:], "*/")
			if j < 0 {
				i = len(sql)
			} else {
				i += j + 4
			}
			b.WriteByte(' ')
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}

// declaredColumns returns the explicit column-name list of a view header, or
// nil when the header has none.
func declaredColumns(header string) []string {
	m := columnList.FindStringSubmatch(header)
	if m == nil {
		return nil
	}

	parts := strings.Split(m[1], ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if name := unquoteIdentifier(strings.TrimSpace(p)); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// unquoteIdentifier strips one level of SQL identifier quoting.
func unquoteIdentifier(s string) string {
	if len(s) < 2 {
		return s
	}
	switch first, last := s[0], s[len(s)-1]; {
	case first == '"' && last == '"':
		return strings.ReplaceAll(s[1:len(s)-1], `""`, `"`)
	case first == '`' && last == '`':
		return strings.ReplaceAll(s[1:len(s)-1], "``", "`")
	case first == '\'' && last == '\'':
		return strings.ReplaceAll(s[1:len(s)-1], "''", "'")
	case first == '[' && last == ']':
		return s[1 : len(s)-1]
	}
	return s
}

// viewColumns maps probe result columns to view columns. Without declared
// names every result column is kept. Declared names bind to result columns by
// position; names past the last result column are dropped.
func viewColumns(declared []string, result []adapter.ResultColumn) []schema.ViewColumn {
	if declared == nil {
		cols := make([]schema.ViewColumn, 0, len(result))
		for _, rc := range result {
			cols = append(cols, schema.ViewColumn{
				Name:         rc.Name,
				OriginalName: rc.OriginName,
				TableName:    rc.TableName,
			})
		}
		return cols
	}

	n := min(len(declared), len(result))
	cols := make([]schema.ViewColumn, 0, n)
	for i, name := range declared[:n] {
		cols = append(cols, schema.ViewColumn{
			Name:         name,
			OriginalName: result[i].OriginName,
			TableName:    result[i].TableName,
		})
	}
	return cols
}
