package extract

import (
	"context"
	"fmt"

	"github.com/sadopc/ddlschema/internal/adapter"
	"github.com/sadopc/ddlschema/internal/schema"
)

func (r *resolver) indexes(ctx context.Context, table string) ([]schema.Index, error) {
	rows, err := r.in.Indexes(ctx, r.schema, table)
	if err != nil {
		return nil, fmt.Errorf("indexes: %w", err)
	}

	indexes := make([]schema.Index, 0, len(rows))
	for _, row := range rows {
		cols, err := r.in.IndexColumns(ctx, r.schema, row.Name)
		if err != nil {
			return nil, fmt.Errorf("index %q columns: %w", row.Name, err)
		}
		indexes = append(indexes, schema.Index{
			Name:      row.Name,
			IsUnique:  row.Unique,
			IsPartial: row.Partial,
			Columns:   indexColumns(cols),
		})
	}
	return indexes, nil
}

// indexColumns keeps the named slots in row order. A nil name marks the
// rowid slot or an expression, neither of which is a column.
func indexColumns(rows []adapter.IndexColumnRow) []schema.IndexColumn {
	cols := make([]schema.IndexColumn, 0, len(rows))
	for _, row := range rows {
		if row.Name == nil {
			continue
		}
		collation := row.Collation
		if collation == "" {
			collation = schema.DefaultCollation
		}
		cols = append(cols, schema.IndexColumn{
			Name:         *row.Name,
			IsDescending: row.Desc,
			Collation:    collation,
		})
	}
	return cols
}
