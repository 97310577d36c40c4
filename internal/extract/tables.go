package extract

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sadopc/ddlschema/internal/adapter"
	"github.com/sadopc/ddlschema/internal/schema"
)

// Module-backed tables are stored as "table" in the catalog but listed
// under their own type. They are skipped.
var moduleTableTypes = map[string]bool{
	"virtual": true,
	"shadow":  true,
}

// tables resolves every table of the schema in catalog order.
func (r *resolver) tables(ctx context.Context) ([]schema.Table, error) {
	entries, err := r.in.Catalog(ctx, r.schema, adapter.ObjectTable)
	if err != nil {
		return nil, fmt.Errorf("list table definitions: %w", err)
	}

	tables := make([]schema.Table, 0, len(entries))
	for _, entry := range entries {
		if row, ok := r.listing[entry.Name]; ok && moduleTableTypes[row.Type] {
			r.log.Debug("skipping module table", zap.String("table", entry.Name), zap.String("type", row.Type))
			continue
		}

		flags, err := r.lookup(entry.Name, adapter.ObjectTable)
		if err != nil {
			return nil, err
		}

		t, err := r.table(ctx, entry, flags)
		if err != nil {
			return nil, fmt.Errorf("table %q: %w", entry.Name, err)
		}
		tables = append(tables, t)
	}
	return tables, nil
}

func (r *resolver) table(ctx context.Context, entry adapter.CatalogRow, flags adapter.TableListRow) (schema.Table, error) {
	columns, err := r.columns(ctx, entry, flags)
	if err != nil {
		return schema.Table{}, err
	}
	indexes, err := r.indexes(ctx, entry.Name)
	if err != nil {
		return schema.Table{}, err
	}
	triggers, err := r.triggers(ctx, entry.Name)
	if err != nil {
		return schema.Table{}, err
	}
	foreignKeys, err := r.foreignKeys(ctx, entry.Name)
	if err != nil {
		return schema.Table{}, err
	}

	r.log.Debug("table resolved",
		zap.String("table", entry.Name),
		zap.Int("columns", len(columns)),
		zap.Int("indexes", len(indexes)),
		zap.Int("foreignKeys", len(foreignKeys)),
		zap.Bool("strict", flags.Strict),
		zap.Bool("withoutRowId", flags.WithoutRowID))

	return schema.Table{
		Name:         entry.Name,
		Columns:      columns,
		Indexes:      indexes,
		Triggers:     triggers,
		ForeignKeys:  foreignKeys,
		IsStrict:     flags.Strict,
		WithoutRowID: flags.WithoutRowID,
	}, nil
}
