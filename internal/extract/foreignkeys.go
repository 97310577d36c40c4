package extract

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/sadopc/ddlschema/internal/adapter"
	"github.com/sadopc/ddlschema/internal/schema"
)

// foreignKeys groups the per-column rows into one ForeignKey per constraint
// id. Constraints keep the order of their first row, and pairs keep row
// order within a constraint.
func (r *resolver) foreignKeys(ctx context.Context, table string) ([]schema.ForeignKey, error) {
	rows, err := r.in.ForeignKeys(ctx, r.schema, table)
	if err != nil {
		return nil, fmt.Errorf("foreign keys: %w", err)
	}

	groups := make(map[int][]adapter.ForeignKeyRow)
	for _, row := range rows {
		groups[row.ID] = append(groups[row.ID], row)
	}

	parentKeys := make(map[string][]string)
	emitted := make(map[int]bool, len(groups))
	fks := make([]schema.ForeignKey, 0, len(groups))
	for _, row := range rows {
		if emitted[row.ID] {
			continue
		}
		group, ok := groups[row.ID]
		if !ok {
			return nil, &InconsistentCatalogError{
				Schema: r.schema,
				Object: table,
				Source: "foreign_key_list",
				Detail: fmt.Sprintf("constraint %d not grouped", row.ID),
			}
		}
		emitted[row.ID] = true

		fk, err := r.foreignKey(ctx, table, group, parentKeys)
		if err != nil {
			return nil, err
		}
		fks = append(fks, fk)
	}
	return fks, nil
}

func (r *resolver) foreignKey(ctx context.Context, table string, group []adapter.ForeignKeyRow, parentKeys map[string][]string) (schema.ForeignKey, error) {
	first := group[0]

	onUpdate, ok := schema.ParseForeignKeyAction(first.OnUpdate)
	if !ok {
		return schema.ForeignKey{}, r.badAction(table, first, "on_update", first.OnUpdate)
	}
	onDelete, ok := schema.ParseForeignKeyAction(first.OnDelete)
	if !ok {
		return schema.ForeignKey{}, r.badAction(table, first, "on_delete", first.OnDelete)
	}

	pairs := make([]schema.ForeignKeyColumnPair, 0, len(group))
	for _, row := range group {
		nameTo, err := r.referencedColumn(ctx, row, parentKeys)
		if err != nil {
			return schema.ForeignKey{}, err
		}
		pairs = append(pairs, schema.ForeignKeyColumnPair{NameFrom: row.From, NameTo: nameTo})
	}

	return schema.ForeignKey{
		TableName:      first.Table,
		ColumnPairs:    pairs,
		OnUpdateAction: onUpdate,
		OnDeleteAction: onDelete,
	}, nil
}

func (r *resolver) badAction(table string, row adapter.ForeignKeyRow, field, value string) error {
	return &InconsistentCatalogError{
		Schema: r.schema,
		Object: table,
		Source: "foreign_key_list",
		Detail: fmt.Sprintf("constraint %d: unknown %s action %q", row.ID, field, value),
	}
}

// referencedColumn returns the parent column of row. A nil To means the
// constraint names only the parent table, so the parent primary key column
// at the same position is used. An unresolvable key yields "".
func (r *resolver) referencedColumn(ctx context.Context, row adapter.ForeignKeyRow, parentKeys map[string][]string) (string, error) {
	if row.To != nil {
		return *row.To, nil
	}

	key, ok := parentKeys[row.Table]
	if !ok {
		cols, err := r.in.Columns(ctx, r.schema, row.Table)
		if err != nil {
			return "", fmt.Errorf("parent %q columns: %w", row.Table, err)
		}
		key = primaryKeyColumns(cols)
		parentKeys[row.Table] = key
	}

	if row.Seq < 0 || row.Seq >= len(key) {
		r.log.Warn("foreign key parent has no matching primary key column",
			zap.String("parent", row.Table),
			zap.Int("constraint", row.ID),
			zap.Int("seq", row.Seq))
		return "", nil
	}
	return key[row.Seq], nil
}

// primaryKeyColumns returns primary key column names ordered by key position.
func primaryKeyColumns(cols []adapter.ColumnRow) []string {
	pk := make([]adapter.ColumnRow, 0, len(cols))
	for _, c := range cols {
		if c.PK > 0 {
			pk = append(pk, c)
		}
	}
	sort.SliceStable(pk, func(i, j int) bool { return pk[i].PK < pk[j].PK })

	names := make([]string, len(pk))
	for i, c := range pk {
		names[i] = c.Name
	}
	return names
}
