package extract

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/sadopc/ddlschema/internal/adapter"
	"github.com/sadopc/ddlschema/internal/schema"
)

// columns resolves the columns of one table in declaration order.
func (r *resolver) columns(ctx context.Context, entry adapter.CatalogRow, flags adapter.TableListRow) ([]schema.Column, error) {
	rows, err := r.in.Columns(ctx, r.schema, entry.Name)
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	pkColumns := 0
	for _, row := range rows {
		if row.PK > 0 {
			pkColumns++
		}
	}

	columns := make([]schema.Column, 0, len(rows))
	for _, row := range rows {
		strictType, err := schema.ClassifyStrict(row.Type, flags.Strict)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", row.Name, err)
		}

		columns = append(columns, schema.Column{
			Name:              row.Name,
			TypeName:          row.Type,
			TypeAffinity:      schema.ClassifyAffinity(row.Type),
			StrictType:        strictType,
			IsPrimaryKey:      row.PK > 0,
			IsNullable:        !row.NotNull && !isRowIDAlias(row, flags, pkColumns),
			IsAutoIncrement:   isAutoIncrement(row.Name, entry.SQL),
			DefaultExpression: row.Default,
		})
	}
	return columns, nil
}

// isRowIDAlias reports whether row is the INTEGER PRIMARY KEY of a rowid
// table. Such a column can never hold NULL even without NOT NULL.
func isRowIDAlias(row adapter.ColumnRow, flags adapter.TableListRow, pkColumns int) bool {
	return !flags.WithoutRowID &&
		pkColumns == 1 &&
		row.PK == 1 &&
		strings.EqualFold(row.Type, "INTEGER")
}

// isAutoIncrement scans the table declaration for the column name followed
// by AUTOINCREMENT before the next comma. This is a text heuristic: a name
// that is a suffix of another column's name, or the keyword inside a default
// expression, can produce a false positive.
func isAutoIncrement(column, tableSQL string) bool {
	re := regexp.MustCompile(regexp.QuoteMeta(column) + ` [^,]+AUTOINCREMENT`)
	return re.MatchString(tableSQL)
}
