package extract

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sadopc/ddlschema/internal/adapter"
	"github.com/sadopc/ddlschema/internal/schema"
)

// resolver reads one schema. listing holds the table_list rows of that
// schema keyed by name and is fetched once before any object is resolved.
type resolver struct {
	in      adapter.Introspector
	log     *zap.Logger
	schema  string
	listing map[string]adapter.TableListRow
}

// enumerate resolves every attached, non-temporary schema.
func (x *Extractor) enumerate(ctx context.Context, in adapter.Introspector) ([]schema.Schema, error) {
	dbs, err := in.Databases(ctx)
	if err != nil {
		return nil, fmt.Errorf("list schemas: %w", err)
	}

	names := attachedSchemas(dbs)
	schemas := make([]schema.Schema, 0, len(names))
	for _, name := range names {
		s, err := x.resolveSchema(ctx, in, name)
		if err != nil {
			return nil, fmt.Errorf("schema %q: %w", name, err)
		}
		schemas = append(schemas, s)
	}
	return schemas, nil
}

// attachedSchemas drops temporary schemas and repeated names, keeping
// first-seen order.
func attachedSchemas(dbs []adapter.DatabaseRow) []string {
	seen := make(map[string]bool, len(dbs))
	var names []string
	for _, db := range dbs {
		if db.Temporary || seen[db.Name] {
			continue
		}
		seen[db.Name] = true
		names = append(names, db.Name)
	}
	return names
}

func (x *Extractor) resolveSchema(ctx context.Context, in adapter.Introspector, name string) (schema.Schema, error) {
	listing, err := in.TableList(ctx, name)
	if err != nil {
		return schema.Schema{}, fmt.Errorf("list tables: %w", err)
	}

	r := &resolver{
		in:      in,
		log:     x.logger.With(zap.String("schema", name)),
		schema:  name,
		listing: make(map[string]adapter.TableListRow, len(listing)),
	}
	for _, row := range listing {
		r.listing[row.Name] = row
	}

	tables, err := r.tables(ctx)
	if err != nil {
		return schema.Schema{}, err
	}
	views, err := r.views(ctx)
	if err != nil {
		return schema.Schema{}, err
	}

	r.log.Debug("schema resolved", zap.Int("tables", len(tables)), zap.Int("views", len(views)))
	return schema.Schema{Name: name, Tables: tables, Views: views}, nil
}

// lookup returns the listing entry for name, which must have type objType.
func (r *resolver) lookup(name, objType string) (adapter.TableListRow, error) {
	row, ok := r.listing[name]
	if !ok {
		return adapter.TableListRow{}, &InconsistentCatalogError{
			Schema: r.schema,
			Object: name,
			Source: "table_list",
		}
	}
	if row.Type != objType {
		return row, &InconsistentCatalogError{
			Schema: r.schema,
			Object: name,
			Source: "table_list",
			Detail: fmt.Sprintf("listed as %s, catalog says %s", row.Type, objType),
		}
	}
	return row, nil
}
