package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/sadopc/ddlschema/internal/schema"
)

func renderTables(w io.Writer, schemas []schema.Schema) error {
	ew := &errWriter{w: w}
	for i, s := range schemas {
		if i > 0 {
			ew.println()
		}
		ew.printf("schema %s (%d tables, %d views)\n", s.Name, len(s.Tables), len(s.Views))

		for _, tbl := range s.Tables {
			ew.println()
			t := columnTable(tbl)
			t.SetTitle(qualified(s.Name, tbl.Name) + tableFlags(tbl))
			ew.render(t)

			if len(tbl.Indexes) > 0 {
				ew.render(indexTable(tbl))
			}
			if len(tbl.ForeignKeys) > 0 {
				ew.render(foreignKeyTable(tbl))
			}
			if len(tbl.Triggers) > 0 {
				ew.printf("triggers: %s\n", strings.Join(triggerNames(tbl), ", "))
			}
		}

		for _, v := range s.Views {
			ew.println()
			t := viewTable(v)
			t.SetTitle("view " + qualified(s.Name, v.Name))
			ew.render(t)
		}
	}
	return ew.err
}

func newWriter(header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(header)
	return t
}

func columnTable(tbl schema.Table) table.Writer {
	t := newWriter(table.Row{"#", "Column", "Type", "Affinity", "Strict", "PK", "Null", "AI", "Default"})
	for i, c := range tbl.Columns {
		strict := ""
		if c.StrictType != nil {
			strict = string(*c.StrictType)
		}
		t.AppendRow(table.Row{
			i + 1, c.Name, c.TypeName, string(c.TypeAffinity), strict,
			mark(c.IsPrimaryKey), mark(c.IsNullable), mark(c.IsAutoIncrement), deref(c.DefaultExpression),
		})
	}
	return t
}

func indexTable(tbl schema.Table) table.Writer {
	t := newWriter(table.Row{"Index", "Unique", "Partial", "Columns"})
	for _, idx := range tbl.Indexes {
		t.AppendRow(table.Row{idx.Name, mark(idx.IsUnique), mark(idx.IsPartial), indexColumns(idx)})
	}
	return t
}

func foreignKeyTable(tbl schema.Table) table.Writer {
	t := newWriter(table.Row{"References", "Columns", "On Update", "On Delete"})
	for _, fk := range tbl.ForeignKeys {
		pairs := make([]string, 0, len(fk.ColumnPairs))
		for _, p := range fk.ColumnPairs {
			to := p.NameTo
			if to == "" {
				to = "?"
			}
			pairs = append(pairs, p.NameFrom+" -> "+to)
		}
		t.AppendRow(table.Row{fk.TableName, strings.Join(pairs, ", "), string(fk.OnUpdateAction), string(fk.OnDeleteAction)})
	}
	return t
}

func viewTable(v schema.View) table.Writer {
	t := newWriter(table.Row{"#", "Column", "Origin"})
	for i, c := range v.Columns {
		t.AppendRow(table.Row{i + 1, c.Name, origin(c)})
	}
	return t
}

func indexColumns(idx schema.Index) string {
	parts := make([]string, 0, len(idx.Columns))
	for _, c := range idx.Columns {
		s := c.Name
		if c.Collation != "" && c.Collation != schema.DefaultCollation {
			s += " COLLATE " + c.Collation
		}
		if c.IsDescending {
			s += " DESC"
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ", ")
}

func triggerNames(tbl schema.Table) []string {
	names := make([]string, 0, len(tbl.Triggers))
	for _, tr := range tbl.Triggers {
		names = append(names, tr.Name)
	}
	return names
}

func tableFlags(tbl schema.Table) string {
	var flags []string
	if tbl.IsStrict {
		flags = append(flags, "STRICT")
	}
	if tbl.WithoutRowID {
		flags = append(flags, "WITHOUT ROWID")
	}
	if len(flags) == 0 {
		return ""
	}
	return " (" + strings.Join(flags, ", ") + ")"
}

func origin(c schema.ViewColumn) string {
	if c.TableName == nil || c.OriginalName == nil {
		return "(expression)"
	}
	return *c.TableName + "." + *c.OriginalName
}

func qualified(schemaName, name string) string {
	if schemaName == "" || schemaName == "main" {
		return name
	}
	return schemaName + "." + name
}

func mark(b bool) string {
	if b {
		return "yes"
	}
	return ""
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// errWriter keeps the first write error so rendering code can stay linear.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}

func (e *errWriter) println() {
	e.printf("\n")
}

func (e *errWriter) render(t table.Writer) {
	e.printf("%s\n", t.Render())
}

func (e *errWriter) renderMarkdown(t table.Writer) {
	e.printf("%s\n", t.RenderMarkdown())
}
