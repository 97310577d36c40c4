package render

import (
	"io"

	"github.com/sadopc/ddlschema/internal/schema"
)

// renderMarkdown writes one section per schema with a heading per table and
// view, suitable for committing next to the DDL it documents.
func renderMarkdown(w io.Writer, schemas []schema.Schema) error {
	ew := &errWriter{w: w}
	for i, s := range schemas {
		if i > 0 {
			ew.println()
		}
		ew.printf("# Schema `%s`\n", s.Name)

		for _, tbl := range s.Tables {
			ew.printf("\n## Table `%s`%s\n\n", tbl.Name, tableFlags(tbl))
			ew.renderMarkdown(columnTable(tbl))

			if len(tbl.Indexes) > 0 {
				ew.printf("\n### Indexes\n\n")
				ew.renderMarkdown(indexTable(tbl))
			}
			if len(tbl.ForeignKeys) > 0 {
				ew.printf("\n### Foreign keys\n\n")
				ew.renderMarkdown(foreignKeyTable(tbl))
			}
			if len(tbl.Triggers) > 0 {
				ew.printf("\n### Triggers\n\n")
				for _, name := range triggerNames(tbl) {
					ew.printf("- `%s`\n", name)
				}
			}
		}

		for _, v := range s.Views {
			ew.printf("\n## View `%s`\n\n", v.Name)
			ew.renderMarkdown(viewTable(v))
		}

		if len(s.Tables) == 0 && len(s.Views) == 0 {
			ew.printf("\n_No tables or views._\n")
		}
	}
	return ew.err
}
