package browser

import (
	"fmt"
	"strings"

	"github.com/sadopc/ddlschema/internal/schema"
	"github.com/sadopc/ddlschema/internal/theme"
)

// detailLines renders the detail pane content for node.
func detailLines(node *TreeNode, th *theme.Theme) []string {
	if node == nil {
		return nil
	}
	d := &detail{th: th}
	switch node.Kind {
	case NodeSchema, NodeTableGroup, NodeViewGroup:
		d.schema(node.Schema)
	case NodeTable:
		d.table(node.Table)
	case NodeView:
		d.view(node.View)
	case NodeColumn:
		if node.Column != nil {
			d.column(node.Table, node.Column)
		} else {
			d.viewColumn(node.View, node.ViewColumn)
		}
	}
	return d.lines
}

type detail struct {
	th    *theme.Theme
	lines []string
}

func (d *detail) heading(format string, args ...any) {
	if len(d.lines) > 0 {
		d.lines = append(d.lines, "")
	}
	d.lines = append(d.lines, d.th.DetailHeading.Render(fmt.Sprintf(format, args...)))
}

func (d *detail) kv(k, v string) {
	d.lines = append(d.lines, d.th.DetailKey.Render(fmt.Sprintf("%-14s", k))+" "+d.th.DetailValue.Render(v))
}

func (d *detail) item(s string) {
	d.lines = append(d.lines, "  "+d.th.DetailValue.Render(s))
}

func (d *detail) muted(s string) {
	d.lines = append(d.lines, "  "+d.th.MutedText.Render(s))
}

func (d *detail) schema(s *schema.Schema) {
	if s == nil {
		return
	}
	d.heading("Schema %s", s.Name)
	d.kv("tables", fmt.Sprint(len(s.Tables)))
	d.kv("views", fmt.Sprint(len(s.Views)))

	var idx, fks, trg int
	for _, t := range s.Tables {
		idx += len(t.Indexes)
		fks += len(t.ForeignKeys)
		trg += len(t.Triggers)
	}
	d.kv("indexes", fmt.Sprint(idx))
	d.kv("foreign keys", fmt.Sprint(fks))
	d.kv("triggers", fmt.Sprint(trg))
}

func (d *detail) table(t *schema.Table) {
	d.heading("Table %s", t.Name)
	d.kv("strict", yesNo(t.IsStrict))
	d.kv("without rowid", yesNo(t.WithoutRowID))
	if pk := t.PrimaryKey(); len(pk) > 0 {
		names := make([]string, len(pk))
		for i, c := range pk {
			names[i] = c.Name
		}
		d.kv("primary key", strings.Join(names, ", "))
	}

	d.heading("Columns (%d)", len(t.Columns))
	for _, c := range t.Columns {
		line := fmt.Sprintf("%s %s", c.Name, c.TypeName)
		if flags := columnFlags(&c); flags != "" {
			line += "  " + d.th.DetailFlag.Render(flags)
		}
		d.item(line)
	}

	d.heading("Indexes (%d)", len(t.Indexes))
	if len(t.Indexes) == 0 {
		d.muted("none")
	}
	for _, idx := range t.Indexes {
		var flags []string
		if idx.IsUnique {
			flags = append(flags, "UNIQUE")
		}
		if idx.IsPartial {
			flags = append(flags, "PARTIAL")
		}
		cols := make([]string, len(idx.Columns))
		for i, c := range idx.Columns {
			cols[i] = c.Name
			if c.Collation != schema.DefaultCollation {
				cols[i] += " COLLATE " + c.Collation
			}
			if c.IsDescending {
				cols[i] += " DESC"
			}
		}
		line := fmt.Sprintf("%s (%s)", idx.Name, strings.Join(cols, ", "))
		if len(flags) > 0 {
			line += "  " + d.th.DetailFlag.Render(strings.Join(flags, " "))
		}
		d.item(line)
	}

	d.heading("Foreign keys (%d)", len(t.ForeignKeys))
	if len(t.ForeignKeys) == 0 {
		d.muted("none")
	}
	for _, fk := range t.ForeignKeys {
		from := make([]string, len(fk.ColumnPairs))
		to := make([]string, len(fk.ColumnPairs))
		for i, p := range fk.ColumnPairs {
			from[i], to[i] = p.NameFrom, p.NameTo
		}
		d.item(fmt.Sprintf("(%s) -> %s(%s)", strings.Join(from, ", "), fk.TableName, strings.Join(to, ", ")))
		d.muted(fmt.Sprintf("on update %s, on delete %s", fk.OnUpdateAction, fk.OnDeleteAction))
	}

	d.heading("Triggers (%d)", len(t.Triggers))
	if len(t.Triggers) == 0 {
		d.muted("none")
	}
	for _, tr := range t.Triggers {
		d.item(tr.Name)
	}
}

func (d *detail) view(v *schema.View) {
	d.heading("View %s", v.Name)
	d.heading("Columns (%d)", len(v.Columns))
	for _, c := range v.Columns {
		d.item(fmt.Sprintf("%s  %s", c.Name, d.th.MutedText.Render(viewOrigin(&c))))
	}
}

func (d *detail) column(t *schema.Table, c *schema.Column) {
	d.heading("Column %s.%s", t.Name, c.Name)
	d.kv("type", c.TypeName)
	d.kv("affinity", string(c.TypeAffinity))
	if c.StrictType != nil {
		d.kv("strict type", string(*c.StrictType))
	}
	d.kv("primary key", yesNo(c.IsPrimaryKey))
	d.kv("nullable", yesNo(c.IsNullable))
	d.kv("autoincrement", yesNo(c.IsAutoIncrement))
	if c.DefaultExpression != nil {
		d.kv("default", *c.DefaultExpression)
	}
}

func (d *detail) viewColumn(v *schema.View, c *schema.ViewColumn) {
	d.heading("Column %s.%s", v.Name, c.Name)
	d.kv("origin", viewOrigin(c))
}

func columnFlags(c *schema.Column) string {
	var flags []string
	if c.IsPrimaryKey {
		flags = append(flags, "PK")
	}
	if c.IsAutoIncrement {
		flags = append(flags, "AUTOINCREMENT")
	}
	if !c.IsNullable {
		flags = append(flags, "NOT NULL")
	}
	if c.DefaultExpression != nil {
		flags = append(flags, "DEFAULT "+*c.DefaultExpression)
	}
	return strings.Join(flags, " ")
}

func viewOrigin(c *schema.ViewColumn) string {
	if c.TableName == nil || c.OriginalName == nil {
		return "expression"
	}
	return *c.TableName + "." + *c.OriginalName
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
