package browser

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/sadopc/ddlschema/internal/schema"
)

// NodeKind represents the type of tree node.
type NodeKind int

const (
	NodeSchema NodeKind = iota
	NodeTableGroup
	NodeTable
	NodeViewGroup
	NodeView
	NodeColumn
)

// TreeNode represents a node in the schema tree. Exactly one of the model
// pointers matching Kind is set; group nodes carry only Schema.
type TreeNode struct {
	Label    string
	Kind     NodeKind
	Children []*TreeNode
	Expanded bool
	Depth    int

	Schema     *schema.Schema
	Table      *schema.Table
	View       *schema.View
	Column     *schema.Column
	ViewColumn *schema.ViewColumn
}

// objectRef identifies one table or view for filtering.
type objectRef struct {
	schema int
	table  int // -1 for views
	view   int // -1 for tables
	name   string
}

type objectRefs []objectRef

func (r objectRefs) String(i int) string { return strings.ToLower(r[i].name) }
func (r objectRefs) Len() int            { return len(r) }

// buildTree builds the tree for schemas. A non-empty filter keeps only the
// tables and views whose names fuzzy-match it, best match first, with every
// group expanded.
func buildTree(schemas []schema.Schema, filter string) []*TreeNode {
	keep := matchObjects(schemas, filter)

	var nodes []*TreeNode
	for si := range schemas {
		s := &schemas[si]
		schemaNode := &TreeNode{
			Label:    s.Name,
			Kind:     NodeSchema,
			Schema:   s,
			Expanded: s.Name == "main" || len(schemas) == 1 || filter != "",
		}

		tables, views := keep.order(si, s, filter != "")

		if len(tables) > 0 {
			group := &TreeNode{
				Label:    fmt.Sprintf("Tables (%d)", len(tables)),
				Kind:     NodeTableGroup,
				Schema:   s,
				Depth:    1,
				Expanded: true,
			}
			for _, ti := range tables {
				t := &s.Tables[ti]
				tableNode := &TreeNode{Label: t.Name, Kind: NodeTable, Schema: s, Table: t, Depth: 2}
				for ci := range t.Columns {
					c := &t.Columns[ci]
					tableNode.Children = append(tableNode.Children, &TreeNode{
						Label: c.Name, Kind: NodeColumn, Schema: s, Table: t, Column: c, Depth: 3,
					})
				}
				group.Children = append(group.Children, tableNode)
			}
			schemaNode.Children = append(schemaNode.Children, group)
		}

		if len(views) > 0 {
			group := &TreeNode{
				Label:    fmt.Sprintf("Views (%d)", len(views)),
				Kind:     NodeViewGroup,
				Schema:   s,
				Depth:    1,
				Expanded: filter != "",
			}
			for _, vi := range views {
				v := &s.Views[vi]
				viewNode := &TreeNode{Label: v.Name, Kind: NodeView, Schema: s, View: v, Depth: 2}
				for ci := range v.Columns {
					c := &v.Columns[ci]
					viewNode.Children = append(viewNode.Children, &TreeNode{
						Label: c.Name, Kind: NodeColumn, Schema: s, View: v, ViewColumn: c, Depth: 3,
					})
				}
				group.Children = append(group.Children, viewNode)
			}
			schemaNode.Children = append(schemaNode.Children, group)
		}

		if filter != "" && len(schemaNode.Children) == 0 {
			continue
		}
		nodes = append(nodes, schemaNode)
	}
	return nodes
}

// matches records fuzzy match rank per object; nil means no filter.
type matches map[objectRef]int

func matchObjects(schemas []schema.Schema, filter string) matches {
	if filter == "" {
		return nil
	}

	var refs objectRefs
	for si, s := range schemas {
		for ti, t := range s.Tables {
			refs = append(refs, objectRef{schema: si, table: ti, view: -1, name: t.Name})
		}
		for vi, v := range s.Views {
			refs = append(refs, objectRef{schema: si, table: -1, view: vi, name: v.Name})
		}
	}

	// Case-insensitive: both sides are lowercased, fuzzy.FindFrom returns
	// matches sorted by score.
	found := fuzzy.FindFrom(strings.ToLower(filter), refs)
	m := make(matches, len(found))
	for rank, f := range found {
		m[refs[f.Index]] = rank
	}
	return m
}

// order returns the table and view indexes of schema si to display.
func (m matches) order(si int, s *schema.Schema, filtered bool) (tables, views []int) {
	if !filtered {
		for i := range s.Tables {
			tables = append(tables, i)
		}
		for i := range s.Views {
			views = append(views, i)
		}
		return tables, views
	}

	tableRef := func(i int) objectRef { return objectRef{schema: si, table: i, view: -1, name: s.Tables[i].Name} }
	viewRef := func(i int) objectRef { return objectRef{schema: si, table: -1, view: i, name: s.Views[i].Name} }

	for i := range s.Tables {
		if _, ok := m[tableRef(i)]; ok {
			tables = append(tables, i)
		}
	}
	for i := range s.Views {
		if _, ok := m[viewRef(i)]; ok {
			views = append(views, i)
		}
	}
	sort.SliceStable(tables, func(a, b int) bool { return m[tableRef(tables[a])] < m[tableRef(tables[b])] })
	sort.SliceStable(views, func(a, b int) bool { return m[viewRef(views[a])] < m[viewRef(views[b])] })
	return tables, views
}
