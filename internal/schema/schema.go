package schema

// Schema represents one attached database (e.g. "main") and its contents.
type Schema struct {
	Name   string  `json:"name" yaml:"name"`
	Tables []Table `json:"tables" yaml:"tables"`
	Views  []View  `json:"views" yaml:"views"`
}

// Table represents a table and everything bound to it.
type Table struct {
	Name         string       `json:"name" yaml:"name"`
	Columns      []Column     `json:"columns" yaml:"columns"`
	Indexes      []Index      `json:"indexes" yaml:"indexes"`
	Triggers     []Trigger    `json:"triggers" yaml:"triggers"`
	ForeignKeys  []ForeignKey `json:"foreignKeys" yaml:"foreignKeys"`
	IsStrict     bool         `json:"isStrict" yaml:"isStrict"`
	WithoutRowID bool         `json:"withoutRowId" yaml:"withoutRowId"`
}

// Column represents a table column. StrictType is set only for columns of
// strict tables; DefaultExpression is nil when no default is declared.
type Column struct {
	Name              string      `json:"name" yaml:"name"`
	TypeName          string      `json:"typeName" yaml:"typeName"`
	TypeAffinity      Affinity    `json:"typeAffinity" yaml:"typeAffinity"`
	StrictType        *StrictType `json:"strictType,omitempty" yaml:"strictType,omitempty"`
	IsPrimaryKey      bool        `json:"isPrimaryKey" yaml:"isPrimaryKey"`
	IsNullable        bool        `json:"isNullable" yaml:"isNullable"`
	IsAutoIncrement   bool        `json:"isAutoIncrement" yaml:"isAutoIncrement"`
	DefaultExpression *string     `json:"defaultExpression,omitempty" yaml:"defaultExpression,omitempty"`
}

// Index represents a table index. Columns holds key columns only.
type Index struct {
	Name      string        `json:"name" yaml:"name"`
	IsUnique  bool          `json:"isUnique" yaml:"isUnique"`
	IsPartial bool          `json:"isPartial" yaml:"isPartial"`
	Columns   []IndexColumn `json:"columns" yaml:"columns"`
}

// IndexColumn is one key column of an index, most significant first.
type IndexColumn struct {
	Name         string `json:"name" yaml:"name"`
	IsDescending bool   `json:"isDescending" yaml:"isDescending"`
	Collation    string `json:"collation" yaml:"collation"`
}

// DefaultCollation is the collating sequence used when none is declared.
const DefaultCollation = "BINARY"

// Trigger represents a trigger bound to a table.
type Trigger struct {
	Name string `json:"name" yaml:"name"`
}

// ForeignKey represents one foreign key constraint.
type ForeignKey struct {
	TableName      string                 `json:"tableName" yaml:"tableName"`
	ColumnPairs    []ForeignKeyColumnPair `json:"columnPairs" yaml:"columnPairs"`
	OnUpdateAction ForeignKeyAction       `json:"onUpdateAction" yaml:"onUpdateAction"`
	OnDeleteAction ForeignKeyAction       `json:"onDeleteAction" yaml:"onDeleteAction"`
}

// ForeignKeyColumnPair maps a local column to the referenced column.
type ForeignKeyColumnPair struct {
	NameFrom string `json:"nameFrom" yaml:"nameFrom"`
	NameTo   string `json:"nameTo" yaml:"nameTo"`
}

// View represents a view and its projected columns in output order.
type View struct {
	Name    string       `json:"name" yaml:"name"`
	Columns []ViewColumn `json:"columns" yaml:"columns"`
}

// ViewColumn is one projected view column. OriginalName and TableName are
// nil when the column is not a direct table column reference.
type ViewColumn struct {
	Name         string  `json:"name" yaml:"name"`
	OriginalName *string `json:"originalName,omitempty" yaml:"originalName,omitempty"`
	TableName    *string `json:"tableName,omitempty" yaml:"tableName,omitempty"`
}

// Table returns the table with the given name, or nil.
func (s *Schema) Table(name string) *Table {
	for i := range s.Tables {
		if s.Tables[i].Name == name {
			return &s.Tables[i]
		}
	}
	return nil
}

// View returns the view with the given name, or nil.
func (s *Schema) View(name string) *View {
	for i := range s.Views {
		if s.Views[i].Name == name {
			return &s.Views[i]
		}
	}
	return nil
}

// Column returns the column with the given name, or nil.
func (t *Table) Column(name string) *Column {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// PrimaryKey returns the primary key columns in declaration order.
func (t *Table) PrimaryKey() []Column {
	var pk []Column
	for _, c := range t.Columns {
		if c.IsPrimaryKey {
			pk = append(pk, c)
		}
	}
	return pk
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}
