package browser

import (
	"errors"
	"os"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/ddlschema/internal/schema"
	"github.com/sadopc/ddlschema/internal/theme"
)

func fixture() []schema.Schema {
	return []schema.Schema{
		{
			Name: "main",
			Tables: []schema.Table{
				{
					Name: "users",
					Columns: []schema.Column{
						{Name: "id", TypeName: "INTEGER", TypeAffinity: schema.AffinityInteger, IsPrimaryKey: true},
						{Name: "email", TypeName: "TEXT", TypeAffinity: schema.AffinityText, IsNullable: true},
					},
					Indexes: []schema.Index{{
						Name: "users_email", IsUnique: true,
						Columns: []schema.IndexColumn{{Name: "email", Collation: "NOCASE"}},
					}},
				},
				{
					Name:    "orders",
					Columns: []schema.Column{{Name: "user_id", TypeName: "INTEGER", TypeAffinity: schema.AffinityInteger, IsNullable: true}},
					ForeignKeys: []schema.ForeignKey{{
						TableName:      "users",
						ColumnPairs:    []schema.ForeignKeyColumnPair{{NameFrom: "user_id", NameTo: "id"}},
						OnUpdateAction: schema.ActionNoAction,
						OnDeleteAction: schema.ActionCascade,
					}},
				},
			},
			Views: []schema.View{{
				Name: "order_users",
				Columns: []schema.ViewColumn{
					{Name: "email", OriginalName: schema.StringPtr("email"), TableName: schema.StringPtr("users")},
					{Name: "n"},
				},
			}},
		},
		{Name: "aux", Tables: []schema.Table{{Name: "extra"}}},
	}
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(t *testing.T, m Model, msgs ...tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		var ok bool
		m, ok = next.(Model)
		require.True(t, ok, "Update returned %T", next)
	}
	return m, cmd
}

func labels(m Model) []string {
	out := make([]string, len(m.flat))
	for i, n := range m.flat {
		out[i] = n.Label
	}
	return out
}

func TestNew_InitialTree(t *testing.T) {
	m := New(fixture(), "schema.sql")

	assert.Equal(t, []string{"main", "Tables (2)", "users", "orders", "Views (1)", "aux"}, labels(m))
	require.NotNil(t, m.Selected())
	assert.Equal(t, NodeSchema, m.Selected().Kind)
	assert.Contains(t, strings.Join(m.detail, "\n"), "Schema main")
}

func TestUpdate_NavigateAndExpand(t *testing.T) {
	m := New(fixture(), "")

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyDown}, keyRunes("j"))
	require.Equal(t, "users", m.Selected().Label)
	assert.Contains(t, strings.Join(m.detail, "\n"), "Table users")

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, []string{"main", "Tables (2)", "users", "id", "email", "orders", "Views (1)", "aux"}, labels(m))

	m, _ = send(t, m, keyRunes("j"))
	require.Equal(t, NodeColumn, m.Selected().Kind)
	detail := strings.Join(m.detail, "\n")
	assert.Contains(t, detail, "Column users.id")
	assert.Contains(t, detail, "affinity")

	m, _ = send(t, m, keyRunes("k"), keyRunes("h"))
	assert.NotContains(t, labels(m), "id")

	m, _ = send(t, m, keyRunes("G"))
	assert.Equal(t, "aux", m.Selected().Label)
	m, _ = send(t, m, keyRunes("g"))
	assert.Equal(t, 0, m.cursor)
}

func TestUpdate_UpAtTopStays(t *testing.T) {
	m := New(fixture(), "")
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, m.cursor)
}

func TestUpdate_Filter(t *testing.T) {
	m := New(fixture(), "")

	m, _ = send(t, m, keyRunes("/"))
	require.True(t, m.filtering)

	m, _ = send(t, m, keyRunes("o"), keyRunes("r"), keyRunes("d"))
	assert.Equal(t, "ord", m.Filter())
	assert.Equal(t, []string{"main", "Tables (1)", "orders", "Views (1)", "order_users"}, labels(m))
	assert.Equal(t, "orders", m.Selected().Label, "first match is selected")

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.filtering)
	assert.Equal(t, "ord", m.Filter(), "enter keeps the filter")

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Empty(t, m.Filter())
	assert.Contains(t, labels(m), "aux")
}

func TestUpdate_FilterEscWhileTyping(t *testing.T) {
	m := New(fixture(), "")
	m, _ = send(t, m, keyRunes("/"), keyRunes("z"), keyRunes("z"), keyRunes("z"))
	assert.Empty(t, m.flat)
	assert.Nil(t, m.Selected())

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.filtering)
	assert.Len(t, m.flat, 6)
}

func TestUpdate_Quit(t *testing.T) {
	m := New(fixture(), "")
	_, cmd := send(t, m, keyRunes("q"))
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

func TestUpdate_QWhileFilteringIsText(t *testing.T) {
	m := New(fixture(), "")
	m, cmd := send(t, m, keyRunes("/"), keyRunes("q"))
	if cmd != nil {
		_, quit := cmd().(tea.QuitMsg)
		assert.False(t, quit)
	}
	assert.Equal(t, "q", m.Filter())
}

func TestUpdate_SchemasMsg(t *testing.T) {
	m := New(fixture(), "")
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, "users", m.Selected().Label)

	updated := fixture()
	updated[0].Tables[0].Columns = append(updated[0].Tables[0].Columns, schema.Column{Name: "name", TypeName: "TEXT"})
	m, _ = send(t, m, SchemasMsg{Schemas: updated})

	assert.Equal(t, "users", m.Selected().Label, "selection survives a reload")
	assert.Contains(t, labels(m), "name", "expanded nodes stay expanded")
	assert.NoError(t, m.err)

	m, _ = send(t, m, SchemasMsg{Err: errors.New("near \"TABLE\": syntax error")})
	assert.Contains(t, labels(m), "name", "a failed reload keeps the previous schemas")
	assert.Error(t, m.err)

	m, _ = send(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	assert.Contains(t, m.View(), "reload failed")
}

func TestUpdate_DetailScroll(t *testing.T) {
	m := New(fixture(), "")
	m, _ = send(t, m, tea.WindowSizeMsg{Width: 80, Height: 8}, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown})
	require.Greater(t, len(m.detail), m.detailHeight())

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyPgDown})
	assert.Positive(t, m.detailOffset)

	for i := 0; i < 10; i++ {
		m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyPgDown})
	}
	assert.Equal(t, len(m.detail)-m.detailHeight(), m.detailOffset)

	for i := 0; i < 10; i++ {
		m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyPgUp})
	}
	assert.Equal(t, 0, m.detailOffset)
}

func TestView(t *testing.T) {
	m := New(fixture(), "schema.sql")
	assert.Empty(t, m.View(), "no size yet")

	m, _ = send(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	out := m.View()
	assert.Contains(t, out, "schema.sql")
	assert.Contains(t, out, "users")
	assert.Contains(t, out, "Schema main")

	m, _ = send(t, m, keyRunes("?"))
	assert.Contains(t, m.View(), "clear filter")
}

func TestView_EmptyFilterResult(t *testing.T) {
	m := New(fixture(), "")
	m, _ = send(t, m, tea.WindowSizeMsg{Width: 100, Height: 30}, keyRunes("/"), keyRunes("x"), keyRunes("y"))
	assert.Contains(t, m.View(), "Nothing matches")
}

func TestDetailLines(t *testing.T) {
	s := fixture()
	th := theme.Default()

	orders := strings.Join(detailLines(&TreeNode{Kind: NodeTable, Schema: &s[0], Table: &s[0].Tables[1]}, th), "\n")
	assert.Contains(t, orders, "(user_id) -> users(id)")
	assert.Contains(t, orders, "on delete CASCADE")

	users := strings.Join(detailLines(&TreeNode{Kind: NodeTable, Schema: &s[0], Table: &s[0].Tables[0]}, th), "\n")
	assert.Contains(t, users, "users_email (email COLLATE NOCASE)")

	view := strings.Join(detailLines(&TreeNode{Kind: NodeView, Schema: &s[0], View: &s[0].Views[0]}, th), "\n")
	assert.Contains(t, view, "users.email")
	assert.Contains(t, view, "expression")

	assert.Nil(t, detailLines(nil, th))
}

func TestFit(t *testing.T) {
	assert.Equal(t, "ab  ", fit("ab", 4))
	assert.Equal(t, "abc…", fit("abcdef", 4))
	assert.Equal(t, "", fit("abc", 0))
}

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}
