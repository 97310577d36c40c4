// Package theme provides the styles used by the schema browser and by
// highlighted terminal output. Every visual element references a
// lipgloss.Style held in a Theme so the look can be swapped at runtime.
package theme

import "github.com/charmbracelet/lipgloss"

// Theme holds lipgloss.Style values for every styled element.
type Theme struct {
	Name string

	// Schema tree
	TreeTitle      lipgloss.Style
	TreeSchema     lipgloss.Style
	TreeTable      lipgloss.Style
	TreeView       lipgloss.Style
	TreeColumn     lipgloss.Style
	TreeColumnType lipgloss.Style
	TreeSelected   lipgloss.Style

	// Detail pane
	DetailHeading lipgloss.Style
	DetailKey     lipgloss.Style
	DetailValue   lipgloss.Style
	DetailFlag    lipgloss.Style

	// Structured output highlighting (JSON, YAML, SQL)
	SyntaxKey         lipgloss.Style
	SyntaxString      lipgloss.Style
	SyntaxNumber      lipgloss.Style
	SyntaxKeyword     lipgloss.Style
	SyntaxPunctuation lipgloss.Style
	SyntaxComment     lipgloss.Style

	// Filter and status line
	FilterPrompt lipgloss.Style
	StatusBar    lipgloss.Style
	StatusBarKey lipgloss.Style

	// General
	FocusedBorder   lipgloss.Style
	UnfocusedBorder lipgloss.Style
	ErrorText       lipgloss.Style
	MutedText       lipgloss.Style
}

// palette is the small set of colours a theme is derived from.
type palette struct {
	fg, muted, border, accent     string
	table, view, column, colType  string
	key, str, num, keyword        string
	selectedFg, selectedBg        string
	statusFg, statusBg, errColour string
}

func build(name string, p palette) *Theme {
	fg := func(c string) lipgloss.Style { return lipgloss.NewStyle().Foreground(lipgloss.Color(c)) }
	border := func(c string) lipgloss.Style {
		return lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(c))
	}

	return &Theme{
		Name: name,

		TreeTitle:      fg(p.accent).Bold(true).PaddingLeft(1),
		TreeSchema:     fg(p.keyword).Bold(true),
		TreeTable:      fg(p.table),
		TreeView:       fg(p.view),
		TreeColumn:     fg(p.column),
		TreeColumnType: fg(p.colType).Italic(true),
		TreeSelected: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(p.selectedFg)).
			Background(lipgloss.Color(p.selectedBg)),

		DetailHeading: fg(p.accent).Bold(true).Underline(true),
		DetailKey:     fg(p.key),
		DetailValue:   fg(p.fg),
		DetailFlag:    fg(p.table).Bold(true),

		SyntaxKey:         fg(p.key),
		SyntaxString:      fg(p.str),
		SyntaxNumber:      fg(p.num),
		SyntaxKeyword:     fg(p.keyword).Bold(true),
		SyntaxPunctuation: fg(p.fg),
		SyntaxComment:     fg(p.muted).Italic(true),

		FilterPrompt: fg(p.accent).Bold(true),
		StatusBar: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.statusFg)).
			Background(lipgloss.Color(p.statusBg)),
		StatusBarKey: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(p.statusFg)).
			Background(lipgloss.Color(p.statusBg)).
			PaddingLeft(1).
			PaddingRight(1),

		FocusedBorder:   border(p.accent),
		UnfocusedBorder: border(p.border),
		ErrorText:       fg(p.errColour).Bold(true),
		MutedText:       fg(p.muted),
	}
}

// Themes maps theme names to their definitions.
var Themes = map[string]*Theme{
	"default": build("default", palette{
		fg: "#D4D4D4", muted: "#808080", border: "#3C3C3C", accent: "#569CD6",
		table: "#4EC9B0", view: "#C586C0", column: "#D4D4D4", colType: "#808080",
		key: "#9CDCFE", str: "#CE9178", num: "#B5CEA8", keyword: "#DCDCAA",
		selectedFg: "#FFFFFF", selectedBg: "#264F78",
		statusFg: "#FFFFFF", statusBg: "#007ACC", errColour: "#F44747",
	}),
	"light": build("light", palette{
		fg: "#1E1E1E", muted: "#6E7781", border: "#D0D7DE", accent: "#0550AE",
		table: "#116329", view: "#8250DF", column: "#24292F", colType: "#6E7781",
		key: "#0550AE", str: "#0A3069", num: "#953800", keyword: "#CF222E",
		selectedFg: "#FFFFFF", selectedBg: "#0969DA",
		statusFg: "#FFFFFF", statusBg: "#0969DA", errColour: "#CF222E",
	}),
	"monokai": build("monokai", palette{
		fg: "#F8F8F2", muted: "#75715E", border: "#49483E", accent: "#66D9EF",
		table: "#A6E22E", view: "#AE81FF", column: "#F8F8F2", colType: "#75715E",
		key: "#66D9EF", str: "#E6DB74", num: "#AE81FF", keyword: "#F92672",
		selectedFg: "#272822", selectedBg: "#A6E22E",
		statusFg: "#272822", statusBg: "#66D9EF", errColour: "#F92672",
	}),
}

// Current is the currently active theme. It is initialized to Default.
var Current = Themes["default"]

// Default returns the default theme.
func Default() *Theme {
	return Themes["default"]
}

// Get returns the theme with the given name, falling back to Default.
func Get(name string) *Theme {
	if th, ok := Themes[name]; ok {
		return th
	}
	return Default()
}

// Names returns the registered theme names in a stable order.
func Names() []string {
	return []string{"default", "light", "monokai"}
}
