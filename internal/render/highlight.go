package render

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"github.com/sadopc/ddlschema/internal/theme"
)

// Color modes accepted by ColorEnabled.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// ColorEnabled resolves a color mode for w. In auto mode color is used only
// when w is a terminal and NO_COLOR is unset.
func ColorEnabled(mode string, w io.Writer) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

var colorOnce sync.Once

// forceColor makes lipgloss emit ANSI sequences even when stdout is not a
// terminal, so --color=always works through pipes.
func forceColor() {
	colorOnce.Do(func() {
		if lipgloss.ColorProfile() == termenv.Ascii {
			lipgloss.SetColorProfile(termenv.ANSI256)
		}
	})
}

// Highlight tokenises text with the named chroma lexer and styles each token
// with the theme. Unknown lexers and tokenise failures return text as is.
func Highlight(text, lexerName string, th *theme.Theme) string {
	if th == nil {
		return text
	}
	l := lexers.Get(lexerName)
	if l == nil {
		return text
	}
	l = chroma.Coalesce(l)

	iter, err := l.Tokenise(nil, text)
	if err != nil {
		return text
	}

	var b strings.Builder
	b.Grow(len(text) * 2)

	for _, tok := range iter.Tokens() {
		if tok.Value == "" {
			continue
		}
		style, ok := styleFor(tok.Type, th)
		if !ok {
			b.WriteString(tok.Value)
			continue
		}
		// Style line by line so newlines are always emitted unstyled.
		lines := strings.Split(tok.Value, "\n")
		for i, line := range lines {
			if line != "" {
				b.WriteString(style.Render(line))
			}
			if i < len(lines)-1 {
				b.WriteByte('\n')
			}
		}
	}
	return b.String()
}

func styleFor(tt chroma.TokenType, th *theme.Theme) (lipgloss.Style, bool) {
	switch {
	case tt == chroma.NameTag || tt == chroma.NameAttribute || tt == chroma.NameVariable:
		return th.SyntaxKey, true
	case tt.InSubCategory(chroma.LiteralString):
		return th.SyntaxString, true
	case tt.InSubCategory(chroma.LiteralNumber):
		return th.SyntaxNumber, true
	case tt.InCategory(chroma.Keyword):
		return th.SyntaxKeyword, true
	case tt.InCategory(chroma.Comment):
		return th.SyntaxComment, true
	case tt == chroma.Punctuation || tt.InCategory(chroma.Operator):
		return th.SyntaxPunctuation, true
	default:
		return lipgloss.Style{}, false
	}
}
