// Package render writes extracted schemas as JSON, YAML, terminal tables or
// markdown documentation.
package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sadopc/ddlschema/internal/schema"
	"github.com/sadopc/ddlschema/internal/theme"
)

// Format is an output format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatTable    Format = "table"
	FormatMarkdown Format = "markdown"
)

var ErrUnknownFormat = errors.New("unknown output format")

// Formats returns every supported format.
func Formats() []Format {
	return []Format{FormatJSON, FormatYAML, FormatTable, FormatMarkdown}
}

// ParseFormat parses a format name. "md" is accepted for markdown.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatYAML, FormatTable, FormatMarkdown:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Options controls rendering.
type Options struct {
	// Color enables ANSI highlighting of JSON and YAML output.
	Color bool
	// Theme selects the highlight styles; nil means theme.Current.
	Theme *theme.Theme
}

// Render writes schemas to w in the given format.
func Render(w io.Writer, schemas []schema.Schema, format Format, opts Options) error {
	switch format {
	case FormatJSON:
		return renderStructured(w, schemas, "json", marshalJSON, opts)
	case FormatYAML:
		return renderStructured(w, schemas, "yaml", marshalYAML, opts)
	case FormatTable:
		return renderTables(w, schemas)
	case FormatMarkdown:
		return renderMarkdown(w, schemas)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

func renderStructured(w io.Writer, schemas []schema.Schema, lexer string, marshal func(any) ([]byte, error), opts Options) error {
	data, err := marshal(schemas)
	if err != nil {
		return fmt.Errorf("render %s: %w", lexer, err)
	}

	out := string(data)
	if opts.Color {
		th := opts.Theme
		if th == nil {
			th = theme.Current
		}
		forceColor()
		out = Highlight(out, lexer, th)
	}
	_, err = io.WriteString(w, out)
	return err
}

func marshalJSON(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func marshalYAML(v any) ([]byte, error) {
	var b strings.Builder
	enc := yaml.NewEncoder(&b)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return []byte(b.String()), nil
}
