// Package source loads DDL scripts from files, stdin, or an existing SQLite
// database.
package source

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Stdin is the path that reads from standard input.
const Stdin = "-"

var ErrNoInput = errors.New("no DDL input given")

// ReadFiles reads and joins the given files in order. The path "-" reads
// standard input.
func ReadFiles(paths ...string) (string, error) {
	return readFiles(os.Stdin, paths)
}

// ReadFilesFrom is ReadFiles with standard input taken from stdin.
func ReadFilesFrom(stdin io.Reader, paths ...string) (string, error) {
	return readFiles(stdin, paths)
}

func readFiles(stdin io.Reader, paths []string) (string, error) {
	if len(paths) == 0 {
		return "", ErrNoInput
	}

	parts := make([]string, 0, len(paths))
	for _, p := range paths {
		var (
			data []byte
			err  error
		)
		if p == Stdin {
			data, err = io.ReadAll(stdin)
		} else {
			data, err = os.ReadFile(p)
		}
		if err != nil {
			return "", fmt.Errorf("source: read %s: %w", displayName(p), err)
		}
		if text := strings.TrimSpace(string(data)); text != "" {
			parts = append(parts, text)
		}
	}
	return joinStatements(parts), nil
}

// joinStatements joins script fragments so a fragment missing its final
// semicolon cannot merge with the next one.
func joinStatements(parts []string) string {
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, ";\n") + ";\n"
}

func displayName(p string) string {
	if p == Stdin {
		return "stdin"
	}
	return p
}
