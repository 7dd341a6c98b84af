// Package source reads raw score tables from files and databases.
package source

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/lixenwraith/barrace/score"
)

// Reader produces a raw score table
type Reader interface {
	Table(ctx context.Context) (score.Table, error)
}

// Open resolves a source ref: "sqlite:<path>?table=<name>" or a CSV file path
func Open(ref string) (Reader, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("empty source")
	}
	rest, ok := strings.CutPrefix(ref, "sqlite:")
	if !ok {
		return CSV{Path: ref}, nil
	}

	path, query, _ := strings.Cut(rest, "?")
	if path == "" {
		return nil, fmt.Errorf("sqlite source %q: missing path", ref)
	}
	values, err := url.ParseQuery(query)
	if err != nil {
		return nil, fmt.Errorf("sqlite source %q: %w", ref, err)
	}
	name := values.Get("table")
	if name == "" {
		name = DefaultTable
	}
	if !validIdent.MatchString(name) {
		return nil, fmt.Errorf("sqlite source %q: invalid table name %q", ref, name)
	}
	return SQLite{Path: path, Name: name}, nil
}
