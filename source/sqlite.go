package source

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	_ "modernc.org/sqlite"

	"github.com/lixenwraith/barrace/score"
)

// DefaultTable is read when a sqlite reference names no table
const DefaultTable = "scores"

var validIdent = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLite reads every row of one table; column names become the header
type SQLite struct {
	Path string
	Name string
}

func (s SQLite) String() string { return "sqlite:" + s.Path + "?table=" + s.Name }

// Table implements Reader
func (s SQLite) Table(ctx context.Context) (score.Table, error) {
	if !validIdent.MatchString(s.Name) {
		return score.Table{}, fmt.Errorf("invalid table name %q", s.Name)
	}
	db, err := sql.Open("sqlite", s.Path)
	if err != nil {
		return score.Table{}, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	// Identifier is validated above; rowid keeps insertion order
	rows, err := db.QueryContext(ctx, `SELECT * FROM "`+s.Name+`" ORDER BY rowid`)
	if err != nil {
		return score.Table{}, fmt.Errorf("failed to query %s: %w", s.Name, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return score.Table{}, fmt.Errorf("failed to read columns: %w", err)
	}
	t := score.Table{Header: cols}

	vals := make([]sql.NullString, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return score.Table{}, fmt.Errorf("failed to scan row: %w", err)
		}
		row := make([]string, len(cols))
		for i, v := range vals {
			row[i] = v.String // NULL reads as blank
		}
		t.Rows = append(t.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return score.Table{}, fmt.Errorf("failed to iterate rows: %w", err)
	}
	return t, nil
}
