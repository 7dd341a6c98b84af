package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lixenwraith/barrace/score"
)

// CSV reads a delimited file whose first record is the header
type CSV struct {
	Path string
}

func (c CSV) String() string { return c.Path }

// Table implements Reader
func (c CSV) Table(ctx context.Context) (score.Table, error) {
	f, err := os.Open(c.Path)
	if err != nil {
		return score.Table{}, fmt.Errorf("failed to open %s: %w", c.Path, err)
	}
	defer f.Close()
	return ReadCSV(ctx, f)
}

// ReadCSV parses CSV data; ragged rows are kept as-is
func ReadCSV(ctx context.Context, r io.Reader) (score.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var t score.Table
	for {
		if err := ctx.Err(); err != nil {
			return score.Table{}, err
		}
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return score.Table{}, fmt.Errorf("failed to read csv: %w", err)
		}
		if t.Header == nil {
			rec[0] = strings.TrimPrefix(rec[0], "\ufeff")
			t.Header = rec
			continue
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}
