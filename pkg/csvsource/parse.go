package csvsource

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Ramsey-B/dahlia/pkg/models"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ErrEmpty is returned for a source with no header row.
var ErrEmpty = errors.New("csv has no header row")

// ParseError reports malformed CSV content.
type ParseError struct {
	Source string
	Line   int
	Err    error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("invalid CSV in %s at line %d: %v", e.Source, e.Line, e.Err)
	}
	return fmt.Sprintf("invalid CSV in %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse reads a CSV document with a header row. Rows shorter than the header
// leave the trailing columns missing; longer rows are an error.
func Parse(source string, data []byte) (*models.Table, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &ParseError{Source: source, Err: ErrEmpty}
	}
	if err != nil {
		return nil, &ParseError{Source: source, Err: err}
	}

	columns := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, &ParseError{Source: source, Line: 1, Err: fmt.Errorf("column %d has no name", i+1)}
		}
		if seen[name] {
			return nil, &ParseError{Source: source, Line: 1, Err: fmt.Errorf("duplicate column %q", name)}
		}
		seen[name] = true
		columns[i] = name
	}

	table := &models.Table{Source: source, Columns: columns}
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &ParseError{Source: source, Err: err}
		}

		line, _ := reader.FieldPos(0)
		if len(row) > len(columns) {
			return nil, &ParseError{
				Source: source,
				Line:   line,
				Err:    fmt.Errorf("expected at most %d fields, got %d", len(columns), len(row)),
			}
		}

		fields := make(map[string]*string, len(columns))
		for i, value := range row {
			v := value
			fields[columns[i]] = &v
		}
		table.Records = append(table.Records, models.RawRecord{
			Source: source,
			Line:   line,
			Fields: fields,
		})
	}

	return table, nil
}
