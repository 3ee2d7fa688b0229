// Package dataset loads, cleans, joins and scores the videos and comments
// tables.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrMissingColumn is returned when a required column is absent from a table.
var ErrMissingColumn = errors.New("missing required column")

// Table is a delimited file held in memory as strings.
type Table struct {
	Path    string
	Columns []string
	Rows    [][]string
}

// ReadTable reads a delimited file with a header row. Every record must have
// as many fields as the header.
func ReadTable(path string, delimiter rune) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	t, err := parseTable(f, delimiter)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	t.Path = path
	return t, nil
}

func parseTable(r io.Reader, delimiter rune) (*Table, error) {
	reader := csv.NewReader(r)
	if delimiter != 0 {
		reader.Comma = delimiter
	}

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty file: no header row")
	}
	if err != nil {
		return nil, err
	}

	columns := make([]string, len(header))
	for i, name := range header {
		columns[i] = strings.TrimSpace(name)
	}
	if len(columns) > 0 {
		columns[0] = strings.TrimPrefix(columns[0], "\ufeff")
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	return &Table{Columns: columns, Rows: rows}, nil
}

// Index returns the position of the named column, or -1.
func (t *Table) Index(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	return t.Index(name) >= 0
}

// DropColumn removes the named column from the header and every row.
// It is a no-op when the column does not exist.
func (t *Table) DropColumn(name string) bool {
	idx := t.Index(name)
	if idx < 0 {
		return false
	}

	t.Columns = append(t.Columns[:idx:idx], t.Columns[idx+1:]...)
	for i, row := range t.Rows {
		if idx < len(row) {
			t.Rows[i] = append(row[:idx:idx], row[idx+1:]...)
		}
	}
	return true
}

func (t *Table) require(names ...string) error {
	for _, name := range names {
		if !t.HasColumn(name) {
			return fmt.Errorf("%w %q in %s", ErrMissingColumn, name, t.Path)
		}
	}
	return nil
}

// value returns the cell or "" when the column is absent (idx < 0).
func value(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
