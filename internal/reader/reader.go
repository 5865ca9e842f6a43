package reader

import (
	"fmt"
	"os"
	"strings"
)

// Table is the untyped result of reading a dataset: the first row as header,
// every later row as-is (trimmed, possibly ragged).
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Options controls how a dataset is read.
type Options struct {
	// Delimiter for delimited text. If 0, picked from the file extension.
	Delimiter rune
	// SheetName selects a worksheet for spreadsheet input; empty means the first sheet.
	SheetName string
}

// Reader defines a dataset reader implementation.
type Reader interface {
	CanRead(path string) bool
	Read(path string, opt Options) (*Table, error)
}

var registry []Reader

// Register adds a reader implementation to the registry.
func Register(r Reader) {
	registry = append(registry, r)
}

// ReadFile selects a reader based on filename and returns the parsed table.
// Unknown extensions are treated as delimited text.
func ReadFile(path string, opt Options) (*Table, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	for _, r := range registry {
		if r.CanRead(path) {
			return r.Read(path, opt)
		}
	}
	return delimitedReader{}.Read(path, opt)
}

func init() {
	Register(delimitedReader{})
	Register(xlsxReader{})
}

// trimFields trims surrounding whitespace in place and returns the slice.
func trimFields(fields []string) []string {
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}

// split turns a list of raw rows into a Table.
func split(name string, rows [][]string) *Table {
	t := &Table{Name: name}
	if len(rows) == 0 {
		return t
	}
	if len(rows[0]) > 0 {
		// encoding/csv keeps a UTF-8 byte order mark on the first field
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	t.Header = trimFields(rows[0])
	for _, r := range rows[1:] {
		t.Rows = append(t.Rows, trimFields(r))
	}
	return t
}
