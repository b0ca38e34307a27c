// Package feed reads the uploaded installs and white glove feeds and joins them.
package feed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var (
	ErrMissingHeader     = errors.New("missing_header")
	ErrUnsupportedFormat = errors.New("unsupported_format")
)

// Row maps a header label to its raw, unparsed cell value.
type Row map[string]string

// Get returns the trimmed cell for label.
func (r Row) Get(label string) string {
	return strings.TrimSpace(r[label])
}

type ParseOptions struct {
	Delimiter rune
	Header    bool
}

// LineError records a line the reader could not decode cleanly.
type LineError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

type Table struct {
	Header []string
	Rows   []Row
	Errors []LineError
}

// Parse reads delimited text into rows. Without a header, columns are labelled
// by their 1-based position.
func Parse(r io.Reader, opts ParseOptions) (*Table, error) {
	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	table := &Table{}
	first := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			line := 0
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				line = parseErr.StartLine
			}
			table.Errors = append(table.Errors, LineError{Line: line, Message: err.Error()})
			if record == nil {
				continue
			}
		}

		if first {
			first = false
			if opts.Header {
				table.Header = headerLabels(record)
				continue
			}
		}
		if isBlankRecord(record) {
			continue
		}
		table.Rows = append(table.Rows, table.rowFor(record))
	}

	if opts.Header && table.Header == nil {
		return nil, ErrMissingHeader
	}
	return table, nil
}

func (t *Table) rowFor(record []string) Row {
	row := make(Row, len(record))
	for i, cell := range record {
		row[t.label(i)] = cell
	}
	return row
}

// label names column i; cells past the header get "_extra_<n>".
func (t *Table) label(i int) string {
	if t.Header == nil {
		return strconv.Itoa(i + 1)
	}
	if i < len(t.Header) {
		return t.Header[i]
	}
	return fmt.Sprintf("_extra_%d", i-len(t.Header)+1)
}

// headerLabels trims labels, strips a leading BOM and suffixes duplicates.
func headerLabels(record []string) []string {
	labels := make([]string, len(record))
	reserved := make(map[string]bool, len(record))
	for i, cell := range record {
		if i == 0 {
			cell = strings.TrimPrefix(cell, "\ufeff")
		}
		labels[i] = strings.TrimSpace(cell)
		reserved[labels[i]] = true
	}

	// Repeats become label_2, label_3, ... skipping any name the header already uses.
	used := make(map[string]bool, len(record))
	next := make(map[string]int)
	for i, label := range labels {
		if !used[label] {
			used[label] = true
			continue
		}
		n := next[label]
		if n == 0 {
			n = 2
		}
		candidate := fmt.Sprintf("%s_%d", label, n)
		for reserved[candidate] || used[candidate] {
			n++
			candidate = fmt.Sprintf("%s_%d", label, n)
		}
		next[label] = n + 1
		used[candidate] = true
		labels[i] = candidate
	}
	return labels
}

func isBlankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
