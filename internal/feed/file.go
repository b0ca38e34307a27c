package feed

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ParseFile picks a reader from the file extension.
func ParseFile(name string, r io.Reader, opts ParseOptions) (*Table, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt":
		return Parse(r, opts)
	case ".tsv":
		if opts.Delimiter == 0 || opts.Delimiter == ',' {
			opts.Delimiter = '\t'
		}
		return Parse(r, opts)
	case ".xlsx":
		return parseWorkbook(r, opts)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
}

// parseWorkbook reads the first sheet of an xlsx workbook.
func parseWorkbook(r io.Reader, opts ParseOptions) (*Table, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer wb.Close()

	sheet := wb.GetSheetName(0)
	if sheet == "" {
		return nil, ErrMissingHeader
	}
	records, err := wb.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	table := &Table{}
	for i, record := range records {
		if i == 0 && opts.Header {
			table.Header = headerLabels(record)
			continue
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
