// Package pack assembles scenario data into tabular frames and moves them
// in and out of Excel workbooks and CSV files.
package pack

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Column is one value column of a Frame. Group carries the scenario label
// when a frame spans multiple scenarios; single-scenario frames leave it
// empty and render one header row.
type Column struct {
	Group string
	Label string
	Cells []any
}

// Frame is an ordered table: an index column plus named value columns.
// It is the unit of transfer between scenarios and workbook sheets.
type Frame struct {
	Name      string
	IndexName string
	Index     []string
	Columns   []Column
}

// Grouped reports whether any column carries a group header, meaning the
// frame renders with two header rows.
func (f *Frame) Grouped() bool {
	for _, c := range f.Columns {
		if c.Group != "" {
			return true
		}
	}
	return false
}

// Rows returns the number of data rows.
func (f *Frame) Rows() int {
	return len(f.Index)
}

// Empty reports whether the frame has no data rows or no columns.
func (f *Frame) Empty() bool {
	return len(f.Index) == 0 || len(f.Columns) == 0
}

// Cell returns the value at a row for a column, or nil when the column is
// shorter than the frame.
func (f *Frame) Cell(row, col int) any {
	if col >= len(f.Columns) || row >= len(f.Columns[col].Cells) {
		return nil
	}
	return f.Columns[col].Cells[row]
}

// AddColumn appends a value column. Shorter columns read as nil cells.
func (f *Frame) AddColumn(group, label string, cells []any) {
	f.Columns = append(f.Columns, Column{Group: group, Label: label, Cells: cells})
}

// CSVOptions control the rendering of frames to CSV.
type CSVOptions struct {
	Separator        rune   // field separator, ',' when zero
	DecimalSeparator string // decimal mark for floats, "." when empty
}

// WriteCSV renders the frame. Grouped frames emit two header rows, the
// group row first.
func (f *Frame) WriteCSV(w io.Writer, opts CSVOptions) error {
	cw := csv.NewWriter(w)
	if opts.Separator != 0 {
		cw.Comma = opts.Separator
	}

	if f.Grouped() {
		row := make([]string, 0, len(f.Columns)+1)
		row = append(row, "")
		for _, c := range f.Columns {
			row = append(row, c.Group)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	header := make([]string, 0, len(f.Columns)+1)
	header = append(header, f.IndexName)
	for _, c := range f.Columns {
		header = append(header, c.Label)
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for row := range f.Index {
		record := make([]string, 0, len(f.Columns)+1)
		record = append(record, f.Index[row])
		for col := range f.Columns {
			record = append(record, formatCell(f.Cell(row, col), opts.DecimalSeparator))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// formatCell renders a cell value for CSV, applying the decimal separator
// to floats. NaN renders as an empty cell.
func formatCell(v any, decimal string) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case bool:
		return strconv.FormatBool(value)
	case int:
		return strconv.Itoa(value)
	case int64:
		return strconv.FormatInt(value, 10)
	case float64:
		if math.IsNaN(value) {
			return ""
		}
		s := strconv.FormatFloat(value, 'f', -1, 64)
		if decimal != "" && decimal != "." {
			s = strings.Replace(s, ".", decimal, 1)
		}
		return s
	default:
		return fmt.Sprintf("%v", value)
	}
}
