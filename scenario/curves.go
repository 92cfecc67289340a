package scenario

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/quintel/etm/service"
)

// CustomCurve is one attachable profile, such as a weather or price curve.
type CustomCurve struct {
	Key       string
	Type      string
	Name      string
	Attached  bool
	Overrides []string
}

// CustomCurves lists every curve the engine accepts for a scenario,
// attached or not.
type CustomCurves struct {
	list []*CustomCurve

	Warnings
}

func newCustomCurves(data []service.CustomCurveData) *CustomCurves {
	out := &CustomCurves{}
	for _, d := range data {
		if d.Key == "" {
			out.Add("curves", "skipped curve without key")
			continue
		}
		out.list = append(out.list, &CustomCurve{
			Key:       d.Key,
			Type:      d.Type,
			Name:      d.Name,
			Attached:  d.Attached,
			Overrides: d.Overrides,
		})
	}
	sort.Slice(out.list, func(i, j int) bool { return out.list[i].Key < out.list[j].Key })
	return out
}

// Get returns the curve with the given key, or nil.
func (cc *CustomCurves) Get(key string) *CustomCurve {
	for _, c := range cc.list {
		if c.Key == key {
			return c
		}
	}
	return nil
}

// Attached returns the keys of curves with an uploaded profile.
func (cc *CustomCurves) Attached() []string {
	var out []string
	for _, c := range cc.list {
		if c.Attached {
			out = append(out, c.Key)
		}
	}
	return out
}

// Keys returns every curve key in sorted order.
func (cc *CustomCurves) Keys() []string {
	out := make([]string, len(cc.list))
	for i, c := range cc.list {
		out[i] = c.Key
	}
	return out
}

// Each calls fn for every curve in key order.
func (cc *CustomCurves) Each(fn func(*CustomCurve)) {
	for _, c := range cc.list {
		fn(c)
	}
}

func (cc *CustomCurves) Len() int {
	return len(cc.list)
}

// Series is a single custom curve profile: one value per hour of the year.
type Series []float64

// ParseSeriesCSV reads a headerless single-column CSV into a Series.
// Blank lines are skipped.
func ParseSeriesCSV(data []byte) (Series, error) {
	return parseSeries(data)
}

func parseSeries(data []byte) (Series, error) {
	var out Series
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line == "" {
			continue
		}
		f, err := strconv.ParseFloat(line, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		out = append(out, f)
	}
	return out, nil
}

// CSV renders the series as a headerless single-column CSV, the shape the
// engine expects on upload.
func (s Series) CSV() []byte {
	var buf bytes.Buffer
	for _, v := range s {
		buf.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// Table is a parsed output curve: an index column plus named value columns.
type Table struct {
	Index   []string
	Columns []string
	Values  [][]float64 // Values[row][col]
}

// parseTable reads an output curve CSV. The first column is the index;
// rows where every value cell is empty are dropped.
func parseTable(data []byte) (*Table, error) {
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing curve csv: %w", err)
	}
	if len(records) < 1 || len(records[0]) < 2 {
		return nil, fmt.Errorf("curve csv has no value columns")
	}

	t := &Table{Columns: records[0][1:]}
	for _, row := range records[1:] {
		if len(row) < 2 {
			continue
		}
		empty := true
		values := make([]float64, len(row)-1)
		for i, cell := range row[1:] {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			empty = false
			f, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("row %q column %s: %w", row[0], t.Columns[i], err)
			}
			values[i] = f
		}
		if empty {
			continue
		}
		t.Index = append(t.Index, row[0])
		t.Values = append(t.Values, values)
	}
	return t, nil
}

// Rows returns the number of data rows in the table.
func (t *Table) Rows() int {
	return len(t.Index)
}

// Column returns the values of one named column, or nil when unknown.
func (t *Table) Column(name string) []float64 {
	for i, col := range t.Columns {
		if col != name {
			continue
		}
		out := make([]float64, len(t.Values))
		for row := range t.Values {
			out[row] = t.Values[row][i]
		}
		return out
	}
	return nil
}
