package pack

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/quintel/etm/client"
	"github.com/quintel/etm/config"
	"github.com/quintel/etm/scenario"
)

// Attributes accepted on the MAIN sheet when creating scenarios.
var creatableMainFields = []string{
	"area_code", "end_year", "title", "source", "template", "start_year",
	"keep_compatible", "private",
}

// FromExcel reads a scenario workbook and replays it against the engine:
// MAIN loads or creates each scenario column, PARAMETERS sets user values,
// GQUERIES registers queries, SORTABLES applies orders and CUSTOM_CURVES
// uploads profiles. Missing sheets are simply skipped.
func FromExcel(ctx context.Context, c *client.Client, settings config.Settings, path string) (*Packer, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	p := New()
	if err := importMain(ctx, f, c, settings, p); err != nil {
		return nil, err
	}
	if err := importParameters(ctx, f, p); err != nil {
		return nil, err
	}
	if err := importGqueries(f, p); err != nil {
		return nil, err
	}
	if err := importSortables(ctx, f, p); err != nil {
		return nil, err
	}
	if err := importCustomCurves(ctx, f, p); err != nil {
		return nil, err
	}
	return p, nil
}

func sheetRows(f *excelize.File, name string) ([][]string, bool) {
	for _, sheet := range f.GetSheetList() {
		if sheet == name {
			rows, err := f.GetRows(name)
			if err != nil || len(rows) == 0 {
				return nil, false
			}
			return rows, true
		}
	}
	return nil, false
}

func importMain(ctx context.Context, f *excelize.File, c *client.Client, settings config.Settings, p *Packer) error {
	rows, ok := sheetRows(f, SheetMain)
	if !ok {
		return fmt.Errorf("workbook has no %s sheet", SheetMain)
	}
	header := rows[0]
	if len(header) < 2 {
		return fmt.Errorf("%s sheet has no scenario columns", SheetMain)
	}

	// field name -> row values
	fields := make(map[string][]string, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) == 0 || row[0] == "" {
			continue
		}
		fields[row[0]] = row
	}

	fieldValue := func(field string, col int) string {
		row, ok := fields[field]
		if !ok || col >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[col])
	}

	for col := 1; col < len(header); col++ {
		label := strings.TrimSpace(header[col])
		if label == "" {
			continue
		}

		var s *scenario.Scenario
		if idStr := fieldValue("scenario_id", col); idStr != "" {
			id, err := strconv.Atoi(idStr)
			if err != nil {
				return fmt.Errorf("column %q: bad scenario_id %q", label, idStr)
			}
			s, err = scenario.Load(ctx, c, settings, id)
			if err != nil {
				return fmt.Errorf("column %q: %w", label, err)
			}
		} else {
			attrs := make(map[string]any)
			for _, field := range creatableMainFields {
				v := fieldValue(field, col)
				if v == "" {
					continue
				}
				if field == "keep_compatible" || field == "private" {
					if b, err := strconv.ParseBool(strings.ToLower(v)); err == nil {
						attrs[field] = b
					}
					continue
				}
				attrs[field] = cellValue(v)
			}
			var err error
			s, err = scenario.Create(ctx, c, settings, attrs)
			if err != nil {
				return fmt.Errorf("column %q: %w", label, err)
			}
		}

		p.Add(s)
		p.SetShortName(s.ID, label)
	}
	return nil
}

func importParameters(ctx context.Context, f *excelize.File, p *Packer) error {
	rows, ok := sheetRows(f, SheetParameters)
	if !ok {
		return nil
	}
	groups, data := splitGrouped(rows)

	updates := make(map[*scenario.Scenario]map[string]any)
	for col, group := range groups {
		s := p.resolve(group.group)
		if s == nil || !strings.EqualFold(group.label, "user") {
			continue
		}
		for _, row := range data {
			if len(row) <= col || row[0] == "" || strings.TrimSpace(row[col]) == "" {
				continue
			}
			if updates[s] == nil {
				updates[s] = make(map[string]any)
			}
			updates[s][row[0]] = cellValue(row[col])
		}
	}

	for s, values := range updates {
		if err := s.UpdateUserValues(ctx, values); err != nil {
			return fmt.Errorf("applying parameters to %s: %w", s.Identifier(), err)
		}
	}
	return nil
}

func importGqueries(f *excelize.File, p *Packer) error {
	rows, ok := sheetRows(f, SheetGqueries)
	if !ok {
		return nil
	}
	var keys []string
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		if key := strings.TrimSpace(row[0]); key != "" {
			keys = append(keys, key)
		}
	}
	for _, s := range p.Scenarios() {
		s.AddQueries(keys...)
	}
	return nil
}

func importSortables(ctx context.Context, f *excelize.File, p *Packer) error {
	rows, ok := sheetRows(f, SheetSortables)
	if !ok {
		return nil
	}
	groups, data := splitGrouped(rows)

	orders := make(map[*scenario.Scenario]map[string][]string)
	for col, group := range groups {
		s := p.resolve(group.group)
		if s == nil || group.label == "" {
			continue
		}
		var order []string
		for _, row := range data {
			if len(row) <= col {
				continue
			}
			if v := strings.TrimSpace(row[col]); v != "" {
				order = append(order, v)
			}
		}
		if order == nil {
			continue
		}
		if orders[s] == nil {
			orders[s] = make(map[string][]string)
		}
		orders[s][group.label] = order
	}

	for s, byName := range orders {
		if err := s.UpdateSortables(ctx, byName); err != nil {
			return fmt.Errorf("applying sortables to %s: %w", s.Identifier(), err)
		}
	}
	return nil
}

func importCustomCurves(ctx context.Context, f *excelize.File, p *Packer) error {
	rows, ok := sheetRows(f, SheetCustomCurves)
	if !ok {
		return nil
	}
	groups, data := splitGrouped(rows)

	for col, group := range groups {
		s := p.resolve(group.group)
		if s == nil || group.label == "" {
			continue
		}
		var series scenario.Series
		for _, row := range data {
			if len(row) <= col || strings.TrimSpace(row[col]) == "" {
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(row[col]), 64)
			if err != nil {
				return fmt.Errorf("curve %s for %s: bad value %q", group.label, group.group, row[col])
			}
			series = append(series, v)
		}
		if series == nil {
			continue
		}
		if err := s.UploadCustomCurve(ctx, group.label, series); err != nil {
			return err
		}
	}
	return nil
}

type groupedColumn struct {
	group string
	label string
}

// splitGrouped interprets a sheet with two header rows. The returned map is
// keyed by column position; data holds the remaining rows.
func splitGrouped(rows [][]string) (map[int]groupedColumn, [][]string) {
	if len(rows) < 2 {
		return nil, nil
	}
	groupRow, labelRow := rows[0], rows[1]

	out := make(map[int]groupedColumn)
	width := len(groupRow)
	if len(labelRow) > width {
		width = len(labelRow)
	}
	for col := 1; col < width; col++ {
		gc := groupedColumn{}
		if col < len(groupRow) {
			gc.group = strings.TrimSpace(groupRow[col])
		}
		if col < len(labelRow) {
			gc.label = strings.TrimSpace(labelRow[col])
		}
		if gc.group == "" {
			continue
		}
		out[col] = gc
	}
	return out, rows[2:]
}

// cellValue turns a sheet cell into a typed update value: numbers become
// floats, TRUE/FALSE become 1 and 0, everything else stays a string.
func cellValue(v string) any {
	v = strings.TrimSpace(v)
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	switch strings.ToUpper(v) {
	case "TRUE":
		return 1.0
	case "FALSE":
		return 0.0
	}
	return v
}
