package pack

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/quintel/etm/scenario"
)

// Sheet names used in scenario workbooks.
const (
	SheetMain          = "MAIN"
	SheetParameters    = "PARAMETERS"
	SheetGqueries      = "GQUERIES"
	SheetGqueryResults = "GQUERIES_RESULTS"
	SheetSortables     = "SORTABLES"
	SheetCustomCurves  = "CUSTOM_CURVES"
)

// mainFields is the fixed row order of the MAIN sheet; metadata keys follow.
var mainFields = []string{
	"title", "scenario_id", "template", "area_code", "start_year", "end_year",
	"keep_compatible", "private", "source", "url", "version",
	"created_at", "updated_at", "description",
}

// Packer assembles one or more scenarios into frames for export. Scenarios
// keep insertion order; columns are labelled by short name when one is set,
// by identifier otherwise.
type Packer struct {
	scenarios  []*scenario.Scenario
	shortNames map[int]string
}

func New() *Packer {
	return &Packer{shortNames: make(map[int]string)}
}

// Add appends scenarios to the pack, skipping ones already added.
func (p *Packer) Add(scenarios ...*scenario.Scenario) {
	for _, s := range scenarios {
		if p.find(s.ID) == nil {
			p.scenarios = append(p.scenarios, s)
		}
	}
}

// SetShortName labels a scenario's columns with a short name instead of its
// identifier.
func (p *Packer) SetShortName(scenarioID int, name string) {
	p.shortNames[scenarioID] = name
}

// Scenarios returns the packed scenarios in insertion order.
func (p *Packer) Scenarios() []*scenario.Scenario {
	out := make([]*scenario.Scenario, len(p.scenarios))
	copy(out, p.scenarios)
	return out
}

func (p *Packer) Len() int {
	return len(p.scenarios)
}

func (p *Packer) find(id int) *scenario.Scenario {
	for _, s := range p.scenarios {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// labelFor resolves the column label of a scenario.
func (p *Packer) labelFor(s *scenario.Scenario) string {
	if name := p.shortNames[s.ID]; name != "" {
		return name
	}
	return s.Identifier()
}

// resolve finds a scenario by short name, title or id.
func (p *Packer) resolve(label string) *scenario.Scenario {
	for _, s := range p.scenarios {
		if p.shortNames[s.ID] == label {
			return s
		}
	}
	for _, s := range p.scenarios {
		if s.Identifier() == label {
			return s
		}
	}
	if id, err := strconv.Atoi(label); err == nil {
		return p.find(id)
	}
	return nil
}

// MainFrame describes every scenario, one column each: identity, years,
// flags, version and flattened metadata.
func (p *Packer) MainFrame() *Frame {
	rows := append([]string{}, mainFields...)
	seen := make(map[string]bool, len(rows))
	for _, field := range rows {
		seen[field] = true
	}
	for _, s := range p.scenarios {
		keys := make([]string, 0, len(s.Metadata))
		for k := range s.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if !seen[k] {
				seen[k] = true
				rows = append(rows, k)
			}
		}
	}

	frame := &Frame{Name: SheetMain, IndexName: "field", Index: rows}
	for _, s := range p.scenarios {
		cells := make([]any, len(rows))
		for i, field := range rows {
			cells[i] = mainValue(s, field)
		}
		frame.AddColumn("", p.labelFor(s), cells)
	}
	return frame
}

func mainValue(s *scenario.Scenario, field string) any {
	switch field {
	case "title":
		return s.Title
	case "scenario_id":
		return s.ID
	case "template":
		if s.Template != nil {
			return *s.Template
		}
		return nil
	case "area_code":
		return s.AreaCode
	case "start_year":
		if s.StartYear != nil {
			return *s.StartYear
		}
		return nil
	case "end_year":
		return s.EndYear
	case "keep_compatible":
		return s.KeepCompatible
	case "private":
		return s.Private
	case "source":
		return s.Source
	case "url":
		return s.URL
	case "version":
		return s.Version()
	case "created_at":
		return formatTime(s.CreatedAt)
	case "updated_at":
		return formatTime(s.UpdatedAt)
	case "description":
		if v, ok := s.Metadata["description"]; ok {
			return v
		}
		return nil
	default:
		if v, ok := s.Metadata[field]; ok {
			return v
		}
		return nil
	}
}

func formatTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

// ParametersFrame lists every input across the pack with its unit and each
// scenario's user value. Rows are the union of input keys.
func (p *Packer) ParametersFrame(ctx context.Context) (*Frame, error) {
	type scenarioInputs struct {
		s      *scenario.Scenario
		inputs *scenario.Inputs
	}

	all := make([]scenarioInputs, 0, len(p.scenarios))
	keySet := make(map[string]bool)
	var keys []string
	units := make(map[string]string)

	for _, s := range p.scenarios {
		inputs, err := s.Inputs(ctx)
		if err != nil {
			return nil, fmt.Errorf("inputs for %s: %w", s.Identifier(), err)
		}
		all = append(all, scenarioInputs{s, inputs})
		for _, key := range inputs.Keys() {
			if !keySet[key] {
				keySet[key] = true
				keys = append(keys, key)
			}
			if units[key] == "" {
				units[key] = inputs.Get(key).Unit
			}
		}
	}
	sort.Strings(keys)

	frame := &Frame{Name: SheetParameters, IndexName: "input", Index: keys}

	unitCells := make([]any, len(keys))
	for i, key := range keys {
		unitCells[i] = units[key]
	}
	frame.AddColumn("", "unit", unitCells)

	for _, si := range all {
		cells := make([]any, len(keys))
		for i, key := range keys {
			if in := si.inputs.Get(key); in != nil && in.IsSet() {
				cells[i] = in.User
			}
		}
		frame.AddColumn(p.labelFor(si.s), "user", cells)
	}
	return frame, nil
}

// GqueriesFrame lists the union of requested gquery keys.
func (p *Packer) GqueriesFrame() *Frame {
	seen := make(map[string]bool)
	var keys []string
	for _, s := range p.scenarios {
		for _, key := range s.Queries().Keys() {
			if !seen[key] {
				seen[key] = true
				keys = append(keys, key)
			}
		}
	}

	frame := &Frame{Name: SheetGqueries, IndexName: "gquery", Index: keys}
	cells := make([]any, len(keys))
	for i := range cells {
		cells[i] = ""
	}
	frame.AddColumn("", "notes", cells)
	return frame
}

// GqueryResultsFrame holds executed query answers, three columns per
// scenario. Queries are executed first when results are missing.
func (p *Packer) GqueryResultsFrame(ctx context.Context) (*Frame, error) {
	frame := p.GqueriesFrame()
	frame.Name = SheetGqueryResults
	frame.Columns = nil

	for _, s := range p.scenarios {
		if s.Queries().Len() == 0 {
			continue
		}
		if !s.Queries().Ready() {
			if err := s.ExecuteQueries(ctx); err != nil {
				return nil, fmt.Errorf("queries for %s: %w", s.Identifier(), err)
			}
		}

		present := make([]any, len(frame.Index))
		future := make([]any, len(frame.Index))
		unit := make([]any, len(frame.Index))
		for i, key := range frame.Index {
			if r, ok := s.Queries().Result(key); ok {
				present[i] = r.Present
				future[i] = r.Future
				unit[i] = r.Unit
			}
		}
		label := p.labelFor(s)
		frame.AddColumn(label, "present", present)
		frame.AddColumn(label, "future", future)
		frame.AddColumn(label, "unit", unit)
	}
	return frame, nil
}

// SortablesFrame holds each scenario's orders, one column per flattened
// sortable name, rows being list positions.
func (p *Packer) SortablesFrame(ctx context.Context) (*Frame, error) {
	type column struct {
		group string
		label string
		order []string
	}

	var columns []column
	maxLen := 0
	for _, s := range p.scenarios {
		sortables, err := s.Sortables(ctx)
		if err != nil {
			return nil, fmt.Errorf("sortables for %s: %w", s.Identifier(), err)
		}
		label := p.labelFor(s)
		sortables.Each(func(sb *scenario.Sortable) {
			columns = append(columns, column{group: label, label: sb.Name(), order: sb.Order})
			if len(sb.Order) > maxLen {
				maxLen = len(sb.Order)
			}
		})
	}

	frame := &Frame{Name: SheetSortables, IndexName: "position"}
	for i := 0; i < maxLen; i++ {
		frame.Index = append(frame.Index, strconv.Itoa(i+1))
	}
	for _, col := range columns {
		cells := make([]any, maxLen)
		for i, v := range col.order {
			cells[i] = v
		}
		frame.AddColumn(col.group, col.label, cells)
	}
	return frame, nil
}

// CustomCurvesFrame holds every attached custom curve profile, one column
// per curve, rows being hours.
func (p *Packer) CustomCurvesFrame(ctx context.Context) (*Frame, error) {
	type column struct {
		group  string
		label  string
		series scenario.Series
	}

	var columns []column
	maxLen := 0
	for _, s := range p.scenarios {
		curves, err := s.CustomCurves(ctx)
		if err != nil {
			return nil, fmt.Errorf("custom curves for %s: %w", s.Identifier(), err)
		}
		label := p.labelFor(s)
		for _, key := range curves.Attached() {
			series, err := s.CustomCurveSeries(ctx, key)
			if err != nil {
				return nil, fmt.Errorf("curve %s for %s: %w", key, s.Identifier(), err)
			}
			columns = append(columns, column{group: label, label: key, series: series})
			if len(series) > maxLen {
				maxLen = len(series)
			}
		}
	}

	frame := &Frame{Name: SheetCustomCurves, IndexName: "hour"}
	for i := 0; i < maxLen; i++ {
		frame.Index = append(frame.Index, strconv.Itoa(i))
	}
	for _, col := range columns {
		cells := make([]any, maxLen)
		for i, v := range col.series {
			cells[i] = v
		}
		frame.AddColumn(col.group, col.label, cells)
	}
	return frame, nil
}

// CarrierFrame bundles one carrier's output curves for a scenario, column
// groups being curve keys.
func CarrierFrame(ctx context.Context, s *scenario.Scenario, carrier string) (*Frame, error) {
	tables, err := s.OutputCurvesByCarrier(ctx, carrier)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(tables))
	for key := range tables {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	frame := &Frame{Name: carrier, IndexName: "hour"}
	maxRows := 0
	for _, key := range keys {
		if tables[key].Rows() > maxRows {
			maxRows = tables[key].Rows()
		}
	}
	for i := 0; i < maxRows; i++ {
		frame.Index = append(frame.Index, strconv.Itoa(i))
	}

	for _, key := range keys {
		table := tables[key]
		for c, colName := range table.Columns {
			cells := make([]any, maxRows)
			for r := range table.Values {
				cells[r] = table.Values[r][c]
			}
			frame.AddColumn(key, colName, cells)
		}
	}
	return frame, nil
}
