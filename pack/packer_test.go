package pack

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/quintel/etm/scenario"
)

func TestMainFrame(t *testing.T) {
	s := &scenario.Scenario{
		ID:       42,
		AreaCode: "nl",
		EndYear:  2050,
		Title:    "Mine",
		URL:      "https://2024-01.engine.energytransitionmodel.com/api/v3/scenarios/42",
		Metadata: map[string]any{"description": "a test", "owner": "me"},
	}

	p := New()
	p.Add(s)
	frame := p.MainFrame()

	require.Equal(t, SheetMain, frame.Name)
	require.Len(t, frame.Columns, 1)
	assert.Equal(t, "Mine", frame.Columns[0].Label)

	byField := make(map[string]any, len(frame.Index))
	for i, field := range frame.Index {
		byField[field] = frame.Cell(i, 0)
	}
	assert.Equal(t, 42, byField["scenario_id"])
	assert.Equal(t, "nl", byField["area_code"])
	assert.Equal(t, 2050, byField["end_year"])
	assert.Equal(t, "2024-01", byField["version"])
	assert.Equal(t, "a test", byField["description"])
	assert.Equal(t, "me", byField["owner"])
}

func TestPackerAddDeduplicates(t *testing.T) {
	s := &scenario.Scenario{ID: 1}
	p := New()
	p.Add(s, s)
	p.Add(&scenario.Scenario{ID: 1})
	assert.Equal(t, 1, p.Len())
}

func TestPackerShortNames(t *testing.T) {
	s := &scenario.Scenario{ID: 7, Title: "Long Title"}
	p := New()
	p.Add(s)
	p.SetShortName(7, "short")

	assert.Equal(t, "short", p.labelFor(s))
	assert.Same(t, s, p.resolve("short"))
	assert.Same(t, s, p.resolve("Long Title"))
	assert.Same(t, s, p.resolve("7"))
	assert.Nil(t, p.resolve("unknown"))
}

func TestGqueriesFrame(t *testing.T) {
	a := &scenario.Scenario{ID: 1}
	b := &scenario.Scenario{ID: 2}
	a.AddQueries("co2_emissions", "total_costs")
	b.AddQueries("total_costs", "renewability")

	p := New()
	p.Add(a, b)
	frame := p.GqueriesFrame()

	assert.Equal(t, []string{"co2_emissions", "total_costs", "renewability"}, frame.Index)
}

func TestWriteWorkbookRoundTrip(t *testing.T) {
	frame := &Frame{Name: "DATA", IndexName: "input", Index: []string{"a", "b"}}
	frame.AddColumn("", "unit", []any{"%", "euro"})
	frame.AddColumn("scen", "user", []any{1.5, nil})

	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, WriteWorkbook(path, []*Frame{frame}))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("DATA")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 4)

	// Grouped frame: group row, then label row, then data.
	assert.Equal(t, "scen", rows[0][2])
	assert.Equal(t, []string{"input", "unit", "user"}, rows[1][:3])
	assert.Equal(t, "a", rows[2][0])
	assert.Equal(t, "1.5", rows[2][2])
}

func TestSuffixPath(t *testing.T) {
	assert.Equal(t, "out_1.xlsx", suffixPath("out.xlsx", "_1"))
	assert.Equal(t, "dir.d/out_1", suffixPath("dir.d/out_1", ""))
	assert.Equal(t, "noext_1", suffixPath("noext", "_1"))
}
