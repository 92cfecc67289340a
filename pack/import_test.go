package pack

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitGrouped(t *testing.T) {
	rows := [][]string{
		{"", "scen_a", "scen_a", "", "scen_b"},
		{"input", "user", "unit", "notes", "user"},
		{"solar_share", "40", "%", "", "55"},
	}

	cols, data := splitGrouped(rows)

	assert.Equal(t, map[int]groupedColumn{
		1: {group: "scen_a", label: "user"},
		2: {group: "scen_a", label: "unit"},
		4: {group: "scen_b", label: "user"},
	}, cols)
	assert.Equal(t, [][]string{{"solar_share", "40", "%", "", "55"}}, data)
}

func TestSplitGrouped_TooShort(t *testing.T) {
	cols, data := splitGrouped([][]string{{"only", "one"}})
	assert.Nil(t, cols)
	assert.Nil(t, data)
}

func TestCellValue(t *testing.T) {
	assert.Equal(t, 42.5, cellValue(" 42.5 "))
	assert.Equal(t, 1.0, cellValue("TRUE"))
	assert.Equal(t, 0.0, cellValue("false"))
	assert.Equal(t, "fuel_cell", cellValue("fuel_cell"))
	assert.Equal(t, "reset", cellValue("reset"))
}
