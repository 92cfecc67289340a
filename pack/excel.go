package pack

import (
	"context"
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"

	"github.com/quintel/etm/scenario"
)

// ExportOptions select which sheets go into a scenario workbook. The MAIN
// sheet is always written.
type ExportOptions struct {
	Inputs       bool
	Sortables    bool
	CustomCurves bool
	Gqueries     bool
}

// AllSheets enables every optional sheet.
func AllSheets() ExportOptions {
	return ExportOptions{Inputs: true, Sortables: true, CustomCurves: true, Gqueries: true}
}

// ToExcel writes the pack to a workbook at path.
func (p *Packer) ToExcel(ctx context.Context, path string, opts ExportOptions) error {
	if p.Len() == 0 {
		return fmt.Errorf("no scenarios to export")
	}

	frames := []*Frame{p.MainFrame()}

	if opts.Inputs {
		frame, err := p.ParametersFrame(ctx)
		if err != nil {
			return err
		}
		frames = append(frames, frame)
	}
	if opts.Gqueries {
		if gq := p.GqueriesFrame(); !gq.Empty() {
			frames = append(frames, gq)
			results, err := p.GqueryResultsFrame(ctx)
			if err != nil {
				return err
			}
			frames = append(frames, results)
		}
	}
	if opts.Sortables {
		frame, err := p.SortablesFrame(ctx)
		if err != nil {
			return err
		}
		if !frame.Empty() {
			frames = append(frames, frame)
		}
	}
	if opts.CustomCurves {
		frame, err := p.CustomCurvesFrame(ctx)
		if err != nil {
			return err
		}
		if !frame.Empty() {
			frames = append(frames, frame)
		}
	}

	return WriteWorkbook(path, frames)
}

// WriteOutputCurves exports output curves to a separate workbook, one sheet
// per carrier. With multiple scenarios each scenario gets its own workbook,
// suffixed with its id; carriers defaults to every known carrier.
func (p *Packer) WriteOutputCurves(ctx context.Context, path string, carriers []string) error {
	if p.Len() == 0 {
		return fmt.Errorf("no scenarios to export")
	}
	if len(carriers) == 0 {
		carriers = scenario.Carriers()
	}

	for _, s := range p.scenarios {
		var frames []*Frame
		for _, carrier := range carriers {
			frame, err := CarrierFrame(ctx, s, carrier)
			if err != nil {
				return err
			}
			if !frame.Empty() {
				frames = append(frames, frame)
			}
		}
		if len(frames) == 0 {
			continue
		}

		target := path
		if p.Len() > 1 {
			target = suffixPath(path, fmt.Sprintf("_%d", s.ID))
		}
		if err := WriteWorkbook(target, frames); err != nil {
			return err
		}
	}
	return nil
}

// WriteWorkbook writes frames as sheets: bold frozen headers, NaN rendered
// as #N/A.
func WriteWorkbook(path string, frames []*Frame) error {
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	for i, frame := range frames {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), frame.Name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(frame.Name); err != nil {
			return err
		}
		if err := writeSheet(f, frame, bold); err != nil {
			return fmt.Errorf("writing sheet %s: %w", frame.Name, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, frame *Frame, boldStyle int) error {
	headerRows := 1
	row := 1

	if frame.Grouped() {
		headerRows = 2
		for col, c := range frame.Columns {
			if err := setCell(f, frame.Name, col+2, row, c.Group); err != nil {
				return err
			}
		}
		row++
	}

	if err := setCell(f, frame.Name, 1, row, frame.IndexName); err != nil {
		return err
	}
	for col, c := range frame.Columns {
		if err := setCell(f, frame.Name, col+2, row, c.Label); err != nil {
			return err
		}
	}
	row++

	for r := range frame.Index {
		if err := setCell(f, frame.Name, 1, row+r, frame.Index[r]); err != nil {
			return err
		}
		for col := range frame.Columns {
			if err := setCell(f, frame.Name, col+2, row+r, frame.Cell(r, col)); err != nil {
				return err
			}
		}
	}

	endHeader, err := excelize.CoordinatesToCellName(len(frame.Columns)+1, headerRows)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(frame.Name, "A1", endHeader, boldStyle); err != nil {
		return err
	}

	topLeft, err := excelize.CoordinatesToCellName(2, headerRows+1)
	if err != nil {
		return err
	}
	return f.SetPanes(frame.Name, &excelize.Panes{
		Freeze:      true,
		XSplit:      1,
		YSplit:      headerRows,
		TopLeftCell: topLeft,
		ActivePane:  "bottomRight",
	})
}

func setCell(f *excelize.File, sheet string, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if v, ok := value.(float64); ok && math.IsNaN(v) {
		return f.SetCellStr(sheet, cell, "#N/A")
	}
	return f.SetCellValue(sheet, cell, value)
}

// suffixPath inserts a suffix before the file extension.
func suffixPath(path, suffix string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '.' {
			return path[:i] + suffix + path[i:]
		}
		if path[i] == '/' || path[i] == '\\' {
			break
		}
	}
	return path + suffix
}
