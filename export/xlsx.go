package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"mapsizes/region"
)

// SheetName is the single sheet the XLSX sink writes.
const SheetName = "Map Sizes"

// WriteXLSX writes t as a one-sheet workbook: header row, one row per
// region in table order, TOTAL last. The rank cell of the TOTAL row is
// left empty.
func WriteXLSX(w io.Writer, t *region.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("could not name sheet: %w", err)
	}

	setRow := func(idx int, values []any) error {
		cell, err := excelize.CoordinatesToCellName(1, idx)
		if err != nil {
			return err
		}
		return f.SetSheetRow(SheetName, cell, &values)
	}

	hdr := header(t)
	cells := make([]any, len(hdr))
	for i, h := range hdr {
		cells[i] = h
	}
	if err := setRow(1, cells); err != nil {
		return fmt.Errorf("could not write header: %w", err)
	}

	idx := 1
	for _, r := range t.Rows {
		idx++
		if err := setRow(idx, rowCells(t, r)); err != nil {
			return fmt.Errorf("could not write row %q: %w", r.Color, err)
		}
	}
	if err := setRow(idx+1, rowCells(t, t.Total)); err != nil {
		return fmt.Errorf("could not write total row: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("could not write workbook: %w", err)
	}
	return nil
}

func rowCells(t *region.Table, r region.Row) []any {
	var rank any = ""
	if r.Rank > 0 {
		rank = r.Rank
	}
	cells := []any{rank, r.Color, r.Pixels, r.Area}
	if t.HasPopulation {
		cells = append(cells, r.Population)
	}
	return cells
}
