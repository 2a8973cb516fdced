package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"mapsizes/region"
)

func header(t *region.Table) []string {
	h := []string{"#", "Hex Color", "Pixel Count", "Area (km²)"}
	if t.HasPopulation {
		h = append(h, "Population")
	}
	return h
}

func record(t *region.Table, r region.Row) []string {
	rank := ""
	if r.Rank > 0 {
		rank = strconv.Itoa(r.Rank)
	}
	rec := []string{
		rank,
		r.Color,
		strconv.FormatInt(r.Pixels, 10),
		strconv.FormatFloat(r.Area, 'f', -1, 64),
	}
	if t.HasPopulation {
		rec = append(rec, strconv.FormatInt(r.Population, 10))
	}
	return rec
}

// WriteCSV writes t with a header row, one record per region in table
// order and TOTAL as the final record.
func WriteCSV(w io.Writer, t *region.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header(t)); err != nil {
		return fmt.Errorf("could not write header: %w", err)
	}
	for _, r := range t.Rows {
		if err := cw.Write(record(t, r)); err != nil {
			return fmt.Errorf("could not write row %q: %w", r.Color, err)
		}
	}
	if err := cw.Write(record(t, t.Total)); err != nil {
		return fmt.Errorf("could not write total row: %w", err)
	}

	cw.Flush()
	return cw.Error()
}
