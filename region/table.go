package region

import "fmt"

// Row is one line of the result table. Rank is 1-based by area; the
// TOTAL row carries rank 0.
type Row struct {
	Rank       int
	Color      string // "#RRGGBB", or "TOTAL"
	Pixels     int64
	Area       float64 // km²
	Population int64
}

// Table is the ranked per-region summary of one estimate run. Rows are
// sorted by area descending; equal areas keep ascending color-key order.
// Total is the synthetic final row.
type Table struct {
	Rows          []Row
	Total         Row
	HasPopulation bool
}

// HexColor formats a packed 24-bit color key as #RRGGBB.
func HexColor(key uint32) string {
	return fmt.Sprintf("#%02X%02X%02X", key>>16&0xFF, key>>8&0xFF, key&0xFF)
}
