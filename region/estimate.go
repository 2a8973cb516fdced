package region

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"

	"mapsizes/parallel"
)

const (
	DefaultCircumference      = 40075 // km, Earth's equator
	DefaultLatMin             = -90
	DefaultLatMax             = 90
	DefaultLonMin             = -180
	DefaultLonMax             = 180
	DefaultPopulationPerPixel = 10000
)

// Config carries the scalar parameters of one estimate run.
type Config struct {
	EquatorCircumference float64 // km, must be positive
	LatMin, LatMax       float64 // degrees; row 0 sits at LatMax
	LonMin, LonMax       float64 // degrees; the span scales the circumference
	PopulationPerPixel   int64   // people per populated mask pixel
	Workers              int     // goroutines for the pixel pass; <1 means all CPUs

	// Progress, when set, is called once per discovered region with
	// (done, total). Purely observational, never affects the result.
	Progress func(done, total int)
}

func DefaultConfig() Config {
	return Config{
		EquatorCircumference: DefaultCircumference,
		LatMin:               DefaultLatMin,
		LatMax:               DefaultLatMax,
		LonMin:               DefaultLonMin,
		LonMax:               DefaultLonMax,
		PopulationPerPixel:   DefaultPopulationPerPixel,
	}
}

// MapCircumference is the equator circumference scaled down to the
// longitude span the map actually covers.
func (c Config) MapCircumference() float64 {
	return c.EquatorCircumference * (c.LonMax - c.LonMin) / 360
}

type accum struct {
	pixels    int64
	area      float64
	populated int64
}

// Estimate classifies grid pixels by exact color key, weights each row
// by the true spherical area of its pixels, and returns the per-region
// summary sorted by area descending with a TOTAL row. Pixels with the
// Background key carry no land and are excluded throughout.
//
// mask is the optional population mask: a pixel is populated iff all
// three of its channels are 255. A mask whose dimensions differ from the
// grid is resized with nearest-neighbor sampling, never rejected.
//
// Inputs are never mutated and identical inputs produce identical
// tables, including the order of equal-area rows.
func Estimate(grid, mask *Grid, cfg Config) (*Table, error) {
	switch {
	case grid == nil || grid.W <= 0 || grid.H <= 0:
		return nil, fmt.Errorf("%w: empty pixel grid", ErrInvalidInput)
	case !(cfg.EquatorCircumference > 0):
		return nil, fmt.Errorf("%w: equator circumference %v", ErrInvalidInput, cfg.EquatorCircumference)
	case !(cfg.LatMin < cfg.LatMax):
		return nil, fmt.Errorf("%w: latitude bounds [%v, %v]", ErrInvalidInput, cfg.LatMin, cfg.LatMax)
	case !(cfg.LonMin < cfg.LonMax):
		return nil, fmt.Errorf("%w: longitude bounds [%v, %v]", ErrInvalidInput, cfg.LonMin, cfg.LonMax)
	case mask != nil && cfg.PopulationPerPixel <= 0:
		return nil, fmt.Errorf("%w: population per pixel %d", ErrInvalidInput, cfg.PopulationPerPixel)
	}

	if mask != nil {
		mask = mask.ResizeNearest(grid.W, grid.H)
	}

	weights := rowWeights(cfg, grid.W, grid.H)

	// Each span of rows accumulates into its own map; spans merge in
	// order, so per-region float sums are reproducible across runs.
	pool := parallel.Start(cfg.Workers)
	spans := parallel.Spans(grid.H, pool.Size)
	parts := make([]map[uint32]*accum, len(spans))
	for i, span := range spans {
		pool.Do(func() {
			parts[i] = accumulateRows(grid, mask, weights, span[0], span[1])
		})
	}
	pool.Wait(true)

	merged := parts[0]
	for _, part := range parts[1:] {
		for key, a := range part {
			m := merged[key]
			if m == nil {
				merged[key] = a
				continue
			}
			m.pixels += a.pixels
			m.area += a.area
			m.populated += a.populated
		}
	}

	// Discovery order is ascending color key.
	keys := make([]uint32, 0, len(merged))
	for key := range merged {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	table := &Table{
		Rows:          make([]Row, 0, len(keys)),
		HasPopulation: mask != nil,
	}
	areas := make([]float64, 0, len(keys))
	var totalPixels, totalPopulation int64
	for i, key := range keys {
		a := merged[key]
		row := Row{Color: HexColor(key), Pixels: a.pixels, Area: a.area}
		if mask != nil {
			row.Population = a.populated * cfg.PopulationPerPixel
		}
		table.Rows = append(table.Rows, row)

		areas = append(areas, a.area)
		totalPixels += a.pixels
		totalPopulation += row.Population

		if cfg.Progress != nil {
			cfg.Progress(i+1, len(keys))
		}
	}

	slices.SortStableFunc(table.Rows, func(a, b Row) int {
		return cmp.Compare(b.Area, a.Area)
	})
	for i := range table.Rows {
		table.Rows[i].Rank = i + 1
	}

	table.Total = Row{Color: "TOTAL", Pixels: totalPixels, Area: floats.Sum(areas)}
	if mask != nil {
		table.Total.Population = totalPopulation
	}
	return table, nil
}

// rowWeights precomputes the spherical area of one pixel for every row:
// (mapCircumference/W)² shrunk by the cosine of the row's latitude,
// interpolated from LatMax at row 0 to LatMin at row H-1.
func rowWeights(cfg Config, w, h int) []float64 {
	perPixel := cfg.MapCircumference() / float64(w)
	equatorArea := perPixel * perPixel
	latSpan := cfg.LatMax - cfg.LatMin

	weights := make([]float64, h)
	for y := range weights {
		lat := cfg.LatMax - float64(y)/float64(h)*latSpan
		weights[y] = equatorArea * math.Cos(lat*math.Pi/180)
	}
	return weights
}

func accumulateRows(grid, mask *Grid, weights []float64, lo, hi int) map[uint32]*accum {
	acc := make(map[uint32]*accum)
	for y := lo; y < hi; y++ {
		weight := weights[y]
		row := grid.row(y)
		var mrow []uint32
		if mask != nil {
			mrow = mask.row(y)
		}

		for x, key := range row {
			if key == Background {
				continue
			}
			a := acc[key]
			if a == nil {
				a = &accum{}
				acc[key] = a
			}
			a.pixels++
			a.area += weight
			// Populated mask pixels are pure white, which packs to the
			// same value as the map background key.
			if mrow != nil && mrow[x] == Background {
				a.populated++
			}
		}
	}
	return acc
}
