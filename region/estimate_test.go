package region_test

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mapsizes/region"
)

const (
	white = 0xFFFFFF
	red   = 0xFF0000
	green = 0x00FF00
	blue  = 0x0000FF
)

// makeImage builds an opaque NRGBA image from packed color keys, one row
// per slice.
func makeImage(rows [][]uint32) *image.NRGBA {
	h := len(rows)
	w := len(rows[0])
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y, row := range rows {
		for x, key := range row {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(key >> 16),
				G: uint8(key >> 8),
				B: uint8(key),
				A: 255,
			})
		}
	}
	return img
}

func makeGrid(t *testing.T, rows [][]uint32) *region.Grid {
	t.Helper()
	g, err := region.FromImage(makeImage(rows))
	require.NoError(t, err)
	return g
}

// weightAt mirrors the estimator's row weight for the default config.
func weightAt(cfg region.Config, w, h, y int) float64 {
	perPixel := cfg.MapCircumference() / float64(w)
	lat := cfg.LatMax - float64(y)/float64(h)*(cfg.LatMax-cfg.LatMin)
	return perPixel * perPixel * math.Cos(lat*math.Pi/180)
}

func TestEstimateAllBackground(t *testing.T) {
	grid := makeGrid(t, [][]uint32{
		{white, white, white},
		{white, white, white},
	})

	table, err := region.Estimate(grid, nil, region.DefaultConfig())
	require.NoError(t, err)

	assert.Empty(t, table.Rows)
	assert.Equal(t, region.Row{Color: "TOTAL"}, table.Total)
	assert.False(t, table.HasPopulation)
}

func TestEstimateSingleColor(t *testing.T) {
	grid := makeGrid(t, [][]uint32{
		{green, green},
		{green, green},
	})

	cfg := region.DefaultConfig()
	table, err := region.Estimate(grid, nil, cfg)
	require.NoError(t, err)

	require.Len(t, table.Rows, 1)
	row := table.Rows[0]
	assert.Equal(t, 1, row.Rank)
	assert.Equal(t, "#00FF00", row.Color)
	assert.Equal(t, int64(4), row.Pixels)

	// Row 0 sits at latitude 90 (weight ~0), row 1 at the equator where
	// each pixel covers (C/W)² km².
	expected := 2*weightAt(cfg, 2, 2, 0) + 2*weightAt(cfg, 2, 2, 1)
	assert.InEpsilon(t, expected, row.Area, 1e-12)
	assert.InEpsilon(t, expected, table.Total.Area, 1e-12)
	assert.Equal(t, int64(4), table.Total.Pixels)
}

func TestEstimateSortAndTieOrder(t *testing.T) {
	// Row 0 is background; row 1 carries all the land. Green and blue
	// hold one equator pixel each and tie on area, so the ascending-key
	// order (blue before green) must win over the spatial order.
	grid := makeGrid(t, [][]uint32{
		{white, white, white, white},
		{red, red, green, blue},
	})

	table, err := region.Estimate(grid, nil, region.DefaultConfig())
	require.NoError(t, err)

	require.Len(t, table.Rows, 3)
	assert.Equal(t, "#FF0000", table.Rows[0].Color)
	assert.Equal(t, "#0000FF", table.Rows[1].Color)
	assert.Equal(t, "#00FF00", table.Rows[2].Color)
	assert.Equal(t, []int{1, 2, 3}, []int{table.Rows[0].Rank, table.Rows[1].Rank, table.Rows[2].Rank})

	for i := 1; i < len(table.Rows); i++ {
		assert.LessOrEqual(t, table.Rows[i].Area, table.Rows[i-1].Area)
	}
}

func TestEstimateSums(t *testing.T) {
	grid := makeGrid(t, [][]uint32{
		{red, green, white, blue},
		{red, red, blue, white},
		{green, white, white, blue},
	})

	table, err := region.Estimate(grid, nil, region.DefaultConfig())
	require.NoError(t, err)

	var pixels int64
	var area float64
	for _, row := range table.Rows {
		pixels += row.Pixels
		area += row.Area
	}
	assert.Equal(t, table.Total.Pixels, pixels)
	assert.InDelta(t, table.Total.Area, area, 1e-9)
}

func TestEstimatePopulation(t *testing.T) {
	const land = 0x123456
	grid := makeGrid(t, [][]uint32{
		{land, land, land},
		{land, land, land},
	})
	mask := makeGrid(t, [][]uint32{
		{white, 0, 0},
		{0, white, white},
	})

	table, err := region.Estimate(grid, mask, region.DefaultConfig())
	require.NoError(t, err)

	require.True(t, table.HasPopulation)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, int64(30000), table.Rows[0].Population)
	assert.Equal(t, int64(30000), table.Total.Population)
}

func TestEstimatePopulationSkipsBackground(t *testing.T) {
	const land = 0x123456
	grid := makeGrid(t, [][]uint32{
		{white, land, land},
		{land, land, land},
	})
	mask := makeGrid(t, [][]uint32{
		{white, white, white},
		{white, white, white},
	})

	table, err := region.Estimate(grid, mask, region.DefaultConfig())
	require.NoError(t, err)

	require.Len(t, table.Rows, 1)
	assert.Equal(t, int64(5), table.Rows[0].Pixels)
	assert.Equal(t, int64(50000), table.Rows[0].Population)
	assert.Equal(t, int64(50000), table.Total.Population)
}

func TestEstimateResizesMask(t *testing.T) {
	const land = 0x123456
	grid := makeGrid(t, [][]uint32{
		{land, land},
		{land, land},
	})
	// 4×4 mask, white only in the top-left quadrant. Downsampling to 2×2
	// samples source pixels (0,0), (2,0), (0,2) and (2,2), of which only
	// (0,0) is populated.
	mask := makeGrid(t, [][]uint32{
		{white, white, 0, 0},
		{white, white, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	})

	table, err := region.Estimate(grid, mask, region.DefaultConfig())
	require.NoError(t, err)

	require.Len(t, table.Rows, 1)
	assert.Equal(t, int64(10000), table.Rows[0].Population)
}

func TestEstimateDeterministic(t *testing.T) {
	palette := []uint32{red, green, blue, 0x804020, white}
	rows := make([][]uint32, 6)
	for y := range rows {
		rows[y] = make([]uint32, 8)
		for x := range rows[y] {
			rows[y][x] = palette[(x*37+y*91)%len(palette)]
		}
	}
	grid := makeGrid(t, rows)

	cfg := region.DefaultConfig()
	cfg.Workers = 4
	first, err := region.Estimate(grid, nil, cfg)
	require.NoError(t, err)
	second, err := region.Estimate(grid, nil, cfg)
	require.NoError(t, err)
	require.Equal(t, first, second)

	// Spans preserve ascending row order, so the worker count must not
	// change the result either.
	cfg.Workers = 1
	serial, err := region.Estimate(grid, nil, cfg)
	require.NoError(t, err)
	require.Equal(t, serial, first)
}

func TestEstimateProgress(t *testing.T) {
	grid := makeGrid(t, [][]uint32{
		{red, green, blue},
		{red, green, blue},
	})

	var calls [][2]int
	cfg := region.DefaultConfig()
	cfg.Progress = func(done, total int) {
		calls = append(calls, [2]int{done, total})
	}

	_, err := region.Estimate(grid, nil, cfg)
	require.NoError(t, err)
	require.Equal(t, [][2]int{{1, 3}, {2, 3}, {3, 3}}, calls)
}

func TestEstimateLongitudeSpan(t *testing.T) {
	// A map covering half the longitudes gets half the circumference.
	grid := makeGrid(t, [][]uint32{
		{green, green},
		{green, green},
	})

	cfg := region.DefaultConfig()
	cfg.LonMin, cfg.LonMax = 0, 180
	table, err := region.Estimate(grid, nil, cfg)
	require.NoError(t, err)

	expected := 2*weightAt(cfg, 2, 2, 0) + 2*weightAt(cfg, 2, 2, 1)
	assert.InEpsilon(t, expected, table.Total.Area, 1e-12)

	full, err := region.Estimate(grid, nil, region.DefaultConfig())
	require.NoError(t, err)
	assert.InEpsilon(t, full.Total.Area/4, table.Total.Area, 1e-9)
}

func TestEstimateInvalidInput(t *testing.T) {
	grid := makeGrid(t, [][]uint32{{green}})

	_, err := region.Estimate(nil, nil, region.DefaultConfig())
	assert.ErrorIs(t, err, region.ErrInvalidInput)

	bad := region.DefaultConfig()
	bad.EquatorCircumference = 0
	_, err = region.Estimate(grid, nil, bad)
	assert.ErrorIs(t, err, region.ErrInvalidInput)

	bad = region.DefaultConfig()
	bad.LatMin, bad.LatMax = 45, -45
	_, err = region.Estimate(grid, nil, bad)
	assert.ErrorIs(t, err, region.ErrInvalidInput)

	bad = region.DefaultConfig()
	bad.LonMin, bad.LonMax = 10, 10
	_, err = region.Estimate(grid, nil, bad)
	assert.ErrorIs(t, err, region.ErrInvalidInput)

	bad = region.DefaultConfig()
	bad.PopulationPerPixel = 0
	_, err = region.Estimate(grid, grid, bad)
	assert.ErrorIs(t, err, region.ErrInvalidInput)
}
