package calc

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"mapsizes/export"
	"mapsizes/region"

	"github.com/alecthomas/kong"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/vp8l"
	_ "golang.org/x/image/webp"
)

type CLICmd struct {
	Image         string  `arg:"" help:"Color-coded equirectangular map image. Pure white is background"`
	Population    string  `help:"Population mask image; pure white pixels are populated" type:"existingfile"`
	Circumference float64 `help:"Equator circumference in km" default:"40075"`
	LatMax        float64 `help:"Latitude of the top map edge in degrees" default:"90"`
	LatMin        float64 `help:"Latitude of the bottom map edge in degrees" default:"-90"`
	LonMin        float64 `help:"Longitude of the left map edge in degrees" default:"-180"`
	LonMax        float64 `help:"Longitude of the right map edge in degrees" default:"180"`
	PerPixel      int64   `help:"People represented by one populated mask pixel" default:"10000"`
	Out           string  `help:"Output file. Defaults next to the image as <name>_map_sizes.<format>"`
	Format        string  `help:"Output format of the result table" enum:"xlsx,csv" default:"xlsx"`
	Workers       int     `help:"Worker goroutines for the pixel pass. 0 uses all CPUs" default:"0"`
}

// Validate resolves paths and replaces out-of-domain numeric parameters
// with their documented defaults. Bad numbers are warned about, never
// fatal.
func (c *CLICmd) Validate(kctx *kong.Context) error {
	imgPath, err := filepath.Abs(c.Image)
	var info os.FileInfo
	if err == nil {
		if info, err = os.Stat(imgPath); err == nil && info.IsDir() {
			err = fmt.Errorf("is a directory")
		}
	}
	if err != nil {
		return fmt.Errorf("invalid image path %q: %w", c.Image, err)
	}
	c.Image = imgPath

	if !(c.Circumference > 0) || math.IsInf(c.Circumference, 0) {
		slog.Warn("invalid equator circumference, using default",
			"given", c.Circumference, "default", region.DefaultCircumference)
		c.Circumference = region.DefaultCircumference
	}
	if !(c.LatMin < c.LatMax) {
		slog.Warn("invalid latitude bounds, using defaults", "min", c.LatMin, "max", c.LatMax)
		c.LatMin, c.LatMax = region.DefaultLatMin, region.DefaultLatMax
	}
	if !(c.LonMin < c.LonMax) {
		slog.Warn("invalid longitude bounds, using defaults", "min", c.LonMin, "max", c.LonMax)
		c.LonMin, c.LonMax = region.DefaultLonMin, region.DefaultLonMax
	}
	if c.PerPixel <= 0 {
		slog.Warn("invalid population per pixel, using default",
			"given", c.PerPixel, "default", region.DefaultPopulationPerPixel)
		c.PerPixel = region.DefaultPopulationPerPixel
	}

	if c.Out == "" {
		ext := filepath.Ext(c.Image)
		c.Out = fmt.Sprintf("%s_map_sizes.%s", c.Image[:len(c.Image)-len(ext)], c.Format)
	}
	return nil
}

func (c *CLICmd) Run() error {
	logger := slog.Default().With("file", c.Image)

	grid, err := loadGrid(c.Image)
	if err != nil {
		return err
	}

	var mask *region.Grid
	if c.Population != "" {
		if mask, err = loadGrid(c.Population); err != nil {
			return err
		}
	}

	cfg := region.Config{
		EquatorCircumference: c.Circumference,
		LatMin:               c.LatMin,
		LatMax:               c.LatMax,
		LonMin:               c.LonMin,
		LonMax:               c.LonMax,
		PopulationPerPixel:   c.PerPixel,
		Workers:              c.Workers,
		Progress: func(done, total int) {
			if done%10 == 0 || done == total {
				logger.Info("processed colors", "done", done, "total", total)
			}
		},
	}

	kmPerPixel := cfg.MapCircumference() / float64(grid.W)
	logger.Info("map loaded", "width", grid.W, "height", grid.H,
		"km_per_pixel", kmPerPixel, "area_per_pixel_at_equator", kmPerPixel*kmPerPixel)

	table, err := region.Estimate(grid, mask, cfg)
	if err != nil {
		return fmt.Errorf("could not estimate region areas: %w", err)
	}

	logger.Info("summary", "unique_colors", len(table.Rows),
		"land_pixels", table.Total.Pixels, "land_area_km2", table.Total.Area)

	if err = export.Save(c.Out, c.Format, table); err != nil {
		logger.Error("could not export result table", "dest", c.Out, "error", err)
		// The computed table is not lost: dump it to stdout instead.
		if csvErr := export.WriteCSV(os.Stdout, table); csvErr != nil {
			return fmt.Errorf("could not write fallback table: %w", csvErr)
		}
		return fmt.Errorf("could not export result table to %q: %w", c.Out, err)
	}

	logger.Info("exported result table", "dest", c.Out, "rows", len(table.Rows)+1)
	return nil
}

func loadGrid(path string) (*region.Grid, error) {
	imgFile, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open image %q: %w", path, err)
	}
	defer func() {
		if closeErr := imgFile.Close(); closeErr != nil {
			slog.Error("could not close image", "file", path, "error", closeErr)
		}
	}()

	img, _, err := image.Decode(imgFile)
	if err != nil {
		return nil, fmt.Errorf("could not decode image %q: %w", path, err)
	}

	return region.FromImage(img)
}
